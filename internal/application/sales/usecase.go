// Package sales orquesta el ciclo de vida de una venta: creación con
// correlativo diario y totales de IVA, transiciones de estado con su etapa
// derivada, pagos y la facturación timbrada (a lo sumo una vez por venta).
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/fiscal"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
	"github.com/mbenitez/factupos-api/pkg/logger"
)

// UseCase casos de uso del ciclo de vida de ventas.
type UseCase struct {
	sales         repository.SaleRepository
	counters      repository.CounterRepository
	registry      TimbradoRegistry
	printer       Printer
	log           *logger.Logger
	defaultStatus string
	now           func() time.Time
}

// NewUseCase construye el caso de uso. defaultStatus es el estado inicial de
// una venta cuando el request no trae uno ("pending" salvo configuración).
func NewUseCase(
	sales repository.SaleRepository,
	counters repository.CounterRepository,
	registry TimbradoRegistry,
	printer Printer,
	log *logger.Logger,
	defaultStatus string,
) *UseCase {
	if !entity.ValidInitialStatus(defaultStatus) {
		defaultStatus = entity.SaleStatusPending
	}
	return &UseCase{
		sales:         sales,
		counters:      counters,
		registry:      registry,
		printer:       printer,
		log:           log,
		defaultStatus: defaultStatus,
		now:           time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CreateOutcome resultado de Create. InvoiceErr queda no-nulo cuando la venta
// se persistió pero la facturación inmediata falló: la creación no se revierte
// y el error se reporta aparte.
type CreateOutcome struct {
	Sale       *dto.SaleResponse
	InvoiceErr error
}

// Create registra una venta nueva: valida líneas y pagos, desagrega el IVA,
// asigna el correlativo del día y persiste con invoiced=false. Si el request
// pide facturación inmediata la intenta después de persistir. Al final encola
// la impresión (ticket si quedó completada, comanda de cocina si no).
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateSaleRequest) (*CreateOutcome, error) {
	if len(in.Products) == 0 {
		return nil, domain.ErrEmptyLineItems
	}

	items := toLineItems(in.Products)
	totalAmount := fiscal.TotalAmount(items)
	totals := fiscal.Aggregate(items)

	now := uc.now()
	payments := make([]entity.PaymentEntry, 0, len(in.Payments))
	paid := decimalZero()
	for _, p := range in.Payments {
		paid = paid.Add(p.Amount)
		payments = append(payments, entity.PaymentEntry{
			Method: p.Method,
			Amount: p.Amount,
			Date:   now,
		})
	}
	if paid.GreaterThan(totalAmount) {
		return nil, domain.ErrPaymentExceedsTotal
	}

	status := in.Status
	if status == "" {
		if len(payments) > 0 {
			status = entity.SaleStatusOrdered
		} else {
			status = uc.defaultStatus
		}
	} else if !entity.ValidInitialStatus(status) {
		// canceled/annulled solo se alcanzan transicionando una venta viva.
		return nil, fmt.Errorf("%w: estado inicial %q", domain.ErrInvalidInput, status)
	}
	mode := in.Mode
	if mode == "" {
		mode = entity.SaleModeLocal
	}

	// Sin correlativo no hay venta: si el contador falla, se aborta.
	dailyID, err := uc.counters.NextDailyID(ctx, entity.CounterDay(now))
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:           uuid.New().String(),
		DailyID:      dailyID,
		Products:     items,
		Payments:     payments,
		TotalAmount:  totalAmount,
		Totals:       totals,
		RUC:          in.RUC,
		CustomerName: in.CustomerName,
		Status:       status,
		Stage:        entity.SaleStageProcessed,
		Mode:         mode,
		UserID:       userID,
		Invoiced:     false,
		Date:         now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	outcome := &CreateOutcome{}
	if in.Invoiced {
		if _, err := uc.Invoice(ctx, sale.ID); err != nil {
			// La venta ya está persistida; el fallo de facturación se
			// reporta por separado, nunca revierte la creación.
			outcome.InvoiceErr = err
		} else {
			if refreshed, gerr := uc.sales.GetByID(ctx, sale.ID); gerr == nil && refreshed != nil {
				sale = refreshed
			}
		}
	}

	uc.dispatchPrint(sale)

	outcome.Sale = toSaleResponse(sale)
	return outcome, nil
}

// Invoice factura una venta contra el timbrado vigente, a lo sumo una vez.
// El marcado final es un compare-and-set sobre invoiced=false en el store:
// dos peticiones concurrentes sobre la misma venta producen exactamente un
// éxito y un ErrAlreadyInvoiced.
func (uc *UseCase) Invoice(ctx context.Context, saleID string) (*dto.InvoiceInfoResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Invoiced {
		return nil, domain.ErrAlreadyInvoiced
	}

	timbrado, err := uc.registry.ActiveTimbrado(ctx)
	if err != nil {
		return nil, err
	}
	invoiceNumber, err := uc.registry.IssueInvoiceNumber(ctx, timbrado)
	if err != nil {
		return nil, err
	}

	assignment := repository.InvoiceAssignment{
		InvoiceNumber:  invoiceNumber,
		TimbradoNumber: timbrado.Code,
		TimbradoInit:   timbrado.IssuedAt,
		TimbradoID:     timbrado.ID,
	}
	ok, err := uc.sales.MarkInvoiced(ctx, saleID, assignment)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Otra petición facturó primero. El correlativo emitido queda sin
		// usar: facturar a lo sumo una vez pesa más que numerar sin huecos.
		return nil, domain.ErrAlreadyInvoiced
	}

	uc.log.Info().
		Str("sale_id", saleID).
		Str("invoice_number", invoiceNumber).
		Str("timbrado", timbrado.Code).
		Msg("venta facturada")

	return &dto.InvoiceInfoResponse{
		SaleID:         saleID,
		InvoiceNumber:  invoiceNumber,
		TimbradoNumber: timbrado.Code,
		TimbradoInit:   timbrado.IssuedAt.Format("2006-01-02"),
	}, nil
}

// UpdateStatus cambia el estado de la venta validando la transición y deriva
// la etapa con la tabla central. Al completar se reimprime el ticket.
func (uc *UseCase) UpdateStatus(ctx context.Context, saleID string, in dto.UpdateStatusRequest) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransition(sale.Status, in.Status) {
		return nil, domain.ErrInvalidTransition
	}

	stage := entity.StageFor(in.Status)
	ruc := in.RUC
	if ruc == "" {
		ruc = sale.RUC
	}
	if err := uc.sales.UpdateStatus(ctx, saleID, in.Status, stage, ruc); err != nil {
		return nil, err
	}

	sale.Status = in.Status
	sale.Stage = stage
	sale.RUC = ruc
	if in.Status == entity.SaleStatusCompleted {
		uc.printer.PrintCustomerTicket(sale)
	}
	return toSaleResponse(sale), nil
}

// MarkReady señal de "listo para entregar": fija la etapa en finished sin
// tocar el estado de negocio.
func (uc *UseCase) MarkReady(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.sales.UpdateStage(ctx, saleID, entity.SaleStageFinished); err != nil {
		return nil, err
	}
	sale.Stage = entity.SaleStageFinished
	return toSaleResponse(sale), nil
}

// Update reemplaza líneas, pagos y metadatos de la venta (PUT completo),
// recalculando totales. Si el request pide invoiced=true sobre una venta aún
// no facturada y con estado completed, dispara la facturación.
func (uc *UseCase) Update(ctx context.Context, saleID string, in dto.UpdateSaleRequest) (*CreateOutcome, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if len(in.Products) == 0 {
		return nil, domain.ErrEmptyLineItems
	}

	items := toLineItems(in.Products)
	totalAmount := fiscal.TotalAmount(items)
	totals := fiscal.Aggregate(items)

	now := uc.now()
	payments := make([]entity.PaymentEntry, 0, len(in.Payments))
	paid := decimalZero()
	for _, p := range in.Payments {
		paid = paid.Add(p.Amount)
		payments = append(payments, entity.PaymentEntry{Method: p.Method, Amount: p.Amount, Date: now})
	}
	if paid.GreaterThan(totalAmount) {
		return nil, domain.ErrPaymentExceedsTotal
	}

	status := sale.Status
	if in.Status != "" && in.Status != sale.Status {
		if !entity.CanTransition(sale.Status, in.Status) {
			return nil, domain.ErrInvalidTransition
		}
		status = in.Status
	}

	sale.Products = items
	sale.Payments = payments
	sale.TotalAmount = totalAmount
	sale.Totals = totals
	sale.RUC = in.RUC
	sale.CustomerName = in.CustomerName
	sale.Status = status
	sale.Stage = entity.StageFor(status)
	if in.Mode != "" {
		sale.Mode = in.Mode
	}
	sale.UpdatedAt = now

	if err := uc.sales.Update(ctx, sale); err != nil {
		return nil, err
	}

	outcome := &CreateOutcome{}
	if in.Invoiced && !sale.Invoiced && status == entity.SaleStatusCompleted {
		if _, err := uc.Invoice(ctx, saleID); err != nil {
			outcome.InvoiceErr = err
		} else if refreshed, gerr := uc.sales.GetByID(ctx, saleID); gerr == nil && refreshed != nil {
			sale = refreshed
		}
	}
	if status == entity.SaleStatusCompleted {
		uc.printer.PrintCustomerTicket(sale)
	}

	outcome.Sale = toSaleResponse(sale)
	return outcome, nil
}

// AddPayment agrega un pago a la venta respetando el tope del total.
func (uc *UseCase) AddPayment(ctx context.Context, saleID string, in dto.AddPaymentRequest) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.PaymentTotal().Add(in.Amount).GreaterThan(sale.TotalAmount) {
		return nil, domain.ErrPaymentExceedsTotal
	}
	entry := entity.PaymentEntry{Method: in.Method, Amount: in.Amount, Date: uc.now()}
	if err := uc.sales.AddPayment(ctx, saleID, entry); err != nil {
		return nil, err
	}
	sale.Payments = append(sale.Payments, entry)
	return toSaleResponse(sale), nil
}

// Get devuelve una venta por id.
func (uc *UseCase) Get(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// List devuelve ventas filtradas por rango de fechas y estado.
func (uc *UseCase) List(ctx context.Context, filter repository.SaleFilter) ([]*dto.SaleResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	list, err := uc.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSaleResponse(s))
	}
	return out, nil
}

// dispatchPrint encola el documento que corresponde al estado: ticket para el
// cliente si la venta quedó completada, comanda de cocina en caso contrario.
// La persistencia ya terminó cuando esto corre; el printer no puede demorar
// ni hacer fallar la respuesta.
func (uc *UseCase) dispatchPrint(sale *entity.Sale) {
	switch sale.Status {
	case entity.SaleStatusCompleted:
		uc.printer.PrintCustomerTicket(sale)
	case entity.SaleStatusCanceled, entity.SaleStatusAnnulled:
		// nada que imprimir
	default:
		uc.printer.PrintKitchenOrder(sale)
	}
}
