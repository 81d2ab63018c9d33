// Package closing implementa el cierre de caja diario: apertura con fondo
// inicial, arqueo por medio de pago y totales calculados contra las ventas
// del día.
package closing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UseCase casos de uso de cierre de caja.
type UseCase struct {
	closings repository.CashClosingRepository
	sales    repository.SaleRepository
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(closings repository.CashClosingRepository, sales repository.SaleRepository) *UseCase {
	return &UseCase{closings: closings, sales: sales, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Open abre el cierre de caja del usuario para hoy. Un solo cierre abierto
// por usuario y día.
func (uc *UseCase) Open(ctx context.Context, userID string, in dto.OpenClosingRequest) (*dto.ClosingResponse, error) {
	now := uc.now()
	day := entity.CounterDay(now)
	existing, err := uc.closings.GetOpenByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrClosingAlreadyOpen
	}

	c := &entity.CashClosing{
		ID:     uuid.New().String(),
		Date:   now,
		UserID: userID,
		Movements: entity.ClosingMovements{
			InitialFund: in.InitialFund,
			Expense1:    in.Expense1,
			Expense2:    in.Expense2,
		},
		Status:    entity.ClosingStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.closings.Create(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Current devuelve el cierre abierto de hoy para el usuario.
func (uc *UseCase) Current(ctx context.Context, userID string) (*dto.ClosingResponse, error) {
	c, err := uc.closings.GetOpenByUserAndDay(ctx, userID, entity.CounterDay(uc.now()))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(c), nil
}

// Close cierra la caja: registra el arqueo, recalcula los totales contra las
// ventas del día y deja el cierre en estado terminal.
func (uc *UseCase) Close(ctx context.Context, id string, in dto.CloseClosingRequest) (*dto.ClosingResponse, error) {
	c, err := uc.closings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.Status == entity.ClosingStatusClosed {
		return nil, domain.ErrClosingAlreadyClosed
	}

	daySales, err := uc.sales.ListByDay(ctx, entity.CounterDay(c.Date))
	if err != nil {
		return nil, err
	}
	totals := computeTotals(c.Movements, daySales)

	c.Arqueo = entity.ClosingArqueo{Cash: in.Cash, Card: in.Card, Transfer: in.Transfer}
	arqueoTotal := in.Cash.Add(in.Card).Add(in.Transfer)
	// Lo esperado en caja: efectivo calculado más lo cobrado por otros medios.
	expected := totals.Calculated.Add(sumByMethod(daySales, entity.PaymentMethodCard)).
		Add(sumByMethod(daySales, entity.PaymentMethodTransfer)).
		Add(sumByMethod(daySales, entity.PaymentMethodQR))
	totals.Difference = arqueoTotal.Sub(expected)
	c.Totals = totals
	c.Status = entity.ClosingStatusClosed
	c.UpdatedAt = uc.now()

	if err := uc.closings.Update(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// List devuelve cierres paginados, más recientes primero.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.ClosingResponse, error) {
	page.DefaultPage()
	list, err := uc.closings.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClosingResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toResponse(c))
	}
	return out, nil
}

// computeTotals agrega las ventas del día: total vendido (completadas),
// pendiente de cobro y efectivo esperado en caja.
func computeTotals(mov entity.ClosingMovements, daySales []*entity.Sale) entity.ClosingTotals {
	salesTotal := decimal.Zero
	pending := decimal.Zero
	for _, s := range daySales {
		switch s.Status {
		case entity.SaleStatusCanceled, entity.SaleStatusAnnulled:
			continue
		case entity.SaleStatusCompleted:
			salesTotal = salesTotal.Add(s.TotalAmount)
		default:
			pending = pending.Add(s.TotalAmount.Sub(s.PaymentTotal()))
		}
	}
	cash := sumByMethod(daySales, entity.PaymentMethodCash)
	calculated := mov.InitialFund.Add(cash).Sub(mov.Expense1).Sub(mov.Expense2)
	return entity.ClosingTotals{
		Pending:    pending,
		SalesTotal: salesTotal,
		Calculated: calculated,
		Difference: decimal.Zero, // se fija en Close con el arqueo
	}
}

func sumByMethod(daySales []*entity.Sale, method string) decimal.Decimal {
	total := decimal.Zero
	for _, s := range daySales {
		if s.Status == entity.SaleStatusCanceled || s.Status == entity.SaleStatusAnnulled {
			continue
		}
		for _, p := range s.Payments {
			if p.Method == method {
				total = total.Add(p.Amount)
			}
		}
	}
	return total
}

func toResponse(c *entity.CashClosing) *dto.ClosingResponse {
	resp := &dto.ClosingResponse{
		ID:     c.ID,
		Date:   c.Date.Format("2006-01-02"),
		UserID: c.UserID,
		Status: c.Status,
	}
	resp.Movements.InitialFund = c.Movements.InitialFund
	resp.Movements.Expense1 = c.Movements.Expense1
	resp.Movements.Expense2 = c.Movements.Expense2
	resp.Arqueo.Cash = c.Arqueo.Cash
	resp.Arqueo.Card = c.Arqueo.Card
	resp.Arqueo.Transfer = c.Arqueo.Transfer
	resp.Totals.Pending = c.Totals.Pending
	resp.Totals.SalesTotal = c.Totals.SalesTotal
	resp.Totals.Calculated = c.Totals.Calculated
	resp.Totals.Difference = c.Totals.Difference
	return resp
}
