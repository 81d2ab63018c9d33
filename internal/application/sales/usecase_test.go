package sales_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/application/sales"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
	"github.com/mbenitez/factupos-api/pkg/logger"
)

// ── Fakes en memoria ─────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{items: map[string]*entity.Sale{}}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sale
	r.items[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sale
	for _, s := range r.items {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSaleRepo) Update(_ context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[sale.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *sale
	// Los campos de facturación solo los toca MarkInvoiced.
	cp.Invoiced = existing.Invoiced
	cp.InvoiceNumber = existing.InvoiceNumber
	cp.TimbradoNumber = existing.TimbradoNumber
	cp.TimbradoInit = existing.TimbradoInit
	cp.TimbradoID = existing.TimbradoID
	r.items[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) UpdateStatus(_ context.Context, id, status, stage, ruc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status, s.Stage, s.RUC = status, stage, ruc
	return nil
}

func (r *fakeSaleRepo) UpdateStage(_ context.Context, id, stage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Stage = stage
	return nil
}

func (r *fakeSaleRepo) AddPayment(_ context.Context, id string, payment entity.PaymentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Payments = append(s.Payments, payment)
	return nil
}

// MarkInvoiced replica el compare-and-set del store: solo gana si la venta
// sigue con invoiced=false.
func (r *fakeSaleRepo) MarkInvoiced(_ context.Context, id string, inv repository.InvoiceAssignment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.Invoiced {
		return false, nil
	}
	init := inv.TimbradoInit
	s.Invoiced = true
	s.InvoiceNumber = inv.InvoiceNumber
	s.TimbradoNumber = inv.TimbradoNumber
	s.TimbradoInit = &init
	s.TimbradoID = inv.TimbradoID
	return true, nil
}

func (r *fakeSaleRepo) ListByDay(_ context.Context, day string) ([]*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sale
	for _, s := range r.items {
		if entity.CounterDay(s.Date) == day {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCounterRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{seqs: map[string]int64{}}
}

func (r *fakeCounterRepo) NextDailyID(_ context.Context, day string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.seqs[day]++
	return r.seqs[day], nil
}

type fakeRegistry struct {
	mu       sync.Mutex
	timbrado *entity.Timbrado
	issueErr error
}

func (r *fakeRegistry) ActiveTimbrado(_ context.Context) (*entity.Timbrado, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timbrado == nil {
		return nil, domain.ErrNoActiveTimbrado
	}
	cp := *r.timbrado
	return &cp, nil
}

func (r *fakeRegistry) IssueInvoiceNumber(_ context.Context, t *entity.Timbrado) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.issueErr != nil {
		return "", r.issueErr
	}
	r.timbrado.LastInvoiceNumber++
	return fmt.Sprintf("%s-%s-%06d", t.Establishment, t.Branch, r.timbrado.LastInvoiceNumber), nil
}

type fakePrinter struct {
	mu      sync.Mutex
	tickets int
	kitchen int
}

func (p *fakePrinter) PrintCustomerTicket(*entity.Sale) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets++
}

func (p *fakePrinter) PrintKitchenOrder(*entity.Sale) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kitchen++
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *sales.UseCase
	saleRepo *fakeSaleRepo
	counters *fakeCounterRepo
	registry *fakeRegistry
	printer  *fakePrinter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		saleRepo: newFakeSaleRepo(),
		counters: newFakeCounterRepo(),
		registry: &fakeRegistry{},
		printer:  &fakePrinter{},
	}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	f.uc = sales.NewUseCase(f.saleRepo, f.counters, f.registry, f.printer, log, entity.SaleStatusPending).
		WithClock(func() time.Time {
			return time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
		})
	return f
}

func (f *fixture) withActiveTimbrado() {
	f.registry.timbrado = &entity.Timbrado{
		ID:            "tim-1",
		Code:          "12345678",
		IssuedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		ExpiresAt:     time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local),
		Establishment: "001",
		Branch:        "001",
		MaxInvoices:   999999,
	}
}

func gs(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func saleRequest() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		Products: []dto.SaleItemRequest{
			{ProductID: "p1", Name: "Pizza Muzzarella", Quantity: 1, IVARate: 10, TotalPrice: gs(55000)},
			{ProductID: "p2", Name: "Coca 500ml", Quantity: 2, IVARate: 10, TotalPrice: gs(16000)},
		},
	}
}

// ── Tests de creación ────────────────────────────────────────────────────────

func TestCreate_AsignaCorrelativoDiarioSecuencial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.Create(ctx, "user-1", saleRequest())
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, "user-1", saleRequest())
	require.NoError(t, err)

	assert.EqualValues(t, 1, first.Sale.DailyID)
	assert.EqualValues(t, 2, second.Sale.DailyID)
}

func TestCreate_SinProductos(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyLineItems)
}

func TestCreate_PagoExcedeElTotal(t *testing.T) {
	f := newFixture(t)
	in := saleRequest()
	in.Payments = []dto.SalePaymentRequest{{Method: entity.PaymentMethodCash, Amount: gs(100000)}}
	_, err := f.uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsTotal)
}

func TestCreate_FallaDelContadorAbortaLaVenta(t *testing.T) {
	f := newFixture(t)
	f.counters.err = context.DeadlineExceeded
	_, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.Error(t, err)
	assert.Empty(t, f.saleRepo.items, "la venta no debe persistirse sin correlativo")
}

func TestCreate_ConPagosArrancaEnOrdered(t *testing.T) {
	f := newFixture(t)
	in := saleRequest()
	in.Payments = []dto.SalePaymentRequest{{Method: entity.PaymentMethodCash, Amount: gs(50000)}}
	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusOrdered, out.Sale.Status)
	assert.Equal(t, entity.SaleStageProcessed, out.Sale.Stage)
}

func TestCreate_SinPagosUsaElEstadoPorDefecto(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, out.Sale.Status)
	assert.Equal(t, entity.SaleModeLocal, out.Sale.Mode, "modalidad por defecto")
}

func TestCreate_EstadoInicialTerminalRechazado(t *testing.T) {
	f := newFixture(t)
	for _, status := range []string{entity.SaleStatusCanceled, entity.SaleStatusAnnulled} {
		in := saleRequest()
		in.Status = status
		_, err := f.uc.Create(context.Background(), "user-1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "una venta no puede nacer %s", status)
	}
	assert.Empty(t, f.saleRepo.items)
}

func TestCreate_PuedeNacerCompletada(t *testing.T) {
	f := newFixture(t)
	in := saleRequest()
	in.Status = entity.SaleStatusCompleted
	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, out.Sale.Status)
}

func TestCreate_DesagregaElIVAPorFranja(t *testing.T) {
	f := newFixture(t)
	in := dto.CreateSaleRequest{
		Products: []dto.SaleItemRequest{
			{ProductID: "p1", Name: "Pizza", Quantity: 1, IVARate: 10, TotalPrice: gs(110000)},
			{ProductID: "p2", Name: "Medicamento", Quantity: 1, IVARate: 5, TotalPrice: gs(21000)},
			{ProductID: "p3", Name: "Libro", Quantity: 1, IVARate: 0, TotalPrice: gs(30000)},
		},
	}
	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)

	assert.True(t, out.Sale.TotalAmount.Equal(gs(161000)))
	assert.True(t, out.Sale.Totals.IVA10.Equal(gs(10000)), "IVA10 = 110000/11")
	assert.True(t, out.Sale.Totals.Gravada10.Equal(gs(100000)))
	assert.True(t, out.Sale.Totals.IVA5.Equal(gs(1000)), "IVA5 = 21000/21")
	assert.True(t, out.Sale.Totals.Gravada5.Equal(gs(20000)))
	assert.True(t, out.Sale.Totals.Exenta.Equal(gs(30000)))
}

func TestCreate_FacturacionInmediata(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	in := saleRequest()
	in.Invoiced = true

	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	require.NoError(t, out.InvoiceErr)
	assert.True(t, out.Sale.Invoiced)
	assert.Equal(t, "001-001-000001", out.Sale.InvoiceNumber)
	assert.Equal(t, "12345678", out.Sale.TimbradoNumber)
}

func TestCreate_SinTimbradoVigenteLaVentaQuedaPersistida(t *testing.T) {
	f := newFixture(t)
	in := saleRequest()
	in.Invoiced = true

	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err, "el fallo de facturación no revierte la creación")
	assert.ErrorIs(t, out.InvoiceErr, domain.ErrNoActiveTimbrado)
	assert.False(t, out.Sale.Invoiced)

	persisted, err := f.saleRepo.GetByID(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.False(t, persisted.Invoiced)
}

// ── Tests de facturación ─────────────────────────────────────────────────────

func TestInvoice_DosVecesSobreLaMismaVenta(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	info, err := f.uc.Invoice(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "001-001-000001", info.InvoiceNumber)
	assert.Equal(t, "2024-01-01", info.TimbradoInit)

	_, err = f.uc.Invoice(context.Background(), out.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

func TestInvoice_PerdedorDelCompareAndSet(t *testing.T) {
	// La venta se lee como no facturada pero otra petición gana entre la
	// lectura y el marcado: el segundo MarkInvoiced no pisa al primero.
	f := newFixture(t)
	f.withActiveTimbrado()
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	_, err = f.uc.Invoice(context.Background(), out.Sale.ID)
	require.NoError(t, err)

	ok, err := f.saleRepo.MarkInvoiced(context.Background(), out.Sale.ID, repository.InvoiceAssignment{
		InvoiceNumber: "001-001-000099",
	})
	require.NoError(t, err)
	assert.False(t, ok)

	final, err := f.saleRepo.GetByID(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "001-001-000001", final.InvoiceNumber, "los datos del ganador quedan intactos")
}

func TestInvoice_VentaInexistente(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	_, err := f.uc.Invoice(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoice_TimbradoExpiradoNoMarcaLaVenta(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	f.registry.issueErr = domain.ErrTimbradoExpired
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	_, err = f.uc.Invoice(context.Background(), out.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrTimbradoExpired)

	persisted, _ := f.saleRepo.GetByID(context.Background(), out.Sale.ID)
	assert.False(t, persisted.Invoiced)
}

// ── Tests de transiciones de estado ──────────────────────────────────────────

func TestUpdateStatus_CompletarImprimeTicket(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)
	require.Equal(t, 1, f.printer.kitchen, "al crear pendiente sale la comanda")

	resp, err := f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{
		Status: entity.SaleStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.Equal(t, entity.SaleStageDelivered, resp.Stage)
	assert.Equal(t, 1, f.printer.tickets)
}

func TestUpdateStatus_CancelarCierraLaEtapa(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	resp, err := f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{
		Status: entity.SaleStatusCanceled,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStageClosed, resp.Stage)
	assert.Equal(t, 0, f.printer.tickets, "cancelar no imprime ticket")
	assert.Equal(t, 1, f.printer.kitchen, "solo la comanda de la creación")
}

func TestUpdateStatus_TransicionInvalida(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	// pending → annulled no está permitido; anular requiere estar completada.
	_, err = f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{
		Status: entity.SaleStatusAnnulled,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatus_AnularVentaCompletada(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{Status: entity.SaleStatusCompleted})
	require.NoError(t, err)

	resp, err := f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{Status: entity.SaleStatusAnnulled})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusAnnulled, resp.Status)
	assert.Equal(t, entity.SaleStageClosed, resp.Stage)
}

func TestUpdateStatus_ConservaElRUCSiNoVieneOtro(t *testing.T) {
	f := newFixture(t)
	in := saleRequest()
	in.RUC = "80012345-6"
	out, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)

	resp, err := f.uc.UpdateStatus(context.Background(), out.Sale.ID, dto.UpdateStatusRequest{
		Status: entity.SaleStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, "80012345-6", resp.RUC)
}

func TestMarkReady_FijaEtapaFinished(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	resp, err := f.uc.MarkReady(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStageFinished, resp.Stage)
	assert.Equal(t, entity.SaleStatusPending, resp.Status, "el estado de negocio no cambia")
}

// ── Tests de pagos ───────────────────────────────────────────────────────────

func TestAddPayment_RespetaElTope(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest()) // total 71000
	require.NoError(t, err)

	resp, err := f.uc.AddPayment(context.Background(), out.Sale.ID, dto.AddPaymentRequest{
		Method: entity.PaymentMethodCash, Amount: gs(50000),
	})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)

	_, err = f.uc.AddPayment(context.Background(), out.Sale.ID, dto.AddPaymentRequest{
		Method: entity.PaymentMethodCard, Amount: gs(30000),
	})
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsTotal, "50000 + 30000 > 71000")

	_, err = f.uc.AddPayment(context.Background(), out.Sale.ID, dto.AddPaymentRequest{
		Method: entity.PaymentMethodCard, Amount: gs(21000),
	})
	assert.NoError(t, err, "completar el total exacto sí se permite")
}

// ── Tests de actualización completa ──────────────────────────────────────────

func TestUpdate_RecalculaTotales(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	resp, err := f.uc.Update(context.Background(), out.Sale.ID, dto.UpdateSaleRequest{
		Products: []dto.SaleItemRequest{
			{ProductID: "p1", Name: "Pizza Muzzarella", Quantity: 2, IVARate: 10, TotalPrice: gs(110000)},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Sale.TotalAmount.Equal(gs(110000)))
	assert.True(t, resp.Sale.Totals.IVA10.Equal(gs(10000)))
	assert.EqualValues(t, out.Sale.DailyID, resp.Sale.DailyID, "el correlativo diario nunca se reasigna")
}

func TestUpdate_NoFacturaSiNoEstaCompletada(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	in := dto.UpdateSaleRequest{Products: saleRequest().Products, Invoiced: true}
	resp, err := f.uc.Update(context.Background(), out.Sale.ID, in)
	require.NoError(t, err)
	require.NoError(t, resp.InvoiceErr)
	assert.False(t, resp.Sale.Invoiced, "facturar exige estado completed")
}

func TestUpdate_CompletadaYFacturada(t *testing.T) {
	f := newFixture(t)
	f.withActiveTimbrado()
	out, err := f.uc.Create(context.Background(), "user-1", saleRequest())
	require.NoError(t, err)

	in := dto.UpdateSaleRequest{
		Products: saleRequest().Products,
		Status:   entity.SaleStatusCompleted,
		Invoiced: true,
	}
	resp, err := f.uc.Update(context.Background(), out.Sale.ID, in)
	require.NoError(t, err)
	require.NoError(t, resp.InvoiceErr)
	assert.True(t, resp.Sale.Invoiced)
	assert.Equal(t, "001-001-000001", resp.Sale.InvoiceNumber)
	assert.Equal(t, 1, f.printer.tickets)
}

// ── Tests de listado ─────────────────────────────────────────────────────────

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.uc.Create(ctx, "user-1", saleRequest())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "user-1", saleRequest())
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, a.Sale.ID, dto.UpdateStatusRequest{Status: entity.SaleStatusCompleted})
	require.NoError(t, err)

	completed, err := f.uc.List(ctx, repository.SaleFilter{Status: entity.SaleStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a.Sale.ID, completed[0].ID)
}
