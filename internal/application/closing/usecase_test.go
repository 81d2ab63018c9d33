package closing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/factupos-api/internal/application/closing"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

// ── Fakes en memoria ─────────────────────────────────────────────────────────

type fakeClosingRepo struct {
	mu    sync.Mutex
	items map[string]*entity.CashClosing
}

func newFakeClosingRepo() *fakeClosingRepo {
	return &fakeClosingRepo{items: map[string]*entity.CashClosing{}}
}

func (r *fakeClosingRepo) Create(_ context.Context, c *entity.CashClosing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeClosingRepo) GetByID(_ context.Context, id string) (*entity.CashClosing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeClosingRepo) GetOpenByUserAndDay(_ context.Context, userID, day string) (*entity.CashClosing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.UserID == userID && entity.CounterDay(c.Date) == day && c.Status == entity.ClosingStatusOpen {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClosingRepo) Update(_ context.Context, c *entity.CashClosing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeClosingRepo) List(_ context.Context, limit, offset int) ([]*entity.CashClosing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CashClosing
	for _, c := range r.items {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// daySalesRepo expone solo ListByDay; el resto del puerto no participa en el
// cierre de caja.
type daySalesRepo struct {
	sales []*entity.Sale
}

func (r *daySalesRepo) Create(context.Context, *entity.Sale) error { return nil }
func (r *daySalesRepo) GetByID(context.Context, string) (*entity.Sale, error) {
	return nil, nil
}
func (r *daySalesRepo) List(context.Context, repository.SaleFilter) ([]*entity.Sale, error) {
	return nil, nil
}
func (r *daySalesRepo) Update(context.Context, *entity.Sale) error               { return nil }
func (r *daySalesRepo) UpdateStatus(context.Context, string, string, string, string) error {
	return nil
}
func (r *daySalesRepo) UpdateStage(context.Context, string, string) error { return nil }
func (r *daySalesRepo) AddPayment(context.Context, string, entity.PaymentEntry) error {
	return nil
}
func (r *daySalesRepo) MarkInvoiced(context.Context, string, repository.InvoiceAssignment) (bool, error) {
	return false, nil
}
func (r *daySalesRepo) ListByDay(_ context.Context, day string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.sales {
		if entity.CounterDay(s.Date) == day {
			out = append(out, s)
		}
	}
	return out, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

var testDay = time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)

func gs(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func newClosingUC(salesRepo *daySalesRepo) (*closing.UseCase, *fakeClosingRepo) {
	repo := newFakeClosingRepo()
	uc := closing.NewUseCase(repo, salesRepo).WithClock(func() time.Time { return testDay })
	return uc, repo
}

func completedSale(total int64, method string, paid int64) *entity.Sale {
	return &entity.Sale{
		ID:          "s-" + method,
		TotalAmount: gs(total),
		Status:      entity.SaleStatusCompleted,
		Payments: []entity.PaymentEntry{
			{Method: method, Amount: gs(paid), Date: testDay},
		},
		Date: testDay,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestOpen_UnSoloCierreAbiertoPorUsuarioYDia(t *testing.T) {
	uc, _ := newClosingUC(&daySalesRepo{})
	ctx := context.Background()

	first, err := uc.Open(ctx, "user-1", dto.OpenClosingRequest{InitialFund: gs(200000)})
	require.NoError(t, err)
	assert.Equal(t, entity.ClosingStatusOpen, first.Status)
	assert.Equal(t, "2024-03-15", first.Date)

	_, err = uc.Open(ctx, "user-1", dto.OpenClosingRequest{InitialFund: gs(100000)})
	assert.ErrorIs(t, err, domain.ErrClosingAlreadyOpen)

	// Otro usuario sí puede abrir su propia caja el mismo día.
	_, err = uc.Open(ctx, "user-2", dto.OpenClosingRequest{InitialFund: gs(150000)})
	assert.NoError(t, err)
}

func TestClose_CalculaTotalesContraLasVentasDelDia(t *testing.T) {
	salesRepo := &daySalesRepo{sales: []*entity.Sale{
		completedSale(100000, entity.PaymentMethodCash, 100000),
		completedSale(80000, entity.PaymentMethodCard, 80000),
		{
			// Venta pendiente con pago parcial: el saldo queda como pendiente.
			ID: "s-pending", TotalAmount: gs(50000),
			Status: entity.SaleStatusPending,
			Payments: []entity.PaymentEntry{
				{Method: entity.PaymentMethodCash, Amount: gs(20000), Date: testDay},
			},
			Date: testDay,
		},
		{
			// Cancelada: fuera de todos los totales.
			ID: "s-canceled", TotalAmount: gs(999999),
			Status: entity.SaleStatusCanceled,
			Payments: []entity.PaymentEntry{
				{Method: entity.PaymentMethodCash, Amount: gs(999999), Date: testDay},
			},
			Date: testDay,
		},
	}}
	uc, _ := newClosingUC(salesRepo)
	ctx := context.Background()

	opened, err := uc.Open(ctx, "user-1", dto.OpenClosingRequest{
		InitialFund: gs(200000),
		Expense1:    gs(30000),
	})
	require.NoError(t, err)

	closed, err := uc.Close(ctx, opened.ID, dto.CloseClosingRequest{
		Cash: gs(290000), Card: gs(80000),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ClosingStatusClosed, closed.Status)
	assert.True(t, closed.Totals.SalesTotal.Equal(gs(180000)), "solo ventas completadas")
	assert.True(t, closed.Totals.Pending.Equal(gs(30000)), "50000 - 20000 de pago parcial")
	// Efectivo esperado: 200000 fondo + 120000 cash - 30000 gasto.
	assert.True(t, closed.Totals.Calculated.Equal(gs(290000)))
	// Arqueo 370000 contra esperado 290000 + 80000 card.
	assert.True(t, closed.Totals.Difference.Equal(gs(0)), "arqueo exacto, diferencia cero")
}

func TestClose_DiferenciaDeArqueo(t *testing.T) {
	salesRepo := &daySalesRepo{sales: []*entity.Sale{
		completedSale(100000, entity.PaymentMethodCash, 100000),
	}}
	uc, _ := newClosingUC(salesRepo)
	ctx := context.Background()

	opened, err := uc.Open(ctx, "user-1", dto.OpenClosingRequest{InitialFund: gs(50000)})
	require.NoError(t, err)

	// Esperado en caja 150000; el cajero cuenta 140000: faltan 10000.
	closed, err := uc.Close(ctx, opened.ID, dto.CloseClosingRequest{Cash: gs(140000)})
	require.NoError(t, err)
	assert.True(t, closed.Totals.Difference.Equal(gs(-10000)))
}

func TestClose_CerradoEsTerminal(t *testing.T) {
	uc, _ := newClosingUC(&daySalesRepo{})
	ctx := context.Background()

	opened, err := uc.Open(ctx, "user-1", dto.OpenClosingRequest{InitialFund: gs(100000)})
	require.NoError(t, err)
	_, err = uc.Close(ctx, opened.ID, dto.CloseClosingRequest{Cash: gs(100000)})
	require.NoError(t, err)

	_, err = uc.Close(ctx, opened.ID, dto.CloseClosingRequest{Cash: gs(100000)})
	assert.ErrorIs(t, err, domain.ErrClosingAlreadyClosed)
}

func TestClose_CierreInexistente(t *testing.T) {
	uc, _ := newClosingUC(&daySalesRepo{})
	_, err := uc.Close(context.Background(), "no-existe", dto.CloseClosingRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrent_SinCierreAbierto(t *testing.T) {
	uc, _ := newClosingUC(&daySalesRepo{})
	_, err := uc.Current(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
