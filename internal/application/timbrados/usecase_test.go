package timbrados_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/application/timbrados"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// ── Fake de TimbradoRepository en memoria ────────────────────────────────────

type fakeTimbradoRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Timbrado
}

func newFakeTimbradoRepo() *fakeTimbradoRepo {
	return &fakeTimbradoRepo{items: map[string]*entity.Timbrado{}}
}

func (r *fakeTimbradoRepo) Create(_ context.Context, t *entity.Timbrado) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Code == t.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTimbradoRepo) GetByID(_ context.Context, id string) (*entity.Timbrado, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTimbradoRepo) GetByCode(_ context.Context, code string) (*entity.Timbrado, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTimbradoRepo) List(_ context.Context) ([]*entity.Timbrado, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Timbrado
	for _, t := range r.items {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTimbradoRepo) FindActive(_ context.Context, now time.Time) (*entity.Timbrado, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.Timbrado
	for _, t := range r.items {
		if t.IsActive(now) && (best == nil || t.IssuedAt.Before(best.IssuedAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// IssueNumber reproduce la semántica del UPDATE condicional: incrementa solo
// si queda cupo, bajo lock.
func (r *fakeTimbradoRepo) IssueNumber(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if t.LastInvoiceNumber >= t.MaxInvoices {
		return 0, domain.ErrInvoiceQuotaExceeded
	}
	t.LastInvoiceNumber++
	return t.LastInvoiceNumber, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func registerRequest(code string) dto.RegisterTimbradoRequest {
	return dto.RegisterTimbradoRequest{
		Code:      code,
		IssuedAt:  "2024-01-01",
		ExpiresAt: "2024-01-31",
	}
}

// ── Tests de registro ────────────────────────────────────────────────────────

func TestRegister_AltaConDefaults(t *testing.T) {
	repo := newFakeTimbradoRepo()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	uc := timbrados.NewUseCase(repo).WithClock(fixedClock(now))

	resp, err := uc.Register(context.Background(), registerRequest("12345678"))
	require.NoError(t, err)

	assert.Equal(t, "12345678", resp.Code)
	assert.Equal(t, "001", resp.Establishment, "establecimiento por defecto")
	assert.Equal(t, "001", resp.Branch, "sucursal por defecto")
	assert.EqualValues(t, 999999, resp.MaxInvoices, "cupo por defecto")
	assert.EqualValues(t, 0, resp.LastInvoiceNumber, "el correlativo arranca en 0")
}

func TestRegister_NormalizaExpiracionConGracia(t *testing.T) {
	// Fin del día de vencimiento (23:59:59.999) + 1 día completo de gracia.
	day := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)
	got := timbrados.NormalizeExpiry(day)

	want := time.Date(2024, 2, 1, 23, 59, 59, 999*int(time.Millisecond), time.Local)
	assert.True(t, got.Equal(want), "esperado %v, obtenido %v", want, got)
}

func TestRegister_ConflictoConTimbradoVigente(t *testing.T) {
	repo := newFakeTimbradoRepo()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	uc := timbrados.NewUseCase(repo).WithClock(fixedClock(now))

	_, err := uc.Register(context.Background(), registerRequest("12345678"))
	require.NoError(t, err)

	// Segundo timbrado con ventana que también contiene "now".
	_, err = uc.Register(context.Background(), registerRequest("87654321"))
	assert.ErrorIs(t, err, domain.ErrActiveTimbradoExists)
}

func TestRegister_CodigoDuplicado(t *testing.T) {
	repo := newFakeTimbradoRepo()
	// Alta del primero dentro de su ventana.
	uc := timbrados.NewUseCase(repo).
		WithClock(fixedClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)))
	_, err := uc.Register(context.Background(), registerRequest("12345678"))
	require.NoError(t, err)

	// Mucho después, ya sin timbrado vigente, el mismo código se rechaza.
	uc.WithClock(fixedClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)))
	in := registerRequest("12345678")
	in.IssuedAt = "2025-06-01"
	in.ExpiresAt = "2025-06-30"
	_, err = uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegister_ExpiraAntesDeEmitirse(t *testing.T) {
	uc := timbrados.NewUseCase(newFakeTimbradoRepo())
	in := registerRequest("12345678")
	in.IssuedAt = "2024-02-01"
	in.ExpiresAt = "2024-01-01"
	_, err := uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Tests de emisión del correlativo ─────────────────────────────────────────

func TestIssueInvoiceNumber_CorrelativosSecuenciales(t *testing.T) {
	repo := newFakeTimbradoRepo()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	uc := timbrados.NewUseCase(repo).WithClock(fixedClock(now))

	_, err := uc.Register(context.Background(), registerRequest("12345678"))
	require.NoError(t, err)
	active, err := uc.ActiveTimbrado(context.Background())
	require.NoError(t, err)

	want := []string{"001-001-000001", "001-001-000002", "001-001-000003"}
	for _, expected := range want {
		got, err := uc.IssueInvoiceNumber(context.Background(), active)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestIssueInvoiceNumber_TimbradoExpirado(t *testing.T) {
	repo := newFakeTimbradoRepo()
	uc := timbrados.NewUseCase(repo).
		WithClock(fixedClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)))
	_, err := uc.Register(context.Background(), registerRequest("12345678"))
	require.NoError(t, err)
	active, err := uc.ActiveTimbrado(context.Background())
	require.NoError(t, err)

	// Reloj más allá de la expiración (31/01 + día de gracia).
	uc.WithClock(fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)))
	_, err = uc.IssueInvoiceNumber(context.Background(), active)
	assert.ErrorIs(t, err, domain.ErrTimbradoExpired)
}

func TestIssueInvoiceNumber_CupoAgotado(t *testing.T) {
	repo := newFakeTimbradoRepo()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	uc := timbrados.NewUseCase(repo).WithClock(fixedClock(now))

	in := registerRequest("12345678")
	in.MaxInvoices = 2
	_, err := uc.Register(context.Background(), in)
	require.NoError(t, err)
	active, err := uc.ActiveTimbrado(context.Background())
	require.NoError(t, err)

	_, err = uc.IssueInvoiceNumber(context.Background(), active)
	require.NoError(t, err)
	_, err = uc.IssueInvoiceNumber(context.Background(), active)
	require.NoError(t, err)

	_, err = uc.IssueInvoiceNumber(context.Background(), active)
	assert.ErrorIs(t, err, domain.ErrInvoiceQuotaExceeded)
}

// ── Tests de consulta del timbrado activo ────────────────────────────────────

func TestActive_SinTimbradoVigente(t *testing.T) {
	uc := timbrados.NewUseCase(newFakeTimbradoRepo())
	_, err := uc.Active(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveTimbrado)
}

func TestActive_EligeElMasAntiguoSiHayVariosVigentes(t *testing.T) {
	// La invariante de ventana única se valida al alta, pero el lookup debe
	// resolver determinísticamente si igual quedaron dos solapados.
	repo := newFakeTimbradoRepo()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	older := &entity.Timbrado{
		ID: "a", Code: "11111111",
		IssuedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		ExpiresAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
		MaxInvoices: 10,
	}
	newer := &entity.Timbrado{
		ID: "b", Code: "22222222",
		IssuedAt:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local),
		ExpiresAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local),
		MaxInvoices: 10,
	}
	require.NoError(t, repo.Create(context.Background(), newer))
	require.NoError(t, repo.Create(context.Background(), older))

	uc := timbrados.NewUseCase(repo).WithClock(fixedClock(now))
	active, err := uc.ActiveTimbrado(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "11111111", active.Code, "gana el de issuedAt más antiguo")
}
