// Package timbrados administra las autorizaciones fiscales (timbrados):
// alta con ventana de vigencia exclusiva y emisión del correlativo de
// facturas dentro del timbrado activo.
package timbrados

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
)

// Valores administrativos por defecto (mismos del sistema anterior).
const (
	defaultEstablishment = "001"
	defaultBranch        = "001"
	defaultMaxInvoices   = 999999
)

// UseCase casos de uso del registro de timbrados.
type UseCase struct {
	repo repository.TimbradoRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.TimbradoRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Register da de alta un timbrado. Falla con ErrActiveTimbradoExists si ya
// hay uno vigente en este momento y con ErrDuplicate si el código existe.
// La expiración se normaliza al final del día indicado (23:59:59.999) más un
// día completo de gracia: el timbrado vale durante todo su día de vencimiento.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterTimbradoRequest) (*dto.TimbradoResponse, error) {
	issuedAt, err := time.ParseInLocation("2006-01-02", in.IssuedAt, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: issued_at", domain.ErrInvalidInput)
	}
	expiresAt, err := time.ParseInLocation("2006-01-02", in.ExpiresAt, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at", domain.ErrInvalidInput)
	}
	if expiresAt.Before(issuedAt) {
		return nil, fmt.Errorf("%w: expires_at anterior a issued_at", domain.ErrInvalidInput)
	}

	now := uc.now()
	active, err := uc.repo.FindActive(ctx, now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrActiveTimbradoExists
	}
	if existing, err := uc.repo.GetByCode(ctx, in.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicate
	}

	t := &entity.Timbrado{
		ID:            uuid.New().String(),
		Code:          in.Code,
		IssuedAt:      issuedAt,
		ExpiresAt:     NormalizeExpiry(expiresAt),
		Establishment: defaultIfEmpty(in.Establishment, defaultEstablishment),
		Branch:        defaultIfEmpty(in.Branch, defaultBranch),
		MaxInvoices:   in.MaxInvoices,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.MaxInvoices == 0 {
		t.MaxInvoices = defaultMaxInvoices
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return uc.toResponse(t), nil
}

// NormalizeExpiry lleva la expiración al fin del día (23:59:59.999) y suma un
// día completo de gracia.
func NormalizeExpiry(day time.Time) time.Time {
	endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59,
		999*int(time.Millisecond), day.Location())
	return endOfDay.AddDate(0, 0, 1)
}

// Active devuelve el timbrado vigente o ErrNoActiveTimbrado.
func (uc *UseCase) Active(ctx context.Context) (*dto.TimbradoResponse, error) {
	t, err := uc.ActiveTimbrado(ctx)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(t), nil
}

// ActiveTimbrado versión de dominio de Active (la usa el flujo de facturación).
func (uc *UseCase) ActiveTimbrado(ctx context.Context) (*entity.Timbrado, error) {
	t, err := uc.repo.FindActive(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNoActiveTimbrado
	}
	return t, nil
}

// IssueInvoiceNumber emite el siguiente número de factura del timbrado:
// valida vigencia, incrementa el correlativo con una actualización condicional
// (el cupo se verifica en la misma operación) y devuelve el número formateado
// "establecimiento-sucursal-correlativo".
func (uc *UseCase) IssueInvoiceNumber(ctx context.Context, t *entity.Timbrado) (string, error) {
	if !t.IsActive(uc.now()) {
		return "", domain.ErrTimbradoExpired
	}
	correlative, err := uc.repo.IssueNumber(ctx, t.ID)
	if err != nil {
		return "", err
	}
	return fiscal.FormatInvoiceNumber(t.Establishment, t.Branch, correlative), nil
}

// List devuelve todos los timbrados, más reciente primero.
func (uc *UseCase) List(ctx context.Context) ([]*dto.TimbradoResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TimbradoResponse, 0, len(list))
	for _, t := range list {
		out = append(out, uc.toResponse(t))
	}
	return out, nil
}

func (uc *UseCase) toResponse(t *entity.Timbrado) *dto.TimbradoResponse {
	return &dto.TimbradoResponse{
		ID:                t.ID,
		Code:              t.Code,
		IssuedAt:          t.IssuedAt.Format("2006-01-02"),
		ExpiresAt:         t.ExpiresAt.Format(time.RFC3339),
		Establishment:     t.Establishment,
		Branch:            t.Branch,
		LastInvoiceNumber: t.LastInvoiceNumber,
		MaxInvoices:       t.MaxInvoices,
		Active:            t.IsActive(uc.now()),
	}
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
