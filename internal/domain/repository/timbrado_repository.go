package repository

import (
	"context"
	"time"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// TimbradoRepository define el puerto de persistencia de timbrados.
type TimbradoRepository interface {
	Create(ctx context.Context, t *entity.Timbrado) error
	GetByID(ctx context.Context, id string) (*entity.Timbrado, error)
	GetByCode(ctx context.Context, code string) (*entity.Timbrado, error)
	List(ctx context.Context) ([]*entity.Timbrado, error)
	// FindActive devuelve el timbrado cuya ventana [issuedAt, expiresAt]
	// contiene now; si hay más de uno, el de issuedAt más antiguo.
	// nil, nil cuando no hay timbrado vigente.
	FindActive(ctx context.Context, now time.Time) (*entity.Timbrado, error)
	// IssueNumber incrementa el correlativo del timbrado en una sola
	// operación condicional (respetando el cupo) y devuelve el valor nuevo.
	// Retorna domain.ErrInvoiceQuotaExceeded si el cupo está agotado.
	IssueNumber(ctx context.Context, id string) (int64, error)
}
