package repository

import (
	"context"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// CashClosingRepository define el puerto de persistencia de cierres de caja.
type CashClosingRepository interface {
	Create(ctx context.Context, c *entity.CashClosing) error
	GetByID(ctx context.Context, id string) (*entity.CashClosing, error)
	// GetOpenByUserAndDay cierre abierto del usuario para el día (YYYY-MM-DD);
	// nil, nil si no existe.
	GetOpenByUserAndDay(ctx context.Context, userID, day string) (*entity.CashClosing, error)
	Update(ctx context.Context, c *entity.CashClosing) error
	List(ctx context.Context, limit, offset int) ([]*entity.CashClosing, error)
}
