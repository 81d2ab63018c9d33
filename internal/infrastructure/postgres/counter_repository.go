package postgres

import (
	"context"
	"fmt"

	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo implementación de CounterRepository sobre una tabla con la
// fecha como clave primaria.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// NextDailyID crea el contador del día si no existe e incrementa en la misma
// sentencia. El upsert toma el row lock de la fila del día, así que dos ventas
// simultáneas reciben correlativos distintos sin transacción explícita.
func (r *CounterRepo) NextDailyID(ctx context.Context, day string) (int64, error) {
	query := `
		INSERT INTO daily_counters (day, seq)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = daily_counters.seq + 1
		RETURNING seq`
	var seq int64
	if err := r.q.QueryRow(ctx, query, day).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next daily id: %w", err)
	}
	return seq, nil
}
