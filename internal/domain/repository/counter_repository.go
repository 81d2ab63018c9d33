package repository

import "context"

// CounterRepository define el puerto del contador diario de órdenes.
type CounterRepository interface {
	// NextDailyID incrementa y devuelve el correlativo del día indicado
	// (clave YYYY-MM-DD) en una sola operación atómica con upsert: dos
	// llamadas concurrentes para la misma fecha nunca reciben el mismo valor.
	NextDailyID(ctx context.Context, day string) (int64, error)
}
