package entity

import "time"

// CounterDateLayout formato de la clave diaria del contador (YYYY-MM-DD).
const CounterDateLayout = "2006-01-02"

// DailyCounter es el contador de órdenes del día, identificado por la fecha.
// Se crea perezosamente con la primera venta del día y solo se incrementa.
type DailyCounter struct {
	Day string // YYYY-MM-DD
	Seq int64
}

// CounterDay devuelve la clave del contador para un instante dado.
func CounterDay(t time.Time) string {
	return t.Format(CounterDateLayout)
}
