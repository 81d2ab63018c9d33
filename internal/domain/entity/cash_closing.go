package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un cierre de caja.
const (
	ClosingStatusOpen   = "open"
	ClosingStatusClosed = "closed"
)

// ClosingMovements movimientos de efectivo declarados por el cajero.
type ClosingMovements struct {
	InitialFund decimal.Decimal
	Expense1    decimal.Decimal
	Expense2    decimal.Decimal
}

// ClosingArqueo conteo físico por medio de pago al cerrar la caja.
type ClosingArqueo struct {
	Cash     decimal.Decimal
	Card     decimal.Decimal
	Transfer decimal.Decimal
}

// ClosingTotals totales calculados contra las ventas del día.
type ClosingTotals struct {
	Pending    decimal.Decimal // ventas aún no cobradas por completo
	SalesTotal decimal.Decimal // total facturado del día
	Calculated decimal.Decimal // efectivo esperado: fondo + ventas cash − gastos
	Difference decimal.Decimal // arqueo − calculado
}

// CashClosing es el arqueo de caja de un usuario para una fecha.
// Un cierre abierto por usuario y día; cerrado es terminal.
type CashClosing struct {
	ID        string
	Date      time.Time
	UserID    string
	Movements ClosingMovements
	Arqueo    ClosingArqueo
	Totals    ClosingTotals
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
