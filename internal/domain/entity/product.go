package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Franjas de IVA Paraguay (porcentaje sobre el precio neto).
const (
	IVARateExempt int64 = 0
	IVARate5      int64 = 5
	IVARate10     int64 = 10
)

// ValidIVARate indica si la tasa pertenece a una franja paraguaya válida.
func ValidIVARate(rate int64) bool {
	return rate == IVARateExempt || rate == IVARate5 || rate == IVARate10
}

// ProductVariant es una presentación alternativa del producto (ej. tamaño)
// con su propio precio.
type ProductVariant struct {
	ID    string
	Size  string
	Price decimal.Decimal
}

// Product representa un ítem del menú/catálogo del punto de venta.
// El precio es final (IVA incluido), como se muestra en carta y ticket.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	IVARate    int64 // 0, 5 o 10
	CategoryID string
	Unit       string
	ImageURL   string
	Stock      int64
	Variants   []ProductVariant
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
