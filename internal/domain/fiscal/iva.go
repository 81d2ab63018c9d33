// Package fiscal contiene la lógica tributaria pura del punto de venta:
// desagregación del IVA paraguayo incluido en los precios y formato del
// número de factura timbrada. Sin I/O ni estado.
package fiscal

import (
	"fmt"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// IVAIncluded devuelve el IVA contenido en un precio final para la tasa dada:
// iva = precio × tasa / (100 + tasa), redondeado a guaraníes enteros.
// El redondeo va sobre el IVA y la base sale por diferencia, de modo que
// base + iva == precio siempre, sin restos de redondeo.
func IVAIncluded(totalPrice decimal.Decimal, rate int64) decimal.Decimal {
	if rate == 0 {
		return decimal.Zero
	}
	r := decimal.NewFromInt(rate)
	return totalPrice.Mul(r).Div(cien.Add(r)).Round(0)
}

// Aggregate recalcula el IVA de cada línea y acumula bases e IVA por franja.
// Muta el IVAAmount de cada línea para que lo persistido sea siempre
// consistente con tasa y precio, ignorando lo que haya enviado el cliente.
// Con lista vacía devuelve totales en cero (el mínimo de líneas se valida
// en la capa de aplicación).
func Aggregate(items []entity.LineItem) entity.TaxTotals {
	totals := entity.TaxTotals{
		Gravada10: decimal.Zero,
		Gravada5:  decimal.Zero,
		Exenta:    decimal.Zero,
		IVA10:     decimal.Zero,
		IVA5:      decimal.Zero,
	}
	for i := range items {
		item := &items[i]
		iva := IVAIncluded(item.TotalPrice, item.IVARate)
		item.IVAAmount = iva
		base := item.TotalPrice.Sub(iva)

		switch item.IVARate {
		case entity.IVARate10:
			totals.Gravada10 = totals.Gravada10.Add(base)
			totals.IVA10 = totals.IVA10.Add(iva)
		case entity.IVARate5:
			totals.Gravada5 = totals.Gravada5.Add(base)
			totals.IVA5 = totals.IVA5.Add(iva)
		default:
			// exenta: el precio completo es base, sin franja de IVA
			totals.Exenta = totals.Exenta.Add(item.TotalPrice)
		}
	}
	return totals
}

// TotalAmount suma el precio final de todas las líneas.
func TotalAmount(items []entity.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// FormatInvoiceNumber arma el número de factura paraguayo:
// establecimiento-sucursal-correlativo de 6 dígitos (ej. "001-001-000042").
func FormatInvoiceNumber(establishment, branch string, correlative int64) string {
	return fmt.Sprintf("%s-%s-%06d", establishment, branch, correlative)
}
