package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/fiscal"
)

func linea(rate int64, totalPrice int64) entity.LineItem {
	return entity.LineItem{
		ProductID:  "p1",
		Name:       "item",
		Quantity:   1,
		IVARate:    rate,
		TotalPrice: decimal.NewFromInt(totalPrice),
	}
}

// Escenario de referencia: dos líneas al 10% con precios IVA incluido de
// 11.000 y 5.500 Gs deben desagregar gravada 15.000 e IVA 1.500.
func TestAggregate_DosLineasGravada10(t *testing.T) {
	items := []entity.LineItem{linea(10, 11000), linea(10, 5500)}

	totals := fiscal.Aggregate(items)

	assert.True(t, totals.Gravada10.Equal(decimal.NewFromInt(15000)),
		"gravada 10 esperada 15000, obtenida %s", totals.Gravada10)
	assert.True(t, totals.IVA10.Equal(decimal.NewFromInt(1500)),
		"IVA 10 esperado 1500, obtenido %s", totals.IVA10)
	assert.True(t, totals.Gravada5.IsZero())
	assert.True(t, totals.IVA5.IsZero())
	assert.True(t, totals.Exenta.IsZero())
}

func TestAggregate_Franja5(t *testing.T) {
	// 21.000 Gs con IVA 5% incluido: base 20.000, IVA 1.000
	totals := fiscal.Aggregate([]entity.LineItem{linea(5, 21000)})

	assert.True(t, totals.Gravada5.Equal(decimal.NewFromInt(20000)))
	assert.True(t, totals.IVA5.Equal(decimal.NewFromInt(1000)))
}

func TestAggregate_ExentaVaCompleta(t *testing.T) {
	totals := fiscal.Aggregate([]entity.LineItem{linea(0, 8000)})

	assert.True(t, totals.Exenta.Equal(decimal.NewFromInt(8000)),
		"la línea exenta va completa a la base exenta")
	assert.True(t, totals.IVA10.IsZero())
	assert.True(t, totals.IVA5.IsZero())
}

// Invariante: por franja, gravada + IVA debe igualar la suma de los precios
// finales de las líneas de esa franja, aún con montos que no dividen exacto.
func TestAggregate_BaseMasIVAIgualaPrecio(t *testing.T) {
	items := []entity.LineItem{
		linea(10, 10001), // 10/110 no divide exacto
		linea(10, 7777),
		linea(5, 3333),
	}

	totals := fiscal.Aggregate(items)

	sum10 := decimal.NewFromInt(10001 + 7777)
	assert.True(t, totals.Gravada10.Add(totals.IVA10).Equal(sum10),
		"gravada10+iva10=%s, esperado %s", totals.Gravada10.Add(totals.IVA10), sum10)
	sum5 := decimal.NewFromInt(3333)
	assert.True(t, totals.Gravada5.Add(totals.IVA5).Equal(sum5))
}

// El agregador reescribe el IVAAmount de cada línea: lo que mande el cliente
// se ignora y se persiste el valor derivado de tasa y precio.
func TestAggregate_ReescribeIVAAmountInconsistente(t *testing.T) {
	item := linea(10, 11000)
	item.IVAAmount = decimal.NewFromInt(999) // valor inconsistente enviado por el cliente
	items := []entity.LineItem{item}

	fiscal.Aggregate(items)

	assert.True(t, items[0].IVAAmount.Equal(decimal.NewFromInt(1000)),
		"IVA recalculado esperado 1000, obtenido %s", items[0].IVAAmount)
}

func TestAggregate_ListaVaciaTotalesCero(t *testing.T) {
	totals := fiscal.Aggregate(nil)

	assert.True(t, totals.Gravada10.IsZero())
	assert.True(t, totals.Gravada5.IsZero())
	assert.True(t, totals.Exenta.IsZero())
	assert.True(t, totals.IVA10.IsZero())
	assert.True(t, totals.IVA5.IsZero())
}

func TestIVAIncluded_RedondeaAGuaraniesEnteros(t *testing.T) {
	iva := fiscal.IVAIncluded(decimal.NewFromInt(10001), 10)

	require.True(t, iva.Equal(iva.Round(0)), "el IVA debe ser entero")
	// 10001*10/110 = 909.18... → 909
	assert.True(t, iva.Equal(decimal.NewFromInt(909)))
}

func TestTotalAmount_SumaLineas(t *testing.T) {
	total := fiscal.TotalAmount([]entity.LineItem{linea(10, 11000), linea(10, 5500)})

	assert.True(t, total.Equal(decimal.NewFromInt(16500)))
}

func TestFormatInvoiceNumber_CorrelativoSeisDigitos(t *testing.T) {
	assert.Equal(t, "001-001-000001", fiscal.FormatInvoiceNumber("001", "001", 1))
	assert.Equal(t, "001-002-000042", fiscal.FormatInvoiceNumber("001", "002", 42))
	assert.Equal(t, "003-001-999999", fiscal.FormatInvoiceNumber("003", "001", 999999))
}
