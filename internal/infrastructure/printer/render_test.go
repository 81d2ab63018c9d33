package printer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

func TestFormatGs_SeparadorDeMiles(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		55000:    "55.000",
		1250000:  "1.250.000",
		-1250000: "-1.250.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatGs(decimal.NewFromInt(in)))
	}
}

func TestRenderKitchenOrder_ContenidoYCodificacion(t *testing.T) {
	sale := &entity.Sale{
		DailyID: 7,
		Mode:    entity.SaleModeCarry,
		Date:    time.Date(2024, 3, 15, 12, 30, 0, 0, time.Local),
		Products: []entity.LineItem{
			{Name: "Pizza Muzzarella", Quantity: 1},
			{Name: "Empanada de Jamón", Quantity: 3},
		},
	}

	raw, err := RenderKitchenOrder(sale)
	require.NoError(t, err)

	// De vuelta a UTF-8 para inspeccionar el contenido.
	decoded, _, err := transform.Bytes(charmap.CodePage850.NewDecoder(), raw)
	require.NoError(t, err)
	text := string(decoded)

	assert.Contains(t, text, "COMANDA #7")
	assert.Contains(t, text, "PARA LLEVAR")
	assert.Contains(t, text, " 1x Pizza Muzzarella")
	assert.Contains(t, text, " 3x Empanada de Jamón", "la ó debe sobrevivir el viaje por CP850")
}

func TestRenderKitchenOrder_CaracterSinMapeoNoFalla(t *testing.T) {
	sale := &entity.Sale{
		DailyID: 1,
		Date:    time.Now(),
		Products: []entity.LineItem{
			{Name: "Hamburguesa 🍔 doble", Quantity: 1},
		},
	}
	raw, err := RenderKitchenOrder(sale)
	require.NoError(t, err, "un emoji se sustituye, nunca rompe la comanda")
	assert.NotEmpty(t, raw)
}

func TestRenderTicket_GeneraPDF(t *testing.T) {
	sale := &entity.Sale{
		DailyID:     12,
		TotalAmount: decimal.NewFromInt(71000),
		Totals: entity.TaxTotals{
			Gravada10: decimal.NewFromInt(64545),
			IVA10:     decimal.NewFromInt(6455),
		},
		Status: entity.SaleStatusCompleted,
		Mode:   entity.SaleModeLocal,
		Date:   time.Date(2024, 3, 15, 12, 30, 0, 0, time.Local),
		Products: []entity.LineItem{
			{Name: "Pizza Muzzarella", Quantity: 1, IVARate: 10, TotalPrice: decimal.NewFromInt(55000)},
			{Name: "Coca 500ml", Quantity: 2, IVARate: 10, TotalPrice: decimal.NewFromInt(16000)},
		},
	}

	pdf, err := RenderTicket(sale)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]), "cabecera PDF")
}
