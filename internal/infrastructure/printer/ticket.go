// Layout del ticket de 80mm:
//
//	┌──────────────────────────────┐
//	│  NOMBRE DEL LOCAL            │
//	│  Orden #N        dd/mm/yyyy  │
//	│  Factura 001-001-000123      │
//	│  Timbrado 12345678           │
//	│  ──────────────────────────  │
//	│  2x Producto        20.000   │
//	│  ──────────────────────────  │
//	│  Gravada 10%  /  IVA 10%     │
//	│  TOTAL            Gs. 20.000 │
//	└──────────────────────────────┘
package printer

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// RenderTicket genera el PDF del ticket de venta para el cliente.
func RenderTicket(sale *entity.Sale) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(80, 297).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "courier", Size: 8}).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(sale)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.3}))
	for _, r := range itemRows(sale.Products) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.3}))
	m.AddRows(taxRows(sale)...)
	m.AddRows(totalRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("ticket: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRows(sale *entity.Sale) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(
			fmt.Sprintf("ORDEN #%d", sale.DailyID),
			props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center},
		))),
		row.New(4).Add(col.New(12).Add(text.New(
			sale.Date.Format("02/01/2006 15:04"),
			props.Text{Size: 8, Align: align.Center},
		))),
	}
	if sale.Invoiced {
		rows = append(rows,
			row.New(4).Add(col.New(12).Add(text.New(
				"Factura "+sale.InvoiceNumber,
				props.Text{Size: 8, Align: align.Center},
			))),
			row.New(4).Add(col.New(12).Add(text.New(
				timbradoLegend(sale),
				props.Text{Size: 7, Align: align.Center},
			))),
		)
	}
	if sale.CustomerName != "" || sale.RUC != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(
			strings.TrimSpace(sale.CustomerName+"  RUC: "+sale.RUC),
			props.Text{Size: 8},
		))))
	}
	return rows
}

func timbradoLegend(sale *entity.Sale) string {
	legend := "Timbrado " + sale.TimbradoNumber
	if sale.TimbradoInit != nil {
		legend += "  vigente desde " + sale.TimbradoInit.Format("02/01/2006")
	}
	return legend
}

func itemRows(items []entity.LineItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		label := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		rows = append(rows, row.New(4).Add(
			col.New(8).Add(text.New(label, props.Text{Size: 8})),
			col.New(4).Add(text.New(formatGs(it.TotalPrice), props.Text{Size: 8, Align: align.Right})),
		))
	}
	return rows
}

func taxRows(sale *entity.Sale) []core.Row {
	var rows []core.Row
	add := func(label string, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		rows = append(rows, row.New(4).Add(
			col.New(8).Add(text.New(label, props.Text{Size: 7})),
			col.New(4).Add(text.New(formatGs(amount), props.Text{Size: 7, Align: align.Right})),
		))
	}
	add("Gravada 10%", sale.Totals.Gravada10)
	add("IVA 10%", sale.Totals.IVA10)
	add("Gravada 5%", sale.Totals.Gravada5)
	add("IVA 5%", sale.Totals.IVA5)
	add("Exenta", sale.Totals.Exenta)
	return rows
}

func totalRow(sale *entity.Sale) core.Row {
	return row.New(6).Add(
		col.New(6).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 10})),
		col.New(6).Add(text.New("Gs. "+formatGs(sale.TotalAmount),
			props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right})),
	)
}

// formatGs formatea un monto en guaraníes con separador de miles.
func formatGs(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
