package printer

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// RenderKitchenOrder arma la comanda como texto plano codificado en CP850,
// la página de códigos de las impresoras térmicas de cocina.
func RenderKitchenOrder(sale *entity.Sale) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "*** COMANDA #%d ***\n", sale.DailyID)
	fmt.Fprintf(&b, "%s  %s\n", sale.Date.Format("02/01/2006 15:04"), modeLabel(sale.Mode))
	b.WriteString(strings.Repeat("-", 32) + "\n")
	for _, it := range sale.Products {
		fmt.Fprintf(&b, "%2dx %s\n", it.Quantity, it.Name)
	}
	b.WriteString(strings.Repeat("-", 32) + "\n\n\n")

	// ReplaceUnsupported evita que un emoji en el nombre de un producto
	// tumbe la comanda completa.
	encoder := encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder())
	encoded, _, err := transform.Bytes(encoder, []byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("comanda: codificar CP850: %w", err)
	}
	return encoded, nil
}

func modeLabel(mode string) string {
	switch mode {
	case entity.SaleModeCarry:
		return "PARA LLEVAR"
	case entity.SaleModeDelivery:
		return "DELIVERY"
	default:
		return "LOCAL"
	}
}
