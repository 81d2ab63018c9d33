package sales

import (
	"context"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// Printer colaborador externo de impresión. Las dos operaciones son
// fire-and-forget: encolan el trabajo y retornan de inmediato; un fallo de
// impresión jamás afecta la venta (se registra en el log del adaptador).
type Printer interface {
	PrintCustomerTicket(sale *entity.Sale)
	PrintKitchenOrder(sale *entity.Sale)
}

// TimbradoRegistry puerta al registro de timbrados que necesita el flujo de
// facturación. La implementa timbrados.UseCase.
type TimbradoRegistry interface {
	// ActiveTimbrado devuelve el timbrado vigente o domain.ErrNoActiveTimbrado.
	ActiveTimbrado(ctx context.Context) (*entity.Timbrado, error)
	// IssueInvoiceNumber emite el siguiente número "est-suc-correlativo" del
	// timbrado; domain.ErrTimbradoExpired / ErrInvoiceQuotaExceeded en fallo.
	IssueInvoiceNumber(ctx context.Context, t *entity.Timbrado) (string, error)
}
