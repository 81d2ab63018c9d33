package repository

import (
	"context"
	"time"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas.
type SaleFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
	Offset int
}

// InvoiceAssignment datos fiscales que se fijan al facturar una venta.
type InvoiceAssignment struct {
	InvoiceNumber  string
	TimbradoNumber string
	TimbradoInit   time.Time
	TimbradoID     string
}

// SaleRepository define el puerto de persistencia de ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// Update reemplaza líneas, pagos, totales y metadatos de la venta.
	// No toca los campos de facturación (eso es MarkInvoiced).
	Update(ctx context.Context, sale *entity.Sale) error
	UpdateStatus(ctx context.Context, id, status, stage, ruc string) error
	UpdateStage(ctx context.Context, id, stage string) error
	AddPayment(ctx context.Context, id string, payment entity.PaymentEntry) error
	// MarkInvoiced fija los datos fiscales solo si la venta aún no está
	// facturada (compare-and-set sobre invoiced=false). Devuelve false si
	// otra petición ganó la carrera.
	MarkInvoiced(ctx context.Context, id string, inv InvoiceAssignment) (bool, error)
	// ListByDay ventas de un día calendario (cierre de caja).
	ListByDay(ctx context.Context, day string) ([]*entity.Sale, error)
}
