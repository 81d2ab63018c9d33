package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de negocio de una venta.
const (
	SaleStatusPending   = "pending"
	SaleStatusOrdered   = "ordered"
	SaleStatusCompleted = "completed"
	SaleStatusCanceled  = "canceled"
	SaleStatusAnnulled  = "annulled"
)

// Etapas de preparación/entrega (proyección del status, no se elige libremente).
const (
	SaleStageProcessed = "processed"
	SaleStageFinished  = "finished"
	SaleStageDelivered = "delivered"
	SaleStageClosed    = "closed"
)

// Modalidades de venta.
const (
	SaleModeLocal    = "local"
	SaleModeCarry    = "carry"
	SaleModeDelivery = "delivery"
)

// Medios de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodQR       = "qr"
	PaymentMethodTransfer = "transfer"
)

// LineItem es una línea de venta. El nombre y precio se copian del producto
// al momento de vender: el ticket no cambia si después se edita el catálogo.
type LineItem struct {
	ProductID  string
	VariantID  string // opcional
	Name       string
	Unit       string
	Quantity   int64
	IVARate    int64           // 0, 5 o 10 (porcentaje)
	IVAAmount  decimal.Decimal // IVA incluido en TotalPrice
	TotalPrice decimal.Decimal // precio final de la línea, IVA incluido
}

// PaymentEntry es un pago aplicado a la venta (puede haber varios).
type PaymentEntry struct {
	Method string
	Amount decimal.Decimal
	Date   time.Time
}

// TaxTotals agrupa bases gravadas e IVA por franja. Se deriva siempre de las
// líneas (fiscal.Aggregate); nunca se muta por separado.
type TaxTotals struct {
	Gravada10 decimal.Decimal
	Gravada5  decimal.Decimal
	Exenta    decimal.Decimal
	IVA10     decimal.Decimal
	IVA5      decimal.Decimal
}

// Sale es la raíz del agregado de venta.
type Sale struct {
	ID           string
	DailyID      int64 // correlativo del día, asignado una sola vez al crear
	Products     []LineItem
	Payments     []PaymentEntry
	TotalAmount  decimal.Decimal
	Totals       TaxTotals
	RUC          string
	CustomerName string
	Status       string
	Stage        string
	Mode         string
	UserID       string

	// Datos de facturación; nulos hasta que Invoiced pase a true.
	// Invoiced es monótono: una vez facturada, nunca vuelve atrás.
	Invoiced       bool
	InvoiceNumber  string
	TimbradoNumber string
	TimbradoInit   *time.Time
	TimbradoID     string

	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentTotal suma los pagos registrados.
func (s *Sale) PaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ValidStatus indica si el valor es uno de los estados permitidos.
func ValidStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusOrdered, SaleStatusCompleted,
		SaleStatusCanceled, SaleStatusAnnulled:
		return true
	}
	return false
}

// ValidInitialStatus indica si una venta puede crearse directamente en este
// estado. Los terminales (canceled, annulled) solo se alcanzan por transición.
func ValidInitialStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusOrdered, SaleStatusCompleted:
		return true
	}
	return false
}

// ValidMode indica si el valor es una modalidad de venta permitida.
func ValidMode(mode string) bool {
	switch mode {
	case SaleModeLocal, SaleModeCarry, SaleModeDelivery:
		return true
	}
	return false
}

// ValidPaymentMethod indica si el valor es un medio de pago permitido.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodQR, PaymentMethodTransfer:
		return true
	}
	return false
}

// saleTransitions tabla de transiciones permitidas entre estados.
var saleTransitions = map[string][]string{
	SaleStatusPending:   {SaleStatusCompleted, SaleStatusCanceled},
	SaleStatusOrdered:   {SaleStatusCompleted, SaleStatusCanceled},
	SaleStatusCompleted: {SaleStatusAnnulled},
}

// CanTransition indica si el cambio de estado from → to está permitido.
func CanTransition(from, to string) bool {
	for _, allowed := range saleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// stageByStatus proyección del stage a partir del status. Centralizada en una
// tabla para que creación y actualización no diverjan.
var stageByStatus = map[string]string{
	SaleStatusPending:   SaleStageProcessed,
	SaleStatusOrdered:   SaleStageProcessed,
	SaleStatusCompleted: SaleStageDelivered,
	SaleStatusCanceled:  SaleStageClosed,
	SaleStatusAnnulled:  SaleStageClosed,
}

// StageFor devuelve el stage derivado de un status.
func StageFor(status string) string {
	if stage, ok := stageByStatus[status]; ok {
		return stage
	}
	return SaleStageProcessed
}
