package dto

import (
	"fmt"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta en el request.
type SaleItemRequest struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit,omitempty"`
	Quantity   int64           `json:"quantity"`
	IVARate    int64           `json:"iva_rate"`
	IVAAmount  decimal.Decimal `json:"iva_amount"` // informativo; el servidor lo recalcula
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SalePaymentRequest pago aplicado a la venta.
type SalePaymentRequest struct {
	Method string          `json:"payment_method"`
	Amount decimal.Decimal `json:"total_amount"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Products     []SaleItemRequest    `json:"products"`
	Payments     []SalePaymentRequest `json:"payment"`
	RUC          string               `json:"ruc,omitempty"`
	CustomerName string               `json:"customer_name,omitempty"`
	Status       string               `json:"status,omitempty"`
	Mode         string               `json:"mode,omitempty"`
	Invoiced     bool                 `json:"invoiced,omitempty"` // true = facturar inmediatamente
}

// Validate valida el request completo antes de ejecutar el caso de uso.
// Devuelve la lista de errores de campo (vacía si todo está bien).
func (r *CreateSaleRequest) Validate() []FieldError {
	var errs []FieldError
	if len(r.Products) == 0 {
		errs = append(errs, FieldError{Field: "products", Message: "se requiere al menos un producto"})
	}
	for i, item := range r.Products {
		prefix := fmt.Sprintf("products[%d]", i)
		if item.ProductID == "" {
			errs = append(errs, FieldError{Field: prefix + ".product_id", Message: "requerido"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, FieldError{Field: prefix + ".quantity", Message: "debe ser un entero positivo"})
		}
		if !entity.ValidIVARate(item.IVARate) {
			errs = append(errs, FieldError{Field: prefix + ".iva_rate", Message: "debe ser 0, 5 o 10"})
		}
		if item.TotalPrice.IsNegative() {
			errs = append(errs, FieldError{Field: prefix + ".total_price", Message: "no puede ser negativo"})
		}
	}
	for i, p := range r.Payments {
		prefix := fmt.Sprintf("payment[%d]", i)
		if !entity.ValidPaymentMethod(p.Method) {
			errs = append(errs, FieldError{Field: prefix + ".payment_method", Message: "debe ser cash, card, qr o transfer"})
		}
		if p.Amount.IsNegative() {
			errs = append(errs, FieldError{Field: prefix + ".total_amount", Message: "no puede ser negativo"})
		}
	}
	if r.Status != "" && !entity.ValidInitialStatus(r.Status) {
		errs = append(errs, FieldError{Field: "status", Message: "debe ser pending, ordered o completed"})
	}
	if r.Mode != "" && !entity.ValidMode(r.Mode) {
		errs = append(errs, FieldError{Field: "mode", Message: "debe ser local, carry o delivery"})
	}
	return errs
}

// UpdateSaleRequest body para PUT /api/sales/:id (actualización completa).
type UpdateSaleRequest struct {
	Products     []SaleItemRequest    `json:"products"`
	Payments     []SalePaymentRequest `json:"payment"`
	RUC          string               `json:"ruc,omitempty"`
	CustomerName string               `json:"customer_name,omitempty"`
	Status       string               `json:"status,omitempty"`
	Mode         string               `json:"mode,omitempty"`
	Invoiced     bool                 `json:"invoiced,omitempty"`
}

// Validate reusa las reglas de forma de la creación. El status admite también
// los terminales: cancelar o anular vía PUT es una transición legítima que el
// caso de uso valida contra la tabla.
func (r *UpdateSaleRequest) Validate() []FieldError {
	cr := CreateSaleRequest{
		Products: r.Products,
		Payments: r.Payments,
		Mode:     r.Mode,
	}
	errs := cr.Validate()
	if r.Status != "" && !entity.ValidStatus(r.Status) {
		errs = append(errs, FieldError{Field: "status", Message: "estado desconocido"})
	}
	return errs
}

// UpdateStatusRequest body para PATCH /api/sales/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	RUC    string `json:"ruc,omitempty"`
}

// Validate valida el cambio de estado.
func (r *UpdateStatusRequest) Validate() []FieldError {
	if !entity.ValidStatus(r.Status) {
		return []FieldError{{Field: "status", Message: "estado desconocido"}}
	}
	return nil
}

// AddPaymentRequest body para POST /api/sales/:id/payments.
type AddPaymentRequest struct {
	Method string          `json:"payment_method"`
	Amount decimal.Decimal `json:"total_amount"`
}

// Validate valida el pago.
func (r *AddPaymentRequest) Validate() []FieldError {
	var errs []FieldError
	if !entity.ValidPaymentMethod(r.Method) {
		errs = append(errs, FieldError{Field: "payment_method", Message: "debe ser cash, card, qr o transfer"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "total_amount", Message: "debe ser mayor a cero"})
	}
	return errs
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit,omitempty"`
	Quantity   int64           `json:"quantity"`
	IVARate    int64           `json:"iva_rate"`
	IVAAmount  decimal.Decimal `json:"iva_amount"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SalePaymentResponse pago en respuestas.
type SalePaymentResponse struct {
	Method string          `json:"payment_method"`
	Amount decimal.Decimal `json:"total_amount"`
	Date   string          `json:"date"`
}

// TaxTotalsResponse totales por franja de IVA.
type TaxTotalsResponse struct {
	Gravada10 decimal.Decimal `json:"gravada10"`
	Gravada5  decimal.Decimal `json:"gravada5"`
	Exenta    decimal.Decimal `json:"exenta"`
	IVA10     decimal.Decimal `json:"iva10"`
	IVA5      decimal.Decimal `json:"iva5"`
}

// SaleResponse venta completa en respuestas.
type SaleResponse struct {
	ID             string                `json:"id"`
	DailyID        int64                 `json:"daily_id"`
	Products       []SaleItemResponse    `json:"products"`
	Payments       []SalePaymentResponse `json:"payment"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	Totals         TaxTotalsResponse     `json:"totals"`
	RUC            string                `json:"ruc,omitempty"`
	CustomerName   string                `json:"customer_name,omitempty"`
	Status         string                `json:"status"`
	Stage          string                `json:"stage"`
	Mode           string                `json:"mode"`
	Invoiced       bool                  `json:"invoiced"`
	InvoiceNumber  string                `json:"invoice_number,omitempty"`
	TimbradoNumber string                `json:"timbrado_number,omitempty"`
	TimbradoInit   string                `json:"timbrado_init,omitempty"`
	Date           string                `json:"date"`
}

// InvoiceInfoResponse resultado de facturar una venta.
type InvoiceInfoResponse struct {
	SaleID         string `json:"sale_id"`
	InvoiceNumber  string `json:"invoice_number"`
	TimbradoNumber string `json:"timbrado_number"`
	TimbradoInit   string `json:"timbrado_init"`
}
