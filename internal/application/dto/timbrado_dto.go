package dto

import "regexp"

var timbradoCodeRe = regexp.MustCompile(`^\d{8}$`)
var branchCodeRe = regexp.MustCompile(`^\d{3}$`)

// RegisterTimbradoRequest body para POST /api/timbrados.
// IssuedAt y ExpiresAt en formato YYYY-MM-DD; la expiración se normaliza al
// final del día más un día completo de gracia.
type RegisterTimbradoRequest struct {
	Code          string `json:"code"`
	IssuedAt      string `json:"issued_at"`
	ExpiresAt     string `json:"expires_at"`
	Establishment string `json:"establishment,omitempty"` // default "001"
	Branch        string `json:"branch,omitempty"`        // default "001"
	MaxInvoices   int64  `json:"max_invoices,omitempty"`  // default 999999
}

// Validate valida el alta de timbrado.
func (r *RegisterTimbradoRequest) Validate() []FieldError {
	var errs []FieldError
	if !timbradoCodeRe.MatchString(r.Code) {
		errs = append(errs, FieldError{Field: "code", Message: "el timbrado debe tener 8 dígitos"})
	}
	if r.IssuedAt == "" {
		errs = append(errs, FieldError{Field: "issued_at", Message: "requerido (YYYY-MM-DD)"})
	}
	if r.ExpiresAt == "" {
		errs = append(errs, FieldError{Field: "expires_at", Message: "requerido (YYYY-MM-DD)"})
	}
	if r.Establishment != "" && !branchCodeRe.MatchString(r.Establishment) {
		errs = append(errs, FieldError{Field: "establishment", Message: "debe tener 3 dígitos"})
	}
	if r.Branch != "" && !branchCodeRe.MatchString(r.Branch) {
		errs = append(errs, FieldError{Field: "branch", Message: "debe tener 3 dígitos"})
	}
	if r.MaxInvoices < 0 {
		errs = append(errs, FieldError{Field: "max_invoices", Message: "no puede ser negativo"})
	}
	return errs
}

// TimbradoResponse timbrado en respuestas.
type TimbradoResponse struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	IssuedAt          string `json:"issued_at"`
	ExpiresAt         string `json:"expires_at"`
	Establishment     string `json:"establishment"`
	Branch            string `json:"branch"`
	LastInvoiceNumber int64  `json:"last_invoice_number"`
	MaxInvoices       int64  `json:"max_invoices"`
	Active            bool   `json:"active"`
}
