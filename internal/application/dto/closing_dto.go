package dto

import "github.com/shopspring/decimal"

// OpenClosingRequest body para POST /api/cash-closings.
type OpenClosingRequest struct {
	InitialFund decimal.Decimal `json:"initial_fund"`
	Expense1    decimal.Decimal `json:"expense1"`
	Expense2    decimal.Decimal `json:"expense2"`
}

// Validate valida la apertura de caja.
func (r *OpenClosingRequest) Validate() []FieldError {
	var errs []FieldError
	if r.InitialFund.IsNegative() {
		errs = append(errs, FieldError{Field: "initial_fund", Message: "no puede ser negativo"})
	}
	if r.Expense1.IsNegative() {
		errs = append(errs, FieldError{Field: "expense1", Message: "no puede ser negativo"})
	}
	if r.Expense2.IsNegative() {
		errs = append(errs, FieldError{Field: "expense2", Message: "no puede ser negativo"})
	}
	return errs
}

// CloseClosingRequest body para PATCH /api/cash-closings/:id/close (arqueo).
type CloseClosingRequest struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
}

// Validate valida el arqueo.
func (r *CloseClosingRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Cash.IsNegative() {
		errs = append(errs, FieldError{Field: "cash", Message: "no puede ser negativo"})
	}
	if r.Card.IsNegative() {
		errs = append(errs, FieldError{Field: "card", Message: "no puede ser negativo"})
	}
	if r.Transfer.IsNegative() {
		errs = append(errs, FieldError{Field: "transfer", Message: "no puede ser negativo"})
	}
	return errs
}

// ClosingResponse cierre de caja en respuestas.
type ClosingResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	Movements struct {
		InitialFund decimal.Decimal `json:"initial_fund"`
		Expense1    decimal.Decimal `json:"expense1"`
		Expense2    decimal.Decimal `json:"expense2"`
	} `json:"movements"`
	Arqueo struct {
		Cash     decimal.Decimal `json:"cash"`
		Card     decimal.Decimal `json:"card"`
		Transfer decimal.Decimal `json:"transfer"`
	} `json:"arqueo"`
	Totals struct {
		Pending    decimal.Decimal `json:"pending"`
		SalesTotal decimal.Decimal `json:"total_sales"`
		Calculated decimal.Decimal `json:"total_calculado"`
		Difference decimal.Decimal `json:"diferencia"`
	} `json:"totals"`
}
