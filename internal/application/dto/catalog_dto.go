package dto

import (
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductVariantDTO variante de producto en requests y respuestas.
type ProductVariantDTO struct {
	ID    string          `json:"id,omitempty"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// SaveProductRequest body para POST/PUT /api/products.
type SaveProductRequest struct {
	Name       string              `json:"name"`
	Price      decimal.Decimal     `json:"price"`
	IVARate    int64               `json:"iva_rate"`
	CategoryID string              `json:"category_id"`
	Unit       string              `json:"unit,omitempty"`
	ImageURL   string              `json:"image_url,omitempty"`
	Stock      int64               `json:"stock"`
	Variants   []ProductVariantDTO `json:"variants,omitempty"`
}

// Validate valida el alta/edición de producto.
func (r *SaveProductRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "requerido"})
	}
	if r.Price.IsNegative() {
		errs = append(errs, FieldError{Field: "price", Message: "no puede ser negativo"})
	}
	if !entity.ValidIVARate(r.IVARate) {
		errs = append(errs, FieldError{Field: "iva_rate", Message: "debe ser 0, 5 o 10"})
	}
	return errs
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Price      decimal.Decimal     `json:"price"`
	IVARate    int64               `json:"iva_rate"`
	CategoryID string              `json:"category_id,omitempty"`
	Unit       string              `json:"unit,omitempty"`
	ImageURL   string              `json:"image_url,omitempty"`
	Stock      int64               `json:"stock"`
	Variants   []ProductVariantDTO `json:"variants,omitempty"`
	Active     bool                `json:"active"`
}

// SaveCategoryRequest body para POST/PUT /api/categories.
type SaveCategoryRequest struct {
	Name string `json:"name"`
}

// Validate valida la categoría.
func (r *SaveCategoryRequest) Validate() []FieldError {
	if r.Name == "" {
		return []FieldError{{Field: "name", Message: "requerido"}}
	}
	return nil
}

// CategoryResponse categoría en respuestas.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaveCustomerRequest body para POST/PUT /api/customers.
type SaveCustomerRequest struct {
	RUC     string `json:"ruc"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address struct {
		Street       string `json:"street,omitempty"`
		City         string `json:"city,omitempty"`
		Neighborhood string `json:"neighborhood,omitempty"`
		Reference    string `json:"reference,omitempty"`
	} `json:"address,omitempty"`
}

// Validate valida el cliente.
func (r *SaveCustomerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.RUC == "" {
		errs = append(errs, FieldError{Field: "ruc", Message: "requerido"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "requerido"})
	}
	return errs
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID     string `json:"id"`
	RUC    string `json:"ruc"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}
