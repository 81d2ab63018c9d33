package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain"
)

// errorStatus mapea cada error de dominio a su código HTTP y código de API.
// Todos los errores de negocio pasan por acá; lo que no está en la tabla
// es un 500 genérico sin detalle interno.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrEmptyLineItems, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrPaymentExceedsTotal, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidTransition, fiber.StatusBadRequest, "INVALID_TRANSITION"},
	{domain.ErrAlreadyInvoiced, fiber.StatusConflict, "ALREADY_INVOICED"},
	{domain.ErrNoActiveTimbrado, fiber.StatusBadRequest, "NO_ACTIVE_TIMBRADO"},
	{domain.ErrActiveTimbradoExists, fiber.StatusConflict, "ACTIVE_TIMBRADO_EXISTS"},
	{domain.ErrTimbradoExpired, fiber.StatusBadRequest, "TIMBRADO_EXPIRED"},
	{domain.ErrInvoiceQuotaExceeded, fiber.StatusBadRequest, "QUOTA_EXCEEDED"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrClosingAlreadyOpen, fiber.StatusConflict, "CLOSING_ALREADY_OPEN"},
	{domain.ErrClosingAlreadyClosed, fiber.StatusConflict, "CLOSING_ALREADY_CLOSED"},
}

// respondError traduce un error de dominio a la respuesta JSON estructurada.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// respondValidation devuelve un 400 con la lista de errores de campo.
func respondValidation(c *fiber.Ctx, errs []dto.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos",
		Errors:  errs,
	})
}

// respondBadBody devuelve el 400 estándar para un body que no parsea.
func respondBadBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
