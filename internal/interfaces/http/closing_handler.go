package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mbenitez/factupos-api/internal/application/closing"
	"github.com/mbenitez/factupos-api/internal/application/dto"
)

// ClosingHandler maneja las peticiones HTTP de cierres de caja (protegido).
type ClosingHandler struct {
	uc *closing.UseCase
}

// NewClosingHandler construye el handler.
func NewClosingHandler(uc *closing.UseCase) *ClosingHandler {
	return &ClosingHandler{uc: uc}
}

// Open abre la caja del día para el usuario autenticado.
// POST /api/cash-closings
func (h *ClosingHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenClosingRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	resp, err := h.uc.Open(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Current devuelve el cierre abierto del usuario para hoy.
// GET /api/cash-closings/current
func (h *ClosingHandler) Current(c *fiber.Ctx) error {
	resp, err := h.uc.Current(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Close cierra la caja con el arqueo físico; estado cerrado es terminal.
// PATCH /api/cash-closings/:id/close
func (h *ClosingHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseClosingRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	resp, err := h.uc.Close(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List lista cierres históricos.
// GET /api/cash-closings
func (h *ClosingHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondBadBody(c)
	}
	list, err := h.uc.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
