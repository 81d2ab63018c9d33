package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/application/timbrados"
	"github.com/mbenitez/factupos-api/internal/domain"
)

// TimbradoHandler maneja las peticiones HTTP de timbrados (protegido, admin).
type TimbradoHandler struct {
	uc *timbrados.UseCase
}

// NewTimbradoHandler construye el handler.
func NewTimbradoHandler(uc *timbrados.UseCase) *TimbradoHandler {
	return &TimbradoHandler{uc: uc}
}

// Register registra un timbrado nuevo. Falla con 409 si el código ya existe
// o si hay otro timbrado vigente en este momento.
// POST /api/timbrados
func (h *TimbradoHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterTimbradoRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	t, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// Active devuelve el timbrado vigente; 404 si no hay ninguno.
// GET /api/timbrados/active
func (h *TimbradoHandler) Active(c *fiber.Ctx) error {
	t, err := h.uc.Active(c.Context())
	if err != nil {
		// Al consultar, "no hay timbrado" es un recurso ausente, no un
		// fallo de facturación: 404, a diferencia del 400 al facturar.
		if errors.Is(err, domain.ErrNoActiveTimbrado) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(t)
}

// List lista todos los timbrados registrados.
// GET /api/timbrados
func (h *TimbradoHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
