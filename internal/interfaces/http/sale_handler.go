package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/application/sales"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create crea una venta; si el body trae invoiced=true intenta facturarla en
// el mismo request. Un fallo de facturación no revierte la venta: se responde
// el error con el sale_id de la venta ya persistida.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	outcome, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	if outcome.InvoiceErr != nil {
		return respondInvoiceFailure(c, outcome.InvoiceErr, outcome.Sale.ID)
	}
	return c.Status(fiber.StatusCreated).JSON(outcome.Sale)
}

// Get obtiene una venta por id.
// GET /api/sales/:id
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	sale, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// List lista ventas con filtros opcionales de fecha y estado.
// GET /api/sales?from=YYYY-MM-DD&to=YYYY-MM-DD&status=&limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return respondValidation(c, []dto.FieldError{{Field: "from", Message: "formato YYYY-MM-DD"}})
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return respondValidation(c, []dto.FieldError{{Field: "to", Message: "formato YYYY-MM-DD"}})
		}
		// Límite exclusivo: el día "to" entra completo.
		t = t.AddDate(0, 0, 1)
		filter.To = &t
	}
	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Update actualización completa de la venta; puede disparar la facturación si
// invoiced pasa de false a true con la venta completada.
// PUT /api/sales/:id
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	outcome, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	if outcome.InvoiceErr != nil {
		return respondInvoiceFailure(c, outcome.InvoiceErr, outcome.Sale.ID)
	}
	return c.JSON(outcome.Sale)
}

// UpdateStatus cambia el estado de la venta; el stage se deriva del estado.
// PATCH /api/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	sale, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// MarkReady marca la orden como lista para entregar (stage=finished) sin
// tocar el estado de negocio.
// PATCH /api/sales/:id/ready
func (h *SaleHandler) MarkReady(c *fiber.Ctx) error {
	sale, err := h.uc.MarkReady(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// Invoice factura la venta contra el timbrado activo (a lo sumo una vez).
// POST /api/sales/:id/invoice
func (h *SaleHandler) Invoice(c *fiber.Ctx) error {
	info, err := h.uc.Invoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// AddPayment agrega un pago a la venta.
// POST /api/sales/:id/payments
func (h *SaleHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.AddPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	if errs := in.Validate(); len(errs) > 0 {
		return respondValidation(c, errs)
	}
	sale, err := h.uc.AddPayment(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// respondInvoiceFailure responde el error de facturación incluyendo el id de
// la venta que sí quedó persistida (el cliente puede reintentar con
// POST /api/sales/:id/invoice).
func respondInvoiceFailure(c *fiber.Ctx, err error, saleID string) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:    m.code,
				Message: m.err.Error(),
				SaleID:  saleID,
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "INTERNAL",
		Message: "error interno al facturar",
		SaleID:  saleID,
	})
}
