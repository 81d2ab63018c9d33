package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Ventas
	ErrEmptyLineItems      = errors.New("la venta requiere al menos un producto")
	ErrPaymentExceedsTotal = errors.New("la suma de pagos supera el total de la venta")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrAlreadyInvoiced     = errors.New("la venta ya fue facturada")

	// Timbrados
	ErrNoActiveTimbrado     = errors.New("no hay timbrado activo")
	ErrActiveTimbradoExists = errors.New("ya existe un timbrado activo")
	ErrTimbradoExpired      = errors.New("timbrado expirado")
	ErrInvoiceQuotaExceeded = errors.New("se alcanzó el límite de facturas del timbrado")

	// Cierres de caja
	ErrClosingAlreadyOpen   = errors.New("ya existe un cierre de caja abierto para el día")
	ErrClosingAlreadyClosed = errors.New("el cierre de caja ya está cerrado")
)
