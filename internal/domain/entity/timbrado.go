package entity

import "time"

// Timbrado es la autorización fiscal paraguaya para emitir facturas: un código
// de 8 dígitos con ventana de vigencia, prefijo establecimiento-sucursal y un
// correlativo interno con cupo máximo. Administrativamente solo se crea; el
// único campo que muta en operación es LastInvoiceNumber.
type Timbrado struct {
	ID                string
	Code              string // 8 dígitos, único
	IssuedAt          time.Time
	ExpiresAt         time.Time
	Establishment     string // 3 dígitos, ej. "001"
	Branch            string // 3 dígitos, ej. "001"
	LastInvoiceNumber int64  // correlativo interno, inicia en 0
	MaxInvoices       int64  // cupo de facturas autorizado
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive indica si el timbrado está vigente en el instante dado.
func (t *Timbrado) IsActive(now time.Time) bool {
	return !now.Before(t.IssuedAt) && !now.After(t.ExpiresAt)
}

// HasQuota indica si queda cupo para emitir otra factura.
func (t *Timbrado) HasQuota() bool {
	return t.LastInvoiceNumber < t.MaxInvoices
}
