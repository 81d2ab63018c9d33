package entity

import "time"

// Category agrupa productos del menú (ej. bebidas, platos, postres).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
