package entity

import "time"

// CustomerAddress dirección de entrega (modalidad delivery).
type CustomerAddress struct {
	Street       string
	City         string
	Neighborhood string
	Reference    string
}

// Customer representa un cliente identificado por su RUC o cédula.
type Customer struct {
	ID        string
	RUC       string // RUC o CI, único
	Name      string
	Email     string
	Phone     string
	Address   CustomerAddress
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
