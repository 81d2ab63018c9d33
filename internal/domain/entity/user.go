package entity

import "time"

// Roles válidos para User.
const (
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
	RoleSpAdmin = "spadmin"
)

// ValidRole indica si el valor es un rol reconocido.
func ValidRole(role string) bool {
	return role == RoleCashier || role == RoleAdmin || role == RoleSpAdmin
}

// User representa un operador del punto de venta.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // cashier, admin, spadmin
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
