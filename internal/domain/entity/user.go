package entity

import (
	"fmt"
	"time"
)

// Roles de usuario del marketplace.
const (
	RoleFarmer   = "farmer"
	RoleBuyer    = "buyer"
	RoleLogistic = "logistic"
	RoleAdmin    = "admin"
	RoleGuest    = "guest" // recién llegado, aún sin registro completo
)

// Planes de suscripción.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User representa un usuario del bot. Se crea con rol guest en el primer
// contacto (upsert idempotente por telegram_id) y nunca se elimina.
type User struct {
	ID            int64
	TelegramID    int64
	Role          string
	Region        string
	Phone         string
	Company       string
	Comment       string
	IsBanned      bool
	Plan          string
	PlanExpiresAt *time.Time // nil = sin vencimiento (plan free)
	LastActive    *time.Time
	CreatedAt     time.Time
}

// IsRegistered indica si el usuario completó el flujo de registro.
func (u *User) IsRegistered() bool {
	return u.Role != RoleGuest && u.Role != "" && u.Region != ""
}

// AnonymousID devuelve el identificador anónimo que se muestra en el chat
// (prefijo por rol + id con ceros, ej. "A0042").
func (u *User) AnonymousID() string {
	prefix := map[string]string{
		RoleFarmer:   "A", // agricultor
		RoleBuyer:    "C", // comprador
		RoleLogistic: "T", // transportista
	}[u.Role]
	if prefix == "" {
		prefix = "U"
	}
	return fmt.Sprintf("%s%04d", prefix, u.ID)
}
