package entity

import "time"

// Roles del panel web.
const (
	AdminRoleAdmin     = "admin"
	AdminRoleModerator = "moderator"
)

// WebAdmin cuenta de acceso al panel de administración. Separada de los
// usuarios de Telegram; autentica con username/password + JWT.
type WebAdmin struct {
	ID           string // uuid
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Setting par clave/valor de configuración del marketplace editable desde el panel.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
