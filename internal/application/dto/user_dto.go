package dto

import (
	"time"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// RegisterProfileRequest datos del flujo de registro del bot.
type RegisterProfileRequest struct {
	Role    string
	Region  string
	Phone   string
	Company string
	Comment string
}

// UserResponse representación de un usuario para el panel.
type UserResponse struct {
	ID            int64      `json:"id"`
	TelegramID    int64      `json:"telegram_id"`
	AnonymousID   string     `json:"anonymous_id"`
	Role          string     `json:"role"`
	Region        string     `json:"region"`
	Phone         string     `json:"phone"`
	Company       string     `json:"company"`
	Comment       string     `json:"comment"`
	IsBanned      bool       `json:"is_banned"`
	Plan          string     `json:"plan"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	LastActive    *time.Time `json:"last_active,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToUserResponse convierte la entidad al DTO del panel.
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		TelegramID:    u.TelegramID,
		AnonymousID:   u.AnonymousID(),
		Role:          u.Role,
		Region:        u.Region,
		Phone:         u.Phone,
		Company:       u.Company,
		Comment:       u.Comment,
		IsBanned:      u.IsBanned,
		Plan:          u.Plan,
		PlanExpiresAt: u.PlanExpiresAt,
		LastActive:    u.LastActive,
		CreatedAt:     u.CreatedAt,
	}
}
