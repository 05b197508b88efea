package dto

import "time"

// LoginRequest credenciales del panel.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminResponse cuenta del panel sin el hash.
type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse token + cuenta.
type LoginResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

// DashboardResponse métricas agregadas del panel.
type DashboardResponse struct {
	TotalUsers  int `json:"total_users"`
	BannedUsers int `json:"banned_users"`
	ActiveLots  int `json:"active_lots"`
	TotalLots   int `json:"total_lots"`
	TotalOffers int `json:"total_offers"`
}

// SyncStatusResponse estado del log de eventos panel → bot.
type SyncStatusResponse struct {
	PendingEvents   int    `json:"pending_events"`
	ProcessedEvents int    `json:"processed_events"`
	OldestPendingID string `json:"oldest_pending_id,omitempty"`
}

// SettingsRequest claves a modificar (solo las presentes se tocan).
type SettingsRequest struct {
	Values map[string]string `json:"values"`
}

// SettingsResponse todas las claves de configuración.
type SettingsResponse struct {
	Values map[string]string `json:"values"`
}

// CreateBroadcastRequest difusión nueva desde el panel.
type CreateBroadcastRequest struct {
	Content string `json:"content"`
}

// BroadcastResponse estado de una difusión.
type BroadcastResponse struct {
	ID          int64      `json:"id"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	TotalUsers  int        `json:"total_users"`
	SentCount   int        `json:"sent_count"`
	FailedCount int        `json:"failed_count"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
