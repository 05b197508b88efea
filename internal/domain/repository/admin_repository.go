package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// WebAdminRepository puerto de persistencia para cuentas del panel.
type WebAdminRepository interface {
	Create(ctx context.Context, admin *entity.WebAdmin) error
	GetByUsername(ctx context.Context, username string) (*entity.WebAdmin, error)
	GetByID(ctx context.Context, id string) (*entity.WebAdmin, error)
}

// SettingRepository puerto de persistencia para la tabla clave/valor de configuración.
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error) // "" si no existe
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// BroadcastRepository puerto de persistencia para difusiones.
type BroadcastRepository interface {
	Create(ctx context.Context, b *entity.Broadcast) error
	GetByID(ctx context.Context, id int64) (*entity.Broadcast, error)
	// NextRunning devuelve la difusión running más antigua, o (nil, nil).
	NextRunning(ctx context.Context) (*entity.Broadcast, error)
	// UpdateProgress persiste contadores y estado tras cada página enviada.
	UpdateProgress(ctx context.Context, b *entity.Broadcast) error
	SetStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Broadcast, error)
}
