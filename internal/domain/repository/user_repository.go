package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando la fila no existe.
type UserRepository interface {
	// EnsureByTelegramID hace el upsert idempotente del primer contacto:
	// crea el usuario con rol guest si no existe y devuelve la fila.
	EnsureByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetBanned(ctx context.Context, id int64, banned bool) error
	TouchLastActive(ctx context.Context, telegramID int64) error
	// Search busca por telegram_id, teléfono, compañía o región (texto ya normalizado).
	Search(ctx context.Context, query string, limit, offset int) ([]*entity.User, error)
	Count(ctx context.Context) (total, banned int, err error)
	// ListBroadcastTargets pagina los destinatarios de difusiones por id
	// ascendente; afterID es el cursor de reanudación.
	ListBroadcastTargets(ctx context.Context, afterID int64, limit int) ([]BroadcastTarget, error)
}

// BroadcastTarget destinatario de una difusión (id interno + chat de Telegram).
type BroadcastTarget struct {
	UserID     int64
	TelegramID int64
}
