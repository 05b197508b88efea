package ports

import "context"

// Messenger puerto de salida hacia Telegram. Las notificaciones de negocio
// son mejor-esfuerzo: un error de envío no revierte la operación.
type Messenger interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
}

// EventPublisher puerto de publicación en el log de eventos panel → bot.
// Devuelve el ID público (ULID) del evento persistido.
type EventPublisher interface {
	UserBanned(ctx context.Context, telegramID int64) (string, error)
	UserUnbanned(ctx context.Context, telegramID int64) (string, error)
	LotStatusChanged(ctx context.Context, lotID int64, newStatus string, ownerTelegramID int64) (string, error)
	SettingsChanged(ctx context.Context, changed map[string]string) (string, error)
}
