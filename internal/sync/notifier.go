package sync

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// Notifier publica eventos de sincronización en el log durable. Publish no
// retorna hasta que el evento está persistido: si la escritura falla, el
// llamador ve el error y decide (la moderación lo propaga al panel).
type Notifier struct {
	events repository.SyncEventRepository
}

// NewNotifier construye el publicador de eventos.
func NewNotifier(events repository.SyncEventRepository) *Notifier {
	return &Notifier{events: events}
}

// Publish persiste un evento nuevo con ULID propio y devuelve su ID público.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload map[string]any) (string, error) {
	ev := &entity.SyncEvent{
		ID:        ulid.Make().String(),
		EventType: eventType,
		Payload:   payload,
	}
	if err := n.events.Append(ctx, ev); err != nil {
		return "", fmt.Errorf("publish %s: %w", eventType, err)
	}
	return ev.ID, nil
}

// UserBanned publica el baneo de un usuario de Telegram.
func (n *Notifier) UserBanned(ctx context.Context, telegramID int64) (string, error) {
	return n.Publish(ctx, entity.EventUserBanned, map[string]any{"telegram_id": telegramID})
}

// UserUnbanned publica el desbaneo de un usuario de Telegram.
func (n *Notifier) UserUnbanned(ctx context.Context, telegramID int64) (string, error) {
	return n.Publish(ctx, entity.EventUserUnbanned, map[string]any{"telegram_id": telegramID})
}

// LotStatusChanged publica un cambio de estado de lote hecho desde el panel.
func (n *Notifier) LotStatusChanged(ctx context.Context, lotID int64, newStatus string, ownerTelegramID int64) (string, error) {
	return n.Publish(ctx, entity.EventLotStatusChanged, map[string]any{
		"lot_id":            lotID,
		"new_status":        newStatus,
		"owner_telegram_id": ownerTelegramID,
	})
}

// SettingsChanged publica las claves de configuración modificadas con sus
// valores nuevos.
func (n *Notifier) SettingsChanged(ctx context.Context, changed map[string]string) (string, error) {
	payload := make(map[string]any, len(changed))
	for k, v := range changed {
		payload[k] = v
	}
	return n.Publish(ctx, entity.EventSettingsChanged, map[string]any{"changed": payload})
}
