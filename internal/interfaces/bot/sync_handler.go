package bot

import (
	"context"
	"fmt"

	"github.com/agrolink/agromercado/internal/application/ports"
	"github.com/agrolink/agromercado/pkg/logger"
)

// SyncHandler aplica en el bot los eventos generados desde el panel web.
type SyncHandler struct {
	messenger ports.Messenger
	log       *logger.Logger
}

// NewSyncHandler construye el handler de eventos del bot.
func NewSyncHandler(messenger ports.Messenger, log *logger.Logger) *SyncHandler {
	return &SyncHandler{messenger: messenger, log: log}
}

// HandleUserBanned avisa al usuario que su cuenta quedó bloqueada. El corte
// real lo hace el middleware del bot en el siguiente update.
func (h *SyncHandler) HandleUserBanned(ctx context.Context, telegramID int64) error {
	return h.messenger.SendMessage(ctx, telegramID,
		"Su cuenta fue bloqueada por el equipo de moderación. Contacte al soporte si cree que es un error.")
}

// HandleUserUnbanned avisa al usuario que recuperó el acceso.
func (h *SyncHandler) HandleUserUnbanned(ctx context.Context, telegramID int64) error {
	return h.messenger.SendMessage(ctx, telegramID,
		"Su cuenta fue desbloqueada. Ya puede volver a operar con /menu.")
}

// HandleLotStatusChanged avisa al dueño que moderación cambió el estado de su lote.
func (h *SyncHandler) HandleLotStatusChanged(ctx context.Context, lotID int64, newStatus string, ownerTelegramID int64) error {
	if ownerTelegramID == 0 {
		return nil
	}
	return h.messenger.SendMessage(ctx, ownerTelegramID, fmt.Sprintf(
		"Moderación cambió el estado de su lote #%d a %q.", lotID, newStatus))
}

// HandleSettingsChanged solo deja registro. El bot lee la configuración de la
// base en cada uso, no mantiene copia en memoria.
func (h *SyncHandler) HandleSettingsChanged(ctx context.Context, changed map[string]string) error {
	for k := range changed {
		h.log.Info().Str("clave", k).Msg("bot: configuración actualizada desde el panel")
	}
	return nil
}
