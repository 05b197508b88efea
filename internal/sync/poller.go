package sync

import (
	"context"
	"time"

	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
	"github.com/agrolink/agromercado/pkg/logger"
)

// Handler reacciona a los eventos que el panel publica para el bot.
// Si un método falla, el evento igual se marca procesado: el efecto de
// negocio ya quedó en la base y la notificación es mejor-esfuerzo.
type Handler interface {
	HandleUserBanned(ctx context.Context, telegramID int64) error
	HandleUserUnbanned(ctx context.Context, telegramID int64) error
	HandleLotStatusChanged(ctx context.Context, lotID int64, newStatus string, ownerTelegramID int64) error
	HandleSettingsChanged(ctx context.Context, changed map[string]string) error
}

// Poller drena el log de eventos cada intervalo y despacha al Handler en
// orden de inserción. Un error al listar aplica backoff (5x el intervalo).
type Poller struct {
	events   repository.SyncEventRepository
	handler  Handler
	interval time.Duration
	log      *logger.Logger
}

// NewPoller construye el consumidor de eventos del lado del bot.
func NewPoller(events repository.SyncEventRepository, handler Handler, interval time.Duration, log *logger.Logger) *Poller {
	return &Poller{events: events, handler: handler, interval: interval, log: log}
}

// Run consume el log hasta que el contexto se cancele.
func (p *Poller) Run(ctx context.Context) {
	wait := p.interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := p.DrainOnce(ctx); err != nil {
			p.log.Error().Err(err).Msg("sync: error drenando eventos, aplicando backoff")
			wait = p.interval * 5
			continue
		}
		wait = p.interval
	}
}

// DrainOnce procesa todos los eventos pendientes en orden. Cada evento se
// marca procesado exactamente una vez, incluso si su entrega falla; solo un
// fallo al marcar detiene el lote (el resto se reintenta el próximo ciclo).
func (p *Poller) DrainOnce(ctx context.Context) error {
	pending, err := p.events.ListUnprocessed(ctx)
	if err != nil {
		return err
	}
	for _, ev := range pending {
		if err := p.dispatch(ctx, ev); err != nil {
			p.log.Warn().Err(err).Str("event_id", ev.ID).Str("type", ev.EventType).
				Msg("sync: entrega fallida, el evento se marca procesado igual")
		}
		if err := p.events.MarkProcessed(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poller) dispatch(ctx context.Context, ev *entity.SyncEvent) error {
	switch ev.EventType {
	case entity.EventUserBanned:
		return p.handler.HandleUserBanned(ctx, payloadInt64(ev.Payload, "telegram_id"))
	case entity.EventUserUnbanned:
		return p.handler.HandleUserUnbanned(ctx, payloadInt64(ev.Payload, "telegram_id"))
	case entity.EventLotStatusChanged:
		return p.handler.HandleLotStatusChanged(ctx,
			payloadInt64(ev.Payload, "lot_id"),
			payloadString(ev.Payload, "new_status"),
			payloadInt64(ev.Payload, "owner_telegram_id"))
	case entity.EventSettingsChanged:
		return p.handler.HandleSettingsChanged(ctx, payloadStringMap(ev.Payload, "changed"))
	default:
		// Tipo desconocido: se ignora y se marca procesado (punto de extensión).
		p.log.Debug().Str("type", ev.EventType).Msg("sync: tipo de evento desconocido, ignorado")
		return nil
	}
}

// Los payloads vienen de JSONB: los números llegan como float64.
func payloadInt64(p map[string]any, key string) int64 {
	switch v := p[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func payloadString(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func payloadStringMap(p map[string]any, key string) map[string]string {
	raw, _ := p[key].(map[string]any)
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
