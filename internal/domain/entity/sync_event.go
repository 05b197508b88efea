package entity

import "time"

// Tipos de evento de sincronización panel → bot. Un tipo desconocido no es un
// error: el consumidor lo ignora y lo marca procesado (punto de extensión).
const (
	EventUserBanned       = "user_banned"
	EventUserUnbanned     = "user_unbanned"
	EventLotStatusChanged = "lot_status_changed"
	EventSettingsChanged  = "settings_changed"
)

// SyncEvent registro inmutable del log de eventos entre superficies.
// Seq (BIGSERIAL) es la garantía de orden; ID (ULID) es la referencia pública.
// Una vez escrito, solo muta el flag Processed, exactamente una vez.
type SyncEvent struct {
	Seq       int64
	ID        string // ULID
	EventType string
	Payload   map[string]any
	Processed bool
	CreatedAt time.Time
}
