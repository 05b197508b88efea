package entity

import "time"

// Estados de difusión.
const (
	BroadcastStatusDraft     = "draft"
	BroadcastStatusRunning   = "running"
	BroadcastStatusDone      = "done"
	BroadcastStatusCancelled = "cancelled"
)

// Broadcast difusión masiva creada desde el panel y ejecutada por el bot en
// lotes con límite de velocidad. Los contadores se persisten por página para
// poder reanudar tras un reinicio.
type Broadcast struct {
	ID          int64
	Content     string
	Status      string
	TotalUsers  int
	SentCount   int
	FailedCount int
	LastUserID  int64 // cursor de reanudación: último user id ya cubierto
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}
