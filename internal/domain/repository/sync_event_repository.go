package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// SyncEventRepository puerto del log de eventos entre superficies.
// El log es append-only: nada borra filas sin procesar; la única mutación
// permitida es el flag processed, una sola vez, vía MarkProcessed.
type SyncEventRepository interface {
	// Append inserta el evento de forma durable antes de retornar.
	Append(ctx context.Context, ev *entity.SyncEvent) error
	// ListUnprocessed devuelve los eventos con processed=false en orden de
	// inserción (seq ascendente).
	ListUnprocessed(ctx context.Context) ([]*entity.SyncEvent, error)
	// MarkProcessed marca un evento como procesado. Idempotente: marcar uno ya
	// procesado es un no-op, no un error.
	MarkProcessed(ctx context.Context, id string) error
	CountProcessed(ctx context.Context) (int, error)
}
