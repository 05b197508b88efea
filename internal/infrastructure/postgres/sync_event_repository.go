package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

var _ repository.SyncEventRepository = (*SyncEventRepo)(nil)

// SyncEventRepo implementación del log de eventos sobre PostgreSQL.
// seq es la clave de orden; el ULID en id es solo referencia externa.
type SyncEventRepo struct {
	pool *pgxpool.Pool
}

// NewSyncEventRepository construye el adaptador de persistencia del log de eventos.
func NewSyncEventRepository(pool *pgxpool.Pool) *SyncEventRepo {
	return &SyncEventRepo{pool: pool}
}

// Append inserta el evento; cuando retorna sin error el evento ya es durable.
func (r *SyncEventRepo) Append(ctx context.Context, ev *entity.SyncEvent) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	query := `
		INSERT INTO sync_events (id, event_type, payload, processed)
		VALUES ($1, $2, $3, FALSE)
		RETURNING seq, created_at`
	err = r.pool.QueryRow(ctx, query, ev.ID, ev.EventType, payload).
		Scan(&ev.Seq, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sync event: %w", err)
	}
	return nil
}

// ListUnprocessed devuelve los eventos pendientes en orden de inserción.
func (r *SyncEventRepo) ListUnprocessed(ctx context.Context) ([]*entity.SyncEvent, error) {
	query := `SELECT seq, id, event_type, payload, processed, created_at
		FROM sync_events WHERE NOT processed ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sync events: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncEvent
	for rows.Next() {
		var ev entity.SyncEvent
		var payload []byte
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.EventType, &payload, &ev.Processed, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		if err := json.Unmarshal(payload, &ev.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// MarkProcessed marca el evento como procesado. Marcar dos veces no falla.
func (r *SyncEventRepo) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sync_events SET processed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// CountProcessed total de eventos ya procesados (estado de sincronización).
func (r *SyncEventRepo) CountProcessed(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sync_events WHERE processed`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count processed: %w", err)
	}
	return n, nil
}
