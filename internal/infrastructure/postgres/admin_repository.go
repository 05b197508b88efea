package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

var _ repository.WebAdminRepository = (*WebAdminRepo)(nil)

// WebAdminRepo implementación del puerto WebAdminRepository sobre PostgreSQL.
type WebAdminRepo struct {
	pool *pgxpool.Pool
}

// NewWebAdminRepository construye el adaptador de persistencia para cuentas del panel.
func NewWebAdminRepository(pool *pgxpool.Pool) *WebAdminRepo {
	return &WebAdminRepo{pool: pool}
}

// Create persiste una cuenta nueva del panel.
func (r *WebAdminRepo) Create(ctx context.Context, admin *entity.WebAdmin) error {
	query := `
		INSERT INTO web_admins (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, query, admin.ID, admin.Username, admin.PasswordHash, admin.Role).
		Scan(&admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert web admin: %w", err)
	}
	return nil
}

// GetByUsername obtiene una cuenta por username.
func (r *WebAdminRepo) GetByUsername(ctx context.Context, username string) (*entity.WebAdmin, error) {
	return r.getBy(ctx, `WHERE username = $1`, username)
}

// GetByID obtiene una cuenta por ID.
func (r *WebAdminRepo) GetByID(ctx context.Context, id string) (*entity.WebAdmin, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *WebAdminRepo) getBy(ctx context.Context, where string, arg any) (*entity.WebAdmin, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM web_admins ` + where
	var a entity.WebAdmin
	err := r.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get web admin: %w", err)
	}
	return &a, nil
}

var _ repository.SettingRepository = (*SettingRepo)(nil)

// SettingRepo implementación del puerto SettingRepository sobre PostgreSQL.
type SettingRepo struct {
	pool *pgxpool.Pool
}

// NewSettingRepository construye el adaptador de persistencia para configuración.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepo {
	return &SettingRepo{pool: pool}
}

// Get devuelve el valor de la clave, o cadena vacía si no existe.
func (r *SettingRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// Set upsert de una clave de configuración.
func (r *SettingRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// All devuelve todas las claves de configuración.
func (r *SettingRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

var _ repository.BroadcastRepository = (*BroadcastRepo)(nil)

const broadcastColumns = `id, content, status, total_users, sent_count, failed_count, last_user_id, created_at, started_at, completed_at`

// BroadcastRepo implementación del puerto BroadcastRepository sobre PostgreSQL.
type BroadcastRepo struct {
	pool *pgxpool.Pool
}

// NewBroadcastRepository construye el adaptador de persistencia para difusiones.
func NewBroadcastRepository(pool *pgxpool.Pool) *BroadcastRepo {
	return &BroadcastRepo{pool: pool}
}

// Create persiste una difusión nueva.
func (r *BroadcastRepo) Create(ctx context.Context, b *entity.Broadcast) error {
	query := `
		INSERT INTO broadcasts (content, status, total_users)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, b.Content, b.Status, b.TotalUsers).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert broadcast: %w", err)
	}
	return nil
}

// GetByID obtiene una difusión por ID.
func (r *BroadcastRepo) GetByID(ctx context.Context, id int64) (*entity.Broadcast, error) {
	query := `SELECT ` + broadcastColumns + ` FROM broadcasts WHERE id = $1`
	return r.scanBroadcast(r.pool.QueryRow(ctx, query, id))
}

// NextRunning devuelve la difusión running más antigua, o (nil, nil).
func (r *BroadcastRepo) NextRunning(ctx context.Context) (*entity.Broadcast, error) {
	query := `SELECT ` + broadcastColumns + ` FROM broadcasts
		WHERE status = 'running' ORDER BY id ASC LIMIT 1`
	return r.scanBroadcast(r.pool.QueryRow(ctx, query))
}

// UpdateProgress persiste contadores, cursor y estado de una difusión en curso.
func (r *BroadcastRepo) UpdateProgress(ctx context.Context, b *entity.Broadcast) error {
	query := `
		UPDATE broadcasts SET status = $2, sent_count = $3, failed_count = $4,
			last_user_id = $5, started_at = $6, completed_at = $7
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.Status, b.SentCount, b.FailedCount, b.LastUserID, b.StartedAt, b.CompletedAt)
	if err != nil {
		return fmt.Errorf("update broadcast: %w", err)
	}
	return nil
}

// SetStatus cambia solo el estado de la difusión.
func (r *BroadcastRepo) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE broadcasts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set broadcast status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista difusiones, más recientes primero.
func (r *BroadcastRepo) List(ctx context.Context, limit, offset int) ([]*entity.Broadcast, error) {
	query := `SELECT ` + broadcastColumns + ` FROM broadcasts ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Broadcast
	for rows.Next() {
		var b entity.Broadcast
		if err := rows.Scan(&b.ID, &b.Content, &b.Status, &b.TotalUsers, &b.SentCount,
			&b.FailedCount, &b.LastUserID, &b.CreatedAt, &b.StartedAt, &b.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

func (r *BroadcastRepo) scanBroadcast(row pgx.Row) (*entity.Broadcast, error) {
	var b entity.Broadcast
	err := row.Scan(&b.ID, &b.Content, &b.Status, &b.TotalUsers, &b.SentCount,
		&b.FailedCount, &b.LastUserID, &b.CreatedAt, &b.StartedAt, &b.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get broadcast: %w", err)
	}
	return &b, nil
}
