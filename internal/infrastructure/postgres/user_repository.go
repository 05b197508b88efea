package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, telegram_id, role, region, phone, company, comment, is_banned, plan, plan_expires_at, last_active, created_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// EnsureByTelegramID upsert idempotente del primer contacto: inserta con rol
// guest si el telegram_id es nuevo y devuelve siempre la fila vigente.
func (r *UserRepo) EnsureByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	query := `
		INSERT INTO users (telegram_id, role, region, is_banned, plan)
		VALUES ($1, 'guest', '', FALSE, 'free')
		ON CONFLICT (telegram_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query, telegramID); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return r.GetByTelegramID(ctx, telegramID)
}

// GetByID obtiene un usuario por ID interno.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetByTelegramID obtiene un usuario por su id de Telegram.
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	return r.getBy(ctx, `WHERE telegram_id = $1`, telegramID)
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where
	var u entity.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.TelegramID, &u.Role, &u.Region, &u.Phone, &u.Company, &u.Comment,
		&u.IsBanned, &u.Plan, &u.PlanExpiresAt, &u.LastActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update actualiza los campos de perfil de un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET role = $2, region = $3, phone = $4, company = $5, comment = $6,
			plan = $7, plan_expires_at = $8
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Role, user.Region, user.Phone, user.Company, user.Comment,
		user.Plan, user.PlanExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SetBanned marca o desmarca el ban de un usuario.
func (r *UserRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_banned = $2 WHERE id = $1`, id, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set banned: usuario %d no existe", id)
	}
	return nil
}

// TouchLastActive actualiza la marca de última actividad.
func (r *UserRepo) TouchLastActive(ctx context.Context, telegramID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_active = NOW() WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("touch last_active: %w", err)
	}
	return nil
}

// Search busca por telegram_id, teléfono, compañía o región. query llega ya
// normalizada (minúsculas, sin acentos); las columnas se normalizan con lower().
func (r *UserRepo) Search(ctx context.Context, query string, limit, offset int) ([]*entity.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if query != "" {
		sql += `
		WHERE CAST(telegram_id AS TEXT) LIKE $1
		   OR lower(phone) LIKE $1
		   OR lower(company) LIKE $1
		   OR lower(region) LIKE $1`
		args = append(args, "%"+query+"%")
	}
	sql += fmt.Sprintf(` ORDER BY id DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Role, &u.Region, &u.Phone, &u.Company,
			&u.Comment, &u.IsBanned, &u.Plan, &u.PlanExpiresAt, &u.LastActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// Count devuelve totales para el dashboard.
func (r *UserRepo) Count(ctx context.Context) (total, banned int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_banned) FROM users`,
	).Scan(&total, &banned)
	if err != nil {
		return 0, 0, fmt.Errorf("count users: %w", err)
	}
	return total, banned, nil
}

// ListBroadcastTargets pagina destinatarios de difusión por id ascendente (cursor afterID).
func (r *UserRepo) ListBroadcastTargets(ctx context.Context, afterID int64, limit int) ([]repository.BroadcastTarget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, telegram_id FROM users WHERE id > $1 AND NOT is_banned ORDER BY id ASC LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list broadcast targets: %w", err)
	}
	defer rows.Close()
	var targets []repository.BroadcastTarget
	for rows.Next() {
		var t repository.BroadcastTarget
		if err := rows.Scan(&t.UserID, &t.TelegramID); err != nil {
			return nil, fmt.Errorf("scan broadcast target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}
