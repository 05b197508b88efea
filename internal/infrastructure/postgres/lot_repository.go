package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, owner_user_id, type, crop, volume_tons, region, location, price, comment, status, views_count, created_at, updated_at`

// LotRepo implementación del puerto LotRepository sobre PostgreSQL.
type LotRepo struct {
	pool *pgxpool.Pool
}

// NewLotRepository construye el adaptador de persistencia para lotes.
func NewLotRepository(pool *pgxpool.Pool) *LotRepo {
	return &LotRepo{pool: pool}
}

// Create persiste un lote nuevo y asigna el ID generado.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (owner_user_id, type, crop, volume_tons, region, location, price, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		lot.OwnerUserID, lot.Type, lot.Crop, lot.VolumeTons, lot.Region, lot.Location,
		lot.Price, lot.Comment, lot.Status,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id int64) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	var l entity.Lot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.OwnerUserID, &l.Type, &l.Crop, &l.VolumeTons, &l.Region, &l.Location,
		&l.Price, &l.Comment, &l.Status, &l.ViewsCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Update actualiza los campos editables de un lote.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots SET crop = $2, volume_tons = $3, region = $4, location = $5,
			price = $6, comment = $7, status = $8, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		lot.ID, lot.Crop, lot.VolumeTons, lot.Region, lot.Location, lot.Price, lot.Comment, lot.Status,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return nil
}

// SetStatus cambia solo el estado del lote.
func (r *LotRepo) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lots SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set lot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews suma una vista al contador.
func (r *LotRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE lots SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// ListByOwner lista los lotes de un dueño, más recientes primero.
func (r *LotRepo) ListByOwner(ctx context.Context, ownerUserID int64, limit, offset int) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE owner_user_id = $1 AND status <> 'deleted'
		ORDER BY id DESC LIMIT $2 OFFSET $3`
	return r.queryLots(ctx, query, ownerUserID, limit, offset)
}

// List lista lotes con filtros opcionales y paginación.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter, limit, offset int) ([]*entity.Lot, error) {
	where, args := buildLotFilter(f)
	query := `SELECT ` + lotColumns + ` FROM lots` + where +
		` ORDER BY id DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)
	return r.queryLots(ctx, query, args...)
}

// Count cuenta lotes que cumplen el filtro.
func (r *LotRepo) Count(ctx context.Context, f repository.LotFilter) (int, error) {
	where, args := buildLotFilter(f)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lots`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lots: %w", err)
	}
	return n, nil
}

func buildLotFilter(f repository.LotFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	// Cultivo y región son texto libre del usuario, se filtran por subcadena.
	if f.Crop != "" {
		add("crop ILIKE $%d", "%"+f.Crop+"%")
	}
	if f.Region != "" {
		add("region ILIKE $%d", "%"+f.Region+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

func (r *LotRepo) queryLots(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.OwnerUserID, &l.Type, &l.Crop, &l.VolumeTons, &l.Region,
			&l.Location, &l.Price, &l.Comment, &l.Status, &l.ViewsCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
