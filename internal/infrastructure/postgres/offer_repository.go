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

var _ repository.OfferRepository = (*OfferRepo)(nil)

const offerColumns = `id, lot_id, sender_user_id, offered_price, message, status, created_at, updated_at`

// OfferRepo implementación del puerto OfferRepository sobre PostgreSQL.
type OfferRepo struct {
	pool *pgxpool.Pool
}

// NewOfferRepository construye el adaptador de persistencia para contraofertas.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

// Create persiste una contraoferta nueva y asigna el ID generado.
func (r *OfferRepo) Create(ctx context.Context, offer *entity.Offer) error {
	query := `
		INSERT INTO counter_offers (lot_id, sender_user_id, offered_price, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		offer.LotID, offer.SenderUserID, offer.OfferedPrice, offer.Message, offer.Status,
	).Scan(&offer.ID, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// GetByID obtiene una contraoferta por ID.
func (r *OfferRepo) GetByID(ctx context.Context, id int64) (*entity.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM counter_offers WHERE id = $1`
	var o entity.Offer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.LotID, &o.SenderUserID, &o.OfferedPrice, &o.Message, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return &o, nil
}

// TransitionFromPending hace la transición terminal como una sola escritura
// condicional. Solo gana una de dos llamadas concurrentes: la otra ve 0 filas
// afectadas y devuelve false.
func (r *OfferRepo) TransitionFromPending(ctx context.Context, id int64, newStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE counter_offers SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		id, newStatus)
	if err != nil {
		return false, fmt.Errorf("transition offer: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByLot lista todas las contraofertas de un lote, más recientes primero.
func (r *OfferRepo) ListByLot(ctx context.Context, lotID int64) ([]*entity.Offer, error) {
	return r.queryOffers(ctx,
		`SELECT `+offerColumns+` FROM counter_offers WHERE lot_id = $1 ORDER BY id DESC`, lotID)
}

// ListBySender lista las contraofertas enviadas por un usuario.
func (r *OfferRepo) ListBySender(ctx context.Context, senderUserID int64) ([]*entity.Offer, error) {
	return r.queryOffers(ctx,
		`SELECT `+offerColumns+` FROM counter_offers WHERE sender_user_id = $1 ORDER BY id DESC`, senderUserID)
}

// ListPendingForOwner lista las pending sobre lotes del dueño indicado.
func (r *OfferRepo) ListPendingForOwner(ctx context.Context, ownerUserID int64) ([]*entity.Offer, error) {
	query := `
		SELECT co.id, co.lot_id, co.sender_user_id, co.offered_price, co.message, co.status, co.created_at, co.updated_at
		FROM counter_offers co
		JOIN lots l ON co.lot_id = l.id
		WHERE l.owner_user_id = $1 AND co.status = 'pending'
		ORDER BY co.id DESC`
	return r.queryOffers(ctx, query, ownerUserID)
}

// ListAcceptedForUser lista las accepted donde el usuario participa como
// emisor o como dueño del lote.
func (r *OfferRepo) ListAcceptedForUser(ctx context.Context, userID int64) ([]*entity.Offer, error) {
	query := `
		SELECT co.id, co.lot_id, co.sender_user_id, co.offered_price, co.message, co.status, co.created_at, co.updated_at
		FROM counter_offers co
		JOIN lots l ON co.lot_id = l.id
		WHERE co.status = 'accepted' AND (co.sender_user_id = $1 OR l.owner_user_id = $1)
		ORDER BY co.id DESC`
	return r.queryOffers(ctx, query, userID)
}

// Count total de contraofertas (dashboard).
func (r *OfferRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM counter_offers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return n, nil
}

func (r *OfferRepo) queryOffers(ctx context.Context, query string, args ...any) ([]*entity.Offer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Offer
	for rows.Next() {
		var o entity.Offer
		if err := rows.Scan(&o.ID, &o.LotID, &o.SenderUserID, &o.OfferedPrice, &o.Message,
			&o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
