package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// OfferRepository puerto de persistencia para contraofertas.
type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	GetByID(ctx context.Context, id int64) (*entity.Offer, error)
	// TransitionFromPending ejecuta la transición condicional
	// UPDATE ... SET status=$2 WHERE id=$1 AND status='pending'.
	// Devuelve false si ninguna fila cambió (la oferta ya era terminal o no
	// existe): es la escritura única que cierra la carrera check-then-act.
	TransitionFromPending(ctx context.Context, id int64, newStatus string) (bool, error)
	ListByLot(ctx context.Context, lotID int64) ([]*entity.Offer, error)
	ListBySender(ctx context.Context, senderUserID int64) ([]*entity.Offer, error)
	// ListPendingForOwner lista las pending sobre lotes del dueño indicado.
	ListPendingForOwner(ctx context.Context, ownerUserID int64) ([]*entity.Offer, error)
	// ListAcceptedForUser lista las accepted donde el usuario es emisor o dueño del lote.
	ListAcceptedForUser(ctx context.Context, userID int64) ([]*entity.Offer, error)
	Count(ctx context.Context) (int, error)
}
