package usecase

import (
	"context"
	"fmt"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/application/ports"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// NegotiationUseCase motor de contraofertas. La decisión terminal se hace con
// una escritura condicional en el repositorio: de dos decisiones concurrentes
// sobre la misma oferta solo una gana, la otra recibe ErrAlreadyDecided.
type NegotiationUseCase struct {
	offers    repository.OfferRepository
	lots      repository.LotRepository
	users     repository.UserRepository
	messenger ports.Messenger
}

// NewNegotiationUseCase construye el caso de uso.
func NewNegotiationUseCase(
	offers repository.OfferRepository,
	lots repository.LotRepository,
	users repository.UserRepository,
	messenger ports.Messenger,
) *NegotiationUseCase {
	return &NegotiationUseCase{offers: offers, lots: lots, users: users, messenger: messenger}
}

// CreateOffer registra una contraoferta pending sobre un lote activo ajeno y
// avisa al dueño. El aviso es mejor-esfuerzo: si falla, la oferta ya existe.
func (uc *NegotiationUseCase) CreateOffer(ctx context.Context, in dto.CreateOfferRequest) (*entity.Offer, error) {
	if !in.OfferedPrice.IsPositive() {
		return nil, domain.ErrValidation
	}
	lot, err := uc.lots.GetByID(ctx, in.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.Status != entity.LotStatusActive {
		return nil, domain.ErrLotInactive
	}
	if lot.OwnerUserID == in.SenderUserID {
		return nil, domain.ErrSelfOffer
	}

	offer := &entity.Offer{
		LotID:        in.LotID,
		SenderUserID: in.SenderUserID,
		OfferedPrice: in.OfferedPrice,
		Message:      in.Message,
		Status:       entity.OfferStatusPending,
	}
	if err := uc.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	uc.notifyUser(ctx, lot.OwnerUserID, fmt.Sprintf(
		"Nueva contraoferta por su lote #%d: %s por tonelada. Revise sus ofertas recibidas.",
		lot.ID, offer.OfferedPrice.StringFixed(2)))
	return offer, nil
}

// AcceptOffer acepta una contraoferta pending. Solo el dueño del lote decide.
func (uc *NegotiationUseCase) AcceptOffer(ctx context.Context, offerID, actorUserID int64) (*entity.Offer, error) {
	return uc.decide(ctx, offerID, actorUserID, entity.OfferStatusAccepted)
}

// RejectOffer rechaza una contraoferta pending. Solo el dueño del lote decide.
func (uc *NegotiationUseCase) RejectOffer(ctx context.Context, offerID, actorUserID int64) (*entity.Offer, error) {
	return uc.decide(ctx, offerID, actorUserID, entity.OfferStatusRejected)
}

func (uc *NegotiationUseCase) decide(ctx context.Context, offerID, actorUserID int64, newStatus string) (*entity.Offer, error) {
	offer, err := uc.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, domain.ErrNotFound
	}
	lot, err := uc.lots.GetByID(ctx, offer.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.OwnerUserID != actorUserID {
		return nil, domain.ErrForbidden
	}

	// La lectura previa es solo para autorizar: la verdad sobre el estado la
	// decide la escritura condicional.
	ok, err := uc.offers.TransitionFromPending(ctx, offerID, newStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyDecided
	}
	offer.Status = newStatus

	if newStatus == entity.OfferStatusAccepted {
		uc.notifyUser(ctx, offer.SenderUserID, fmt.Sprintf(
			"Su contraoferta de %s por el lote #%d fue aceptada. Ya puede coordinar por el chat.",
			offer.OfferedPrice.StringFixed(2), lot.ID))
	} else {
		uc.notifyUser(ctx, offer.SenderUserID, fmt.Sprintf(
			"Su contraoferta de %s por el lote #%d fue rechazada.",
			offer.OfferedPrice.StringFixed(2), lot.ID))
	}
	return offer, nil
}

// OffersForLot lista todas las ofertas de un lote del propio dueño.
func (uc *NegotiationUseCase) OffersForLot(ctx context.Context, lotID, actorUserID int64) ([]*entity.Offer, error) {
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.OwnerUserID != actorUserID {
		return nil, domain.ErrForbidden
	}
	return uc.offers.ListByLot(ctx, lotID)
}

// IncomingOffers lista las pending sobre lotes del dueño.
func (uc *NegotiationUseCase) IncomingOffers(ctx context.Context, ownerUserID int64) ([]*entity.Offer, error) {
	return uc.offers.ListPendingForOwner(ctx, ownerUserID)
}

// MyOffers lista las contraofertas enviadas por el usuario.
func (uc *NegotiationUseCase) MyOffers(ctx context.Context, userID int64) ([]*entity.Offer, error) {
	return uc.offers.ListBySender(ctx, userID)
}

// AcceptedDeals lista los acuerdos donde el usuario participa.
func (uc *NegotiationUseCase) AcceptedDeals(ctx context.Context, userID int64) ([]*entity.Offer, error) {
	return uc.offers.ListAcceptedForUser(ctx, userID)
}

// notifyUser envía un aviso de negocio por Telegram, mejor-esfuerzo.
func (uc *NegotiationUseCase) notifyUser(ctx context.Context, userID int64, text string) {
	if uc.messenger == nil {
		return
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	_ = uc.messenger.SendMessage(ctx, user.TelegramID, text)
}
