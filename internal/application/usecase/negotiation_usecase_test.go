package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeOfferRepo en memoria con la misma semántica condicional que el real:
// TransitionFromPending solo gana si la oferta sigue pending.
type fakeOfferRepo struct {
	mu     sync.Mutex
	nextID int64
	offers map[int64]*entity.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[int64]*entity.Offer)}
}

func (f *fakeOfferRepo) Create(_ context.Context, o *entity.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetByID(_ context.Context, id int64) (*entity.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) TransitionFromPending(_ context.Context, id int64, newStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok || o.Status != entity.OfferStatusPending {
		return false, nil
	}
	o.Status = newStatus
	return true, nil
}

func (f *fakeOfferRepo) ListByLot(_ context.Context, lotID int64) ([]*entity.Offer, error) {
	return nil, nil
}
func (f *fakeOfferRepo) ListBySender(_ context.Context, senderUserID int64) ([]*entity.Offer, error) {
	return nil, nil
}
func (f *fakeOfferRepo) ListPendingForOwner(_ context.Context, ownerUserID int64) ([]*entity.Offer, error) {
	return nil, nil
}
func (f *fakeOfferRepo) ListAcceptedForUser(_ context.Context, userID int64) ([]*entity.Offer, error) {
	return nil, nil
}
func (f *fakeOfferRepo) Count(_ context.Context) (int, error) { return len(f.offers), nil }

// fakeLotRepo solo lo que la negociación necesita.
type fakeLotRepo struct {
	lots map[int64]*entity.Lot
}

func (f *fakeLotRepo) Create(_ context.Context, l *entity.Lot) error { return nil }
func (f *fakeLotRepo) GetByID(_ context.Context, id int64) (*entity.Lot, error) {
	l, ok := f.lots[id]
	if !ok {
		return nil, nil
	}
	return l, nil
}
func (f *fakeLotRepo) Update(_ context.Context, l *entity.Lot) error {
	cp := *l
	f.lots[l.ID] = &cp
	return nil
}
func (f *fakeLotRepo) SetStatus(_ context.Context, id int64, status string) error { return nil }
func (f *fakeLotRepo) IncrementViews(_ context.Context, id int64) error           { return nil }
func (f *fakeLotRepo) ListByOwner(_ context.Context, ownerUserID int64, limit, offset int) ([]*entity.Lot, error) {
	return nil, nil
}
func (f *fakeLotRepo) List(_ context.Context, _ repository.LotFilter, limit, offset int) ([]*entity.Lot, error) {
	return nil, nil
}
func (f *fakeLotRepo) Count(_ context.Context, _ repository.LotFilter) (int, error) { return 0, nil }

// fakeUserRepo resuelve telegram ids para las notificaciones.
type fakeUserRepo struct {
	users map[int64]*entity.User
}

func (f *fakeUserRepo) EnsureByTelegramID(_ context.Context, telegramID int64) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}
func (f *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*entity.User, error) {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if u, ok := f.users[user.ID]; ok {
		*u = *user
	}
	return nil
}
func (f *fakeUserRepo) SetBanned(_ context.Context, id int64, banned bool) error {
	if u, ok := f.users[id]; ok {
		u.IsBanned = banned
	}
	return nil
}
func (f *fakeUserRepo) TouchLastActive(_ context.Context, telegramID int64) error { return nil }
func (f *fakeUserRepo) Search(_ context.Context, q string, limit, offset int) ([]*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Count(_ context.Context) (int, int, error) { return len(f.users), 0, nil }
func (f *fakeUserRepo) ListBroadcastTargets(_ context.Context, afterID int64, limit int) ([]repository.BroadcastTarget, error) {
	return nil, nil
}

// fakeMessenger registra los envíos.
type fakeMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMessenger) SendMessage(_ context.Context, telegramID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerID = int64(1)
	buyerID = int64(2)
	lotID   = int64(10)
)

func buildNegotiation(t *testing.T) (*usecase.NegotiationUseCase, *fakeOfferRepo, *fakeMessenger) {
	t.Helper()
	offers := newFakeOfferRepo()
	lots := &fakeLotRepo{lots: map[int64]*entity.Lot{
		lotID: {ID: lotID, OwnerUserID: ownerID, Status: entity.LotStatusActive, Crop: "maíz"},
	}}
	users := &fakeUserRepo{users: map[int64]*entity.User{
		ownerID: {ID: ownerID, TelegramID: 100, Role: entity.RoleFarmer},
		buyerID: {ID: buyerID, TelegramID: 200, Role: entity.RoleBuyer},
	}}
	msg := &fakeMessenger{}
	return usecase.NewNegotiationUseCase(offers, lots, users, msg), offers, msg
}

func createPendingOffer(t *testing.T, uc *usecase.NegotiationUseCase) *entity.Offer {
	t.Helper()
	offer, err := uc.CreateOffer(context.Background(), dto.CreateOfferRequest{
		LotID:        lotID,
		SenderUserID: buyerID,
		OfferedPrice: decimal.NewFromInt(950),
	})
	require.NoError(t, err)
	return offer
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateOffer
// ──────────────────────────────────────────────────────────────────────────────

// La creación válida deja la oferta pending y avisa al dueño del lote.
func TestCreateOffer_CreaPendingYAvisaAlDueno(t *testing.T) {
	uc, offers, msg := buildNegotiation(t)

	offer := createPendingOffer(t, uc)

	assert.Equal(t, entity.OfferStatusPending, offer.Status)
	stored, _ := offers.GetByID(context.Background(), offer.ID)
	require.NotNil(t, stored)
	assert.Equal(t, entity.OfferStatusPending, stored.Status)
	require.Len(t, msg.sent, 1)
	assert.Contains(t, msg.sent[0], "contraoferta")
}

// Ofertar sobre el propio lote se rechaza en la creación.
func TestCreateOffer_RechazaOfertaPropia(t *testing.T) {
	uc, _, _ := buildNegotiation(t)

	_, err := uc.CreateOffer(context.Background(), dto.CreateOfferRequest{
		LotID:        lotID,
		SenderUserID: ownerID,
		OfferedPrice: decimal.NewFromInt(900),
	})
	assert.ErrorIs(t, err, domain.ErrSelfOffer)
}

// Un lote que no está active no admite contraofertas.
func TestCreateOffer_RechazaLoteInactivo(t *testing.T) {
	uc, _, _ := buildNegotiation(t)
	lots := &fakeLotRepo{lots: map[int64]*entity.Lot{
		lotID: {ID: lotID, OwnerUserID: ownerID, Status: entity.LotStatusSold},
	}}
	uc = usecase.NewNegotiationUseCase(newFakeOfferRepo(), lots, &fakeUserRepo{users: map[int64]*entity.User{}}, nil)

	_, err := uc.CreateOffer(context.Background(), dto.CreateOfferRequest{
		LotID:        lotID,
		SenderUserID: buyerID,
		OfferedPrice: decimal.NewFromInt(900),
	})
	assert.ErrorIs(t, err, domain.ErrLotInactive)
}

// Un precio no positivo es inválido.
func TestCreateOffer_RechazaPrecioNoPositivo(t *testing.T) {
	uc, _, _ := buildNegotiation(t)

	_, err := uc.CreateOffer(context.Background(), dto.CreateOfferRequest{
		LotID:        lotID,
		SenderUserID: buyerID,
		OfferedPrice: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Accept / Reject
// ──────────────────────────────────────────────────────────────────────────────

// El dueño acepta una pending: queda accepted y se avisa al emisor.
func TestAcceptOffer_DuenoAceptaPending(t *testing.T) {
	uc, offers, msg := buildNegotiation(t)
	offer := createPendingOffer(t, uc)

	decided, err := uc.AcceptOffer(context.Background(), offer.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferStatusAccepted, decided.Status)

	stored, _ := offers.GetByID(context.Background(), offer.ID)
	assert.Equal(t, entity.OfferStatusAccepted, stored.Status)
	require.Len(t, msg.sent, 2) // aviso de creación + aviso de aceptación
	assert.Contains(t, msg.sent[1], "aceptada")
}

// Alguien que no es el dueño del lote no puede decidir.
func TestAcceptOffer_SoloElDuenoDecide(t *testing.T) {
	uc, _, _ := buildNegotiation(t)
	offer := createPendingOffer(t, uc)

	_, err := uc.AcceptOffer(context.Background(), offer.ID, buyerID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Decidir dos veces: la segunda decisión recibe ErrAlreadyDecided, el estado
// terminal no cambia y no se vuelve a avisar al emisor.
func TestAcceptOffer_SegundaDecisionNoGana(t *testing.T) {
	uc, offers, msg := buildNegotiation(t)
	offer := createPendingOffer(t, uc)

	_, err := uc.AcceptOffer(context.Background(), offer.ID, ownerID)
	require.NoError(t, err)

	_, err = uc.RejectOffer(context.Background(), offer.ID, ownerID)
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)

	stored, _ := offers.GetByID(context.Background(), offer.ID)
	assert.Equal(t, entity.OfferStatusAccepted, stored.Status, "el estado terminal no debe cambiar")
	require.Len(t, msg.sent, 2, "la decisión perdedora no debe generar otro aviso")
}

// Dos decisiones concurrentes sobre la misma pending: exactamente una gana.
func TestAcceptOffer_CarreraSoloUnaGana(t *testing.T) {
	uc, offers, _ := buildNegotiation(t)
	offer := createPendingOffer(t, uc)

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = uc.AcceptOffer(context.Background(), offer.ID, ownerID)
	}()
	go func() {
		defer wg.Done()
		_, results[1] = uc.RejectOffer(context.Background(), offer.ID, ownerID)
	}()
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyDecided):
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactamente una decisión debe ganar")
	assert.Equal(t, 1, losses, "la otra debe recibir ErrAlreadyDecided")

	stored, _ := offers.GetByID(context.Background(), offer.ID)
	assert.True(t, stored.IsTerminal())
}

// Decidir una oferta inexistente devuelve ErrNotFound.
func TestAcceptOffer_OfertaInexistente(t *testing.T) {
	uc, _, _ := buildNegotiation(t)

	_, err := uc.AcceptOffer(context.Background(), 999, ownerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
