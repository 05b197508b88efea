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

// ModerationUseCase acciones del panel que afectan a la superficie del bot.
// Toda mutación publica su evento en el log durable; si la publicación falla,
// el error llega al panel aunque la mutación ya esté aplicada, para que el
// operador sepa que el bot puede quedar desincronizado.
type ModerationUseCase struct {
	users     repository.UserRepository
	lots      repository.LotRepository
	offers    repository.OfferRepository
	settings  repository.SettingRepository
	events    repository.SyncEventRepository
	publisher ports.EventPublisher
}

// NewModerationUseCase construye el caso de uso.
func NewModerationUseCase(
	users repository.UserRepository,
	lots repository.LotRepository,
	offers repository.OfferRepository,
	settings repository.SettingRepository,
	events repository.SyncEventRepository,
	publisher ports.EventPublisher,
) *ModerationUseCase {
	return &ModerationUseCase{
		users: users, lots: lots, offers: offers,
		settings: settings, events: events, publisher: publisher,
	}
}

// SetUserBanned banea o desbanea. Idempotente: si el usuario ya está en el
// estado pedido no se toca nada ni se publica evento.
func (uc *ModerationUseCase) SetUserBanned(ctx context.Context, userID int64, banned bool) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.IsBanned == banned {
		return nil
	}
	if err := uc.users.SetBanned(ctx, userID, banned); err != nil {
		return err
	}
	if banned {
		_, err = uc.publisher.UserBanned(ctx, user.TelegramID)
	} else {
		_, err = uc.publisher.UserUnbanned(ctx, user.TelegramID)
	}
	if err != nil {
		return fmt.Errorf("el cambio se aplicó pero el evento no se publicó: %w", err)
	}
	return nil
}

// SetLotStatus cambia el estado de cualquier lote desde el panel y publica el
// evento para que el bot avise al dueño.
func (uc *ModerationUseCase) SetLotStatus(ctx context.Context, lotID int64, status string) error {
	if !entity.ValidLotStatus(status) {
		return domain.ErrValidation
	}
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}
	if lot.Status == status {
		return nil
	}
	if err := uc.lots.SetStatus(ctx, lotID, status); err != nil {
		return err
	}

	owner, err := uc.users.GetByID(ctx, lot.OwnerUserID)
	if err != nil {
		return err
	}
	var ownerTelegramID int64
	if owner != nil {
		ownerTelegramID = owner.TelegramID
	}
	if _, err := uc.publisher.LotStatusChanged(ctx, lotID, status, ownerTelegramID); err != nil {
		return fmt.Errorf("el cambio se aplicó pero el evento no se publicó: %w", err)
	}
	return nil
}

// LotOffers devuelve el historial de negociación de un lote para el panel.
func (uc *ModerationUseCase) LotOffers(ctx context.Context, lotID int64) ([]*entity.Offer, error) {
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return uc.offers.ListByLot(ctx, lotID)
}

// SaveSettings aplica solo las claves cuyo valor cambia y publica un único
// evento settings_changed con el diff. Sin cambios no hay evento.
func (uc *ModerationUseCase) SaveSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	changed := make(map[string]string)
	for key, value := range values {
		current, err := uc.settings.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if current == value {
			continue
		}
		if err := uc.settings.Set(ctx, key, value); err != nil {
			return nil, err
		}
		changed[key] = value
	}
	if len(changed) == 0 {
		return changed, nil
	}
	if _, err := uc.publisher.SettingsChanged(ctx, changed); err != nil {
		return changed, fmt.Errorf("los cambios se aplicaron pero el evento no se publicó: %w", err)
	}
	return changed, nil
}

// AllSettings devuelve la configuración completa.
func (uc *ModerationUseCase) AllSettings(ctx context.Context) (map[string]string, error) {
	return uc.settings.All(ctx)
}

// SearchUsers busca usuarios para el panel (query ya normalizada).
func (uc *ModerationUseCase) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*entity.User, error) {
	return uc.users.Search(ctx, query, limit, offset)
}

// GetUser devuelve un usuario por ID para el panel.
func (uc *ModerationUseCase) GetUser(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Dashboard arma las métricas agregadas del panel.
func (uc *ModerationUseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	totalUsers, bannedUsers, err := uc.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeLots, err := uc.lots.Count(ctx, repository.LotFilter{Status: entity.LotStatusActive})
	if err != nil {
		return nil, err
	}
	totalLots, err := uc.lots.Count(ctx, repository.LotFilter{})
	if err != nil {
		return nil, err
	}
	totalOffers, err := uc.offers.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		TotalUsers:  totalUsers,
		BannedUsers: bannedUsers,
		ActiveLots:  activeLots,
		TotalLots:   totalLots,
		TotalOffers: totalOffers,
	}, nil
}

// SyncStatus devuelve el estado del log de eventos panel → bot.
func (uc *ModerationUseCase) SyncStatus(ctx context.Context) (*dto.SyncStatusResponse, error) {
	pending, err := uc.events.ListUnprocessed(ctx)
	if err != nil {
		return nil, err
	}
	processed, err := uc.events.CountProcessed(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.SyncStatusResponse{
		PendingEvents:   len(pending),
		ProcessedEvents: processed,
	}
	if len(pending) > 0 {
		resp.OldestPendingID = pending[0].ID
	}
	return resp, nil
}
