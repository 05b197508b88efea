package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// MarketUseCase casos de uso del tablón de lotes: publicar, navegar, gestionar.
type MarketUseCase struct {
	lots repository.LotRepository
}

// NewMarketUseCase construye el caso de uso.
func NewMarketUseCase(lots repository.LotRepository) *MarketUseCase {
	return &MarketUseCase{lots: lots}
}

// CreateLot publica un lote nuevo en estado active.
func (uc *MarketUseCase) CreateLot(ctx context.Context, ownerUserID int64, in dto.CreateLotRequest) (*entity.Lot, error) {
	if in.Type != entity.LotTypeBuy && in.Type != entity.LotTypeSell {
		return nil, domain.ErrValidation
	}
	if in.Crop == "" || in.Region == "" {
		return nil, domain.ErrValidation
	}
	if !in.VolumeTons.IsPositive() {
		return nil, domain.ErrValidation
	}
	if !validPrice(in.Price) {
		return nil, domain.ErrValidation
	}
	lot := &entity.Lot{
		OwnerUserID: ownerUserID,
		Type:        in.Type,
		Crop:        in.Crop,
		VolumeTons:  in.VolumeTons,
		Region:      in.Region,
		Location:    in.Location,
		Price:       in.Price,
		Comment:     in.Comment,
		Status:      entity.LotStatusActive,
	}
	if err := uc.lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// validPrice acepta un decimal positivo o el centinela "negociable".
func validPrice(p string) bool {
	if p == entity.PriceNegotiable {
		return true
	}
	d, err := decimal.NewFromString(p)
	return err == nil && d.IsPositive()
}

// ViewLot obtiene un lote y registra la vista. Las vistas del dueño no cuentan.
func (uc *MarketUseCase) ViewLot(ctx context.Context, lotID, viewerUserID int64) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil || lot.Status == entity.LotStatusDeleted {
		return nil, domain.ErrNotFound
	}
	if lot.OwnerUserID != viewerUserID {
		if err := uc.lots.IncrementViews(ctx, lotID); err == nil {
			lot.ViewsCount++
		}
	}
	return lot, nil
}

// GetLot obtiene un lote sin registrar vista (panel, validaciones internas).
func (uc *MarketUseCase) GetLot(ctx context.Context, lotID int64) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

// BrowseLots lista lotes activos con filtros para la navegación del bot.
func (uc *MarketUseCase) BrowseLots(ctx context.Context, f dto.LotFilterRequest, limit, offset int) ([]*entity.Lot, error) {
	filter := repository.LotFilter{
		Status: entity.LotStatusActive,
		Type:   f.Type,
		Crop:   f.Crop,
		Region: f.Region,
	}
	return uc.lots.List(ctx, filter, limit, offset)
}

// ListLots lista lotes con cualquier filtro (panel).
func (uc *MarketUseCase) ListLots(ctx context.Context, f dto.LotFilterRequest, limit, offset int) ([]*entity.Lot, int, error) {
	filter := repository.LotFilter{Status: f.Status, Type: f.Type, Crop: f.Crop, Region: f.Region}
	list, err := uc.lots.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.lots.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MyLots lista los lotes no borrados del dueño.
func (uc *MarketUseCase) MyLots(ctx context.Context, ownerUserID int64, limit, offset int) ([]*entity.Lot, error) {
	return uc.lots.ListByOwner(ctx, ownerUserID, limit, offset)
}

// SetLotStatus cambia el estado de un lote del propio dueño.
func (uc *MarketUseCase) SetLotStatus(ctx context.Context, lotID, actorUserID int64, status string) error {
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
	if lot.OwnerUserID != actorUserID {
		return domain.ErrForbidden
	}
	return uc.lots.SetStatus(ctx, lotID, status)
}

// UpdateLot edita los campos de un lote del propio dueño.
func (uc *MarketUseCase) UpdateLot(ctx context.Context, actorUserID int64, lot *entity.Lot) error {
	current, err := uc.lots.GetByID(ctx, lot.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	if current.OwnerUserID != actorUserID {
		return domain.ErrForbidden
	}
	if !lot.VolumeTons.IsPositive() || !validPrice(lot.Price) {
		return domain.ErrValidation
	}
	return uc.lots.Update(ctx, lot)
}
