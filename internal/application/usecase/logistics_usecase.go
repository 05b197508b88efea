package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// LogisticsUseCase casos de uso de logística: flota y solicitudes de flete.
type LogisticsUseCase struct {
	vehicles  repository.VehicleRepository
	shipments repository.ShipmentRepository
}

// NewLogisticsUseCase construye el caso de uso.
func NewLogisticsUseCase(vehicles repository.VehicleRepository, shipments repository.ShipmentRepository) *LogisticsUseCase {
	return &LogisticsUseCase{vehicles: vehicles, shipments: shipments}
}

// RegisterVehicle da de alta un vehículo del transportista.
func (uc *LogisticsUseCase) RegisterVehicle(ctx context.Context, ownerUserID int64, bodyType string, capacityTons decimal.Decimal, countUnits int, baseRegion, comment string) (*entity.Vehicle, error) {
	switch bodyType {
	case entity.BodyTypeGrain, entity.BodyTypeTipper, entity.BodyTypeTarp:
	default:
		return nil, domain.ErrValidation
	}
	if !capacityTons.IsPositive() || countUnits <= 0 || baseRegion == "" {
		return nil, domain.ErrValidation
	}
	v := &entity.Vehicle{
		OwnerUserID:  ownerUserID,
		BodyType:     bodyType,
		CapacityTons: capacityTons,
		CountUnits:   countUnits,
		BaseRegion:   baseRegion,
		Status:       entity.VehicleStatusAvailable,
		Comment:      comment,
	}
	if err := uc.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// MyVehicles lista la flota del transportista.
func (uc *LogisticsUseCase) MyVehicles(ctx context.Context, ownerUserID int64) ([]*entity.Vehicle, error) {
	return uc.vehicles.ListByOwner(ctx, ownerUserID)
}

// FindVehicles busca vehículos disponibles por región.
func (uc *LogisticsUseCase) FindVehicles(ctx context.Context, region string, limit, offset int) ([]*entity.Vehicle, error) {
	if region == "" {
		return nil, domain.ErrValidation
	}
	return uc.vehicles.ListAvailableByRegion(ctx, region, limit, offset)
}

// SetVehicleStatus cambia el estado de un vehículo del propio dueño.
func (uc *LogisticsUseCase) SetVehicleStatus(ctx context.Context, vehicleID, actorUserID int64, status string) error {
	switch status {
	case entity.VehicleStatusAvailable, entity.VehicleStatusBusy, entity.VehicleStatusInactive:
	default:
		return domain.ErrValidation
	}
	v, err := uc.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.ErrNotFound
	}
	if v.OwnerUserID != actorUserID {
		return domain.ErrForbidden
	}
	return uc.vehicles.SetStatus(ctx, vehicleID, status)
}

// CreateShipment publica una solicitud de flete.
func (uc *LogisticsUseCase) CreateShipment(ctx context.Context, creatorUserID int64, cargoType string, volumeTons decimal.Decimal, fromRegion, fromLocation, toRegion, toLocation, comment string) (*entity.Shipment, error) {
	if cargoType == "" || fromRegion == "" || toRegion == "" || !volumeTons.IsPositive() {
		return nil, domain.ErrValidation
	}
	s := &entity.Shipment{
		CreatorUserID: creatorUserID,
		CargoType:     cargoType,
		VolumeTons:    volumeTons,
		FromRegion:    fromRegion,
		FromLocation:  fromLocation,
		ToRegion:      toRegion,
		ToLocation:    toLocation,
		Comment:       comment,
		Status:        entity.ShipmentStatusActive,
	}
	if err := uc.shipments.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MyShipments lista las solicitudes del usuario.
func (uc *LogisticsUseCase) MyShipments(ctx context.Context, creatorUserID int64) ([]*entity.Shipment, error) {
	return uc.shipments.ListByCreator(ctx, creatorUserID)
}

// BrowseShipments lista las solicitudes activas (vista del transportista).
func (uc *LogisticsUseCase) BrowseShipments(ctx context.Context, limit, offset int) ([]*entity.Shipment, error) {
	return uc.shipments.ListActive(ctx, limit, offset)
}

// CloseShipment cierra una solicitud del propio creador.
func (uc *LogisticsUseCase) CloseShipment(ctx context.Context, shipmentID, actorUserID int64) error {
	s, err := uc.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	if s.CreatorUserID != actorUserID {
		return domain.ErrForbidden
	}
	return uc.shipments.SetStatus(ctx, shipmentID, entity.ShipmentStatusClosed)
}
