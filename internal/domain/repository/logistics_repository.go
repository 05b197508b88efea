package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// VehicleRepository puerto de persistencia para vehículos.
type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	GetByID(ctx context.Context, id int64) (*entity.Vehicle, error)
	ListByOwner(ctx context.Context, ownerUserID int64) ([]*entity.Vehicle, error)
	// ListAvailableByRegion lista vehículos disponibles en una región base.
	ListAvailableByRegion(ctx context.Context, region string, limit, offset int) ([]*entity.Vehicle, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

// ShipmentRepository puerto de persistencia para solicitudes de flete.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	GetByID(ctx context.Context, id int64) (*entity.Shipment, error)
	ListByCreator(ctx context.Context, creatorUserID int64) ([]*entity.Shipment, error)
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Shipment, error)
	SetStatus(ctx context.Context, id int64, status string) error
}
