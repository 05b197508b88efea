package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// LotFilter filtros del listado de lotes. Campos vacíos no filtran.
type LotFilter struct {
	Type   string
	Crop   string
	Region string
	Status string
}

// LotRepository puerto de persistencia para Lot.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id int64) (*entity.Lot, error)
	Update(ctx context.Context, lot *entity.Lot) error
	// SetStatus cambia el estado sin tocar el resto de la fila.
	SetStatus(ctx context.Context, id int64, status string) error
	IncrementViews(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerUserID int64, limit, offset int) ([]*entity.Lot, error)
	List(ctx context.Context, f LotFilter, limit, offset int) ([]*entity.Lot, error)
	Count(ctx context.Context, f LotFilter) (int, error)
}
