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

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

const vehicleColumns = `id, owner_user_id, body_type, capacity_tons, count_units, base_region, status, comment, created_at, updated_at`

// VehicleRepo implementación del puerto VehicleRepository sobre PostgreSQL.
type VehicleRepo struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository construye el adaptador de persistencia para vehículos.
func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepo {
	return &VehicleRepo{pool: pool}
}

// Create persiste un vehículo nuevo.
func (r *VehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (owner_user_id, body_type, capacity_tons, count_units, base_region, status, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		v.OwnerUserID, v.BodyType, v.CapacityTons, v.CountUnits, v.BaseRegion, v.Status, v.Comment,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// GetByID obtiene un vehículo por ID.
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	var v entity.Vehicle
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.OwnerUserID, &v.BodyType, &v.CapacityTons, &v.CountUnits, &v.BaseRegion,
		&v.Status, &v.Comment, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// ListByOwner lista los vehículos de un transportista.
func (r *VehicleRepo) ListByOwner(ctx context.Context, ownerUserID int64) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_user_id = $1 ORDER BY id DESC`
	return r.queryVehicles(ctx, query, ownerUserID)
}

// ListAvailableByRegion lista vehículos disponibles en una región base.
func (r *VehicleRepo) ListAvailableByRegion(ctx context.Context, region string, limit, offset int) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE base_region = $1 AND status = 'available'
		ORDER BY id DESC LIMIT $2 OFFSET $3`
	return r.queryVehicles(ctx, query, region, limit, offset)
}

// SetStatus cambia el estado del vehículo.
func (r *VehicleRepo) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE vehicles SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set vehicle status: %w", err)
	}
	return nil
}

func (r *VehicleRepo) queryVehicles(ctx context.Context, query string, args ...any) ([]*entity.Vehicle, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		var v entity.Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerUserID, &v.BodyType, &v.CapacityTons, &v.CountUnits,
			&v.BaseRegion, &v.Status, &v.Comment, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

const shipmentColumns = `id, creator_user_id, cargo_type, volume_tons, from_region, from_location, to_region, to_location, comment, status, created_at, updated_at`

// ShipmentRepo implementación del puerto ShipmentRepository sobre PostgreSQL.
type ShipmentRepo struct {
	pool *pgxpool.Pool
}

// NewShipmentRepository construye el adaptador de persistencia para fletes.
func NewShipmentRepository(pool *pgxpool.Pool) *ShipmentRepo {
	return &ShipmentRepo{pool: pool}
}

// Create persiste una solicitud de flete nueva.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	query := `
		INSERT INTO shipments (creator_user_id, cargo_type, volume_tons, from_region, from_location, to_region, to_location, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.CreatorUserID, s.CargoType, s.VolumeTons, s.FromRegion, s.FromLocation,
		s.ToRegion, s.ToLocation, s.Comment, s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud de flete por ID.
func (r *ShipmentRepo) GetByID(ctx context.Context, id int64) (*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`
	var s entity.Shipment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CreatorUserID, &s.CargoType, &s.VolumeTons, &s.FromRegion, &s.FromLocation,
		&s.ToRegion, &s.ToLocation, &s.Comment, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return &s, nil
}

// ListByCreator lista las solicitudes creadas por un usuario.
func (r *ShipmentRepo) ListByCreator(ctx context.Context, creatorUserID int64) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE creator_user_id = $1 ORDER BY id DESC`
	return r.queryShipments(ctx, query, creatorUserID)
}

// ListActive lista las solicitudes activas con paginación.
func (r *ShipmentRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments
		WHERE status = 'active' ORDER BY id DESC LIMIT $1 OFFSET $2`
	return r.queryShipments(ctx, query, limit, offset)
}

// SetStatus cambia el estado de la solicitud.
func (r *ShipmentRepo) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE shipments SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set shipment status: %w", err)
	}
	return nil
}

func (r *ShipmentRepo) queryShipments(ctx context.Context, query string, args ...any) ([]*entity.Shipment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shipment
	for rows.Next() {
		var s entity.Shipment
		if err := rows.Scan(&s.ID, &s.CreatorUserID, &s.CargoType, &s.VolumeTons, &s.FromRegion,
			&s.FromLocation, &s.ToRegion, &s.ToLocation, &s.Comment, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
