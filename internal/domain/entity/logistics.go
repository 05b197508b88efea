package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de carrocería.
const (
	BodyTypeGrain  = "grain"  // tolva granelera
	BodyTypeTipper = "tipper" // volqueta
	BodyTypeTarp   = "tarp"   // carpado
)

// Estados de vehículo.
const (
	VehicleStatusAvailable = "available"
	VehicleStatusBusy      = "busy"
	VehicleStatusInactive  = "inactive"
)

// Vehicle vehículo de un transportista.
type Vehicle struct {
	ID           int64
	OwnerUserID  int64
	BodyType     string
	CapacityTons decimal.Decimal // > 0
	CountUnits   int             // > 0
	BaseRegion   string
	Status       string
	Comment      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Estados de solicitud de flete.
const (
	ShipmentStatusActive = "active"
	ShipmentStatusClosed = "closed"
)

// Shipment solicitud de transporte de carga publicada por un usuario.
type Shipment struct {
	ID            int64
	CreatorUserID int64
	CargoType     string
	VolumeTons    decimal.Decimal // > 0
	FromRegion    string
	FromLocation  string
	ToRegion      string
	ToLocation    string
	Comment       string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
