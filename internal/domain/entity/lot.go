package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de lote.
const (
	LotTypeBuy  = "buy"
	LotTypeSell = "sell"
)

// Estados de lote. Las transiciones las inicia el dueño o un admin;
// deleted es un borrado lógico, la fila nunca se elimina.
const (
	LotStatusActive   = "active"
	LotStatusInactive = "inactive"
	LotStatusSold     = "sold"
	LotStatusClosed   = "closed"
	LotStatusDeleted  = "deleted"
)

// PriceNegotiable valor centinela para lotes sin precio fijo.
const PriceNegotiable = "negociable"

// Lot representa un anuncio de compra o venta de grano.
// Price se guarda como texto: un número o el centinela "negociable".
type Lot struct {
	ID          int64
	OwnerUserID int64
	Type        string
	Crop        string
	VolumeTons  decimal.Decimal // > 0
	Region      string
	Location    string
	Price       string
	Comment     string
	Status      string
	ViewsCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidLotStatus indica si s es un estado de lote reconocido.
func ValidLotStatus(s string) bool {
	switch s {
	case LotStatusActive, LotStatusInactive, LotStatusSold, LotStatusClosed, LotStatusDeleted:
		return true
	}
	return false
}
