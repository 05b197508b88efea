package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una contraoferta. pending es el único estado no terminal;
// accepted y rejected se fijan exactamente una vez.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// Offer representa una contraoferta de precio sobre un lote, dirigida
// implícitamente al dueño del lote. Pueden coexistir varias pending sobre el
// mismo lote; cada una se decide de forma independiente.
type Offer struct {
	ID           int64
	LotID        int64
	SenderUserID int64
	OfferedPrice decimal.Decimal // > 0
	Message      string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal indica si la oferta ya fue decidida.
func (o *Offer) IsTerminal() bool {
	return o.Status == OfferStatusAccepted || o.Status == OfferStatusRejected
}
