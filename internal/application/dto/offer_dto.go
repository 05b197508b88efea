package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// CreateOfferRequest contraoferta enviada desde el bot.
type CreateOfferRequest struct {
	LotID        int64
	SenderUserID int64
	OfferedPrice decimal.Decimal
	Message      string
}

// OfferResponse representación de una contraoferta.
type OfferResponse struct {
	ID           int64           `json:"id"`
	LotID        int64           `json:"lot_id"`
	SenderUserID int64           `json:"sender_user_id"`
	OfferedPrice decimal.Decimal `json:"offered_price"`
	Message      string          `json:"message,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToOfferResponse convierte la entidad al DTO.
func ToOfferResponse(o *entity.Offer) *OfferResponse {
	if o == nil {
		return nil
	}
	return &OfferResponse{
		ID:           o.ID,
		LotID:        o.LotID,
		SenderUserID: o.SenderUserID,
		OfferedPrice: o.OfferedPrice,
		Message:      o.Message,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
