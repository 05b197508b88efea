package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// CreateLotRequest datos del flujo de publicación de un lote.
type CreateLotRequest struct {
	Type       string
	Crop       string
	VolumeTons decimal.Decimal
	Region     string
	Location   string
	Price      string // número o "negociable"
	Comment    string
}

// LotFilterRequest filtros de listado de lotes.
type LotFilterRequest struct {
	Type   string `query:"type"`
	Crop   string `query:"crop"`
	Region string `query:"region"`
	Status string `query:"status"`
}

// LotResponse representación de un lote.
type LotResponse struct {
	ID          int64           `json:"id"`
	OwnerUserID int64           `json:"owner_user_id"`
	Type        string          `json:"type"`
	Crop        string          `json:"crop"`
	VolumeTons  decimal.Decimal `json:"volume_tons"`
	Region      string          `json:"region"`
	Location    string          `json:"location,omitempty"`
	Price       string          `json:"price"`
	Comment     string          `json:"comment,omitempty"`
	Status      string          `json:"status"`
	ViewsCount  int             `json:"views_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LotListResponse listado paginado de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// UpdateLotStatusRequest cambio de estado desde el panel.
type UpdateLotStatusRequest struct {
	Status string `json:"status"`
}

// ToLotResponse convierte la entidad al DTO.
func ToLotResponse(l *entity.Lot) *LotResponse {
	if l == nil {
		return nil
	}
	return &LotResponse{
		ID:          l.ID,
		OwnerUserID: l.OwnerUserID,
		Type:        l.Type,
		Crop:        l.Crop,
		VolumeTons:  l.VolumeTons,
		Region:      l.Region,
		Location:    l.Location,
		Price:       l.Price,
		Comment:     l.Comment,
		Status:      l.Status,
		ViewsCount:  l.ViewsCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
