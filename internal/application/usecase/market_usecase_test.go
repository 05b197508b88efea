package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests edición de lote
// ──────────────────────────────────────────────────────────────────────────────

func buildMarketWithLot() (*usecase.MarketUseCase, *fakeLotRepo) {
	lots := &fakeLotRepo{lots: map[int64]*entity.Lot{
		lotID: {
			ID: lotID, OwnerUserID: ownerID, Status: entity.LotStatusActive,
			Crop: "maíz", VolumeTons: decimal.NewFromInt(25), Price: "1200",
		},
	}}
	return usecase.NewMarketUseCase(lots), lots
}

// El dueño puede cambiar el precio, incluido pasarlo a negociable.
func TestUpdateLot_DuenoEditaElPrecio(t *testing.T) {
	uc, lots := buildMarketWithLot()

	lot, _ := lots.GetByID(context.Background(), lotID)
	edited := *lot
	edited.Price = entity.PriceNegotiable
	require.NoError(t, uc.UpdateLot(context.Background(), ownerID, &edited))

	stored, _ := lots.GetByID(context.Background(), lotID)
	assert.Equal(t, entity.PriceNegotiable, stored.Price)
}

// Nadie más que el dueño edita el lote.
func TestUpdateLot_SoloElDuenoEdita(t *testing.T) {
	uc, lots := buildMarketWithLot()

	lot, _ := lots.GetByID(context.Background(), lotID)
	edited := *lot
	edited.Price = "1500"
	err := uc.UpdateLot(context.Background(), buyerID, &edited)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, _ := lots.GetByID(context.Background(), lotID)
	assert.Equal(t, "1200", stored.Price)
}

// Un precio que no es número positivo ni negociable es inválido.
func TestUpdateLot_RechazaPrecioInvalido(t *testing.T) {
	uc, _ := buildMarketWithLot()

	edited := entity.Lot{
		ID: lotID, OwnerUserID: ownerID, Status: entity.LotStatusActive,
		VolumeTons: decimal.NewFromInt(25), Price: "-5",
	}
	err := uc.UpdateLot(context.Background(), ownerID, &edited)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Editar un lote inexistente devuelve ErrNotFound.
func TestUpdateLot_LoteInexistente(t *testing.T) {
	uc, _ := buildMarketWithLot()

	edited := entity.Lot{ID: 999, VolumeTons: decimal.NewFromInt(1), Price: "100"}
	err := uc.UpdateLot(context.Background(), ownerID, &edited)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
