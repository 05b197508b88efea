package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests perfil
// ──────────────────────────────────────────────────────────────────────────────

// Cambiar la región no debe tocar el resto del perfil.
func TestUpdateRegion_CambiaSoloLaRegion(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100, Role: entity.RoleFarmer, Region: "Boyacá", Phone: "3001112233"},
	}}
	uc := usecase.NewUserUseCase(users)

	updated, err := uc.UpdateRegion(context.Background(), 100, "Meta")
	require.NoError(t, err)
	assert.Equal(t, "Meta", updated.Region)

	stored, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, "Meta", stored.Region)
	assert.Equal(t, entity.RoleFarmer, stored.Role)
	assert.Equal(t, "3001112233", stored.Phone)
}

// La región vacía es inválida.
func TestUpdateRegion_RechazaRegionVacia(t *testing.T) {
	uc := usecase.NewUserUseCase(&fakeUserRepo{users: map[int64]*entity.User{}})

	_, err := uc.UpdateRegion(context.Background(), 100, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Profile resuelve por telegram_id y falla con ErrUserNotFound si no existe.
func TestProfile_ResuelvePorTelegramID(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100, Role: entity.RoleBuyer},
	}}
	uc := usecase.NewUserUseCase(users)

	user, err := uc.Profile(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = uc.Profile(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
