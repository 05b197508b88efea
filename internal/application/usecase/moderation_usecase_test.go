package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeSettingRepo clave/valor en memoria.
type fakeSettingRepo struct {
	values map[string]string
}

func (f *fakeSettingRepo) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}
func (f *fakeSettingRepo) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}
func (f *fakeSettingRepo) All(_ context.Context) (map[string]string, error) {
	return f.values, nil
}

// fakePublisher registra los eventos publicados; puede fallar a demanda.
type fakePublisher struct {
	published []string
	fail      bool
}

func (f *fakePublisher) publish(kind string) (string, error) {
	if f.fail {
		return "", errors.New("db caída")
	}
	f.published = append(f.published, kind)
	return "01TEST", nil
}

func (f *fakePublisher) UserBanned(_ context.Context, telegramID int64) (string, error) {
	return f.publish(entity.EventUserBanned)
}
func (f *fakePublisher) UserUnbanned(_ context.Context, telegramID int64) (string, error) {
	return f.publish(entity.EventUserUnbanned)
}
func (f *fakePublisher) LotStatusChanged(_ context.Context, lotID int64, newStatus string, ownerTelegramID int64) (string, error) {
	return f.publish(entity.EventLotStatusChanged)
}
func (f *fakePublisher) SettingsChanged(_ context.Context, changed map[string]string) (string, error) {
	return f.publish(entity.EventSettingsChanged)
}

// fakeSyncRepoModeration solo para SyncStatus.
type fakeSyncRepoModeration struct{}

func (f *fakeSyncRepoModeration) Append(_ context.Context, ev *entity.SyncEvent) error { return nil }
func (f *fakeSyncRepoModeration) ListUnprocessed(_ context.Context) ([]*entity.SyncEvent, error) {
	return nil, nil
}
func (f *fakeSyncRepoModeration) MarkProcessed(_ context.Context, id string) error { return nil }
func (f *fakeSyncRepoModeration) CountProcessed(_ context.Context) (int, error)    { return 0, nil }

func buildModeration(users *fakeUserRepo, lots *fakeLotRepo, settings *fakeSettingRepo, pub *fakePublisher) *usecase.ModerationUseCase {
	return usecase.NewModerationUseCase(users, lots, newFakeOfferRepo(), settings, &fakeSyncRepoModeration{}, pub)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SetUserBanned
// ──────────────────────────────────────────────────────────────────────────────

// Banear aplica el cambio y publica user_banned.
func TestSetUserBanned_AplicaYPublica(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100},
	}}
	pub := &fakePublisher{}
	uc := buildModeration(users, &fakeLotRepo{lots: map[int64]*entity.Lot{}}, &fakeSettingRepo{values: map[string]string{}}, pub)

	require.NoError(t, uc.SetUserBanned(context.Background(), 1, true))

	assert.True(t, users.users[1].IsBanned)
	assert.Equal(t, []string{entity.EventUserBanned}, pub.published)
}

// Banear a quien ya está baneado es un no-op sin evento duplicado.
func TestSetUserBanned_IdempotenteSinEventoDuplicado(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100, IsBanned: true},
	}}
	pub := &fakePublisher{}
	uc := buildModeration(users, &fakeLotRepo{lots: map[int64]*entity.Lot{}}, &fakeSettingRepo{values: map[string]string{}}, pub)

	require.NoError(t, uc.SetUserBanned(context.Background(), 1, true))
	assert.Empty(t, pub.published)
}

// Si publicar falla, el error llega al panel aunque el ban quedó aplicado.
func TestSetUserBanned_FalloDePublicacionSeInforma(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100},
	}}
	pub := &fakePublisher{fail: true}
	uc := buildModeration(users, &fakeLotRepo{lots: map[int64]*entity.Lot{}}, &fakeSettingRepo{values: map[string]string{}}, pub)

	err := uc.SetUserBanned(context.Background(), 1, true)
	require.Error(t, err)
	assert.True(t, users.users[1].IsBanned, "la mutación ya estaba aplicada")
}

// Usuario inexistente.
func TestSetUserBanned_UsuarioInexistente(t *testing.T) {
	uc := buildModeration(&fakeUserRepo{users: map[int64]*entity.User{}},
		&fakeLotRepo{lots: map[int64]*entity.Lot{}}, &fakeSettingRepo{values: map[string]string{}}, &fakePublisher{})

	err := uc.SetUserBanned(context.Background(), 99, true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SaveSettings
// ──────────────────────────────────────────────────────────────────────────────

// Solo las claves cuyo valor cambia se escriben, y el evento lleva el diff.
func TestSaveSettings_SoloPublicaElDiff(t *testing.T) {
	settings := &fakeSettingRepo{values: map[string]string{
		"welcome_text": "hola",
		"max_lots":     "10",
	}}
	pub := &fakePublisher{}
	uc := buildModeration(&fakeUserRepo{users: map[int64]*entity.User{}},
		&fakeLotRepo{lots: map[int64]*entity.Lot{}}, settings, pub)

	changed, err := uc.SaveSettings(context.Background(), map[string]string{
		"welcome_text": "hola",   // sin cambio
		"max_lots":     "20",     // cambia
		"support_user": "@soporte", // clave nueva
	})
	require.NoError(t, err)

	assert.Len(t, changed, 2)
	assert.Equal(t, "20", changed["max_lots"])
	assert.Equal(t, "@soporte", changed["support_user"])
	assert.Equal(t, []string{entity.EventSettingsChanged}, pub.published)
	assert.Equal(t, "20", settings.values["max_lots"])
}

// Sin cambios no se publica evento.
func TestSaveSettings_SinCambiosSinEvento(t *testing.T) {
	settings := &fakeSettingRepo{values: map[string]string{"welcome_text": "hola"}}
	pub := &fakePublisher{}
	uc := buildModeration(&fakeUserRepo{users: map[int64]*entity.User{}},
		&fakeLotRepo{lots: map[int64]*entity.Lot{}}, settings, pub)

	changed, err := uc.SaveSettings(context.Background(), map[string]string{"welcome_text": "hola"})
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Empty(t, pub.published)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SetLotStatus
// ──────────────────────────────────────────────────────────────────────────────

// El panel puede cambiar el estado de cualquier lote y publica el evento.
func TestSetLotStatus_PanelCambiaYPublica(t *testing.T) {
	lots := &fakeLotRepo{lots: map[int64]*entity.Lot{
		5: {ID: 5, OwnerUserID: 1, Status: entity.LotStatusActive},
	}}
	users := &fakeUserRepo{users: map[int64]*entity.User{
		1: {ID: 1, TelegramID: 100},
	}}
	pub := &fakePublisher{}
	uc := buildModeration(users, lots, &fakeSettingRepo{values: map[string]string{}}, pub)

	require.NoError(t, uc.SetLotStatus(context.Background(), 5, entity.LotStatusInactive))
	assert.Equal(t, []string{entity.EventLotStatusChanged}, pub.published)
}

// Un estado desconocido se rechaza.
func TestSetLotStatus_EstadoInvalido(t *testing.T) {
	uc := buildModeration(&fakeUserRepo{users: map[int64]*entity.User{}},
		&fakeLotRepo{lots: map[int64]*entity.Lot{}}, &fakeSettingRepo{values: map[string]string{}}, &fakePublisher{})

	err := uc.SetLotStatus(context.Background(), 5, "vendidisimo")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
