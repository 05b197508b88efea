package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolink/agromercado/internal/domain/entity"
	syncpkg "github.com/agrolink/agromercado/internal/sync"
	"github.com/agrolink/agromercado/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeEventRepo log de eventos en memoria con la misma semántica que el real:
// seq asignado en orden de inserción, MarkProcessed idempotente.
type fakeEventRepo struct {
	events    []*entity.SyncEvent
	nextSeq   int64
	appendErr error
	listErr   error
	markErr   error
}

func (f *fakeEventRepo) Append(_ context.Context, ev *entity.SyncEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextSeq++
	ev.Seq = f.nextSeq
	ev.CreatedAt = time.Now()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEventRepo) ListUnprocessed(_ context.Context) ([]*entity.SyncEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entity.SyncEvent
	for _, ev := range f.events {
		if !ev.Processed {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, ev := range f.events {
		if ev.ID == id {
			ev.Processed = true
		}
	}
	return nil
}

func (f *fakeEventRepo) CountProcessed(_ context.Context) (int, error) {
	n := 0
	for _, ev := range f.events {
		if ev.Processed {
			n++
		}
	}
	return n, nil
}

// recordingHandler registra las llamadas recibidas en orden.
type recordingHandler struct {
	calls   []string
	banned  []int64
	failOn  string
	changed map[string]string
}

func (h *recordingHandler) HandleUserBanned(_ context.Context, telegramID int64) error {
	h.calls = append(h.calls, "banned")
	h.banned = append(h.banned, telegramID)
	if h.failOn == "banned" {
		return errors.New("telegram caído")
	}
	return nil
}

func (h *recordingHandler) HandleUserUnbanned(_ context.Context, telegramID int64) error {
	h.calls = append(h.calls, "unbanned")
	return nil
}

func (h *recordingHandler) HandleLotStatusChanged(_ context.Context, lotID int64, newStatus string, ownerTelegramID int64) error {
	h.calls = append(h.calls, "lot_status")
	return nil
}

func (h *recordingHandler) HandleSettingsChanged(_ context.Context, changed map[string]string) error {
	h.calls = append(h.calls, "settings")
	h.changed = changed
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Notifier
// ──────────────────────────────────────────────────────────────────────────────

// Publish debe persistir antes de retornar y asignar un ULID único por evento.
func TestNotifier_PublishDurableYConID(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)

	id1, err := n.UserBanned(context.Background(), 111)
	require.NoError(t, err)
	id2, err := n.UserUnbanned(context.Background(), 111)
	require.NoError(t, err)

	require.Len(t, repo.events, 2)
	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2, "cada evento debe tener su propio ULID")
	assert.Equal(t, entity.EventUserBanned, repo.events[0].EventType)
	assert.EqualValues(t, 111, repo.events[0].Payload["telegram_id"])
}

// Si la escritura falla, Publish propaga el error al llamador.
func TestNotifier_PublishPropagaErrorDeEscritura(t *testing.T) {
	repo := &fakeEventRepo{appendErr: errors.New("db caída")}
	n := syncpkg.NewNotifier(repo)

	_, err := n.UserBanned(context.Background(), 111)
	require.Error(t, err)
	assert.Empty(t, repo.events)
}

// LotStatusChanged debe incluir los tres campos del payload.
func TestNotifier_LotStatusChangedPayload(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)

	_, err := n.LotStatusChanged(context.Background(), 42, "inactive", 999)
	require.NoError(t, err)

	p := repo.events[0].Payload
	assert.EqualValues(t, 42, p["lot_id"])
	assert.Equal(t, "inactive", p["new_status"])
	assert.EqualValues(t, 999, p["owner_telegram_id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Poller
// ──────────────────────────────────────────────────────────────────────────────

// DrainOnce debe despachar en orden de inserción y marcar todo procesado.
func TestPoller_DrainaEnOrdenYMarcaProcesado(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)
	_, _ = n.UserBanned(context.Background(), 1)
	_, _ = n.LotStatusChanged(context.Background(), 5, "inactive", 1)
	_, _ = n.UserUnbanned(context.Background(), 1)

	h := &recordingHandler{}
	p := syncpkg.NewPoller(repo, h, time.Second, logger.Nop())

	require.NoError(t, p.DrainOnce(context.Background()))

	assert.Equal(t, []string{"banned", "lot_status", "unbanned"}, h.calls)
	processed, _ := repo.CountProcessed(context.Background())
	assert.Equal(t, 3, processed)
}

// Un fallo de entrega no bloquea el log: el evento se marca procesado igual
// y los siguientes se despachan.
func TestPoller_EntregaFallidaMarcaProcesadoIgual(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)
	_, _ = n.UserBanned(context.Background(), 1)
	_, _ = n.UserUnbanned(context.Background(), 1)

	h := &recordingHandler{failOn: "banned"}
	p := syncpkg.NewPoller(repo, h, time.Second, logger.Nop())

	require.NoError(t, p.DrainOnce(context.Background()))

	assert.Equal(t, []string{"banned", "unbanned"}, h.calls)
	processed, _ := repo.CountProcessed(context.Background())
	assert.Equal(t, 2, processed, "el evento fallido también queda procesado")
}

// Un segundo drain no debe redespachar eventos ya procesados.
func TestPoller_DrainIdempotenteEntreCiclos(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)
	_, _ = n.UserBanned(context.Background(), 1)

	h := &recordingHandler{}
	p := syncpkg.NewPoller(repo, h, time.Second, logger.Nop())

	require.NoError(t, p.DrainOnce(context.Background()))
	require.NoError(t, p.DrainOnce(context.Background()))

	assert.Len(t, h.calls, 1, "cada evento se entrega una sola vez")
}

// Un tipo desconocido se ignora sin error y se marca procesado.
func TestPoller_TipoDesconocidoSeIgnora(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)
	_, err := n.Publish(context.Background(), "algo_nuevo", map[string]any{"x": 1})
	require.NoError(t, err)

	h := &recordingHandler{}
	p := syncpkg.NewPoller(repo, h, time.Second, logger.Nop())

	require.NoError(t, p.DrainOnce(context.Background()))

	assert.Empty(t, h.calls)
	processed, _ := repo.CountProcessed(context.Background())
	assert.Equal(t, 1, processed)
}

// settings_changed debe llegar al handler como mapa clave/valor plano.
func TestPoller_SettingsChangedDeserializaMapa(t *testing.T) {
	repo := &fakeEventRepo{}
	n := syncpkg.NewNotifier(repo)
	_, err := n.SettingsChanged(context.Background(), map[string]string{"welcome_text": "hola"})
	require.NoError(t, err)

	h := &recordingHandler{}
	p := syncpkg.NewPoller(repo, h, time.Second, logger.Nop())
	require.NoError(t, p.DrainOnce(context.Background()))

	require.Equal(t, []string{"settings"}, h.calls)
	assert.Equal(t, "hola", h.changed["welcome_text"])
}

// Si listar falla, DrainOnce devuelve el error para que Run aplique backoff.
func TestPoller_ErrorDeListaSePropaga(t *testing.T) {
	repo := &fakeEventRepo{listErr: errors.New("db caída")}
	p := syncpkg.NewPoller(repo, &recordingHandler{}, time.Second, logger.Nop())

	err := p.DrainOnce(context.Background())
	require.Error(t, err)
}
