package usecase

import (
	"context"
	"time"

	"github.com/agrolink/agromercado/internal/application/ports"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
	"github.com/agrolink/agromercado/pkg/logger"
)

// BroadcastUseCase difusiones masivas: el panel las crea y arranca, el bot
// las ejecuta en páginas con límite de velocidad. El progreso se persiste
// por página (cursor last_user_id) para reanudar tras un reinicio.
type BroadcastUseCase struct {
	broadcasts repository.BroadcastRepository
	users      repository.UserRepository
}

// NewBroadcastUseCase construye el caso de uso.
func NewBroadcastUseCase(broadcasts repository.BroadcastRepository, users repository.UserRepository) *BroadcastUseCase {
	return &BroadcastUseCase{broadcasts: broadcasts, users: users}
}

// Create registra una difusión en borrador.
func (uc *BroadcastUseCase) Create(ctx context.Context, content string) (*entity.Broadcast, error) {
	if content == "" {
		return nil, domain.ErrValidation
	}
	total, _, err := uc.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	b := &entity.Broadcast{
		Content:    content,
		Status:     entity.BroadcastStatusDraft,
		TotalUsers: total,
	}
	if err := uc.broadcasts.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Start pasa una difusión draft a running para que el bot la tome.
func (uc *BroadcastUseCase) Start(ctx context.Context, id int64) error {
	b, err := uc.broadcasts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrNotFound
	}
	if b.Status != entity.BroadcastStatusDraft {
		return domain.ErrConflict
	}
	return uc.broadcasts.SetStatus(ctx, id, entity.BroadcastStatusRunning)
}

// Cancel detiene una difusión draft o running.
func (uc *BroadcastUseCase) Cancel(ctx context.Context, id int64) error {
	b, err := uc.broadcasts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrNotFound
	}
	if b.Status != entity.BroadcastStatusDraft && b.Status != entity.BroadcastStatusRunning {
		return domain.ErrConflict
	}
	return uc.broadcasts.SetStatus(ctx, id, entity.BroadcastStatusCancelled)
}

// Get devuelve una difusión por ID.
func (uc *BroadcastUseCase) Get(ctx context.Context, id int64) (*entity.Broadcast, error) {
	b, err := uc.broadcasts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// List lista difusiones paginadas.
func (uc *BroadcastUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Broadcast, error) {
	return uc.broadcasts.List(ctx, limit, offset)
}

// BroadcastRunner lado del bot: toma la difusión running más antigua y la
// ejecuta página a página respetando el límite de mensajes por segundo.
type BroadcastRunner struct {
	broadcasts repository.BroadcastRepository
	users      repository.UserRepository
	messenger  ports.Messenger
	rate       int // mensajes por segundo
	batch      int // destinatarios por página
	log        *logger.Logger
}

// NewBroadcastRunner construye el ejecutor de difusiones.
func NewBroadcastRunner(
	broadcasts repository.BroadcastRepository,
	users repository.UserRepository,
	messenger ports.Messenger,
	rate, batch int,
	log *logger.Logger,
) *BroadcastRunner {
	if rate <= 0 {
		rate = 20
	}
	if batch <= 0 {
		batch = 100
	}
	return &BroadcastRunner{
		broadcasts: broadcasts, users: users, messenger: messenger,
		rate: rate, batch: batch, log: log,
	}
}

// Run busca trabajo cada intervalo hasta que el contexto se cancele.
func (r *BroadcastRunner) Run(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		if err := r.RunOnce(ctx); err != nil {
			r.log.Error().Err(err).Msg("broadcast: error ejecutando difusión")
		}
	}
}

// RunOnce procesa una página de la difusión running más antigua, si la hay.
// El cursor avanza solo después de persistir el progreso: un reinicio a mitad
// de página puede repetir como mucho una página de envíos.
func (r *BroadcastRunner) RunOnce(ctx context.Context) error {
	b, err := r.broadcasts.NextRunning(ctx)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}
	if b.StartedAt == nil {
		now := time.Now()
		b.StartedAt = &now
	}

	targets, err := r.users.ListBroadcastTargets(ctx, b.LastUserID, r.batch)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		now := time.Now()
		b.Status = entity.BroadcastStatusDone
		b.CompletedAt = &now
		r.log.Info().Int64("broadcast_id", b.ID).Int("sent", b.SentCount).
			Int("failed", b.FailedCount).Msg("broadcast: difusión completada")
		return r.broadcasts.UpdateProgress(ctx, b)
	}

	pause := time.Second / time.Duration(r.rate)
	for _, t := range targets {
		select {
		case <-ctx.Done():
			return r.broadcasts.UpdateProgress(ctx, b)
		default:
		}
		if err := r.messenger.SendMessage(ctx, t.TelegramID, b.Content); err != nil {
			b.FailedCount++
		} else {
			b.SentCount++
		}
		b.LastUserID = t.UserID
		time.Sleep(pause)
	}
	return r.broadcasts.UpdateProgress(ctx, b)
}
