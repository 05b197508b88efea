package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/infrastructure/postgres"
	"github.com/agrolink/agromercado/internal/infrastructure/telegram"
	botiface "github.com/agrolink/agromercado/internal/interfaces/bot"
	"github.com/agrolink/agromercado/internal/sync"
	"github.com/agrolink/agromercado/pkg/config"
	"github.com/agrolink/agromercado/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando bot de Telegram")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	tb, err := botiface.NewTelebot(cfg.Bot.Token, cfg.Bot.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión con la API de Telegram")
	}
	messenger := telegram.NewMessenger(tb)

	userRepo := postgres.NewUserRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	chatRepo := postgres.NewChatRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	shipmentRepo := postgres.NewShipmentRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	syncEventRepo := postgres.NewSyncEventRepository(pool)
	broadcastRepo := postgres.NewBroadcastRepository(pool)

	userUC := usecase.NewUserUseCase(userRepo)
	marketUC := usecase.NewMarketUseCase(lotRepo)
	negotiationUC := usecase.NewNegotiationUseCase(offerRepo, lotRepo, userRepo, messenger)
	chatUC := usecase.NewChatUseCase(chatRepo, contactRepo, userRepo, messenger)
	logisticsUC := usecase.NewLogisticsUseCase(vehicleRepo, shipmentRepo)

	sessions := botiface.NewSessionStore(cfg.Bot.SessionTTL)
	go sessions.Janitor(ctx, cfg.Bot.SessionTTL)

	b := botiface.New(tb, botiface.Deps{
		Users:       userUC,
		Market:      marketUC,
		Negotiation: negotiationUC,
		Chat:        chatUC,
		Logistics:   logisticsUC,
		Settings:    settingRepo,
		Sessions:    sessions,
		Log:         log,
	})

	// Eventos del panel: baneos, cambios de estado y configuración.
	syncHandler := botiface.NewSyncHandler(messenger, log)
	poller := sync.NewPoller(syncEventRepo, syncHandler, cfg.Sync.PollInterval, log)
	go poller.Run(ctx)

	// Difusiones running creadas desde el panel.
	runner := usecase.NewBroadcastRunner(
		broadcastRepo, userRepo, messenger,
		cfg.Bot.BroadcastRate, cfg.Bot.BroadcastBatch, log,
	)
	go runner.Run(ctx, cfg.Sync.PollInterval)

	log.Info().Msg("bot escuchando updates")
	b.Start(ctx)

	log.Info().Msg("bot detenido")
}
