package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/agrolink/agromercado/internal/application/auth"
	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/infrastructure/postgres"
	httpRouter "github.com/agrolink/agromercado/internal/interfaces/http"
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
		Msg("iniciando panel de administración")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	syncEventRepo := postgres.NewSyncEventRepository(pool)
	webAdminRepo := postgres.NewWebAdminRepository(pool)
	broadcastRepo := postgres.NewBroadcastRepository(pool)

	notifier := sync.NewNotifier(syncEventRepo)

	marketUC := usecase.NewMarketUseCase(lotRepo)
	moderationUC := usecase.NewModerationUseCase(
		userRepo, lotRepo, offerRepo, settingRepo, syncEventRepo, notifier,
	)
	broadcastUC := usecase.NewBroadcastUseCase(broadcastRepo, userRepo)
	authUC := auth.NewAuthUseCase(webAdminRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if err := authUC.Bootstrap(ctx, cfg.Admin.BootstrapUser, cfg.Admin.BootstrapPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap del admin inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ModerationUC: moderationUC,
		MarketUC:     marketUC,
		BroadcastUC:  broadcastUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("panel detenido")
}
