package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrolink/agromercado/internal/application/auth"
	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// RouterDeps dependencias para el router del panel.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ModerationUC *usecase.ModerationUseCase
	MarketUC     *usecase.MarketUseCase
	BroadcastUC  *usecase.BroadcastUseCase
	JWTSecret    string
}

// Router registra las rutas de la API del panel.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.AdminRoleAdmin)
	anyStaff := RequireRole(entity.AdminRoleAdmin, entity.AdminRoleModerator)

	// Cuentas del panel (solo admin)
	protected.Post("/admins", adminOnly, authHandler.CreateAdmin)

	// Dashboard y estado de sincronización
	dashboardHandler := NewDashboardHandler(deps.ModerationUC)
	protected.Get("/dashboard", anyStaff, dashboardHandler.Dashboard)
	protected.Get("/sync/status", anyStaff, dashboardHandler.SyncStatus)

	// Usuarios del bot
	userHandler := NewUserHandler(deps.ModerationUC)
	users := protected.Group("/users", anyStaff)
	users.Get("/", userHandler.List)
	users.Get("/export", userHandler.ExportCSV)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/:id/ban", userHandler.Ban)
	users.Post("/:id/unban", userHandler.Unban)

	// Lotes
	lotHandler := NewLotHandler(deps.MarketUC, deps.ModerationUC)
	lots := protected.Group("/lots", anyStaff)
	lots.Get("/", lotHandler.List)
	lots.Get("/export", lotHandler.ExportCSV)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/offers", lotHandler.Offers)
	lots.Put("/:id/status", lotHandler.UpdateStatus)

	// Configuración (solo admin)
	settingsHandler := NewSettingsHandler(deps.ModerationUC)
	settings := protected.Group("/settings", adminOnly)
	settings.Get("/", settingsHandler.Get)
	settings.Put("/", settingsHandler.Update)

	// Difusiones (solo admin)
	broadcastHandler := NewBroadcastHandler(deps.BroadcastUC)
	broadcasts := protected.Group("/broadcasts", adminOnly)
	broadcasts.Post("/", broadcastHandler.Create)
	broadcasts.Get("/", broadcastHandler.List)
	broadcasts.Get("/:id", broadcastHandler.GetByID)
	broadcasts.Post("/:id/start", broadcastHandler.Start)
	broadcasts.Post("/:id/cancel", broadcastHandler.Cancel)
}
