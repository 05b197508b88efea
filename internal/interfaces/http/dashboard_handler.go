package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/application/usecase"
)

// DashboardHandler métricas y estado de sincronización del panel.
type DashboardHandler struct {
	uc *usecase.ModerationUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *usecase.ModerationUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Dashboard métricas agregadas.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// SyncStatus estado del log de eventos panel → bot.
func (h *DashboardHandler) SyncStatus(c *fiber.Ctx) error {
	out, err := h.uc.SyncStatus(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
