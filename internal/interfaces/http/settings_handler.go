package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/application/usecase"
)

// SettingsHandler configuración del marketplace desde el panel.
type SettingsHandler struct {
	uc *usecase.ModerationUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *usecase.ModerationUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get devuelve toda la configuración.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	values, err := h.uc.AllSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.SettingsResponse{Values: values})
}

// Update aplica las claves enviadas y publica el diff para el bot.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.SettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Values) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "values no puede estar vacío"})
	}
	changed, err := h.uc.SaveSettings(c.Context(), in.Values)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true, "changed": changed})
}
