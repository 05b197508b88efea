package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain"
)

// UserHandler gestión de usuarios del bot desde el panel.
type UserHandler struct {
	uc *usecase.ModerationUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.ModerationUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List busca usuarios; ?q= admite texto con acentos.
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	query := normalizeQuery(c.Query("q"))

	users, err := h.uc.SearchUsers(c.Context(), query, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *dto.ToUserResponse(u))
	}
	return c.JSON(dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetByID detalle de un usuario.
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	user, err := h.uc.GetUser(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToUserResponse(user))
}

// Ban banea un usuario y encola el evento para el bot.
func (h *UserHandler) Ban(c *fiber.Ctx) error {
	return h.setBanned(c, true)
}

// Unban desbanea un usuario y encola el evento para el bot.
func (h *UserHandler) Unban(c *fiber.Ctx) error {
	return h.setBanned(c, false)
}

func (h *UserHandler) setBanned(c *fiber.Ctx, banned bool) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	if err := h.uc.SetUserBanned(c.Context(), id, banned); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true, "banned": banned})
}

// ExportCSV exporta los usuarios que cumplen la búsqueda como CSV.
func (h *UserHandler) ExportCSV(c *fiber.Ctx) error {
	query := normalizeQuery(c.Query("q"))
	// Exportación acotada: el panel no maneja más de 10k filas por archivo.
	users, err := h.uc.SearchUsers(c.Context(), query, 10000, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"id", "telegram_id", "anonymous_id", "role", "region", "phone", "company", "plan", "is_banned", "created_at"})
	for _, u := range users {
		_ = w.Write([]string{
			strconv.FormatInt(u.ID, 10),
			strconv.FormatInt(u.TelegramID, 10),
			u.AnonymousID(),
			u.Role,
			u.Region,
			u.Phone,
			u.Company,
			u.Plan,
			fmt.Sprintf("%t", u.IsBanned),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="usuarios.csv"`)
	return c.SendString(sb.String())
}
