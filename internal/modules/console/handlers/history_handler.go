package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/audit"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type HistoryHandler struct {
	console *services.ConsoleService
}

func NewHistoryHandler(console *services.ConsoleService) *HistoryHandler {
	return &HistoryHandler{console: console}
}

// ListHistory godoc
// @Summary Agent actions taken through the console
// @Tags History
// @Produce json
// @Param action query string false "send_message, toggle_automation, ..."
// @Param entity query string false "conversation, automation, knowledge_base, report"
// @Param entity_id query string false "Conversation or entry ID"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {object} audit.Page
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	page, err := h.console.History(c.UserContext(), audit.Filter{
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 50),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
