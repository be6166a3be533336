package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type AutomationHandler struct {
	console *services.ConsoleService
}

func NewAutomationHandler(console *services.ConsoleService) *AutomationHandler {
	return &AutomationHandler{console: console}
}

// GetAutomation godoc
// @Summary Global auto-response switch
// @Tags Automation
// @Produce json
// @Success 200 {object} services.AutomationView
// @Router /automation [get]
func (h *AutomationHandler) GetAutomation(c *fiber.Ctx) error {
	return c.JSON(h.console.Automation())
}

// ToggleAutomation godoc
// @Summary Switch the global auto-response
// @Tags Automation
// @Accept json
// @Produce json
// @Param data body AutomationRequest true "enabled"
// @Success 200 {object} services.AutomationView
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /automation [post]
func (h *AutomationHandler) ToggleAutomation(c *fiber.Ctx) error {
	var req AutomationRequest
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return badRequest(c, "enabled is required")
	}

	if _, err := h.console.ToggleAutomation(c.UserContext(), *req.Enabled); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.console.Automation())
}
