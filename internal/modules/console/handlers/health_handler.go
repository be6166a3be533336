package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type HealthHandler struct {
	console *services.ConsoleService
}

func NewHealthHandler(console *services.ConsoleService) *HealthHandler {
	return &HealthHandler{console: console}
}

// GetHealth godoc
// @Summary Console health check
// @Description Check if the console API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "agent-console",
	})
}

// GetStatus godoc
// @Summary Backend status panel
// @Description Backend health, counters and the auto-response switch
// @Tags Health
// @Produce json
// @Success 200 {object} services.StatusPanel
// @Router /stats [get]
func (h *HealthHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.console.Status(c.UserContext()))
}
