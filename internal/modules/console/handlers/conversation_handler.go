package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type ConversationHandler struct {
	console *services.ConsoleService
}

func NewConversationHandler(console *services.ConsoleService) *ConversationHandler {
	return &ConversationHandler{console: console}
}

// ListConversations godoc
// @Summary List conversations
// @Description Returns the cached conversation list. refresh=true fetches from the backend first.
// @Tags Conversations
// @Produce json
// @Param refresh query bool false "Refresh before answering"
// @Success 200 {object} services.ConversationsView
// @Router /conversations [get]
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		// failure is reported in the view's error field
		_ = h.console.RefreshConversations(c.UserContext())
	}
	return c.JSON(h.console.Conversations())
}

// SetFilter godoc
// @Summary Change the conversation filter
// @Tags Conversations
// @Accept json
// @Produce json
// @Param filter body models.ConversationFilter true "status and search"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /conversations/filter [put]
func (h *ConversationHandler) SetFilter(c *fiber.Ctx) error {
	var filter models.ConversationFilter
	if err := c.BodyParser(&filter); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.console.SetFilter(filter); err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "refresh scheduled",
	})
}

// SelectConversation godoc
// @Summary Open a conversation
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.Conversation
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/select [post]
func (h *ConversationHandler) SelectConversation(c *fiber.Ctx) error {
	conv, err := h.console.SelectConversation(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// GetSelected godoc
// @Summary The open conversation
// @Tags Conversations
// @Produce json
// @Success 200 {object} models.Conversation
// @Failure 404 {object} map[string]string
// @Router /conversations/selected [get]
func (h *ConversationHandler) GetSelected(c *fiber.Ctx) error {
	conv, ok := h.console.SelectedConversation()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no conversation selected",
		})
	}
	return c.JSON(conv)
}

// ClearSelected godoc
// @Summary Close the open conversation
// @Tags Conversations
// @Success 204
// @Router /conversations/selected [delete]
func (h *ConversationHandler) ClearSelected(c *fiber.Ctx) error {
	h.console.ClearSelection()
	return c.SendStatus(fiber.StatusNoContent)
}

// AutomationRequest switches an automated agent on or off
type AutomationRequest struct {
	Enabled *bool `json:"enabled" example:"false"`
}

// SetConversationAutomation godoc
// @Summary Toggle the automated agent of one conversation
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param data body AutomationRequest true "enabled"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]interface{}
// @Router /conversations/{id}/automation [post]
func (h *ConversationHandler) SetConversationAutomation(c *fiber.Ctx) error {
	var req AutomationRequest
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return badRequest(c, "enabled is required")
	}

	id := c.Params("id")
	ok, err := h.console.SetConversationAutomation(c.UserContext(), id, *req.Enabled)
	if err != nil {
		return respondError(c, err)
	}

	conv, _ := h.console.Conversation(id)
	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"success":         ok,
		"conversation_id": id,
		"ai_active":       conv.AIActive,
	})
}
