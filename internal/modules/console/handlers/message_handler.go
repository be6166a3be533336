package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type MessageHandler struct {
	console *services.ConsoleService
}

func NewMessageHandler(console *services.ConsoleService) *MessageHandler {
	return &MessageHandler{console: console}
}

// ListMessages godoc
// @Summary Messages of the open conversation
// @Tags Messages
// @Produce json
// @Success 200 {object} services.MessagesView
// @Router /messages [get]
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	return c.JSON(h.console.Messages())
}

// SendMessageRequest is a human-authored reply
type SendMessageRequest struct {
	Content string `json:"content" example:"Hola, ¿en qué puedo ayudarte?"`
}

// SendMessage godoc
// @Summary Send a message to the open conversation
// @Tags Messages
// @Accept json
// @Produce json
// @Param data body SendMessageRequest true "content"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	msg, err := h.console.SendMessage(c.UserContext(), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// SendAIMessageRequest asks the backend to write the reply
type SendAIMessageRequest struct {
	Prompt  string `json:"prompt" example:"Ofrece el descuento de temporada"`
	Context string `json:"context" example:"El cliente preguntó por precios"`
}

// SendAIMessage godoc
// @Summary Send an AI-generated message to the open conversation
// @Tags Messages
// @Accept json
// @Produce json
// @Param data body SendAIMessageRequest true "prompt and context"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /messages/ai [post]
func (h *MessageHandler) SendAIMessage(c *fiber.Ctx) error {
	var req SendAIMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	msg, err := h.console.SendAssistedMessage(c.UserContext(), req.Prompt, req.Context)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
