package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type KBHandler struct {
	console *services.ConsoleService
}

func NewKBHandler(console *services.ConsoleService) *KBHandler {
	return &KBHandler{console: console}
}

// KnowledgeBaseRequest is the editable part of an entry
type KnowledgeBaseRequest struct {
	KeyQuestion string   `json:"key_question" example:"¿Cuál es el horario de atención?"`
	Answer      string   `json:"answer" example:"Lunes a viernes de 8am a 6pm"`
	Active      *bool    `json:"active,omitempty"`
	Tags        []string `json:"tags,omitempty" example:"horario,atencion"`
}

func (r KnowledgeBaseRequest) entry() models.KnowledgeBaseEntry {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.KnowledgeBaseEntry{
		KeyQuestion: r.KeyQuestion,
		Answer:      r.Answer,
		Active:      active,
		Tags:        r.Tags,
	}
}

// ListEntries godoc
// @Summary List or search knowledge base entries
// @Tags KnowledgeBase
// @Produce json
// @Param q query string false "Search term"
// @Param refresh query bool false "Reload from the backend first"
// @Success 200 {object} map[string]interface{}
// @Router /knowledge-base [get]
func (h *KBHandler) ListEntries(c *fiber.Ctx) error {
	store := h.console.KnowledgeBase()
	if c.QueryBool("refresh") {
		if err := store.Load(c.UserContext()); err != nil {
			return respondError(c, err)
		}
	}

	resp := fiber.Map{
		"entries": store.Search(c.Query("q")),
	}
	if err := store.Err(); err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}

// CreateEntry godoc
// @Summary Add a knowledge base entry
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Param data body KnowledgeBaseRequest true "entry"
// @Success 201 {object} models.KnowledgeBaseEntry
// @Failure 400 {object} map[string]string
// @Router /knowledge-base [post]
func (h *KBHandler) CreateEntry(c *fiber.Ctx) error {
	var req KnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.KeyQuestion == "" || req.Answer == "" {
		return badRequest(c, "key_question and answer are required")
	}

	entry, err := h.console.CreateKnowledgeEntry(c.UserContext(), req.entry())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateEntry godoc
// @Summary Replace a knowledge base entry
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param data body KnowledgeBaseRequest true "entry"
// @Success 200 {object} models.KnowledgeBaseEntry
// @Failure 400 {object} map[string]string
// @Router /knowledge-base/{id} [put]
func (h *KBHandler) UpdateEntry(c *fiber.Ctx) error {
	var req KnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.KeyQuestion == "" || req.Answer == "" {
		return badRequest(c, "key_question and answer are required")
	}

	entry, err := h.console.UpdateKnowledgeEntry(c.UserContext(), c.Params("id"), req.entry())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// DeleteEntry godoc
// @Summary Delete a knowledge base entry
// @Tags KnowledgeBase
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /knowledge-base/{id} [delete]
func (h *KBHandler) DeleteEntry(c *fiber.Ctx) error {
	if err := h.console.DeleteKnowledgeEntry(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
