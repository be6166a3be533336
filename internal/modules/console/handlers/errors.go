package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/kb"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/message"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/optimistic"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/report"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/transport"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

// statusFor maps sync-layer failures onto console API status codes
func statusFor(err error) int {
	var (
		remote  *transport.RemoteError
		network *transport.NetworkError
		invalid *transport.InvalidResponseError
	)

	switch {
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, kb.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, message.ErrNoSelection),
		errors.Is(err, report.ErrNoReport):
		return fiber.StatusConflict
	case errors.Is(err, message.ErrEmptyMessage):
		return fiber.StatusBadRequest
	case transport.IsTimeout(err):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &remote),
		errors.As(err, &network),
		errors.As(err, &invalid),
		errors.Is(err, optimistic.ErrRejected):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
