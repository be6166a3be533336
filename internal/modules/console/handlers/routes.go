package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

// Register mounts every console route on app
func Register(app *fiber.App, console *services.ConsoleService) {
	healthHandler := NewHealthHandler(console)
	conversationHandler := NewConversationHandler(console)
	messageHandler := NewMessageHandler(console)
	automationHandler := NewAutomationHandler(console)
	kbHandler := NewKBHandler(console)
	reportHandler := NewReportHandler(console)
	historyHandler := NewHistoryHandler(console)

	// Health check
	app.Get("/health", healthHandler.GetHealth)
	app.Get("/stats", healthHandler.GetStatus)

	// Conversation routes
	app.Get("/conversations", conversationHandler.ListConversations)
	app.Put("/conversations/filter", conversationHandler.SetFilter)
	app.Get("/conversations/selected", conversationHandler.GetSelected)
	app.Delete("/conversations/selected", conversationHandler.ClearSelected)
	app.Post("/conversations/:id/select", conversationHandler.SelectConversation)
	app.Post("/conversations/:id/automation", conversationHandler.SetConversationAutomation)

	// Message routes
	app.Get("/messages", messageHandler.ListMessages)
	app.Post("/messages", messageHandler.SendMessage)
	app.Post("/messages/ai", messageHandler.SendAIMessage)

	// Automation routes
	app.Get("/automation", automationHandler.GetAutomation)
	app.Post("/automation", automationHandler.ToggleAutomation)

	// Knowledge Base routes
	app.Get("/knowledge-base", kbHandler.ListEntries)
	app.Post("/knowledge-base", kbHandler.CreateEntry)
	app.Put("/knowledge-base/:id", kbHandler.UpdateEntry)
	app.Delete("/knowledge-base/:id", kbHandler.DeleteEntry)

	// Report routes
	app.Get("/reports", reportHandler.GetReport)
	app.Delete("/reports", reportHandler.ClearReport)
	app.Get("/reports/export", reportHandler.ExportReport)
	app.Get("/reports/exports", reportHandler.ListExports)
	app.Get("/reports/chart", reportHandler.GetChart)

	// Agent action history
	app.Get("/history", historyHandler.ListHistory)
}
