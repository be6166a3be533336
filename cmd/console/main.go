package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/audit"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/backend"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/report"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/snapshot"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/transport"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/upload"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/handlers"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
	"github.com/MuhamadAgungGumelar/agent-console/internal/shared/config"
	"github.com/MuhamadAgungGumelar/agent-console/internal/shared/database"
	"github.com/MuhamadAgungGumelar/agent-console/internal/shared/utils"
)

// @title Agent Console API
// @version 1.0
// @description Local API of the WhatsApp support agent console
// @host localhost:8081
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()

	// Init logger
	utils.InitLogger(cfg.LogLevel, !cfg.IsProduction())
	log.Info().Str("env", cfg.Env).Str("backend", cfg.BackendURL).Msg("🚀 Starting agent-console")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init database (conversation snapshots and export history)
	db, err := database.NewDB(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	snapshots := snapshot.NewStore(db.GORM)
	if err := snapshots.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate snapshot tables")
	}
	history := audit.NewService(db.GORM)
	if err := history.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate audit log")
	}

	// Init backend client
	tc := transport.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	client := backend.NewClient(tc)

	// Init reports
	reports := report.NewService(client, export.NewService())

	consoleService := services.NewConsoleService(client, reports, snapshots, history, services.Options{
		ConversationPollInterval: cfg.ConversationPollInterval,
		MessagePollInterval:      cfg.MessagePollInterval,
		AutomationPollInterval:   cfg.AutomationPollInterval,
		AutomationSuppressWindow: cfg.AutomationSuppressWindow,
		SearchDebounce:           cfg.SearchDebounce,
	})

	// Scheduled report export
	scheduler := report.NewScheduler()
	if cfg.ReportSchedule != "" {
		if err := scheduleDailyExport(ctx, cfg, client, reports, snapshots, scheduler); err != nil {
			log.Error().Err(err).Msg("Scheduled report export disabled")
		}
	}
	scheduler.Start()

	consoleService.Start(ctx)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Agent Console",
	})

	// Middleware
	app.Use(cors.New())

	handlers.Register(app, consoleService)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("✅ agent-console running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
	consoleService.Stop()
	cancel()
	log.Info().Msg("Goodbye 👋")
}

func scheduleDailyExport(ctx context.Context, cfg *config.Config, client *backend.Client, reports *report.Service, snapshots *snapshot.Store, scheduler *report.Scheduler) error {
	format, err := export.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return err
	}

	storage, err := upload.NewProvider(ctx, upload.Settings{
		Storage:         cfg.ReportStorage,
		LocalDir:        cfg.ReportDir,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		Prefix:          "reports",
	})
	if err != nil {
		return err
	}

	daily := report.NewDailyExport(client, reports, storage, snapshots, format, 0)
	if err := scheduler.Add("daily-report", cfg.ReportSchedule, daily.Job(ctx)); err != nil {
		return err
	}

	log.Info().
		Str("schedule", cfg.ReportSchedule).
		Str("format", string(format)).
		Str("storage", storage.GetProviderName()).
		Msg("📅 Daily report export scheduled")
	return nil
}
