package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"jira-dashboard/internal/api"
	"jira-dashboard/internal/config"
	"jira-dashboard/internal/kafka"
	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/notification"
	"jira-dashboard/internal/providers"
	"jira-dashboard/internal/sheets"
	"jira-dashboard/internal/workload"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Sheet reader client
	reader := sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.Timeout, cfg.Sheets.RetryAttempts, logger)

	// Notification service
	settings := models.DefaultNotificationSettings()
	settings.WarningThreshold = cfg.Notification.WarningThreshold
	settings.DangerThreshold = cfg.Notification.DangerThreshold
	settings.CooldownMinutes = cfg.Notification.CooldownMinutes

	hub := notification.NewHub(logger)
	store := notification.NewStore()
	notifications := notification.New(reader, store, hub, logger, settings)

	if cfg.Email.SMTPServer != "" {
		notifications.RegisterChannel("email", func(ctx context.Context, alert models.NotificationAlert) error {
			return providers.SendEmail(ctx, alert, cfg)
		})
	}
	if cfg.Telegram.BotToken != "" {
		notifications.RegisterChannel("telegram", func(ctx context.Context, alert models.NotificationAlert) error {
			return providers.SendTelegram(ctx, alert, cfg, logger)
		})
	}

	// Workload service
	workloads := workload.NewService(reader, logger, cfg.Workload.ImbalanceThreshold, cfg.Workload.TaskPageSize)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Kafka consumer (optional)
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(cfg, notifications, workloads, logger)
		consumer.Start(ctx, &wg)
	}

	// Start API server
	h := api.NewHandler(notifications, workloads, hub, logger)
	r := api.NewRouter(h, logger, cfg.API.BasePath)
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := r.Run(cfg.API.Port); err != nil {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	if consumer != nil {
		consumer.Close()
	}
	wg.Wait()
	logger.Infof("Service stopped")
}
