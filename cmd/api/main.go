package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/werkudara-eng/event-campaigns/internal/config"
	"github.com/werkudara-eng/event-campaigns/internal/db"
	"github.com/werkudara-eng/event-campaigns/internal/handler"
	"github.com/werkudara-eng/event-campaigns/internal/queue"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
	"github.com/werkudara-eng/event-campaigns/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting event-campaigns API server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := db.New(cfg.DSN())
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	queueClient, err := queue.NewRedisClient(queue.RedisConfig{
		URL:       cfg.RedisURL,
		QueueName: cfg.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer queueClient.Close()

	logger.Info("connected to Redis queue")

	// Repositories
	eventRepo := repository.NewEventRepository(database.DB)
	participantRepo := repository.NewParticipantRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)
	campaignRepo := repository.NewCampaignRepository(database.DB)
	deliveryRepo := repository.NewDeliveryRepository(database.DB)

	// Services
	eventSvc := service.NewEventService(eventRepo, logger)
	participantSvc := service.NewParticipantService(participantRepo, eventRepo, logger)
	templateSvc := service.NewTemplateService(templateRepo, eventRepo, logger)
	campaignSvc := service.NewCampaignService(
		campaignRepo,
		participantRepo,
		templateRepo,
		eventRepo,
		deliveryRepo,
		queueClient,
		logger,
	)

	// Handlers
	eventHandler := handler.NewEventHandler(eventSvc, logger)
	participantHandler := handler.NewParticipantHandler(participantSvc, logger)
	templateHandler := handler.NewTemplateHandler(templateSvc, logger)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, logger)
	healthHandler := handler.NewHealthHandler(database, queueClient, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(handler.LoggingMiddleware(logger))
	r.Use(handler.CORSMiddleware())

	r.Get("/health", healthHandler.Health)
	eventHandler.Routes(r)
	participantHandler.Routes(r)
	templateHandler.Routes(r)
	campaignHandler.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
