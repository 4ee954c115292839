package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/werkudara-eng/event-campaigns/internal/config"
	"github.com/werkudara-eng/event-campaigns/internal/db"
	"github.com/werkudara-eng/event-campaigns/internal/dispatch"
	"github.com/werkudara-eng/event-campaigns/internal/mailer"
	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/queue"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting event-campaigns worker")

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
	campaignRepo := repository.NewCampaignRepository(database.DB)
	eventRepo := repository.NewEventRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)
	participantRepo := repository.NewParticipantRepository(database.DB)
	deliveryRepo := repository.NewDeliveryRepository(database.DB)

	m, err := buildMailer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var augmenter *dispatch.Augmenter
	if cfg.TrackingEnabled {
		augmenter = dispatch.NewAugmenter(cfg.TrackingBaseURL)
	}

	dispatcher := dispatch.NewDispatcher(
		campaignRepo,
		eventRepo,
		templateRepo,
		participantRepo,
		deliveryRepo,
		augmenter,
		m,
		dispatch.Options{
			SendDelay:       time.Duration(cfg.SendDelayMS) * time.Millisecond,
			TrackingEnabled: cfg.TrackingEnabled,
			FailOnAllFailed: cfg.FailOnAllFailed,
			FromName:        cfg.FromName,
			FromEmail:       cfg.FromEmail,
		},
		logger,
	)

	// Prometheus endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics server listening", slog.String("addr", cfg.MetricsAddr))
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErrors := make(chan error, 1)
	go func() {
		handler := func(ctx context.Context, job *models.CampaignJob) error {
			result, err := dispatcher.Run(ctx, job.CampaignID)
			if err != nil {
				return err
			}
			logger.Info("campaign dispatched",
				slog.String("campaign_id", result.CampaignID.String()),
				slog.String("status", result.Status),
				slog.Int("total", result.Total),
				slog.Int("sent", result.Sent),
				slog.Int("failed", result.Failed),
			)
			return nil
		}

		consumerErrors <- queueClient.Consume(ctx, handler, cfg.WorkerConcurrency)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && err != context.Canceled {
			logger.Error("consumer error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))

		cancel()

		// Give the consumer time to finish the current campaign
		time.Sleep(5 * time.Second)

		logger.Info("worker stopped gracefully")
	}
}

func buildMailer(cfg *config.Config, logger *slog.Logger) (mailer.Mailer, error) {
	if cfg.Mailer == "ses" {
		return mailer.NewSESMailer(mailer.SESConfig{
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Region:    cfg.AWSRegion,
		}, logger)
	}
	return mailer.NewMockMailer(0.95), nil
}
