package main

import (
	"log/slog"
	"os"

	"github.com/werkudara-eng/event-campaigns/internal/config"
	"github.com/werkudara-eng/event-campaigns/internal/db"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

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

	if err := database.Migrate(cfg.MigrationsDir); err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("migrations applied", slog.String("dir", cfg.MigrationsDir))
}
