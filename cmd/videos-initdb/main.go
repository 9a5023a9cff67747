// Command videos-initdb creates the videos table once, outside request handling.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/princekumarofficial/videos-service/internal/config"
	"github.com/princekumarofficial/videos-service/internal/logger"
	"github.com/princekumarofficial/videos-service/internal/storage/backend"
)

type SchemaInitializer struct {
	storage backend.Backend
	timeout time.Duration
	logger  *slog.Logger
}

func NewSchemaInitializer(storage backend.Backend, timeout time.Duration, logger *slog.Logger) *SchemaInitializer {
	return &SchemaInitializer{
		storage: storage,
		timeout: timeout,
		logger:  logger,
	}
}

func (si *SchemaInitializer) Run(ctx context.Context) error {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, si.timeout)
	defer cancel()

	si.logger.Info("Creating videos schema")

	if err := si.storage.CreateSchema(ctx); err != nil {
		si.logger.Error("Failed to create schema",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return err
	}

	duration := time.Since(startTime)

	si.logger.Info("Schema ready",
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())

	return nil
}

func main() {
	// Load config
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	storage, err := backend.Open(cfg.Storage, cfg.PGSQL)
	if err != nil {
		log.Error("Failed to initialize database", "error", err.Error())
		os.Exit(1)
	}
	defer storage.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewSchemaInitializer(storage, 30*time.Second, log).Run(ctx); err != nil {
		storage.Close()
		os.Exit(1)
	}
}
