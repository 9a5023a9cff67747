package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/videos-service/internal/config"
	"github.com/princekumarofficial/videos-service/internal/events"
	"github.com/princekumarofficial/videos-service/internal/http/middleware"
	"github.com/princekumarofficial/videos-service/internal/http/router"
	"github.com/princekumarofficial/videos-service/internal/logger"
	"github.com/princekumarofficial/videos-service/internal/storage/backend"
	"github.com/princekumarofficial/videos-service/internal/websocket"
)

// @title Videos API
// @version 1.0
// @description CRUD over video records with a websocket change feed.
// @host localhost:8080
// @BasePath /
func main() {
	// load config
	cfg := config.MustLoad()
	logger.Setup(cfg.Env)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if err := run(cfg, done); err != nil {
		slog.Error("videos-service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until stop fires. Every resource it opens is closed before it returns.
func run(cfg *config.Config, stop <-chan os.Signal) error {
	// database setup
	storage, err := backend.Open(cfg.Storage, cfg.PGSQL)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer storage.Close()
	slog.Info("Storage ready", slog.String("driver", cfg.Storage.Driver))

	if cfg.Storage.AutoCreateSchema {
		if err := storage.CreateSchema(context.Background()); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var rateLimit *middleware.RateLimitConfig
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		rateLimit = middleware.NewRateLimitConfig(redisClient, cfg.RateLimit.WritesPerMinute)
		slog.Info("Rate limiting enabled", slog.Int64("writes_per_minute", cfg.RateLimit.WritesPerMinute))
	}

	// setup router
	handler := router.New(router.Deps{
		Storage:   storage,
		Publisher: events.NewEventPublisher(hub),
		Hub:       hub,
		RateLimit: rateLimit,
		Swagger:   true,
	})

	listener, err := net.Listen("tcp", cfg.HTTPServer.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPServer.Address, err)
	}

	server := http.Server{
		Handler: handler,
	}

	slog.Info("server started", slog.String("address", listener.Addr().String()))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	slog.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
