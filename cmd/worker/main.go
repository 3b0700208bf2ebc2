package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-agora/internal/infrastructure/config"
	"go-agora/internal/infrastructure/database"
	"go-agora/internal/infrastructure/logging"
	queueAdapter "go-agora/internal/infrastructure/queue/adapter"
	"go-agora/internal/pkg/moderation/application/task"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	srv, err := queueAdapter.NewAsynqServer()
	if err != nil {
		logger.Fatal("failed to build queue server", zap.Error(err))
	}

	task.RegisterNotifySanctionTask(srv, pool, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker running")
	if err := srv.Run(runCtx); err != nil {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}
	logger.Info("worker stopped")
}
