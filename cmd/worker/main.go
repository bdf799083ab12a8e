package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/app"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.IsAsync() {
		logger.Fatal("❌ Worker requires PIPELINE_EXECUTION_MODE=async; sync mode runs jobs inside the API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// running jobs outlive the signal; StopWorkerPool only stops new pops
	if err := application.Orchestrator.StartWorkerPool(context.Background()); err != nil {
		logger.Fatal("❌ Failed to start worker pool", zap.Error(err))
	}
	logger.Info("👷 Worker pool running",
		zap.Int("workers", cfg.Worker.Count),
		zap.String("queue", cfg.Worker.QueueKey),
	)

	<-ctx.Done()
	logger.Info("🛑 Stopping worker pool...")

	if err := application.Orchestrator.StopWorkerPool(); err != nil {
		logger.Error("❌ Worker pool did not stop cleanly", zap.Error(err))
		return
	}
	logger.Info("✅ Worker stopped gracefully")
}
