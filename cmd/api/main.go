package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-pipeline/docs"
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/handler"
	"github.com/johnquangdev/meeting-pipeline/internal/app"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	pkgvalidator "github.com/johnquangdev/meeting-pipeline/pkg/validator"
)

// @title           Meeting Pipeline API
// @version         1.0
// @description     Chunked recording ingestion, audio concatenation, transcription and meeting insights.

// @contact.name   API Support
// @contact.email  support@infoquang.id.vn

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	// multipart overhead on top of the largest accepted chunk
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.Server.MaxChunkBytes/1024+1024)))

	logger.Info("🔧 Initializing dependencies...",
		zap.String("execution_mode", cfg.Pipeline.ExecutionMode),
		zap.String("storage", cfg.Storage.Type),
	)
	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	recordingHandler := handler.NewRecordingHandler(application.Pipeline, cfg.Server.MaxChunkBytes, logger)
	taskHandler := handler.NewTaskHandler(application.Pipeline, logger)
	sessionHandler := handler.NewSessionHandler(application.Pipeline, logger)

	var filesHandler *handler.Files
	if local, ok := application.LocalBackend(); ok {
		filesHandler = handler.NewFilesHandler(local, logger)
	}

	logger.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, recordingHandler, taskHandler, sessionHandler, filesHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}
