// Package app wires the pipeline the same way for the API server and the worker.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/repository"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/events"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/transcoder"
	aiuse "github.com/johnquangdev/meeting-pipeline/internal/usecase/ai"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/chunk"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/concat"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/task"
	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// App holds every long-lived dependency of a process
type App struct {
	Config       *config.Config
	DB           *gorm.DB
	Redis        *redis.Client // nil in sync mode
	Backend      storage.Backend
	Publisher    events.Publisher
	Orchestrator *task.Orchestrator
	Pipeline     *pipeline.Service
	logger       *zap.Logger
}

// New connects to the database, storage and (in async mode) Redis and builds
// the pipeline service on top of them
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			a.Close()
			return nil, fmt.Errorf("auto migrate is enabled in production; disable DB_AUTO_MIGRATE and run cmd/migrate")
		}
		logger.Info("🔄 Running GORM AutoMigrate (development only)...")
		if err := database.AutoMigrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to run auto migrate: %w", err)
		}
	}

	logger.Info("🗄️  Initializing storage backend...", zap.String("type", cfg.Storage.Type))
	backend, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Backend = backend

	var (
		locker     cache.Locker
		dispatcher queue.Dispatcher
	)
	if cfg.IsAsync() {
		logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.GetRedisAddr()))
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = client
		locker = cache.NewRedisLocker(client)
		dispatcher = queue.NewRedisDispatcher(client, cfg.Worker.QueueKey)
	} else {
		logger.Info("⚙️  Sync mode: using in-process lock and queue")
		locker = cache.NewMemoryLocker(cache.NewMemoryStore())
		dispatcher = queue.NewMemoryDispatcher()
	}

	a.Publisher = events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	recordings := repository.NewRecordingRepository(db)
	sessions := repository.NewMeetingSessionRepository(db)
	actionItems := repository.NewActionItemRepository(db)
	tasks := repository.NewTaskRepository(db)

	chunks := chunk.NewStore(backend, logger)
	engine := concat.NewEngine(
		recordings,
		chunks,
		transcoder.NewFFmpeg(cfg.Pipeline.FFmpegPath, logger),
		locker,
		concat.Options{
			ScratchRoot:    cfg.Pipeline.ScratchDir,
			LockTTL:        cfg.Pipeline.LockTTL,
			ChunkRetention: cfg.Pipeline.ChunkRetention,
		},
		logger,
	)

	a.Orchestrator = task.NewOrchestrator(tasks, dispatcher, a.Publisher, task.OptionsFromConfig(cfg), logger)

	logger.Info("🤖 Initializing AI components...")
	groq := pkgai.NewGroqClient(&cfg.Groq)
	transcriber := pkgai.NewAssemblyAITranscriber(&cfg.Assembly, logger)

	a.Pipeline = pipeline.NewService(pipeline.Deps{
		Recordings:    recordings,
		Sessions:      sessions,
		ActionItems:   actionItems,
		Chunks:        chunks,
		Engine:        engine,
		Orchestrator:  a.Orchestrator,
		Transcription: aiuse.NewTranscriptionService(sessions, backend, transcriber, cfg.Pipeline.ScratchDir, logger),
		Extractor:     aiuse.NewExtractor(groq, sessions, actionItems, logger),
		Summarizer:    aiuse.NewSummarizer(groq, sessions, logger),
	}, &cfg.Pipeline, logger)

	return a, nil
}

// LocalBackend returns the backend when objects live on local disk
func (a *App) LocalBackend() (*storage.LocalBackend, bool) {
	local, ok := a.Backend.(*storage.LocalBackend)
	return local, ok
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.logger.Warn("⚠️  Failed to close event publisher", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("⚠️  Failed to close redis client", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := database.CloseDB(a.DB); err != nil {
			a.logger.Warn("⚠️  Failed to close database", zap.Error(err))
		}
	}
}
