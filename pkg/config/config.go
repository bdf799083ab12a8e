package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Execution modes for long-running pipeline steps
const (
	ExecutionModeSync  = "sync"
	ExecutionModeAsync = "async"
)

// Storage backend types
const (
	StorageTypeLocal = "local"
	StorageTypeMinIO = "minio"
	StorageTypeS3    = "s3"
)

// Chunk retention policies applied after a successful concatenation
const (
	ChunkRetentionKeep   = "keep"
	ChunkRetentionDelete = "delete"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Assembly AssemblyAIConfig
	Groq     GroqConfig
	Pipeline PipelineConfig
	Worker   WorkerConfig
	Kafka    KafkaConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
	MaxChunkBytes   int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string // "local", "minio" or "s3"
	LocalDir        string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
	SigningSecret   string // signs local-backend download URLs
}

// AssemblyAIConfig holds speech-to-text configuration
type AssemblyAIConfig struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
}

// GroqConfig holds language model configuration
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// PipelineConfig holds chunk/concatenation settings, loaded with envconfig (PIPELINE_*)
type PipelineConfig struct {
	ExecutionMode  string        `envconfig:"EXECUTION_MODE" default:"sync"`
	ScratchDir     string        `envconfig:"SCRATCH_DIR" default:""`
	FFmpegPath     string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	ChunkRetention string        `envconfig:"CHUNK_RETENTION" default:"keep"`
	SignedURLTTL   time.Duration `envconfig:"SIGNED_URL_TTL" default:"1h"`
	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"15m"`
}

// WorkerConfig holds task orchestrator settings, loaded with envconfig (WORKER_*)
type WorkerConfig struct {
	Count         int           `envconfig:"COUNT" default:"2"`
	JobTimeout    time.Duration `envconfig:"JOB_TIMEOUT" default:"5m"`
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryInterval time.Duration `envconfig:"RETRY_INTERVAL" default:"5s"`
	PopTimeout    time.Duration `envconfig:"POP_TIMEOUT" default:"5s"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	StaleAfter    time.Duration `envconfig:"STALE_AFTER" default:"10m"`
	QueueKey      string        `envconfig:"QUEUE_KEY" default:"pipeline:tasks"`
}

// KafkaConfig holds task event publishing settings, loaded with envconfig (KAFKA_*)
type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS"`
	Topic   string   `envconfig:"TOPIC" default:"pipeline.events"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
			MaxChunkBytes:   int64(getEnvAsInt("MAX_CHUNK_BYTES", 32<<20)),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meeting_pipeline"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", StorageTypeLocal),
			LocalDir:        getEnv("STORAGE_LOCAL_DIR", "uploads"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-pipeline"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080"),
			SigningSecret:   getEnv("STORAGE_SIGNING_SECRET", ""),
		},
		Assembly: AssemblyAIConfig{
			APIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
			BaseURL:      getEnv("ASSEMBLYAI_BASE_URL", ""),
			LanguageCode: getEnv("ASSEMBLYAI_LANGUAGE_CODE", "en"),
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature: getEnvAsFloat("GROQ_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("GROQ_MAX_TOKENS", 4096),
		},
	}

	if err := envconfig.Process("PIPELINE", &config.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}
	if err := envconfig.Process("WORKER", &config.Worker); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}
	if err := envconfig.Process("KAFKA", &config.Kafka); err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageTypeLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for local storage")
		}
		if c.Storage.SigningSecret == "" {
			return fmt.Errorf("STORAGE_SIGNING_SECRET is required for local storage")
		}
	case StorageTypeMinIO, StorageTypeS3:
		if c.Storage.BucketName == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for %s storage", c.Storage.Type)
		}
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required for %s storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}

	switch c.Pipeline.ExecutionMode {
	case ExecutionModeSync, ExecutionModeAsync:
	default:
		return fmt.Errorf("unsupported PIPELINE_EXECUTION_MODE %q", c.Pipeline.ExecutionMode)
	}

	switch c.Pipeline.ChunkRetention {
	case ChunkRetentionKeep, ChunkRetentionDelete:
	default:
		return fmt.Errorf("unsupported PIPELINE_CHUNK_RETENTION %q", c.Pipeline.ChunkRetention)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.Worker.MaxRetries < 1 {
		return fmt.Errorf("WORKER_MAX_RETRIES must be at least 1")
	}
	return nil
}

// IsAsync reports whether long-running steps go through the task orchestrator
func (c *Config) IsAsync() bool {
	return c.Pipeline.ExecutionMode == ExecutionModeAsync
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
