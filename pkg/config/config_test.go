package config

import (
	"testing"
	"time"
)

func TestLoad_PipelineSectionsFromEnv(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("STORAGE_SIGNING_SECRET", "secret")
	t.Setenv("PIPELINE_EXECUTION_MODE", "async")
	t.Setenv("PIPELINE_CHUNK_RETENTION", "delete")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("WORKER_JOB_TIMEOUT", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.IsAsync() {
		t.Fatalf("expected async mode")
	}
	if cfg.Pipeline.ChunkRetention != ChunkRetentionDelete {
		t.Fatalf("unexpected retention %q", cfg.Pipeline.ChunkRetention)
	}
	if cfg.Worker.Count != 4 {
		t.Fatalf("unexpected worker count %d", cfg.Worker.Count)
	}
	if cfg.Worker.JobTimeout != 90*time.Second {
		t.Fatalf("unexpected job timeout %s", cfg.Worker.JobTimeout)
	}
	if cfg.Worker.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.Worker.MaxRetries)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:  StorageConfig{Type: StorageTypeLocal, LocalDir: "uploads", SigningSecret: "s"},
			Pipeline: PipelineConfig{ExecutionMode: ExecutionModeSync, ChunkRetention: ChunkRetentionKeep},
			Worker:   WorkerConfig{Count: 1, MaxRetries: 3},
		}
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid local", func(c *Config) {}, false},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, true},
		{"s3 without credentials", func(c *Config) {
			c.Storage = StorageConfig{Type: StorageTypeS3, BucketName: "b"}
		}, true},
		{"minio with credentials", func(c *Config) {
			c.Storage = StorageConfig{Type: StorageTypeMinIO, BucketName: "b", AccessKeyID: "a", SecretAccessKey: "s"}
		}, false},
		{"bad mode", func(c *Config) { c.Pipeline.ExecutionMode = "later" }, true},
		{"bad retention", func(c *Config) { c.Pipeline.ChunkRetention = "archive" }, true},
		{"no workers", func(c *Config) { c.Worker.Count = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
