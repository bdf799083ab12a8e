package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key  string
	Size int64
}

// Backend is the object storage the pipeline reads chunks from and writes artifacts to
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// LocalPather is implemented by backends whose objects already live on local disk
type LocalPather interface {
	LocalPath(key string) (string, error)
}

// New creates the backend selected by cfg.Type
func New(ctx context.Context, cfg *config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case config.StorageTypeLocal:
		return NewLocalBackend(cfg.LocalDir, cfg.PublicURL, cfg.SigningSecret)
	case config.StorageTypeMinIO:
		return NewMinIOClient(ctx, cfg)
	case config.StorageTypeS3:
		return NewS3Backend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// CleanKey normalizes a key and rejects anything that escapes the store root
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
