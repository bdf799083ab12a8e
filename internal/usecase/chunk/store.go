package chunk

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
)

const (
	// ContainerFormat is the container every uploaded chunk is stored as
	ContainerFormat  = "webm"
	chunkContentType = "audio/webm"
)

var chunkNamePattern = regexp.MustCompile(`^([0-9a-fA-F-]{36})_chunk_([0-9]+)\.webm$`)

// Prefix returns the storage prefix holding every object of a recording
func Prefix(recordingID uuid.UUID) string {
	return fmt.Sprintf("recordings/%s/", recordingID)
}

// Key returns the storage key of chunk seq
func Key(recordingID uuid.UUID, seq int) string {
	return fmt.Sprintf("%s%s_chunk_%d.%s", Prefix(recordingID), recordingID, seq, ContainerFormat)
}

// ManifestKey returns the storage key of the concat manifest
func ManifestKey(recordingID uuid.UUID) string {
	return fmt.Sprintf("%s%s_list.txt", Prefix(recordingID), recordingID)
}

// ArtifactKey returns the storage key of the final mp3
func ArtifactKey(recordingID uuid.UUID) string {
	return fmt.Sprintf("%s%s.mp3", Prefix(recordingID), recordingID)
}

// IsChunkKey reports whether key names a chunk of recordingID
func IsChunkKey(recordingID uuid.UUID, key string) bool {
	m := chunkNamePattern.FindStringSubmatch(path.Base(key))
	return m != nil && m[1] == recordingID.String() && path.Dir(key)+"/" == Prefix(recordingID)
}

// Store persists numbered chunks of a recording in the configured backend
type Store struct {
	backend storage.Backend
	logger  *zap.Logger
}

// NewStore creates a chunk store over backend
func NewStore(backend storage.Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Backend exposes the underlying storage backend
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// Put stores one chunk. Re-uploading a sequence number overwrites it.
func (s *Store) Put(ctx context.Context, recordingID uuid.UUID, seq int, r io.Reader, size int64) (string, error) {
	if seq < 0 {
		return "", errors.ErrInvalidArgument("sequence must be a non-negative integer")
	}
	key := Key(recordingID, seq)

	if err := s.backend.Put(ctx, key, r, size, chunkContentType); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to store chunk",
				zap.String("recording_id", recordingID.String()),
				zap.Int("sequence", seq),
				zap.Error(err),
			)
		}
		return "", errors.ErrUploadFailed(key, err)
	}

	if s.logger != nil {
		s.logger.Info("📥 Chunk stored",
			zap.String("recording_id", recordingID.String()),
			zap.Int("sequence", seq),
			zap.String("key", key),
		)
	}
	return key, nil
}

// List returns every chunk object of a recording in backend order.
// The manifest is always reconstructible from this listing alone.
func (s *Store) List(ctx context.Context, recordingID uuid.UUID) ([]storage.ObjectInfo, error) {
	prefix := Prefix(recordingID)
	objects, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, errors.ErrUploadFailed(prefix, err)
	}

	chunks := make([]storage.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if IsChunkKey(recordingID, obj.Key) {
			chunks = append(chunks, obj)
		}
	}
	return chunks, nil
}

// ListKeys returns the keys of every chunk of a recording, unordered
func (s *Store) ListKeys(ctx context.Context, recordingID uuid.UUID) ([]string, error) {
	chunks, err := s.List(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(chunks))
	for i, c := range chunks {
		keys[i] = c.Key
	}
	return keys, nil
}

// DeleteChunks removes every chunk of a recording, best effort.
// It returns the number removed and the first error seen.
func (s *Store) DeleteChunks(ctx context.Context, recordingID uuid.UUID) (int, error) {
	keys, err := s.ListKeys(ctx, recordingID)
	if err != nil {
		return 0, err
	}

	var firstErr error
	removed := 0
	for _, key := range keys {
		if err := s.backend.Delete(ctx, key); err != nil {
			if firstErr == nil {
				firstErr = errors.ErrUploadFailed(key, err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
