package concat

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/transcoder"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/chunk"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/natsort"
	"github.com/johnquangdev/meeting-pipeline/pkg/scratch"
)

const (
	artifactContentType = "audio/mpeg"
	manifestContentType = "text/plain"
	defaultLockTTL      = 15 * time.Minute
)

// Artifact describes the final audio file of a recording
type Artifact struct {
	RecordingID   uuid.UUID `json:"recording_id"`
	FileName      string    `json:"file_name"`
	ManifestName  string    `json:"concatenation_file_name"`
	ChunkCount    int       `json:"chunk_count"`
	SkippedChunks int       `json:"skipped_chunks"`
	Size          int64     `json:"size"`
}

// Options tunes the engine
type Options struct {
	ScratchRoot    string
	LockTTL        time.Duration
	ChunkRetention string
}

// Engine turns the chunks of a recording into one mp3 artifact
type Engine struct {
	recordings repo.RecordingRepository
	chunks     *chunk.Store
	transcoder transcoder.Transcoder
	locker     cache.Locker
	opts       Options
	logger     *zap.Logger
}

// NewEngine creates a concatenation engine
func NewEngine(
	recordings repo.RecordingRepository,
	chunks *chunk.Store,
	tc transcoder.Transcoder,
	locker cache.Locker,
	opts Options,
	logger *zap.Logger,
) *Engine {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.ChunkRetention == "" {
		opts.ChunkRetention = config.ChunkRetentionKeep
	}
	return &Engine{
		recordings: recordings,
		chunks:     chunks,
		transcoder: tc,
		locker:     locker,
		opts:       opts,
		logger:     logger,
	}
}

// Concatenate builds the final artifact of recordingID. Intermediate files go
// to scratchDir; an empty scratchDir gets a private directory removed on return.
func (e *Engine) Concatenate(ctx context.Context, recordingID uuid.UUID, scratchDir string) (*Artifact, error) {
	if scratchDir == "" {
		var artifact *Artifact
		err := scratch.Do(e.opts.ScratchRoot, "concat-*", func(dir string) error {
			var err error
			artifact, err = e.Concatenate(ctx, recordingID, dir)
			return err
		})
		return artifact, err
	}

	lockKey := "recording:" + recordingID.String()
	token, ok, err := e.locker.TryLock(ctx, lockKey, e.opts.LockTTL)
	if err != nil {
		return nil, errors.ErrCacheFailed("lock recording", err)
	}
	if !ok {
		return nil, errors.ErrConcatenationInProgress(recordingID.String())
	}
	defer func() {
		if err := e.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil && e.logger != nil {
			e.logger.Warn("⚠️ Failed to release recording lock",
				zap.String("recording_id", recordingID.String()),
				zap.Error(err),
			)
		}
	}()

	recording, err := e.recordings.FindByID(ctx, recordingID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find recording", err)
	}
	if recording == nil {
		return nil, errors.ErrRecordingNotFound(recordingID.String())
	}
	if recording.IsFailed() {
		return nil, errors.ErrRecordingTerminal(recordingID.String(), string(recording.ConcatenationStatus))
	}

	objects, err := e.chunks.List(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		if e.logger != nil {
			e.logger.Warn("⚠️ No chunks found for recording",
				zap.String("recording_id", recordingID.String()),
			)
		}
		return nil, errors.ErrNoChunksFound(recordingID.String())
	}

	paths, skipped, err := e.materialize(ctx, recordingID, objects, scratchDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.ErrNoChunksFound(recordingID.String())
	}

	manifest := BuildManifest(paths)
	manifestPath := filepath.Join(scratchDir, path.Base(chunk.ManifestKey(recordingID)))
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	manifestKey := chunk.ManifestKey(recordingID)
	if err := e.chunks.Backend().Put(ctx, manifestKey, bytes.NewReader(manifest), int64(len(manifest)), manifestContentType); err != nil {
		return nil, errors.ErrUploadFailed(manifestKey, err)
	}

	intermediate := filepath.Join(scratchDir, recordingID.String()+"."+chunk.ContainerFormat)
	if err := e.transcoder.ConcatLosslessly(ctx, manifestPath, intermediate); err != nil {
		return nil, e.codecFailure(ctx, recordingID, err)
	}

	finalPath := filepath.Join(scratchDir, recordingID.String()+".mp3")
	if err := e.transcoder.Transcode(ctx, intermediate, finalPath); err != nil {
		return nil, e.codecFailure(ctx, recordingID, err)
	}

	artifactKey := chunk.ArtifactKey(recordingID)
	size, err := e.upload(ctx, artifactKey, finalPath)
	if err != nil {
		return nil, err
	}

	if err := e.recordings.MarkConcatenated(ctx, repo.ConcatenationResult{
		RecordingID:  recordingID,
		FileName:     artifactKey,
		ManifestName: manifestKey,
	}); err != nil {
		switch {
		case stdErrors.Is(err, entities.ErrRecordingNotFound):
			return nil, errors.ErrRecordingNotFound(recordingID.String())
		case stdErrors.Is(err, entities.ErrRecordingTerminal):
			return nil, errors.ErrRecordingTerminal(recordingID.String(), string(entities.ConcatenationStatusFailed))
		}
		return nil, errors.ErrDBTransactionFailed(err)
	}

	if e.opts.ChunkRetention == config.ChunkRetentionDelete {
		e.dropChunks(ctx, recordingID)
	}

	if e.logger != nil {
		e.logger.Info("✅ Recording concatenated",
			zap.String("recording_id", recordingID.String()),
			zap.String("file_name", artifactKey),
			zap.Int("chunks", len(paths)),
			zap.Int("skipped", skipped),
			zap.Int64("size", size),
		)
	}

	return &Artifact{
		RecordingID:   recordingID,
		FileName:      artifactKey,
		ManifestName:  manifestKey,
		ChunkCount:    len(paths),
		SkippedChunks: skipped,
		Size:          size,
	}, nil
}

// Abandon records a concatenation that will not be retried any more.
// Outcomes that leave the status untouched by contract are ignored, as is
// a caller that went away mid-run; the recording stays pending for a retry.
func (e *Engine) Abandon(ctx context.Context, recordingID uuid.UUID, cause error) {
	if stdErrors.Is(cause, context.Canceled) {
		if e.logger != nil {
			e.logger.Warn("⚠️ Concatenation cancelled, recording left pending",
				zap.String("recording_id", recordingID.String()),
				zap.Error(cause),
			)
		}
		return
	}

	var appErr errors.AppError
	if stdErrors.As(cause, &appErr) {
		switch appErr.Code {
		case errors.ErrorCode_NO_CHUNKS_FOUND,
			errors.ErrorCode_NOT_FOUND,
			errors.ErrorCode_RECORDING_TERMINAL,
			errors.ErrorCode_CONCATENATION_IN_PROGRESS,
			errors.ErrorCode_CONCATENATION_FAILED: // already recorded
			return
		}
	}

	if err := e.recordings.MarkFailed(context.WithoutCancel(ctx), recordingID, cause.Error()); err != nil && e.logger != nil {
		e.logger.Error("❌ Failed to mark recording as failed",
			zap.String("recording_id", recordingID.String()),
			zap.Error(err),
		)
	}
}

// materialize returns an absolute local path for every non-empty chunk in natural order
func (e *Engine) materialize(ctx context.Context, recordingID uuid.UUID, objects []storage.ObjectInfo, scratchDir string) ([]string, int, error) {
	sizes := make(map[string]int64, len(objects))
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		sizes[obj.Key] = obj.Size
		keys = append(keys, obj.Key)
	}

	backend := e.chunks.Backend()
	local, isLocal := backend.(storage.LocalPather)

	var (
		paths   []string
		skipped int
	)
	for _, key := range natsort.Order(keys) {
		if sizes[key] == 0 {
			skipped++
			if e.logger != nil {
				e.logger.Warn("⚠️ Skipping empty chunk",
					zap.String("recording_id", recordingID.String()),
					zap.String("key", key),
				)
			}
			continue
		}

		var p string
		var err error
		if isLocal {
			p, err = local.LocalPath(key)
		} else {
			p, err = download(ctx, backend, key, filepath.Join(scratchDir, path.Base(key)))
		}
		if err != nil {
			return nil, 0, errors.ErrUploadFailed(key, err)
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve chunk path: %w", err)
		}
		paths = append(paths, abs)
	}
	return paths, skipped, nil
}

func download(ctx context.Context, backend storage.Backend, key, dst string) (string, error) {
	rc, err := backend.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return "", err
	}
	return dst, f.Close()
}

func (e *Engine) upload(ctx context.Context, key, src string) (int64, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat artifact: %w", err)
	}
	if err := e.chunks.Backend().Put(ctx, key, f, info.Size(), artifactContentType); err != nil {
		return 0, errors.ErrUploadFailed(key, err)
	}
	return info.Size(), nil
}

// codecFailure marks the recording failed when the codec tool itself rejected
// the input. Cancellation and timeouts are returned as they are.
func (e *Engine) codecFailure(ctx context.Context, recordingID uuid.UUID, err error) error {
	var procErr *transcoder.ProcessError
	if !stdErrors.As(err, &procErr) {
		return fmt.Errorf("failed to concatenate recording %s: %w", recordingID, err)
	}

	if e.logger != nil {
		e.logger.Error("❌ Codec tool failed",
			zap.String("recording_id", recordingID.String()),
			zap.String("op", procErr.Op),
			zap.String("stderr", procErr.Stderr),
			zap.Error(procErr.Err),
		)
	}

	if markErr := e.recordings.MarkFailed(context.WithoutCancel(ctx), recordingID, procErr.Error()); markErr != nil && e.logger != nil {
		e.logger.Error("❌ Failed to mark recording as failed",
			zap.String("recording_id", recordingID.String()),
			zap.Error(markErr),
		)
	}
	return errors.ErrConcatenationFailed(recordingID.String(), err, procErr.Stderr)
}

func (e *Engine) dropChunks(ctx context.Context, recordingID uuid.UUID) {
	removed, err := e.chunks.DeleteChunks(ctx, recordingID)
	if e.logger == nil {
		return
	}
	if err != nil {
		e.logger.Warn("⚠️ Chunk cleanup incomplete",
			zap.String("recording_id", recordingID.String()),
			zap.Int("removed", removed),
			zap.Error(err),
		)
		return
	}
	e.logger.Info("🧹 Chunks removed after concatenation",
		zap.String("recording_id", recordingID.String()),
		zap.Int("removed", removed),
	)
}

// BuildManifest renders a concat demuxer list, one file line per path
func BuildManifest(paths []string) []byte {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return []byte(b.String())
}
