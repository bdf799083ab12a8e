package ai

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/scratch"
)

// ChatCompleter is the language model the extractor and summarizer talk to
type ChatCompleter interface {
	Complete(ctx context.Context, messages []pkgai.Message, format *pkgai.ResponseFormat) (string, error)
}

// TranscriptResult is what a transcription run reports
type TranscriptResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Length    int       `json:"length"`
	UpdatedAt time.Time `json:"transcript_updated_at"`
}

// TranscriptionService transcribes a session's concatenated audio
type TranscriptionService struct {
	sessions    repo.MeetingSessionRepository
	backend     storage.Backend
	transcriber pkgai.Transcriber
	scratchRoot string
	logger      *zap.Logger
}

// NewTranscriptionService creates a transcription service
func NewTranscriptionService(
	sessions repo.MeetingSessionRepository,
	backend storage.Backend,
	transcriber pkgai.Transcriber,
	scratchRoot string,
	logger *zap.Logger,
) *TranscriptionService {
	return &TranscriptionService{
		sessions:    sessions,
		backend:     backend,
		transcriber: transcriber,
		scratchRoot: scratchRoot,
		logger:      logger,
	}
}

// Transcribe downloads the session audio into scratchDir, transcribes it and
// stores the text. Nothing is written unless the transcriber succeeds.
func (s *TranscriptionService) Transcribe(ctx context.Context, sessionID uuid.UUID, scratchDir string) (*TranscriptResult, error) {
	if scratchDir == "" {
		var result *TranscriptResult
		err := scratch.Do(s.scratchRoot, "transcribe-*", func(dir string) error {
			var err error
			result, err = s.Transcribe(ctx, sessionID, dir)
			return err
		})
		return result, err
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting session", err)
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound(sessionID.String())
	}
	if !session.HasAudio() {
		return nil, errors.ErrMissingAudio(sessionID.String())
	}

	audioPath, cleanup, err := s.download(ctx, *session.AudioURL, scratchDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Transcription failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
		var appErr errors.AppError
		if stdErrors.As(err, &appErr) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.ErrTranscriptionFailed(err)
	}

	if err := s.sessions.UpdateTranscript(ctx, sessionID, text); err != nil {
		if stdErrors.Is(err, entities.ErrSessionNotFound) {
			return nil, errors.ErrSessionNotFound(sessionID.String())
		}
		return nil, errors.ErrDBQueryFailed("update transcript", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Transcript stored",
			zap.String("session_id", sessionID.String()),
			zap.Int("length", len(text)),
		)
	}
	return &TranscriptResult{SessionID: sessionID, Length: len(text), UpdatedAt: time.Now().UTC()}, nil
}

// download copies the artifact into a temp file that cleanup removes
func (s *TranscriptionService) download(ctx context.Context, key, dir string) (string, func(), error) {
	rc, err := s.backend.Get(ctx, key)
	if err != nil {
		if stdErrors.Is(err, storage.ErrNotFound) {
			return "", nil, errors.ErrNotFound("Audio artifact").WithDetail("key", key)
		}
		return "", nil, errors.ErrUploadFailed(key, err)
	}
	defer rc.Close()

	f, err := os.CreateTemp(dir, "audio-*.mp3")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp audio file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		cleanup()
		return "", nil, errors.ErrUploadFailed(key, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp audio file: %w", err)
	}
	return f.Name(), cleanup, nil
}

// modelError classifies a language model failure: throttling, 5xx and
// transport errors may be retried, anything else is an extraction failure
func modelError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("language model call interrupted: %w", ctx.Err())
	}

	var statusErr *pkgai.StatusError
	if stdErrors.As(err, &statusErr) {
		if statusErr.Temporary() {
			return errors.ErrExternalAPIFailed("groq", err)
		}
		return errors.ErrExtractionFailed(err)
	}

	var netErr net.Error
	if stdErrors.As(err, &netErr) {
		return errors.ErrExternalAPIFailed("groq", err)
	}
	return errors.ErrExtractionFailed(err)
}
