package ai

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

// Summaries holds both summary forms of a transcript
type Summaries struct {
	SessionID    uuid.UUID `json:"session_id,omitempty"`
	ShortSummary string    `json:"short_summary"`
	LongSummary  string    `json:"long_summary"`
}

// Summarizer writes short and long meeting summaries
type Summarizer struct {
	model    ChatCompleter
	sessions repo.MeetingSessionRepository
	logger   *zap.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer(model ChatCompleter, sessions repo.MeetingSessionRepository, logger *zap.Logger) *Summarizer {
	return &Summarizer{model: model, sessions: sessions, logger: logger}
}

// Summarize makes one call per form; both must succeed
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (*Summaries, error) {
	short, err := s.complete(ctx, shortSummarySystemPrompt, transcript)
	if err != nil {
		return nil, err
	}
	long, err := s.complete(ctx, longSummarySystemPrompt, transcript)
	if err != nil {
		return nil, err
	}
	return &Summaries{ShortSummary: short, LongSummary: long}, nil
}

func (s *Summarizer) complete(ctx context.Context, system, transcript string) (string, error) {
	content, err := s.model.Complete(ctx, transcriptMessages(system, transcript), nil)
	if err != nil {
		return "", modelError(ctx, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.ErrExtractionFailed(fmt.Errorf("empty summary"))
	}
	return content, nil
}

// SummarizeSession stores both summaries of a session in one update
func (s *Summarizer) SummarizeSession(ctx context.Context, sessionID uuid.UUID) (*Summaries, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting session", err)
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound(sessionID.String())
	}
	if !session.HasTranscript() {
		return nil, errors.ErrMissingTranscript(sessionID.String())
	}

	summaries, err := s.Summarize(ctx, *session.Transcript)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Summarization failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if err := s.sessions.UpdateSummaries(ctx, sessionID, summaries.ShortSummary, summaries.LongSummary); err != nil {
		if stdErrors.Is(err, entities.ErrSessionNotFound) {
			return nil, errors.ErrSessionNotFound(sessionID.String())
		}
		return nil, errors.ErrDBQueryFailed("update summaries", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Summaries stored",
			zap.String("session_id", sessionID.String()),
			zap.Int("short_length", len(summaries.ShortSummary)),
			zap.Int("long_length", len(summaries.LongSummary)),
		)
	}
	summaries.SessionID = sessionID
	return summaries, nil
}
