package ai

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

// ExtractionResult is what an extraction run reports
type ExtractionResult struct {
	SessionID   uuid.UUID              `json:"session_id"`
	ActionItems []*entities.ActionItem `json:"action_items"`
}

// Extractor mines transcripts for action items
type Extractor struct {
	model    ChatCompleter
	sessions repo.MeetingSessionRepository
	items    repo.ActionItemRepository
	logger   *zap.Logger
}

// NewExtractor creates an action item extractor
func NewExtractor(model ChatCompleter, sessions repo.MeetingSessionRepository, items repo.ActionItemRepository, logger *zap.Logger) *Extractor {
	return &Extractor{model: model, sessions: sessions, items: items, logger: logger}
}

// ExtractActionItems asks the model for the action items in transcript
func (e *Extractor) ExtractActionItems(ctx context.Context, transcript string) ([]*entities.ActionItem, error) {
	content, err := e.model.Complete(ctx, transcriptMessages(actionItemsSystemPrompt, transcript), actionItemsFormat())
	if err != nil {
		return nil, modelError(ctx, err)
	}

	items, err := parseActionItems(content)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("⚠️ Rejected action item response", zap.Error(err))
		}
		return nil, errors.ErrExtractionFailed(err)
	}
	return items, nil
}

// ExtractForSession replaces a session's action items with a fresh extraction.
// On any failure the existing items are left as they were.
func (e *Extractor) ExtractForSession(ctx context.Context, sessionID uuid.UUID) (*ExtractionResult, error) {
	session, err := e.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting session", err)
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound(sessionID.String())
	}
	if !session.HasTranscript() {
		return nil, errors.ErrMissingTranscript(sessionID.String())
	}

	items, err := e.ExtractActionItems(ctx, *session.Transcript)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.ID = uuid.New()
		item.MeetingSessionID = sessionID
	}
	if err := e.items.ReplaceForSession(ctx, sessionID, items); err != nil {
		return nil, errors.ErrDBTransactionFailed(err)
	}

	if e.logger != nil {
		e.logger.Info("✅ Action items extracted",
			zap.String("session_id", sessionID.String()),
			zap.Int("count", len(items)),
		)
	}
	return &ExtractionResult{SessionID: sessionID, ActionItems: items}, nil
}
