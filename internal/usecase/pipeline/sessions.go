package pipeline

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// SessionView is a meeting session with a playable audio link
type SessionView struct {
	Session        *entities.MeetingSession
	AudioSignedURL string
}

// GetSession loads a session and signs its audio reference
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	session, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &SessionView{Session: session}
	if session.HasAudio() {
		url, err := s.deps.Chunks.Backend().SignedURL(ctx, *session.AudioURL, s.signedURLTTL)
		if err != nil {
			// the session is still useful without a playable link
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to sign audio URL",
					zap.String("session_id", id.String()),
					zap.Error(err),
				)
			}
		} else {
			view.AudioSignedURL = url
		}
	}
	return view, nil
}

// ListActionItems lists a session's action items in display order
func (s *Service) ListActionItems(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	items, err := s.deps.ActionItems.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("list action items", err)
	}
	return items, nil
}

// UpdateActionItemInput holds the editable fields; nil leaves a field as is
type UpdateActionItemInput struct {
	Title     *string
	Completed *bool
}

// UpdateActionItem edits the title or toggles completion of one item
func (s *Service) UpdateActionItem(ctx context.Context, id uuid.UUID, in UpdateActionItemInput) (*entities.ActionItem, error) {
	item, err := s.deps.ActionItems.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find action item", err)
	}
	if item == nil {
		return nil, errors.ErrNotFound("Action item").WithDetail("action_item_id", id.String())
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errors.ErrInvalidArgument("title must not be empty")
		}
		item.Title = title
	}
	if in.Completed != nil {
		item.SetCompleted(*in.Completed)
	}

	if err := s.deps.ActionItems.Update(ctx, item); err != nil {
		return nil, errors.ErrDBQueryFailed("update action item", err)
	}
	return item, nil
}

// ReorderActionItems renumbers a session's items 1..N in the given order.
// orderedIDs must list every item of the session exactly once.
func (s *Service) ReorderActionItems(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) ([]*entities.ActionItem, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.deps.ActionItems.Reorder(ctx, sessionID, orderedIDs); err != nil {
		if stdErrors.Is(err, entities.ErrInvalidOrdering) {
			return nil, errors.ErrInvalidArgument(err.Error())
		}
		return nil, errors.ErrDBTransactionFailed(err)
	}
	return s.ListActionItems(ctx, sessionID)
}
