package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// ActionItemRepository defines persistence operations for extracted action items
type ActionItemRepository interface {
	// ReplaceForSession deletes the session's items and inserts items in one transaction
	ReplaceForSession(ctx context.Context, sessionID uuid.UUID, items []*entities.ActionItem) error

	// ListBySession lists a session's items ordered by sort position
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error)

	// FindByID finds an item, returning (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)

	// Update saves title, completion and status of an item
	Update(ctx context.Context, item *entities.ActionItem) error

	// Reorder assigns positions 1..N following orderedIDs
	Reorder(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) error
}
