package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// MeetingSessionRepository defines data access for meeting sessions
type MeetingSessionRepository interface {
	// Create creates a new meeting session
	Create(ctx context.Context, session *entities.MeetingSession) error

	// FindByID finds a meeting session by ID, returning (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error)

	// UpdateTranscript stores the transcript text
	UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error

	// UpdateSummaries stores both summaries in a single statement
	UpdateSummaries(ctx context.Context, id uuid.UUID, short, long string) error
}
