package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// ConcatenationResult is what a successful concatenation records
type ConcatenationResult struct {
	RecordingID  uuid.UUID
	FileName     string // storage key of the final artifact
	ManifestName string
}

// RecordingRepository defines data access for recordings
type RecordingRepository interface {
	// Create creates a new recording
	Create(ctx context.Context, recording *entities.Recording) error

	// FindByID finds a recording by ID, returning (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error)

	// MarkConcatenated sets status success and, when the recording belongs to a
	// meeting session, points the session's audio_url at the artifact, atomically.
	MarkConcatenated(ctx context.Context, result ConcatenationResult) error

	// MarkFailed moves a pending recording to failed with a message
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}
