package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

// MeetingSessionRepository implements the meeting session repository interface using GORM
type MeetingSessionRepository struct {
	db *gorm.DB
}

// NewMeetingSessionRepository creates a new meeting session repository
func NewMeetingSessionRepository(db *gorm.DB) *MeetingSessionRepository {
	return &MeetingSessionRepository{
		db: db,
	}
}

var _ repo.MeetingSessionRepository = (*MeetingSessionRepository)(nil)

// Create creates a new meeting session
func (r *MeetingSessionRepository) Create(ctx context.Context, session *entities.MeetingSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create meeting session: %w", err)
	}
	return nil
}

// FindByID finds a meeting session by ID
func (r *MeetingSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	var session entities.MeetingSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find meeting session by ID: %w", err)
	}
	return &session, nil
}

// UpdateTranscript stores the transcript text
func (r *MeetingSessionRepository) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entities.MeetingSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript":            transcript,
			"transcript_updated_at": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update transcript: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrSessionNotFound
	}
	return nil
}

// UpdateSummaries stores both summaries in a single UPDATE
func (r *MeetingSessionRepository) UpdateSummaries(ctx context.Context, id uuid.UUID, short, long string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entities.MeetingSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"short_summary":        short,
			"long_summary":         long,
			"summaries_updated_at": now,
			"updated_at":           now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update summaries: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrSessionNotFound
	}
	return nil
}
