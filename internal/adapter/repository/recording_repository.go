package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

// RecordingRepository handles recording data operations
type RecordingRepository struct {
	db *gorm.DB
}

// NewRecordingRepository creates a new recording repository
func NewRecordingRepository(db *gorm.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

var _ repo.RecordingRepository = (*RecordingRepository)(nil)

// Create creates a new recording
func (r *RecordingRepository) Create(ctx context.Context, recording *entities.Recording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Create(recording).Error
}

// FindByID retrieves a recording by ID
func (r *RecordingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	var recording entities.Recording
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// MarkConcatenated records a successful concatenation and the session's audio
// reference in one transaction. A failed recording is never resurrected.
func (r *RecordingRepository) MarkConcatenated(ctx context.Context, result repo.ConcatenationResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recording entities.Recording
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", result.RecordingID).
			First(&recording).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrRecordingNotFound
			}
			return err
		}
		if recording.IsFailed() {
			return entities.ErrRecordingTerminal
		}

		now := time.Now()
		if err := tx.Model(&entities.Recording{}).
			Where("id = ?", result.RecordingID).
			Updates(map[string]interface{}{
				"concatenation_status":    entities.ConcatenationStatusSuccess,
				"file_name":               result.FileName,
				"concatenation_file_name": result.ManifestName,
				"error_message":           nil,
				"updated_at":              now,
			}).Error; err != nil {
			return err
		}

		if recording.MeetingSessionID == nil {
			return nil
		}
		return tx.Model(&entities.MeetingSession{}).
			Where("id = ?", *recording.MeetingSessionID).
			Updates(map[string]interface{}{
				"audio_url":  result.FileName,
				"updated_at": now,
			}).Error
	})
}

// MarkFailed moves a pending recording to failed; other states are left alone
func (r *RecordingRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Recording{}).
		Where("id = ? AND concatenation_status = ?", id, entities.ConcatenationStatusPending).
		Updates(map[string]interface{}{
			"concatenation_status": entities.ConcatenationStatusFailed,
			"error_message":        message,
			"updated_at":           time.Now(),
		}).Error
}
