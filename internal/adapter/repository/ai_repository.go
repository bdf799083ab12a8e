package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

type actionItemRepository struct {
	db *gorm.DB
}

// NewActionItemRepository creates a new action item repository backed by GORM
func NewActionItemRepository(db *gorm.DB) repo.ActionItemRepository {
	return &actionItemRepository{db: db}
}

// ReplaceForSession deletes the previous extraction and inserts the new one
func (r *actionItemRepository) ReplaceForSession(ctx context.Context, sessionID uuid.UUID, items []*entities.ActionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_session_id = ?", sessionID).Delete(&entities.ActionItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete action items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		for _, it := range items {
			it.MeetingSessionID = sessionID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert action items: %w", err)
		}
		return nil
	})
}

func (r *actionItemRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error) {
	var items []*entities.ActionItem
	if err := r.db.WithContext(ctx).
		Where("meeting_session_id = ?", sessionID).
		Order("sort_position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *actionItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	var item entities.ActionItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *actionItemRepository) Update(ctx context.Context, item *entities.ActionItem) error {
	if item == nil {
		return errors.New("action item cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.ActionItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":      item.Title,
			"completed":  item.Completed,
			"status":     item.Status,
			"updated_at": time.Now(),
		}).Error
}

// Reorder rewrites positions 1..N; orderedIDs must be a permutation of the session's items
func (r *actionItemRepository) Reorder(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uuid.UUID
		if err := tx.Model(&entities.ActionItem{}).
			Where("meeting_session_id = ?", sessionID).
			Pluck("id", &existing).Error; err != nil {
			return err
		}
		if !samePermutation(existing, orderedIDs) {
			return entities.ErrInvalidOrdering
		}

		now := time.Now()
		for i, id := range orderedIDs {
			if err := tx.Model(&entities.ActionItem{}).
				Where("id = ? AND meeting_session_id = ?", id, sessionID).
				Updates(map[string]interface{}{
					"sort_position": i + 1,
					"updated_at":    now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func samePermutation(existing, ordered []uuid.UUID) bool {
	if len(existing) != len(ordered) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		seen[id] = false
	}
	for _, id := range ordered {
		used, ok := seen[id]
		if !ok || used {
			return false
		}
		seen[id] = true
	}
	return true
}
