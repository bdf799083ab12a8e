package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

// TaskRepository handles pipeline task data operations
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ repo.TaskRepository = (*TaskRepository)(nil)

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID retrieves a task by ID
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// Claim atomically marks a task as running.
// Only one worker will succeed if multiple workers see the same task
func (r *TaskRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ? AND status IN ?", id, []entities.TaskStatus{entities.TaskStatusPending, entities.TaskStatusRetrying}).
		Updates(map[string]interface{}{
			"status":     entities.TaskStatusRunning,
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRetrying increments the retry count after a retryable failure
func (r *TaskRepository) MarkRetrying(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      entities.TaskStatusRetrying,
			"last_error":  errMsg,
			"updated_at":  time.Now(),
		}).Error
}

// MarkSucceeded stores the task result
func (r *TaskRepository) MarkSucceeded(ctx context.Context, id uuid.UUID, result datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.TaskStatusSuccess,
			"result":       result,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkFailed marks a task as failed with error message
func (r *TaskRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.TaskStatusFailure,
			"last_error":   errMsg,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// ListStale retrieves tasks stuck in status since before
func (r *TaskRepository) ListStale(ctx context.Context, status entities.TaskStatus, before time.Time, limit int) ([]entities.Task, error) {
	var tasks []entities.Task
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Touch bumps updated_at of a task
func (r *TaskRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// Reset moves a running or retrying task back to pending
func (r *TaskRepository) Reset(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ? AND status IN ?", id, []entities.TaskStatus{entities.TaskStatusRunning, entities.TaskStatusRetrying}).
		Updates(map[string]interface{}{
			"status":     entities.TaskStatusPending,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
