package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// TaskRepository defines persistence for orchestrator tasks
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error

	// FindByID finds a task, returning (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// Claim atomically moves a pending or retrying task to running.
	// It reports false when another worker got there first.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)

	MarkRetrying(ctx context.Context, id uuid.UUID, errMsg string) error
	MarkSucceeded(ctx context.Context, id uuid.UUID, result datatypes.JSON) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// ListStale lists tasks in status whose last update is older than before
	ListStale(ctx context.Context, status entities.TaskStatus, before time.Time, limit int) ([]entities.Task, error)

	// Touch bumps updated_at so a re-dispatched task is not swept again right away
	Touch(ctx context.Context, id uuid.UUID) error

	// Reset moves a stuck running task back to pending
	Reset(ctx context.Context, id uuid.UUID) (bool, error)
}
