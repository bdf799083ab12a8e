package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskStatus represents the status of a background pipeline task
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"  // Waiting for a worker
	TaskStatusRunning  TaskStatus = "running"  // Claimed by a worker
	TaskStatusRetrying TaskStatus = "retrying" // Failed a retryable attempt, waiting for the next one
	TaskStatusSuccess  TaskStatus = "success"
	TaskStatusFailure  TaskStatus = "failure"
)

// TaskKind names the pipeline step a task runs
type TaskKind string

const (
	TaskKindConcatenate        TaskKind = "concatenate"
	TaskKindTranscribe         TaskKind = "transcribe"
	TaskKindExtractActionItems TaskKind = "extract_action_items"
	TaskKindSummarize          TaskKind = "summarize"
)

// Valid reports whether k is a known task kind
func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindConcatenate, TaskKindTranscribe, TaskKindExtractActionItems, TaskKindSummarize:
		return true
	}
	return false
}

// Task is the orchestrator's bookkeeping row for one submitted job
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Kind        TaskKind       `json:"kind" gorm:"type:varchar(50);not null;index"`
	SubjectID   uuid.UUID      `json:"subject_id" gorm:"type:uuid;not null;index"` // recording or meeting session id
	Status      TaskStatus     `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	Result      datatypes.JSON `json:"result,omitempty" gorm:"type:jsonb"`
	RetryCount  int            `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int            `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string        `json:"last_error,omitempty" gorm:"type:text"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTask creates a pending task
func NewTask(kind TaskKind, subjectID uuid.UUID, maxRetries int) *Task {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	now := time.Now().UTC()
	return &Task{
		ID:         uuid.New(),
		Kind:       kind,
		SubjectID:  subjectID,
		Status:     TaskStatusPending,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "pipeline_tasks"
}

// IsTerminal reports whether the task finished, successfully or not
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusSuccess || t.Status == TaskStatusFailure
}
