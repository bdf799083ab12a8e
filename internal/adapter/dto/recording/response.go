package recording

import (
	"encoding/json"
	"time"
)

// RecordingResponse represents a recording in responses
type RecordingResponse struct {
	ID                    string     `json:"id"`
	UserID                *string    `json:"user_id,omitempty"`
	MeetingSessionID      *string    `json:"meeting_session_id,omitempty"`
	FileName              string     `json:"file_name"`
	ConcatenationStatus   string     `json:"concatenation_status"`
	ConcatenationFileName string     `json:"concatenation_file_name"`
	ErrorMessage          *string    `json:"error_message,omitempty"`
	Timestamp             time.Time  `json:"timestamp"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// ChunkResponse acknowledges a stored chunk
type ChunkResponse struct {
	RecordingID string `json:"recording_id"`
	Sequence    int    `json:"sequence"`
	ChunkKey    string `json:"chunk_key"`
}

// TriggerResponse is returned by finalize and the AI triggers: the result in
// sync mode, a task id in async mode
type TriggerResponse struct {
	TaskID *string     `json:"task_id,omitempty"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
}

// TaskResponse is the polled state of a task
type TaskResponse struct {
	TaskID     string          `json:"task_id"`
	Kind       string          `json:"kind"`
	SubjectID  string          `json:"subject_id"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty" swaggertype:"object"`
	Error      string          `json:"error,omitempty"`
	RetryCount int             `json:"retry_count"`
}
