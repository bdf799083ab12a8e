package entities

import (
	"time"

	"github.com/google/uuid"
)

// ConcatenationStatus represents where a recording is in the concatenation lifecycle
type ConcatenationStatus string

const (
	ConcatenationStatusPending ConcatenationStatus = "pending"
	ConcatenationStatusSuccess ConcatenationStatus = "success"
	ConcatenationStatusFailed  ConcatenationStatus = "failed"
)

// Recording is one uploaded capture made of many audio chunks
type Recording struct {
	ID                    uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID                *uuid.UUID          `json:"user_id,omitempty" gorm:"type:uuid;index"`
	MeetingSessionID      *uuid.UUID          `json:"meeting_session_id,omitempty" gorm:"type:uuid;index"`
	FileName              string              `json:"file_name" gorm:"type:text;not null;default:''"`
	ConcatenationStatus   ConcatenationStatus `json:"concatenation_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ConcatenationFileName string              `json:"concatenation_file_name" gorm:"type:text;not null;default:''"`
	ErrorMessage          *string             `json:"error_message,omitempty" gorm:"type:text"`
	Timestamp             time.Time           `json:"timestamp" gorm:"not null;default:now()"`
	CreatedAt             time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewRecording creates a pending recording; a nil id gets a fresh one
func NewRecording(id uuid.UUID, userID, sessionID *uuid.UUID) *Recording {
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	return &Recording{
		ID:                  id,
		UserID:              userID,
		MeetingSessionID:    sessionID,
		ConcatenationStatus: ConcatenationStatusPending,
		Timestamp:           now,
	}
}

// TableName specifies the table name for GORM
func (Recording) TableName() string {
	return "recordings"
}

// IsFailed reports whether the recording reached the failed terminal state
func (r *Recording) IsFailed() bool {
	return r.ConcatenationStatus == ConcatenationStatusFailed
}

// IsConcatenated reports whether a final artifact exists
func (r *Recording) IsConcatenated() bool {
	return r.ConcatenationStatus == ConcatenationStatusSuccess
}
