package entities

import (
	"time"

	"github.com/google/uuid"
)

// ActionItemStatus represents whether an action item is still open
type ActionItemStatus string

const (
	ActionItemStatusPending   ActionItemStatus = "pending"
	ActionItemStatusCompleted ActionItemStatus = "completed"
)

// ActionItem is a task extracted from a meeting transcript
type ActionItem struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingSessionID uuid.UUID        `json:"meeting_session_id" gorm:"type:uuid;not null;index"`
	Title            string           `json:"title" gorm:"type:text;not null"`
	Description      string           `json:"description" gorm:"type:text;not null;default:''"`
	Assignee         string           `json:"assignee" gorm:"type:varchar(255);not null;default:''"`
	DueDate          *time.Time       `json:"due_date,omitempty" gorm:"type:date"`
	Completed        bool             `json:"completed" gorm:"not null;default:false"`
	Status           ActionItemStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SortPosition     int              `json:"sort_position" gorm:"not null;default:0"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewActionItem creates a pending action item for a session
func NewActionItem(sessionID uuid.UUID, title string) *ActionItem {
	return &ActionItem{
		ID:               uuid.New(),
		MeetingSessionID: sessionID,
		Title:            title,
		Status:           ActionItemStatusPending,
	}
}

// TableName specifies the table name for GORM
func (ActionItem) TableName() string {
	return "action_items"
}

// SetCompleted keeps Completed and Status in agreement
func (a *ActionItem) SetCompleted(done bool) {
	a.Completed = done
	if done {
		a.Status = ActionItemStatusCompleted
	} else {
		a.Status = ActionItemStatusPending
	}
}
