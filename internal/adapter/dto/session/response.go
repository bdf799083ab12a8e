package session

import (
	"time"
)

// SessionResponse represents a meeting session with its AI output
type SessionResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
	Agenda              string     `json:"agenda"`
	AudioURL            *string    `json:"audio_url,omitempty"`
	AudioSignedURL      string     `json:"audio_signed_url,omitempty"`
	Transcript          *string    `json:"transcript,omitempty"`
	ShortSummary        *string    `json:"short_summary,omitempty"`
	LongSummary         *string    `json:"long_summary,omitempty"`
	TranscriptUpdatedAt *time.Time `json:"transcript_updated_at,omitempty"`
	SummariesUpdatedAt  *time.Time `json:"summaries_updated_at,omitempty"`
	SummariesStale      bool       `json:"summaries_stale"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ActionItemResponse represents an action item in responses
type ActionItemResponse struct {
	ID               string     `json:"id"`
	MeetingSessionID string     `json:"meeting_session_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Assignee         string     `json:"assignee"`
	DueDate          *string    `json:"due_date,omitempty"`
	Completed        bool       `json:"completed"`
	Status           string     `json:"status"`
	SortPosition     int        `json:"sort_position"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// ActionItemListResponse wraps a session's action items
type ActionItemListResponse struct {
	SessionID   string                `json:"session_id"`
	ActionItems []*ActionItemResponse `json:"action_items"`
}
