package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingSession is the meeting a recording belongs to; it carries the
// audio artifact reference and every AI-derived text.
type MeetingSession struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name                string     `json:"name" gorm:"type:varchar(255);not null;default:''"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
	Agenda              string     `json:"agenda" gorm:"type:text;not null;default:''"`
	AudioURL            *string    `json:"audio_url,omitempty" gorm:"column:audio_url;type:text"`
	Transcript          *string    `json:"transcript,omitempty" gorm:"type:text"`
	ShortSummary        *string    `json:"short_summary,omitempty" gorm:"type:text"`
	LongSummary         *string    `json:"long_summary,omitempty" gorm:"type:text"`
	TranscriptUpdatedAt *time.Time `json:"transcript_updated_at,omitempty"`
	SummariesUpdatedAt  *time.Time `json:"summaries_updated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (MeetingSession) TableName() string {
	return "meeting_sessions"
}

// HasAudio reports whether a concatenated artifact is attached
func (s *MeetingSession) HasAudio() bool {
	return s.AudioURL != nil && *s.AudioURL != ""
}

// HasTranscript reports whether a non-empty transcript is stored
func (s *MeetingSession) HasTranscript() bool {
	return s.Transcript != nil && *s.Transcript != ""
}

// SummariesStale reports whether the transcript changed after the summaries were written
func (s *MeetingSession) SummariesStale() bool {
	if s.SummariesUpdatedAt == nil || s.TranscriptUpdatedAt == nil {
		return false
	}
	return s.TranscriptUpdatedAt.After(*s.SummariesUpdatedAt)
}
