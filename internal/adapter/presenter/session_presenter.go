package presenter

import (
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/session"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
)

const dueDateLayout = "2006-01-02"

// ToSessionResponse converts a session view to SessionResponse DTO
func ToSessionResponse(v *pipeline.SessionView) *session.SessionResponse {
	if v == nil || v.Session == nil {
		return nil
	}
	s := v.Session

	return &session.SessionResponse{
		ID:                  s.ID.String(),
		Name:                s.Name,
		ScheduledAt:         s.ScheduledAt,
		Agenda:              s.Agenda,
		AudioURL:            s.AudioURL,
		AudioSignedURL:      v.AudioSignedURL,
		Transcript:          s.Transcript,
		ShortSummary:        s.ShortSummary,
		LongSummary:         s.LongSummary,
		TranscriptUpdatedAt: s.TranscriptUpdatedAt,
		SummariesUpdatedAt:  s.SummariesUpdatedAt,
		SummariesStale:      s.SummariesStale(),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// ToActionItemResponse converts an ActionItem entity to ActionItemResponse DTO
func ToActionItemResponse(a *entities.ActionItem) *session.ActionItemResponse {
	if a == nil {
		return nil
	}

	response := &session.ActionItemResponse{
		ID:               a.ID.String(),
		MeetingSessionID: a.MeetingSessionID.String(),
		Title:            a.Title,
		Description:      a.Description,
		Assignee:         a.Assignee,
		Completed:        a.Completed,
		Status:           string(a.Status),
		SortPosition:     a.SortPosition,
		CreatedAt:        a.CreatedAt,
	}
	if a.DueDate != nil {
		due := a.DueDate.Format(dueDateLayout)
		response.DueDate = &due
	}
	if !a.UpdatedAt.IsZero() {
		response.UpdatedAt = &a.UpdatedAt
	}
	return response
}

// ToActionItemListResponse converts a session's action items
func ToActionItemListResponse(sessionID string, items []*entities.ActionItem) *session.ActionItemListResponse {
	responses := make([]*session.ActionItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToActionItemResponse(item)
	}
	return &session.ActionItemListResponse{
		SessionID:   sessionID,
		ActionItems: responses,
	}
}
