package presenter

import (
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/recording"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/task"
)

// ToRecordingResponse converts a Recording entity to RecordingResponse DTO
func ToRecordingResponse(r *entities.Recording) *recording.RecordingResponse {
	if r == nil {
		return nil
	}

	response := &recording.RecordingResponse{
		ID:                    r.ID.String(),
		UserID:                uuidString(r.UserID),
		MeetingSessionID:      uuidString(r.MeetingSessionID),
		FileName:              r.FileName,
		ConcatenationStatus:   string(r.ConcatenationStatus),
		ConcatenationFileName: r.ConcatenationFileName,
		ErrorMessage:          r.ErrorMessage,
		Timestamp:             r.Timestamp,
		CreatedAt:             r.CreatedAt,
	}
	if !r.UpdatedAt.IsZero() {
		response.UpdatedAt = &r.UpdatedAt
	}
	return response
}

// ToTriggerResponse converts a pipeline outcome
func ToTriggerResponse(o *pipeline.Outcome) *recording.TriggerResponse {
	if o == nil {
		return nil
	}
	return &recording.TriggerResponse{
		TaskID: uuidString(o.TaskID),
		Status: string(o.Status),
		Result: o.Result,
	}
}

// ToTaskResponse converts a polled task state
func ToTaskResponse(s *task.TaskState) *recording.TaskResponse {
	if s == nil {
		return nil
	}
	return &recording.TaskResponse{
		TaskID:     s.TaskID.String(),
		Kind:       string(s.Kind),
		SubjectID:  s.SubjectID.String(),
		Status:     string(s.Status),
		Result:     s.Result,
		Error:      s.Error,
		RetryCount: s.RetryCount,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
