package recording

// CreateRecordingRequest announces a recording before its chunks arrive
type CreateRecordingRequest struct {
	ID               *string `json:"id,omitempty" validate:"omitempty,uuid"`
	UserID           *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	MeetingSessionID *string `json:"meeting_session_id,omitempty" validate:"omitempty,uuid"`
}

// UploadChunkRequest holds the form fields of a chunk upload; the audio itself
// travels in the multipart file field "chunk"
type UploadChunkRequest struct {
	RecordingID string `form:"recording_id" validate:"required,uuid"`
	Sequence    string `form:"sequence" validate:"required,numeric"`
}

// FinalizeRequest triggers concatenation of a recording
type FinalizeRequest struct {
	RecordingID string `json:"recording_id" validate:"required,uuid"`
}
