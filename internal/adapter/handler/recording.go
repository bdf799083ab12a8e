package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/recording"
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
)

// Recording handles recording, chunk and finalize requests
type Recording struct {
	svc           *pipeline.Service
	maxChunkBytes int64
	logger        *zap.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(svc *pipeline.Service, maxChunkBytes int64, logger *zap.Logger) *Recording {
	return &Recording{
		svc:           svc,
		maxChunkBytes: maxChunkBytes,
		logger:        logger,
	}
}

// CreateRecording handles POST /recordings
// @Summary      Create a recording
// @Description  Announces a recording before its chunks are uploaded. A client-chosen id is kept.
// @Tags         Recordings
// @Accept       json
// @Produce      json
// @Param        request  body      recording.CreateRecordingRequest  true  "Recording"
// @Success      201      {object}  common.SuccessResponse{data=recording.RecordingResponse}
// @Failure      400      {object}  common.ErrorResponse  "Invalid request"
// @Failure      409      {object}  common.ErrorResponse  "Recording id already used"
// @Router       /recordings [post]
func (h *Recording) CreateRecording(c echo.Context) error {
	var req recording.CreateRecordingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	rec, err := h.svc.CreateRecording(c.Request().Context(), pipeline.CreateRecordingInput{
		ID:               optionalUUID(req.ID),
		UserID:           optionalUUID(req.UserID),
		MeetingSessionID: optionalUUID(req.MeetingSessionID),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccessWithStatus(h.logger, c, http.StatusCreated, presenter.ToRecordingResponse(rec))
}

// GetRecording handles GET /recordings/:id
// @Summary      Get a recording
// @Description  Returns a recording with its concatenation status
// @Tags         Recordings
// @Produce      json
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=recording.RecordingResponse}
// @Failure      400  {object}  common.ErrorResponse  "Invalid recording ID"
// @Failure      404  {object}  common.ErrorResponse  "Recording not found"
// @Router       /recordings/{id} [get]
func (h *Recording) GetRecording(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	rec, err := h.svc.GetRecording(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToRecordingResponse(rec))
}

// UploadChunk handles POST /chunks
// @Summary      Upload a chunk
// @Description  Stores one numbered audio chunk. Re-uploading a sequence number overwrites it.
// @Tags         Recordings
// @Accept       multipart/form-data
// @Produce      json
// @Param        recording_id  formData  string  true  "Recording ID (UUID)"
// @Param        sequence      formData  int     true  "Chunk sequence number"
// @Param        chunk         formData  file    true  "Audio chunk (webm)"
// @Success      200  {object}  common.SuccessResponse{data=recording.ChunkResponse}
// @Failure      400  {object}  common.ErrorResponse  "Invalid request"
// @Failure      404  {object}  common.ErrorResponse  "Recording not found"
// @Failure      409  {object}  common.ErrorResponse  "Recording already failed"
// @Failure      503  {object}  common.ErrorResponse  "Storage unavailable"
// @Router       /chunks [post]
func (h *Recording) UploadChunk(c echo.Context) error {
	req := recording.UploadChunkRequest{
		RecordingID: c.FormValue("recording_id"),
		Sequence:    c.FormValue("sequence"),
	}
	if req.Sequence == "" {
		req.Sequence = c.FormValue("chunk_number")
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}
	recordingID, _ := uuid.Parse(req.RecordingID)
	seq, err := strconv.Atoi(req.Sequence)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("sequence must be an integer"))
	}

	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("multipart file field \"chunk\" is required"))
	}
	if h.maxChunkBytes > 0 && fileHeader.Size > h.maxChunkBytes {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("chunk exceeds the maximum size").
			WithDetail("max_bytes", strconv.FormatInt(h.maxChunkBytes, 10)))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	defer file.Close()

	key, err := h.svc.UploadChunk(c.Request().Context(), recordingID, seq, file, fileHeader.Size)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, &recording.ChunkResponse{
		RecordingID: recordingID.String(),
		Sequence:    seq,
		ChunkKey:    key,
	})
}

// Finalize handles POST /finalize
// @Summary      Finalize a recording
// @Description  Orders the chunks, concatenates and transcodes them to mp3. Sync mode answers 200 with the artifact, async mode 202 with a task id.
// @Tags         Recordings
// @Accept       json
// @Produce      json
// @Param        request  body      recording.FinalizeRequest  true  "Recording to finalize"
// @Success      200      {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Artifact ready"
// @Success      202      {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Task queued"
// @Failure      404      {object}  common.ErrorResponse  "Recording not found"
// @Failure      409      {object}  common.ErrorResponse  "Recording failed or concatenation running"
// @Failure      422      {object}  common.ErrorResponse  "No chunks found"
// @Failure      500      {object}  common.ErrorResponse  "Concatenation failed"
// @Router       /finalize [post]
func (h *Recording) Finalize(c echo.Context) error {
	var req recording.FinalizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	recordingID, _ := uuid.Parse(req.RecordingID)

	outcome, err := h.svc.Finalize(c.Request().Context(), recordingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return handleOutcome(h.logger, c, outcome)
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
