package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/session"
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
)

// Session handles meeting session reads, AI triggers and action item upkeep
type Session struct {
	svc    *pipeline.Service
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *pipeline.Service, logger *zap.Logger) *Session {
	return &Session{svc: svc, logger: logger}
}

// GetSession handles GET /sessions/:id
// @Summary      Get a meeting session
// @Description  Returns transcript, summaries and a signed link to the session audio
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=session.SessionResponse}
// @Failure      400  {object}  common.ErrorResponse  "Invalid session ID"
// @Failure      404  {object}  common.ErrorResponse  "Session not found"
// @Router       /sessions/{id} [get]
func (h *Session) GetSession(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	view, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToSessionResponse(view))
}

// Transcribe handles POST /transcribe/:sessionId
// @Summary      Transcribe session audio
// @Description  Sends the concatenated audio to speech-to-text and stores the transcript
// @Tags         AI
// @Produce      json
// @Param        sessionId  path      string  true  "Session ID (UUID)"
// @Success      200        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Transcript stored"
// @Success      202        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Task queued"
// @Failure      404        {object}  common.ErrorResponse  "Session not found"
// @Failure      422        {object}  common.ErrorResponse  "Session has no audio"
// @Failure      502        {object}  common.ErrorResponse  "Transcription failed"
// @Router       /transcribe/{sessionId} [post]
func (h *Session) Transcribe(c echo.Context) error {
	return h.trigger(c, h.svc.Transcribe)
}

// ExtractActionItems handles POST /extract-action-items/:sessionId
// @Summary      Extract action items
// @Description  Replaces the session's action items with a fresh extraction from its transcript
// @Tags         AI
// @Produce      json
// @Param        sessionId  path      string  true  "Session ID (UUID)"
// @Success      200        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Action items replaced"
// @Success      202        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Task queued"
// @Failure      404        {object}  common.ErrorResponse  "Session not found"
// @Failure      422        {object}  common.ErrorResponse  "Session has no transcript"
// @Failure      502        {object}  common.ErrorResponse  "Model output unusable"
// @Router       /extract-action-items/{sessionId} [post]
func (h *Session) ExtractActionItems(c echo.Context) error {
	return h.trigger(c, h.svc.ExtractActionItems)
}

// Summarize handles POST /summarize/:sessionId
// @Summary      Summarize a session
// @Description  Writes the short and long summaries together, or neither
// @Tags         AI
// @Produce      json
// @Param        sessionId  path      string  true  "Session ID (UUID)"
// @Success      200        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Summaries stored"
// @Success      202        {object}  common.SuccessResponse{data=recording.TriggerResponse}  "Task queued"
// @Failure      404        {object}  common.ErrorResponse  "Session not found"
// @Failure      422        {object}  common.ErrorResponse  "Session has no transcript"
// @Failure      502        {object}  common.ErrorResponse  "Model output unusable"
// @Router       /summarize/{sessionId} [post]
func (h *Session) Summarize(c echo.Context) error {
	return h.trigger(c, h.svc.Summarize)
}

func (h *Session) trigger(c echo.Context, run func(ctx context.Context, id uuid.UUID) (*pipeline.Outcome, error)) error {
	id, err := parseUUIDParam(c, "sessionId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	outcome, err := run(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return handleOutcome(h.logger, c, outcome)
}

// ListActionItems handles GET /sessions/:id/action-items
// @Summary      List action items
// @Description  Lists a session's action items by sort position
// @Tags         Action Items
// @Produce      json
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=session.ActionItemListResponse}
// @Failure      404  {object}  common.ErrorResponse  "Session not found"
// @Router       /sessions/{id}/action-items [get]
func (h *Session) ListActionItems(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	items, err := h.svc.ListActionItems(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToActionItemListResponse(id.String(), items))
}

// UpdateActionItem handles PATCH /action-items/:id
// @Summary      Update an action item
// @Description  Edits the title or toggles completion
// @Tags         Action Items
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Action item ID (UUID)"
// @Param        request  body      session.UpdateActionItemRequest  true  "Fields to change"
// @Success      200      {object}  common.SuccessResponse{data=session.ActionItemResponse}
// @Failure      400      {object}  common.ErrorResponse  "Invalid request"
// @Failure      404      {object}  common.ErrorResponse  "Action item not found"
// @Router       /action-items/{id} [patch]
func (h *Session) UpdateActionItem(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req session.UpdateActionItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	item, err := h.svc.UpdateActionItem(c.Request().Context(), id, pipeline.UpdateActionItemInput{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToActionItemResponse(item))
}

// ReorderActionItems handles PUT /sessions/:id/action-items/order
// @Summary      Reorder action items
// @Description  Renumbers positions 1..N; the list must name every item of the session exactly once
// @Tags         Action Items
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Session ID (UUID)"
// @Param        request  body      session.ReorderActionItemsRequest  true  "New order"
// @Success      200      {object}  common.SuccessResponse{data=session.ActionItemListResponse}
// @Failure      400      {object}  common.ErrorResponse  "Invalid ordering"
// @Failure      404      {object}  common.ErrorResponse  "Session not found"
// @Router       /sessions/{id}/action-items/order [put]
func (h *Session) ReorderActionItems(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req session.ReorderActionItemsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ordered := make([]uuid.UUID, len(req.OrderedIDs))
	for i, raw := range req.OrderedIDs {
		ordered[i], _ = uuid.Parse(raw)
	}

	items, err := h.svc.ReorderActionItems(c.Request().Context(), id, ordered)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToActionItemListResponse(id.String(), items))
}
