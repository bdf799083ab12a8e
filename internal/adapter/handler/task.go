package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
)

// Task handles task polling
type Task struct {
	svc    *pipeline.Service
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(svc *pipeline.Service, logger *zap.Logger) *Task {
	return &Task{svc: svc, logger: logger}
}

// GetTask handles GET /tasks/:id
// @Summary      Poll a task
// @Description  Running and retrying tasks read as pending; failures carry the stored error message
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=recording.TaskResponse}
// @Failure      400  {object}  common.ErrorResponse  "Invalid task ID"
// @Failure      404  {object}  common.ErrorResponse  "Task not found"
// @Router       /tasks/{id} [get]
func (h *Task) GetTask(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	state, err := h.svc.PollTask(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(state))
}
