package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	recordingHandler *Recording
	taskHandler      *Task
	sessionHandler   *Session
	filesHandler     *Files // nil unless storage is local
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, recordingHandler *Recording, taskHandler *Task, sessionHandler *Session, filesHandler *Files) *Router {
	return &Router{
		cfg:              cfg,
		recordingHandler: recordingHandler,
		taskHandler:      taskHandler,
		sessionHandler:   sessionHandler,
		filesHandler:     filesHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.GET("/health", rt.healthCheck)

	rt.setupRecordingRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupSessionRoutes(v1)
	rt.setupFileRoutes(v1)
}

// setupRecordingRoutes configures chunk ingestion and concatenation routes
func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	g.POST("/recordings", rt.recordingHandler.CreateRecording)
	g.GET("/recordings/:id", rt.recordingHandler.GetRecording)
	g.POST("/chunks", rt.recordingHandler.UploadChunk)
	g.POST("/finalize", rt.recordingHandler.Finalize)
}

func (rt *Router) setupTaskRoutes(g *echo.Group) {
	g.GET("/tasks/:id", rt.taskHandler.GetTask)
}

// setupSessionRoutes configures AI triggers, session reads and action item upkeep
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	g.POST("/transcribe/:sessionId", rt.sessionHandler.Transcribe)
	g.POST("/extract-action-items/:sessionId", rt.sessionHandler.ExtractActionItems)
	g.POST("/summarize/:sessionId", rt.sessionHandler.Summarize)

	g.GET("/sessions/:id", rt.sessionHandler.GetSession)
	g.GET("/sessions/:id/action-items", rt.sessionHandler.ListActionItems)
	g.PUT("/sessions/:id/action-items/order", rt.sessionHandler.ReorderActionItems)
	g.PATCH("/action-items/:id", rt.sessionHandler.UpdateActionItem)
}

// setupFileRoutes serves signed downloads; remote backends sign their own URLs
func (rt *Router) setupFileRoutes(g *echo.Group) {
	if rt.filesHandler == nil {
		return
	}
	g.GET("/files/*", rt.filesHandler.Download)
}

// healthCheck returns health status
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  common.HealthResponse
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, common.HealthResponse{
		Status:        "ok",
		Environment:   rt.cfg.Server.Environment,
		ExecutionMode: rt.cfg.Pipeline.ExecutionMode,
		StorageType:   rt.cfg.Storage.Type,
	})
}
