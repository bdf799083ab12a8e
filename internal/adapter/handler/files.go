package handler

import (
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
)

// Files serves signed downloads from the local storage backend
type Files struct {
	backend *storage.LocalBackend
	logger  *zap.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(backend *storage.LocalBackend, logger *zap.Logger) *Files {
	return &Files{backend: backend, logger: logger}
}

// Download handles GET /files/*
// @Summary      Download a stored file
// @Description  Serves an object of the local backend when expires and signature match
// @Tags         Files
// @Produce      octet-stream
// @Param        key        path      string  true  "Object key"
// @Param        expires    query     int     true  "Unix expiry"
// @Param        signature  query     string  true  "HMAC signature"
// @Success      200        {file}    binary
// @Failure      403        {object}  common.ErrorResponse  "Signature invalid or expired"
// @Failure      404        {object}  common.ErrorResponse  "File not found"
// @Router       /files/{key} [get]
func (h *Files) Download(c echo.Context) error {
	key := c.Param("*")
	expires, err := strconv.ParseInt(c.QueryParam("expires"), 10, 64)
	if err != nil || !h.backend.VerifySignedKey(key, expires, c.QueryParam("signature")) {
		if h.logger != nil {
			h.logger.Warn("⚠️ Rejected file download", zap.String("key", key))
		}
		return HandleError(h.logger, c, errors.ErrForbidden("Signature invalid or expired"))
	}

	p, err := h.backend.LocalPath(key)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if _, err := os.Stat(p); err != nil {
		return HandleError(h.logger, c, errors.ErrNotFound("File").WithDetail("key", key))
	}
	return c.File(p)
}
