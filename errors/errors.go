package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Retryable reports whether the failure is transient (storage, cache, database, upstream API)
func (e AppError) Retryable() bool {
	switch e.Code {
	case ErrorCode_UPLOAD_FAILED,
		ErrorCode_INTEGRATION_CACHE_FAILED,
		ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		ErrorCode_DB_CONNECTION_FAILED,
		ErrorCode_DB_QUERY_FAILED,
		ErrorCode_DB_TRANSACTION_FAILED,
		ErrorCode_CONCATENATION_IN_PROGRESS:
		return true
	}
	return false
}

func newAppError(raw error, httpCode int, code ErrorCode, message string) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTERNAL, "Internal server error")
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, message)
}

func ErrNotFound(resource string) AppError {
	return newAppError(nil, http.StatusNotFound, ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource))
}

func ErrAlreadyExists(resource string) AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_ALREADY_EXISTS, fmt.Sprintf("%s already exists", resource))
}

func ErrConflict(message string) AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_CONFLICT, message)
}

func ErrForbidden(message string) AppError {
	return newAppError(nil, http.StatusForbidden, ErrorCode_FORBIDDEN, message)
}

func ErrInvalidPayload() AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "Invalid payload")
}

// Recording Errors
func ErrRecordingNotFound(recordingID string) AppError {
	return ErrNotFound("Recording").WithDetail("recording_id", recordingID)
}

func ErrRecordingTerminal(recordingID, status string) AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_RECORDING_TERMINAL, "Recording already reached a terminal state").
		WithDetail("recording_id", recordingID).
		WithDetail("status", status)
}

func ErrSessionNotFound(sessionID string) AppError {
	return ErrNotFound("Meeting session").WithDetail("session_id", sessionID)
}

func ErrTaskNotFound(taskID string) AppError {
	return ErrNotFound("Task").WithDetail("task_id", taskID)
}

// Pipeline Errors
func ErrNoChunksFound(recordingID string) AppError {
	return newAppError(nil, http.StatusUnprocessableEntity, ErrorCode_NO_CHUNKS_FOUND, "No chunks found for recording").
		WithDetail("recording_id", recordingID)
}

// ErrConcatenationFailed carries the codec tool's stderr in Details["stderr"]
func ErrConcatenationFailed(recordingID string, err error, stderr string) AppError {
	appErr := newAppError(err, http.StatusInternalServerError, ErrorCode_CONCATENATION_FAILED, "Audio concatenation failed").
		WithDetail("recording_id", recordingID)
	if stderr != "" {
		appErr = appErr.WithDetail("stderr", stderr)
	}
	return appErr
}

func ErrConcatenationInProgress(recordingID string) AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_CONCATENATION_IN_PROGRESS, "Concatenation already running for recording").
		WithDetail("recording_id", recordingID)
}

func ErrUploadFailed(key string, err error) AppError {
	return newAppError(err, http.StatusServiceUnavailable, ErrorCode_UPLOAD_FAILED, "Storage operation failed").
		WithDetail("key", key)
}

func ErrTranscriptionFailed(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_TRANSCRIPTION_FAILED, "Audio transcription failed")
}

func ErrExtractionFailed(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_EXTRACTION_FAILED, "Language model output could not be used")
}

func ErrMissingTranscript(sessionID string) AppError {
	return newAppError(nil, http.StatusUnprocessableEntity, ErrorCode_MISSING_TRANSCRIPT, "Meeting session has no transcript").
		WithDetail("session_id", sessionID)
}

func ErrMissingAudio(sessionID string) AppError {
	return newAppError(nil, http.StatusUnprocessableEntity, ErrorCode_MISSING_RECORDING_URL, "Meeting session has no audio artifact").
		WithDetail("session_id", sessionID)
}

// Integration Errors
func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_CACHE_FAILED,
		fmt.Sprintf("Cache operation failed: %s", operation))
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		fmt.Sprintf("External API call failed: %s", service))
}

// Database Errors
func ErrDBQueryFailed(query string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_QUERY_FAILED, "Database query failed").
		WithDetail("query", query)
}

func ErrDBTransactionFailed(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_TRANSACTION_FAILED, "Database transaction failed")
}
