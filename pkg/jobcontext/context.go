package jobcontext

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-pipeline/errors"
)

type KeyContext string

var (
	keyJobID         KeyContext = "job_id"
	keyJobType       KeyContext = "job_type"
	keyWorkerID      KeyContext = "worker_id"
	keyRetryAttempt  KeyContext = "retry_attempt"
	keyJobStartTime  KeyContext = "job_start_time"
	keyMaxRetries    KeyContext = "max_retries"
	keyRetryInterval KeyContext = "retry_interval"
	keyScratchDir    KeyContext = "scratch_dir"
)

const (
	defaultTimeout       = 5 * time.Minute
	defaultMaxRetries    = 3
	defaultRetryInterval = 5 * time.Second
	maxRetryInterval     = 60 * time.Second
)

// Options tunes a single job execution
type Options struct {
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID        string
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// JobBegin initializes a job context with metadata and timeout.
// Zero option values fall back to a 5 minute timeout and 3 attempts.
func JobBegin(parentCtx context.Context, jobID, jobType string, workerID int, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}

	// Create context with timeout to prevent infinite hanging
	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, opts.MaxRetries)
	ctx = context.WithValue(ctx, keyRetryInterval, opts.RetryInterval)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd executes the job function with panic recovery and bounded retries.
// Only retryable errors are retried, with exponential backoff between attempts.
// Returns error if job fails after all retries
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	var (
		maxRetries = GetMaxRetries(ctx)
		attempt    = GetRetryAttempt(ctx)
		lastErr    error
		finalErr   error
	)

	operation := func() error {
		runCtx := SetRetryAttempt(ctx, attempt)
		attempt++

		err := runSafely(runCtx, jobFunc)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			finalErr = fmt.Errorf("non-retryable error: %w", err)
			return backoff.Permanent(finalErr)
		}
		if attempt >= maxRetries {
			finalErr = fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
			return backoff.Permanent(finalErr)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = GetRetryInterval(ctx)
	bo.MaxInterval = maxRetryInterval
	bo.MaxElapsedTime = 0 // bounded by attempts and the job deadline

	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	if err == nil {
		return nil
	}
	if finalErr != nil {
		return finalErr
	}
	// context expired while waiting for the next attempt
	if lastErr != nil {
		return fmt.Errorf("context cancelled during retry: %w", lastErr)
	}
	return fmt.Errorf("context cancelled before job execution: %w", err)
}

// runSafely runs jobFunc converting a panic into an error
func runSafely(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	// Check if context was cancelled before execution
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (string, bool) {
	jobID, ok := ctx.Value(keyJobID).(string)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok || maxRetries <= 0 {
		return defaultMaxRetries
	}
	return maxRetries
}

// GetRetryInterval extracts the first backoff interval from context
func GetRetryInterval(ctx context.Context) time.Duration {
	interval, ok := ctx.Value(keyRetryInterval).(time.Duration)
	if !ok || interval <= 0 {
		return defaultRetryInterval
	}
	return interval
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// WithScratchDir attaches the job's private working directory
func WithScratchDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, keyScratchDir, dir)
}

// GetScratchDir returns the job's private working directory, if any
func GetScratchDir(ctx context.Context) (string, bool) {
	dir, ok := ctx.Value(keyScratchDir).(string)
	return dir, ok && dir != ""
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry.
// Application errors decide for themselves; anything else is matched on
// well-known transient failure messages (network, deadlock, rate limit, 5xx).
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Retryable()
	}

	if stdErrors.Is(err, context.DeadlineExceeded) || stdErrors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
