package task

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/events"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
	"github.com/johnquangdev/meeting-pipeline/pkg/scratch"
)

const (
	sweepBatch     = 50
	publishTimeout = 5 * time.Second
	eventSource    = "task-orchestrator"
)

// errClaimLost means another worker owns the task now
var errClaimLost = stdErrors.New("task claimed by another worker")

// State is what a caller polling a task sees
type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// Job is a unit of pipeline work
type Job struct {
	Kind      entities.TaskKind
	SubjectID uuid.UUID
}

// TaskState is the polled view of a task
type TaskState struct {
	TaskID     uuid.UUID         `json:"task_id"`
	Kind       entities.TaskKind `json:"kind"`
	SubjectID  uuid.UUID         `json:"subject_id"`
	Status     State             `json:"status"`
	Result     json.RawMessage   `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	RetryCount int               `json:"retry_count"`
}

// HandlerFunc runs one attempt of a job. The result must marshal to JSON.
type HandlerFunc func(ctx context.Context, subjectID uuid.UUID) (interface{}, error)

// FailureFunc is told about a job that will not be attempted again
type FailureFunc func(ctx context.Context, subjectID uuid.UUID, err error)

// Handler is what a task kind runs
type Handler struct {
	Run       HandlerFunc
	OnFailure FailureFunc
}

// Options tunes the orchestrator
type Options struct {
	Workers       int
	JobTimeout    time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	PopTimeout    time.Duration
	SweepInterval time.Duration
	StaleAfter    time.Duration
	ScratchRoot   string
}

// OptionsFromConfig maps the WORKER_* and PIPELINE_* settings
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers:       cfg.Worker.Count,
		JobTimeout:    cfg.Worker.JobTimeout,
		MaxRetries:    cfg.Worker.MaxRetries,
		RetryInterval: cfg.Worker.RetryInterval,
		PopTimeout:    cfg.Worker.PopTimeout,
		SweepInterval: cfg.Worker.SweepInterval,
		StaleAfter:    cfg.Worker.StaleAfter,
		ScratchRoot:   cfg.Pipeline.ScratchDir,
	}
}

// Orchestrator persists submitted jobs, hands them to workers and tracks their outcome
type Orchestrator struct {
	tasks      repo.TaskRepository
	dispatcher queue.Dispatcher
	publisher  events.Publisher
	opts       Options
	logger     *zap.Logger

	handlersMu sync.RWMutex
	handlers   map[entities.TaskKind]Handler

	// Worker pool management
	workerMutex         sync.Mutex
	workerStopChan      chan struct{}
	stopPopping         context.CancelFunc
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
}

// NewOrchestrator creates an orchestrator; a nil publisher drops events
func NewOrchestrator(
	tasks repo.TaskRepository,
	dispatcher queue.Dispatcher,
	publisher events.Publisher,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 5 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 10 * time.Minute
	}
	return &Orchestrator{
		tasks:      tasks,
		dispatcher: dispatcher,
		publisher:  publisher,
		opts:       opts,
		logger:     logger,
		handlers:   make(map[entities.TaskKind]Handler),
	}
}

// Register binds a handler to a task kind
func (o *Orchestrator) Register(kind entities.TaskKind, h Handler) {
	o.handlersMu.Lock()
	defer o.handlersMu.Unlock()
	o.handlers[kind] = h
}

func (o *Orchestrator) handler(kind entities.TaskKind) (Handler, bool) {
	o.handlersMu.RLock()
	defer o.handlersMu.RUnlock()
	h, ok := o.handlers[kind]
	return h, ok
}

// Submit records a pending task and queues it for a worker
func (o *Orchestrator) Submit(ctx context.Context, job Job) (uuid.UUID, error) {
	if _, ok := o.handler(job.Kind); !ok {
		return uuid.Nil, errors.ErrInvalidArgument(fmt.Sprintf("unknown task kind %q", job.Kind))
	}

	t := entities.NewTask(job.Kind, job.SubjectID, o.opts.MaxRetries)
	if err := o.tasks.Create(ctx, t); err != nil {
		return uuid.Nil, errors.ErrDBQueryFailed("create task", err)
	}

	// the row is the source of truth; the sweeper re-dispatches ids lost here
	if err := o.dispatcher.Push(ctx, t.ID.String()); err != nil && o.logger != nil {
		o.logger.Warn("⚠️ Failed to dispatch task, sweeper will retry",
			zap.String("task_id", t.ID.String()),
			zap.Error(err),
		)
	}

	if o.logger != nil {
		o.logger.Info("📤 Task submitted",
			zap.String("task_id", t.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("subject_id", job.SubjectID.String()),
		)
	}
	return t.ID, nil
}

// Poll reports a task's state. Running and retrying tasks read as pending.
func (o *Orchestrator) Poll(ctx context.Context, taskID uuid.UUID) (*TaskState, error) {
	t, err := o.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find task", err)
	}
	if t == nil {
		return nil, errors.ErrTaskNotFound(taskID.String())
	}

	state := &TaskState{
		TaskID:     t.ID,
		Kind:       t.Kind,
		SubjectID:  t.SubjectID,
		Status:     StatePending,
		RetryCount: t.RetryCount,
	}
	switch t.Status {
	case entities.TaskStatusSuccess:
		state.Status = StateSuccess
		if len(t.Result) > 0 {
			state.Result = json.RawMessage(t.Result)
		}
	case entities.TaskStatusFailure:
		state.Status = StateFailure
		if t.LastError != nil {
			state.Error = *t.LastError
		}
	}
	return state, nil
}

// Run executes a job in the caller's goroutine with the same timeout, retry
// and scratch handling a worker applies, without persisting a task.
func (o *Orchestrator) Run(ctx context.Context, job Job) (interface{}, error) {
	h, ok := o.handler(job.Kind)
	if !ok {
		return nil, errors.ErrInvalidArgument(fmt.Sprintf("unknown task kind %q", job.Kind))
	}

	t := entities.NewTask(job.Kind, job.SubjectID, o.opts.MaxRetries)
	result, err := o.execute(ctx, 0, t, h, false)
	if err != nil {
		if h.OnFailure != nil {
			h.OnFailure(ctx, job.SubjectID, err)
		}
		return nil, err
	}
	return result, nil
}

// StartWorkerPool starts the workers and the recovery sweeper
func (o *Orchestrator) StartWorkerPool(ctx context.Context) error {
	o.workerMutex.Lock()
	defer o.workerMutex.Unlock()

	if o.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	o.isWorkerPoolRunning = true
	o.workerStopChan = make(chan struct{})
	popCtx, cancel := context.WithCancel(ctx)
	o.stopPopping = cancel

	if o.logger != nil {
		o.logger.Info("🚀 Starting task worker pool",
			zap.Int("worker_count", o.opts.Workers),
		)
	}

	for i := 0; i < o.opts.Workers; i++ {
		o.workerWg.Add(1)
		go o.worker(ctx, popCtx, i)
	}

	// Start recovery routine for lost and zombie tasks
	o.workerWg.Add(1)
	go o.sweeper(ctx)

	return nil
}

// StopWorkerPool stops taking new tasks and waits for running ones to finish
func (o *Orchestrator) StopWorkerPool() error {
	o.workerMutex.Lock()
	defer o.workerMutex.Unlock()

	if !o.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if o.logger != nil {
		o.logger.Info("🛑 Stopping task worker pool...")
	}

	close(o.workerStopChan)
	o.stopPopping()
	o.workerWg.Wait()
	o.isWorkerPoolRunning = false

	if o.logger != nil {
		o.logger.Info("✅ Task worker pool stopped")
	}

	return nil
}

func (o *Orchestrator) worker(parentCtx, popCtx context.Context, workerID int) {
	defer o.workerWg.Done()

	if o.logger != nil {
		o.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-o.workerStopChan:
			if o.logger != nil {
				o.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return
		default:
		}

		id, err := o.dispatcher.Pop(popCtx, o.opts.PopTimeout)
		if err != nil {
			if popCtx.Err() != nil {
				o.pause(o.opts.PopTimeout) // returns at once when stopping
				continue
			}
			if o.logger != nil {
				o.logger.Error("❌ Failed to pop task",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
			}
			o.pause(o.opts.PopTimeout)
			continue
		}
		if id == "" {
			continue
		}

		o.process(parentCtx, workerID, id)
	}
}

// pause waits for d unless the pool is stopping
func (o *Orchestrator) pause(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-o.workerStopChan:
	}
}

// process claims one task, runs it and records the outcome
func (o *Orchestrator) process(ctx context.Context, workerID int, rawID string) {
	taskID, err := uuid.Parse(rawID)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("⚠️ Dropping malformed task id", zap.String("task_id", rawID))
		}
		return
	}

	t, err := o.tasks.FindByID(ctx, taskID)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Failed to load task", zap.String("task_id", rawID), zap.Error(err))
		}
		return
	}
	if t == nil || t.IsTerminal() {
		return
	}

	h, ok := o.handler(t.Kind)
	if !ok {
		o.fail(ctx, t, fmt.Errorf("no handler registered for task kind %q", t.Kind))
		return
	}

	claimed, err := o.tasks.Claim(ctx, t.ID)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Failed to claim task", zap.String("task_id", rawID), zap.Error(err))
		}
		return
	}
	if !claimed {
		if o.logger != nil {
			o.logger.Info("⏭️ Task already claimed by another worker", zap.String("task_id", rawID))
		}
		return
	}

	if o.logger != nil {
		o.logger.Info("👷 Worker claimed task",
			zap.Int("worker_id", workerID),
			zap.String("task_id", rawID),
			zap.String("kind", string(t.Kind)),
			zap.String("subject_id", t.SubjectID.String()),
		)
	}

	result, err := o.execute(ctx, workerID, t, h, true)
	if stdErrors.Is(err, errClaimLost) {
		if o.logger != nil {
			o.logger.Warn("⏭️ Task taken over during retry", zap.String("task_id", rawID))
		}
		return
	}
	if err != nil {
		if h.OnFailure != nil {
			h.OnFailure(ctx, t.SubjectID, err)
		}
		o.fail(ctx, t, err)
		return
	}

	o.succeed(ctx, t, result)
}

// execute runs every attempt of t inside one scratch directory
func (o *Orchestrator) execute(ctx context.Context, workerID int, t *entities.Task, h Handler, persisted bool) (interface{}, error) {
	var result interface{}

	err := scratch.Do(o.opts.ScratchRoot, "task-*", func(dir string) error {
		jobCtx, cancel := jobcontext.JobBegin(ctx, t.ID.String(), string(t.Kind), workerID, jobcontext.Options{
			Timeout:       o.opts.JobTimeout,
			MaxRetries:    t.MaxRetries,
			RetryInterval: o.opts.RetryInterval,
		})
		defer cancel()
		jobCtx = jobcontext.WithScratchDir(jobCtx, dir)

		markedRetrying := false
		return jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
			attempt := jobcontext.GetRetryAttempt(ctx)
			if persisted && markedRetrying {
				ok, err := o.tasks.Claim(ctx, t.ID)
				if err != nil {
					return errors.ErrDBQueryFailed("claim task", err)
				}
				if !ok {
					return errClaimLost
				}
				markedRetrying = false
			}

			res, err := h.Run(ctx, t.SubjectID)
			if err == nil {
				result = res
				return nil
			}

			if persisted && jobcontext.IsRetryableError(err) && attempt+1 < jobcontext.GetMaxRetries(ctx) {
				if markErr := o.tasks.MarkRetrying(ctx, t.ID, err.Error()); markErr != nil {
					if o.logger != nil {
						o.logger.Warn("⚠️ Failed to mark task retrying",
							zap.String("task_id", t.ID.String()),
							zap.Error(markErr),
						)
					}
				} else {
					markedRetrying = true
				}
			}

			if o.logger != nil {
				meta := jobcontext.GetJobMetadata(ctx)
				o.logger.Warn("🔁 Task attempt failed",
					zap.String("task_id", meta.JobID),
					zap.String("kind", meta.JobType),
					zap.Int("worker_id", meta.WorkerID),
					zap.Int("attempt", meta.RetryAttempt+1),
					zap.Int("max_attempts", meta.MaxRetries),
					zap.Duration("elapsed", time.Since(meta.StartTime)),
					zap.Error(err),
				)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) succeed(ctx context.Context, t *entities.Task, result interface{}) {
	var payload datatypes.JSON
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			o.fail(ctx, t, fmt.Errorf("failed to encode task result: %w", err))
			return
		}
		payload = datatypes.JSON(raw)
	}

	if err := o.tasks.MarkSucceeded(ctx, t.ID, payload); err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Failed to record task success", zap.String("task_id", t.ID.String()), zap.Error(err))
		}
		return
	}

	if o.logger != nil {
		o.logger.Info("✅ Task completed successfully",
			zap.String("task_id", t.ID.String()),
			zap.String("kind", string(t.Kind)),
		)
	}
	o.publish(ctx, events.TaskSucceeded, t, map[string]interface{}{
		"result": json.RawMessage(payload),
	})
}

func (o *Orchestrator) fail(ctx context.Context, t *entities.Task, cause error) {
	if o.logger != nil {
		o.logger.Error("❌ Task failed",
			zap.String("task_id", t.ID.String()),
			zap.String("kind", string(t.Kind)),
			zap.String("subject_id", t.SubjectID.String()),
			zap.Error(cause),
		)
	}

	if err := o.tasks.MarkFailed(ctx, t.ID, cause.Error()); err != nil && o.logger != nil {
		o.logger.Error("❌ Failed to record task failure", zap.String("task_id", t.ID.String()), zap.Error(err))
	}
	o.publish(ctx, events.TaskFailed, t, map[string]interface{}{
		"error": cause.Error(),
	})
}

func (o *Orchestrator) publish(ctx context.Context, eventType events.EventType, t *entities.Task, data map[string]interface{}) {
	data["task_id"] = t.ID.String()
	data["kind"] = string(t.Kind)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	// failures are logged by the publisher
	_ = o.publisher.Publish(pubCtx, events.NewEvent(eventType, eventSource, t.SubjectID.String(), data))
}

// sweeper periodically recovers lost and zombie tasks
func (o *Orchestrator) sweeper(parentCtx context.Context) {
	defer o.workerWg.Done()

	ticker := time.NewTicker(o.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.workerStopChan:
			return
		case <-ticker.C:
			o.sweep(parentCtx)
		}
	}
}

// sweep re-dispatches pending tasks nobody picked up and resets tasks whose
// worker died mid-run
func (o *Orchestrator) sweep(ctx context.Context) {
	now := time.Now()

	pending, err := o.tasks.ListStale(ctx, entities.TaskStatusPending, now.Add(-o.opts.StaleAfter), sweepBatch)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Failed to list stale pending tasks", zap.Error(err))
		}
	}
	for _, t := range pending {
		if err := o.tasks.Touch(ctx, t.ID); err != nil {
			continue
		}
		if o.logger != nil {
			o.logger.Info("🔁 Re-dispatching stale task", zap.String("task_id", t.ID.String()))
		}
		o.redispatch(ctx, t.ID)
	}

	stuckAfter := o.opts.StaleAfter
	if o.opts.JobTimeout > stuckAfter {
		stuckAfter = o.opts.JobTimeout
	}
	for _, status := range []entities.TaskStatus{entities.TaskStatusRunning, entities.TaskStatusRetrying} {
		stuck, err := o.tasks.ListStale(ctx, status, now.Add(-stuckAfter), sweepBatch)
		if err != nil {
			if o.logger != nil {
				o.logger.Error("❌ Failed to list stuck tasks", zap.String("status", string(status)), zap.Error(err))
			}
			continue
		}
		for _, t := range stuck {
			ok, err := o.tasks.Reset(ctx, t.ID)
			if err != nil || !ok {
				continue
			}
			if o.logger != nil {
				o.logger.Warn("🧹 Cleaning up zombie task",
					zap.String("task_id", t.ID.String()),
					zap.Time("updated_at", t.UpdatedAt),
				)
			}
			o.redispatch(ctx, t.ID)
		}
	}
}

func (o *Orchestrator) redispatch(ctx context.Context, id uuid.UUID) {
	if err := o.dispatcher.Push(ctx, id.String()); err != nil && o.logger != nil {
		o.logger.Error("❌ Failed to re-dispatch task", zap.String("task_id", id.String()), zap.Error(err))
	}
}
