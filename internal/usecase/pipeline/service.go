package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	aiuse "github.com/johnquangdev/meeting-pipeline/internal/usecase/ai"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/chunk"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/concat"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/task"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
)

// Outcome is the answer to a trigger: an inline result in sync mode, a task
// to poll in async mode
type Outcome struct {
	TaskID *uuid.UUID  `json:"task_id,omitempty"`
	Status task.State  `json:"status"`
	Result interface{} `json:"result,omitempty"`
}

// Queued reports whether the work was handed to a worker
func (o *Outcome) Queued() bool {
	return o.TaskID != nil
}

// Deps are the collaborators of the pipeline service
type Deps struct {
	Recordings    repo.RecordingRepository
	Sessions      repo.MeetingSessionRepository
	ActionItems   repo.ActionItemRepository
	Chunks        *chunk.Store
	Engine        *concat.Engine
	Orchestrator  *task.Orchestrator
	Transcription *aiuse.TranscriptionService
	Extractor     *aiuse.Extractor
	Summarizer    *aiuse.Summarizer
}

// Service is the entry point the HTTP layer and the worker share
type Service struct {
	deps         Deps
	mode         string
	signedURLTTL time.Duration
	logger       *zap.Logger
}

// NewService creates the pipeline service and registers every task kind on
// the orchestrator
func NewService(deps Deps, cfg *config.PipelineConfig, logger *zap.Logger) *Service {
	s := &Service{
		deps:         deps,
		mode:         cfg.ExecutionMode,
		signedURLTTL: cfg.SignedURLTTL,
		logger:       logger,
	}
	if s.mode == "" {
		s.mode = config.ExecutionModeSync
	}
	if s.signedURLTTL <= 0 {
		s.signedURLTTL = time.Hour
	}
	s.registerHandlers()
	return s
}

func (s *Service) registerHandlers() {
	s.deps.Orchestrator.Register(entities.TaskKindConcatenate, task.Handler{
		Run: func(ctx context.Context, id uuid.UUID) (interface{}, error) {
			dir, _ := jobcontext.GetScratchDir(ctx)
			return s.deps.Engine.Concatenate(ctx, id, dir)
		},
		OnFailure: s.deps.Engine.Abandon,
	})
	s.deps.Orchestrator.Register(entities.TaskKindTranscribe, task.Handler{
		Run: func(ctx context.Context, id uuid.UUID) (interface{}, error) {
			dir, _ := jobcontext.GetScratchDir(ctx)
			return s.deps.Transcription.Transcribe(ctx, id, dir)
		},
	})
	s.deps.Orchestrator.Register(entities.TaskKindExtractActionItems, task.Handler{
		Run: func(ctx context.Context, id uuid.UUID) (interface{}, error) {
			return s.deps.Extractor.ExtractForSession(ctx, id)
		},
	})
	s.deps.Orchestrator.Register(entities.TaskKindSummarize, task.Handler{
		Run: func(ctx context.Context, id uuid.UUID) (interface{}, error) {
			return s.deps.Summarizer.SummarizeSession(ctx, id)
		},
	})
}

// Async reports whether long-running steps go through workers
func (s *Service) Async() bool {
	return s.mode == config.ExecutionModeAsync
}

// CreateRecordingInput describes a recording announced by a client
type CreateRecordingInput struct {
	ID               *uuid.UUID
	UserID           *uuid.UUID
	MeetingSessionID *uuid.UUID
}

// CreateRecording registers a pending recording. A client-chosen id is kept.
func (s *Service) CreateRecording(ctx context.Context, in CreateRecordingInput) (*entities.Recording, error) {
	id := uuid.Nil
	if in.ID != nil {
		id = *in.ID
		existing, err := s.deps.Recordings.FindByID(ctx, id)
		if err != nil {
			return nil, errors.ErrDBQueryFailed("find recording", err)
		}
		if existing != nil {
			return nil, errors.ErrAlreadyExists("Recording").WithDetail("recording_id", id.String())
		}
	}
	if in.MeetingSessionID != nil {
		if _, err := s.findSession(ctx, *in.MeetingSessionID); err != nil {
			return nil, err
		}
	}

	rec := entities.NewRecording(id, in.UserID, in.MeetingSessionID)
	if err := s.deps.Recordings.Create(ctx, rec); err != nil {
		return nil, errors.ErrDBQueryFailed("create recording", err)
	}

	if s.logger != nil {
		s.logger.Info("🎙️ Recording created", zap.String("recording_id", rec.ID.String()))
	}
	return rec, nil
}

// GetRecording loads a recording
func (s *Service) GetRecording(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	rec, err := s.deps.Recordings.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find recording", err)
	}
	if rec == nil {
		return nil, errors.ErrRecordingNotFound(id.String())
	}
	return rec, nil
}

// UploadChunk stores one chunk of a recording that has not failed
func (s *Service) UploadChunk(ctx context.Context, recordingID uuid.UUID, seq int, r io.Reader, size int64) (string, error) {
	rec, err := s.GetRecording(ctx, recordingID)
	if err != nil {
		return "", err
	}
	if rec.IsFailed() {
		return "", errors.ErrRecordingTerminal(recordingID.String(), string(rec.ConcatenationStatus))
	}
	return s.deps.Chunks.Put(ctx, recordingID, seq, r, size)
}

// Finalize concatenates a recording's chunks, inline or as a task
func (s *Service) Finalize(ctx context.Context, recordingID uuid.UUID) (*Outcome, error) {
	if s.Async() {
		// reject unknown ids before queueing work for them
		if _, err := s.GetRecording(ctx, recordingID); err != nil {
			return nil, err
		}
	}
	return s.trigger(ctx, task.Job{Kind: entities.TaskKindConcatenate, SubjectID: recordingID})
}

// Transcribe transcribes a session's audio, inline or as a task
func (s *Service) Transcribe(ctx context.Context, sessionID uuid.UUID) (*Outcome, error) {
	return s.triggerForSession(ctx, entities.TaskKindTranscribe, sessionID)
}

// ExtractActionItems re-extracts a session's action items, inline or as a task
func (s *Service) ExtractActionItems(ctx context.Context, sessionID uuid.UUID) (*Outcome, error) {
	return s.triggerForSession(ctx, entities.TaskKindExtractActionItems, sessionID)
}

// Summarize writes a session's summaries, inline or as a task
func (s *Service) Summarize(ctx context.Context, sessionID uuid.UUID) (*Outcome, error) {
	return s.triggerForSession(ctx, entities.TaskKindSummarize, sessionID)
}

func (s *Service) triggerForSession(ctx context.Context, kind entities.TaskKind, sessionID uuid.UUID) (*Outcome, error) {
	if s.Async() {
		if _, err := s.findSession(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return s.trigger(ctx, task.Job{Kind: kind, SubjectID: sessionID})
}

func (s *Service) trigger(ctx context.Context, job task.Job) (*Outcome, error) {
	if s.Async() {
		taskID, err := s.deps.Orchestrator.Submit(ctx, job)
		if err != nil {
			return nil, err
		}
		return &Outcome{TaskID: &taskID, Status: task.StatePending}, nil
	}

	result, err := s.deps.Orchestrator.Run(ctx, job)
	if err != nil {
		return nil, err
	}
	return &Outcome{Status: task.StateSuccess, Result: result}, nil
}

// PollTask reports the state of a submitted task
func (s *Service) PollTask(ctx context.Context, taskID uuid.UUID) (*task.TaskState, error) {
	return s.deps.Orchestrator.Poll(ctx, taskID)
}

func (s *Service) findSession(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	session, err := s.deps.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find meeting session", err)
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound(id.String())
	}
	return session, nil
}
