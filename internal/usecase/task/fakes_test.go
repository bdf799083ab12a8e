package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/events"
)

type fakeTasks struct {
	mu           sync.Mutex
	tasks        map[uuid.UUID]*entities.Task
	retryingMark int
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]*entities.Task{}}
}

func (f *fakeTasks) Create(ctx context.Context, t *entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTasks) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || (t.Status != entities.TaskStatusPending && t.Status != entities.TaskStatusRetrying) {
		return false, nil
	}
	now := time.Now()
	t.Status = entities.TaskStatusRunning
	t.StartedAt = &now
	t.UpdatedAt = now
	return true, nil
}

func (f *fakeTasks) MarkRetrying(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[id]
	t.Status = entities.TaskStatusRetrying
	t.RetryCount++
	t.LastError = &errMsg
	t.UpdatedAt = time.Now()
	f.retryingMark++
	return nil
}

func (f *fakeTasks) MarkSucceeded(ctx context.Context, id uuid.UUID, result datatypes.JSON) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[id]
	now := time.Now()
	t.Status = entities.TaskStatusSuccess
	t.Result = result
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

func (f *fakeTasks) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[id]
	now := time.Now()
	t.Status = entities.TaskStatusFailure
	t.LastError = &errMsg
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

func (f *fakeTasks) ListStale(ctx context.Context, status entities.TaskStatus, before time.Time, limit int) ([]entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Task
	for _, t := range f.tasks {
		if t.Status == status && t.UpdatedAt.Before(before) && len(out) < limit {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Touch(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[id].UpdatedAt = time.Now()
	return nil
}

func (f *fakeTasks) Reset(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[id]
	if t.Status != entities.TaskStatusRunning && t.Status != entities.TaskStatusRetrying {
		return false, nil
	}
	t.Status = entities.TaskStatusPending
	t.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeTasks) set(id uuid.UUID, status entities.TaskStatus, updatedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[id].Status = status
	f.tasks[id].UpdatedAt = updatedAt
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
