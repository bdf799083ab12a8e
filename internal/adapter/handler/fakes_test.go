package handler

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
)

type memRecordings struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entities.Recording
}

func (m *memRecordings) Create(ctx context.Context, r *entities.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRecordings) FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memRecordings) MarkConcatenated(ctx context.Context, result repo.ConcatenationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[result.RecordingID]
	if !ok {
		return entities.ErrRecordingNotFound
	}
	r.ConcatenationStatus = entities.ConcatenationStatusSuccess
	r.FileName = result.FileName
	r.ConcatenationFileName = result.ManifestName
	return nil
}

func (m *memRecordings) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		r.ConcatenationStatus = entities.ConcatenationStatusFailed
		r.ErrorMessage = &message
	}
	return nil
}

type memSessions struct {
	byID map[uuid.UUID]*entities.MeetingSession
}

func (m *memSessions) Create(ctx context.Context, s *entities.MeetingSession) error {
	m.byID[s.ID] = s
	return nil
}

func (m *memSessions) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	return nil
}

func (m *memSessions) UpdateSummaries(ctx context.Context, id uuid.UUID, short, long string) error {
	return nil
}

type memItems struct {
	byID map[uuid.UUID]*entities.ActionItem
}

func (m *memItems) ReplaceForSession(ctx context.Context, sessionID uuid.UUID, items []*entities.ActionItem) error {
	for _, item := range items {
		m.byID[item.ID] = item
	}
	return nil
}

func (m *memItems) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error) {
	out := []*entities.ActionItem{}
	for _, item := range m.byID {
		if item.MeetingSessionID == sessionID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortPosition < out[j].SortPosition })
	return out, nil
}

func (m *memItems) FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	item, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *memItems) Update(ctx context.Context, item *entities.ActionItem) error {
	cp := *item
	m.byID[item.ID] = &cp
	return nil
}

func (m *memItems) Reorder(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) error {
	current, _ := m.ListBySession(ctx, sessionID)
	if len(current) != len(orderedIDs) {
		return entities.ErrInvalidOrdering
	}
	for _, id := range orderedIDs {
		item, ok := m.byID[id]
		if !ok || item.MeetingSessionID != sessionID {
			return entities.ErrInvalidOrdering
		}
	}
	for i, id := range orderedIDs {
		m.byID[id].SortPosition = i + 1
	}
	return nil
}

// memTasks is only read by polling; sync mode never writes tasks
type memTasks struct {
	byID map[uuid.UUID]*entities.Task
}

func (m *memTasks) Create(ctx context.Context, t *entities.Task) error {
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTasks) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Claim(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil }

func (m *memTasks) MarkRetrying(ctx context.Context, id uuid.UUID, errMsg string) error { return nil }

func (m *memTasks) MarkSucceeded(ctx context.Context, id uuid.UUID, result datatypes.JSON) error {
	return nil
}

func (m *memTasks) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error { return nil }

func (m *memTasks) ListStale(ctx context.Context, status entities.TaskStatus, before time.Time, limit int) ([]entities.Task, error) {
	return nil, nil
}

func (m *memTasks) Touch(ctx context.Context, id uuid.UUID) error { return nil }

func (m *memTasks) Reset(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil }

// joinTranscoder appends the manifest entries instead of running ffmpeg
type joinTranscoder struct{}

func (joinTranscoder) ConcatLosslessly(ctx context.Context, manifestPath, outputPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	var out []byte
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		data, err := os.ReadFile(strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'"))
		if err != nil {
			return err
		}
		out = append(out, data...)
	}
	return os.WriteFile(outputPath, out, 0o644)
}

func (joinTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
