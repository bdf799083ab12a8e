package pipeline

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

type fakeRecordings struct {
	mu         sync.Mutex
	recordings map[uuid.UUID]*entities.Recording
}

func (f *fakeRecordings) Create(ctx context.Context, r *entities.Recording) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.recordings[r.ID] = &cp
	return nil
}

func (f *fakeRecordings) FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recordings[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordings) MarkConcatenated(ctx context.Context, result repo.ConcatenationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recordings[result.RecordingID]
	if !ok {
		return entities.ErrRecordingNotFound
	}
	r.ConcatenationStatus = entities.ConcatenationStatusSuccess
	r.FileName = result.FileName
	r.ConcatenationFileName = result.ManifestName
	return nil
}

func (f *fakeRecordings) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.recordings[id]; ok && r.ConcatenationStatus == entities.ConcatenationStatusPending {
		r.ConcatenationStatus = entities.ConcatenationStatusFailed
		r.ErrorMessage = &message
	}
	return nil
}

type fakeSessions struct {
	sessions map[uuid.UUID]*entities.MeetingSession
}

func (f *fakeSessions) Create(ctx context.Context, s *entities.MeetingSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	return nil
}

func (f *fakeSessions) UpdateSummaries(ctx context.Context, id uuid.UUID, short, long string) error {
	return nil
}

type fakeItems struct {
	items map[uuid.UUID]*entities.ActionItem
}

func (f *fakeItems) ReplaceForSession(ctx context.Context, sessionID uuid.UUID, items []*entities.ActionItem) error {
	for _, item := range items {
		f.items[item.ID] = item
	}
	return nil
}

func (f *fakeItems) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error) {
	var out []*entities.ActionItem
	for _, item := range f.items {
		if item.MeetingSessionID == sessionID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortPosition < out[j].SortPosition })
	return out, nil
}

func (f *fakeItems) FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItems) Update(ctx context.Context, item *entities.ActionItem) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) Reorder(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) error {
	current, _ := f.ListBySession(ctx, sessionID)
	if len(current) != len(orderedIDs) {
		return entities.ErrInvalidOrdering
	}
	for _, id := range orderedIDs {
		item, ok := f.items[id]
		if !ok || item.MeetingSessionID != sessionID {
			return entities.ErrInvalidOrdering
		}
	}
	for i, id := range orderedIDs {
		f.items[id].SortPosition = i + 1
	}
	return nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
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
	return false, nil
}

func (f *fakeTasks) MarkRetrying(ctx context.Context, id uuid.UUID, errMsg string) error {
	return nil
}

func (f *fakeTasks) MarkSucceeded(ctx context.Context, id uuid.UUID, result datatypes.JSON) error {
	return nil
}

func (f *fakeTasks) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return nil
}

func (f *fakeTasks) ListStale(ctx context.Context, status entities.TaskStatus, before time.Time, limit int) ([]entities.Task, error) {
	return nil, nil
}

func (f *fakeTasks) Touch(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeTasks) Reset(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

// catTranscoder concatenates the manifest entries and copies on transcode
type catTranscoder struct{}

func (catTranscoder) ConcatLosslessly(ctx context.Context, manifestPath, outputPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	var out []byte
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		p := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, data...)
	}
	return os.WriteFile(outputPath, out, 0o644)
}

func (catTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
