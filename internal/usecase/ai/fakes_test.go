package ai

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.MeetingSession
	updates  int
}

func newFakeSessions(sessions ...*entities.MeetingSession) *fakeSessions {
	f := &fakeSessions{sessions: map[uuid.UUID]*entities.MeetingSession{}}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Create(ctx context.Context, s *entities.MeetingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return entities.ErrSessionNotFound
	}
	now := time.Now()
	s.Transcript = &transcript
	s.TranscriptUpdatedAt = &now
	f.updates++
	return nil
}

func (f *fakeSessions) UpdateSummaries(ctx context.Context, id uuid.UUID, short, long string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return entities.ErrSessionNotFound
	}
	now := time.Now()
	s.ShortSummary = &short
	s.LongSummary = &long
	s.SummariesUpdatedAt = &now
	f.updates++
	return nil
}

type fakeItems struct {
	mu       sync.Mutex
	items    map[uuid.UUID][]*entities.ActionItem
	replaced int
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: map[uuid.UUID][]*entities.ActionItem{}}
}

func (f *fakeItems) ReplaceForSession(ctx context.Context, sessionID uuid.UUID, items []*entities.ActionItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[sessionID] = items
	f.replaced++
	return nil
}

func (f *fakeItems) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.ActionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[sessionID], nil
}

func (f *fakeItems) FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	return nil, nil
}

func (f *fakeItems) Update(ctx context.Context, item *entities.ActionItem) error {
	return nil
}

func (f *fakeItems) Reorder(ctx context.Context, sessionID uuid.UUID, orderedIDs []uuid.UUID) error {
	return nil
}

// scriptedModel replies with one scripted answer per call
type scriptedModel struct {
	mu      sync.Mutex
	replies []reply
	calls   []scriptedCall
}

type reply struct {
	content string
	err     error
}

type scriptedCall struct {
	messages []pkgai.Message
	format   *pkgai.ResponseFormat
}

func (m *scriptedModel) Complete(ctx context.Context, messages []pkgai.Message, format *pkgai.ResponseFormat) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, scriptedCall{messages: messages, format: format})
	if len(m.replies) == 0 {
		return "", nil
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r.content, r.err
}

// fakeTranscriber records the audio it was handed
type fakeTranscriber struct {
	text    string
	err     error
	path    string
	content []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.path = audioPath
	f.content, _ = os.ReadFile(audioPath)
	return f.text, f.err
}

func strPtr(s string) *string {
	return &s
}
