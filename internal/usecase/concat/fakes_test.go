package concat

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/transcoder"
)

type fakeRecordings struct {
	mu         sync.Mutex
	recordings map[uuid.UUID]*entities.Recording
	sessions   map[uuid.UUID]string // session id -> audio_url
	concatCall int
}

func newFakeRecordings() *fakeRecordings {
	return &fakeRecordings{
		recordings: map[uuid.UUID]*entities.Recording{},
		sessions:   map[uuid.UUID]string{},
	}
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
	f.concatCall++
	r, ok := f.recordings[result.RecordingID]
	if !ok {
		return entities.ErrRecordingNotFound
	}
	if r.IsFailed() {
		return entities.ErrRecordingTerminal
	}
	r.ConcatenationStatus = entities.ConcatenationStatusSuccess
	r.FileName = result.FileName
	r.ConcatenationFileName = result.ManifestName
	r.ErrorMessage = nil
	if r.MeetingSessionID != nil {
		f.sessions[*r.MeetingSessionID] = result.FileName
	}
	return nil
}

func (f *fakeRecordings) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recordings[id]
	if !ok || r.ConcatenationStatus != entities.ConcatenationStatusPending {
		return nil
	}
	r.ConcatenationStatus = entities.ConcatenationStatusFailed
	r.ErrorMessage = &message
	return nil
}

func (f *fakeRecordings) status(id uuid.UUID) entities.ConcatenationStatus {
	r, _ := f.FindByID(context.Background(), id)
	return r.ConcatenationStatus
}

// fakeTranscoder joins manifest entries byte for byte and copies on transcode
type fakeTranscoder struct {
	manifest  string
	concatErr error
	transcode int
}

func (f *fakeTranscoder) ConcatLosslessly(ctx context.Context, manifestPath, outputPath string) error {
	if f.concatErr != nil {
		return f.concatErr
	}
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	f.manifest = string(raw)

	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSuffix(strings.TrimPrefix(sc.Text(), "file '"), "'")
		p := strings.ReplaceAll(line, `'\''`, "'")
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out.Write(data)
	}
	return os.WriteFile(outputPath, out.Bytes(), 0o644)
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	f.transcode++
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

var _ transcoder.Transcoder = (*fakeTranscoder)(nil)

// remoteOnly hides LocalPather so the engine downloads chunks like it would from S3
type remoteOnly struct {
	storage.Backend
}
