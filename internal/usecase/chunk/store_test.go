package chunk

import (
	"context"
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-pipeline/pkg/natsort"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	backend, err := storage.NewLocalBackend(t.TempDir(), "http://localhost", "secret")
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	return NewStore(backend, nil)
}

func TestStore_PutAndListKeysReverseOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := uuid.New()

	for _, seq := range []int{10, 2, 1, 0} {
		if _, err := s.Put(ctx, id, seq, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("put %d: %v", seq, err)
		}
	}

	keys, err := s.ListKeys(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ordered := natsort.Order(keys)
	want := []string{Key(id, 0), Key(id, 1), Key(id, 2), Key(id, 10)}
	for i := range want {
		if ordered[i] != want[i] {
			t.Fatalf("position %d: got %s want %s", i, ordered[i], want[i])
		}
	}
}

func TestStore_ListIgnoresManifestAndArtifact(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := uuid.New()

	_, _ = s.Put(ctx, id, 0, strings.NewReader("x"), 1)
	_ = s.Backend().Put(ctx, ManifestKey(id), strings.NewReader("file 'x'"), -1, "text/plain")
	_ = s.Backend().Put(ctx, ArtifactKey(id), strings.NewReader("mp3"), -1, "audio/mpeg")

	keys, err := s.ListKeys(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0] != Key(id, 0) {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestStore_RecordingsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a, b := uuid.New(), uuid.New()

	_, _ = s.Put(ctx, a, 0, strings.NewReader("a"), 1)
	_, _ = s.Put(ctx, b, 0, strings.NewReader("b"), 1)

	keys, _ := s.ListKeys(ctx, a)
	if len(keys) != 1 || keys[0] != Key(a, 0) {
		t.Fatalf("listing leaked other recordings: %v", keys)
	}
}

func TestStore_EmptyRecording(t *testing.T) {
	keys, err := newStore(t).ListKeys(context.Background(), uuid.New())
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected no keys, got %v (%v)", keys, err)
	}
}

func TestStore_NegativeSequenceRejected(t *testing.T) {
	_, err := newStore(t).Put(context.Background(), uuid.New(), -1, strings.NewReader("x"), 1)
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_INVALID_ARGUMENT {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestStore_DeleteChunks(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := uuid.New()
	for seq := 0; seq < 3; seq++ {
		_, _ = s.Put(ctx, id, seq, strings.NewReader("x"), 1)
	}
	_ = s.Backend().Put(ctx, ArtifactKey(id), strings.NewReader("mp3"), -1, "audio/mpeg")

	removed, err := s.DeleteChunks(ctx, id)
	if err != nil || removed != 3 {
		t.Fatalf("expected 3 removed, got %d (%v)", removed, err)
	}
	objs, _ := s.Backend().List(ctx, Prefix(id))
	if len(objs) != 1 || objs[0].Key != ArtifactKey(id) {
		t.Fatalf("artifact must survive chunk deletion: %+v", objs)
	}
}

func TestIsChunkKey(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	if !IsChunkKey(id, Key(id, 7)) {
		t.Fatalf("expected chunk key to match")
	}
	if IsChunkKey(id, Key(other, 7)) {
		t.Fatalf("other recording's chunk must not match")
	}
	if IsChunkKey(id, ManifestKey(id)) {
		t.Fatalf("manifest must not match")
	}
}
