package ai

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
)

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		t.Fatalf("expected AppError %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected %s, got %s (%v)", code, appErr.Code, err)
	}
}

func newBackend(t *testing.T) *storage.LocalBackend {
	t.Helper()
	backend, err := storage.NewLocalBackend(t.TempDir(), "http://localhost:8080/files", "secret")
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	return backend
}

func TestTranscribe_StoresTranscript(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	audio := []byte("ID3-mp3-bytes")
	if err := backend.Put(ctx, "recordings/r1/final.mp3", bytes.NewReader(audio), int64(len(audio)), "audio/mpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}

	session := &entities.MeetingSession{ID: uuid.New(), AudioURL: strPtr("recordings/r1/final.mp3")}
	sessions := newFakeSessions(session)
	transcriber := &fakeTranscriber{text: "hello team"}
	scratchDir := t.TempDir()
	svc := NewTranscriptionService(sessions, backend, transcriber, t.TempDir(), nil)

	result, err := svc.Transcribe(ctx, session.ID, scratchDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Length != len("hello team") {
		t.Fatalf("unexpected length %d", result.Length)
	}
	if !bytes.Equal(transcriber.content, audio) {
		t.Fatalf("transcriber saw %q", transcriber.content)
	}
	if !strings.HasPrefix(transcriber.path, scratchDir) {
		t.Fatalf("audio downloaded outside scratch dir: %s", transcriber.path)
	}
	if _, err := os.Stat(transcriber.path); !os.IsNotExist(err) {
		t.Fatalf("temp audio file not removed")
	}
	stored, _ := sessions.FindByID(ctx, session.ID)
	if !stored.HasTranscript() || *stored.Transcript != "hello team" {
		t.Fatalf("transcript not stored: %+v", stored)
	}
}

func TestTranscribe_FailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	_ = backend.Put(ctx, "a.mp3", strings.NewReader("x"), 1, "audio/mpeg")

	session := &entities.MeetingSession{ID: uuid.New(), AudioURL: strPtr("a.mp3"), Transcript: strPtr("old")}
	sessions := newFakeSessions(session)
	transcriber := &fakeTranscriber{err: errors.ErrTranscriptionFailed(fmt.Errorf("bad audio"))}
	svc := NewTranscriptionService(sessions, backend, transcriber, t.TempDir(), nil)

	_, err := svc.Transcribe(ctx, session.ID, "")
	assertCode(t, err, errors.ErrorCode_TRANSCRIPTION_FAILED)
	if sessions.updates != 0 {
		t.Fatalf("session must not be written on failure")
	}
	if _, err := os.Stat(transcriber.path); !os.IsNotExist(err) {
		t.Fatalf("temp audio file not removed on failure")
	}
}

func TestTranscribe_Preconditions(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	noAudio := &entities.MeetingSession{ID: uuid.New()}
	gone := &entities.MeetingSession{ID: uuid.New(), AudioURL: strPtr("missing.mp3")}
	sessions := newFakeSessions(noAudio, gone)
	transcriber := &fakeTranscriber{text: "unused"}
	svc := NewTranscriptionService(sessions, backend, transcriber, t.TempDir(), nil)

	_, err := svc.Transcribe(ctx, uuid.New(), "")
	assertCode(t, err, errors.ErrorCode_NOT_FOUND)

	_, err = svc.Transcribe(ctx, noAudio.ID, "")
	assertCode(t, err, errors.ErrorCode_MISSING_RECORDING_URL)

	_, err = svc.Transcribe(ctx, gone.ID, "")
	assertCode(t, err, errors.ErrorCode_NOT_FOUND)

	if transcriber.path != "" {
		t.Fatalf("transcriber must not be called")
	}
}

func TestExtractForSession_ReplacesItems(t *testing.T) {
	ctx := context.Background()
	session := &entities.MeetingSession{ID: uuid.New(), Transcript: strPtr("Lan will send the deck.")}
	items := newFakeItems()
	model := &scriptedModel{replies: []reply{{content: `{"action_items":[
		{"summary":"Send deck","details":"Q3 deck","assignee":"Lan"},
		{"summary":"Review deck","details":"","assignee":"Minh"}]}`}}}
	extractor := NewExtractor(model, newFakeSessions(session), items, nil)

	result, err := extractor.ExtractForSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := items.items[session.ID]
	if len(result.ActionItems) != 2 || len(stored) != 2 {
		t.Fatalf("expected 2 items, got %d/%d", len(result.ActionItems), len(stored))
	}
	for i, item := range stored {
		if item.MeetingSessionID != session.ID || item.SortPosition != i+1 || item.ID == uuid.Nil {
			t.Fatalf("bad item %+v", item)
		}
	}
	call := model.calls[0]
	if call.format == nil || call.format.Type != "json_schema" || call.format.JSONSchema.Name != "action_items" {
		t.Fatalf("expected the action item schema, got %+v", call.format)
	}
	if !strings.Contains(call.messages[1].Content, "Lan will send the deck.") {
		t.Fatalf("transcript not sent: %q", call.messages[1].Content)
	}
}

func TestExtractForSession_MalformedKeepsExistingItems(t *testing.T) {
	ctx := context.Background()
	session := &entities.MeetingSession{ID: uuid.New(), Transcript: strPtr("t")}
	items := newFakeItems()
	existing := []*entities.ActionItem{entities.NewActionItem(session.ID, "keep me")}
	items.items[session.ID] = existing
	model := &scriptedModel{replies: []reply{{content: `{"action_items":[{"summary":"x"}]}`}}}
	extractor := NewExtractor(model, newFakeSessions(session), items, nil)

	_, err := extractor.ExtractForSession(ctx, session.ID)
	assertCode(t, err, errors.ErrorCode_EXTRACTION_FAILED)
	if items.replaced != 0 || len(items.items[session.ID]) != 1 {
		t.Fatalf("existing items must survive a rejected response")
	}
}

func TestExtractForSession_MissingTranscript(t *testing.T) {
	session := &entities.MeetingSession{ID: uuid.New()}
	model := &scriptedModel{}
	extractor := NewExtractor(model, newFakeSessions(session), newFakeItems(), nil)

	_, err := extractor.ExtractForSession(context.Background(), session.ID)
	assertCode(t, err, errors.ErrorCode_MISSING_TRANSCRIPT)
	if len(model.calls) != 0 {
		t.Fatalf("model must not be called without a transcript")
	}
}

func TestSummarizeSession_StoresBoth(t *testing.T) {
	ctx := context.Background()
	session := &entities.MeetingSession{ID: uuid.New(), Transcript: strPtr("we shipped")}
	sessions := newFakeSessions(session)
	model := &scriptedModel{replies: []reply{
		{content: "- shipped v2\n"},
		{content: "## Overview\nWe shipped."},
	}}
	summarizer := NewSummarizer(model, sessions, nil)

	result, err := summarizer.SummarizeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ShortSummary != "- shipped v2" || result.LongSummary != "## Overview\nWe shipped." {
		t.Fatalf("unexpected summaries %+v", result)
	}
	if len(model.calls) != 2 || model.calls[0].messages[0].Content == model.calls[1].messages[0].Content {
		t.Fatalf("expected two calls with distinct prompts")
	}
	stored, _ := sessions.FindByID(ctx, session.ID)
	if stored.ShortSummary == nil || stored.LongSummary == nil || stored.SummariesUpdatedAt == nil {
		t.Fatalf("summaries not stored: %+v", stored)
	}
}

func TestSummarizeSession_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	session := &entities.MeetingSession{ID: uuid.New(), Transcript: strPtr("t"), ShortSummary: strPtr("old short")}
	sessions := newFakeSessions(session)
	model := &scriptedModel{replies: []reply{
		{content: "- new short"},
		{err: &pkgai.StatusError{StatusCode: http.StatusBadRequest, Body: "context too long"}},
	}}
	summarizer := NewSummarizer(model, sessions, nil)

	_, err := summarizer.SummarizeSession(ctx, session.ID)
	assertCode(t, err, errors.ErrorCode_EXTRACTION_FAILED)
	if sessions.updates != 0 {
		t.Fatalf("no summary may be written when one call fails")
	}
	stored, _ := sessions.FindByID(ctx, session.ID)
	if *stored.ShortSummary != "old short" {
		t.Fatalf("short summary overwritten")
	}
}

func TestSummarize_ThrottlingIsRetryable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := pkgai.NewGroqClient(&config.GroqConfig{APIKey: "k", BaseURL: server.URL})
	summarizer := NewSummarizer(client, newFakeSessions(), nil)

	_, err := summarizer.Summarize(context.Background(), "transcript")
	assertCode(t, err, errors.ErrorCode_INTEGRATION_EXTERNAL_API_FAILED)
	if !jobcontext.IsRetryableError(err) {
		t.Fatalf("throttling must be retryable")
	}
	if calls != 1 {
		t.Fatalf("long summary must not be requested after the short one failed, got %d calls", calls)
	}
}

func TestSummarize_EmptyOutputFails(t *testing.T) {
	model := &scriptedModel{replies: []reply{{content: "  "}}}
	summarizer := NewSummarizer(model, newFakeSessions(), nil)

	_, err := summarizer.Summarize(context.Background(), "t")
	assertCode(t, err, errors.ErrorCode_EXTRACTION_FAILED)
}
