package ai

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "meeting.mp3")
	if err := os.WriteFile(p, []byte("ID3 fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return p
}

// assemblyServer fakes upload, submit and poll
func assemblyServer(t *testing.T, final map[string]interface{}, uploadFailures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var uploads atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			body, _ := io.ReadAll(r.Body)
			if uploads.Add(1) <= uploadFailures {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"error": "unavailable"})
				return
			}
			if string(body) != "ID3 fake audio" {
				t.Errorf("unexpected upload body %q", body)
			}
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/upload/1"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			var req map[string]interface{}
			json.NewDecoder(r.Body).Decode(&req)
			if req["language_code"] != "en" {
				t.Errorf("unexpected language %v", req["language_code"])
			}
			if req["audio_url"] != "https://cdn.example/upload/1" {
				t.Errorf("unexpected audio url %v", req["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "tr-1", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/tr-1":
			json.NewEncoder(w).Encode(final)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &uploads
}

func newTestTranscriber(url string) *AssemblyAITranscriber {
	tr := NewAssemblyAITranscriber(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: url, LanguageCode: "en"}, nil)
	tr.initialInterval = time.Millisecond
	tr.maxInterval = 5 * time.Millisecond
	tr.maxElapsed = 200 * time.Millisecond
	return tr
}

func TestTranscribe_Success(t *testing.T) {
	ts, _ := assemblyServer(t, map[string]interface{}{"id": "tr-1", "status": "completed", "text": "hello team"}, 0)
	tr := newTestTranscriber(ts.URL)

	text, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello team" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTranscribe_ErrorStatus(t *testing.T) {
	ts, _ := assemblyServer(t, map[string]interface{}{"id": "tr-1", "status": "error", "error": "audio too short"}, 0)
	tr := newTestTranscriber(ts.URL)

	_, err := tr.Transcribe(context.Background(), writeAudio(t))
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_TRANSCRIPTION_FAILED {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if appErr.Retryable() {
		t.Fatalf("an error transcript must not be retried")
	}
}

func TestTranscribe_UploadRetried(t *testing.T) {
	ts, uploads := assemblyServer(t, map[string]interface{}{"id": "tr-1", "status": "completed", "text": "ok"}, 1)
	tr := newTestTranscriber(ts.URL)

	if _, err := tr.Transcribe(context.Background(), writeAudio(t)); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if uploads.Load() != 2 {
		t.Fatalf("expected 2 upload attempts, got %d", uploads.Load())
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	tr := newTestTranscriber("http://127.0.0.1:1")
	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Fatalf("expected error for missing audio")
	}
}
