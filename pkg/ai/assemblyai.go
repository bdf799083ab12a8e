package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// Transcriber turns an audio file into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// AssemblyAITranscriber uploads local audio to AssemblyAI and waits for the transcript
type AssemblyAITranscriber struct {
	client       *aai.Client
	languageCode string
	logger       *zap.Logger

	// upload retry
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
}

// NewAssemblyAITranscriber creates a transcriber from config.
// If the API key is empty, falls back to ASSEMBLYAI_API_KEY.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAITranscriber {
	var apiKey, baseURL, lang string
	if cfg != nil {
		apiKey, baseURL, lang = cfg.APIKey, cfg.BaseURL, cfg.LanguageCode
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if lang == "" {
		lang = "en"
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}

	return &AssemblyAITranscriber{
		client:          aai.NewClientWithOptions(opts...),
		languageCode:    lang,
		logger:          logger,
		initialInterval: 2 * time.Second,
		maxInterval:     10 * time.Second,
		maxElapsed:      30 * time.Second,
	}
}

// Transcribe uploads audioPath and blocks until AssemblyAI finishes.
// A transcript in error status is a TranscriptionFailed error; transport
// failures are ExternalAPIFailed and may be retried by the caller.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	uploadURL, err := t.upload(ctx, audioPath)
	if err != nil {
		return "", err
	}

	if t.logger != nil {
		t.logger.Info("🎙️ Starting transcription",
			zap.String("language", t.languageCode),
		)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(t.languageCode),
	}
	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcription interrupted: %w", ctx.Err())
		}
		return "", errors.ErrExternalAPIFailed("assemblyai", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "AssemblyAI transcription failed"
		if transcript.Error != nil {
			msg = fmt.Sprintf("AssemblyAI error: %s", *transcript.Error)
		}
		if t.logger != nil {
			t.logger.Error("❌ AssemblyAI reported error", zap.String("error", msg))
		}
		return "", errors.ErrTranscriptionFailed(fmt.Errorf("%s", msg))
	}
	if transcript.Text == nil {
		return "", errors.ErrTranscriptionFailed(fmt.Errorf("transcript has no text (status %s)", transcript.Status))
	}

	if t.logger != nil {
		var id string
		if transcript.ID != nil {
			id = *transcript.ID
		}
		t.logger.Info("✅ Transcript received",
			zap.String("transcript_id", id),
			zap.Int("length", len(*transcript.Text)),
		)
	}
	return *transcript.Text, nil
}

// upload sends the file with exponential backoff, reopening it on every attempt
func (t *AssemblyAITranscriber) upload(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("failed to open audio: %w", err)
	}

	var uploadURL string
	uploadFn := func() error {
		f, err := os.Open(audioPath)
		if err != nil {
			return err
		}
		defer f.Close()

		uploadURL, err = t.client.Upload(ctx, f)
		if err != nil {
			if t.logger != nil {
				t.logger.Warn("⚠️ Upload to AssemblyAI failed, retrying", zap.Error(err))
			}
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.initialInterval
	bo.MaxInterval = t.maxInterval
	bo.MaxElapsedTime = t.maxElapsed

	if err := backoff.Retry(uploadFn, backoff.WithContext(bo, ctx)); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("upload interrupted: %w", ctx.Err())
		}
		return "", errors.ErrExternalAPIFailed("assemblyai upload", err)
	}

	if t.logger != nil {
		t.logger.Info("✅ File uploaded to AssemblyAI")
	}
	return uploadURL, nil
}
