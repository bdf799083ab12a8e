package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

const (
	defaultGroqBaseURL = "https://api.groq.com"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// GroqClient is a minimal client for Groq's OpenAI-compatible chat completions
type GroqClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	g := &GroqClient{
		baseURL:     defaultGroqBaseURL,
		model:       defaultGroqModel,
		temperature: 0.2,
		maxTokens:   4096,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
	if cfg != nil {
		g.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			g.baseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			g.model = cfg.Model
		}
		if cfg.Temperature > 0 {
			g.temperature = cfg.Temperature
		}
		if cfg.MaxTokens > 0 {
			g.maxTokens = cfg.MaxTokens
		}
	}
	if g.apiKey == "" {
		g.apiKey = os.Getenv("GROQ_API_KEY")
	}
	g.baseURL = strings.TrimRight(g.baseURL, "/")
	return g
}

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchema constrains the model output
type JSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict,omitempty"`
	Schema json.RawMessage `json:"schema"`
}

// ResponseFormat selects structured output
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// StatusError is a non-2xx reply from the API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("groq returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if sent again
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Complete sends messages and returns the assistant content. A nil format
// asks for free text.
func (g *GroqClient) Complete(ctx context.Context, messages []Message, format *ResponseFormat) (string, error) {
	reqBody := ChatRequest{
		Model:          g.model,
		Messages:       messages,
		Temperature:    g.temperature,
		MaxTokens:      g.maxTokens,
		ResponseFormat: format,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("failed to decode groq response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return cr.Choices[0].Message.Content, nil
}
