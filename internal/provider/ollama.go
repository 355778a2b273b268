package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Iron-Ham/council/internal/errors"
)

// Ollama is a Backend for a local Ollama server's /api/chat endpoint.
type Ollama struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOllama creates an Ollama backend.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Ollama{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:       model,
		temperature: 0.4,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// Name implements Backend.
func (c *Ollama) Name() string { return BackendOllama }

// Complete implements Backend.
func (c *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	fail := func(msg string, cause error) *errors.ProviderError {
		return errors.NewProviderError(msg, cause).WithBackend(BackendOllama).WithModel(model)
	}

	var messages []message
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})

	buf, err := json.Marshal(ollamaRequest{
		Model:    model,
		Stream:   false,
		Messages: messages,
		Options:  map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", fail("marshal request", err).WithRetryable(false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return "", fail("create request", err).WithRetryable(false)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fail("request failed on /api/chat", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fail("read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fail(fmt.Sprintf("http %d: %s", resp.StatusCode, compact(string(payload), 240)), nil)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fail("non-json payload", err).WithRetryable(false)
	}
	if parsed.Error != "" {
		return "", fail(parsed.Error, nil)
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", fail("empty response content", nil)
	}
	return content, nil
}
