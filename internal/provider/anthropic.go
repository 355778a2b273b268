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

const (
	// anthropicAPIURL is the Anthropic Messages API endpoint.
	anthropicAPIURL = "https://api.anthropic.com/v1/messages"

	anthropicVersion = "2023-06-01"

	defaultAnthropicModel = "claude-3-5-haiku-latest"

	defaultMaxTokens = 1024
)

// Anthropic is a Backend for the Anthropic Messages API.
type Anthropic struct {
	apiKey     string
	model      string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

// AnthropicOption configures an Anthropic backend.
type AnthropicOption func(*Anthropic)

// WithAnthropicModel sets the model used when a binding names none.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *Anthropic) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAnthropicEndpoint overrides the Messages API URL.
func WithAnthropicEndpoint(url string) AnthropicOption {
	return func(c *Anthropic) {
		c.endpoint = url
	}
}

// WithAnthropicTimeout sets the HTTP client timeout.
func WithAnthropicTimeout(timeout time.Duration) AnthropicOption {
	return func(c *Anthropic) {
		c.httpClient.Timeout = timeout
	}
}

// NewAnthropic creates an Anthropic backend. An empty key returns an error.
func NewAnthropic(apiKey string, opts ...AnthropicOption) (*Anthropic, error) {
	if apiKey == "" {
		return nil, errors.NewProviderError("ANTHROPIC_API_KEY not set", errors.ErrProviderUnavailable).
			WithBackend(BackendAnthropic).WithRetryable(false)
	}
	c := &Anthropic{
		apiKey:     apiKey,
		model:      defaultAnthropicModel,
		endpoint:   anthropicAPIURL,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// messagesRequest is the Anthropic Messages API request structure.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic Messages API response structure.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Name implements Backend.
func (c *Anthropic) Name() string { return BackendAnthropic }

// Complete implements Backend.
func (c *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	fail := func(msg string, cause error) *errors.ProviderError {
		return errors.NewProviderError(msg, cause).WithBackend(BackendAnthropic).WithModel(model)
	}

	reqBytes, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		System:    req.System,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fail("marshal request", err).WithRetryable(false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fail("create request", err).WithRetryable(false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fail("send request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fail("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", fail(fmt.Sprintf("API error (status %d): %s", resp.StatusCode, compact(string(body), 240)), nil).
			WithRetryable(retryable)
	}

	var respData messagesResponse
	if err := json.Unmarshal(body, &respData); err != nil {
		return "", fail("unmarshal response", err).WithRetryable(false)
	}
	if respData.Error != nil {
		return "", fail("API error: "+respData.Error.Message, nil)
	}

	var out strings.Builder
	for _, block := range respData.Content {
		if block.Type == "" || block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fail("empty response from API", nil)
	}
	return out.String(), nil
}

// compact collapses whitespace and bounds s for error messages.
func compact(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
