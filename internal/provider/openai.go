package provider

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Iron-Ham/council/internal/errors"
)

// OpenAI is a Backend for the OpenAI chat completions API and compatible
// servers.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

// OpenAIOption configures an OpenAI backend.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxRetries  int
	httpClient  *http.Client
}

// WithOpenAIKey sets the API key. Without it the client reads OPENAI_API_KEY.
func WithOpenAIKey(key string) OpenAIOption {
	return func(o *openAIOptions) { o.apiKey = key }
}

// WithOpenAIBaseURL points the client at a compatible server.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) { o.baseURL = url }
}

// WithOpenAIModel sets the model used when a binding names none.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *openAIOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithOpenAIMaxRetries sets the client's retry budget.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(o *openAIOptions) { o.maxRetries = n }
}

// WithOpenAIHTTPClient replaces the HTTP client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(o *openAIOptions) { o.httpClient = c }
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	o := openAIOptions{model: "gpt-4o-mini", temperature: 0.4, maxRetries: 2}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(o.maxRetries)}
	if o.apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &OpenAI{
		client:      openai.NewClient(reqOpts...),
		model:       o.model,
		temperature: o.temperature,
	}
}

// Name implements Backend.
func (c *OpenAI) Name() string { return BackendOpenAI }

// Complete implements Backend.
func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		perr := errors.NewProviderError("chat completion failed", err).WithBackend(BackendOpenAI).WithModel(model)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			perr = perr.WithRetryable(apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500)
		}
		return "", perr
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewProviderError("no choices in response", nil).WithBackend(BackendOpenAI).WithModel(model)
	}
	return resp.Choices[0].Message.Content, nil
}
