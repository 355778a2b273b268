package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/errors"
)

func TestAnthropic_Complete(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"- Ship it"},{"type":"text","text":" now"}]}`))
	}))
	defer srv.Close()

	c, err := NewAnthropic("test-key", WithAnthropicEndpoint(srv.URL), WithAnthropicModel("claude-test"))
	if err != nil {
		t.Fatal(err)
	}
	text, err := c.Complete(context.Background(), Request{System: "be brief", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "- Ship it now" {
		t.Errorf("Complete() = %q", text)
	}
	if got.Model != "claude-test" || got.System != "be brief" || len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("request = %+v", got)
	}
}

func TestAnthropic_Errors(t *testing.T) {
	if _, err := NewAnthropic(""); !errors.Is(err, errors.ErrProviderUnavailable) {
		t.Errorf("NewAnthropic(\"\") error = %v", err)
	}

	tests := []struct {
		name          string
		status        int
		body          string
		wantRetryable bool
		wantContains  string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, true, "status 429"},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad"}}`, false, "status 400"},
		{"api error body", http.StatusOK, `{"error":{"type":"overloaded","message":"busy"}}`, true, "busy"},
		{"empty content", http.StatusOK, `{"content":[]}`, true, "empty response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := NewAnthropic("k", WithAnthropicEndpoint(srv.URL))
			_, err := c.Complete(context.Background(), Request{Prompt: "x"})
			if err == nil {
				t.Fatal("Complete() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantContains) {
				t.Errorf("error = %v, want %q", err, tt.wantContains)
			}
			if errors.IsRetryable(err) != tt.wantRetryable {
				t.Errorf("IsRetryable() = %v, want %v", errors.IsRetryable(err), tt.wantRetryable)
			}
		})
	}
}

func TestOllama_Complete(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  local answer  "}}`))
	}))
	defer srv.Close()

	c := NewOllama(srv.URL+"/", "llama3.1", time.Second)
	text, err := c.Complete(context.Background(), Request{Model: "qwen", System: "sys", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "local answer" {
		t.Errorf("Complete() = %q", text)
	}
	if got.Model != "qwen" || got.Stream || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("request = %+v", got)
	}
}

func TestOllama_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "missing", time.Second).Complete(context.Background(), Request{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "http 404") {
		t.Errorf("Complete() error = %v, want http 404", err)
	}
}

func TestOpenAI_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "- Pilot first"}}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAI(
		WithOpenAIKey("sk-test"),
		WithOpenAIBaseURL(srv.URL+"/v1/"),
		WithOpenAIModel("gpt-test"),
		WithOpenAIMaxRetries(0),
	)
	text, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "- Pilot first" {
		t.Errorf("Complete() = %q", text)
	}
	if body["model"] != "gpt-test" {
		t.Errorf("model = %v", body["model"])
	}
	if msgs, ok := body["messages"].([]any); !ok || len(msgs) != 2 {
		t.Errorf("messages = %v", body["messages"])
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI(WithOpenAIKey("sk-test"), WithOpenAIBaseURL(srv.URL+"/"), WithOpenAIMaxRetries(0))
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	var perr *errors.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Complete() error = %v, want ProviderError", err)
	}
	if perr.Backend != BackendOpenAI || !perr.IsRetryable() {
		t.Errorf("ProviderError = %+v", perr)
	}
}

func TestOffline_Deterministic(t *testing.T) {
	o := NewOffline()
	req := Request{System: "You are a pragmatic senior engineer. Prefer tools.", Prompt: "Build a billing system"}
	a, err := o.Complete(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := o.Complete(context.Background(), req)
	if a != b {
		t.Errorf("offline replies differ: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "- pragmatic senior engineer view: Build a billing system") {
		t.Errorf("reply = %q", a)
	}

	follow, _ := o.Complete(context.Background(), Request{Prompt: "Risk?\nYour headline (keep this headline unchanged): x"})
	if strings.HasPrefix(follow, "- ") {
		t.Errorf("follow-up reply should be prose: %q", follow)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Complete(ctx, req); err == nil {
		t.Error("Complete() with cancelled context should fail")
	}
}
