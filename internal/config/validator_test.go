package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"followup turns too low", func(c *Config) { c.Orchestrator.FollowupTurns = 0 }, "orchestrator.followup_turns"},
		{"followup turns too high", func(c *Config) { c.Orchestrator.FollowupTurns = 9 }, "orchestrator.followup_turns"},
		{"select limit", func(c *Config) { c.Orchestrator.SelectLimit = 0 }, "orchestrator.select_limit"},
		{"summary style", func(c *Config) { c.Orchestrator.SummaryStyle = "tiny" }, "orchestrator.summary_style"},
		{"context window", func(c *Config) { c.Orchestrator.ContextWindow = -1 }, "orchestrator.context_window"},
		{"unknown backend", func(c *Config) { c.Provider.Default = "bard:x" }, "provider.default"},
		{"timeout", func(c *Config) { c.Provider.TimeoutSeconds = 0 }, "provider.timeout_seconds"},
		{"failure threshold", func(c *Config) { c.Provider.FailureThreshold = -1 }, "provider.failure_threshold"},
		{"cooldown", func(c *Config) { c.Provider.CooldownSeconds = -5 }, "provider.cooldown_seconds"},
		{"openai url", func(c *Config) { c.Provider.OpenAI.BaseURL = "not a url" }, "provider.openai.base_url"},
		{"ollama url", func(c *Config) { c.Provider.Ollama.BaseURL = "ftp://host" }, "provider.ollama.base_url"},
		{"max chars", func(c *Config) { c.Retrieval.MaxChars = 0 }, "retrieval.max_chars"},
		{"max urls", func(c *Config) { c.Retrieval.MaxURLs = -1 }, "retrieval.max_urls"},
		{"search results", func(c *Config) { c.Retrieval.SearchResults = -1 }, "retrieval.search_results"},
		{"retrieval timeout", func(c *Config) { c.Retrieval.TimeoutSeconds = 0 }, "retrieval.timeout_seconds"},
		{"searxng url", func(c *Config) { c.Retrieval.SearxngURL = "searx" }, "retrieval.searxng_url"},
		{"server addr", func(c *Config) { c.Server.Addr = " " }, "server.addr"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"log backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidate_AcceptsBindings(t *testing.T) {
	for _, binding := range []string{"offline", "ollama:llama3.1", "anthropic:claude-3-5-haiku-latest", "openai:gpt-4o"} {
		cfg := Default()
		cfg.Provider.Default = binding
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("binding %q rejected: %v", binding, errs)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	single := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if got := single.Error(); got != "a: bad (got: 1)" {
		t.Errorf("single Error() = %q", got)
	}

	multi := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: "x", Message: "worse"},
	}
	got := multi.Error()
	if !strings.HasPrefix(got, "2 validation errors:") || !strings.Contains(got, "2. b: worse (got: x)") {
		t.Errorf("multi Error() = %q", got)
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}
}
