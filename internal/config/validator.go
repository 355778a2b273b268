package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "orchestrator.followup_turns")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSummaryStyles returns the accepted orchestrator.summary_style values
func ValidSummaryStyles() []string {
	return []string{"full", "condensed"}
}

// ValidBackends returns the backend names a binding may start with
func ValidBackends() []string {
	return []string{"openai", "anthropic", "ollama", "offline"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateOrchestrator()...)
	errors = append(errors, c.validateProvider()...)
	errors = append(errors, c.validateRetrieval()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)
	return errors
}

func (c *Config) validateOrchestrator() []ValidationError {
	var errors []ValidationError
	o := c.Orchestrator

	if o.FollowupTurns < 1 || o.FollowupTurns > 8 {
		errors = append(errors, ValidationError{
			Field:   "orchestrator.followup_turns",
			Value:   o.FollowupTurns,
			Message: "must be between 1 and 8",
		})
	}
	if o.SelectLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "orchestrator.select_limit",
			Value:   o.SelectLimit,
			Message: "must be positive",
		})
	}
	if o.SummaryStyle != "" && !slices.Contains(ValidSummaryStyles(), o.SummaryStyle) {
		errors = append(errors, ValidationError{
			Field:   "orchestrator.summary_style",
			Value:   o.SummaryStyle,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSummaryStyles(), ", ")),
		})
	}
	if o.ContextWindow < 0 {
		errors = append(errors, ValidationError{
			Field:   "orchestrator.context_window",
			Value:   o.ContextWindow,
			Message: "must be non-negative",
		})
	}
	return errors
}

func (c *Config) validateProvider() []ValidationError {
	var errors []ValidationError
	p := c.Provider

	if backend, _, _ := strings.Cut(p.Default, ":"); !slices.Contains(ValidBackends(), backend) {
		errors = append(errors, ValidationError{
			Field:   "provider.default",
			Value:   p.Default,
			Message: fmt.Sprintf("backend must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}
	if p.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "provider.timeout_seconds",
			Value:   p.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if p.FailureThreshold < 0 {
		errors = append(errors, ValidationError{
			Field:   "provider.failure_threshold",
			Value:   p.FailureThreshold,
			Message: "must be non-negative",
		})
	}
	if p.CooldownSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "provider.cooldown_seconds",
			Value:   p.CooldownSeconds,
			Message: "must be non-negative",
		})
	}
	if err := checkURL("provider.openai.base_url", p.OpenAI.BaseURL); err != nil {
		errors = append(errors, *err)
	}
	if err := checkURL("provider.ollama.base_url", p.Ollama.BaseURL); err != nil {
		errors = append(errors, *err)
	}
	return errors
}

func (c *Config) validateRetrieval() []ValidationError {
	var errors []ValidationError
	r := c.Retrieval

	if r.MaxChars <= 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.max_chars",
			Value:   r.MaxChars,
			Message: "must be positive",
		})
	}
	if r.MaxURLs < 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.max_urls",
			Value:   r.MaxURLs,
			Message: "must be non-negative",
		})
	}
	if r.SearchResults < 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.search_results",
			Value:   r.SearchResults,
			Message: "must be non-negative",
		})
	}
	if r.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.timeout_seconds",
			Value:   r.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if err := checkURL("retrieval.searxng_url", r.SearxngURL); err != nil {
		errors = append(errors, *err)
	}
	return errors
}

func (c *Config) validateServer() []ValidationError {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return []ValidationError{{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must not be empty",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB <= 0 || c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("must be between 1 and %d", maxLogSizeMB),
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}
	return errors
}

// checkURL accepts empty values and absolute http(s) URLs.
func checkURL(field, raw string) *ValidationError {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   field,
			Value:   raw,
			Message: "must be an absolute http(s) URL",
		}
	}
	return nil
}
