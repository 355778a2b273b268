package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete council configuration
type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Provider     ProviderConfig     `mapstructure:"provider" yaml:"provider"`
	Roles        RolesConfig        `mapstructure:"roles" yaml:"roles"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval" yaml:"retrieval"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Transcript   TranscriptConfig   `mapstructure:"transcript" yaml:"transcript"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// OrchestratorConfig controls how a turn is run
type OrchestratorConfig struct {
	// FollowupTurns is the configured number of exchanges per role and turn,
	// including the initial reply. Clamped to 1..8 at runtime.
	FollowupTurns int `mapstructure:"followup_turns" yaml:"followup_turns"`
	// SelectLimit caps how many roles a message selects, except broadcasts.
	SelectLimit int `mapstructure:"select_limit" yaml:"select_limit"`
	// SummaryStyle is "full" or "condensed".
	SummaryStyle string `mapstructure:"summary_style" yaml:"summary_style"`
	// ContextWindow is how many recent main-lane events accompany an initial consult.
	ContextWindow int `mapstructure:"context_window" yaml:"context_window"`
}

// ProviderConfig selects and configures completion backends
type ProviderConfig struct {
	// Default is the binding used by roles that declare none, e.g. "openai:gpt-4o-mini".
	Default string `mapstructure:"default" yaml:"default"`
	// TimeoutSeconds bounds a single completion call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// FailureThreshold is the number of consecutive failures that open a backend's guard.
	FailureThreshold int `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	// CooldownSeconds is how long an opened guard rejects calls.
	CooldownSeconds int `mapstructure:"cooldown_seconds" yaml:"cooldown_seconds"`

	OpenAI    OpenAIConfig    `mapstructure:"openai" yaml:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Ollama    OllamaConfig    `mapstructure:"ollama" yaml:"ollama"`
}

// OpenAIConfig configures the OpenAI-compatible backend
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// AnthropicConfig configures the Anthropic Messages API backend
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// OllamaConfig configures a local Ollama server
type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// RolesConfig locates role definitions
type RolesConfig struct {
	// File is a YAML file of role definitions. Empty uses the built-in roles.
	File string `mapstructure:"file" yaml:"file"`
	// Watch reloads File when it changes on disk.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// RetrievalConfig controls reference-material fetching and search
type RetrievalConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	MaxChars       int    `mapstructure:"max_chars" yaml:"max_chars"`
	MaxURLs        int    `mapstructure:"max_urls" yaml:"max_urls"`
	SearchResults  int    `mapstructure:"search_results" yaml:"search_results"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	SearxngURL     string `mapstructure:"searxng_url" yaml:"searxng_url"`
	BraveAPIKey    string `mapstructure:"brave_api_key" yaml:"brave_api_key"`
	DuckDuckGo     bool   `mapstructure:"duckduckgo" yaml:"duckduckgo"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// TranscriptConfig configures the JSONL journal
type TranscriptConfig struct {
	// JournalDir receives one <conversation_id>.jsonl per conversation.
	// Empty disables the journal.
	JournalDir string `mapstructure:"journal_dir" yaml:"journal_dir"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Level      string `mapstructure:"level" yaml:"level"`
	Dir        string `mapstructure:"dir" yaml:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Orchestrator: OrchestratorConfig{
			FollowupTurns: 5,
			SelectLimit:   3,
			SummaryStyle:  "full",
			ContextWindow: 6,
		},
		Provider: ProviderConfig{
			Default:          "openai:gpt-4o-mini",
			TimeoutSeconds:   60,
			FailureThreshold: 3,
			CooldownSeconds:  30,
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
			Anthropic: AnthropicConfig{
				Model: "claude-3-5-haiku-latest",
			},
			Ollama: OllamaConfig{
				BaseURL: "http://127.0.0.1:11434",
				Model:   "llama3.1",
			},
		},
		Retrieval: RetrievalConfig{
			Enabled:        true,
			MaxChars:       8000,
			MaxURLs:        3,
			SearchResults:  3,
			UserAgent:      "council/1.0 (+https://github.com/Iron-Ham/council)",
			TimeoutSeconds: 15,
			DuckDuckGo:     true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	d := Default()

	viper.SetDefault("orchestrator.followup_turns", d.Orchestrator.FollowupTurns)
	viper.SetDefault("orchestrator.select_limit", d.Orchestrator.SelectLimit)
	viper.SetDefault("orchestrator.summary_style", d.Orchestrator.SummaryStyle)
	viper.SetDefault("orchestrator.context_window", d.Orchestrator.ContextWindow)

	viper.SetDefault("provider.default", d.Provider.Default)
	viper.SetDefault("provider.timeout_seconds", d.Provider.TimeoutSeconds)
	viper.SetDefault("provider.failure_threshold", d.Provider.FailureThreshold)
	viper.SetDefault("provider.cooldown_seconds", d.Provider.CooldownSeconds)
	viper.SetDefault("provider.openai.api_key", d.Provider.OpenAI.APIKey)
	viper.SetDefault("provider.openai.base_url", d.Provider.OpenAI.BaseURL)
	viper.SetDefault("provider.openai.model", d.Provider.OpenAI.Model)
	viper.SetDefault("provider.anthropic.api_key", d.Provider.Anthropic.APIKey)
	viper.SetDefault("provider.anthropic.model", d.Provider.Anthropic.Model)
	viper.SetDefault("provider.ollama.base_url", d.Provider.Ollama.BaseURL)
	viper.SetDefault("provider.ollama.model", d.Provider.Ollama.Model)

	viper.SetDefault("roles.file", d.Roles.File)
	viper.SetDefault("roles.watch", d.Roles.Watch)

	viper.SetDefault("retrieval.enabled", d.Retrieval.Enabled)
	viper.SetDefault("retrieval.max_chars", d.Retrieval.MaxChars)
	viper.SetDefault("retrieval.max_urls", d.Retrieval.MaxURLs)
	viper.SetDefault("retrieval.search_results", d.Retrieval.SearchResults)
	viper.SetDefault("retrieval.user_agent", d.Retrieval.UserAgent)
	viper.SetDefault("retrieval.timeout_seconds", d.Retrieval.TimeoutSeconds)
	viper.SetDefault("retrieval.searxng_url", d.Retrieval.SearxngURL)
	viper.SetDefault("retrieval.brave_api_key", d.Retrieval.BraveAPIKey)
	viper.SetDefault("retrieval.duckduckgo", d.Retrieval.DuckDuckGo)

	viper.SetDefault("server.addr", d.Server.Addr)

	viper.SetDefault("transcript.journal_dir", d.Transcript.JournalDir)

	viper.SetDefault("logging.enabled", d.Logging.Enabled)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.dir", d.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	viper.SetDefault("logging.compress", d.Logging.Compress)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded values are invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ProviderTimeout returns the per-call completion timeout.
func (c *ProviderConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Cooldown returns how long an opened guard stays open.
func (c *ProviderConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Timeout returns the retrieval HTTP timeout.
func (c *RetrievalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogDir returns the configured log directory, defaulting to a logs
// directory under ConfigDir.
func (c *LoggingConfig) LogDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(ConfigDir(), "logs")
}

// ConfigDir returns the directory holding council's configuration
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "council")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".council"
	}
	return filepath.Join(home, ".config", "council")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
