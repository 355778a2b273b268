package provider

import (
	"os"

	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/logging"
)

// NewFromConfig builds a Router with every backend the configuration can
// reach. The offline and Ollama backends are always registered; OpenAI and
// Anthropic only when credentials are available.
func NewFromConfig(cfg config.ProviderConfig, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.NopLogger()
	}
	r := NewRouter(cfg.Default,
		WithLogger(logger),
		WithTimeout(cfg.ProviderTimeout()),
		WithGuard(cfg.FailureThreshold, cfg.Cooldown()),
	)
	r.Register(NewOffline())
	r.Register(NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.ProviderTimeout()))

	if cfg.OpenAI.APIKey != "" || cfg.OpenAI.BaseURL != "" || os.Getenv("OPENAI_API_KEY") != "" {
		r.Register(NewOpenAI(
			WithOpenAIKey(cfg.OpenAI.APIKey),
			WithOpenAIBaseURL(cfg.OpenAI.BaseURL),
			WithOpenAIModel(cfg.OpenAI.Model),
		))
	} else {
		logger.Debug("openai backend disabled", "reason", "no api key")
	}

	key := cfg.Anthropic.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c, err := NewAnthropic(key,
		WithAnthropicModel(cfg.Anthropic.Model),
		WithAnthropicTimeout(cfg.ProviderTimeout()),
	); err == nil {
		r.Register(c)
	} else {
		logger.Debug("anthropic backend disabled", "reason", err.Error())
	}
	return r
}
