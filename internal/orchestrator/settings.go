package orchestrator

import (
	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/errors"
)

// Bounds of the follow-up loop.
const (
	MinFollowupTurns = 1
	MaxFollowupTurns = 8

	// MaxFreshRounds caps follow-ups after a new initial reply.
	MaxFreshRounds = 4
	// MaxContinuationRounds caps follow-ups when a panel continues.
	MaxContinuationRounds = 5
)

// Summary styles.
const (
	SummaryFull      = "full"
	SummaryCondensed = "condensed"
)

// Settings are the runtime-adjustable knobs of the engine.
type Settings struct {
	// FollowupTurns is the number of exchanges per role and turn, counting
	// the initial reply.
	FollowupTurns int    `json:"followup_turns"`
	SelectLimit   int    `json:"select_limit"`
	SummaryStyle  string `json:"summary_style"`
	ContextWindow int    `json:"context_window"`
	MaxURLs       int    `json:"max_urls"`
	SearchResults int    `json:"search_results"`
}

// DefaultSettings mirrors config.Default.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

// SettingsFromConfig extracts the engine settings from a loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		FollowupTurns: cfg.Orchestrator.FollowupTurns,
		SelectLimit:   cfg.Orchestrator.SelectLimit,
		SummaryStyle:  cfg.Orchestrator.SummaryStyle,
		ContextWindow: cfg.Orchestrator.ContextWindow,
		MaxURLs:       cfg.Retrieval.MaxURLs,
		SearchResults: cfg.Retrieval.SearchResults,
	}.normalized()
}

// normalized clamps every field into its accepted range.
func (s Settings) normalized() Settings {
	s.FollowupTurns = min(max(s.FollowupTurns, MinFollowupTurns), MaxFollowupTurns)
	s.SelectLimit = max(s.SelectLimit, 1)
	if s.SummaryStyle != SummaryCondensed {
		s.SummaryStyle = SummaryFull
	}
	s.ContextWindow = max(s.ContextWindow, 0)
	s.MaxURLs = max(s.MaxURLs, 0)
	s.SearchResults = max(s.SearchResults, 0)
	return s
}

// Validate rejects values that cannot be clamped meaningfully.
func (s Settings) Validate() error {
	if s.SelectLimit < 1 {
		return errors.NewValidationError("select_limit must be positive").
			WithField("select_limit").WithValue(s.SelectLimit).WithCause(errors.ErrInvalidInput)
	}
	if s.SummaryStyle != "" && s.SummaryStyle != SummaryFull && s.SummaryStyle != SummaryCondensed {
		return errors.NewValidationError("summary_style must be full or condensed").
			WithField("summary_style").WithValue(s.SummaryStyle).WithCause(errors.ErrInvalidInput)
	}
	if s.ContextWindow < 0 {
		return errors.NewValidationError("context_window must be non-negative").
			WithField("context_window").WithValue(s.ContextWindow).WithCause(errors.ErrInvalidInput)
	}
	return nil
}

// freshRounds is the number of follow-ups after a new initial reply.
func (s Settings) freshRounds() int {
	return min(s.FollowupTurns-1, MaxFreshRounds)
}

// continuationRounds is the number of follow-ups for a continuing panel.
func (s Settings) continuationRounds() int {
	return min(s.FollowupTurns, MaxContinuationRounds)
}
