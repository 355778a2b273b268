package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/retrieval"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/transcript"
)

// app is the wired process: configuration, logger, bus, roles and engine.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	bus     *event.Bus
	roles   roles.Registry
	engine  *orchestrator.Engine
	journal *transcript.Journal
}

// newApp wires every component from cfg. Logs go to the configured
// directory when logging is enabled, else to fallback (nil discards them).
// The role file watcher stops with ctx.
func newApp(ctx context.Context, cfg *config.Config, fallback io.Writer) (*app, error) {
	logger, err := newLogger(cfg, fallback)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.bus = event.NewBus(event.WithLogger(logger))

	a.roles, err = loadRoles(ctx, cfg.Roles, logger, a.bus)
	if err != nil {
		// The store serves the built-in roles; the failure is only reported.
		logger.Warn("using built-in roles", "error", err.Error())
	}

	if cfg.Transcript.JournalDir != "" {
		a.journal = transcript.NewJournal(cfg.Transcript.JournalDir, logger)
		a.journal.Attach(a.bus)
	}

	opts := []orchestrator.Option{
		orchestrator.WithBus(a.bus),
		orchestrator.WithLogger(logger),
		orchestrator.WithSettings(orchestrator.SettingsFromConfig(cfg)),
	}
	if cfg.Retrieval.Enabled {
		opts = append(opts, orchestrator.WithRetriever(retrieval.NewFromConfig(cfg.Retrieval, logger)))
	}
	a.engine = orchestrator.New(a.roles, provider.NewFromConfig(cfg.Provider, logger), opts...)

	logger.Info("council ready",
		"provider", cfg.Provider.Default,
		"roles", len(a.roles.AllIDs()),
		"retrieval", cfg.Retrieval.Enabled,
		"journal", cfg.Transcript.JournalDir,
	)
	return a, nil
}

// Close detaches the journal and flushes the logger.
func (a *app) Close() {
	if a.journal != nil {
		a.journal.Detach()
	}
	_ = a.logger.Close()
}

func newLogger(cfg *config.Config, fallback io.Writer) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		if fallback == nil {
			return logging.NopLogger(), nil
		}
		return logging.NewLoggerToWriter(fallback, cfg.Logging.Level), nil
	}
	logger, err := logging.NewLoggerWithRotation(cfg.Logging.LogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}

// loadRoles returns the built-in roles, or a store over the configured role
// file, watched for changes when enabled.
func loadRoles(ctx context.Context, cfg config.RolesConfig, logger *logging.Logger, bus *event.Bus) (roles.Registry, error) {
	if cfg.File == "" {
		return roles.Default(), nil
	}
	store, err := roles.NewStore(cfg.File, roles.WithLogger(logger), roles.WithBus(bus))
	if cfg.Watch {
		if werr := store.Watch(ctx); werr != nil {
			logger.Warn("role file watch failed", "path", cfg.File, "error", werr.Error())
		}
	}
	return store, err
}

// loadConfig reads the configuration initialised by the root command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
