package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/roles"
)

// Router dispatches consultations to registered backends by binding.
type Router struct {
	defaultBinding string
	timeout        time.Duration
	maxFailures    int
	cooldown       time.Duration
	logger         *logging.Logger

	mu       sync.RWMutex
	backends map[string]Backend
	guards   map[string]*Guard
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for failed calls.
func WithLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithTimeout bounds every completion call. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.timeout = d
	}
}

// WithGuard sets the failure threshold and cooldown of the per-backend
// guards.
func WithGuard(maxFailures int, cooldown time.Duration) RouterOption {
	return func(r *Router) {
		r.maxFailures = maxFailures
		r.cooldown = cooldown
	}
}

// WithBackend registers a backend.
func WithBackend(b Backend) RouterOption {
	return func(r *Router) {
		r.backends[b.Name()] = b
	}
}

// NewRouter creates a Router. defaultBinding is used for roles without a
// binding of their own.
func NewRouter(defaultBinding string, opts ...RouterOption) *Router {
	r := &Router{
		defaultBinding: defaultBinding,
		logger:         logging.NopLogger(),
		backends:       make(map[string]Backend),
		guards:         make(map[string]*Guard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a backend.
func (r *Router) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[b.Name()] = b
	delete(r.guards, b.Name())
}

// Backends returns the registered backend names, sorted.
func (r *Router) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Guard returns the guard of a backend, creating it on first use.
func (r *Router) Guard(backend string) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guards[backend]
	if !ok {
		g = NewGuard(r.maxFailures, r.cooldown)
		r.guards[backend] = g
	}
	return g
}

// Consult implements Provider.
func (r *Router) Consult(ctx context.Context, role roles.Role, prompt string) string {
	text, err := r.Complete(ctx, role, prompt)
	if err != nil {
		r.logger.WithRole(role.ID).Warn("consultation failed",
			"error", err.Error(),
			"retryable", errors.IsRetryable(err),
			"timeout", errors.Is(err, errors.ErrTimeout))
		return Placeholder(err)
	}
	return text
}

// Complete is Consult with the failure returned instead of rendered.
func (r *Router) Complete(ctx context.Context, role roles.Role, prompt string) (string, error) {
	binding := role.Provider
	if binding == "" {
		binding = r.defaultBinding
	}
	name, model := ParseBinding(binding)

	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return "", errors.NewProviderError("backend not configured", errors.ErrProviderUnavailable).
			WithBackend(name).WithModel(model).WithRole(role.ID).WithRetryable(false)
	}

	guard := r.Guard(name)
	if !guard.Allow() {
		msg := fmt.Sprintf("backend paused after repeated failures until %s", guard.DisabledUntil().Format(time.TimeOnly))
		return "", errors.NewProviderError(msg, errors.ErrProviderUnavailable).
			WithBackend(name).WithModel(model).WithRole(role.ID)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := b.Complete(ctx, Request{Model: model, System: role.SystemPrompt, Prompt: prompt})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		guard.RecordFailure()
		if ctx.Err() == context.DeadlineExceeded {
			timeout := errors.NewTimeoutError(name+" completion", r.timeout).WithCause(err)
			return "", errors.NewProviderError("completion timed out", timeout).
				WithBackend(name).WithModel(model).WithRole(role.ID)
		}
		var perr *errors.ProviderError
		if errors.As(err, &perr) {
			return "", perr.WithRole(role.ID)
		}
		return "", errors.NewProviderError("completion failed", err).
			WithBackend(name).WithModel(model).WithRole(role.ID)
	}
	guard.RecordSuccess()
	return strings.TrimSpace(text), nil
}
