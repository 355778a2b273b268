// Package provider connects roles to text-completion backends.
//
// A Backend is the fallible lower layer: one HTTP API. The Router picks a
// backend from the role's binding ("backend:model"), guards each backend
// against repeated failures and turns every failure into an in-band
// placeholder reply, so a Provider never returns an error.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/roles"
)

// Backend names.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
	BackendOffline   = "offline"
)

// Provider answers a prompt in the voice of a role. Consult never fails; a
// failure is reported inside the returned text.
type Provider interface {
	Consult(ctx context.Context, role roles.Role, prompt string) string
}

// Request is one completion call.
type Request struct {
	// Model overrides the backend's default model when set.
	Model  string
	System string
	Prompt string
}

// Backend is a completion API.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ParseBinding splits "backend:model". The model part may be empty.
func ParseBinding(binding string) (backend, model string) {
	backend, model, _ = strings.Cut(strings.TrimSpace(binding), ":")
	return strings.ToLower(strings.TrimSpace(backend)), strings.TrimSpace(model)
}

// Placeholder renders a failure as a reply.
func Placeholder(err error) string {
	return fmt.Sprintf("[provider error: %v]", err)
}

// IsPlaceholder reports whether text is a failure placeholder.
func IsPlaceholder(text string) bool {
	return strings.HasPrefix(text, "[provider error: ")
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, role roles.Role, prompt string) string

// Consult calls f.
func (f Func) Consult(ctx context.Context, role roles.Role, prompt string) string {
	return f(ctx, role, prompt)
}
