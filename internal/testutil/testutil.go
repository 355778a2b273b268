// Package testutil provides testing utilities for council tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/council/internal/roles"
)

// FollowupMarker appears in every follow-up question; the scripted provider
// uses it to tell follow-ups from initial consultations.
const FollowupMarker = "keep this headline unchanged"

// Call records one consultation.
type Call struct {
	RoleID string
	Prompt string
}

// ScriptedProvider is a provider.Provider that answers from queued replies
// and falls back to deterministic canned text. It is safe for concurrent use.
type ScriptedProvider struct {
	mu      sync.Mutex
	queued  map[string][]string
	calls   []Call
	counter map[string]int
}

// NewScriptedProvider creates an empty ScriptedProvider.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		queued:  make(map[string][]string),
		counter: make(map[string]int),
	}
}

// Queue adds replies returned, in order, to the next consultations of
// roleID.
func (p *ScriptedProvider) Queue(roleID string, replies ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queued[roleID] = append(p.queued[roleID], replies...)
}

// Consult implements provider.Provider.
func (p *ScriptedProvider) Consult(_ context.Context, role roles.Role, prompt string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{RoleID: role.ID, Prompt: prompt})
	p.counter[role.ID]++
	if q := p.queued[role.ID]; len(q) > 0 {
		p.queued[role.ID] = q[1:]
		return q[0]
	}
	if strings.Contains(prompt, FollowupMarker) {
		return fmt.Sprintf("%s detail %d: the first milestone is a two-week pilot.", role.Label(), p.counter[role.ID])
	}
	return fmt.Sprintf("- %s proposal: run a two-week pilot\n- Measure conversion against a baseline", role.Label())
}

// Calls returns every recorded consultation in order.
func (p *ScriptedProvider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallsFor returns the consultations of one role.
func (p *ScriptedProvider) CallsFor(roleID string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.RoleID == roleID {
			out = append(out, c)
		}
	}
	return out
}

// FixtureRoles returns a small role set: alpha, beta (requires alpha),
// gamma and an auxiliary scribe.
func FixtureRoles(t *testing.T) *roles.Set {
	t.Helper()
	set, err := roles.NewSet(
		roles.Role{ID: roles.OrchestratorID, Title: "Orchestrator", SystemPrompt: "You coordinate."},
		[]roles.Role{
			{ID: "alpha", Title: "Alpha", SystemPrompt: "You are alpha.", Aliases: []string{"アルファ"}},
			{ID: "beta", Title: "Beta", SystemPrompt: "You are beta.", Requires: []string{"alpha"}},
			{ID: "gamma", Title: "Gamma", SystemPrompt: "You are gamma."},
			{ID: "scribe", Title: "Scribe", SystemPrompt: "You write.", Auxiliary: true},
		},
		[]string{"alpha", "beta"},
	)
	if err != nil {
		t.Fatalf("failed to build fixture roles: %v", err)
	}
	return set
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", name, err)
	}
	return path
}
