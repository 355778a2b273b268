// Package internal contains integration tests that verify the packages
// work together: the engine publishing on the event bus, the journal
// mirroring the transcript, and role reloads reaching a running engine.
package internal

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/testutil"
	"github.com/Iron-Ham/council/internal/transcript"
)

func newEngine(t *testing.T, bus *event.Bus, reg roles.Registry) *orchestrator.Engine {
	t.Helper()
	settings := orchestrator.DefaultSettings()
	settings.FollowupTurns = 1
	return orchestrator.New(reg, testutil.NewScriptedProvider(),
		orchestrator.WithBus(bus), orchestrator.WithSettings(settings))
}

// TestEventBusIntegration runs one turn and checks the lifecycle
// notifications a subscriber sees, in order.
func TestEventBusIntegration(t *testing.T) {
	bus := event.NewBus()

	var types []string
	var consulted []string
	var mu sync.Mutex
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		if e.EventType() == event.TypeTranscriptAppended {
			return
		}
		types = append(types, e.EventType())
		if rc, ok := e.(event.RoleConsultedEvent); ok {
			consulted = append(consulted, rc.RoleID)
		}
	})

	engine := newEngine(t, bus, testutil.FixtureRoles(t))
	ctx := context.Background()
	id, _ := engine.Start(ctx)
	if _, err := engine.AddMembers(ctx, id, []string{"alpha"}); err != nil {
		t.Fatalf("AddMembers() error = %v", err)
	}
	res, err := engine.HandleMessage(ctx, id, "alpha, what do you think of a freemium tier?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(types) < 4 {
		t.Fatalf("got %d notifications, want at least 4: %v", len(types), types)
	}
	if types[0] != event.TypeConversationStarted {
		t.Errorf("first notification = %q, want %q", types[0], event.TypeConversationStarted)
	}
	if last := types[len(types)-1]; last != event.TypeTurnCompleted {
		t.Errorf("last notification = %q, want %q", last, event.TypeTurnCompleted)
	}
	started := slices.Index(types, event.TypeTurnStarted)
	firstConsult := slices.Index(types, event.TypeRoleConsulted)
	if started < 0 || firstConsult < started {
		t.Errorf("turn.started must precede role.consulted: %v", types)
	}
	for _, roleID := range res.Roles {
		if !slices.Contains(consulted, roleID) {
			t.Errorf("role %q in the result was never reported as consulted", roleID)
		}
	}
}

// TestJournalMirrorsTranscript checks that an attached journal receives
// every transcript event of a conversation, identical to the log.
func TestJournalMirrorsTranscript(t *testing.T) {
	bus := event.NewBus()
	journal := transcript.NewJournal(t.TempDir(), nil)
	journal.Attach(bus)
	defer journal.Detach()

	engine := newEngine(t, bus, testutil.FixtureRoles(t))
	ctx := context.Background()
	id, _ := engine.Start(ctx)
	if _, err := engine.AddMembers(ctx, id, []string{"gamma"}); err != nil {
		t.Fatalf("AddMembers() error = %v", err)
	}
	if _, err := engine.HandleMessage(ctx, id, "gamma, please review the launch plan"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	want, err := engine.Events(id, 0)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	got, err := transcript.ReadJournal(journal.Path(id))
	if err != nil {
		t.Fatalf("ReadJournal() error = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("journal has %d events, log has %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Author != want[i].Author ||
			got[i].Lane != want[i].Lane || got[i].Text != want[i].Text {
			t.Errorf("event %d: journal %+v, log %+v", i, got[i], want[i])
		}
	}
}

const rolesV1 = `recommended: [alpha]
roles:
  - id: alpha
    title: Alpha
    system_prompt: You are alpha.
`

const rolesV2 = `recommended: [alpha, delta]
roles:
  - id: alpha
    title: Alpha
    system_prompt: You are alpha.
  - id: delta
    title: Delta
    system_prompt: You are delta.
`

// TestRoleReloadReachesEngine edits the role file under a running engine
// and checks the new role can join a conversation after the reload.
func TestRoleReloadReachesEngine(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "roles.yaml", rolesV1)

	bus := event.NewBus()
	reloads := make(chan event.RolesReloadedEvent, 4)
	bus.Subscribe(event.TypeRolesReloaded, func(e event.Event) {
		if r, ok := e.(event.RolesReloadedEvent); ok {
			reloads <- r
		}
	})

	store, err := roles.NewStore(path, roles.WithBus(bus))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	engine := newEngine(t, bus, store)
	ctx := context.Background()
	id, _ := engine.Start(ctx)

	if _, err := engine.AddMembers(ctx, id, []string{"delta"}); err == nil {
		t.Fatal("delta joined before it was defined")
	}

	testutil.WriteFile(t, dir, filepath.Base(path), rolesV2)
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	select {
	case r := <-reloads:
		if r.Err != "" {
			t.Fatalf("reload reported an error: %s", r.Err)
		}
	default:
		t.Fatal("no roles.reloaded notification")
	}

	if _, err := engine.AddMembers(ctx, id, []string{"delta"}); err != nil {
		t.Fatalf("AddMembers(delta) after reload error = %v", err)
	}
	members, err := engine.Members(ctx, id)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if !slices.Contains(members, "delta") {
		t.Errorf("members = %v, want delta", members)
	}
	if got := engine.Recommend(0); len(got) != 2 {
		t.Errorf("Recommend() returned %d roles, want 2", len(got))
	}
}
