package tui

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/testutil"
	"github.com/Iron-Ham/council/internal/transcript"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	settings := orchestrator.DefaultSettings()
	settings.FollowupTurns = 2
	engine := orchestrator.New(testutil.FixtureRoles(t), testutil.NewScriptedProvider(),
		orchestrator.WithSettings(settings))
	m := NewModel(context.Background(), engine)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	updated, _ = m.Update(m.startCmd()())
	return updated.(Model)
}

func typeLine(m Model, line string) (Model, tea.Cmd) {
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestModel_Start(t *testing.T) {
	m := newTestModel(t)
	if m.conversationID == "" {
		t.Fatal("conversation id not set after start")
	}
	if len(m.events) != 1 || m.events[0].Author != transcript.AuthorOrchestrator {
		t.Errorf("events = %+v, want the greeting", m.events)
	}
	if !strings.Contains(m.View(), "Orchestrator") {
		t.Error("View() does not show the greeting author")
	}
}

func TestModel_SendMessage(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeLine(m, "alpha, your opinion on pricing?")
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if !m.busy {
		t.Error("model not busy after submit")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}

	// A second submit while busy is ignored.
	if _, cmd := typeLine(m, "again"); cmd != nil {
		t.Error("submit while busy returned a command")
	}

	updated, _ := m.Update(m.sendCmd("alpha, your opinion on pricing?")())
	m = updated.(Model)
	if m.busy {
		t.Error("model still busy after the turn")
	}
	if m.err != nil {
		t.Fatalf("turn error = %v", m.err)
	}
	if !slices.Equal(m.members, []string{"alpha"}) {
		t.Errorf("members = %v, want [alpha]", m.members)
	}
	var consult int
	for _, ev := range m.events {
		if ev.Lane == transcript.ConsultLane("alpha") {
			consult++
		}
	}
	if consult == 0 {
		t.Error("no alpha consult events recorded")
	}
}

func TestModel_Commands(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantNotice string
	}{
		{"help", "/help", "/add <role>"},
		{"add usage", "/add", "usage: /add"},
		{"members empty", "/members", "no members yet"},
		{"roles", "/roles", "alpha (Alpha)"},
		{"recommend", "/recommend", "recommended: alpha, beta"},
		{"unknown", "/frobnicate", "unknown command /frobnicate"},
		{"lanes", "/lanes", "hiding role dialogues"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m, _ = typeLine(m, tt.line)
			if !strings.Contains(m.notice, tt.wantNotice) {
				t.Errorf("notice = %q, want it to contain %q", m.notice, tt.wantNotice)
			}
		})
	}
}

func TestModel_AddMembers(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeLine(m, "/add beta")
	if cmd == nil || !m.busy {
		t.Fatal("/add did not start a command")
	}
	updated, _ := m.Update(m.addCmd([]string{"beta"})())
	m = updated.(Model)
	if !slices.Equal(m.members, []string{"beta"}) {
		t.Errorf("members = %v, want [beta]", m.members)
	}
	last := m.events[len(m.events)-1]
	if !strings.Contains(last.Text, "Added Beta") {
		t.Errorf("last event = %q, want the add note", last.Text)
	}

	updated, _ = m.Update(m.addCmd([]string{"zeta"})())
	m = updated.(Model)
	if m.err == nil {
		t.Error("adding an unknown role did not surface an error")
	}
	if !strings.Contains(m.View(), "unknown role") {
		t.Error("View() does not show the error")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
	if updated.(Model).View() != "" {
		t.Error("View() after quit is not empty")
	}
}

func TestRenderTranscript(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	events := []transcript.Event{
		{ID: 1, Author: transcript.AuthorUser, Text: "hello council", Lane: transcript.LaneMain, Timestamp: ts},
		{ID: 2, Author: transcript.AuthorOrchestrator, Text: "what is the budget?", Lane: transcript.ConsultLane("alpha"), Timestamp: ts},
		{ID: 3, Author: "alpha", Text: "[provider error: timeout]", Lane: transcript.ConsultLane("alpha"), Timestamp: ts},
	}
	label := func(author string) string { return strings.ToUpper(author) }

	full := renderTranscript(events, true, label, 80)
	for _, want := range []string{"hello council", "ORCHESTRATOR → ALPHA", "provider error", "03:04:05"} {
		if !strings.Contains(full, want) {
			t.Errorf("transcript missing %q:\n%s", want, full)
		}
	}

	mainOnly := renderTranscript(events, false, label, 80)
	if strings.Contains(mainOnly, "budget") {
		t.Errorf("hidden lanes still rendered:\n%s", mainOnly)
	}
}
