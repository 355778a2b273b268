package variation

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/conversation"
)

func newConversation() *conversation.Conversation {
	return conversation.New("c1", time.Unix(0, 0))
}

func TestAcknowledge_SkipsQuestions(t *testing.T) {
	conv := newConversation()
	for _, text := range []string{"What is churn?", "How should we price this", "どう進めるべきですか"} {
		if line, ok := Acknowledge(conv, text); ok {
			t.Errorf("Acknowledge(%q) = %q, want skipped", text, line)
		}
	}
	if conv.AckHistory.Len() != 0 {
		t.Errorf("AckHistory.Len() = %d, want 0", conv.AckHistory.Len())
	}
}

func TestAcknowledge_UsesCategoryTemplates(t *testing.T) {
	conv := newConversation()
	line, ok := Acknowledge(conv, "Let's build a plan for the next quarter.")
	if !ok {
		t.Fatal("Acknowledge() skipped a statement")
	}
	if !slices.Contains(AckTemplates[classify.Plan], line) {
		t.Errorf("line %q is not a plan template", line)
	}
	if got := conv.AckRotation[string(classify.Plan)]; got != 1 {
		t.Errorf("rotation = %d, want 1", got)
	}
}

func TestAcknowledge_NeverRepeatsBackToBack(t *testing.T) {
	conv := newConversation()
	var prev string
	seen := make(map[string]bool)
	for i := range 20 {
		line, ok := Acknowledge(conv, "Let's build a plan for the next quarter.")
		if !ok {
			t.Fatalf("call %d skipped", i)
		}
		if line == prev {
			t.Fatalf("call %d repeated %q", i, line)
		}
		prev = line
		seen[line] = true
	}
	if !seen[FallbackAck] {
		t.Error("fallback phrase never used after templates were exhausted")
	}
	if conv.AckHistory.Len() != conversation.AckHistoryLimit {
		t.Errorf("AckHistory.Len() = %d, want %d", conv.AckHistory.Len(), conversation.AckHistoryLimit)
	}
	if conv.UsedTemplates.Len() != conversation.UsedTemplatesLimit {
		t.Errorf("UsedTemplates.Len() = %d, want %d", conv.UsedTemplates.Len(), conversation.UsedTemplatesLimit)
	}
}

func TestAcknowledge_FallbackIsMutated(t *testing.T) {
	conv := newConversation()
	var lines []string
	for range len(AckTemplates[classify.General]) + 2 {
		line, _ := Acknowledge(conv, "hello team")
		lines = append(lines, line)
	}
	n := len(AckTemplates[classify.General])
	if lines[n] != FallbackAck {
		t.Errorf("first fallback = %q, want %q", lines[n], FallbackAck)
	}
	if lines[n+1] != FallbackAck+" (2)" {
		t.Errorf("second fallback = %q, want mutated phrase", lines[n+1])
	}
}

func TestPick(t *testing.T) {
	candidates := []string{"a", "b", "c"}
	tests := []struct {
		name       string
		recent     []string
		candidates []string
		want       string
	}{
		{"no history", nil, candidates, "a"},
		{"resumes after last used", []string{"a"}, candidates, "b"},
		{"skips recent", []string{"c", "a"}, candidates, "b"},
		{"wraps around", []string{"b", "c"}, candidates, "a"},
		{"all recent picks least recent", []string{"a", "b", "c"}, candidates, "a"},
		{"all recent avoids latest", []string{"c", "b", "a"}, candidates, "c"},
		{"unrelated history", []string{"x", "y"}, candidates, "a"},
		{"single candidate", []string{"a"}, []string{"a"}, "a"},
		{"no candidates", []string{"a"}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pick(tt.recent, tt.candidates); got != tt.want {
				t.Errorf("Pick(%v) = %q, want %q", tt.recent, got, tt.want)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	used := map[string]bool{"q": true, "q (follow-up 2)": true}
	got := Unique("q", func(s string) bool { return used[s] })
	if got != "q (follow-up 3)" {
		t.Errorf("Unique() = %q", got)
	}
	if got := Unique("fresh", func(s string) bool { return used[s] }); got != "fresh" {
		t.Errorf("Unique() = %q, want unchanged", got)
	}
	if !strings.HasPrefix(Unique("q", func(s string) bool { return used[s] }), "q") {
		t.Error("Unique() must keep the original text as prefix")
	}
}
