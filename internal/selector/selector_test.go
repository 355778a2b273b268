package selector

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/council/internal/roles"
)

func TestSelect(t *testing.T) {
	reg := roles.Default()

	tests := []struct {
		name     string
		in       Input
		want     []string
		wantRule string
	}{
		{
			name:     "broadcast returns every member beyond the limit",
			in:       Input{Members: []string{"engineer", "planner", "marketer"}, Text: "Everyone, share your take", Limit: 2},
			want:     []string{"engineer", "planner", "marketer"},
			wantRule: RuleBroadcast,
		},
		{
			name:     "japanese broadcast",
			in:       Input{Members: []string{"researcher", "planner", "engineer"}, Text: "全員で、それぞれ1つずつ具体的な案をください。", Limit: 1},
			want:     []string{"researcher", "planner", "engineer"},
			wantRule: RuleBroadcast,
		},
		{
			name:     "continuation subset intersects members",
			in:       Input{Members: []string{"engineer", "planner"}, Text: "legal and planner only", Limit: 3, AwaitingContinuation: true},
			want:     []string{"planner"},
			wantRule: RuleContinuationSubset,
		},
		{
			name:     "add named specialists",
			in:       Input{Text: "Please add legal and the Finance team", Limit: 3},
			want:     []string{"legal", "finance"},
			wantRule: RuleAddSpecialist,
		},
		{
			name:     "add without valid names falls through to keywords",
			in:       Input{Members: []string{"engineer"}, Text: "add someone with an opinion on pricing", Limit: 3},
			want:     []string{"finance"},
			wantRule: RuleKeyword,
		},
		{
			name:     "additional is not an add request",
			in:       Input{Members: []string{"engineer", "planner", "marketer"}, Text: "Engineer, any additional opinion on the launch", Limit: 3},
			want:     []string{"engineer", "planner", "marketer"},
			wantRule: RuleOpinion,
		},
		{
			name:     "address is not an add request",
			in:       Input{Members: []string{"engineer", "planner"}, Text: "How do we address this, planner? Your thoughts", Limit: 3},
			want:     []string{"engineer", "planner"},
			wantRule: RuleOpinion,
		},
		{
			name:     "opinion unions members and mentions without unnamed auxiliaries",
			in:       Input{Members: []string{"engineer", "writer"}, Text: "give your opinion, planner too", Limit: 3},
			want:     []string{"engineer", "planner"},
			wantRule: RuleOpinion,
		},
		{
			name:     "named auxiliary is kept",
			in:       Input{Members: []string{"engineer", "writer"}, Text: "writer, what is your opinion", Limit: 3},
			want:     []string{"engineer", "writer"},
			wantRule: RuleOpinion,
		},
		{
			name:     "keyword table order and limit",
			in:       Input{Text: "We need a budget and a roadmap for the API", Limit: 2},
			want:     []string{"planner", "engineer"},
			wantRule: RuleKeyword,
		},
		{
			name:     "broad opinion falls back to recommended",
			in:       Input{Text: "any ideas?", Limit: 0},
			want:     roles.DefaultRecommended,
			wantRule: RuleRecommended,
		},
		{
			name:     "nothing applies",
			in:       Input{Text: "hello there", Limit: 3},
			want:     nil,
			wantRule: RuleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Registry = reg
			got := Select(tt.in)
			if got.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", got.Rule, tt.wantRule)
			}
			if !slices.Equal(got.Roles, tt.want) {
				t.Errorf("Roles = %v, want %v", got.Roles, tt.want)
			}
		})
	}
}

func TestSelect_Advisories(t *testing.T) {
	got := Select(Input{Text: "Please add legal and the Finance team", Limit: 3, Registry: roles.Default()})
	if len(got.Advisories) != 1 {
		t.Fatalf("Advisories = %+v, want one", got.Advisories)
	}
	adv := got.Advisories[0]
	if adv.Role != "finance" || !slices.Equal(adv.Missing, []string{"planner"}) {
		t.Errorf("advisory = %+v", adv)
	}
	if !got.Adds() {
		t.Error("Adds() = false for an add request")
	}
}

func TestRecommendedPadding(t *testing.T) {
	reg, err := roles.NewSet(roles.Role{}, []roles.Role{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "f"}, {ID: "g"}, {ID: "h"}, {ID: "i"},
	}, []string{"c", "a"})
	if err != nil {
		t.Fatal(err)
	}
	got := Recommended(reg)
	want := []string{"c", "a", "b", "d", "e", "f", "g", "h"}
	if !slices.Equal(got, want) {
		t.Errorf("Recommended() = %v, want %v", got, want)
	}
}

func TestMentions(t *testing.T) {
	reg := roles.Default()
	tests := []struct {
		text string
		want []string
	}{
		{"ask @legal then the Engineer and マーケター", []string{"legal", "engineer", "marketer"}},
		{"planner, planner again", []string{"planner"}},
		{"review the plan", nil},
		{"法務とデザイナーに聞いて", []string{"legal", "designer"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Mentions(tt.text, reg)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Mentions() = %v, want %v", got, tt.want)
			}
		})
	}
	if Mentions("legal", nil) != nil {
		t.Error("Mentions() with nil registry should be nil")
	}
}
