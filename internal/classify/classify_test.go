package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"Please research the market size for pet insurance", Research},
		{"競合の動向を調べて", Research},
		{"Draft a roadmap for Q3", Plan},
		// research outranks plan
		{"research plan for next quarter", Research},
		{"What architecture should the API use?", Tech},
		{"実装の方針を決めたい", Tech},
		{"How should we do pricing for the launch?", GTM},
		{"集客を強化したい", GTM},
		{"Thanks, that helps", General},
		// "plan" inside a word does not count
		{"Give me an explanation", General},
		// full-width folds to ASCII
		{"ＲＯＡＤＭＡＰ please", Plan},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	got := Categories()
	want := []Category{Research, Plan, Tech, GTM, General}
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ＫＰＩ", "kpi"},
		{"KPI", "kpi"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"全員で？", "全員で?"},
		{"Straße", "strasse"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchHelpers(t *testing.T) {
	if !ContainsAny("We need a PLAN", []string{"plan"}) {
		t.Error("ContainsAny should match case-insensitively")
	}
	if ContainsAny("capital costs", []string{"api"}) {
		t.Error("ASCII keyword matched inside a word")
	}
	if !ContainsAny("全員でお願いします", []string{"全員"}) {
		t.Error("non-ASCII keyword should match anywhere")
	}
	if kw, ok := FirstMatch("cost and risk", []string{"risk", "cost"}); !ok || kw != "risk" {
		t.Errorf("FirstMatch() = %q, %v", kw, ok)
	}
	if got := MatchIndex("ask legal then finance", []string{"finance", "legal"}); got != 4 {
		t.Errorf("MatchIndex() = %d, want 4", got)
	}
	if got := CountMatches("kpi kpi metric", []string{"kpi", "metric", "cost"}); got != 2 {
		t.Errorf("CountMatches() = %d, want 2", got)
	}
}
