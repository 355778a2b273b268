package classify

import "testing"

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Is this viable?", true},
		{"これで大丈夫？", true},
		{"how do we price this", true},
		{"どう進めるべきですか", true},
		{"Let's plan the launch.", false},
		{"計画を立ててください", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsQuestion(tt.text); got != tt.want {
			t.Errorf("IsQuestion(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDefinitionTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		ok   bool
	}{
		{"What is churn?", "churn", true},
		{"what's a cohort analysis", "cohort analysis", true},
		{"Define CAC.", "cac", true},
		{"LTVとは？", "ltv", true},
		{"PMFって何", "pmf", true},
		{"What is the best way to launch our product in three new regions?", "", false},
		{"Plan the launch", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			term, ok := DefinitionTerm(tt.text)
			if ok != tt.ok || term != tt.term {
				t.Errorf("DefinitionTerm() = %q, %v, want %q, %v", term, ok, tt.term, tt.ok)
			}
		})
	}
}

func TestListCount(t *testing.T) {
	tests := []struct {
		text string
		n    int
		ok   bool
	}{
		{"list 3 options for the name", 3, true},
		{"Give me 5 ideas", 5, true},
		{"３つの案を出して", 3, true},
		{"候補を4案", 4, true},
		{"list 40 alternatives", MaxListedOptions, true},
		{"全員で、それぞれ1つずつ具体的な案をください。", 0, false},
		{"no numbers here", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n, ok := ListCount(tt.text)
			if n != tt.n || ok != tt.ok {
				t.Errorf("ListCount() = %d, %v, want %d, %v", n, ok, tt.n, tt.ok)
			}
		})
	}
}

func TestAsksWhichOfThese(t *testing.T) {
	if !AsksWhichOfThese("Which of these is strongest?") || !AsksWhichOfThese("どれがいいと思う？") {
		t.Error("expected which-of-these detection")
	}
	if AsksWhichOfThese("list options") {
		t.Error("unexpected which-of-these detection")
	}
}

func TestAsksToAdd(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Please add alpha", true},
		{"Add legal.", true},
		{"can finance join us", true},
		{"Adding marketing would help", true},
		{"bring in the engineer", true},
		{"法務を追加して", true},
		{"How do we address the budget", false},
		{"Gamma, any additional opinion on the launch", false},
		{"a joint proposal", false},
		{"the added cost", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := AsksToAdd(tt.text); got != tt.want {
				t.Errorf("AsksToAdd(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
