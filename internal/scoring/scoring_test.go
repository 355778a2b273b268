package scoring

import (
	"strings"
	"testing"
)

const (
	richResponse = "Run a two-week pilot with 20 customers.\n" +
		"- Track conversion and retention as KPIs against a baseline\n" +
		"- Reuse our existing dashboard"
	genericResponse = "We should think about this carefully and consider many different aspects of the business before deciding anything."
)

func TestRank_PrefersMeasurableExperiment(t *testing.T) {
	res := Rank([]Candidate{
		{RoleID: "writer", Label: "Writer", Response: genericResponse},
		{RoleID: "analyst", Label: "Analyst", Response: richResponse},
	})
	w, ok := res.Winner()
	if !ok {
		t.Fatal("no adopted candidate")
	}
	if w.RoleID != "analyst" {
		t.Errorf("adopted %q, want analyst", w.RoleID)
	}
	if res.Entries[1].Score <= res.Entries[0].Score {
		t.Errorf("rich score %d not above generic %d", res.Entries[1].Score, res.Entries[0].Score)
	}
	if !strings.Contains(res.Rationale, "measured") {
		t.Errorf("Rationale = %q, want measurement reason", res.Rationale)
	}
	if w.Headline != "Track conversion and retention as KPIs against a baseline" {
		t.Errorf("Headline = %q", w.Headline)
	}
}

func TestRank_TiesGoToFirst(t *testing.T) {
	res := Rank([]Candidate{
		{RoleID: "a", Response: genericResponse},
		{RoleID: "b", Response: genericResponse},
	})
	if res.Adopted != 0 {
		t.Errorf("Adopted = %d, want 0", res.Adopted)
	}
}

func TestRank_Empty(t *testing.T) {
	res := Rank(nil)
	if _, ok := res.Winner(); ok {
		t.Error("Winner() on empty result")
	}
	if got := Render(res, false); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTotal  int
		wantPoints map[string]int
	}{
		{
			name:       "too short is penalised",
			text:       "ok",
			wantTotal:  -LengthPenalty,
			wantPoints: map[string]int{},
		},
		{
			name:       "hits are capped per category",
			text:       "Set up an experiment, a pilot, a prototype, an MVP and a PoC to test the hypothesis with users.",
			wantTotal:  3 * MaxHitsPerCategory,
			wantPoints: map[string]int{"validation": 3 * MaxHitsPerCategory},
		},
		{
			name:       "bullets count as structure",
			text:       "Plan for the quarter ahead of us all:\n1. Hire\n2. Build\n3. Sell\n4. Repeat",
			wantTotal:  MaxHitsPerCategory,
			wantPoints: map[string]int{StructureCategory: MaxHitsPerCategory},
		},
		{
			name:       "japanese cues",
			text:       "既存のツールを流用し、2週間で検証します。KPIはコンバージョン率とし、目標値を設定します。",
			wantTotal:  2*2 + 2 + 3 + 3*3,
			wantPoints: map[string]int{"feasibility": 4, "speed": 2, "validation": 3, "measurement": 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, points := Score(tt.text)
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d (points %v)", total, tt.wantTotal, points)
			}
			if len(points) != len(tt.wantPoints) {
				t.Errorf("points = %v, want %v", points, tt.wantPoints)
			}
			for k, v := range tt.wantPoints {
				if points[k] != v {
					t.Errorf("points[%s] = %d, want %d", k, points[k], v)
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	res := Rank([]Candidate{
		{RoleID: "writer", Label: "Writer", Response: genericResponse},
		{
			RoleID:         "analyst",
			Label:          "Analyst",
			Response:       richResponse,
			Clarifications: []string{"KPI: conversion above 3%", "Risk: small sample", "Staffing: one analyst"},
		},
	})

	full := Render(res, false)
	for _, want := range []string{
		"- Writer: We should think",
		"- Analyst: Run a two-week pilot with 20 customers. / - Track conversion",
		"  - KPI: conversion above 3%",
		"  - Risk: small sample",
		"Adopted: Track conversion and retention as KPIs against a baseline (Analyst)",
		"Why: ",
	} {
		if !strings.Contains(full, want) {
			t.Errorf("full summary missing %q:\n%s", want, full)
		}
	}
	if strings.Contains(full, "Staffing: one analyst") {
		t.Error("full summary shows more than two clarifications")
	}

	condensed := Render(res, true)
	if strings.Contains(condensed, "Adopted") {
		t.Errorf("condensed summary has an adoption section:\n%s", condensed)
	}
	if n := strings.Count(condensed, "\n- "); n > CondensedBullets {
		t.Errorf("condensed summary has %d bullets", n)
	}
	if !strings.Contains(condensed, "- Analyst:") {
		t.Errorf("condensed summary should lead with the best entry:\n%s", condensed)
	}
}
