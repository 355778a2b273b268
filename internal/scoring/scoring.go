// Package scoring ranks role responses with a fixed keyword-weighted
// heuristic and renders the turn summary.
package scoring

import (
	"slices"
	"sort"
	"strings"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/util"
)

// Scoring constants.
const (
	// MaxHitsPerCategory caps the distinct keyword hits counted per category.
	MaxHitsPerCategory = 3
	// MinLength and MaxLength bound a response before LengthPenalty applies.
	MinLength     = 40
	MaxLength     = 1200
	LengthPenalty = 3
	// BulletMaxRunes bounds a summary bullet.
	BulletMaxRunes = 150
	// MaxClarifications is the number of clarifications shown per role.
	MaxClarifications = 2
)

// Category is one group of cues that make a response actionable.
type Category struct {
	Name     string
	Weight   int
	Keywords []string
	// Reason is the justification phrase used in the rationale.
	Reason string
}

// StructureCategory counts bulleted and numbered lines instead of keywords.
const StructureCategory = "structure"

// Categories are scored in this order; the order also breaks rationale ties.
var Categories = []Category{
	{
		Name:   "validation",
		Weight: 3,
		Keywords: []string{
			"experiment", "a/b", "pilot", "prototype", "hypothesis", "validate", "validation", "poc", "mvp", "user test",
			"検証", "実験", "仮説", "試作", "プロトタイプ",
		},
		Reason: "it proposes a concrete experiment to validate the idea",
	},
	{
		Name:   "measurement",
		Weight: 3,
		Keywords: []string{
			"kpi", "metric", "measure", "conversion", "retention", "target", "baseline", "dashboard", "okr",
			"指標", "計測", "測定", "目標値", "コンバージョン",
		},
		Reason: "it defines how success will be measured",
	},
	{
		Name:   "speed",
		Weight: 2,
		Keywords: []string{
			"week", "quick", "fast", "short", "sprint", "immediately", "days", "today",
			"週", "すぐ", "短期", "迅速",
		},
		Reason: "it can show results quickly",
	},
	{
		Name:   "feasibility",
		Weight: 2,
		Keywords: []string{
			"existing", "off-the-shelf", "reuse", "saas", "open source", "library", "in-house", "proven",
			"既存", "流用", "実現可能",
		},
		Reason: "it builds on existing tools and capabilities",
	},
	{
		Name:   "cost",
		Weight: 2,
		Keywords: []string{
			"cost", "budget", "cheap", "low-cost", "free", "$", "roi", "break-even",
			"費用", "コスト", "予算", "低コスト",
		},
		Reason: "it keeps costs under control",
	},
	{
		Name:   "risk",
		Weight: 1,
		Keywords: []string{
			"risk", "compliance", "governance", "privacy", "security", "mitigat",
			"リスク", "ガバナンス", "規制", "セキュリティ",
		},
		Reason: "it addresses risk and governance",
	},
	{
		Name:   StructureCategory,
		Weight: 1,
		Reason: "it is broken into concrete steps",
	},
}

// Candidate is one response to rank.
type Candidate struct {
	RoleID string
	Label  string
	// Response is the anchor response of the role.
	Response string
	// Clarifications are labeled follow-up answers, shown under the bullet.
	Clarifications []string
}

// Entry is a scored candidate.
type Entry struct {
	Candidate
	Headline string
	Score    int
	// Points holds the contribution of each category with a hit.
	Points map[string]int
}

// Result is the outcome of Rank.
type Result struct {
	// Entries are in input order.
	Entries []Entry
	// Adopted is the index of the winning entry, -1 when there is none.
	Adopted   int
	Rationale string
}

// Winner returns the adopted entry.
func (r Result) Winner() (Entry, bool) {
	if r.Adopted < 0 || r.Adopted >= len(r.Entries) {
		return Entry{}, false
	}
	return r.Entries[r.Adopted], true
}

// Score computes the score of a response and the points per category.
func Score(text string) (int, map[string]int) {
	points := make(map[string]int)
	total := 0
	for _, c := range Categories {
		var hits int
		if c.Name == StructureCategory {
			hits = bulletLines(text)
		} else {
			hits = classify.CountMatches(text, c.Keywords)
		}
		hits = min(hits, MaxHitsPerCategory)
		if hits == 0 {
			continue
		}
		points[c.Name] = hits * c.Weight
		total += hits * c.Weight
	}
	if n := util.RuneLen(strings.TrimSpace(text)); n < MinLength || n > MaxLength {
		total -= LengthPenalty
	}
	return total, points
}

func bulletLines(text string) int {
	n := 0
	for _, line := range util.NonEmptyLines(text) {
		if _, ok := util.StripListMarker(line); ok {
			n++
		}
	}
	return n
}

// Rank scores every candidate. The highest score is adopted; ties go to the
// earlier candidate.
func Rank(candidates []Candidate) Result {
	res := Result{Adopted: -1}
	for i, c := range candidates {
		score, points := Score(c.Response)
		res.Entries = append(res.Entries, Entry{
			Candidate: c,
			Headline:  util.Headline(c.Response),
			Score:     score,
			Points:    points,
		})
		if res.Adopted < 0 || score > res.Entries[res.Adopted].Score {
			res.Adopted = i
		}
	}
	if w, ok := res.Winner(); ok {
		res.Rationale = rationale(w.Points)
	}
	return res
}

// rationale joins the reasons of the two strongest categories.
func rationale(points map[string]int) string {
	type scored struct {
		order  int
		points int
		reason string
	}
	var ranked []scored
	for i, c := range Categories {
		if p := points[c.Name]; p > 0 {
			ranked = append(ranked, scored{order: i, points: p, reason: c.Reason})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].points > ranked[j].points })

	var reasons []string
	for _, s := range ranked[:min(2, len(ranked))] {
		reasons = append(reasons, s.reason)
	}
	return strings.Join(reasons, " and ")
}

// Ordered returns the entries from best to worst, ties in input order.
func (r Result) Ordered() []Entry {
	out := slices.Clone(r.Entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
