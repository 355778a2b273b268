// Package classify maps free text to topic categories and detects the
// request patterns the orchestrator reacts to.
package classify

// Category is the topic of a message.
type Category string

const (
	Research Category = "research"
	Plan     Category = "plan"
	Tech     Category = "tech"
	GTM      Category = "gtm"
	General  Category = "general"
)

// Rule assigns Category when any keyword matches.
type Rule struct {
	Category Category
	Keywords []string
}

// Rules is evaluated in order; the first matching rule wins.
var Rules = []Rule{
	{Research, []string{
		"research", "investigate", "survey", "market size", "competitor", "trend", "statistic", "benchmark data",
		"調査", "リサーチ", "市場規模", "競合", "動向", "統計",
	}},
	{Plan, []string{
		"plan", "roadmap", "schedule", "milestone", "strategy", "steps", "timeline",
		"計画", "ロードマップ", "スケジュール", "戦略", "段取り", "マイルストーン",
	}},
	{Tech, []string{
		"tech", "architecture", "implementation", "implement", "api", "database", "infrastructure", "code", "system", "backend", "frontend",
		"技術", "実装", "アーキテクチャ", "システム", "開発", "インフラ",
	}},
	{GTM, []string{
		"go-to-market", "gtm", "marketing", "sales", "pricing", "launch", "promotion", "customer acquisition", "channel",
		"マーケ", "販売", "営業", "価格", "集客", "プロモーション", "ローンチ",
	}},
}

// Classify returns the category of the first rule with a keyword in text,
// or General.
func Classify(text string) Category {
	for _, r := range Rules {
		if ContainsAny(text, r.Keywords) {
			return r.Category
		}
	}
	return General
}

// Categories returns every category in priority order, General last.
func Categories() []Category {
	out := make([]Category, 0, len(Rules)+1)
	for _, r := range Rules {
		out = append(out, r.Category)
	}
	return append(out, General)
}
