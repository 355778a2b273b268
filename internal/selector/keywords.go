package selector

// KeywordRule routes messages mentioning any keyword to Role.
type KeywordRule struct {
	Role     string
	Keywords []string
}

// KeywordTable is scanned in order; roles are collected once each in table
// order. Entries for roles absent from the registry are ignored.
var KeywordTable = []KeywordRule{
	{"researcher", []string{"research", "survey", "competitor", "market size", "user interview", "調査", "リサーチ", "競合", "市場"}},
	{"planner", []string{"plan", "roadmap", "milestone", "schedule", "timeline", "計画", "ロードマップ", "スケジュール", "段取り"}},
	{"engineer", []string{"tech", "architecture", "implement", "api", "database", "infrastructure", "code", "system", "技術", "実装", "開発", "システム"}},
	{"marketer", []string{"marketing", "go-to-market", "gtm", "promotion", "brand", "customer acquisition", "channel", "マーケ", "集客", "プロモーション", "ブランド"}},
	{"finance", []string{"cost", "budget", "revenue", "pricing", "profit", "unit economics", "funding", "費用", "予算", "売上", "収益", "価格", "資金"}},
	{"legal", []string{"legal", "compliance", "regulation", "contract", "privacy", "license", "gdpr", "法務", "規制", "契約", "個人情報"}},
	{"designer", []string{"design", "ux", "user experience", "prototype", "onboarding", "デザイン", "ユーザー体験", "プロトタイプ"}},
	{"operations", []string{"operations", "staffing", "hiring", "support", "process", "logistics", "運用", "採用", "体制", "サポート"}},
	{"analyst", []string{"kpi", "metric", "analytics", "data", "dashboard", "a/b", "指標", "分析", "データ"}},
	{"writer", []string{"copy", "press release", "blog", "article", "文章", "コピー", "記事"}},
}
