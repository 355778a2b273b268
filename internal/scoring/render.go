package scoring

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/util"
)

// CondensedBullets is the number of bullets in a condensed summary.
const CondensedBullets = 2

// Bullet renders the summary line of one entry: its label and the first two
// non-empty lines of its response.
func Bullet(e Entry) string {
	lines := util.NonEmptyLines(e.Response)
	lines = lines[:min(2, len(lines))]
	body := util.TruncateString(strings.Join(lines, " / "), BulletMaxRunes)
	return fmt.Sprintf("- %s: %s", e.Label, body)
}

// Render produces the summary text. The full form lists every entry with up
// to two clarifications and names the adopted candidate; the condensed form
// has at most two one-line bullets and no adoption section.
func Render(res Result, condensed bool) string {
	if len(res.Entries) == 0 {
		return ""
	}
	var b strings.Builder
	if condensed {
		b.WriteString("Summary:\n")
		for _, e := range res.Ordered()[:min(CondensedBullets, len(res.Entries))] {
			fmt.Fprintf(&b, "- %s: %s\n", e.Label, util.TruncateString(e.Headline, BulletMaxRunes))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString("Summary:\n")
	for _, e := range res.Entries {
		b.WriteString(Bullet(e))
		b.WriteString("\n")
		for _, c := range e.Clarifications[:min(MaxClarifications, len(e.Clarifications))] {
			fmt.Fprintf(&b, "  - %s\n", util.TruncateString(c, BulletMaxRunes))
		}
	}
	if w, ok := res.Winner(); ok {
		fmt.Fprintf(&b, "\nAdopted: %s (%s)", w.Headline, w.Label)
		if res.Rationale != "" {
			fmt.Fprintf(&b, "\nWhy: %s.", res.Rationale)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
