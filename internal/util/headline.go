package util

import (
	"regexp"
	"strings"
)

// HeadlineMaxRunes bounds an extracted headline.
const HeadlineMaxRunes = 80

var (
	bulletGlyphs = []string{"- ", "* ", "+ ", "• ", "・", "● ", "○ ", "◦ ", "▪ ", "‣ ", "– ", "—"}

	// 1. / 1) / (1) / （1） and full-width digits
	numberedRe = regexp.MustCompile(`^(?:[0-9０-９]+[.)．）](?:\s+|$)|[(（][0-9０-９]+[)）]\s*)`)

	leadIns = []string{"premise", "proposal", "policy", "前提", "提案", "方針"}
)

// StripListMarker reports whether line starts with a bullet or numbering
// marker and returns the line without it.
func StripListMarker(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(line, g) {
			return strings.TrimSpace(strings.TrimPrefix(line, g)), true
		}
	}
	if loc := numberedRe.FindStringIndex(line); loc != nil {
		return strings.TrimSpace(line[loc[1]:]), true
	}
	return line, false
}

// Headline extracts a short title from a response: the first bulleted or
// numbered line with its marker removed, else the first non-empty line with
// a known lead-in ("Proposal:", "前提：" ...) removed. Markdown heading and
// bold markers are dropped. The result is at most HeadlineMaxRunes runes.
func Headline(text string) string {
	lines := NonEmptyLines(text)
	for _, line := range lines {
		if stripped, ok := StripListMarker(line); ok && stripped != "" {
			return CutRunes(cleanMarkup(stripped), HeadlineMaxRunes)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return CutRunes(stripLeadIn(cleanMarkup(lines[0])), HeadlineMaxRunes)
}

// NonEmptyLines returns the trimmed non-blank lines of text.
func NonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cleanMarkup(s string) string {
	s = strings.TrimLeft(s, "# ")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	return strings.TrimSpace(strings.Replace(s, "**", "", -1))
}

func stripLeadIn(s string) string {
	lower := strings.ToLower(s)
	for _, p := range leadIns {
		if !strings.HasPrefix(lower, p) {
			continue
		}
		rest := strings.TrimSpace(s[len(p):])
		if r, ok := strings.CutPrefix(rest, ":"); ok {
			return strings.TrimSpace(r)
		}
		if r, ok := strings.CutPrefix(rest, "："); ok {
			return strings.TrimSpace(r)
		}
	}
	return s
}
