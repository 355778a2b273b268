package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// Normalize folds full-width and half-width forms to their canonical width
// and applies Unicode case folding, so "ＫＰＩ", "kpi" and "KPI" compare equal.
func Normalize(text string) string {
	folded := width.Fold.String(text)
	// Casers are stateful; one per call keeps Normalize goroutine-safe.
	return cases.Fold().String(folded)
}

// ContainsAny reports whether text contains any of the keywords. Keywords
// are expected in normalised form. ASCII keywords must begin at a word
// boundary ("plan" matches "planning" but not "explanation"); other
// keywords match anywhere.
func ContainsAny(text string, keywords []string) bool {
	_, ok := FirstMatch(text, keywords)
	return ok
}

// ContainsWord is ContainsAny with ASCII keywords also required to end at
// a word boundary, so "add" matches "add alpha" but not "address".
func ContainsWord(text string, keywords []string) bool {
	n := Normalize(text)
	for _, kw := range keywords {
		if indexBounded(n, kw, true) >= 0 {
			return true
		}
	}
	return false
}

// FirstMatch returns the first keyword, in list order, found in text.
func FirstMatch(text string, keywords []string) (string, bool) {
	n := Normalize(text)
	for _, kw := range keywords {
		if matchKeyword(n, kw) {
			return kw, true
		}
	}
	return "", false
}

// MatchIndex returns the position of the earliest occurrence of any keyword
// in text, or -1.
func MatchIndex(text string, keywords []string) int {
	n := Normalize(text)
	best := -1
	for _, kw := range keywords {
		if i := indexKeyword(n, kw); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// CountMatches returns how many distinct keywords occur in text.
func CountMatches(text string, keywords []string) int {
	n := Normalize(text)
	count := 0
	for _, kw := range keywords {
		if matchKeyword(n, kw) {
			count++
		}
	}
	return count
}

func matchKeyword(normalized, kw string) bool {
	return indexKeyword(normalized, kw) >= 0
}

func indexKeyword(normalized, kw string) int {
	return indexBounded(normalized, kw, false)
}

func indexBounded(normalized, kw string, whole bool) int {
	if kw == "" {
		return -1
	}
	if !isASCII(kw) {
		return strings.Index(normalized, kw)
	}
	offset := 0
	for {
		i := strings.Index(normalized[offset:], kw)
		if i < 0 {
			return -1
		}
		pos := offset + i
		end := pos + len(kw)
		startOK := pos == 0 || !isWordRune(lastRune(normalized[:pos]))
		endOK := !whole || end == len(normalized) || !isWordRune(firstRune(normalized[end:]))
		if startOK && endOK {
			return pos
		}
		offset = pos + len(kw)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
