package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/retrieval"
)

// referenceMaterial fetches the URLs of the message, or searches when a
// research request carries none. It runs at most once per turn; every role
// of the turn sees the same material.
func (t *turn) referenceMaterial() string {
	if t.referenceDone {
		return t.reference
	}
	t.referenceDone = true
	if t.e.retriever == nil {
		return ""
	}

	logger := t.logger.With("component", "retrieval")
	var urls []string
	if t.settings.MaxURLs > 0 {
		urls = retrieval.ExtractURLs(t.text, t.settings.MaxURLs)
	}

	var parts []string
	switch {
	case len(urls) > 0:
		for _, u := range urls {
			doc, err := t.e.retriever.Fetch(t.ctx, u)
			if err != nil {
				logger.Warn("fetch failed", "url", u, "error", err.Error())
				parts = append(parts, fmt.Sprintf("[fetch failed: %s: %v]", u, err))
				continue
			}
			parts = append(parts, renderDocument(doc))
		}
	case t.settings.SearchResults > 0 && classify.Classify(t.text) == classify.Research:
		results := t.e.retriever.Search(t.ctx, t.text, t.settings.SearchResults)
		if len(results) == 0 {
			logger.Debug("search returned no results")
			break
		}
		lines := make([]string, 0, len(results)+1)
		lines = append(lines, "Search results:")
		for _, r := range results {
			lines = append(lines, fmt.Sprintf("- %s (%s)", r.Title, r.URL))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	t.reference = strings.Join(parts, "\n\n")
	return t.reference
}

func renderDocument(doc retrieval.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", doc.URL)
	if doc.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	}
	b.WriteString(doc.Text)
	return b.String()
}
