// Package retrieval fetches reference material for consultations: page
// text for URLs found in a message and web search results for research
// requests.
package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/util"
)

const (
	// DefaultMaxChars bounds the text of a fetched document.
	DefaultMaxChars = 8000

	bodyLimit = 2_000_000
)

// Document is the readable content of a fetched page.
type Document struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Result is one search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Searcher is one search backend.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// Retriever fetches pages and runs searches. It is safe for concurrent use.
type Retriever struct {
	client    *http.Client
	userAgent string
	maxChars  int
	searchers []Searcher
	logger    *logging.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Retriever) { r.client = c }
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(r *Retriever) { r.userAgent = ua }
}

// WithMaxChars bounds fetched document text.
func WithMaxChars(n int) Option {
	return func(r *Retriever) { r.maxChars = n }
}

// WithSearcher appends a search backend. Backends are tried in order.
func WithSearcher(s Searcher) Option {
	return func(r *Retriever) { r.searchers = append(r.searchers, s) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// New creates a Retriever.
func New(opts ...Option) *Retriever {
	r := &Retriever{
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: "council/1.0",
		maxChars:  DefaultMaxChars,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFromConfig builds a Retriever with the search backends enabled in cfg:
// SearXNG when a URL is set, Brave when a key is set, then DuckDuckGo.
func NewFromConfig(cfg config.RetrievalConfig, logger *logging.Logger) *Retriever {
	if logger == nil {
		logger = logging.NopLogger()
	}
	client := &http.Client{Timeout: cfg.Timeout()}
	opts := []Option{
		WithHTTPClient(client),
		WithUserAgent(cfg.UserAgent),
		WithMaxChars(cfg.MaxChars),
		WithLogger(logger),
	}
	if cfg.SearxngURL != "" {
		opts = append(opts, WithSearcher(NewSearXNG(cfg.SearxngURL, client, cfg.UserAgent)))
	}
	if cfg.BraveAPIKey != "" {
		opts = append(opts, WithSearcher(NewBrave(cfg.BraveAPIKey, client)))
	}
	if cfg.DuckDuckGo {
		opts = append(opts, WithSearcher(NewDuckDuckGo(client, cfg.UserAgent)))
	}
	return New(opts...)
}

// Fetch downloads url and extracts its title and readable text.
func (r *Retriever) Fetch(ctx context.Context, url string) (Document, error) {
	doc := Document{URL: url}
	body, contentType, err := get(ctx, r.client, url, r.userAgent, nil)
	if err != nil {
		return doc, errors.Join(errors.ErrRetrievalFailed, err)
	}

	if strings.Contains(contentType, "html") || contentType == "" {
		doc.Title, doc.Text = extractHTML(body)
	} else {
		doc.Text = collapseWhitespace(body)
	}
	doc.Text = util.CutRunes(doc.Text, r.maxChars)
	return doc, nil
}

// Search returns the results of the first backend that yields any. Backend
// failures are logged and skipped; no backend yields an empty result.
func (r *Retriever) Search(ctx context.Context, query string, n int) []Result {
	if n <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	for _, s := range r.searchers {
		results, err := s.Search(ctx, query, n)
		if err != nil {
			r.logger.Warn("search backend failed", "backend", s.Name(), "error", err.Error())
			continue
		}
		if len(results) > 0 {
			if len(results) > n {
				results = results[:n]
			}
			return results
		}
	}
	return nil
}

// Searchers returns the names of the configured search backends.
func (r *Retriever) Searchers() []string {
	names := make([]string, len(r.searchers))
	for i, s := range r.searchers {
		names[i] = s.Name()
	}
	return names
}

var urlRe = regexp.MustCompile(`https?://\S+`)

// ExtractURLs returns up to limit distinct http(s) URLs in text, with
// trailing punctuation removed.
func ExtractURLs(text string, limit int) []string {
	var out []string
	for _, m := range urlRe.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?)]}>'\"」』）。、")
		if m == "" || slices.Contains(out, m) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

func get(ctx context.Context, client *http.Client, url, userAgent string, header http.Header) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return "", "", fmt.Errorf("read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("http %d", resp.StatusCode)
	}
	return string(body), resp.Header.Get("Content-Type"), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
