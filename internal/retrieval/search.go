package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SearXNG queries a SearXNG instance's JSON API.
type SearXNG struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewSearXNG creates a SearXNG searcher for the instance at baseURL.
func NewSearXNG(baseURL string, client *http.Client, userAgent string) *SearXNG {
	return &SearXNG{baseURL: strings.TrimRight(baseURL, "/"), client: client, userAgent: userAgent}
}

// Name implements Searcher.
func (s *SearXNG) Name() string { return "searxng" }

// Search implements Searcher.
func (s *SearXNG) Search(ctx context.Context, query string, n int) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", s.baseURL, url.QueryEscape(query))
	body, _, err := get(ctx, s.client, endpoint, s.userAgent, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("decode searxng response: %w", err)
	}
	var out []Result
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, Result{Title: strings.TrimSpace(r.Title), URL: r.URL})
		if len(out) == n {
			break
		}
	}
	return out, nil
}

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API.
type Brave struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBrave creates a Brave searcher.
func NewBrave(apiKey string, client *http.Client) *Brave {
	return &Brave{apiKey: apiKey, endpoint: braveEndpoint, client: client}
}

// Name implements Searcher.
func (b *Brave) Name() string { return "brave" }

// Search implements Searcher.
func (b *Brave) Search(ctx context.Context, query string, n int) ([]Result, error) {
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.endpoint, url.QueryEscape(query), n)
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Subscription-Token", b.apiKey)
	body, _, err := get(ctx, b.client, endpoint, "", header)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Web struct {
			Results []struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}
	var out []Result
	for _, r := range parsed.Web.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, Result{Title: strings.TrimSpace(r.Title), URL: r.URL})
		if len(out) == n {
			break
		}
	}
	return out, nil
}

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page. It needs no key.
type DuckDuckGo struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo(client *http.Client, userAgent string) *DuckDuckGo {
	return &DuckDuckGo{endpoint: duckDuckGoEndpoint, client: client, userAgent: userAgent}
}

// Name implements Searcher.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search implements Searcher.
func (d *DuckDuckGo) Search(ctx context.Context, query string, n int) ([]Result, error) {
	body, _, err := get(ctx, d.client, d.endpoint+"?q="+url.QueryEscape(query), d.userAgent, nil)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo results: %w", err)
	}

	var out []Result
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if len(out) >= n {
			return
		}
		if node.Type == html.ElementNode && node.DataAtom == atom.A && hasClass(node, "result__a") {
			if target := resolveDuckDuckGoLink(attr(node, "href")); target != "" {
				out = append(out, Result{Title: collapseWhitespace(nodeText(node)), URL: target})
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// resolveDuckDuckGoLink unwraps "//duckduckgo.com/l/?uddg=<target>"
// redirect links.
func resolveDuckDuckGoLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
