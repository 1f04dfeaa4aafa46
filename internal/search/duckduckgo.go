package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoEngine implements Engine by scraping the DuckDuckGo HTML
// endpoint, which needs no API key.
type DuckDuckGoEngine struct {
	client  *http.Client
	baseURL string
}

// NewDuckDuckGoEngine creates a DuckDuckGo engine with the given per-request
// timeout (zero means no client-side timeout; the adapter still bounds the
// context).
func NewDuckDuckGoEngine(timeout time.Duration) *DuckDuckGoEngine {
	return &DuckDuckGoEngine{
		client:  &http.Client{Timeout: timeout},
		baseURL: duckDuckGoURL,
	}
}

// Search performs an HTML search and extracts up to maxResults results.
func (e *DuckDuckGoEngine) Search(ctx context.Context, query string, mode Mode, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	if mode == ModeNews {
		// Restrict to the past week so stale snippets don't masquerade as news.
		params.Set("df", "w")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	// The HTML endpoint rejects default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; voxrelay/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	return extractResults(doc, maxResults), nil
}

// extractResults pulls title + snippet pairs out of the result list.
func extractResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if len(results) >= maxResults {
			return
		}

		title := strings.TrimSpace(s.Find(".result__a").Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		if snippet == "" {
			// Fall back to whatever body text the result carries.
			snippet = strings.TrimSpace(s.Find(".result__body").Text())
		}

		if title != "" && snippet != "" {
			results = append(results, Result{Title: title, Snippet: snippet})
		}
	})
	return results
}
