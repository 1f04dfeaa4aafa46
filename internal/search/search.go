// Package search classifies the current user query and fetches a small set
// of web-search snippets to ground the completion in live information.
//
// Search is best-effort: every failure mode collapses to "no context" and
// the relay renders its prompt without a search section. Nothing in this
// package ever aborts a request.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/voxrelay/voxrelay/internal/config"
)

// Mode selects the search flavor for a query.
type Mode string

const (
	// ModeGeneral is a plain text search.
	ModeGeneral Mode = "general"

	// ModeNews is a recency-filtered search for freshness-sensitive queries.
	ModeNews Mode = "news"
)

// freshnessKeywords mark a query as likely needing up-to-date information.
// Matching is lowercased substring, so "weather" also catches "Weather?".
var freshnessKeywords = []string{
	"weather", "news", "today", "current", "latest",
	"price", "stock", "forecast", "temperature", "score", "election",
}

// Result is one search hit reduced to what the prompt needs.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Engine fetches raw results for a query in a given mode.
type Engine interface {
	Search(ctx context.Context, query string, mode Mode, maxResults int) ([]Result, error)
}

// Classify reports whether the query is freshness-sensitive.
func Classify(query string) Mode {
	q := strings.ToLower(query)
	for _, kw := range freshnessKeywords {
		if strings.Contains(q, kw) {
			return ModeNews
		}
	}
	return ModeGeneral
}

// AugmentQuery rewrites a freshness-sensitive query so the provider leans
// toward recent material. General queries pass through unchanged.
func AugmentQuery(query string, mode Mode) string {
	if mode != ModeNews {
		return query
	}
	return "current " + query + " today"
}

// Adapter wires the classifier, engine and cache into the single call the
// relay uses.
type Adapter struct {
	engine     Engine
	maxResults int
	timeout    time.Duration
	cache      *expirable.LRU[string, []Result] // nil when caching is disabled
}

// NewAdapter creates a search adapter from config. A nil engine selects the
// DuckDuckGo default.
func NewAdapter(cfg config.SearchConfig, engine Engine) *Adapter {
	if engine == nil {
		engine = NewDuckDuckGoEngine(cfg.Timeout)
	}

	var cache *expirable.LRU[string, []Result]
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = 256
		}
		cache = expirable.NewLRU[string, []Result](size, nil, cfg.CacheTTL)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > 6 {
		maxResults = 6
	}

	return &Adapter{
		engine:     engine,
		maxResults: maxResults,
		timeout:    cfg.Timeout,
		cache:      cache,
	}
}

// Fetch classifies the query, augments it if needed and returns snippets.
// A nil return means "no context" — provider error, empty query, or a
// successful search that extracted nothing usable.
func (a *Adapter) Fetch(ctx context.Context, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	mode := Classify(query)
	augmented := AugmentQuery(query, mode)

	key := cacheKey(query, mode)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			slog.Debug("search cache hit", "query", query, "mode", mode, "results", len(cached))
			return cached
		}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	results, err := a.engine.Search(ctx, augmented, mode, a.maxResults)
	if err != nil {
		slog.Warn("web search failed, continuing without context", "query", query, "error", err)
		return nil
	}
	if len(results) == 0 {
		slog.Debug("web search returned no results", "query", query, "mode", mode)
		return nil
	}

	if a.cache != nil {
		a.cache.Add(key, results)
	}

	slog.Debug("web search complete", "query", query, "mode", mode, "results", len(results))
	return results
}

// cacheKey normalizes the query so trivially different spellings share an entry.
func cacheKey(query string, mode Mode) string {
	return string(mode) + "|" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
