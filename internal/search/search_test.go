package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxrelay/voxrelay/internal/config"
)

type fakeEngine struct {
	results []Result
	err     error
	calls   int

	gotQuery string
	gotMode  Mode
	gotMax   int
}

func (f *fakeEngine) Search(_ context.Context, query string, mode Mode, maxResults int) ([]Result, error) {
	f.calls++
	f.gotQuery = query
	f.gotMode = mode
	f.gotMax = maxResults
	return f.results, f.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Mode
	}{
		{"What's the weather in Paris?", ModeNews},
		{"latest news about the election", ModeNews},
		{"TSLA stock price", ModeNews},
		{"what is the temperature outside", ModeNews},
		{"Tell me a joke", ModeGeneral},
		{"explain goroutines", ModeGeneral},
		{"", ModeGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.query), "query %q", tt.query)
	}
}

func TestAugmentQuery(t *testing.T) {
	assert.Equal(t, "current weather in Paris today", AugmentQuery("weather in Paris", ModeNews))
	assert.Equal(t, "tell me a joke", AugmentQuery("tell me a joke", ModeGeneral))
}

func TestFetchFreshnessSensitive(t *testing.T) {
	engine := &fakeEngine{results: []Result{{Title: "t", Snippet: "s"}}}
	a := NewAdapter(config.SearchConfig{MaxResults: 5}, engine)

	results := a.Fetch(context.Background(), "weather in Paris")
	require.Len(t, results, 1)
	assert.Equal(t, ModeNews, engine.gotMode)
	assert.Equal(t, "current weather in Paris today", engine.gotQuery)
	assert.Equal(t, 5, engine.gotMax)
}

func TestFetchEngineErrorMeansNoContext(t *testing.T) {
	engine := &fakeEngine{err: errors.New("provider down")}
	a := NewAdapter(config.SearchConfig{MaxResults: 5}, engine)

	assert.Nil(t, a.Fetch(context.Background(), "weather in Paris"))
}

func TestFetchEmptyResultsMeansNoContext(t *testing.T) {
	engine := &fakeEngine{}
	a := NewAdapter(config.SearchConfig{MaxResults: 5}, engine)

	assert.Nil(t, a.Fetch(context.Background(), "tell me a joke"))
}

func TestFetchEmptyQuery(t *testing.T) {
	engine := &fakeEngine{results: []Result{{Title: "t", Snippet: "s"}}}
	a := NewAdapter(config.SearchConfig{MaxResults: 5}, engine)

	assert.Nil(t, a.Fetch(context.Background(), "   "))
	assert.Zero(t, engine.calls)
}

func TestFetchCacheHitSkipsEngine(t *testing.T) {
	engine := &fakeEngine{results: []Result{{Title: "t", Snippet: "s"}}}
	a := NewAdapter(config.SearchConfig{MaxResults: 5, CacheTTL: time.Minute, CacheSize: 8}, engine)

	first := a.Fetch(context.Background(), "weather in Paris")
	second := a.Fetch(context.Background(), "Weather  in   PARIS")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.calls, "normalized query should share a cache entry")
}

func TestFetchFailureNotCached(t *testing.T) {
	engine := &fakeEngine{err: errors.New("provider down")}
	a := NewAdapter(config.SearchConfig{MaxResults: 5, CacheTTL: time.Minute}, engine)

	a.Fetch(context.Background(), "weather in Paris")
	a.Fetch(context.Background(), "weather in Paris")
	assert.Equal(t, 2, engine.calls)
}

func TestMaxResultsClamped(t *testing.T) {
	engine := &fakeEngine{results: []Result{{Title: "t", Snippet: "s"}}}
	a := NewAdapter(config.SearchConfig{MaxResults: 50}, engine)

	a.Fetch(context.Background(), "anything at all")
	assert.Equal(t, 6, engine.gotMax)
}
