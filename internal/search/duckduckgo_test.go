package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com">Paris Weather</a>
  <div class="result__snippet">Currently 18 degrees and cloudy.</div>
</div>
<div class="result">
  <a class="result__a" href="#">Forecast</a>
  <div class="result__snippet">Rain expected tomorrow.</div>
</div>
<div class="result">
  <a class="result__a" href="#">No snippet here</a>
</div>
</body></html>`

func newTestEngine(t *testing.T, handler http.HandlerFunc) *DuckDuckGoEngine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	e := NewDuckDuckGoEngine(0)
	e.baseURL = srv.URL
	return e
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery, gotDF string
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotDF = r.URL.Query().Get("df")
		_, _ = w.Write([]byte(resultsPage))
	})

	results, err := e.Search(context.Background(), "current weather in Paris today", ModeNews, 5)
	require.NoError(t, err)
	assert.Equal(t, "current weather in Paris today", gotQuery)
	assert.Equal(t, "w", gotDF, "news mode restricts to the past week")

	// The third result has no snippet and is dropped.
	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "Paris Weather", Snippet: "Currently 18 degrees and cloudy."}, results[0])
	assert.Equal(t, Result{Title: "Forecast", Snippet: "Rain expected tomorrow."}, results[1])
}

func TestDuckDuckGoGeneralModeOmitsRecencyFilter(t *testing.T) {
	var gotDF string
	var hasDF bool
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotDF = r.URL.Query().Get("df")
		_, hasDF = r.URL.Query()["df"]
		_, _ = w.Write([]byte(resultsPage))
	})

	_, err := e.Search(context.Background(), "tell me a joke", ModeGeneral, 5)
	require.NoError(t, err)
	assert.False(t, hasDF, "general mode should not send df, got %q", gotDF)
}

func TestDuckDuckGoBoundsResultCount(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	})

	results, err := e.Search(context.Background(), "weather", ModeNews, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDuckDuckGoHTTPError(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := e.Search(context.Background(), "weather", ModeNews, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}
