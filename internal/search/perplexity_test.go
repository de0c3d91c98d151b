package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Keats0206/fundtrack/internal/cache"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPerplexity(t *testing.T, handler http.HandlerFunc) *PerplexityClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewPerplexityClient(model.SearchConfig{APIKey: "test-key", BaseURL: server.URL}, model.HTTPConfig{})
	require.NoError(t, err)
	return c
}

func TestNewPerplexityClient_MissingKey(t *testing.T) {
	_, err := NewPerplexityClient(model.SearchConfig{}, model.HTTPConfig{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestPerplexityClient_Search(t *testing.T) {
	c := newTestPerplexity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req perplexityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Acme news updates announcements", req.Query)
		assert.Equal(t, 10, req.MaxResults)
		assert.Equal(t, 512, req.MaxTokensPerPage)
		assert.Empty(t, req.DomainFilter)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "abc",
			"results": [
				{"title": "Acme raises $50M", "url": "https://example.com/a", "snippet": "Series B led by X", "date": "2026-05-01"},
				{"title": "Acme hires CFO", "url": "https://example.com/b", "content": "New finance chief"}
			]
		}`))
	})

	items, err := NewSource(c, model.SearchConfig{}).CompanyNews(context.Background(), model.Company{Name: "Acme"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Acme raises $50M", items[0].Title)
	assert.Equal(t, "Series B led by X", items[0].Snippet)
	assert.Equal(t, "2026-05-01", items[0].PublishedAt)
	assert.Contains(t, string(items[0].RawPayload), `"url": "https://example.com/a"`)

	assert.Equal(t, "New finance chief", items[1].Snippet, "falls back to content")
}

func TestPerplexityClient_ErrorStatus(t *testing.T) {
	c := newTestPerplexity(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), Query{Text: "Acme"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

type recordingSearcher struct {
	mu      sync.Mutex
	queries []Query
	fail    string
}

func (r *recordingSearcher) Search(ctx context.Context, q Query) ([]model.NewsItem, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()

	if r.fail != "" && strings.Contains(q.Text, r.fail) {
		return nil, errors.New("upstream down")
	}
	return []model.NewsItem{{Title: q.Text}}, nil
}

func TestSource_Intelligence(t *testing.T) {
	rec := &recordingSearcher{}
	src := NewSource(rec, model.SearchConfig{})

	intel, err := src.Intelligence(context.Background(), model.Company{Name: "Acme", Sector: "Fintech"})
	require.NoError(t, err)

	require.Len(t, rec.queries, 4)
	for _, q := range rec.queries {
		assert.Equal(t, TrustedDomains, q.DomainFilter)
		assert.Equal(t, 5, q.MaxResults)
	}

	assert.Equal(t, "Acme latest news announcements", intel.News[0].Title)
	assert.Equal(t, "Acme funding investment rounds recent", intel.Funding[0].Title)
	assert.Equal(t, "Acme competitors Fintech market landscape", intel.Competitors[0].Title)
	assert.Equal(t, "Acme company updates product launches", intel.General[0].Title)
	assert.Len(t, intel.All(), 4)
	assert.False(t, intel.GatheredAt.IsZero())
}

func TestSource_IntelligenceFailure(t *testing.T) {
	src := NewSource(&recordingSearcher{fail: "funding"}, model.SearchConfig{DomainFilter: []string{"example.com"}})

	_, err := src.Intelligence(context.Background(), model.Company{Name: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestCachedSearcher(t *testing.T) {
	rec := &recordingSearcher{}
	c := NewCachedSearcher(rec, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	ctx := context.Background()

	first, err := c.Search(ctx, Query{Text: "Acme", MaxResults: 5})
	require.NoError(t, err)
	second, err := c.Search(ctx, Query{Text: "Acme", MaxResults: 5})
	require.NoError(t, err)
	_, err = c.Search(ctx, Query{Text: "Acme", MaxResults: 6})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, rec.queries, 2)
}
