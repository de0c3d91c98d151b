package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keats0206/fundtrack/internal/aggregate"
	"github.com/Keats0206/fundtrack/internal/classify"
	"github.com/Keats0206/fundtrack/internal/clock"
	"github.com/Keats0206/fundtrack/internal/insight"
	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/metrics"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/store"
)

var scanNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type fakeNews struct {
	mu    sync.Mutex
	items map[string][]model.NewsItem
	fail  map[string]error
	calls []string
}

func (f *fakeNews) CompanyNews(ctx context.Context, c model.Company) ([]model.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c.Name)
	if err := f.fail[c.Name]; err != nil {
		return nil, err
	}
	return f.items[c.Name], nil
}

func newTestAggregator() *aggregate.Aggregator {
	return aggregate.NewAggregator(classify.NewClassifier(lexicon.Default()))
}

func seedCompany(t *testing.T, mem *store.Memory, name string) model.Company {
	t.Helper()
	c, err := mem.CreateCompany(context.Background(), model.Company{Name: name})
	require.NoError(t, err)
	return c
}

func TestScanCompany_CreatesAlertsAndDedups(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	acme := seedCompany(t, mem, "Acme")

	_, err := mem.SaveAlerts(ctx, []model.Alert{
		{CompanyID: acme.ID, Title: "Acme opens Berlin office", DetectedAt: scanNow.Add(-24 * time.Hour)},
	})
	require.NoError(t, err)

	news := &fakeNews{items: map[string][]model.NewsItem{
		"Acme": {
			{Title: "Acme raises $20M Series A", Snippet: "Strong growth", URL: "https://news.example/a"},
			{Title: "Acme opens Berlin office", Snippet: "", URL: "https://news.example/b"},
			{Title: "Broken \xff title", Snippet: ""},
		},
	}}

	m := metrics.New()
	sc := NewScanner(news, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{Metrics: m})

	res, err := sc.ScanCompany(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 1, res.AlertsCreated)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, res.Skipped)

	alerts, err := mem.RecentAlerts(ctx, acme.ID, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Acme raises $20M Series A", alerts[0].Title)
	assert.Equal(t, model.TopicFunding, alerts[0].Type)
	assert.Equal(t, model.SentimentPositive, alerts[0].Sentiment)
	assert.Equal(t, scanNow, alerts[0].DetectedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsCreated.WithLabelValues(string(model.TopicFunding))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsSkipped.WithLabelValues(metrics.ReasonDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsSkipped.WithLabelValues(metrics.ReasonMalformed)))

	// A second scan of the same news creates nothing
	res, err = sc.ScanCompany(ctx, acme)
	require.NoError(t, err)
	assert.Zero(t, res.AlertsCreated)
	assert.Equal(t, 2, res.Duplicates)
}

func TestScanCompany_DedupWindowExpires(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	acme := seedCompany(t, mem, "Acme")

	_, err := mem.SaveAlerts(ctx, []model.Alert{
		{CompanyID: acme.ID, Title: "Acme launches API", DetectedAt: scanNow.Add(-8 * 24 * time.Hour)},
	})
	require.NoError(t, err)

	news := &fakeNews{items: map[string][]model.NewsItem{"Acme": {{Title: "Acme launches API"}}}}
	sc := NewScanner(news, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{DedupWindow: 7 * 24 * time.Hour})

	res, err := sc.ScanCompany(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsCreated)
}

func TestScanCompany_GeneratesInsights(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	acme := seedCompany(t, mem, "Acme")

	news := &fakeNews{items: map[string][]model.NewsItem{"Acme": {{Title: "Acme product launch is a success"}}}}
	svc := insight.NewService(mem, insight.NewSynthesizer(0), clock.Fixed(scanNow), 0)
	sc := NewScanner(news, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{Insights: svc})

	_, err := sc.ScanCompany(ctx, acme)
	require.NoError(t, err)

	active, err := mem.ActiveInsights(ctx, acme.ID, scanNow)
	require.NoError(t, err)
	assert.NotEmpty(t, active)
}

type partialStore struct {
	*store.Memory
}

func (p partialStore) SaveAlerts(ctx context.Context, alerts []model.Alert) ([]model.Alert, error) {
	saved, _ := p.Memory.SaveAlerts(ctx, alerts[:1])
	return saved, errors.New("insert alert: constraint violation")
}

func TestScanCompany_PartialPersistFailure(t *testing.T) {
	mem := store.NewMemory()
	acme := seedCompany(t, mem, "Acme")

	news := &fakeNews{items: map[string][]model.NewsItem{"Acme": {{Title: "one"}, {Title: "two"}}}}
	sc := NewScanner(news, partialStore{mem}, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{})

	res, err := sc.ScanCompany(context.Background(), acme)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsCreated)
	assert.Equal(t, 1, res.Skipped)
}

func TestScanPortfolio_ContinuesAfterFailure(t *testing.T) {
	mem := store.NewMemory()
	seedCompany(t, mem, "Acme")
	seedCompany(t, mem, "Globex")
	seedCompany(t, mem, "Initech")

	news := &fakeNews{
		items: map[string][]model.NewsItem{
			"Acme":    {{Title: "Acme raises seed"}},
			"Initech": {{Title: "Initech hires CFO"}, {Title: "Initech market update"}},
		},
		fail: map[string]error{"Globex": errors.New("search API returned 502")},
	}

	m := metrics.New()
	sc := NewScanner(news, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{Metrics: m})

	summary, err := sc.ScanPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.CompaniesScanned)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.AlertsCreated)
	require.Len(t, summary.Results, 3)
	assert.Contains(t, summary.Results[1].Error, "502")
	assert.Equal(t, scanNow, summary.StartedAt)

	assert.ElementsMatch(t, []string{"Acme", "Globex", "Initech"}, news.calls)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CompaniesScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanErrors))
}

func TestScanPortfolio_Cancelled(t *testing.T) {
	mem := store.NewMemory()
	seedCompany(t, mem, "Acme")
	seedCompany(t, mem, "Globex")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	news := &fakeNews{}
	sc := NewScanner(news, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{CompanyDelay: time.Hour})

	summary, err := sc.ScanPortfolio(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.CompaniesScanned)
	assert.Empty(t, news.calls)
}

func TestScanPortfolio_WaitsBetweenCompanies(t *testing.T) {
	mem := store.NewMemory()
	seedCompany(t, mem, "Acme")
	seedCompany(t, mem, "Globex")

	sc := NewScanner(&fakeNews{}, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{CompanyDelay: 50 * time.Millisecond})

	start := time.Now()
	summary, err := sc.ScanPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CompaniesScanned)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	mem := store.NewMemory()
	seedCompany(t, mem, "Acme")

	sc := NewScanner(&fakeNews{}, mem, newTestAggregator(), clock.Fixed(scanNow), ScannerOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	scans := 0
	err := sc.Watch(ctx, 10*time.Millisecond, func(model.ScanSummary) {
		scans++
		if scans == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, scans)

	assert.Error(t, sc.Watch(context.Background(), 0, nil))
}

func TestBackfiller_FillsEmptySnippets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>x</title></head><body>
<p>Acme closed a forty million dollar round led by a large growth investor this week.</p>
</body></html>`))
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, "fundtrack-test", 1<<20, false, "", "", "")
	b := NewBackfiller(fetcher, nil, nil, nil, 2)

	items := []model.NewsItem{
		{Title: "has snippet", Snippet: "kept", URL: srv.URL},
		{Title: "needs snippet", URL: srv.URL + "/a"},
		{Title: "no url"},
	}
	out := b.Fill(context.Background(), model.Company{Name: "Acme"}, items)

	require.Len(t, out, 3)
	assert.Equal(t, "kept", out[0].Snippet)
	assert.Contains(t, out[1].Snippet, "forty million dollar round")
	assert.Empty(t, out[2].Snippet)
	assert.Empty(t, items[1].Snippet, "input is not modified")
}

type failingFetcher struct{}

func (failingFetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	return nil, &StatusError{Code: http.StatusNotFound, URL: rawURL}
}

func TestBackfiller_FailSoft(t *testing.T) {
	b := NewBackfiller(failingFetcher{}, nil, nil, nil, 1)
	out := b.Fill(context.Background(), model.Company{Name: "Acme"}, []model.NewsItem{{Title: "t", URL: "https://news.example/x"}})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Snippet)
}
