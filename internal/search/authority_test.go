package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keats0206/fundtrack/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	classifier := DefaultAuthorityClassifier()

	tests := []struct {
		url      string
		expected AuthorityTier
		desc     string
	}{
		{"https://www.sec.gov/cgi-bin/browse-edgar?company=acme", TierPrimary, "Filing site with www"},
		{"https://www.businesswire.com/news/home/2026/acme", TierPrimary, "Press wire"},
		{"https://data.census.gov/table", TierPrimary, "Government TLD"},
		{"https://techcrunch.com/2026/05/01/acme-raises/", TierSecondary, "Trusted press"},
		{"https://news.bloomberg.com/acme", TierSecondary, "Trusted press subdomain"},
		{"https://notbloomberg.com/acme", TierTertiary, "Suffix without dot boundary"},
		{"https://someblog.example/acme", TierTertiary, "Unknown domain"},
		{"not a url", TierTertiary, "Unparseable URL"},
		{"", TierTertiary, "Empty URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.Classify(tt.url))
		})
	}
}

func TestAuthorityClassifier_CompanyDomain(t *testing.T) {
	classifier := NewAuthorityClassifier(nil, nil)

	assert.Equal(t, TierPrimary, classifier.Classify("https://blog.acme.io/launch", "acme.io"))
	assert.Equal(t, TierTertiary, classifier.Classify("https://blog.acme.io/launch"))
}

func TestSortByAuthority(t *testing.T) {
	items := []model.NewsItem{
		{Title: "blog", URL: "https://someblog.example/a"},
		{Title: "press", URL: "https://techcrunch.com/a"},
		{Title: "own", URL: "https://acme.io/news"},
		{Title: "blog2", URL: "https://other.example/b"},
		{Title: "wire", URL: "https://prnewswire.com/acme"},
	}

	DefaultAuthorityClassifier().SortByAuthority(items, "acme.io")

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	assert.Equal(t, []string{"own", "wire", "press", "blog", "blog2"}, titles)
}

func TestCompanyDomain(t *testing.T) {
	assert.Equal(t, "acme.io", CompanyDomain("https://www.acme.io/about"))
	assert.Equal(t, "acme.io", CompanyDomain("acme.io"))
	assert.Equal(t, "", CompanyDomain(""))
}

func TestAuthorityTier_String(t *testing.T) {
	assert.Equal(t, "primary", TierPrimary.String())
	assert.Equal(t, "secondary", TierSecondary.String())
	assert.Equal(t, "tertiary", TierTertiary.String())
}

type fixedSearcher []model.NewsItem

func (f fixedSearcher) Search(ctx context.Context, q Query) ([]model.NewsItem, error) {
	out := make([]model.NewsItem, len(f))
	copy(out, f)
	return out, nil
}

func TestSource_IntelligenceOrdersByAuthority(t *testing.T) {
	src := NewSource(fixedSearcher{
		{Title: "aggregator", URL: "https://aggregator.example/acme"},
		{Title: "press", URL: "https://www.reuters.com/acme"},
		{Title: "own", URL: "https://acme.io/blog/series-b"},
	}, model.SearchConfig{})

	intel, err := src.Intelligence(context.Background(), model.Company{Name: "Acme", Website: "https://acme.io"})
	require.NoError(t, err)

	require.Len(t, intel.Funding, 3)
	assert.Equal(t, "own", intel.Funding[0].Title)
	assert.Equal(t, "press", intel.Funding[1].Title)
	assert.Equal(t, "aggregator", intel.Funding[2].Title)
}
