package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
	"golang.org/x/sync/errgroup"
)

// TrustedDomains restricts intelligence queries when no filter is configured
var TrustedDomains = []string{
	"techcrunch.com",
	"bloomberg.com",
	"reuters.com",
	"theinformation.com",
	"crunchbase.com",
	"forbes.com",
}

const (
	newsTokensPerPage  = 512
	intelMaxResults    = 5
	intelTokensPerPage = 1024
)

// Source turns company records into search queries
type Source struct {
	searcher     Searcher
	maxResults   int
	domainFilter []string
	authority    *AuthorityClassifier
}

// NewSource wraps a Searcher with the configured limits
func NewSource(s Searcher, cfg model.SearchConfig) *Source {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	filter := cfg.DomainFilter
	if len(filter) == 0 {
		filter = TrustedDomains
	}
	return &Source{
		searcher:     s,
		maxResults:   maxResults,
		domainFilter: filter,
		authority:    NewAuthorityClassifier(PrimaryDomains, filter),
	}
}

// CompanyNews returns recent news for a company
func (s *Source) CompanyNews(ctx context.Context, company model.Company) ([]model.NewsItem, error) {
	return s.searcher.Search(ctx, Query{
		Text:             company.Name + " news updates announcements",
		MaxResults:       s.maxResults,
		MaxTokensPerPage: newsTokensPerPage,
	})
}

// Intelligence runs the news, funding, competitor and general queries concurrently.
// Any failing query fails the whole call. Each list is ordered most
// authoritative source first, counting the company's own website as primary.
func (s *Source) Intelligence(ctx context.Context, company model.Company) (model.CompanyIntelligence, error) {
	intel := model.CompanyIntelligence{Company: company}

	queries := []struct {
		text string
		dst  *[]model.NewsItem
	}{
		{company.Name + " latest news announcements", &intel.News},
		{company.Name + " funding investment rounds recent", &intel.Funding},
		{strings.Join(strings.Fields(company.Name+" competitors "+company.Sector+" market landscape"), " "), &intel.Competitors},
		{company.Name + " company updates product launches", &intel.General},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			items, err := s.searcher.Search(gctx, Query{
				Text:             q.text,
				MaxResults:       intelMaxResults,
				MaxTokensPerPage: intelTokensPerPage,
				DomainFilter:     s.domainFilter,
			})
			if err != nil {
				return fmt.Errorf("query %q: %w", q.text, err)
			}
			*q.dst = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.CompanyIntelligence{}, err
	}

	own := CompanyDomain(company.Website)
	for _, q := range queries {
		s.authority.SortByAuthority(*q.dst, own)
	}

	intel.GatheredAt = time.Now().UTC()
	return intel, nil
}
