package pipeline

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Keats0206/fundtrack/internal/extract"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/util"
	"github.com/Keats0206/fundtrack/internal/worker"
)

// errDisallowed is returned when robots.txt forbids fetching a URL
var errDisallowed = errors.New("disallowed by robots.txt")

// PageFetcher downloads a page, retrying transient failures
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error)
}

// Backfiller fills empty news snippets from the article page
type Backfiller struct {
	fetcher   PageFetcher
	robots    *util.RobotsChecker
	limiter   *worker.Limiter
	extractor *extract.SnippetExtractor
	workers   int
}

// NewBackfiller creates a Backfiller. robots and limiter may be nil.
func NewBackfiller(fetcher PageFetcher, robots *util.RobotsChecker, limiter *worker.Limiter, extractor *extract.SnippetExtractor, workers int) *Backfiller {
	if workers <= 0 {
		workers = 1
	}
	if extractor == nil {
		extractor = extract.NewSnippetExtractor(extract.DefaultSnippetLength)
	}
	return &Backfiller{
		fetcher:   fetcher,
		robots:    robots,
		limiter:   limiter,
		extractor: extractor,
		workers:   workers,
	}
}

// Fill returns items with empty snippets filled where the page could be read.
// Failures leave the snippet empty and are only logged. The input is not modified.
func (b *Backfiller) Fill(ctx context.Context, company model.Company, items []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, len(items))
	copy(out, items)

	log := logger.WithCompany(company.ID, company.Name)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range out {
		if strings.TrimSpace(out[i].Snippet) != "" || out[i].URL == "" {
			continue
		}
		i := i
		g.Go(func() error {
			snippet, err := b.snippet(gctx, out[i].URL, company.Name)
			if err != nil {
				log.WithField("url", out[i].URL).WithError(err).Warn("Snippet backfill failed")
				return nil
			}
			out[i].Snippet = snippet
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (b *Backfiller) snippet(ctx context.Context, rawURL, subject string) (string, error) {
	if b.robots != nil {
		allowed, delay, err := b.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", errDisallowed
		}
		if b.limiter != nil && delay > 0 {
			b.limiter.RespectCrawlDelay(rawURL, delay)
		}
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, rawURL); err != nil {
			return "", err
		}
	}

	res, err := b.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return b.extractor.Extract(res.HTML, subject)
}
