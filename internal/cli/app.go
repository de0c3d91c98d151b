package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Keats0206/fundtrack/internal/aggregate"
	"github.com/Keats0206/fundtrack/internal/cache"
	"github.com/Keats0206/fundtrack/internal/classify"
	"github.com/Keats0206/fundtrack/internal/clock"
	"github.com/Keats0206/fundtrack/internal/extract"
	"github.com/Keats0206/fundtrack/internal/insight"
	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/llm"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/metrics"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/pipeline"
	"github.com/Keats0206/fundtrack/internal/score"
	"github.com/Keats0206/fundtrack/internal/search"
	"github.com/Keats0206/fundtrack/internal/store"
	"github.com/Keats0206/fundtrack/internal/util"
	"github.com/Keats0206/fundtrack/internal/worker"
)

// app holds the collaborators shared by the commands
type app struct {
	cfg     *model.Config
	lex     *lexicon.Lexicon
	store   store.Store
	cache   cache.Cache
	metrics *metrics.Metrics
	clock   clock.Clock
}

// newApp loads config and opens the store. Callers must Close it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lex, err := loadLexicon(cfg)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if portfolioFile != "" {
		p, err := store.LoadPortfolio(portfolioFile)
		if err != nil {
			st.Close()
			return nil, err
		}
		seeded, err := store.Seed(ctx, st, p)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("seed portfolio: %w", err)
		}
		logger.Log.WithField("companies", len(seeded)).Debug("Seeded portfolio")
	}

	return &app{
		cfg:     cfg,
		lex:     lex,
		store:   st,
		cache:   cache.New(cfg.Cache),
		metrics: metrics.New(),
		clock:   clock.System{},
	}, nil
}

// loadLexicon returns the lexicon override named in cfg, or the built-in one
func loadLexicon(cfg *model.Config) (*lexicon.Lexicon, error) {
	if cfg.Lexicon.Path == "" {
		return lexicon.Default(), nil
	}
	lex, err := lexicon.Load(cfg.Lexicon.Path)
	if err != nil {
		return nil, err
	}
	logger.Log.WithField("version", lex.Version()).Debug("Loaded lexicon override")
	return lex, nil
}

func openStore(ctx context.Context, cfg *model.Config) (store.Store, error) {
	if cfg.Database.URL == "" {
		logger.Log.Debug("No database configured, using in-memory store")
		return store.NewMemory(), nil
	}

	if cfg.Database.MigrateOnStart {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, err
		}
	}

	pg, err := store.NewPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

// Close releases the store
func (a *app) Close() {
	a.store.Close()
}

func (a *app) classifier() *classify.Classifier {
	return classify.NewClassifier(a.lex)
}

func (a *app) insightService() *insight.Service {
	return insight.NewService(a.store, insight.NewSynthesizer(a.cfg.Scan.InsightTTL), a.clock, a.cfg.Scan.RecentAlertLimit)
}

func (a *app) newsSource() (*search.Source, error) {
	client, err := search.NewPerplexityClient(a.cfg.Search, a.cfg.HTTP)
	if err != nil {
		return nil, err
	}

	var searcher search.Searcher = client
	if a.cfg.Search.CacheTTL > 0 {
		searcher = search.NewCachedSearcher(client, a.cache, a.cfg.Search.CacheTTL)
	}
	return search.NewSource(searcher, a.cfg.Search), nil
}

func (a *app) peopleSearcher() (search.PeopleSearcher, error) {
	client, err := search.NewLinkedInClient(a.cfg.Profiles, a.cfg.HTTP)
	if err != nil {
		return nil, err
	}
	return search.NewCachedPeopleSearcher(client, a.cache, a.cfg.Profiles.CacheTTL), nil
}

func (a *app) backfiller() *pipeline.Backfiller {
	h := a.cfg.HTTP
	fetcher := pipeline.NewFetcher(h.Timeout, h.UserAgent, h.MaxBodyBytes, h.Insecure, h.HTTPProxy, h.HTTPSProxy, h.NoProxy)
	robots := util.NewRobotsChecker(h.UserAgent, h.Timeout, util.NewProxyFunc(h.HTTPProxy, h.HTTPSProxy, h.NoProxy))
	limiter := worker.NewLimiter(a.cfg.RateLimiting.RequestsPerSecond, a.cfg.RateLimiting.BurstSize)
	return pipeline.NewBackfiller(fetcher, robots, limiter, extract.NewSnippetExtractor(extract.DefaultSnippetLength), a.cfg.Concurrency.Workers)
}

func (a *app) scanner() (*pipeline.Scanner, error) {
	source, err := a.newsSource()
	if err != nil {
		return nil, err
	}

	opts := pipeline.ScannerOptions{
		DedupWindow:  a.cfg.Scan.DedupWindow,
		CompanyDelay: a.cfg.Scan.CompanyDelay,
		Metrics:      a.metrics,
	}
	if a.cfg.Scan.GenerateInsights {
		opts.Insights = a.insightService()
	}
	if a.cfg.Scan.BackfillSnippets {
		opts.Backfill = a.backfiller()
	}

	agg := aggregate.NewAggregator(a.classifier())
	return pipeline.NewScanner(source, a.store, agg, a.clock, opts), nil
}

func (a *app) batchScorer() *worker.BatchScorer {
	b := worker.NewBatchScorer(score.NewScorer(a.lex), a.cfg.Concurrency.Workers)
	b.OnScore = func(s model.StealthAssessment) {
		a.metrics.ObserveStealthScore(s.Score)
	}
	return b
}

func (a *app) analyst(ctx context.Context) (*llm.Analyst, error) {
	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(a.cfg.LLM, a.cfg.HTTP))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errors.New("no LLM provider configured (set llm.provider or FUNDTRACK_LLM_PROVIDER)")
	}
	return llm.NewAnalyst(provider, a.cache, a.cfg.Cache.DiskTTL), nil
}

// resolveCompany finds a company by UUID, falling back to a case-insensitive name match
func (a *app) resolveCompany(ctx context.Context, ref string) (model.Company, error) {
	if _, err := uuid.Parse(ref); err == nil {
		c, err := a.store.GetCompany(ctx, ref)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return model.Company{}, err
		}
	}

	companies, err := a.store.ListCompanies(ctx)
	if err != nil {
		return model.Company{}, err
	}
	for _, c := range companies {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return model.Company{}, fmt.Errorf("company %q: %w", ref, store.ErrNotFound)
}
