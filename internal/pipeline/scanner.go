package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Keats0206/fundtrack/internal/aggregate"
	"github.com/Keats0206/fundtrack/internal/classify"
	"github.com/Keats0206/fundtrack/internal/clock"
	"github.com/Keats0206/fundtrack/internal/insight"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/metrics"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/store"
)

// NewsSource returns recent news for a company
type NewsSource interface {
	CompanyNews(ctx context.Context, company model.Company) ([]model.NewsItem, error)
}

// ScanStore is the persistence a scan needs
type ScanStore interface {
	store.CompanyStore
	store.AlertStore
}

// ScannerOptions holds the optional collaborators and timing of a Scanner
type ScannerOptions struct {
	DedupWindow  time.Duration
	CompanyDelay time.Duration
	Insights     *insight.Service // nil disables insight regeneration
	Backfill     *Backfiller      // nil disables snippet backfill
	Metrics      *metrics.Metrics
}

// Scanner turns company news into persisted alerts
type Scanner struct {
	source     NewsSource
	store      ScanStore
	aggregator *aggregate.Aggregator
	clock      clock.Clock
	opts       ScannerOptions
}

// NewScanner creates a Scanner
func NewScanner(source NewsSource, st ScanStore, agg *aggregate.Aggregator, clk clock.Clock, opts ScannerOptions) *Scanner {
	if clk == nil {
		clk = clock.System{}
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = 7 * 24 * time.Hour
	}
	return &Scanner{
		source:     source,
		store:      st,
		aggregator: agg,
		clock:      clk,
		opts:       opts,
	}
}

// ScanCompany fetches the company's news and stores alerts for titles not seen
// within the dedup window
func (s *Scanner) ScanCompany(ctx context.Context, company model.Company) (model.CompanyScanResult, error) {
	res := model.CompanyScanResult{CompanyID: company.ID, CompanyName: company.Name}
	log := logger.WithCompany(company.ID, company.Name)

	news, err := s.source.CompanyNews(ctx, company)
	if err != nil {
		return res, fmt.Errorf("fetch news: %w", err)
	}
	res.Fetched = len(news)

	if s.opts.Backfill != nil {
		news = s.opts.Backfill.Fill(ctx, company, news)
	}

	now := s.clock.Now()
	existing, err := s.store.RecentTitles(ctx, company.ID, now.Add(-s.opts.DedupWindow))
	if err != nil {
		return res, fmt.Errorf("load recent titles: %w", err)
	}

	out := s.aggregator.Process(company.ID, news, existing, now)
	res.Duplicates = out.Duplicates
	res.Skipped = len(out.Skipped)
	s.opts.Metrics.AddSkipped(metrics.ReasonDuplicate, out.Duplicates)

	for _, skipped := range out.Skipped {
		reason := "unclassifiable"
		if errors.Is(skipped, classify.ErrMalformedText) {
			reason = "malformed text"
		}
		log.WithField("index", skipped.Index).Warnf("Skipping news item: %s", reason)
	}
	s.opts.Metrics.AddSkipped(metrics.ReasonMalformed, len(out.Skipped))

	if len(out.Alerts) == 0 {
		log.WithField("fetched", res.Fetched).Debug("No new alerts")
		return res, nil
	}

	saved, saveErr := s.store.SaveAlerts(ctx, out.Alerts)
	res.AlertsCreated = len(saved)
	for _, a := range saved {
		s.opts.Metrics.AddAlert(string(a.Type))
	}
	if failed := len(out.Alerts) - len(saved); failed > 0 {
		res.Skipped += failed
		s.opts.Metrics.AddSkipped(metrics.ReasonPersist, failed)
		log.WithError(saveErr).Warnf("Failed to persist %d alerts", failed)
	}

	log.WithField("alerts", res.AlertsCreated).Info("Stored new alerts")

	if s.opts.Insights != nil && len(saved) > 0 {
		if _, err := s.opts.Insights.Generate(ctx, company.ID); err != nil {
			log.WithError(err).Warn("Insight generation failed")
		}
	}

	return res, nil
}

// ScanPortfolio scans every company in turn, pausing CompanyDelay between them.
// A failed company is logged and counted; only cancellation stops the loop.
func (s *Scanner) ScanPortfolio(ctx context.Context) (model.ScanSummary, error) {
	summary := model.ScanSummary{StartedAt: s.clock.Now()}
	wallStart := time.Now()

	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return summary, fmt.Errorf("list companies: %w", err)
	}

	var pace *rate.Limiter
	if s.opts.CompanyDelay > 0 {
		pace = rate.NewLimiter(rate.Every(s.opts.CompanyDelay), 1)
	}

	for _, company := range companies {
		if pace != nil {
			if err := pace.Wait(ctx); err != nil {
				summary.Duration = time.Since(wallStart)
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(wallStart)
			return summary, err
		}

		started := time.Now()
		res, err := s.ScanCompany(ctx, company)
		s.opts.Metrics.ObserveScan(time.Since(started), err)

		summary.CompaniesScanned++
		if err != nil {
			summary.Failed++
			res.Error = err.Error()
			logger.WithCompany(company.ID, company.Name).WithError(err).Error("Company scan failed")
		}
		summary.AlertsCreated += res.AlertsCreated
		summary.Results = append(summary.Results, res)
	}

	summary.Duration = time.Since(wallStart)
	logger.Log.WithFields(logger.Fields{
		"companies": summary.CompaniesScanned,
		"alerts":    summary.AlertsCreated,
		"failed":    summary.Failed,
	}).Info("Portfolio scan complete")

	return summary, nil
}

// Watch runs ScanPortfolio immediately and then every interval until ctx is done
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, onScan func(model.ScanSummary)) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		summary, err := s.ScanPortfolio(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Portfolio scan failed")
		} else if onScan != nil {
			onScan(summary)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
