package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Keats0206/fundtrack/internal/clock"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

// DefaultRecentLimit is how many recent alerts feed a synthesis
const DefaultRecentLimit = 10

// Store is the persistence the service needs
type Store interface {
	RecentAlerts(ctx context.Context, companyID string, limit int) ([]model.Alert, error)
	SaveInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error)
	ActiveInsights(ctx context.Context, companyID string, now time.Time) ([]model.Insight, error)
	DeleteExpiredInsights(ctx context.Context, now time.Time) (int, error)
}

// Service generates, caches and expires insights on top of a store
type Service struct {
	store       Store
	synth       *Synthesizer
	clock       clock.Clock
	recentLimit int
}

// NewService creates an insight service
func NewService(store Store, synth *Synthesizer, clk clock.Clock, recentLimit int) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		store:       store,
		synth:       synth,
		clock:       clk,
		recentLimit: recentLimit,
	}
}

// Generate synthesizes a fresh batch from the company's most recent alerts and stores it
func (s *Service) Generate(ctx context.Context, companyID string) ([]model.Insight, error) {
	recent, err := s.store.RecentAlerts(ctx, companyID, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent alerts: %w", err)
	}

	insights := s.synth.Synthesize(companyID, recent, s.clock.Now())

	saved, err := s.store.SaveInsights(ctx, insights)
	if err != nil {
		return nil, fmt.Errorf("save insights: %w", err)
	}

	logger.Log.WithFields(logger.Fields{
		"company_id": companyID,
		"alerts":     len(recent),
		"insights":   len(saved),
	}).Debug("generated insights")

	return saved, nil
}

// GetOrGenerate returns the company's unexpired insights, generating a batch when none exist
func (s *Service) GetOrGenerate(ctx context.Context, companyID string) ([]model.Insight, error) {
	active, err := s.store.ActiveInsights(ctx, companyID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("load active insights: %w", err)
	}
	if len(active) > 0 {
		return active, nil
	}
	return s.Generate(ctx, companyID)
}

// ClearExpired deletes insights whose expiry has passed and returns how many were removed
func (s *Service) ClearExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredInsights(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired insights: %w", err)
	}
	return n, nil
}
