package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/google/uuid"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	companies []model.Company
	alerts    []model.Alert
	insights  []model.Insight
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Close() {}

func (m *Memory) ListCompanies(ctx context.Context) ([]model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Company, len(m.companies))
	copy(out, m.companies)
	return out, nil
}

func (m *Memory) GetCompany(ctx context.Context, id string) (model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Company{}, fmt.Errorf("company %s: %w", id, ErrNotFound)
}

func (m *Memory) CreateCompany(ctx context.Context, c model.Company) (model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for _, existing := range m.companies {
		if existing.ID == c.ID {
			return model.Company{}, fmt.Errorf("company %s already exists", c.ID)
		}
	}
	m.companies = append(m.companies, c)
	return c, nil
}

func (m *Memory) RecentTitles(ctx context.Context, companyID string, since time.Time) (model.TitleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := model.NewTitleSet()
	for _, a := range m.alerts {
		if a.CompanyID == companyID && !a.DetectedAt.Before(since) {
			set.Add(a.Title)
		}
	}
	return set, nil
}

func (m *Memory) SaveAlerts(ctx context.Context, alerts []model.Alert) ([]model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		m.alerts = append(m.alerts, a)
		saved = append(saved, a)
	}
	return saved, nil
}

func (m *Memory) RecentAlerts(ctx context.Context, companyID string, limit int) ([]model.Alert, error) {
	return m.ListAlerts(ctx, AlertFilter{CompanyID: companyID, Limit: limit})
}

// ListAlerts returns matching alerts newest first. Alerts detected at the same
// instant keep insertion order.
func (m *Memory) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Alert
	for _, a := range m.alerts {
		if filter.CompanyID != "" && a.CompanyID != filter.CompanyID {
			continue
		}
		if filter.IsRead != nil && a.IsRead != *filter.IsRead {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) MarkAsRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id, ErrNotFound)
}

func (m *Memory) MarkAllAsRead(ctx context.Context, companyID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range m.alerts {
		if m.alerts[i].IsRead {
			continue
		}
		if companyID != "" && m.alerts[i].CompanyID != companyID {
			continue
		}
		m.alerts[i].IsRead = true
		n++
	}
	return n, nil
}

func (m *Memory) SaveInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]model.Insight, 0, len(insights))
	for _, in := range insights {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		m.insights = append(m.insights, in)
		saved = append(saved, in)
	}
	return saved, nil
}

func (m *Memory) ActiveInsights(ctx context.Context, companyID string, now time.Time) ([]model.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Insight
	for _, in := range m.insights {
		if in.CompanyID == companyID && in.Active(now) {
			out = append(out, in)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

func (m *Memory) DeleteExpiredInsights(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.insights[:0]
	removed := 0
	for _, in := range m.insights {
		if in.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, in)
	}
	m.insights = kept
	return removed, nil
}
