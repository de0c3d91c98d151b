// Package store persists companies, alerts and insights.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// AlertFilter narrows ListAlerts. Zero values mean no filter.
type AlertFilter struct {
	CompanyID string
	IsRead    *bool
	Limit     int
}

// CompanyStore reads and writes portfolio companies
type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]model.Company, error)
	GetCompany(ctx context.Context, id string) (model.Company, error)
	CreateCompany(ctx context.Context, c model.Company) (model.Company, error)
}

// AlertStore reads and writes alerts
type AlertStore interface {
	// RecentTitles returns titles of the company's alerts detected at or after since
	RecentTitles(ctx context.Context, companyID string, since time.Time) (model.TitleSet, error)
	// SaveAlerts assigns IDs and persists alerts. Individual failures are skipped;
	// saved holds the alerts that were written and err joins the failures.
	SaveAlerts(ctx context.Context, alerts []model.Alert) (saved []model.Alert, err error)
	// RecentAlerts returns up to limit alerts, most recently detected first
	RecentAlerts(ctx context.Context, companyID string, limit int) ([]model.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error)
	MarkAsRead(ctx context.Context, id string) error
	// MarkAllAsRead marks every unread alert read; an empty companyID means all companies
	MarkAllAsRead(ctx context.Context, companyID string) (int, error)
}

// InsightStore reads and writes insights
type InsightStore interface {
	SaveInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error)
	// ActiveInsights returns the company's insights expiring after now, newest first
	ActiveInsights(ctx context.Context, companyID string, now time.Time) ([]model.Insight, error)
	// DeleteExpiredInsights removes insights that expired before now
	DeleteExpiredInsights(ctx context.Context, now time.Time) (int, error)
}

// Store is the full persistence surface
type Store interface {
	CompanyStore
	AlertStore
	InsightStore
	Close()
}
