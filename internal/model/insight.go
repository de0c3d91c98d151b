package model

import "time"

// InsightType names the kind of derived insight
type InsightType string

const (
	InsightRecentActivity InsightType = "recent_activity"
	InsightMarketPosition InsightType = "market_position"
	InsightRiskMonitoring InsightType = "risk_monitoring"
)

// Insight is a short narrative derived from a company's recent alerts
type Insight struct {
	ID          string      `json:"id"`
	CompanyID   string      `json:"company_id"`
	InsightType InsightType `json:"insight_type"`
	Content     string      `json:"content"`
	GeneratedAt time.Time   `json:"generated_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Active reports whether the insight is still valid at now
func (i Insight) Active(now time.Time) bool {
	return i.ExpiresAt.After(now)
}

// Expired reports whether the insight's expiry has passed at now.
// An insight expiring exactly at now is neither active nor expired.
func (i Insight) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// Company is a portfolio company
type Company struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Sector           string     `json:"sector,omitempty" yaml:"sector,omitempty"`
	Stage            string     `json:"stage,omitempty" yaml:"stage,omitempty"`
	Website          string     `json:"website,omitempty" yaml:"website,omitempty"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	LogoURL          string     `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
	InvestmentDate   *time.Time `json:"investment_date,omitempty" yaml:"investment_date,omitempty"`
	OwnershipPercent float64    `json:"ownership_percent,omitempty" yaml:"ownership_percent,omitempty"`
}
