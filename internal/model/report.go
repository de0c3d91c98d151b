package model

import "time"

// IntelligenceReport is the analyst-style report produced by the optional LLM layer.
// It is kept separate from alerts and insights and never feeds back into them.
type IntelligenceReport struct {
	CompanyID     string                `json:"company_id,omitempty"`
	Score         int                   `json:"score"`    // 0-100 analyst confidence
	Momentum      Momentum              `json:"momentum"` // strong_positive, positive, mixed, negative, critical
	Summary       string                `json:"summary"`
	Sections      []IntelligenceSection `json:"sections"`
	RiskFactors   []string              `json:"riskFactors"`
	Opportunities []string              `json:"opportunities"`
	NextActions   []string              `json:"nextActions"`

	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// IntelligenceSection is one titled block of the report
type IntelligenceSection struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Action    string    `json:"action,omitempty"`
	Sentiment Sentiment `json:"sentiment"`
}

// Momentum classifies the overall trajectory in an intelligence report
type Momentum string

const (
	MomentumStrongPositive Momentum = "strong_positive"
	MomentumPositive       Momentum = "positive"
	MomentumMixed          Momentum = "mixed"
	MomentumNegative       Momentum = "negative"
	MomentumCritical       Momentum = "critical"
)

// CompanyIntelligence is the raw material gathered from the search source
// before it is handed to the analyst.
type CompanyIntelligence struct {
	Company     Company    `json:"company"`
	News        []NewsItem `json:"news"`
	Funding     []NewsItem `json:"funding"`
	Competitors []NewsItem `json:"competitors"`
	General     []NewsItem `json:"general"`
	GatheredAt  time.Time  `json:"gathered_at"`
}

// All returns every gathered item in query order
func (c CompanyIntelligence) All() []NewsItem {
	items := make([]NewsItem, 0, len(c.News)+len(c.Funding)+len(c.Competitors)+len(c.General))
	items = append(items, c.News...)
	items = append(items, c.Funding...)
	items = append(items, c.Competitors...)
	items = append(items, c.General...)
	return items
}

// ScanSummary reports the outcome of a portfolio scan
type ScanSummary struct {
	CompaniesScanned int                 `json:"companiesScanned"`
	AlertsCreated    int                 `json:"alertsCreated"`
	Failed           int                 `json:"failed"`
	Results          []CompanyScanResult `json:"results,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	Duration         time.Duration       `json:"duration"`
}

// CompanyScanResult reports the outcome of scanning one company
type CompanyScanResult struct {
	CompanyID     string `json:"company_id"`
	CompanyName   string `json:"company_name"`
	Fetched       int    `json:"fetched"`
	AlertsCreated int    `json:"alerts_created"`
	Duplicates    int    `json:"duplicates"`
	Skipped       int    `json:"skipped"`
	Error         string `json:"error,omitempty"`
}
