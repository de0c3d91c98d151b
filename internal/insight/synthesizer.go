// Package insight derives short narrative insights from a company's recent alerts.
package insight

import (
	"fmt"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
)

// DefaultTTL is how long a generated insight stays valid
const DefaultTTL = 24 * time.Hour

// Synthesizer builds insight batches from recent alerts.
// It never looks at previously generated insights.
type Synthesizer struct {
	ttl time.Duration
}

// NewSynthesizer creates a synthesizer; a non-positive ttl uses DefaultTTL
func NewSynthesizer(ttl time.Duration) *Synthesizer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Synthesizer{ttl: ttl}
}

// Synthesize derives up to three insights from recent, which must be ordered
// most recent first. The risk_monitoring insight is always present.
func (s *Synthesizer) Synthesize(companyID string, recent []model.Alert, now time.Time) []model.Insight {
	var (
		positive int
		negative int
		market   []model.Alert
	)
	for _, a := range recent {
		switch a.Sentiment {
		case model.SentimentPositive:
			positive++
		case model.SentimentNegative:
			negative++
		}
		if a.Type == model.TopicMarket {
			market = append(market, a)
		}
	}

	insights := make([]model.Insight, 0, 3)
	emit := func(kind model.InsightType, content string) {
		insights = append(insights, model.Insight{
			CompanyID:   companyID,
			InsightType: kind,
			Content:     content,
			GeneratedAt: now,
			ExpiresAt:   now.Add(s.ttl),
		})
	}

	if len(recent) > 0 {
		if 2*positive > len(recent) {
			emit(model.InsightRecentActivity, fmt.Sprintf(
				"Strong positive momentum. %d positive signals detected. %s", positive, recent[0].Title))
		} else {
			emit(model.InsightRecentActivity, fmt.Sprintf(
				"Mixed signals detected. Monitoring %d recent activities.", len(recent)))
		}
	}

	if len(market) > 0 {
		emit(model.InsightMarketPosition, fmt.Sprintf(
			"%d market signals detected. %s", len(market), market[0].Title))
	}

	if negative > 0 {
		emit(model.InsightRiskMonitoring, fmt.Sprintf(
			"%d critical signals detected. Recommend follow-up.", negative))
	} else {
		emit(model.InsightRiskMonitoring, "No major risks detected. Company showing stable progress.")
	}

	return insights
}
