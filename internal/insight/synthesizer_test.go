package insight

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func alert(title string, topic model.Topic, sentiment model.Sentiment) model.Alert {
	return model.Alert{Title: title, Type: topic, Sentiment: sentiment}
}

func byType(insights []model.Insight) map[model.InsightType]model.Insight {
	out := make(map[model.InsightType]model.Insight)
	for _, in := range insights {
		out[in.InsightType] = in
	}
	return out
}

func TestSynthesize_Empty(t *testing.T) {
	s := NewSynthesizer(0)

	insights := s.Synthesize("co-1", nil, testNow)

	require.Len(t, insights, 1)
	assert.Equal(t, model.InsightRiskMonitoring, insights[0].InsightType)
	assert.Equal(t, "No major risks detected. Company showing stable progress.", insights[0].Content)
}

func TestSynthesize_StrongPositiveMomentum(t *testing.T) {
	s := NewSynthesizer(0)

	var recent []model.Alert
	for i := 0; i < 6; i++ {
		recent = append(recent, alert(fmt.Sprintf("Win %d", i), model.TopicProduct, model.SentimentPositive))
	}
	for i := 0; i < 4; i++ {
		recent = append(recent, alert(fmt.Sprintf("Other %d", i), model.TopicNews, model.SentimentNeutral))
	}

	got := byType(s.Synthesize("co-1", recent, testNow))

	activity := got[model.InsightRecentActivity]
	assert.True(t, strings.HasPrefix(activity.Content, "Strong positive momentum."))
	assert.Equal(t, "Strong positive momentum. 6 positive signals detected. Win 0", activity.Content)
}

func TestSynthesize_ExactlyHalfIsMixed(t *testing.T) {
	s := NewSynthesizer(0)

	recent := []model.Alert{
		alert("A", model.TopicNews, model.SentimentPositive),
		alert("B", model.TopicNews, model.SentimentNeutral),
	}

	got := byType(s.Synthesize("co-1", recent, testNow))
	assert.Equal(t, "Mixed signals detected. Monitoring 2 recent activities.", got[model.InsightRecentActivity].Content)
}

func TestSynthesize_MarketAndRisk(t *testing.T) {
	s := NewSynthesizer(0)

	recent := []model.Alert{
		alert("Funding news", model.TopicFunding, model.SentimentPositive),
		alert("Rival enters market", model.TopicMarket, model.SentimentNegative),
		alert("Industry report", model.TopicMarket, model.SentimentNeutral),
		alert("Layoff concern", model.TopicHiring, model.SentimentNegative),
	}

	insights := s.Synthesize("co-1", recent, testNow)
	require.Len(t, insights, 3)

	assert.Equal(t, model.InsightRecentActivity, insights[0].InsightType)
	assert.Equal(t, model.InsightMarketPosition, insights[1].InsightType)
	assert.Equal(t, model.InsightRiskMonitoring, insights[2].InsightType)

	assert.Equal(t, "2 market signals detected. Rival enters market", insights[1].Content)
	assert.Equal(t, "2 critical signals detected. Recommend follow-up.", insights[2].Content)
}

func TestSynthesize_Timestamps(t *testing.T) {
	s := NewSynthesizer(0)

	recent := []model.Alert{alert("Rival", model.TopicMarket, model.SentimentPositive)}
	for _, in := range s.Synthesize("co-9", recent, testNow) {
		assert.Equal(t, "co-9", in.CompanyID)
		assert.Equal(t, testNow, in.GeneratedAt)
		assert.Equal(t, 24*time.Hour, in.ExpiresAt.Sub(in.GeneratedAt))
		assert.Empty(t, in.ID)
	}
}

func TestSynthesize_CustomTTL(t *testing.T) {
	s := NewSynthesizer(time.Hour)

	insights := s.Synthesize("co-1", nil, testNow)
	assert.Equal(t, testNow.Add(time.Hour), insights[0].ExpiresAt)
}

func TestSynthesize_RepeatedCallsAreFresh(t *testing.T) {
	s := NewSynthesizer(0)
	recent := []model.Alert{alert("A", model.TopicNews, model.SentimentNeutral)}

	first := s.Synthesize("co-1", recent, testNow)
	second := s.Synthesize("co-1", recent, testNow.Add(time.Minute))

	assert.Len(t, second, len(first))
	assert.Equal(t, testNow.Add(time.Minute), second[0].GeneratedAt)
}
