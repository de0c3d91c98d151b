package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Keats0206/fundtrack/internal/clock"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAlerts(t *testing.T, s *store.Memory, companyID string, n int) {
	t.Helper()
	alerts := make([]model.Alert, n)
	for i := range alerts {
		alerts[i] = model.Alert{
			CompanyID:  companyID,
			Title:      "alert",
			Type:       model.TopicNews,
			Sentiment:  model.SentimentPositive,
			DetectedAt: testNow.Add(-time.Duration(i) * time.Hour),
		}
	}
	_, err := s.SaveAlerts(context.Background(), alerts)
	require.NoError(t, err)
}

func TestService_GenerateUsesRecentLimit(t *testing.T) {
	mem := store.NewMemory()
	seedAlerts(t, mem, "co-1", 15)

	svc := NewService(mem, NewSynthesizer(0), clock.Fixed(testNow), 10)

	insights, err := svc.Generate(context.Background(), "co-1")
	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.Equal(t, "Strong positive momentum. 10 positive signals detected. alert", insights[0].Content)
	for _, in := range insights {
		assert.NotEmpty(t, in.ID)
	}
}

func TestService_GetOrGenerateReusesActive(t *testing.T) {
	mem := store.NewMemory()
	seedAlerts(t, mem, "co-1", 1)
	ctx := context.Background()

	svc := NewService(mem, NewSynthesizer(0), clock.Fixed(testNow), 0)
	first, err := svc.GetOrGenerate(ctx, "co-1")
	require.NoError(t, err)

	second, err := svc.GetOrGenerate(ctx, "co-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)

	// A day later the batch has expired and a new one is generated
	later := NewService(mem, NewSynthesizer(0), clock.Fixed(testNow.Add(25*time.Hour)), 0)
	third, err := later.GetOrGenerate(ctx, "co-1")
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ID, third[0].ID)

	removed, err := later.ClearExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), removed)
}

type failingStore struct {
	*store.Memory
}

func (failingStore) RecentAlerts(ctx context.Context, companyID string, limit int) ([]model.Alert, error) {
	return nil, errors.New("connection refused")
}

func TestService_GenerateError(t *testing.T) {
	svc := NewService(failingStore{store.NewMemory()}, NewSynthesizer(0), clock.Fixed(testNow), 0)

	_, err := svc.Generate(context.Background(), "co-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load recent alerts")
}
