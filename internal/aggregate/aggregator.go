// Package aggregate turns classified news items into new alerts, skipping titles
// already recorded for the company.
package aggregate

import (
	"time"

	"github.com/Keats0206/fundtrack/internal/classify"
	"github.com/Keats0206/fundtrack/internal/model"
)

// ItemError records a news item that was skipped because it could not be classified
type ItemError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Err   error  `json:"-"`
}

func (e ItemError) Error() string {
	return e.Err.Error()
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Result is the outcome of processing one batch
type Result struct {
	Alerts     []model.Alert
	Duplicates int
	Skipped    []ItemError
}

// Aggregator builds alerts from news batches
type Aggregator struct {
	classifier *classify.Classifier
}

// NewAggregator creates an aggregator that classifies with c
func NewAggregator(c *classify.Classifier) *Aggregator {
	return &Aggregator{classifier: c}
}

// Aggregate emits an alert for every item whose exact title is not in existing,
// preserving input order. Items repeated within the batch are all emitted.
// Alert IDs are left empty for the store to assign.
func (a *Aggregator) Aggregate(companyID string, items []model.ClassifiedItem, existing model.TitleSet, now time.Time) []model.Alert {
	alerts, _ := aggregate(companyID, items, existing, now)
	return alerts
}

// Process classifies news and aggregates the result. Items that fail
// classification are reported in Result.Skipped and never abort the batch.
func (a *Aggregator) Process(companyID string, news []model.NewsItem, existing model.TitleSet, now time.Time) Result {
	var res Result

	classified := make([]model.ClassifiedItem, 0, len(news))
	for i, item := range news {
		ci, err := a.classifier.ClassifyItem(item)
		if err != nil {
			res.Skipped = append(res.Skipped, ItemError{Index: i, Title: item.Title, Err: err})
			continue
		}
		classified = append(classified, ci)
	}

	res.Alerts, res.Duplicates = aggregate(companyID, classified, existing, now)
	return res
}

func aggregate(companyID string, items []model.ClassifiedItem, existing model.TitleSet, now time.Time) ([]model.Alert, int) {
	alerts := make([]model.Alert, 0, len(items))
	duplicates := 0

	for _, item := range items {
		if existing.Contains(item.Title) {
			duplicates++
			continue
		}

		alerts = append(alerts, model.Alert{
			CompanyID:  companyID,
			Type:       item.Topic,
			Title:      item.Title,
			Summary:    item.Snippet,
			Source:     item.URL,
			Sentiment:  item.Sentiment,
			DetectedAt: now,
			IsRead:     false,
			RawPayload: item.RawPayload,
		})
	}

	return alerts, duplicates
}
