package model

import (
	"encoding/json"
	"time"
)

// Sentiment is the tone assigned to a news item
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is a known sentiment
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Topic is the category assigned to a news item; it becomes the alert type
type Topic string

const (
	TopicFunding Topic = "funding"
	TopicProduct Topic = "product"
	TopicHiring  Topic = "hiring"
	TopicMarket  Topic = "market"
	TopicNews    Topic = "news"
)

// Topics lists every topic in classification priority order
func Topics() []Topic {
	return []Topic{TopicFunding, TopicProduct, TopicHiring, TopicMarket, TopicNews}
}

// Valid reports whether t is a known topic
func (t Topic) Valid() bool {
	for _, known := range Topics() {
		if t == known {
			return true
		}
	}
	return false
}

// NewsItem is a raw snippet handed over by the news/search source
type NewsItem struct {
	Title       string          `json:"title"`
	Snippet     string          `json:"snippet"`
	URL         string          `json:"url"`
	PublishedAt string          `json:"date,omitempty"` // As reported by the source, unparsed
	RawPayload  json.RawMessage `json:"raw_payload,omitempty"`
}

// Classification is the classifier verdict for a piece of text
type Classification struct {
	Sentiment Sentiment `json:"sentiment"`
	Topic     Topic     `json:"topic"`
}

// ClassifiedItem is a NewsItem with its classification attached
type ClassifiedItem struct {
	NewsItem
	Classification
}

// Alert is a persisted, classified news item about a portfolio company
type Alert struct {
	ID         string          `json:"id"`
	CompanyID  string          `json:"company_id"`
	Type       Topic           `json:"type"`
	Title      string          `json:"title"`
	Summary    string          `json:"summary"`
	Source     string          `json:"source"`
	Sentiment  Sentiment       `json:"sentiment"`
	DetectedAt time.Time       `json:"detected_at"`
	IsRead     bool            `json:"is_read"`
	RawPayload json.RawMessage `json:"perplexity_data,omitempty"`
}

// TitleSet is the set of alert titles already recorded for a company.
// Membership is exact and case-sensitive.
type TitleSet map[string]struct{}

// NewTitleSet builds a TitleSet from titles
func NewTitleSet(titles ...string) TitleSet {
	set := make(TitleSet, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return set
}

// Contains reports whether title is in the set
func (s TitleSet) Contains(title string) bool {
	_, ok := s[title]
	return ok
}

// Add inserts title into the set
func (s TitleSet) Add(title string) {
	s[title] = struct{}{}
}
