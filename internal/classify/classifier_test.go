package classify

import (
	"errors"
	"testing"

	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewClassifier(lexicon.Default())
}

func TestSentiment(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want model.Sentiment
	}{
		{"Revenue growth accelerates", model.SentimentPositive},
		{"Investors worry about churn", model.SentimentNegative},
		{"Quarterly update published", model.SentimentNeutral},
		{"", model.SentimentNeutral},
		// Both sets present is neutral no matter the counts
		{"Raised, raised and raised again despite a decline", model.SentimentNeutral},
		{"SUCCESS", model.SentimentPositive},
		// Substring matching: "issue" inside "reissued"
		{"Reissued guidance", model.SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Sentiment(tt.text))
		})
	}
}

func TestTopic_PriorityOrder(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text string
		want model.Topic
	}{
		{"Acme raised a seed round and will launch next week", model.TopicFunding},
		{"New product release", model.TopicProduct},
		{"Team expands with new hire", model.TopicHiring},
		{"Competitor enters market", model.TopicMarket},
		{"CEO interviewed on podcast", model.TopicNews},
		{"Launch event brings new hire", model.TopicProduct},
		{"Hiring into a new market", model.TopicMarket},
		{"", model.TopicNews},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Topic(tt.text))
		})
	}
}

func TestRules_ExplicitOrder(t *testing.T) {
	rules := newTestClassifier().Rules()
	require.Len(t, rules, 4)

	assert.Equal(t, model.TopicFunding, rules[0].Topic)
	assert.Equal(t, model.TopicProduct, rules[1].Topic)
	assert.Equal(t, model.TopicHiring, rules[2].Topic)
	assert.Equal(t, model.TopicMarket, rules[3].Topic)

	// Every rule is independently testable
	assert.True(t, rules[0].Match("series b investment"))
	assert.False(t, rules[0].Match("product release"))
	assert.True(t, rules[1].Match("product release"))
}

func TestClassifyItem_FundingScenario(t *testing.T) {
	c := newTestClassifier()

	item := model.NewsItem{
		Title:   "Acme raises $20M Series B",
		Snippet: "Acme announced a $20M raise to fuel growth",
		URL:     "https://example.com/acme",
	}

	got, err := c.ClassifyItem(item)
	require.NoError(t, err)
	assert.Equal(t, model.SentimentPositive, got.Sentiment)
	assert.Equal(t, model.TopicFunding, got.Topic)
	assert.Equal(t, item, got.NewsItem)
}

func TestClassifyItem_MissingFields(t *testing.T) {
	c := newTestClassifier()

	got, err := c.ClassifyItem(model.NewsItem{})
	require.NoError(t, err)
	assert.Equal(t, model.SentimentNeutral, got.Sentiment)
	assert.Equal(t, model.TopicNews, got.Topic)
}

func TestClassifyItem_Malformed(t *testing.T) {
	c := newTestClassifier()

	_, err := c.ClassifyItem(model.NewsItem{Title: "Bad \xff bytes"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedText))

	_, err = c.ClassifyItem(model.NewsItem{Title: "ok", Snippet: "\xc3\x28"})
	assert.ErrorIs(t, err, ErrMalformedText)
}

func TestClassify_CustomTopicOrder(t *testing.T) {
	lex, err := lexicon.Parse([]byte(`
topics:
  - topic: product
    keywords: [launch]
  - topic: funding
    keywords: [raised]
`))
	require.NoError(t, err)

	c := NewClassifier(lex)
	assert.Equal(t, model.TopicProduct, c.Topic("raised money to launch"))
	assert.Equal(t, model.TopicNews, c.Topic("new hire"))
}
