// Package classify assigns a sentiment and a topic to news text using keyword rules.
package classify

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Keats0206/fundtrack/internal/lexicon"
	"github.com/Keats0206/fundtrack/internal/model"
)

// ErrMalformedText is returned when an item's text cannot be classified
var ErrMalformedText = errors.New("malformed text")

// TopicRule selects Topic when Match reports true for the lowercased text
type TopicRule struct {
	Topic model.Topic
	Match func(lower string) bool
}

// Classifier assigns sentiment and topic labels.
// It is safe for concurrent use.
type Classifier struct {
	negative []string
	positive []string
	rules    []TopicRule
}

// NewClassifier creates a classifier from lex. Topic rules follow the lexicon's group order.
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	c := &Classifier{
		negative: lex.NegativeKeywords(),
		positive: lex.PositiveKeywords(),
	}

	for _, g := range lex.TopicGroups() {
		c.rules = append(c.rules, TopicRule{
			Topic: g.Topic,
			Match: containsAny(g.Keywords),
		})
	}

	return c
}

// Rules returns the topic rules in evaluation order
func (c *Classifier) Rules() []TopicRule {
	out := make([]TopicRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Sentiment returns negative when only negative keywords match, positive when
// only positive keywords match, and neutral otherwise.
func (c *Classifier) Sentiment(text string) model.Sentiment {
	lower := strings.ToLower(text)
	return c.sentiment(lower)
}

func (c *Classifier) sentiment(lower string) model.Sentiment {
	hasNegative := anyContained(lower, c.negative)
	hasPositive := anyContained(lower, c.positive)

	switch {
	case hasNegative && !hasPositive:
		return model.SentimentNegative
	case hasPositive && !hasNegative:
		return model.SentimentPositive
	default:
		return model.SentimentNeutral
	}
}

// Topic returns the topic of the first matching rule, or news
func (c *Classifier) Topic(text string) model.Topic {
	return c.topic(strings.ToLower(text))
}

func (c *Classifier) topic(lower string) model.Topic {
	for _, rule := range c.rules {
		if rule.Match(lower) {
			return rule.Topic
		}
	}
	return model.TopicNews
}

// Classify returns both labels for text
func (c *Classifier) Classify(text string) model.Classification {
	lower := strings.ToLower(text)
	return model.Classification{
		Sentiment: c.sentiment(lower),
		Topic:     c.topic(lower),
	}
}

// ClassifyItem classifies the item's title and snippet together.
// Empty fields are fine; invalid UTF-8 yields ErrMalformedText.
func (c *Classifier) ClassifyItem(item model.NewsItem) (model.ClassifiedItem, error) {
	if !utf8.ValidString(item.Title) || !utf8.ValidString(item.Snippet) {
		return model.ClassifiedItem{}, fmt.Errorf("classify %q: %w", strings.ToValidUTF8(item.Title, "?"), ErrMalformedText)
	}

	return model.ClassifiedItem{
		NewsItem:       item,
		Classification: c.Classify(Text(item)),
	}, nil
}

// Text is the text the classifier sees for item
func Text(item model.NewsItem) string {
	return item.Title + " " + item.Snippet
}

func containsAny(keywords []string) func(string) bool {
	return func(lower string) bool {
		return anyContained(lower, keywords)
	}
}

func anyContained(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
