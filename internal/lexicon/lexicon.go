// Package lexicon holds the versioned keyword sets used by the scorer and classifier.
//
// A Lexicon is immutable once built. Accessors return copies so callers cannot
// mutate shared state.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultVersion is the version of the built-in lexicon
const DefaultVersion = "v1"

// TopicGroup is one topic and the keywords that select it
type TopicGroup struct {
	Topic    model.Topic `yaml:"topic"`
	Keywords []string    `yaml:"keywords"`
}

// Lexicon is an immutable set of keyword lists
type Lexicon struct {
	version        string
	stealthTitles  []string
	stealthCompany []string
	notable        []string
	founderTitles  []string
	employeeTitles []string
	vagueTitles    []string
	seniorTitles   []string
	negative       []string
	positive       []string
	topicGroups    []TopicGroup
}

// Definition is the serialisable form of a Lexicon
type Definition struct {
	Version                string       `yaml:"version"`
	StealthTitleKeywords   []string     `yaml:"stealth_title_keywords"`
	StealthCompanyKeywords []string     `yaml:"stealth_company_keywords"`
	NotableCompanies       []string     `yaml:"notable_companies"`
	FounderTitleKeywords   []string     `yaml:"founder_title_keywords"`
	EmployeeTitleKeywords  []string     `yaml:"employee_title_keywords"`
	VagueTitleKeywords     []string     `yaml:"vague_title_keywords"`
	SeniorTitleKeywords    []string     `yaml:"senior_title_keywords"`
	NegativeKeywords       []string     `yaml:"negative_keywords"`
	PositiveKeywords       []string     `yaml:"positive_keywords"`
	Topics                 []TopicGroup `yaml:"topics"`
}

// DefaultDefinition returns the built-in keyword lists
func DefaultDefinition() Definition {
	return Definition{
		Version: DefaultVersion,
		StealthTitleKeywords: []string{
			"building", "stealth", "founder", "co-founder", "exploring",
			"working on something", "new venture", "startup", "entrepreneur",
			"building in", "something new", "independent", "consulting", "advisor",
		},
		StealthCompanyKeywords: []string{
			"stealth", "confidential", "independent", "self-employed",
			"freelance", "consulting", "stealth startup", "stealth mode",
		},
		NotableCompanies: []string{
			"coinbase", "stripe", "uber", "airbnb", "meta", "facebook",
			"google", "apple", "amazon", "microsoft", "openai", "anthropic",
			"netflix", "spotify", "snapchat", "twitter", "tesla", "spacex",
		},
		FounderTitleKeywords:  []string{"founder", "ceo"},
		EmployeeTitleKeywords: []string{"engineer", "manager", "director", "vp", "head of"},
		VagueTitleKeywords:    []string{"exploring", "working on", "building something", "entrepreneur"},
		SeniorTitleKeywords:   []string{"vp", "director", "head of", "principal", "staff"},
		NegativeKeywords:      []string{"concern", "issue", "problem", "decline", "drop", "worry", "fail", "loss"},
		PositiveKeywords:      []string{"launch", "success", "growth", "increase", "win", "breakthrough", "raised"},
		Topics: []TopicGroup{
			{Topic: model.TopicFunding, Keywords: []string{"funding", "raised", "raises", "investment"}},
			{Topic: model.TopicProduct, Keywords: []string{"product", "launch", "release"}},
			{Topic: model.TopicHiring, Keywords: []string{"hire", "team", "employee"}},
			{Topic: model.TopicMarket, Keywords: []string{"market", "competitor", "industry"}},
		},
	}
}

// Default returns the built-in lexicon
func Default() *Lexicon {
	lex, err := New(DefaultDefinition())
	if err != nil {
		panic(fmt.Sprintf("built-in lexicon is invalid: %v", err))
	}
	return lex
}

// New builds a Lexicon from d. Keywords are lowercased and trimmed, empty
// keywords are dropped, and lists missing from d fall back to the defaults.
func New(d Definition) (*Lexicon, error) {
	fallback := DefaultDefinition()

	lex := &Lexicon{
		version:        d.Version,
		stealthTitles:  normalize(d.StealthTitleKeywords, fallback.StealthTitleKeywords),
		stealthCompany: normalize(d.StealthCompanyKeywords, fallback.StealthCompanyKeywords),
		notable:        normalize(d.NotableCompanies, fallback.NotableCompanies),
		founderTitles:  normalize(d.FounderTitleKeywords, fallback.FounderTitleKeywords),
		employeeTitles: normalize(d.EmployeeTitleKeywords, fallback.EmployeeTitleKeywords),
		vagueTitles:    normalize(d.VagueTitleKeywords, fallback.VagueTitleKeywords),
		seniorTitles:   normalize(d.SeniorTitleKeywords, fallback.SeniorTitleKeywords),
		negative:       normalize(d.NegativeKeywords, fallback.NegativeKeywords),
		positive:       normalize(d.PositiveKeywords, fallback.PositiveKeywords),
	}
	if lex.version == "" {
		lex.version = "custom"
	}

	groups := d.Topics
	if len(groups) == 0 {
		groups = fallback.Topics
	}

	seen := make(map[model.Topic]bool)
	for _, g := range groups {
		topic := model.Topic(strings.ToLower(strings.TrimSpace(string(g.Topic))))
		if !topic.Valid() {
			return nil, fmt.Errorf("unknown topic %q", g.Topic)
		}
		if topic == model.TopicNews {
			return nil, fmt.Errorf("topic %q is the fallback and cannot have keywords", topic)
		}
		if seen[topic] {
			return nil, fmt.Errorf("topic %q listed more than once", topic)
		}
		seen[topic] = true

		keywords := normalize(g.Keywords, nil)
		if len(keywords) == 0 {
			return nil, fmt.Errorf("topic %q has no keywords", topic)
		}
		lex.topicGroups = append(lex.topicGroups, TopicGroup{Topic: topic, Keywords: keywords})
	}

	return lex, nil
}

// Parse builds a Lexicon from a YAML document
func Parse(data []byte) (*Lexicon, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	return New(def)
}

// Load reads a YAML lexicon from path
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return Parse(data)
}

// Version returns the lexicon version label
func (l *Lexicon) Version() string { return l.version }

func (l *Lexicon) StealthTitleKeywords() []string   { return clone(l.stealthTitles) }
func (l *Lexicon) StealthCompanyKeywords() []string { return clone(l.stealthCompany) }
func (l *Lexicon) NotableCompanies() []string       { return clone(l.notable) }
func (l *Lexicon) FounderTitleKeywords() []string   { return clone(l.founderTitles) }
func (l *Lexicon) EmployeeTitleKeywords() []string  { return clone(l.employeeTitles) }
func (l *Lexicon) VagueTitleKeywords() []string     { return clone(l.vagueTitles) }
func (l *Lexicon) SeniorTitleKeywords() []string    { return clone(l.seniorTitles) }
func (l *Lexicon) NegativeKeywords() []string       { return clone(l.negative) }
func (l *Lexicon) PositiveKeywords() []string       { return clone(l.positive) }

// TopicGroups returns the topic groups in priority order
func (l *Lexicon) TopicGroups() []TopicGroup {
	out := make([]TopicGroup, len(l.topicGroups))
	for i, g := range l.topicGroups {
		out[i] = TopicGroup{Topic: g.Topic, Keywords: clone(g.Keywords)}
	}
	return out
}

// Definition returns the serialisable form of the lexicon
func (l *Lexicon) Definition() Definition {
	return Definition{
		Version:                l.version,
		StealthTitleKeywords:   l.StealthTitleKeywords(),
		StealthCompanyKeywords: l.StealthCompanyKeywords(),
		NotableCompanies:       l.NotableCompanies(),
		FounderTitleKeywords:   l.FounderTitleKeywords(),
		EmployeeTitleKeywords:  l.EmployeeTitleKeywords(),
		VagueTitleKeywords:     l.VagueTitleKeywords(),
		SeniorTitleKeywords:    l.SeniorTitleKeywords(),
		NegativeKeywords:       l.NegativeKeywords(),
		PositiveKeywords:       l.PositiveKeywords(),
		Topics:                 l.TopicGroups(),
	}
}

// normalize lowercases and trims keywords, drops empties and duplicates.
// A nil or empty list yields fallback.
func normalize(keywords, fallback []string) []string {
	if len(keywords) == 0 {
		keywords = fallback
	}

	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
