package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Keats0206/fundtrack/internal/cache"
	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

// Analyst turns gathered company intelligence into an investor report.
// Its output is advisory and is never fed back into scores or alerts.
type Analyst struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
}

// NewAnalyst creates an analyst; a nil cache disables report caching
func NewAnalyst(provider Provider, c cache.Cache, ttl time.Duration) *Analyst {
	return &Analyst{provider: provider, cache: c, ttl: ttl, now: time.Now}
}

// Analyze asks the provider for a JSON report and validates it against the report schema
func (a *Analyst) Analyze(ctx context.Context, intel model.CompanyIntelligence) (*model.IntelligenceReport, error) {
	prompt := BuildAnalysisPrompt(intel)
	key := cache.Key("report", a.provider.Name(), intel.Company.ID, prompt)

	var cached model.IntelligenceReport
	if cache.GetJSON(a.cache, key, &cached) {
		logger.WithCompany(intel.Company.ID, intel.Company.Name).Debug("report cache hit")
		return &cached, nil
	}

	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:      analystSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.3,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", intel.Company.Name, err)
	}

	raw := cleanJSONBlock(resp.Text)
	if err := ValidateReport(raw); err != nil {
		return nil, err
	}

	var report model.IntelligenceReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	report.CompanyID = intel.Company.ID
	report.Provider = a.provider.Name()
	report.Model = resp.Model
	report.GeneratedAt = a.now().UTC()

	if err := cache.SetJSON(a.cache, key, report, a.ttl); err != nil {
		logger.Log.WithError(err).Warn("cache report")
	}
	return &report, nil
}

// FollowUpQuestions asks for the questions an investor should chase next
func (a *Analyst) FollowUpQuestions(ctx context.Context, company model.Company, report *model.IntelligenceReport) ([]string, error) {
	prompt, err := BuildFollowUpPrompt(company, report)
	if err != nil {
		return nil, err
	}

	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:      followUpSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("follow-up questions for %s: %w", company.Name, err)
	}
	return ParseNumberedList(resp.Text), nil
}

var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// ParseNumberedList returns the items of lines shaped like "1. text"
func ParseNumberedList(text string) []string {
	var items []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		loc := numberedLine.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if item := strings.TrimSpace(line[loc[1]:]); item != "" {
			items = append(items, item)
		}
	}
	return items
}
