package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
)

const analystSystemPrompt = "You are an expert venture capital analyst who synthesizes market intelligence into actionable investment insights. You provide structured, data-driven analysis with specific recommendations."

const followUpSystemPrompt = "You are a VC analyst generating smart follow-up questions based on intelligence reports."

// maxItemsPerSection bounds prompt size
const maxItemsPerSection = 8

// BuildAnalysisPrompt renders gathered intelligence into the analyst prompt
func BuildAnalysisPrompt(intel model.CompanyIntelligence) string {
	c := intel.Company

	var b strings.Builder
	fmt.Fprintf(&b, "You are a venture capital analyst. Analyze the following intelligence about %s (%s, %s) and provide a structured VC-focused report.\n\n",
		c.Name, orUnknown(c.Sector), orUnknown(c.Stage))

	b.WriteString("INTELLIGENCE DATA:\n")
	writeSection(&b, "Recent news", intel.News)
	writeSection(&b, "Funding", intel.Funding)
	writeSection(&b, "Competitors", intel.Competitors)
	writeSection(&b, "General updates", intel.General)

	b.WriteString(`
Provide your analysis in the following JSON structure:
{
  "score": <0-100 investor confidence score>,
  "momentum": "<strong_positive|positive|mixed|negative|critical>",
  "summary": "<2-3 sentence executive summary>",
  "sections": [
    {"title": "Funding and Financial Position", "content": "<analysis>", "action": "<investor action>", "sentiment": "<positive|neutral|negative>"},
    {"title": "Product and Market Traction", "content": "<analysis>", "action": "<investor action>", "sentiment": "<positive|neutral|negative>"},
    {"title": "Strategic Direction and Leadership", "content": "<analysis>", "action": "<investor action>", "sentiment": "<positive|neutral|negative>"}
  ],
  "riskFactors": ["<risk>", "..."],
  "opportunities": ["<opportunity>", "..."],
  "nextActions": ["<action>", "..."]
}

Focus on specific metrics, numbers and dates; competitive positioning; burn rate, runway and funding needs; key hires and departures; product milestones; strategic risks and opportunities.
Only use facts from the intelligence data above. Be direct, data-driven and actionable.`)

	return b.String()
}

// BuildFollowUpPrompt asks for the next questions an investor should investigate
func BuildFollowUpPrompt(company model.Company, report *model.IntelligenceReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return fmt.Sprintf("Based on this intelligence about %s, suggest 3 critical questions the investor should investigate next. Answer as a numbered list.\n\n%s",
		company.Name, data), nil
}

func writeSection(b *strings.Builder, title string, items []model.NewsItem) {
	fmt.Fprintf(b, "\n## %s\n", title)
	if len(items) == 0 {
		b.WriteString("(no results)\n")
		return
	}
	for i, item := range items {
		if i >= maxItemsPerSection {
			fmt.Fprintf(b, "... and %d more\n", len(items)-maxItemsPerSection)
			break
		}
		fmt.Fprintf(b, "- %s", item.Title)
		if item.PublishedAt != "" {
			fmt.Fprintf(b, " (%s)", item.PublishedAt)
		}
		if item.URL != "" {
			fmt.Fprintf(b, " <%s>", item.URL)
		}
		if item.Snippet != "" {
			fmt.Fprintf(b, "\n  %s", item.Snippet)
		}
		b.WriteString("\n")
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
