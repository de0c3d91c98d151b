package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/model"
)

var (
	intelFollowUps bool
	intelJSON      bool
	intelTimeout   time.Duration
)

// intelCmd represents the intel command
var intelCmd = &cobra.Command{
	Use:   "intel <company>",
	Short: "Gather company intelligence and ask an LLM for an investor report",
	Long: `Intel runs news, funding, competitor and general searches for a company
over trusted business domains and asks the configured LLM provider for a
structured report. The report is advisory only: it never changes alerts,
insights or scores.

Example:
  fundtrack intel Acme
  FUNDTRACK_LLM_PROVIDER=anthropic fundtrack intel Acme --follow-ups`,
	Args: cobra.ExactArgs(1),
	RunE: runIntel,
}

func init() {
	rootCmd.AddCommand(intelCmd)
	intelCmd.Flags().BoolVar(&intelFollowUps, "follow-ups", false, "also suggest follow-up questions")
	intelCmd.Flags().BoolVar(&intelJSON, "json", false, "print the report as JSON")
	intelCmd.Flags().DurationVar(&intelTimeout, "timeout", 3*time.Minute, "overall timeout")
}

func runIntel(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), intelTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	company, err := a.resolveCompany(ctx, args[0])
	if err != nil {
		return err
	}

	analyst, err := a.analyst(ctx)
	if err != nil {
		return err
	}
	source, err := a.newsSource()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Gathering intelligence for %s...\n", company.Name)
	intel, err := source.Intelligence(ctx, company)
	if err != nil {
		return fmt.Errorf("gather intelligence: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Collected %d sources\n", len(intel.All()))

	report, err := analyst.Analyze(ctx, intel)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	var questions []string
	if intelFollowUps {
		questions, err = analyst.FollowUpQuestions(ctx, company, report)
		if err != nil {
			return fmt.Errorf("follow-up questions: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if intelJSON {
		return writeJSON(out, struct {
			*model.IntelligenceReport
			FollowUps []string `json:"followUps,omitempty"`
		}{report, questions})
	}
	printReport(out, company, report, questions)
	return nil
}

func printReport(w io.Writer, company model.Company, r *model.IntelligenceReport, questions []string) {
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s: %d/100 (%s)\n", company.Name, r.Score, r.Momentum)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n\n")
	fmt.Fprintf(w, "%s\n\n", r.Summary)

	for _, s := range r.Sections {
		fmt.Fprintf(w, "## %s [%s]\n%s\n\n", s.Title, s.Sentiment, s.Content)
	}

	printList(w, "Risk factors", r.RiskFactors)
	printList(w, "Opportunities", r.Opportunities)
	printList(w, "Next actions", r.NextActions)
	printList(w, "Follow-up questions", questions)

	if r.Provider != "" {
		fmt.Fprintf(w, "Generated by %s/%s\n", r.Provider, r.Model)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}
