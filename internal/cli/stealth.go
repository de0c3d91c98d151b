package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/export"
	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/score"
	"github.com/Keats0206/fundtrack/internal/search"
	"github.com/Keats0206/fundtrack/internal/worker"
)

var (
	candidatesOnly bool
	stealthJSON    bool
	csvPath        string
	apolloPath     string
	stealthTimeout time.Duration

	searchCompany  string
	searchRole     string
	searchLocation string
)

// stealthCmd represents the stealth command
var stealthCmd = &cobra.Command{
	Use:   "stealth",
	Short: "Score professional profiles for stealth founder signals",
	Long: `Stealth scores profiles for signs that a person has left a job to start
something new: stealth titles and companies, departures from notable
companies, employee to founder moves and vague new titles.

A profile is a candidate when it scores at least 30 with two or more
indicators.`,
}

var stealthScoreCmd = &cobra.Command{
	Use:   "score <people-file>",
	Short: "Score people from a JSON or JSON-lines file",
	Long: `Score reads people from a JSON array or a JSON-lines file (one person per
line, '#' comments allowed) and ranks them by stealth score.

Example:
  fundtrack stealth score people.jsonl
  fundtrack stealth score people.json --candidates-only --csv stealth.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runStealthScore,
}

var stealthSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search profiles at a company and score them",
	Long: `Search queries the professional network API for people associated with a
company (optionally a role and location) and scores each result.

Example:
  fundtrack stealth search --company Stripe --role engineer
  fundtrack stealth search --company Coinbase --candidates-only --apollo leads.csv`,
	Args: cobra.NoArgs,
	RunE: runStealthSearch,
}

func init() {
	rootCmd.AddCommand(stealthCmd)
	stealthCmd.AddCommand(stealthScoreCmd)
	stealthCmd.AddCommand(stealthSearchCmd)

	stealthCmd.PersistentFlags().BoolVar(&candidatesOnly, "candidates-only", false, "only output stealth candidates")
	stealthCmd.PersistentFlags().BoolVar(&stealthJSON, "json", false, "print scored profiles as JSON")
	stealthCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "write scored profiles to a CSV file")
	stealthCmd.PersistentFlags().StringVar(&apolloPath, "apollo", "", "write profiles as an Apollo import CSV")
	stealthCmd.PersistentFlags().DurationVar(&stealthTimeout, "timeout", 2*time.Minute, "overall timeout")

	stealthSearchCmd.Flags().StringVar(&searchCompany, "company", "", "company to search people for")
	stealthSearchCmd.Flags().StringVar(&searchRole, "role", "", "role keywords")
	stealthSearchCmd.Flags().StringVar(&searchLocation, "location", "", "location filter")
	_ = stealthSearchCmd.MarkFlagRequired("company")
}

func runStealthScore(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), stealthTimeout)
	defer cancel()

	people, err := worker.ReadPeopleFile(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return scoreAndOutput(ctx, cmd.OutOrStdout(), a.batchScorer(), people)
}

func runStealthSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), stealthTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	searcher, err := a.peopleSearcher()
	if err != nil {
		return err
	}

	people, err := searcher.SearchPeople(ctx, search.PeopleQuery{
		Company:  searchCompany,
		Role:     searchRole,
		Location: searchLocation,
	})
	if err != nil {
		return fmt.Errorf("search people: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d profiles for %s\n", len(people), searchCompany)

	return scoreAndOutput(ctx, cmd.OutOrStdout(), a.batchScorer(), people)
}

func scoreAndOutput(ctx context.Context, out io.Writer, scorer *worker.BatchScorer, people []model.Person) error {
	scored, err := scorer.ScorePeople(ctx, people)
	if err != nil {
		return fmt.Errorf("score profiles: %w", err)
	}

	if candidatesOnly {
		scored = score.Candidates(scored)
	}
	records := export.Records(people, score.SortByScore(scored))

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, records) }); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d profiles to %s\n", len(records), csvPath)
	}
	if apolloPath != "" {
		if err := writeFile(apolloPath, func(w io.Writer) error { return export.WriteApolloCSV(w, records) }); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d profiles to %s\n", len(records), apolloPath)
	}

	if stealthJSON {
		return writeJSON(out, records)
	}
	if csvPath == "" && apolloPath == "" {
		printRecords(out, records)
	}
	return nil
}

func printRecords(w io.Writer, records []export.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No profiles to show")
		return
	}
	for _, r := range records {
		marker := " "
		if r.Assessment.IsCandidate {
			marker = "★"
		}
		p := r.Person
		fmt.Fprintf(w, "%s %3d  %s", marker, r.Assessment.Score, p.Name)
		if p.CurrentTitle != "" || p.CurrentCompany != "" {
			fmt.Fprintf(w, " (%s)", strings.Trim(p.CurrentTitle+" @ "+p.CurrentCompany, " @"))
		}
		fmt.Fprintln(w)
		for _, ind := range r.Assessment.Indicators {
			fmt.Fprintf(w, "        - %s\n", ind)
		}
	}
}

// writeFile creates path and runs write against it, reporting close errors
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return write(f)
}
