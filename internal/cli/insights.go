package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/model"
)

var insightsJSON bool

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate and show company insights",
	Long: `Insights are short summaries derived from a company's most recent alerts:
recent activity, market position and risk monitoring. They expire after
scan.insight_ttl (24h by default).`,
}

var insightsGenerateCmd = &cobra.Command{
	Use:   "generate <company>",
	Short: "Generate a fresh batch of insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		company, err := a.resolveCompany(ctx, args[0])
		if err != nil {
			return err
		}
		insights, err := a.insightService().Generate(ctx, company.ID)
		if err != nil {
			return err
		}
		return printInsights(cmd.OutOrStdout(), company, insights)
	},
}

var insightsShowCmd = &cobra.Command{
	Use:   "show <company>",
	Short: "Show active insights, generating them if none are active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		company, err := a.resolveCompany(ctx, args[0])
		if err != nil {
			return err
		}
		insights, err := a.insightService().GetOrGenerate(ctx, company.ID)
		if err != nil {
			return err
		}
		return printInsights(cmd.OutOrStdout(), company, insights)
	},
}

var insightsClearCmd = &cobra.Command{
	Use:   "clear-expired",
	Short: "Delete expired insights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.insightService().ClearExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired insights\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.AddCommand(insightsGenerateCmd)
	insightsCmd.AddCommand(insightsShowCmd)
	insightsCmd.AddCommand(insightsClearCmd)

	insightsCmd.PersistentFlags().BoolVar(&insightsJSON, "json", false, "print insights as JSON")
}

func printInsights(w io.Writer, company model.Company, insights []model.Insight) error {
	if insightsJSON {
		return writeJSON(w, insights)
	}

	fmt.Fprintf(w, "%s\n", company.Name)
	for _, in := range insights {
		fmt.Fprintf(w, "  [%s] %s\n", in.InsightType, in.Content)
		fmt.Fprintf(w, "      expires %s\n", in.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
