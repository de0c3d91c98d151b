package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/store"
)

var (
	alertsCompany string
	alertsUnread  bool
	alertsLimit   int
	alertsJSON    bool
	alertsAll     bool
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List alerts and mark them read",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts, newest first",
	Long: `List stored alerts, newest first.

Example:
  fundtrack alerts list --unread
  fundtrack alerts list --company Acme --limit 20 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		filter := store.AlertFilter{Limit: alertsLimit}
		if alertsCompany != "" {
			company, err := a.resolveCompany(ctx, alertsCompany)
			if err != nil {
				return err
			}
			filter.CompanyID = company.ID
		}
		if alertsUnread {
			unread := false
			filter.IsRead = &unread
		}

		alerts, err := a.store.ListAlerts(ctx, filter)
		if err != nil {
			return err
		}
		if alertsJSON {
			return writeJSON(cmd.OutOrStdout(), alerts)
		}
		printAlerts(cmd.OutOrStdout(), alerts)
		return nil
	},
}

var alertsReadCmd = &cobra.Command{
	Use:   "read [alert-id]",
	Short: "Mark an alert, or all alerts with --all, as read",
	Long: `Mark one alert as read, or every unread alert with --all
(optionally limited to --company).

Example:
  fundtrack alerts read 0b6c1a52-...
  fundtrack alerts read --all --company Acme`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertsAll == (len(args) == 1) {
			return errors.New("pass either an alert ID or --all")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !alertsAll {
			if err := a.store.MarkAsRead(ctx, args[0]); err != nil {
				return fmt.Errorf("mark alert %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Marked %s as read\n", args[0])
			return nil
		}

		companyID := ""
		if alertsCompany != "" {
			company, err := a.resolveCompany(ctx, alertsCompany)
			if err != nil {
				return err
			}
			companyID = company.ID
		}
		n, err := a.store.MarkAllAsRead(ctx, companyID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Marked %d alerts as read\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsReadCmd)

	alertsCmd.PersistentFlags().StringVar(&alertsCompany, "company", "", "company ID or name")
	alertsListCmd.Flags().BoolVar(&alertsUnread, "unread", false, "only unread alerts")
	alertsListCmd.Flags().IntVar(&alertsLimit, "limit", 50, "maximum alerts to list (0 for all)")
	alertsListCmd.Flags().BoolVar(&alertsJSON, "json", false, "print alerts as JSON")
	alertsReadCmd.Flags().BoolVar(&alertsAll, "all", false, "mark every unread alert as read")
}

func printAlerts(w io.Writer, alerts []model.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return
	}
	for _, al := range alerts {
		marker := "●"
		if al.IsRead {
			marker = " "
		}
		fmt.Fprintf(w, "%s %s  %-8s %-8s %s\n", marker, al.DetectedAt.Local().Format("2006-01-02"), al.Type, al.Sentiment, al.Title)
		if al.Source != "" {
			fmt.Fprintf(w, "    %s\n", al.Source)
		}
		fmt.Fprintf(w, "    id: %s\n", al.ID)
	}
}
