package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

var (
	scanJSON     bool
	scanTimeout  time.Duration
	scanInsights bool
	scanBackfill bool

	watchInterval    time.Duration
	watchMetricsAddr string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [company]",
	Short: "Scan portfolio news and store new alerts",
	Long: `Scan fetches recent news for each portfolio company, classifies every
item by sentiment and topic, and stores alerts for titles not already seen in
the dedup window (7 days by default).

Companies are scanned one at a time with a pause between them. A company
that fails is reported and the scan moves on.

Example:
  fundtrack scan
  fundtrack scan Acme --insights
  fundtrack scan --portfolio portfolio.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan the portfolio repeatedly on an interval",
	Long: `Watch runs a portfolio scan immediately and then on every interval
until interrupted. With --metrics-addr it serves Prometheus metrics at /metrics.

Example:
  fundtrack watch --interval 6h
  fundtrack watch --interval 30m --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)

	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the scan summary as JSON")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 30*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&scanInsights, "insights", false, "regenerate insights for companies with new alerts")
	scanCmd.Flags().BoolVar(&scanBackfill, "backfill", false, "fetch article pages to fill empty snippets")

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between scans (default from scan.interval)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "address to serve /metrics on (default from metrics.addr)")
	watchCmd.Flags().BoolVar(&scanInsights, "insights", false, "regenerate insights for companies with new alerts")
	watchCmd.Flags().BoolVar(&scanBackfill, "backfill", false, "fetch article pages to fill empty snippets")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	applyScanFlags(cmd, a.cfg)

	scanner, err := a.scanner()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		company, err := a.resolveCompany(ctx, args[0])
		if err != nil {
			return err
		}
		res, err := scanner.ScanCompany(ctx, company)
		if err != nil {
			return fmt.Errorf("scan %s: %w", company.Name, err)
		}
		if scanJSON {
			return writeJSON(out, res)
		}
		printCompanyResult(out, res)
		return nil
	}

	summary, err := scanner.ScanPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if scanJSON {
		return writeJSON(out, summary)
	}
	printScanSummary(out, summary)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	applyScanFlags(cmd, a.cfg)

	interval := watchInterval
	if interval <= 0 {
		interval = a.cfg.Scan.Interval
	}
	addr := watchMetricsAddr
	if addr == "" {
		addr = a.cfg.Metrics.Addr
	}

	scanner, err := a.scanner()
	if err != nil {
		return err
	}

	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.WithError(err).Error("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Log.WithField("addr", addr).Info("Serving metrics")
	}

	logger.Log.WithField("interval", interval).Info("Watching portfolio")

	err = scanner.Watch(ctx, interval, func(s model.ScanSummary) {
		printScanSummary(cmd.ErrOrStderr(), s)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// applyScanFlags lets explicitly set flags override the loaded config
func applyScanFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("insights") {
		cfg.Scan.GenerateInsights = scanInsights
	}
	if cmd.Flags().Changed("backfill") {
		cfg.Scan.BackfillSnippets = scanBackfill
	}
}

func printCompanyResult(w io.Writer, r model.CompanyScanResult) {
	status := "✓"
	if r.Error != "" {
		status = "✗"
	}
	fmt.Fprintf(w, "%s %s: %d fetched, %d new alerts, %d duplicates, %d skipped\n",
		status, r.CompanyName, r.Fetched, r.AlertsCreated, r.Duplicates, r.Skipped)
	if r.Error != "" {
		fmt.Fprintf(w, "    error: %s\n", r.Error)
	}
}

func printScanSummary(w io.Writer, s model.ScanSummary) {
	fmt.Fprintf(w, "\n")
	for _, r := range s.Results {
		printCompanyResult(w, r)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Scan Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Companies:  %d\n", s.CompaniesScanned)
	fmt.Fprintf(w, "  Alerts:     %d\n", s.AlertsCreated)
	fmt.Fprintf(w, "  Failures:   %d\n", s.Failed)
	fmt.Fprintf(w, "  Duration:   %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
