package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/config"
	"github.com/Tiliavir/worklog-report/internal/pipeline"
	"github.com/Tiliavir/worklog-report/internal/progress"
	"github.com/Tiliavir/worklog-report/internal/relay"
	"github.com/Tiliavir/worklog-report/internal/report"
	"github.com/Tiliavir/worklog-report/internal/timecalc"
)

var (
	reportFormat  string
	reportNoFiles bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the work-log report and write the CSV exports",
	Example: `  wlr report --week
  wlr report --project OPS --start 2024-01-01 --end 2024-01-31
  WLR_JIRA_API_TOKEN=... wlr report --month --format json --no-files`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	fs := reportCmd.Flags()
	addQueryFlags(fs)
	fs.String("search-email", "", "Report on this user instead of the authenticated one")
	fs.String("output-dir", config.DefaultOutputDir, "Directory for the CSV exports")
	fs.String("empty-comment", "", "Text shown for entries without a comment")
	fs.StringVar(&reportFormat, "format", "table", "Output format: table, json")
	fs.BoolVar(&reportNoFiles, "no-files", false, "Do not write the CSV exports")
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if reportFormat != "table" && reportFormat != "json" {
		return apperr.Validationf("unknown format %q, expected table or json", reportFormat)
	}

	cfg, log, err := setup(cmd, config.ScopeReport, periodAdjuster(cmd, now))
	if err != nil {
		return err
	}
	period, _ := selectedPeriod(cmd.Flags())

	client := relay.NewClient(cmd.Context(), relay.Options{
		URL:     cfg.Relay.URL,
		Token:   cfg.Relay.Token,
		Timeout: cfg.Relay.Timeout,
	})
	bar := progress.NewBar(os.Stderr)

	r, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Fetcher:      client,
		Credential:   cfg.Credential(),
		AccountID:    cfg.Jira.AccountID,
		SearchEmail:  cfg.Jira.SearchEmail,
		ProjectKey:   cfg.Query.Project,
		StartDate:    cfg.Query.Start,
		EndDate:      cfg.Query.End,
		PageSize:     cfg.Query.PageSize,
		EmptyComment: cfg.Report.EmptyComment,
		Progress:     progress.Multi(bar, progress.Log(log)),
		Logger:       &log,
	})
	bar.Done()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportFormat == "json" {
		if err := report.WriteJSON(out, r); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
	} else {
		who := cfg.Jira.SearchEmail
		if cfg.Jira.AccountID != "" {
			who = cfg.Jira.AccountID
		}
		color.New(color.Bold).Fprintf(out, "Work logs of %s, %s\n", who, rangeLabel(cfg, period, now))
		report.RenderTable(out, r)
		fmt.Fprintf(out, "%d entries across %d issues, %s logged\n",
			len(r.Rows), r.Issues, timecalc.FormatDuration(int64(r.TotalHours*3600+0.5)))
	}

	for _, e := range r.Errors {
		warnf(os.Stderr, "%s", e)
	}

	if reportNoFiles {
		return nil
	}
	written, err := writeExports(cfg.Report.OutputDir, r)
	for _, w := range written {
		okf(os.Stderr, "Wrote %s (%s)", w.Path, humanSize(w.Size))
	}
	return err
}
