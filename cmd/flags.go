package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/config"
	"github.com/Tiliavir/worklog-report/internal/timecalc"
)

// addQueryFlags registers the flags shared by commands that build a query.
func addQueryFlags(fs *pflag.FlagSet) {
	fs.String("account-id", "", "Report on this account id and skip the user lookup")
	fs.String("project", "", "Restrict to a project key, e.g. OPS")
	fs.String("start", "", "First day of the range (YYYY-MM-DD)")
	fs.String("end", "", "Last day of the range (YYYY-MM-DD)")
	fs.Int("page-size", config.DefaultPageSize, "Issues per search page (1-100)")
	fs.Bool("today", false, "Limit the range to today")
	fs.Bool("week", false, "Limit the range to the current ISO week")
	fs.Bool("month", false, "Limit the range to the current month")
}

// selectedPeriod returns the period chosen with --today, --week or --month,
// or "" when none was given.
func selectedPeriod(fs *pflag.FlagSet) (timecalc.Period, error) {
	var chosen []timecalc.Period
	for _, p := range []timecalc.Period{timecalc.PeriodToday, timecalc.PeriodWeek, timecalc.PeriodMonth} {
		if on, _ := fs.GetBool(string(p)); on {
			chosen = append(chosen, p)
		}
	}
	switch len(chosen) {
	case 0:
		return "", nil
	case 1:
		if fs.Changed("start") || fs.Changed("end") {
			return "", apperr.Validationf("--%s cannot be combined with --start or --end", chosen[0])
		}
		return chosen[0], nil
	}
	return "", apperr.Validationf("use only one of --today, --week and --month")
}

// periodAdjuster fills the query range from the period flags of cmd.
func periodAdjuster(cmd *cobra.Command, now time.Time) func(*config.Config) error {
	return func(cfg *config.Config) error {
		p, err := selectedPeriod(cmd.Flags())
		if err != nil || p == "" {
			return err
		}
		cfg.Query.Start, cfg.Query.End, err = timecalc.Range(p, now)
		return err
	}
}

// rangeLabel describes the configured range for headings.
func rangeLabel(cfg *config.Config, p timecalc.Period, now time.Time) string {
	if p != "" {
		return timecalc.Label(p, now)
	}
	switch {
	case cfg.Query.Start != "" && cfg.Query.End != "":
		if cfg.Query.Start == cfg.Query.End {
			return cfg.Query.Start
		}
		return cfg.Query.Start + " to " + cfg.Query.End
	case cfg.Query.Start != "":
		return "since " + cfg.Query.Start
	case cfg.Query.End != "":
		return "until " + cfg.Query.End
	}
	return "all time"
}
