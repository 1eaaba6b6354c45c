package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/config"
	"github.com/Tiliavir/worklog-report/internal/logger"
)

var (
	cfgFile     string
	verbose     bool
	noColor     bool
	showDetails bool
)

var rootCmd = &cobra.Command{
	Use:   "wlr",
	Short: "wlr - Jira work-log reports from the command line",
	Long: `wlr collects the work-log entries of one user across a date range and an
optional project, prints a report with totals per day and writes the detailed
and summary CSV exports. All tracker calls go through a local relay.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err, showDetails)
		os.Exit(apperr.ExitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./wlr.yaml or ~/.config/wlr/wlr.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&showDetails, "details", false, "Show technical details of errors")
	pf.String("log-level", config.DefaultLogLevel, "Log level: trace, debug, info, warn, error, off")
	pf.String("log-format", config.DefaultLogFormat, "Log format: console, json")

	pf.String("relay-url", config.DefaultRelayURL, "Relay base URL")
	pf.String("relay-token", "", "Bearer token expected by the relay")
	pf.Duration("timeout", config.DefaultRelayTimeout, "Per-request timeout")
	pf.String("host", "", "Jira domain, e.g. your-domain.atlassian.net")
	pf.String("email", "", "Jira account email")
	pf.String("api-token", "", "Jira API token")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(jqlCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads and validates configuration for scope and builds the logger.
func setup(cmd *cobra.Command, scope config.Scope, adjust func(*config.Config) error) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if adjust != nil {
		if err := adjust(cfg); err != nil {
			return nil, zerolog.Nop(), err
		}
	}
	if err := cfg.Validate(scope); err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Writer:  os.Stderr,
		NoColor: color.NoColor,
	})
	return cfg, log, nil
}

// printError writes the user-facing message of err and, when asked, its
// technical detail.
func printError(w io.Writer, err error, details bool) {
	msg, detail := apperr.Describe(err)
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, msg)
	if detail == "" {
		return
	}
	if details {
		fmt.Fprintln(w)
		fmt.Fprintln(w, detail)
		return
	}
	color.New(color.Faint).Fprintln(w, "Run with --details for more information.")
}

func warnf(w io.Writer, format string, a ...any) {
	color.New(color.FgYellow).Fprint(w, "Warning: ")
	fmt.Fprintf(w, format+"\n", a...)
}

func okf(w io.Writer, format string, a ...any) {
	color.New(color.FgGreen).Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", a...)
}
