package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-report/internal/config"
	"github.com/Tiliavir/worklog-report/internal/jira"
	"github.com/Tiliavir/worklog-report/internal/model"
)

var jqlCmd = &cobra.Command{
	Use:   "jql",
	Short: "Print the issue search query for the configured filter",
	Long: `jql prints the clause wlr would send to the issue search, its encoded form and
the first search path. It makes no requests, so an account id is required.`,
	Example: `  wlr jql --account-id 5b10ac8d82e05b22cc7d4ef5 --project OPS --week`,
	Args:    cobra.NoArgs,
	RunE:    runJQL,
}

func init() {
	addQueryFlags(jqlCmd.Flags())
}

func runJQL(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd, config.ScopeQuery, periodAdjuster(cmd, time.Now()))
	if err != nil {
		return err
	}
	filter, err := model.NewQueryFilter(cfg.Jira.AccountID, cfg.Query.Project, cfg.Query.Start, cfg.Query.End)
	if err != nil {
		return err
	}

	enc := jira.EncodeJQL(filter)
	label := color.New(color.Bold).SprintFunc()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", label("JQL:    "), jira.BuildJQL(filter))
	fmt.Fprintf(out, "%s  %s\n", label("Encoded:"), enc)
	fmt.Fprintf(out, "%s  %s\n", label("Path:   "), jira.SearchPath(enc, cfg.Query.PageSize, 0))
	return nil
}
