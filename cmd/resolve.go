package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-report/internal/config"
	"github.com/Tiliavir/worklog-report/internal/jira"
	"github.com/Tiliavir/worklog-report/internal/logger"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [email]",
	Short: "Look up the account id of a user by email",
	Long: `resolve asks the tracker for users matching the email and prints the account
id of the first exact match. Without an argument the configured search email
(or the account email) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, config.ScopeResolve, nil)
	if err != nil {
		return err
	}
	email := cfg.Jira.SearchEmail
	if len(args) == 1 {
		email = args[0]
	}

	client := relay.NewClient(cmd.Context(), relay.Options{
		URL:     cfg.Relay.URL,
		Token:   cfg.Relay.Token,
		Timeout: cfg.Relay.Timeout,
	})
	ctx := logger.WithRun(cmd.Context(), log, uuid.NewString())
	id, err := jira.ResolveAccountID(ctx, client, cfg.Credential(), email)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
