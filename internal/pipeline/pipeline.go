// Package pipeline runs one report from identity resolution to the final
// report value.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/worklog-report/internal/aggregate"
	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/jira"
	"github.com/Tiliavir/worklog-report/internal/logger"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/progress"
	"github.com/Tiliavir/worklog-report/internal/relay"
	"github.com/Tiliavir/worklog-report/internal/report"
	"github.com/Tiliavir/worklog-report/internal/timecalc"
)

// Final progress messages.
const (
	MsgSuccess     = "Report generated successfully!"
	msgWithErrorsF = "Report generated with some errors (%d issues affected)"
)

// Options is everything one run needs.
type Options struct {
	Fetcher    relay.Fetcher
	Credential model.Credential
	// AccountID, when set, is used as-is and SearchEmail is ignored.
	AccountID   string
	SearchEmail string
	ProjectKey  string
	StartDate   string
	EndDate     string
	PageSize    int
	// EmptyComment replaces absent work-log comments.
	EmptyComment string
	Progress     progress.Reporter
	// Logger receives run diagnostics. A disabled logger is used when nil.
	Logger *zerolog.Logger
}

// Run executes the stages in order: validation, identity, query, search,
// detail aggregation and report building. It returns a NoDataError when
// nothing could be reported and the report otherwise, even if some issues
// failed; those failures are listed in Report.Errors.
func Run(ctx context.Context, opts Options) (report.Report, error) {
	rep := progress.OrNop(opts.Progress)
	if opts.PageSize == 0 {
		opts.PageSize = jira.DefaultPageSize
	}

	base := zerolog.Nop()
	if opts.Logger != nil {
		base = *opts.Logger
	}
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, base, runID)
	log := logger.C(ctx)

	if err := validate(opts); err != nil {
		return report.Report{}, err
	}
	rep.Report(0, "Validating configuration...")

	accountID := opts.AccountID
	if accountID == "" {
		rep.Report(5, "Looking up user account...")
		id, err := jira.ResolveAccountID(ctx, opts.Fetcher, opts.Credential, opts.SearchEmail)
		if err != nil {
			return report.Report{}, err
		}
		accountID = id
	}

	filter, err := model.NewQueryFilter(accountID, opts.ProjectKey, opts.StartDate, opts.EndDate)
	if err != nil {
		return report.Report{}, err
	}
	log.Debug().Str("jql", jira.BuildJQL(filter)).Msg("built query")

	rep.Report(progress.SearchSpan.From, "Searching for issues with work logs...")
	issues, err := jira.SearchIssues(ctx, opts.Fetcher, opts.Credential, jira.EncodeJQL(filter), opts.PageSize, rep)
	if err != nil {
		return report.Report{}, err
	}
	log.Info().Int("issues", len(issues)).Msg("search complete")

	rep.Report(progress.DetailSpan.From, "Fetching worklog details...")
	result, err := aggregate.Aggregate(ctx, opts.Fetcher, opts.Credential, issues, filter,
		aggregate.Options{EmptyComment: opts.EmptyComment}, rep)
	if err != nil {
		return report.Report{}, err
	}
	if err := aggregate.Outcome(result); err != nil {
		return report.Report{}, err
	}

	r := report.Build(result)
	if len(r.Errors) > 0 {
		rep.Report(100, fmt.Sprintf(msgWithErrorsF, len(r.Errors)))
	} else {
		rep.Report(100, MsgSuccess)
	}
	log.Info().
		Int("rows", len(r.Rows)).
		Int("failed_issues", len(r.Errors)).
		Float64("total_hours", r.TotalHours).
		Msg("report built")
	return r, nil
}

// validate rejects unusable options before any request is made.
func validate(opts Options) error {
	if opts.Fetcher == nil {
		return apperr.Validationf("no relay client configured")
	}

	var missing []string
	if opts.Credential.Host == "" {
		missing = append(missing, "Jira Domain")
	}
	if opts.Credential.Email == "" {
		missing = append(missing, "Email")
	}
	if opts.Credential.APIToken == "" {
		missing = append(missing, "API Token")
	}
	if opts.AccountID == "" && opts.SearchEmail == "" {
		missing = append(missing, "User Account ID or Search Email")
	}
	if len(missing) > 0 {
		return &apperr.ValidationError{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
		}
	}

	if !strings.Contains(opts.Credential.Host, ".") {
		return apperr.Validationf(`Invalid Jira domain format. Should be something like "your-domain.atlassian.net"`)
	}
	if !strings.Contains(opts.Credential.Email, "@") {
		return apperr.Validationf("Invalid email format")
	}
	if opts.PageSize < 1 {
		return apperr.Validationf("page size must be at least 1, got %d", opts.PageSize)
	}
	for _, d := range []string{opts.StartDate, opts.EndDate} {
		if d == "" {
			continue
		}
		if _, err := timecalc.ParseDate(d); err != nil {
			return &apperr.ValidationError{Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", d), Fields: []string{err.Error()}}
		}
	}
	if opts.StartDate != "" && opts.EndDate != "" && opts.StartDate > opts.EndDate {
		return apperr.Validationf("Start date cannot be after end date")
	}
	return nil
}
