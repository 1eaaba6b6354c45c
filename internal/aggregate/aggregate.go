// Package aggregate turns searched issues into report rows by fetching each
// issue's work logs in turn.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/jira"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/progress"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

// Options configures an aggregation run.
type Options struct {
	// EmptyComment replaces absent comments for the whole run.
	EmptyComment string
}

// Aggregate fetches the work logs of every issue, one issue at a time and
// in the given order, and keeps the entries written by filter.AccountID
// inside the filter's dates. An issue the upstream refused is recorded in
// Errors and the loop moves on. Losing the relay or receiving a malformed
// response ends the run: Aggregate returns that error and no result.
func Aggregate(ctx context.Context, f relay.Fetcher, cred model.Credential, issues []model.Issue, filter model.QueryFilter, opts Options, rep progress.Reporter) (model.AggregateResult, error) {
	rep = progress.OrNop(rep)
	log := zerolog.Ctx(ctx)
	result := model.AggregateResult{Issues: len(issues)}

	for i, issue := range issues {
		rows, err := issueRows(ctx, f, cred, issue, filter, opts)
		switch {
		case fatal(err):
			log.Error().Err(err).Str("issue", issue.Key).Msg("aborting worklog aggregation")
			return model.AggregateResult{}, fmt.Errorf("fetching worklogs for %s: %w", issue.Key, err)
		case err != nil:
			msg, _ := apperr.Describe(err)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to fetch worklogs for %s: %s", displayKey(issue.Key), msg))
			log.Warn().Err(err).Str("issue", issue.Key).Msg("skipping issue")
		default:
			result.Rows = append(result.Rows, rows...)
		}

		done := i + 1
		rep.Report(progress.DetailSpan.At(float64(done)/float64(len(issues))),
			fmt.Sprintf("Processing issue %d of %d...", done, len(issues)))
	}
	return result, nil
}

func fatal(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindConnectivity, apperr.KindProtocol:
		return true
	default:
		return false
	}
}

func issueRows(ctx context.Context, f relay.Fetcher, cred model.Credential, issue model.Issue, filter model.QueryFilter, opts Options) ([]model.ReportRow, error) {
	if issue.Key == "" {
		return nil, errMissingKey
	}
	page, err := jira.FetchWorklogs(ctx, f, cred, issue.Key)
	if err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx)
	if page.Truncated() {
		log.Warn().
			Str("issue", issue.Key).
			Int("returned", len(page.Worklogs)).
			Int("total", page.Total).
			Msg("worklog list truncated by upstream")
	}

	var rows []model.ReportRow
	for _, w := range page.Worklogs {
		if w.AuthorAccountID != filter.AccountID {
			continue
		}
		date, ok := w.Date()
		if !ok {
			log.Debug().Str("issue", issue.Key).Str("started", w.Started).Msg("worklog without a start date")
			continue
		}
		if !filter.Contains(date) {
			continue
		}
		rows = append(rows, model.ReportRow{
			IssueKey:  issue.Key,
			IssueLink: model.IssueLink(cred.Host, issue.Key),
			Summary:   issue.Summary,
			Date:      date,
			Hours:     float64(w.TimeSpentSeconds) / 3600,
			Comment:   model.FlattenComment(w.Comment, opts.EmptyComment),
		})
	}
	return rows, nil
}

var errMissingKey = errors.New("issue has no key")

func displayKey(key string) string {
	if key == "" {
		return "<no key>"
	}
	return key
}

// Outcome reports whether a finished aggregation is terminal. With no rows
// it returns a NoDataError whose AllFailed flag says whether every issue
// errored or nothing matched. Otherwise it returns nil, even when some
// issues failed.
func Outcome(r model.AggregateResult) error {
	if len(r.Rows) > 0 {
		return nil
	}
	return &apperr.NoDataError{
		AllFailed: len(r.Errors) > 0,
		Failures:  r.Errors,
	}
}
