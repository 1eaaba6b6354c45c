package model

import (
	"fmt"
	"time"

	"github.com/Tiliavir/worklog-report/internal/apperr"
)

// DateLayout is the ISO calendar date format used for filters and rows.
const DateLayout = "2006-01-02"

// Credential identifies the upstream account a relay call is made for.
// The pipeline only forwards it.
type Credential struct {
	Host     string
	Email    string
	APIToken string
}

// String omits the token so a Credential can be logged safely.
func (c Credential) String() string {
	return fmt.Sprintf("%s@%s", c.Email, c.Host)
}

// QueryFilter selects the work logs a run reports on. Empty dates mean the
// range is unbounded on that side.
type QueryFilter struct {
	AccountID  string
	ProjectKey string
	StartDate  string
	EndDate    string
}

// NewQueryFilter validates its inputs and returns an immutable filter.
func NewQueryFilter(accountID, projectKey, startDate, endDate string) (QueryFilter, error) {
	if accountID == "" {
		return QueryFilter{}, apperr.Validationf("account id is required")
	}
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return QueryFilter{}, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return QueryFilter{}, apperr.Validationf("Start date cannot be after end date")
	}
	return QueryFilter{
		AccountID:  accountID,
		ProjectKey: projectKey,
		StartDate:  startDate,
		EndDate:    endDate,
	}, nil
}

// Contains reports whether the ISO date falls within the filter's inclusive
// date bounds.
func (f QueryFilter) Contains(date string) bool {
	if f.StartDate != "" && date < f.StartDate {
		return false
	}
	if f.EndDate != "" && date > f.EndDate {
		return false
	}
	return true
}

// Issue is one upstream work item returned by the search endpoint.
type Issue struct {
	Key     string
	Summary string
}

// Worklog is one time entry logged against an issue.
type Worklog struct {
	AuthorAccountID  string
	Started          string
	TimeSpentSeconds int64
	Comment          Comment
}

// Date returns the calendar date of the entry and false if Started is too
// short to carry one.
func (w Worklog) Date() (string, bool) {
	if len(w.Started) < len(DateLayout) {
		return "", false
	}
	return w.Started[:len(DateLayout)], true
}

// ReportRow is one qualifying work log, normalized for export.
type ReportRow struct {
	IssueKey  string  `json:"issue_key"`
	IssueLink string  `json:"issue_link"`
	Summary   string  `json:"summary"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Comment   string  `json:"comment"`
}

// IssueLink builds the browse URL for an issue on host.
func IssueLink(host, key string) string {
	return "https://" + host + "/browse/" + key
}

// AggregateResult is what the detail aggregator hands to the report builder.
// Rows keep fetch order; Errors keep the order failures happened in.
type AggregateResult struct {
	Rows   []ReportRow
	Errors []string
	Issues int
}
