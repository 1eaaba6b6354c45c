package jira

import (
	"net/url"
	"strings"

	"github.com/Tiliavir/worklog-report/internal/model"
)

// BuildJQL renders the filter as a JQL conjunction. Clause order is fixed:
// author, project, start date, end date. Values go in verbatim; the remote
// API validates the query language.
func BuildJQL(f model.QueryFilter) string {
	var b strings.Builder
	b.WriteString("worklogAuthor=")
	b.WriteString(f.AccountID)
	if f.ProjectKey != "" {
		b.WriteString(" AND project=")
		b.WriteString(f.ProjectKey)
	}
	if f.StartDate != "" {
		b.WriteString(" AND worklogDate >= '")
		b.WriteString(f.StartDate)
		b.WriteString("'")
	}
	if f.EndDate != "" {
		b.WriteString(" AND worklogDate <= '")
		b.WriteString(f.EndDate)
		b.WriteString("'")
	}
	return b.String()
}

// EncodeJQL returns the filter's JQL percent-encoded as one query value.
func EncodeJQL(f model.QueryFilter) string {
	return escapeComponent(BuildJQL(f))
}

// escapeComponent encodes like encodeURIComponent: spaces become %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
