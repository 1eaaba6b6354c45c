// Package report orders aggregated rows, totals them and renders the
// detailed and per-date views.
package report

import (
	"sort"

	"github.com/Tiliavir/worklog-report/internal/model"
)

// Export file names.
const (
	DetailedFileName = "worklog_report.csv"
	SummaryFileName  = "summary_worklog_report.csv"
)

// Report is the final view of a run.
type Report struct {
	Rows       []model.ReportRow  `json:"rows"`
	TotalHours float64            `json:"total_hours"`
	Summary    map[string]float64 `json:"summary"`
	Errors     []string           `json:"errors,omitempty"`
	Issues     int                `json:"issues"`
}

// Build sorts rows by date, keeping fetch order for equal dates, and
// computes the total and the per-date sums. The input is not modified.
func Build(res model.AggregateResult) Report {
	rows := make([]model.ReportRow, len(res.Rows))
	copy(rows, res.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	r := Report{
		Rows:    rows,
		Summary: make(map[string]float64),
		Errors:  res.Errors,
		Issues:  res.Issues,
	}
	for _, row := range rows {
		r.TotalHours += row.Hours
		r.Summary[row.Date] += row.Hours
	}
	return r
}

// Dates returns the summary dates in ascending order.
func (r Report) Dates() []string {
	dates := make([]string, 0, len(r.Summary))
	for d := range r.Summary {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
