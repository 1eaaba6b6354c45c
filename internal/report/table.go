package report

import (
	"encoding/json"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const commentWidth = 60

// RenderTable writes the detailed rows and the per-date summary as two
// terminal tables.
func RenderTable(w io.Writer, r Report) {
	total := "Total Hours: " + FormatHours(r.TotalHours)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 40},
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignLeft, WidthMax: commentWidth},
	})
	tw.AppendHeader(table.Row{"Issue", "Summary", "Date", "Hours", "Comment"})
	for _, row := range r.Rows {
		tw.AppendRow(table.Row{row.IssueKey, row.Summary, row.Date, FormatHours(row.Hours), row.Comment})
	}
	tw.AppendFooter(table.Row{"", "", "Total", FormatHours(r.TotalHours), ""})
	tw.Render()

	sw := table.NewWriter()
	sw.SetOutputMirror(w)
	sw.SetStyle(table.StyleRounded)
	sw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	sw.AppendHeader(table.Row{"Date", "Hours"})
	for _, d := range r.Dates() {
		sw.AppendRow(table.Row{d, FormatHours(r.Summary[d])})
	}
	sw.AppendFooter(table.Row{"Total", FormatHours(r.TotalHours)})
	sw.Render()

	color.New(color.Bold).Fprintln(w, total)
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
