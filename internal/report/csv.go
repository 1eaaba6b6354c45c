package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatHours renders hours with two decimals.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

// WriteDetailedCSV writes one line per row followed by a total line.
func WriteDetailedCSV(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, "Issue Key", "Issue Summary", "Date", "Hours Logged", "Comment", "Issue Link")
	for _, row := range r.Rows {
		writeLine(bw, row.IssueKey, row.Summary, row.Date, FormatHours(row.Hours), row.Comment, row.IssueLink)
	}
	writeLine(bw, "Total", "", "", FormatHours(r.TotalHours), "", "")
	return bw.Flush()
}

// WriteSummaryCSV writes one line per date in ascending order followed by a
// total line.
func WriteSummaryCSV(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, "Date", "Total Hours")
	for _, d := range r.Dates() {
		writeLine(bw, d, FormatHours(r.Summary[d]))
	}
	writeLine(bw, "Total", FormatHours(r.TotalHours))
	return bw.Flush()
}

func writeLine(w *bufio.Writer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(csvEscape(f))
	}
	w.WriteByte('\n')
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Bytes renders one of the exports into memory.
func Bytes(r Report, write func(io.Writer, Report) error) ([]byte, error) {
	var b bytes.Buffer
	if err := write(&b, r); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return b.Bytes(), nil
}
