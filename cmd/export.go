package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Tiliavir/worklog-report/internal/report"
	"github.com/Tiliavir/worklog-report/internal/storage"
)

// writeExports renders both CSV exports and writes them into dir.
func writeExports(dir string, r report.Report) ([]storage.Written, error) {
	detailed, err := report.Bytes(r, report.WriteDetailedCSV)
	if err != nil {
		return nil, err
	}
	summary, err := report.Bytes(r, report.WriteSummaryCSV)
	if err != nil {
		return nil, err
	}
	written, err := storage.WriteAll(dir,
		storage.File{Name: report.DetailedFileName, Data: detailed},
		storage.File{Name: report.SummaryFileName, Data: summary},
	)
	if err != nil {
		return written, fmt.Errorf("saving exports: %w", err)
	}
	return written, nil
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
