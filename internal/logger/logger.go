// Package logger builds the zerolog logger used by the CLI and carries a
// run-scoped child logger through context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Formats accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures the logger
type Options struct {
	Level   string
	Format  string
	Writer  io.Writer
	NoColor bool
}

// New builds a logger writing to opt.Writer, or stderr when unset.
func New(opt Options) zerolog.Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: opt.NoColor}
	}
	return zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names give warn.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// WithRun returns ctx carrying a child of l tagged with the run id.
func WithRun(ctx context.Context, l zerolog.Logger, runID string) context.Context {
	return l.With().Str("run_id", runID).Logger().WithContext(ctx)
}

// C returns the logger carried by ctx, or a disabled one.
func C(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
