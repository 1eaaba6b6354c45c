package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/worklog-report/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.WarnLevel},
		{"nonsense", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logger.ParseLevel(tt.in), tt.in)
	}
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "warn", Format: logger.FormatJSON, Writer: &buf})

	l.Info().Msg("hidden")
	l.Warn().Str("issue", "A-1").Msg("shown")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "shown", event["message"])
	assert.Equal(t, "A-1", event["issue"])
	assert.Equal(t, "warn", event["level"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "debug", Format: logger.FormatConsole, Writer: &buf, NoColor: true})

	l.Debug().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "DBG")
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "info", Format: logger.FormatJSON, Writer: &buf})

	ctx := logger.WithRun(context.Background(), l, "run-42")
	logger.C(ctx).Info().Msg("step")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "run-42", event["run_id"])
}

func TestCWithoutLogger(t *testing.T) {
	l := logger.C(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
