package jira_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/worklog-report/internal/jira"
	"github.com/Tiliavir/worklog-report/internal/model"
)

func TestBuildJQL(t *testing.T) {
	tests := []struct {
		name   string
		filter model.QueryFilter
		want   string
	}{
		{
			name:   "author only",
			filter: model.QueryFilter{AccountID: "abc"},
			want:   "worklogAuthor=abc",
		},
		{
			name:   "with project",
			filter: model.QueryFilter{AccountID: "abc", ProjectKey: "OPS"},
			want:   "worklogAuthor=abc AND project=OPS",
		},
		{
			name:   "start only",
			filter: model.QueryFilter{AccountID: "abc", StartDate: "2024-01-01"},
			want:   "worklogAuthor=abc AND worklogDate >= '2024-01-01'",
		},
		{
			name:   "all clauses",
			filter: model.QueryFilter{AccountID: "abc", ProjectKey: "OPS", StartDate: "2024-01-01", EndDate: "2024-01-31"},
			want:   "worklogAuthor=abc AND project=OPS AND worklogDate >= '2024-01-01' AND worklogDate <= '2024-01-31'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jira.BuildJQL(tt.filter))
		})
	}
}

func TestEncodeJQL_RoundTrips(t *testing.T) {
	f := model.QueryFilter{AccountID: "5b10:ac8d", ProjectKey: "A&B", StartDate: "2024-01-01", EndDate: "2024-01-31"}

	enc := jira.EncodeJQL(f)
	assert.NotContains(t, enc, " ")
	assert.NotContains(t, enc, "+")
	assert.NotContains(t, enc, "&")
	assert.Contains(t, enc, "%20")

	dec, err := url.QueryUnescape(enc)
	require.NoError(t, err)
	assert.Equal(t, jira.BuildJQL(f), dec)
}
