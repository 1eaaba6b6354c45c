package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/pipeline"
	"github.com/Tiliavir/worklog-report/internal/progress"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

// fakeRelay plays both the relay and the tracker behind it.
type fakeRelay struct {
	users    string
	issues   []string
	worklogs map[string]string
	failing  map[string]int
	dropped  map[string]bool // connection closed without a response

	mu    sync.Mutex
	paths []string
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain string `json:"domain"`
		Path   string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.paths = append(f.paths, req.Path)
	f.mu.Unlock()

	u, err := url.Parse(req.Path)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case u.Path == "/rest/api/3/user/search":
		_, _ = w.Write([]byte(f.users))
	case u.Path == "/rest/api/3/search":
		startAt, _ := strconv.Atoi(u.Query().Get("startAt"))
		maxResults, _ := strconv.Atoi(u.Query().Get("maxResults"))
		var items []string
		for i := startAt; i < len(f.issues) && i < startAt+maxResults; i++ {
			items = append(items, fmt.Sprintf(`{"key":%q,"fields":{"summary":"Summary of %s"}}`, f.issues[i], f.issues[i]))
		}
		fmt.Fprintf(w, `{"startAt":%d,"total":%d,"issues":[%s]}`, startAt, len(f.issues), strings.Join(items, ","))
	case strings.HasPrefix(u.Path, "/rest/api/3/issue/"):
		key := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/rest/api/3/issue/"), "/worklog")
		if f.dropped[key] {
			if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
				_ = conn.Close()
			}
			return
		}
		if status, ok := f.failing[key]; ok {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"Issue does not exist or you do not have permission to see it."}`))
			return
		}
		body, ok := f.worklogs[key]
		if !ok {
			body = `{"total":0,"worklogs":[]}`
		}
		_, _ = w.Write([]byte(body))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown path"}`))
	}
}

func (f *fakeRelay) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		users:  `[{"accountId":"acc-other","emailAddress":"other@acme.io"},{"accountId":"acc-1","emailAddress":"Dev@Acme.io"}]`,
		issues: []string{"OPS-1", "OPS-2", "OPS-3"},
		worklogs: map[string]string{
			"OPS-1": `{"total":2,"worklogs":[
				{"author":{"accountId":"acc-1"},"started":"2024-01-02T09:00:00.000+0000","timeSpentSeconds":5400,
				 "comment":{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"Deploy"}]}]}},
				{"author":{"accountId":"acc-other"},"started":"2024-01-02T10:00:00.000+0000","timeSpentSeconds":7200}
			]}`,
			"OPS-2": `{"total":2,"worklogs":[
				{"author":{"accountId":"acc-1"},"started":"2024-01-01T08:00:00.000+0000","timeSpentSeconds":3600,"comment":"review"},
				{"author":{"accountId":"acc-1"},"started":"2024-02-10T08:00:00.000+0000","timeSpentSeconds":3600}
			]}`,
		},
		failing: map[string]int{},
		dropped: map[string]bool{},
	}
}

var testCred = model.Credential{Host: "acme.atlassian.net", Email: "dev@acme.io", APIToken: "tok"}

func start(t *testing.T, f *fakeRelay) relay.Fetcher {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return relay.NewClient(context.Background(), relay.Options{URL: srv.URL, Timeout: 5 * time.Second})
}

func baseOptions(fetcher relay.Fetcher, rep progress.Reporter) pipeline.Options {
	return pipeline.Options{
		Fetcher:     fetcher,
		Credential:  testCred,
		SearchEmail: "dev@acme.io",
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
		PageSize:    2,
		Progress:    rep,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFakeRelay()
	rec := &progress.Recorder{}

	r, err := pipeline.Run(context.Background(), baseOptions(start(t, f), rec))
	require.NoError(t, err)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "OPS-2", r.Rows[0].IssueKey)
	assert.Equal(t, "2024-01-01", r.Rows[0].Date)
	assert.Equal(t, "review", r.Rows[0].Comment)
	assert.Equal(t, "OPS-1", r.Rows[1].IssueKey)
	assert.Equal(t, "Deploy", r.Rows[1].Comment)
	assert.Equal(t, "https://acme.atlassian.net/browse/OPS-1", r.Rows[1].IssueLink)
	assert.InDelta(t, 2.5, r.TotalHours, 1e-9)
	assert.Equal(t, map[string]float64{"2024-01-01": 1, "2024-01-02": 1.5}, r.Summary)
	assert.Empty(t, r.Errors)
	assert.Equal(t, 3, r.Issues)

	calls := f.calls()
	require.Len(t, calls, 1+2+3, "one user lookup, two search pages, three worklog fetches")
	assert.Equal(t, "/rest/api/3/user/search?query=dev%40acme.io", calls[0])
	assert.Contains(t, calls[1], "worklogAuthor%3Dacc-1")
	assert.Contains(t, calls[1], "startAt=0")
	assert.Contains(t, calls[2], "startAt=2")

	updates := rec.Updates()
	require.NotEmpty(t, updates)
	assert.True(t, rec.Monotonic())
	last := updates[len(updates)-1]
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, pipeline.MsgSuccess, last.Message)
}

func TestRun_PartialFailure(t *testing.T) {
	f := newFakeRelay()
	f.failing["OPS-3"] = http.StatusNotFound
	rec := &progress.Recorder{}

	r, err := pipeline.Run(context.Background(), baseOptions(start(t, f), rec))
	require.NoError(t, err)

	assert.Len(t, r.Rows, 2)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "Failed to fetch worklogs for OPS-3")
	assert.Contains(t, r.Errors[0], "Issue does not exist")

	updates := rec.Updates()
	assert.Equal(t, "Report generated with some errors (1 issues affected)", updates[len(updates)-1].Message)
}

func TestRun_AllFailed(t *testing.T) {
	f := newFakeRelay()
	for _, k := range f.issues {
		f.failing[k] = http.StatusInternalServerError
	}

	_, err := pipeline.Run(context.Background(), baseOptions(start(t, f), nil))

	var nd *apperr.NoDataError
	require.ErrorAs(t, err, &nd)
	assert.True(t, nd.AllFailed)
	assert.Len(t, nd.Failures, 3)
	assert.Equal(t, "Failed to retrieve any work logs.", err.Error())
}

func TestRun_NoMatchingWork(t *testing.T) {
	f := newFakeRelay()
	opts := baseOptions(start(t, f), nil)
	opts.StartDate = "2023-01-01"
	opts.EndDate = "2023-12-31"

	_, err := pipeline.Run(context.Background(), opts)

	var nd *apperr.NoDataError
	require.ErrorAs(t, err, &nd)
	assert.False(t, nd.AllFailed)
	assert.Equal(t, apperr.KindNoData, apperr.KindOf(err))
}

func TestRun_NoIssues(t *testing.T) {
	f := newFakeRelay()
	f.issues = nil

	_, err := pipeline.Run(context.Background(), baseOptions(start(t, f), nil))

	var nd *apperr.NoDataError
	require.ErrorAs(t, err, &nd)
	assert.False(t, nd.AllFailed)
	assert.Len(t, f.calls(), 2, "user lookup and a single empty search page")
}

func TestRun_AccountIDSkipsLookup(t *testing.T) {
	f := newFakeRelay()
	opts := baseOptions(start(t, f), nil)
	opts.AccountID = "acc-1"
	opts.SearchEmail = ""

	r, err := pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, r.Rows, 2)
	for _, p := range f.calls() {
		assert.NotContains(t, p, "/user/search")
	}
}

func TestRun_UserNotFound(t *testing.T) {
	f := newFakeRelay()
	f.users = `[{"accountId":"acc-other","emailAddress":"other@acme.io"}]`

	_, err := pipeline.Run(context.Background(), baseOptions(start(t, f), nil))

	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), "dev@acme.io")
	assert.Len(t, f.calls(), 1, "no search after a failed lookup")
}

func TestRun_ValidationHappensBeforeIO(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pipeline.Options)
		want   string
	}{
		{"missing token", func(o *pipeline.Options) { o.Credential.APIToken = "" }, "Missing required fields: API Token"},
		{"missing identity", func(o *pipeline.Options) { o.SearchEmail = "" }, "User Account ID or Search Email"},
		{"bad host", func(o *pipeline.Options) { o.Credential.Host = "localhost" }, "Invalid Jira domain format"},
		{"bad email", func(o *pipeline.Options) { o.Credential.Email = "dev" }, "Invalid email format"},
		{"start after end", func(o *pipeline.Options) { o.StartDate, o.EndDate = "2024-02-01", "2024-01-01" }, "Start date cannot be after end date"},
		{"bad date", func(o *pipeline.Options) { o.EndDate = "2024-13-01" }, "invalid date"},
		{"negative page size", func(o *pipeline.Options) { o.PageSize = -1 }, "page size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRelay()
			opts := baseOptions(start(t, f), nil)
			tt.mutate(&opts)

			_, err := pipeline.Run(context.Background(), opts)

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tt.want)
			assert.Empty(t, f.calls())
		})
	}
}

func TestRun_RelayDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	fetcher := relay.NewClient(context.Background(), relay.Options{URL: srv.URL, Timeout: time.Second})

	_, err := pipeline.Run(context.Background(), baseOptions(fetcher, nil))

	assert.Equal(t, apperr.KindConnectivity, apperr.KindOf(err))
}

func TestRun_RelayDropsDuringDetails(t *testing.T) {
	f := newFakeRelay()
	f.dropped["OPS-2"] = true

	r, err := pipeline.Run(context.Background(), baseOptions(start(t, f), nil))

	require.Error(t, err)
	assert.Equal(t, apperr.KindConnectivity, apperr.KindOf(err))
	assert.Empty(t, r.Rows)

	calls := f.calls()
	assert.Contains(t, calls, "/rest/api/3/issue/OPS-1/worklog")
	assert.Contains(t, calls, "/rest/api/3/issue/OPS-2/worklog")
	assert.NotContains(t, calls, "/rest/api/3/issue/OPS-3/worklog")
}

func TestRun_LogsCarryRunID(t *testing.T) {
	f := newFakeRelay()
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	opts := baseOptions(start(t, f), nil)
	opts.Logger = &log

	_, err := pipeline.Run(context.Background(), opts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var runID string
	for _, line := range lines {
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		id, _ := event["run_id"].(string)
		require.NotEmpty(t, id)
		if runID == "" {
			runID = id
		}
		assert.Equal(t, runID, id)
	}
}
