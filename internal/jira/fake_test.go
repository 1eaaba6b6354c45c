package jira_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tiliavir/worklog-report/internal/model"
)

// fakeFetcher answers relay calls from a path-keyed table and records every
// path it was asked for.
type fakeFetcher struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, _, path string, _ model.Credential) (json.RawMessage, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	body, ok := f.responses[path]
	if !ok {
		return nil, fmt.Errorf("unexpected path %s", path)
	}
	return json.RawMessage(body), nil
}

var testCred = model.Credential{Host: "acme.atlassian.net", Email: "me@acme.com", APIToken: "tok"}
