package jira

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/progress"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

const (
	searchPath = "/rest/api/3/search"

	// DefaultPageSize is the search page size used when none is configured.
	DefaultPageSize = 50
)

// searchResponse is one page of the issue search endpoint.
type searchResponse struct {
	Total  int `json:"total"`
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	} `json:"issues"`
}

// SearchPath returns the relay path for one search page.
func SearchPath(encodedJQL string, pageSize, startAt int) string {
	return fmt.Sprintf("%s?jql=%s&maxResults=%d&startAt=%d&fields=summary",
		searchPath, encodedJQL, pageSize, startAt)
}

// SearchIssues collects every issue matching encodedJQL, one page at a time.
// The total declared by the first page decides how many pages are fetched;
// a total of zero ends the search after that page. Any failed page aborts
// the search.
func SearchIssues(ctx context.Context, f relay.Fetcher, cred model.Credential, encodedJQL string, pageSize int, rep progress.Reporter) ([]model.Issue, error) {
	if pageSize < 1 {
		return nil, apperr.Validationf("page size must be at least 1, got %d", pageSize)
	}
	rep = progress.OrNop(rep)
	log := zerolog.Ctx(ctx)

	var (
		issues []model.Issue
		offset int
		total  = -1
	)
	for total < 0 || offset < total {
		body, err := f.Fetch(ctx, cred.Host, SearchPath(encodedJQL, pageSize, offset), cred)
		if err != nil {
			return nil, fmt.Errorf("searching issues at offset %d: %w", offset, err)
		}
		if err := checkShape(searchPage, "issue search", body); err != nil {
			return nil, err
		}
		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &apperr.ProtocolError{Message: fmt.Sprintf("decoding issue search response: %v", err), Body: clip(body)}
		}

		if total < 0 {
			total = page.Total
		}
		if len(page.Issues) == 0 && offset < total {
			return nil, &apperr.ProtocolError{
				Message: fmt.Sprintf("issue search returned an empty page at offset %d of %d", offset, total),
				Body:    clip(body),
			}
		}
		for _, is := range page.Issues {
			issues = append(issues, model.Issue{Key: is.Key, Summary: is.Fields.Summary})
		}
		offset += pageSize

		log.Debug().Int("offset", offset).Int("total", total).Int("page", len(page.Issues)).Msg("fetched search page")
		if total > 0 {
			rep.Report(progress.SearchSpan.At(float64(offset)/float64(total)),
				fmt.Sprintf("Retrieved %s of %s issues...", humanize.Comma(int64(len(issues))), humanize.Comma(int64(total))))
		}
	}
	return issues, nil
}
