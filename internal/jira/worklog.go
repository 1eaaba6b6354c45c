package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
	"github.com/Tiliavir/worklog-report/internal/relay"
)

// WorklogPath returns the relay path of an issue's work log list.
func WorklogPath(issueKey string) string {
	return "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/worklog"
}

type worklogResponse struct {
	Total    *int         `json:"total"`
	Worklogs []rawWorklog `json:"worklogs"`
}

type rawWorklog struct {
	Author *struct {
		AccountID string `json:"accountId"`
	} `json:"author"`
	Started          string          `json:"started"`
	TimeSpentSeconds json.Number     `json:"timeSpentSeconds"`
	Comment          json.RawMessage `json:"comment"`
}

// WorklogPage is the decoded work log list of one issue. Total is the count
// the upstream declared, or len(Worklogs) when it declared none.
type WorklogPage struct {
	Worklogs []model.Worklog
	Total    int
}

// Truncated reports whether the upstream returned fewer entries than it
// declared.
func (p WorklogPage) Truncated() bool {
	return p.Total > len(p.Worklogs)
}

// FetchWorklogs fetches and decodes the work logs of one issue.
func FetchWorklogs(ctx context.Context, f relay.Fetcher, cred model.Credential, issueKey string) (WorklogPage, error) {
	body, err := f.Fetch(ctx, cred.Host, WorklogPath(issueKey), cred)
	if err != nil {
		return WorklogPage{}, err
	}
	if err := checkShape(worklogPage, "worklog", body); err != nil {
		return WorklogPage{}, err
	}

	var resp worklogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return WorklogPage{}, &apperr.ProtocolError{Message: fmt.Sprintf("decoding worklog response: %v", err), Body: clip(body)}
	}

	page := WorklogPage{Worklogs: make([]model.Worklog, 0, len(resp.Worklogs))}
	for _, rw := range resp.Worklogs {
		secs, ok := spentSeconds(rw.TimeSpentSeconds)
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("issue", issueKey).Str("time_spent", rw.TimeSpentSeconds.String()).Msg("worklog with unusable time spent")
			continue
		}
		w := model.Worklog{
			Started:          rw.Started,
			TimeSpentSeconds: secs,
			Comment:          DecodeComment(rw.Comment),
		}
		if rw.Author != nil {
			w.AuthorAccountID = rw.Author.AccountID
		}
		page.Worklogs = append(page.Worklogs, w)
	}
	page.Total = len(page.Worklogs)
	if resp.Total != nil {
		page.Total = *resp.Total
	}
	return page, nil
}

// spentSeconds reads a duration sent as an integer or a float. Absent means
// zero; negative or non-finite values are unusable.
func spentSeconds(n json.Number) (int64, bool) {
	if n == "" {
		return 0, true
	}
	if v, err := n.Int64(); err == nil {
		return v, v >= 0
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f < 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// adfNode is a node of an Atlassian Document Format tree.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
	Attrs   struct {
		Text string `json:"text"`
	} `json:"attrs"`
}

// DecodeComment turns a raw comment field into a model.Comment. Strings
// become PlainText, document trees become StructuredBlock, and anything
// else (missing, null, unexpected shape) is treated as no comment.
func DecodeComment(raw json.RawMessage) model.Comment {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return model.PlainText(s)
	case '{':
		var doc adfNode
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil
		}
		return model.StructuredBlock(adfLeaves(doc, nil))
	default:
		return nil
	}
}

// adfLeaves appends the text leaves of n to out in document order, with a
// newline between sibling block nodes.
func adfLeaves(n adfNode, out []string) []string {
	switch n.Type {
	case "text":
		return append(out, n.Text)
	case "hardBreak":
		return append(out, "\n")
	case "mention", "emoji":
		if n.Attrs.Text != "" {
			return append(out, n.Attrs.Text)
		}
		return out
	}
	wroteBlock := false
	for _, c := range n.Content {
		if adfBlocks[c.Type] {
			if wroteBlock {
				out = append(out, "\n")
			}
			wroteBlock = true
		}
		out = adfLeaves(c, out)
	}
	return out
}

// adfBlocks are the node types rendered on their own line.
var adfBlocks = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"blockquote":  true,
	"codeBlock":   true,
	"bulletList":  true,
	"orderedList": true,
	"listItem":    true,
	"panel":       true,
	"table":       true,
	"tableRow":    true,
}
