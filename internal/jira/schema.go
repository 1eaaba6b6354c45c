package jira

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Tiliavir/worklog-report/internal/apperr"
)

// MaxSearchTotal is the largest issue count a search may declare.
const MaxSearchTotal = 1_000_000

var searchPageSchema = fmt.Sprintf(`{
  "type": "object",
  "required": ["total", "issues"],
  "properties": {
    "total":  {"type": "integer", "minimum": 0, "maximum": %d},
    "issues": {"type": "array", "items": {"type": "object"}}
  }
}`, MaxSearchTotal)

const worklogPageSchema = `{
  "type": "object",
  "required": ["worklogs"],
  "properties": {
    "total":    {"type": "integer", "minimum": 0},
    "worklogs": {"type": "array", "items": {"type": "object"}}
  }
}`

const userListSchema = `{
  "type": "array",
  "items": {"type": "object"}
}`

var (
	searchPage  = mustSchema(searchPageSchema)
	worklogPage = mustSchema(worklogPageSchema)
	userList    = mustSchema(userListSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("jira: invalid built-in schema: %v", err))
	}
	return s
}

// checkShape validates body against schema and returns a ProtocolError
// naming what was wrong.
func checkShape(schema *gojsonschema.Schema, what string, body []byte) error {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &apperr.ProtocolError{
			Message: fmt.Sprintf("unreadable %s response: %v", what, err),
			Body:    clip(body),
		}
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return &apperr.ProtocolError{
		Message: fmt.Sprintf("unexpected %s response: %s", what, strings.Join(problems, "; ")),
		Body:    clip(body),
	}
}

func clip(body []byte) string {
	const maxClip = 4 << 10
	if len(body) > maxClip {
		return string(body[:maxClip]) + "..."
	}
	return string(body)
}
