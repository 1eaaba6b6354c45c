package config

// Example is an annotated wlr.yaml showing every key with its default.
// Values left empty must be supplied here, through WLR_* environment
// variables or through flags.
const Example = `# wlr configuration - ./wlr.yaml or ~/.config/wlr/wlr.yaml
#
# Every key can also be set through the environment, e.g. WLR_JIRA_API_TOKEN,
# or through the matching command-line flag.

relay:
  # Base URL of the relay that performs authenticated calls to Jira.
  url: http://localhost:8000
  # Optional bearer token expected by the relay.
  token: ""
  # Per-request timeout.
  timeout: 60s

jira:
  # Tracker domain, e.g. your-domain.atlassian.net
  host: ""
  # Account email and API token used to authenticate every call.
  email: ""
  api_token: ""
  # Optional: report on this account id and skip the user lookup.
  account_id: ""
  # Optional: look up this user instead of the authenticated one.
  search_email: ""

query:
  # Optional project key, e.g. OPS.
  project: ""
  # Inclusive date range, YYYY-MM-DD. Empty means unbounded.
  start: ""
  end: ""
  # Issues per search page (1-100).
  page_size: 50

report:
  # Directory receiving worklog_report.csv and summary_worklog_report.csv.
  output_dir: .
  # Text shown for work-log entries without a comment.
  empty_comment: ""

log:
  # trace, debug, info, warn, error or off
  level: warn
  # console or json
  format: console
`
