// Package relay talks to the local relay that performs authenticated calls
// against the issue tracker on wlr's behalf.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/worklog-report/internal/apperr"
	"github.com/Tiliavir/worklog-report/internal/model"
)

const (
	// DefaultURL is where the relay listens unless configured otherwise.
	DefaultURL = "http://localhost:8000"

	// ResourceRoot is the prefix every upstream path must start with.
	ResourceRoot = "/rest/"

	proxyPath      = "/proxy"
	maxBodyInError = 4 << 10
)

// Fetcher performs one relayed GET against the upstream API and returns the
// upstream JSON body verbatim.
type Fetcher interface {
	Fetch(ctx context.Context, host, path string, cred model.Credential) (json.RawMessage, error)
}

// Options configures a Client.
type Options struct {
	// URL is the relay base URL, e.g. http://localhost:8000.
	URL string
	// Token, when set, is sent to the relay as a bearer token.
	Token string
	// Timeout bounds each relay call. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. Mostly for tests.
	HTTPClient *http.Client
}

// Client is a relay client. It does not log and keeps no state between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a relay client. When opts.Token is set the underlying
// HTTP client attaches it to every request.
func NewClient(ctx context.Context, opts Options) *Client {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	hc := base
	if opts.Token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}
	if opts.Timeout > 0 {
		c := *hc
		c.Timeout = opts.Timeout
		hc = &c
	}
	url := strings.TrimRight(opts.URL, "/")
	if url == "" {
		url = DefaultURL
	}
	return &Client{baseURL: url, httpClient: hc}
}

// proxyRequest is the relay's request body.
type proxyRequest struct {
	Domain   string `json:"domain"`
	Email    string `json:"email"`
	APIToken string `json:"apiToken"`
	Path     string `json:"path"`
}

// proxyError is the relay's body for non-success responses. Both fields may
// be missing.
type proxyError struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// ValidateTarget checks host and path before any call is made.
func ValidateTarget(host, path string) error {
	if host == "" {
		return apperr.Validationf("Jira host is required")
	}
	if !strings.Contains(host, ".") {
		return apperr.Validationf("Invalid Jira domain format. Should be something like \"your-domain.atlassian.net\"")
	}
	if !strings.HasPrefix(path, ResourceRoot) {
		return apperr.Validationf("invalid API path %q: must start with %s", path, ResourceRoot)
	}
	return nil
}

// Fetch asks the relay to GET path on host with cred.
func (c *Client) Fetch(ctx context.Context, host, path string, cred model.Credential) (json.RawMessage, error) {
	if err := ValidateTarget(host, path); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(proxyRequest{
		Domain:   host,
		Email:    cred.Email,
		APIToken: cred.APIToken,
		Path:     path,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+proxyPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.NewConnectivity(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, apperr.NewConnectivity(fmt.Errorf("reading relay response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, &apperr.ProtocolError{
			Message: fmt.Sprintf("relay returned a non-JSON body for %s", path),
			Body:    truncate(body),
		}
	}
	return json.RawMessage(body), nil
}

func upstreamError(status int, body []byte) *apperr.UpstreamError {
	e := &apperr.UpstreamError{Message: apperr.DefaultUpstreamMessage, Status: status}

	var pe proxyError
	if err := json.Unmarshal(body, &pe); err != nil {
		e.Details = truncate(body)
		return e
	}
	if pe.Error != "" {
		e.Message = pe.Error
	}
	e.Details = detailsText(pe.Details)
	return e
}

// detailsText renders the relay's details field, which is usually a string
// holding the upstream body but may be any JSON value.
func detailsText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(body []byte) string {
	if len(body) > maxBodyInError {
		return string(body[:maxBodyInError]) + "..."
	}
	return string(body)
}
