// Package rest is the HTTP transport for PostgREST-style backends: the
// /rest/v1 table API and the /storage/v1 object API share one client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
)

// Client talks to a single backend project.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the project URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-2xx reply from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error %d", e.StatusCode)
}

// Is maps HTTP conflicts to common.ErrIDInUse so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	return target == common.ErrIDInUse && e.StatusCode == http.StatusConflict
}

// Request describes one call.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "/rest/v1/mails".
	Path  string
	Query url.Values
	// JSON is marshalled as the body when non-nil.
	JSON any
	// Raw is sent verbatim when JSON is nil.
	Raw         []byte
	ContentType string
	// Prefer sets the PostgREST Prefer header.
	Prefer string
}

// Do executes req and decodes a JSON reply into out (if non-nil).
// 204 replies leave out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body io.Reader
	contentType := req.ContentType
	switch {
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	case req.Raw != nil:
		body = bytes.NewReader(req.Raw)
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + encodeQuery(req.Query)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Prefer != "" {
		httpReq.Header.Set("Prefer", req.Prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"message"} or {"error"} from an error body.
func errorMessage(b []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// encodeQuery keeps PostgREST operators readable (select=*, order=created_at.desc)
// while escaping values such as "#244".
func encodeQuery(q url.Values) string {
	enc := q.Encode()
	enc = strings.ReplaceAll(enc, "%2A", "*")
	enc = strings.ReplaceAll(enc, "%2C", ",")
	return enc
}

// Eq renders a PostgREST equality filter value.
func Eq(v string) string {
	return "eq." + v
}

// IsStatus reports whether err is a backend reply with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == status
}
