// Package api is a thin REST client for the bug tracker backend.
// Each method maps to one endpoint, returns decoded domain types, and turns
// non-2xx responses into a FetchError carrying a fixed, human-readable message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robby/bugtracker/internal/debug"
)

// DefaultBaseURL is used when New is given an empty base URL.
const DefaultBaseURL = "http://localhost:8080"

const apiPath = "/api"

// Client talks to the bug tracker REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// errTrailingData marks a 2xx body with more than one JSON value.
var errTrailingData = errors.New("unexpected data after JSON body")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout. It applies to
// whichever *http.Client ends up in use, regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client rooted at baseURL (scheme://host[:port]).
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	return c
}

// BaseURL returns the API root without the /api prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request and decodes a JSON response into out (when non-nil).
// op and failMsg describe the operation for logging and the FetchError.
// A 2xx response must carry exactly one JSON value when out is non-nil.
func (c *Client) do(ctx context.Context, op, failMsg, method, path string, body, out any) error {
	return c.exchange(ctx, op, failMsg, method, path, body, out, false)
}

// doAllowEmpty is do for endpoints that may answer 2xx with no body, in
// which case out is left untouched.
func (c *Client) doAllowEmpty(ctx context.Context, op, failMsg, method, path string, body, out any) error {
	return c.exchange(ctx, op, failMsg, method, path, body, out, true)
}

func (c *Client) exchange(ctx context.Context, op, failMsg, method, path string, body, out any, allowEmpty bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + apiPath + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	debug.Logf("api %s: %s %s (request %s)", op, method, url, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures go back to the caller untouched.
		debug.Logf("api %s: transport error after %s: %v", op, time.Since(start), err)
		return err
	}
	defer resp.Body.Close()

	debug.Logf("api %s: %d %s in %s", op, resp.StatusCode, http.StatusText(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{
			Op:         op,
			Message:    failMsg,
			StatusCode: resp.StatusCode,
			Detail:     readErrorDetail(resp.Body),
		}
		debug.Logf("api %s: %v (detail %q)", op, fe, fe.Detail)
		return fe
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeBody(resp.Body, out, allowEmpty); err != nil {
		debug.Logf("api %s: decode failed: %v", op, err)
		return &FetchError{Op: op, Message: failMsg, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// decodeBody decodes exactly one JSON value from r into out. An empty body
// is io.ErrUnexpectedEOF unless allowEmpty is set.
func decodeBody(r io.Reader, out any, allowEmpty bool) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return io.ErrUnexpectedEOF
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// readErrorDetail extracts {"error": "..."} or plain text from an error body.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
