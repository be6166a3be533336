package transport

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

	"github.com/rs/zerolog/log"
)

// DefaultTimeout leaves room for slow AI generation on the backend
const DefaultTimeout = 30 * time.Second

// Response is a successful (2xx) reply
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the server declared a JSON body
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "json")
}

// JSON decodes the body into v
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Text returns the body as plain text
func (r *Response) Text() string {
	return string(r.Body)
}

// Client issues time-bounded requests against the backend. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client (tests use httptest's)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a transport client for baseURL. A zero timeout means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-call deadline
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Call performs one request. body, when non-nil, is sent as JSON.
func (c *Client) Call(ctx context.Context, method, endpoint string, body interface{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classify(ctx, method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, method, url, err)
	}

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Get is Call with GET and no body
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.Call(ctx, http.MethodGet, endpoint, nil)
}

// Post is Call with POST
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.Call(ctx, http.MethodPost, endpoint, body)
}

// classify maps a failed round trip onto the transport error taxonomy
func (c *Client) classify(ctx context.Context, method, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", method, url, ErrTimeout)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	return &NetworkError{Op: method, URL: url, Err: err}
}
