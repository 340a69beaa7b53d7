// Package gateway implements the HTTP client used to probe model gateway
// endpoints. All requests go through a shared retry policy: transient
// failures (transport errors, 429 and 5xx responses) are retried with
// exponential backoff, every other status is handed back to the caller for
// status-specific handling.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxTries = 4
)

// Response is the terminal result of a probe request, after retries.
type Response struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// BodyPreview returns the body truncated to n bytes for error reporting.
func (r *Response) BodyPreview(n int) string {
	if len(r.Body) <= n {
		return string(r.Body)
	}
	return string(r.Body[:n]) + "..."
}

type Client struct {
	httpClient *http.Client
	maxTries   uint
	log        *zap.SugaredLogger
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxTries overrides how many attempts the retry policy makes.
func WithMaxTries(n uint) Option {
	return func(c *Client) { c.maxTries = n }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxTries:   defaultMaxTries,
		log:        zap.S().Named("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request with the retry policy applied.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

// PostJSON issues a POST request with a JSON body and the retry policy
// applied.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, headers, payload)
}

// PostForm issues a form-encoded POST (used for OAuth2 token requests).
// Token endpoints are not retried on 4xx; the retry policy still covers
// transport errors and 5xx.
func (c *Client) PostForm(ctx context.Context, url string, form string) (*Response, error) {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	return c.do(ctx, http.MethodPost, url, headers, []byte(form))
}

// retryStatusError marks a response whose status code is transient. It only
// travels inside the retry loop.
type retryStatusError struct {
	resp *Response
}

func (e *retryStatusError) Error() string {
	return fmt.Sprintf("transient gateway status %d", e.resp.StatusCode)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, payload []byte) (*Response, error) {
	attempt := 0
	operation := func() (*Response, error) {
		attempt++
		resp, err := c.attempt(ctx, method, url, headers, payload)
		if err != nil {
			c.log.Debugw("request attempt failed", "method", method, "url", url, "attempt", attempt, "error", err)
			return nil, err
		}
		if retryableStatus(resp.StatusCode) {
			c.log.Debugw("transient status, retrying", "method", method, "url", url, "attempt", attempt, "status", resp.StatusCode)
			return nil, &retryStatusError{resp: resp}
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		// A transient status that never recovered is still a response;
		// the caller decides what the final status means.
		var statusErr *retryStatusError
		if errors.As(err, &statusErr) {
			return statusErr.resp, nil
		}
		return nil, valErrors.NewGatewayUnreachableError(err)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, url string, headers map[string]string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Latency:    time.Since(start),
	}, nil
}
