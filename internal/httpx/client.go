// Package httpx wraps net/http with the retry, backoff, and timeout
// policy shared by every connector. All outbound requests go through
// this client; no connector talks to net/http directly.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/catalyst-labs/radar/internal/logger"
)

// Retryable response statuses. Anything else is returned immediately.
var retryStatus = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// Config controls timeouts and the retry policy.
// Zero fields take the defaults noted on each field.
type Config struct {
	// UserAgent is sent on every request. Required by some sources.
	UserAgent string

	// ConnectTimeout bounds connection establishment. Default 10s.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the whole request including the body. Default 30s.
	ReadTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Default 6.
	MaxRetries int

	// BackoffBase is the first retry's wait. Default 2s.
	BackoffBase time.Duration

	// BackoffMax caps the exponential backoff. Default 60s.
	BackoffMax time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 6
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 2 * time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 60 * time.Second
	}
	return c
}

// Response is a fully-read HTTP response.
type Response struct {
	// StatusCode is the HTTP status of the final attempt.
	StatusCode int

	// Header holds the response headers of the final attempt.
	Header http.Header

	// Body is the complete response body.
	Body []byte
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// HeaderMap flattens the headers to single values for persistence.
func (r *Response) HeaderMap() map[string]string {
	m := make(map[string]string, len(r.Header))
	for k := range r.Header {
		m[k] = r.Header.Get(k)
	}
	return m
}

// Client issues HTTP requests with bounded exponential backoff.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a retrying client.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.ReadTimeout,
			Transport: transport,
		},
	}
}

// Option customizes a single request.
type Option func(*requestOptions)

type requestOptions struct {
	headers map[string]string
	body    []byte
}

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithJSONBody marshals v as the request body and sets Content-Type.
func WithJSONBody(v any) Option {
	return func(o *requestOptions) {
		data, err := json.Marshal(v)
		if err != nil {
			// Marshal failures surface as an empty body; the server's
			// 4xx response is clearer than a panic here.
			logger.Warn("httpx: marshal request body: %v", err)
			return
		}
		o.body = data
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers["Content-Type"] = "application/json"
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, opts...)
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodHead, url, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, opts...)
}

// Do issues one logical request, retrying transport failures and
// retryable statuses (408, 429, 5xx gateway family) with exponential
// backoff plus jitter, honoring Retry-After.
//
// Exhausting retries on a transport failure returns that failure.
// Exhausting retries on a retryable status returns the response as-is:
// the caller decides how to treat a persistent 5xx or 429.
func (c *Client) Do(ctx context.Context, method, url string, opts ...Option) (*Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	attempt := 0
	for {
		attempt++

		resp, err := c.attempt(ctx, method, url, &ro)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt <= c.cfg.MaxRetries {
				logger.Debug("httpx: %s %s attempt %d failed: %v", method, url, attempt, err)
				if serr := c.sleep(ctx, attempt, nil); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, fmt.Errorf("%s %s: %w", method, url, err)
		}

		if retryStatus[resp.StatusCode] && attempt <= c.cfg.MaxRetries {
			logger.Debug("httpx: %s %s attempt %d got %d, retrying", method, url, attempt, resp.StatusCode)
			if serr := c.sleep(ctx, attempt, resp); serr != nil {
				return nil, serr
			}
			continue
		}

		return resp, nil
	}
}

// attempt performs a single request and drains the body.
func (c *Client) attempt(ctx context.Context, method, url string, ro *requestOptions) (*Response, error) {
	var body io.Reader
	if ro.body != nil {
		body = bytes.NewReader(ro.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
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
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// sleep waits out the backoff for a failed attempt. The wait is
// min(base * 2^(attempt-1), cap), raised to any Retry-After the
// response carried, plus uniform jitter in [0, 0.25*wait].
func (c *Client) sleep(ctx context.Context, attempt int, resp *Response) error {
	exp := float64(c.cfg.BackoffBase) * math.Pow(2, float64(attempt-1))
	wait := time.Duration(math.Min(exp, float64(c.cfg.BackoffMax)))

	if resp != nil {
		if ra := retryAfter(resp.Header); ra > wait {
			wait = ra
		}
	}

	jitter := time.Duration(rand.Int63n(int64(wait)/4 + 1))

	timer := time.NewTimer(wait + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfter parses a Retry-After header, accepting either a delay in
// seconds or an HTTP date. Returns 0 when absent or unparseable.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
