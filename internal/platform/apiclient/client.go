// Package apiclient is the single choke point for calls to the remote book API.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"bookhub/internal/httpx"
	"bookhub/internal/platform/logging"
	"bookhub/internal/platform/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Options configures a Client. Zero values pick the defaults noted per field.
type Options struct {
	BaseURL         string        // default http://localhost:8000
	Timeout         time.Duration // default 15s
	RPS             float64       // read rate limit, default 10
	MaxRetries      int           // read retries on 429/5xx/transport errors
	Backoff         time.Duration // first retry delay, doubled per attempt; default 1s
	BreakerFailures uint32        // consecutive failures that open the breaker, default 5
	BreakerTimeout  time.Duration // open -> half-open delay, default 30s
	Tokens          httpx.TokenSource
	Metrics         *metrics.Collectors
	Transport       http.RoundTripper
	// OnUnauthorized runs when a request that carried a token gets a 401.
	OnUnauthorized func()
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	maxRetries     int
	backoff        time.Duration
	breaker        *gobreaker.CircuitBreaker[*result]
	tokens         httpx.TokenSource
	metrics        *metrics.Collectors
	onUnauthorized func()
	validate       *validator.Validate
}

type result struct {
	status int
	body   []byte
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8000"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: httpx.Chain(opts.Tokens, opts.Transport),
		},
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		limiter:        rate.NewLimiter(rate.Limit(opts.RPS), 1),
		maxRetries:     opts.MaxRetries,
		backoff:        opts.Backoff,
		tokens:         opts.Tokens,
		metrics:        opts.Metrics,
		onUnauthorized: opts.OnUnauthorized,
		validate:       validator.New(),
	}

	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker[*result](gobreaker.Settings{
		Name:    "bookhub-api",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			status := StatusOf(err)
			return status != 0 && status < 500 && status != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			if c.metrics != nil {
				c.metrics.BreakerState.Set(float64(to))
			}
		},
	})
	return c
}

// BaseURL returns the configured API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a bearer token is currently available.
func (c *Client) HasToken() bool {
	return c.tokens != nil && c.tokens.Token() != ""
}

// Request describes one remote call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// JSON is marshalled as the body when set.
	JSON any
	// Form is sent url-encoded when set.
	Form url.Values
	// Auth rejects the call with ErrAuthRequired when no token is stored.
	Auth bool
	// Anonymous suppresses the Authorization header.
	Anonymous bool
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// PostJSON sends body as JSON. Writes always require a token.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, JSON: body, Auth: true}, out)
}

// PostForm sends an url-encoded form without requiring a token.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form, Anonymous: true}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Auth: true}, out)
}

// Do performs req and decodes a 2xx body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Auth && !c.HasToken() {
		return ErrAuthRequired
	}

	var body []byte
	contentType := ""
	switch {
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
		contentType = "application/json"
	case req.Form != nil:
		body = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	if req.Anonymous {
		ctx = httpx.Anonymous(ctx)
	}
	sentToken := c.HasToken() && !req.Anonymous

	retries := 0
	if req.Method == http.MethodGet {
		retries = c.maxRetries
	}

	var res *result
	var lastErr error
	for i := 0; i <= retries; i++ {
		if i > 0 {
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if req.Method == http.MethodGet {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		res, lastErr = c.breaker.Execute(func() (*result, error) {
			return c.roundTrip(ctx, req.Method, u, body, contentType)
		})
		if lastErr == nil || !retryable(lastErr) {
			break
		}
	}

	if lastErr != nil {
		if errors.Is(lastErr, gobreaker.ErrOpenState) || errors.Is(lastErr, gobreaker.ErrTooManyRequests) {
			if c.metrics != nil {
				c.metrics.BreakerRejected.Inc()
			}
		}
		if StatusOf(lastErr) == http.StatusUnauthorized && sentToken && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return lastErr
	}

	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, req.Method, req.Path, err)
	}
	if err := c.validatePayload(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, u string, body []byte, contentType string) (*result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if c.metrics != nil {
		c.metrics.APIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.count(method, "error")
		return nil, err
	}
	defer resp.Body.Close()
	c.count(method, strconv.Itoa(resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, data)
	}
	return &result{status: resp.StatusCode, body: data}, nil
}

func (c *Client) count(method, status string) {
	if c.metrics != nil {
		c.metrics.APIRequests.WithLabelValues(method, status).Inc()
	}
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	status := StatusOf(err)
	if status == 0 {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// validatePayload applies struct tags to a decoded struct or to each struct in a slice.
func (c *Client) validatePayload(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Addr().Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if elem.Kind() == reflect.Struct {
				if err := c.validate.Struct(elem.Addr().Interface()); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
		}
	}
	return nil
}
