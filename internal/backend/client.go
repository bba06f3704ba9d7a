// Package backend is the typed client for the Elite Decor REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/metrics"
)

func init() {
	// The backend sends and expects plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

const unavailableMessage = "service unavailable, please try again"

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoffs   []time.Duration
	logger     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, logger zerolog.Logger) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		backoffs:   []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		logger:     logger.With().Str("component", "backend").Logger(),
	}
}

// WithBackoffs replaces the retry delays.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	return c
}

type tokenKey struct{}

// WithToken attaches the caller's identity token; every request made with
// the returned context sends it as a bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// call describes one request. endpoint is the route template used as the
// metrics label; resource names the entity in not-found errors.
type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     interface{}
	resource string
}

// get runs an idempotent read with retries.
func (c *Client) get(ctx context.Context, cl call, out interface{}) error {
	cl.method = http.MethodGet
	return c.RetryWithBackoff(ctx, func() error {
		return c.do(ctx, cl, out)
	}, c.maxRetries)
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.BackendRequestsTotal.WithLabelValues(cl.endpoint, outcome).Inc()
		metrics.BackendRequestDuration.WithLabelValues(cl.endpoint).Observe(time.Since(start).Seconds())
	}()

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		jsonData, err := json.Marshal(cl.body)
		if err != nil {
			outcome = "client_error"
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, reader)
	if err != nil {
		outcome = "client_error"
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := tokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mapped := transportError(ctx, err)
		if apperr.KindOf(mapped) == apperr.KindTimeout {
			outcome = "timeout"
		} else {
			outcome = "network"
		}
		c.logger.Warn().Err(err).Str("endpoint", cl.endpoint).Msg("backend request failed")
		return mapped
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "network"
		return apperr.Fetch("read_failed", unavailableMessage, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		mapped := statusError(resp.StatusCode, body, cl.resource)
		switch {
		case resp.StatusCode == http.StatusNotFound:
			outcome = "not_found"
		case resp.StatusCode >= 500:
			outcome = "server_error"
			c.logger.Error().Int("status", resp.StatusCode).Str("endpoint", cl.endpoint).Msg("backend server error")
		default:
			outcome = "client_error"
		}
		return mapped
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		outcome = "decode_error"
		return apperr.Fetch("decode_failed", unavailableMessage, fmt.Errorf("failed to decode response: %w, body: %s", err, truncate(body)))
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperr.Fetch("cancelled", "request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Timeout(err)
	}
	return apperr.Fetch("network", unavailableMessage, err)
}

func statusError(status int, body []byte, resource string) error {
	msg := backendMessage(body)
	cause := fmt.Errorf("status %d, body: %s", status, truncate(body))
	switch {
	case status == http.StatusNotFound:
		if resource == "" {
			resource = "resource"
		}
		e := apperr.NotFound(resource)
		e.Err = cause
		return e
	case status == http.StatusUnauthorized:
		return apperr.Wrap(apperr.ErrSessionExpired, cause)
	case status == http.StatusForbidden:
		return apperr.Fetch("forbidden", "you are not allowed to do that", cause)
	case status >= 500:
		return apperr.Fetch("server_error", unavailableMessage, cause)
	default:
		if msg == "" {
			msg = "request was rejected"
		}
		e := apperr.Validation("", msg)
		e.Err = cause
		return e
	}
}

// backendMessage pulls {"message": ...} or {"error": ...} out of an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// retryable reports whether err is worth another attempt: transport
// failures and 5xx responses, never client errors or timeouts.
func retryable(err error) bool {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind != apperr.KindFetch {
		return false
	}
	return e.Code == "network" || e.Code == "server_error"
}

// RetryWithBackoff executes fn with exponential backoff, stopping early on
// non-retryable errors or when ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		if i == maxRetries-1 {
			break
		}
		if i < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	if maxRetries <= 1 {
		return lastErr
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
