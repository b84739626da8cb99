// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the client for the BloodLink backend REST API.
//
// Request/response bodies are JSON. Authenticated endpoints carry a bearer
// token read from a TokenProvider at call time, so logging out immediately
// strips the header from every subsequent request without mutating shared
// client state.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bloodlink/bloodlink-tui/internal/logging"
)

// Configuration constants for the BloodLink API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB

	userAgent = "bloodlink/0.1.0"
)

// sharedHTTPClient pools connections across all API calls.
// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// Error variables for common API failures.
var (
	// ErrUnauthorized indicates the token is missing, invalid, or expired.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the account's role may not perform the call.
	ErrForbidden = errors.New("not permitted for this account")

	// ErrNotFound indicates the record no longer exists on the backend.
	ErrNotFound = errors.New("record not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents an error response from the BloodLink backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bloodlink API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("bloodlink API error (HTTP %d)", e.Status)
}

// apiErrorResponse is the backend's error payload shape.
type apiErrorResponse struct {
	Message string `json:"message"`
}

// TokenProvider returns the current bearer token, or "" when logged out.
// It is consulted on every request.
type TokenProvider func() string

// Client is a client for the BloodLink backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenProvider
	maxRetries int
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a client for the API at baseURL. The TokenProvider may
// be nil for a client that only performs unauthenticated calls.
func NewClient(baseURL string, token TokenProvider) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		token:      token,
		maxRetries: DefaultMaxRetries,
		// Client-side throttle: dashboards poll, and the backend serves
		// clinics on modest hardware. Bursts cover one screen refresh.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     logging.Get().With().Str("component", "api").Logger(),
	}
}

// WithTimeout sets the request timeout. Replaces the shared pooled client
// with a dedicated one for this Client.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	dedicated := *c.httpClient
	dedicated.Timeout = timeout
	c.httpClient = &dedicated
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithLogger replaces the client's logger.
func (c *Client) WithLogger(log zerolog.Logger) *Client {
	c.log = log
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// setHeaders sets the required headers for a BloodLink API request.
// The Authorization header is derived from the TokenProvider at call time.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do performs one API call with retries, decoding a 2xx JSON body into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		if payload, err = json.Marshal(reqBody); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doOnce(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt+1).
			Msg("retrying transient API failure")
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doOnce performs a single HTTP request.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Log method, path, status, and duration only. Never headers or bodies:
	// they carry credentials and medical details.
	c.log.Debug().Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("duration", time.Since(start)).
		Msg("api request")

	raw, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// handleErrorResponse converts HTTP error responses to Go errors, keeping
// the backend's message when it supplies one.
func handleErrorResponse(statusCode int, body []byte) error {
	var payload apiErrorResponse
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Message
	}

	wrap := func(sentinel error) error {
		if message != "" {
			return fmt.Errorf("%w: %s", sentinel, message)
		}
		return sentinel
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return wrap(ErrUnauthorized)
	case http.StatusForbidden:
		return wrap(ErrForbidden)
	case http.StatusNotFound:
		return wrap(ErrNotFound)
	case http.StatusTooManyRequests:
		return wrap(ErrRateLimited)
	default:
		return &APIError{Status: statusCode, Message: message}
	}
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// Message extracts the human-readable message from an API error, falling
// back to fallback for transport failures and unparseable payloads. The
// session layer uses this to guarantee every failure shows a readable
// string.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	for _, sentinel := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrRateLimited} {
		if errors.Is(err, sentinel) {
			// "sentinel: backend message" - keep only the backend part when
			// present.
			if rest, ok := strings.CutPrefix(err.Error(), sentinel.Error()+": "); ok {
				return rest
			}
			return sentinel.Error()
		}
	}
	return fallback
}
