// Package analytics is the HTTP client for the personal-finance analytics API.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/theirongolddev/pacer/internal/classify"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://127.0.0.1:8000"
	apiPrefix      = "/api/analytics"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/theirongolddev/pacer/1.0"
)

var (
	// ErrUnauthorized indicates the API token is missing, expired or invalid.
	ErrUnauthorized = errors.New("analytics: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("analytics: rate limited")
	// ErrNotFound indicates the resource does not exist yet, for example a
	// creep summary before the first computation.
	ErrNotFound = errors.New("analytics: not found")
)

// APIError is a non-2xx response that is not one of the sentinels.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("analytics: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("analytics: unexpected status %d", e.Status)
}

// ComputationError is a mutation the backend accepted but reported as failed.
type ComputationError struct {
	Message string
}

func (e *ComputationError) Error() string {
	if e.Message == "" {
		return "analytics: computation failed"
	}
	return e.Message
}

// Client talks to the analytics API with a bearer token.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger enables request logging at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for baseURL using token.
// Returns nil if the token is empty.
func NewClient(baseURL, token string, opts ...Option) *Client {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		token:   token,
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Pacing returns the current period's pacing snapshot.
func (c *Client) Pacing(ctx context.Context) (*PacingResponse, error) {
	var out PacingResponse
	if err := c.getJSON(ctx, "/lifestyle-creep/pacing", nil, &out, "pacing"); err != nil {
		return nil, err
	}
	return &out, nil
}

// TargetStatus returns whether the spending target is still being built.
func (c *Client) TargetStatus(ctx context.Context) (*TargetStatusResponse, error) {
	var out TargetStatusResponse
	if err := c.getJSON(ctx, "/lifestyle-creep/target-status", nil, &out, "target status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreepSummary returns per-category lifestyle creep.
func (c *Client) CreepSummary(ctx context.Context) (*CreepSummaryResponse, error) {
	var out CreepSummaryResponse
	if err := c.getJSON(ctx, "/lifestyle-creep/summary", nil, &out, "creep summary"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpendingSummary returns totals for the current period of periodType.
func (c *Client) SpendingSummary(ctx context.Context, periodType string) (*SpendingSummaryResponse, error) {
	q := url.Values{}
	if periodType != "" {
		q.Set("period_type", periodType)
	}
	var out SpendingSummaryResponse
	if err := c.getJSON(ctx, "/spending/current", q, &out, "spending summary"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CashFlow returns the current period's income and expenses.
func (c *Client) CashFlow(ctx context.Context) (*CashFlowResponse, error) {
	var out CashFlowResponse
	if err := c.getJSON(ctx, "/cash-flow/current", nil, &out, "cash flow"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories returns spending per category over timeRange.
func (c *Client) Categories(ctx context.Context, timeRange string) (*CategoryBreakdownResponse, error) {
	q := url.Values{}
	if timeRange != "" {
		q.Set("time_range", timeRange)
	}
	var out CategoryBreakdownResponse
	if err := c.getJSON(ctx, "/spending/categories", q, &out, "categories"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Merchants returns the top merchants over timeRange. limit <= 0 leaves the
// server default.
func (c *Client) Merchants(ctx context.Context, timeRange string, limit int) (*MerchantBreakdownResponse, error) {
	q := url.Values{}
	if timeRange != "" {
		q.Set("time_range", timeRange)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out MerchantBreakdownResponse
	if err := c.getJSON(ctx, "/spending/merchants", q, &out, "merchants"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpendingHistory returns monthly spending for the last months, optionally
// restricted to one category.
func (c *Client) SpendingHistory(ctx context.Context, months int, category string) (*SpendingHistoryResponse, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	if category != "" {
		q.Set("category", category)
	}
	var out SpendingHistoryResponse
	if err := c.getJSON(ctx, "/spending/history", q, &out, "spending history"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compute triggers a lifestyle-creep computation.
func (c *Client) Compute(ctx context.Context) (*ComputationResult, error) {
	return c.mutate(ctx, "/lifestyle-creep/compute")
}

// LockBaselines freezes the current baselines.
func (c *Client) LockBaselines(ctx context.Context) (*ComputationResult, error) {
	return c.mutate(ctx, "/lifestyle-creep/baselines/lock")
}

// UnlockBaselines lets baselines follow new data again.
func (c *Client) UnlockBaselines(ctx context.Context) (*ComputationResult, error) {
	return c.mutate(ctx, "/lifestyle-creep/baselines/unlock")
}

// ResetBaselines discards baselines so they are rebuilt from history.
func (c *Client) ResetBaselines(ctx context.Context) (*ComputationResult, error) {
	return c.mutate(ctx, "/lifestyle-creep/baselines/reset")
}

// mutate POSTs to path and turns a reported failure into a ComputationError.
func (c *Client) mutate(ctx context.Context, path string) (*ComputationResult, error) {
	body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var res ComputationResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("analytics: parsing computation result: %w", err)
		}
	}
	if res.Status == "" {
		res.Status = string(classify.ComputationSuccess)
	}

	if classify.ComputationStatus(res.Status) == classify.ComputationFailed {
		msg := ""
		if res.ErrorMessage != nil {
			msg = strings.TrimSpace(*res.ErrorMessage)
		}
		return &res, &ComputationError{Message: msg}
	}
	return &res, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any, what string) error {
	body, err := c.do(ctx, http.MethodGet, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("analytics: parsing %s: %w", what, err)
	}
	return nil
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + apiPrefix + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("analytics: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.logger != nil {
		c.logger.Debug("analytics request",
			"method", method, "path", path, "status", resp.StatusCode,
			"request_id", reqID, "took", time.Since(start).Round(time.Millisecond))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("analytics: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}
	return body, nil
}

// errorDetail extracts a message from common error payload shapes:
// {"detail": "..."}, {"error": "..."} or {"message": "..."}.
func errorDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
