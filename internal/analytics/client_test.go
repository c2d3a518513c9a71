package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pacer/internal/amount"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "tok-123")
	require.NotNil(t, c)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	assert.Nil(t, NewClient("http://x", "   "))
	c := NewClient("", "abc")
	require.NotNil(t, c)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, "http://x", NewClient("http://x/", "abc").BaseURL())
}

func TestPacing_SendsAuthAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analytics/lifestyle-creep/pacing", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		_, _ = w.Write([]byte(`{
			"mode": "pacing",
			"days_into_period": 10,
			"total_days_in_period": 30,
			"target_amount": "1500.00",
			"current_discretionary_spend": "600.25",
			"pacing_status": "behind",
			"stability_score": null,
			"top_drifting_category": {"category_name": "Dining", "percentage_change": "12.5", "severity": "low"}
		}`))
	})

	resp, err := c.Pacing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pacing", *resp.Mode)
	assert.Equal(t, 10, *resp.DaysIntoPeriod)
	assert.Equal(t, 1500.0, amount.Parse(resp.TargetAmount))
	assert.Equal(t, 600.25, amount.Parse(resp.CurrentDiscretionarySpend))
	assert.Nil(t, resp.StabilityScore)
	require.NotNil(t, resp.TopDriftingCategory)
	assert.Equal(t, "Dining", resp.TopDriftingCategory.CategoryName)
}

func TestQueryParameters(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Path+"?"+r.URL.RawQuery)
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := c.SpendingSummary(ctx, "weekly")
	require.NoError(t, err)
	_, err = c.Categories(ctx, "year")
	require.NoError(t, err)
	_, err = c.Merchants(ctx, "month", 5)
	require.NoError(t, err)
	_, err = c.SpendingHistory(ctx, 6, "Dining")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/analytics/spending/current?period_type=weekly",
		"/api/analytics/spending/categories?time_range=year",
		"/api/analytics/spending/merchants?limit=5&time_range=month",
		"/api/analytics/spending/history?category=Dining&months=6",
	}, got)
}

func TestStatusSentinels(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:    ErrUnauthorized,
		http.StatusForbidden:       ErrUnauthorized,
		http.StatusNotFound:        ErrNotFound,
		http.StatusTooManyRequests: ErrRateLimited,
	}
	for code, want := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
		_, err := c.CashFlow(context.Background())
		assert.ErrorIs(t, err, want, "status %d", code)
	}
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "database unavailable"}`))
	})

	_, err := c.CashFlow(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "analytics: status 500: database unavailable", err.Error())
}

func TestMalformedBodyIsWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := c.TargetStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics: parsing target status")
}

func TestMutations(t *testing.T) {
	var method, path string
	body := `{"status": "success", "categories_analyzed": 4}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(body))
	})
	ctx := context.Background()

	res, err := c.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/analytics/lifestyle-creep/compute", path)
	assert.Equal(t, 4, *res.CategoriesAnalyzed)

	_, err = c.LockBaselines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/api/analytics/lifestyle-creep/baselines/lock", path)

	_, err = c.UnlockBaselines(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/api/analytics/lifestyle-creep/baselines/unlock", path)

	body = `{"status": "failed", "error_message": "not enough history"}`
	res, err = c.ResetBaselines(ctx)
	assert.Equal(t, "/api/analytics/lifestyle-creep/baselines/reset", path)
	var compErr *ComputationError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, "not enough history", err.Error())
	require.NotNil(t, res)
	assert.Equal(t, "failed", res.Status)
}

func TestMutation_EmptyBodyIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	res, err := c.LockBaselines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
}
