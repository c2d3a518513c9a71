// Package views turns analytics responses into ready-to-render view models.
//
// Every view is a pure Derive function, unit-tested on its own, plus a
// constructor that wraps it in an async.Query bound to one endpoint.
// Presentation code reads only these models and never reparses payloads.
package views

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
)

// Source is the subset of the analytics API the views consume.
type Source interface {
	Pacing(ctx context.Context) (*analytics.PacingResponse, error)
	TargetStatus(ctx context.Context) (*analytics.TargetStatusResponse, error)
	CreepSummary(ctx context.Context) (*analytics.CreepSummaryResponse, error)
	SpendingSummary(ctx context.Context, periodType string) (*analytics.SpendingSummaryResponse, error)
	CashFlow(ctx context.Context) (*analytics.CashFlowResponse, error)
	Categories(ctx context.Context, timeRange string) (*analytics.CategoryBreakdownResponse, error)
	Merchants(ctx context.Context, timeRange string, limit int) (*analytics.MerchantBreakdownResponse, error)
	SpendingHistory(ctx context.Context, months int, category string) (*analytics.SpendingHistoryResponse, error)
	Compute(ctx context.Context) (*analytics.ComputationResult, error)
	LockBaselines(ctx context.Context) (*analytics.ComputationResult, error)
	UnlockBaselines(ctx context.Context) (*analytics.ComputationResult, error)
	ResetBaselines(ctx context.Context) (*analytics.ComputationResult, error)
}

var _ Source = (*analytics.Client)(nil)

// Options carries the display settings shared by all views.
type Options struct {
	// Currency is the ISO code used for formatted amounts.
	Currency string
	// LiquidAssets overrides the runway numerator when the backend does not
	// report liquid assets. nil disables the override.
	LiquidAssets *float64
	Logger       *log.Logger
}

func (o Options) currency() string {
	if o.Currency == "" {
		return Defaults.Currency
	}
	return o.Currency
}

func (o Options) queryOptions(extra []async.Option) []async.Option {
	opts := make([]async.Option, 0, len(extra)+1)
	if o.Logger != nil {
		opts = append(opts, async.WithLogger(o.Logger))
	}
	return append(opts, extra...)
}

// Parameterized is a Query whose fetch depends on one request parameter.
// Changing the parameter re-enters loading.
type Parameterized[P comparable, T any] struct {
	*async.Query[T]

	mu    sync.Mutex
	param P
}

func newParameterized[P comparable, T any](
	initial P,
	fetch func(ctx context.Context, p P) (T, error),
	opts []async.Option,
) *Parameterized[P, T] {
	v := &Parameterized[P, T]{param: initial}
	opts = append([]async.Option{async.WithDeps(initial)}, opts...)
	v.Query = async.NewQuery(func(ctx context.Context) (T, error) {
		return fetch(ctx, v.Param())
	}, opts...)
	return v
}

// Param returns the current parameter.
func (v *Parameterized[P, T]) Param() P {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.param
}

// SetParam updates the parameter and refetches when it changed.
func (v *Parameterized[P, T]) SetParam(p P) {
	v.mu.Lock()
	v.param = p
	v.mu.Unlock()
	v.SetDeps(p)
}
