// Package async provides the two stateful primitives every analytics view is
// built on: Query, a dependency-keyed fetch with refresh, and Mutation, an
// explicitly invoked action. Both track {Data, IsLoading, IsRefreshing, Error}
// and stop publishing state once closed.
package async

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/hashstructure/v2"
)

// GenericErrorMessage is stored when a failure carries no message of its own.
const GenericErrorMessage = "Something went wrong"

// State is a point-in-time snapshot of a Query or Mutation.
// IsLoading and IsRefreshing are never both true.
type State[T any] struct {
	Data         *T     `json:"data"`
	IsLoading    bool   `json:"is_loading"`
	IsRefreshing bool   `json:"is_refreshing"`
	Error        string `json:"error,omitempty"`
}

// Err returns the stored error message as an error, or nil.
func (s State[T]) Err() error {
	if s.Error == "" {
		return nil
	}
	return errors.New(s.Error)
}

// Option configures a Query or Mutation.
type Option func(*options)

type options struct {
	enabled  bool
	deps     []any
	observer any
	logger   *log.Logger
}

func defaultOptions() options {
	return options{enabled: true}
}

// WithEnabled controls whether a Query fetches at all. A disabled query
// never calls its fetcher and reports IsLoading=false.
func WithEnabled(enabled bool) Option {
	return func(o *options) { o.enabled = enabled }
}

// WithDeps sets the initial dependency list, usually the request parameters.
func WithDeps(deps ...any) Option {
	return func(o *options) { o.deps = deps }
}

// WithObserver registers fn to receive every state transition. fn runs
// synchronously and must not call back into the Query or Mutation.
func WithObserver[T any](fn func(State[T])) Option {
	return func(o *options) { o.observer = fn }
}

// WithLogger sets the logger used for dropped and stale results.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ErrPanicked replaces the error of a fetcher or action that panicked.
var ErrPanicked = errors.New(GenericErrorMessage)

// guard runs fn and turns a panic into ErrPanicked so state still settles.
func guard[T any](l *log.Logger, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Error("recovered panic", "panic", r)
			}
			var zero T
			v, err = zero, ErrPanicked
		}
	}()
	return fn()
}

func errorMessage(err error) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

func hashDeps(deps []any) (uint64, bool) {
	h, err := hashstructure.Hash(deps, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, false
	}
	return h, true
}

func debugf(l *log.Logger, msg string, kv ...any) {
	if l != nil {
		l.Debug(msg, kv...)
	}
}
