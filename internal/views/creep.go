package views

import (
	"context"
	"slices"
	"strings"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/metrics"
)

// CreepRow is one category's drift from its baseline. Severity comes from
// the backend as-is.
type CreepRow struct {
	Name              string             `json:"category_name"`
	Label             string             `json:"label"`
	Baseline          float64            `json:"baseline_amount"`
	Current           float64            `json:"current_amount"`
	Change            *float64           `json:"percentage_change"`
	Drift             string             `json:"drift"`
	Severity          classify.Severity  `json:"severity"`
	SeverityLabel     string             `json:"severity_label"`
	SeverityColor     classify.ColorRole `json:"severity_color"`
	Intense           bool               `json:"intense"`
	FormattedBaseline string             `json:"formatted_baseline"`
	FormattedCurrent  string             `json:"formatted_current"`
}

func deriveCreepRow(c analytics.CreepCategory, currency string) CreepRow {
	sev := severityOrDefault(c.Severity)
	baseline := amount.Parse(c.BaselineAmount)
	current := amount.Parse(c.CurrentAmount)
	change := amount.ParseOptional(c.PercentageChange)

	return CreepRow{
		Name:              c.CategoryName,
		Label:             cli.TitleLabel(c.CategoryName),
		Baseline:          baseline,
		Current:           current,
		Change:            change,
		Drift:             FormatDrift(change),
		Severity:          sev,
		SeverityLabel:     sev.Label(),
		SeverityColor:     sev.Color(),
		Intense:           sev.Intense(),
		FormattedBaseline: cli.FormatCurrency(baseline, currency),
		FormattedCurrent:  cli.FormatCurrency(current, currency),
	}
}

// FormatDrift renders a creep percentage as "+12.3%", or the placeholder
// when the backend could not compare.
func FormatDrift(change *float64) string {
	if change == nil {
		return cli.Placeholder
	}
	return metrics.FormatSignedPercent(*change)
}

// CreepModel is the lifestyle creep summary.
type CreepModel struct {
	OverallSeverity classify.Severity         `json:"overall_severity"`
	SeverityLabel   string                    `json:"severity_label"`
	SeverityColor   classify.ColorRole        `json:"severity_color"`
	BaselinesLocked bool                      `json:"baselines_locked"`
	ComputedAt      string                    `json:"computed_at,omitempty"`
	Categories      []CreepRow                `json:"categories"`
	Counts          map[classify.Severity]int `json:"counts"`
}

// Drifting returns the rows with any severity above none.
func (m CreepModel) Drifting() []CreepRow {
	var out []CreepRow
	for _, r := range m.Categories {
		if r.Severity != classify.SeverityNone {
			out = append(out, r)
		}
	}
	return out
}

// DeriveCreep builds the creep summary. Rows are ordered by severity, then
// by drift, largest first; incomparable rows sort last within a tier.
func DeriveCreep(r *analytics.CreepSummaryResponse, currency string) CreepModel {
	if r == nil {
		r = &analytics.CreepSummaryResponse{}
	}
	sev := severityOrDefault(r.OverallSeverity)

	m := CreepModel{
		OverallSeverity: sev,
		SeverityLabel:   sev.Label(),
		SeverityColor:   sev.Color(),
		BaselinesLocked: r.BaselinesLocked,
		ComputedAt:      stringOr(r.ComputedAt, ""),
		Categories:      make([]CreepRow, 0, len(r.Categories)),
		Counts:          make(map[classify.Severity]int, 4),
	}
	for _, c := range r.Categories {
		row := deriveCreepRow(c, currency)
		m.Categories = append(m.Categories, row)
		m.Counts[row.Severity]++
	}

	slices.SortStableFunc(m.Categories, func(a, b CreepRow) int {
		if d := b.Severity.Rank() - a.Severity.Rank(); d != 0 {
			return d
		}
		switch {
		case a.Change == nil && b.Change == nil:
			return strings.Compare(a.Label, b.Label)
		case a.Change == nil:
			return 1
		case b.Change == nil:
			return -1
		case *a.Change > *b.Change:
			return -1
		case *a.Change < *b.Change:
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
	return m
}

// NewCreep returns a query for the creep summary view.
func NewCreep(src Source, o Options, opts ...async.Option) *async.Query[CreepModel] {
	currency := o.currency()
	return async.NewQuery(func(ctx context.Context) (CreepModel, error) {
		r, err := src.CreepSummary(ctx)
		if err != nil {
			return CreepModel{}, err
		}
		return DeriveCreep(r, currency), nil
	}, o.queryOptions(opts)...)
}

// ComputationModel is the outcome of a creep mutation.
type ComputationModel struct {
	Status             classify.ComputationStatus `json:"status"`
	Color              classify.ColorRole         `json:"color"`
	Message            string                     `json:"message,omitempty"`
	ComputedAt         string                     `json:"computed_at,omitempty"`
	CategoriesAnalyzed *int                       `json:"categories_analyzed,omitempty"`
}

// DeriveComputation builds the mutation result model.
func DeriveComputation(r *analytics.ComputationResult) ComputationModel {
	if r == nil {
		r = &analytics.ComputationResult{}
	}
	status, err := classify.ParseComputationStatus(r.Status)
	if err != nil {
		status = classify.ComputationSuccess
	}
	msg := stringOr(r.Message, "")
	if status == classify.ComputationFailed {
		msg = stringOr(r.ErrorMessage, msg)
	}
	return ComputationModel{
		Status:             status,
		Color:              status.Color(),
		Message:            msg,
		ComputedAt:         stringOr(r.ComputedAt, ""),
		CategoriesAnalyzed: r.CategoriesAnalyzed,
	}
}

// Creep mutation kinds.
const (
	ActionCompute = "compute"
	ActionLock    = "lock"
	ActionUnlock  = "unlock"
	ActionReset   = "reset"
)

// Mutation is a creep mutation; it takes no argument.
type Mutation = async.Mutation[struct{}, ComputationModel]

func newMutation(call func(context.Context) (*analytics.ComputationResult, error), o Options, opts []async.Option) *Mutation {
	return async.NewMutation(func(ctx context.Context, _ struct{}) (ComputationModel, error) {
		r, err := call(ctx)
		if r == nil {
			return ComputationModel{}, err
		}
		// A reported failure still carries the backend's status and message.
		return DeriveComputation(r), err
	}, o.queryOptions(opts)...)
}

// NewComputeCreep triggers a creep computation.
func NewComputeCreep(src Source, o Options, opts ...async.Option) *Mutation {
	return newMutation(src.Compute, o, opts)
}

// NewLockBaselines freezes baselines.
func NewLockBaselines(src Source, o Options, opts ...async.Option) *Mutation {
	return newMutation(src.LockBaselines, o, opts)
}

// NewUnlockBaselines unfreezes baselines.
func NewUnlockBaselines(src Source, o Options, opts ...async.Option) *Mutation {
	return newMutation(src.UnlockBaselines, o, opts)
}

// NewResetBaselines discards baselines.
func NewResetBaselines(src Source, o Options, opts ...async.Option) *Mutation {
	return newMutation(src.ResetBaselines, o, opts)
}

// NewCreepMutation returns the mutation for a named action, or nil.
func NewCreepMutation(action string, src Source, o Options, opts ...async.Option) *Mutation {
	switch action {
	case ActionCompute:
		return NewComputeCreep(src, o, opts...)
	case ActionLock:
		return NewLockBaselines(src, o, opts...)
	case ActionUnlock:
		return NewUnlockBaselines(src, o, opts...)
	case ActionReset:
		return NewResetBaselines(src, o, opts...)
	}
	return nil
}
