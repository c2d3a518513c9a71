package views

import (
	"context"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/metrics"
)

// PacingModel is the current period's discretionary spend against target.
// Mode decides which fields carry meaning: kickoff has no target yet,
// pacing compares spend with the target, stability adds a stability score.
type PacingModel struct {
	Mode        classify.PacingMode `json:"mode"`
	PeriodStart string              `json:"period_start,omitempty"`
	PeriodEnd   string              `json:"period_end,omitempty"`

	TargetAmount       float64 `json:"target_amount"`
	CurrentSpend       float64 `json:"current_spend"`
	Remaining          float64 `json:"remaining"`
	PacingPercentage   float64 `json:"pacing_percentage"`
	ExpectedPercentage float64 `json:"expected_percentage"`
	DaysIntoPeriod     int     `json:"days_into_period"`
	TotalDaysInPeriod  int     `json:"total_days_in_period"`

	Status      classify.PacingStatus    `json:"pacing_status"`
	StatusColor classify.ColorRole       `json:"status_color"`
	StatusLabel string                   `json:"status_label"`
	StatusEmoji string                   `json:"status_emoji"`
	Comparison  metrics.TargetComparison `json:"comparison"`

	StabilityScore  *int              `json:"stability_score"`
	OverallSeverity classify.Severity `json:"overall_severity"`
	TopDrifting     *CreepRow         `json:"top_drifting_category"`

	FormattedTarget    string `json:"formatted_target"`
	FormattedSpend     string `json:"formatted_spend"`
	FormattedRemaining string `json:"formatted_remaining"`
}

// HasTarget reports whether target-relative fields are meaningful.
func (m PacingModel) HasTarget() bool {
	return m.Mode != classify.ModeKickoff && m.TargetAmount > 0
}

// DerivePacing builds the pacing view model.
func DerivePacing(r *analytics.PacingResponse, currency string) PacingModel {
	if r == nil {
		r = &analytics.PacingResponse{}
	}

	target := amount.Parse(r.TargetAmount)
	spend := amount.Parse(r.CurrentDiscretionarySpend)
	total := max(0, intOr(r.TotalDaysInPeriod, 0))
	into := max(0, min(intOr(r.DaysIntoPeriod, 0), total))
	status := pacingStatusOrDefault(r.PacingStatus)

	m := PacingModel{
		Mode:               modeOrDefault(r.Mode),
		PeriodStart:        stringOr(r.PeriodStart, ""),
		PeriodEnd:          stringOr(r.PeriodEnd, ""),
		TargetAmount:       target,
		CurrentSpend:       spend,
		Remaining:          max(0, target-spend),
		PacingPercentage:   metrics.ComputePacingPercentage(spend, target),
		ExpectedPercentage: metrics.ComputeExpectedPercentage(into, total),
		DaysIntoPeriod:     into,
		TotalDaysInPeriod:  total,
		Status:             status,
		StatusColor:        status.Color(),
		StatusLabel:        status.Label(),
		StatusEmoji:        status.Emoji(),
		Comparison:         metrics.ComputeTargetComparison(target, spend),
		OverallSeverity:    severityOrDefault(r.OverallSeverity),
		FormattedTarget:    cli.FormatCurrency(target, currency),
		FormattedSpend:     cli.FormatCurrency(spend, currency),
	}
	m.FormattedRemaining = cli.FormatCurrency(m.Remaining, currency)

	if m.Mode == classify.ModeStability {
		m.StabilityScore = r.StabilityScore
	}
	if d := r.TopDriftingCategory; d != nil {
		row := deriveCreepRow(analytics.CreepCategory(*d), currency)
		m.TopDrifting = &row
	}
	return m
}

// NewPacing returns a query for the pacing view.
func NewPacing(src Source, o Options, opts ...async.Option) *async.Query[PacingModel] {
	currency := o.currency()
	return async.NewQuery(func(ctx context.Context) (PacingModel, error) {
		r, err := src.Pacing(ctx)
		if err != nil {
			return PacingModel{}, err
		}
		return DerivePacing(r, currency), nil
	}, o.queryOptions(opts)...)
}

// TargetStatusModel tells whether enough history exists to trust the target.
type TargetStatusModel struct {
	Status          classify.TargetStatus `json:"status"`
	Label           string                `json:"label"`
	MonthsAvailable int                   `json:"months_available"`
	MonthsRequired  int                   `json:"months_required"`
	Progress        float64               `json:"progress"`
	TargetAmount    *float64              `json:"target_amount"`
	FormattedTarget string                `json:"formatted_target"`
	Message         string                `json:"message,omitempty"`
}

// DeriveTargetStatus builds the target status view model.
func DeriveTargetStatus(r *analytics.TargetStatusResponse, currency string) TargetStatusModel {
	if r == nil {
		r = &analytics.TargetStatusResponse{}
	}
	status := targetStatusOrDefault(r.Status)
	avail := max(0, intOr(r.MonthsAvailable, 0))
	req := max(0, intOr(r.MonthsRequired, 0))

	m := TargetStatusModel{
		Status:          status,
		Label:           status.Label(),
		MonthsAvailable: avail,
		MonthsRequired:  req,
		TargetAmount:    amount.ParseOptional(r.TargetAmount),
		Message:         stringOr(r.Message, ""),
	}
	switch {
	case status == classify.TargetEstablished:
		m.Progress = 1
	case req > 0:
		m.Progress = min(float64(avail)/float64(req), 1)
	}
	m.FormattedTarget = cli.FormatOptionalCurrency(m.TargetAmount, currency)
	return m
}

// NewTargetStatus returns a query for the target status view.
func NewTargetStatus(src Source, o Options, opts ...async.Option) *async.Query[TargetStatusModel] {
	currency := o.currency()
	return async.NewQuery(func(ctx context.Context) (TargetStatusModel, error) {
		r, err := src.TargetStatus(ctx)
		if err != nil {
			return TargetStatusModel{}, err
		}
		return DeriveTargetStatus(r, currency), nil
	}, o.queryOptions(opts)...)
}
