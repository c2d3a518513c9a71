package analytics

import "github.com/theirongolddev/pacer/internal/amount"

// Monetary fields are amount.Figure: the backend sends decimal strings, and
// they are decoded once, by the views, through the amount package.

// PacingResponse is returned by GET /lifestyle-creep/pacing.
// Which fields are populated depends on Mode.
type PacingResponse struct {
	Mode                      *string           `json:"mode"`
	PeriodStart               *string           `json:"period_start"`
	PeriodEnd                 *string           `json:"period_end"`
	DaysIntoPeriod            *int              `json:"days_into_period"`
	TotalDaysInPeriod         *int              `json:"total_days_in_period"`
	TargetAmount              amount.Figure     `json:"target_amount"`
	CurrentDiscretionarySpend amount.Figure     `json:"current_discretionary_spend"`
	PacingStatus              *string           `json:"pacing_status"`
	StabilityScore            *int              `json:"stability_score"`
	OverallSeverity           *string           `json:"overall_severity"`
	TopDriftingCategory       *DriftingCategory `json:"top_drifting_category"`
}

// DriftingCategory is the category that moved furthest from its baseline.
type DriftingCategory struct {
	CategoryName     string        `json:"category_name"`
	BaselineAmount   amount.Figure `json:"baseline_amount"`
	CurrentAmount    amount.Figure `json:"current_amount"`
	PercentageChange amount.Figure `json:"percentage_change"`
	Severity         *string       `json:"severity"`
}

// TargetStatusResponse is returned by GET /lifestyle-creep/target-status.
type TargetStatusResponse struct {
	Status          *string       `json:"status"`
	MonthsAvailable *int          `json:"months_available"`
	MonthsRequired  *int          `json:"months_required"`
	TargetAmount    amount.Figure `json:"target_amount"`
	Message         *string       `json:"message"`
}

// CreepSummaryResponse is returned by GET /lifestyle-creep/summary.
type CreepSummaryResponse struct {
	OverallSeverity *string         `json:"overall_severity"`
	BaselinesLocked bool            `json:"baselines_locked"`
	ComputedAt      *string         `json:"computed_at"`
	Categories      []CreepCategory `json:"categories"`
}

// CreepCategory compares one category's current spend with its baseline.
type CreepCategory struct {
	CategoryName     string        `json:"category_name"`
	BaselineAmount   amount.Figure `json:"baseline_amount"`
	CurrentAmount    amount.Figure `json:"current_amount"`
	PercentageChange amount.Figure `json:"percentage_change"`
	Severity         *string       `json:"severity"`
}

// SpendingSummaryResponse is returned by GET /spending/current.
type SpendingSummaryResponse struct {
	PeriodType           *string       `json:"period_type"`
	PeriodStart          *string       `json:"period_start"`
	PeriodEnd            *string       `json:"period_end"`
	TotalSpending        amount.Figure `json:"total_spending"`
	TotalIncome          amount.Figure `json:"total_income"`
	TransactionCount     *int          `json:"transaction_count"`
	MonthOverMonthChange amount.Figure `json:"month_over_month_change"`
	TopCategory          *string       `json:"top_category"`
}

// CashFlowResponse is returned by GET /cash-flow/current.
type CashFlowResponse struct {
	PeriodStart   *string       `json:"period_start"`
	PeriodEnd     *string       `json:"period_end"`
	TotalIncome   amount.Figure `json:"total_income"`
	TotalExpenses amount.Figure `json:"total_expenses"`
	NetFlow       amount.Figure `json:"net_flow"`
	SavingsRate   amount.Figure `json:"savings_rate"`
	LiquidAssets  amount.Figure `json:"liquid_assets"`
}

// CategoryBreakdownResponse is returned by GET /spending/categories.
type CategoryBreakdownResponse struct {
	TimeRange  *string            `json:"time_range"`
	Total      amount.Figure      `json:"total"`
	Categories []CategorySpending `json:"categories"`
}

// CategorySpending is one category row.
type CategorySpending struct {
	CategoryName     string        `json:"category_name"`
	Amount           amount.Figure `json:"amount"`
	TransactionCount int           `json:"transaction_count"`
	Percentage       amount.Figure `json:"percentage"`
}

// MerchantBreakdownResponse is returned by GET /spending/merchants.
type MerchantBreakdownResponse struct {
	TimeRange *string            `json:"time_range"`
	Merchants []MerchantSpending `json:"merchants"`
}

// MerchantSpending is one merchant row.
type MerchantSpending struct {
	MerchantName     string        `json:"merchant_name"`
	Amount           amount.Figure `json:"amount"`
	TransactionCount int           `json:"transaction_count"`
	AverageAmount    amount.Figure `json:"average_amount"`
}

// SpendingHistoryResponse is returned by GET /spending/history.
type SpendingHistoryResponse struct {
	Category *string        `json:"category"`
	Points   []HistoryPoint `json:"points"`
}

// HistoryPoint is one period of a history series, oldest first.
type HistoryPoint struct {
	PeriodStart string        `json:"period_start"`
	Label       *string       `json:"label"`
	Amount      amount.Figure `json:"amount"`
}

// ComputationResult is returned by the mutation endpoints.
type ComputationResult struct {
	Status             string  `json:"status"`
	ErrorMessage       *string `json:"error_message"`
	Message            *string `json:"message"`
	ComputedAt         *string `json:"computed_at"`
	CategoriesAnalyzed *int    `json:"categories_analyzed"`
}
