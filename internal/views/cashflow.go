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

// CashFlowModel is the current period's income against expenses.
type CashFlowModel struct {
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`

	Income       float64               `json:"income"`
	Expenses     float64               `json:"expenses"`
	NetFlow      float64               `json:"net_flow"`
	Balance      classify.Balance      `json:"balance_status"`
	BalanceColor classify.ColorRole    `json:"balance_color"`
	BalanceLabel string                `json:"balance_label"`
	Ratios       metrics.BalanceRatios `json:"ratios"`
	SavingsRate  *float64              `json:"savings_rate"`
	LiquidAssets *float64              `json:"liquid_assets"`
	Runway       *float64              `json:"runway_months"`

	FormattedIncome      string `json:"formatted_income"`
	FormattedExpenses    string `json:"formatted_expenses"`
	FormattedNetFlow     string `json:"formatted_net_flow"`
	FormattedSavingsRate string `json:"formatted_savings_rate"`
	FormattedRunway      string `json:"formatted_runway"`
}

// DeriveCashFlow builds the cash flow view model. liquidOverride supplies
// liquid assets when the response has none.
func DeriveCashFlow(r *analytics.CashFlowResponse, currency string, liquidOverride *float64) CashFlowModel {
	if r == nil {
		r = &analytics.CashFlowResponse{}
	}

	income := amount.Parse(r.TotalIncome)
	expenses := amount.Parse(r.TotalExpenses)
	// The reported net_flow is ignored so the figure always agrees with
	// the balance status derived from the same totals.
	net := income - expenses

	liquid := amount.ParseOptional(r.LiquidAssets)
	if liquid == nil && liquidOverride != nil {
		v := *liquidOverride
		liquid = &v
	}
	var runway *float64
	if liquid != nil {
		runway = metrics.ComputeRunway(*liquid, expenses)
	}

	balance := classify.BalanceStatus(income, expenses)
	savings := amount.ParseOptional(r.SavingsRate)

	return CashFlowModel{
		PeriodStart:          stringOr(r.PeriodStart, ""),
		PeriodEnd:            stringOr(r.PeriodEnd, ""),
		Income:               income,
		Expenses:             expenses,
		NetFlow:              net,
		Balance:              balance,
		BalanceColor:         balance.Color(),
		BalanceLabel:         balance.Label(),
		Ratios:               metrics.ComputeBalanceRatios(income, expenses),
		SavingsRate:          savings,
		LiquidAssets:         liquid,
		Runway:               runway,
		FormattedIncome:      cli.FormatCurrency(income, currency),
		FormattedExpenses:    cli.FormatCurrency(expenses, currency),
		FormattedNetFlow:     cli.FormatCurrency(net, currency),
		FormattedSavingsRate: cli.FormatOptionalPercent(savings),
		FormattedRunway:      metrics.FormatRunway(runway),
	}
}

// NewCashFlow returns a query for the cash flow view.
func NewCashFlow(src Source, o Options, opts ...async.Option) *async.Query[CashFlowModel] {
	currency, liquid := o.currency(), o.LiquidAssets
	return async.NewQuery(func(ctx context.Context) (CashFlowModel, error) {
		r, err := src.CashFlow(ctx)
		if err != nil {
			return CashFlowModel{}, err
		}
		return DeriveCashFlow(r, currency, liquid), nil
	}, o.queryOptions(opts)...)
}
