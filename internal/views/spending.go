package views

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/theirongolddev/pacer/internal/amount"
	"github.com/theirongolddev/pacer/internal/analytics"
	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/classify"
	"github.com/theirongolddev/pacer/internal/cli"
	"github.com/theirongolddev/pacer/internal/metrics"
)

// SpendingSummaryModel is the current period's spending totals.
type SpendingSummaryModel struct {
	PeriodType       string                   `json:"period_type"`
	PeriodStart      string                   `json:"period_start,omitempty"`
	PeriodEnd        string                   `json:"period_end,omitempty"`
	TotalSpending    float64                  `json:"total_spending"`
	TotalIncome      float64                  `json:"total_income"`
	TransactionCount int                      `json:"transaction_count"`
	Change           *float64                 `json:"month_over_month_change"`
	Indicator        classify.ChangeIndicator `json:"indicator"`
	TopCategory      string                   `json:"top_category,omitempty"`

	FormattedSpending string `json:"formatted_spending"`
	FormattedIncome   string `json:"formatted_income"`
}

// DeriveSpendingSummary builds the spending summary. A missing
// month-over-month change stays nil; it is not "no change".
func DeriveSpendingSummary(r *analytics.SpendingSummaryResponse, periodType, currency string) SpendingSummaryModel {
	if r == nil {
		r = &analytics.SpendingSummaryResponse{}
	}
	spending := amount.Parse(r.TotalSpending)
	income := amount.Parse(r.TotalIncome)
	change := amount.ParseOptional(r.MonthOverMonthChange)

	return SpendingSummaryModel{
		PeriodType:        NormalizePeriodType(stringOr(r.PeriodType, periodType)),
		PeriodStart:       stringOr(r.PeriodStart, ""),
		PeriodEnd:         stringOr(r.PeriodEnd, ""),
		TotalSpending:     spending,
		TotalIncome:       income,
		TransactionCount:  max(0, intOr(r.TransactionCount, 0)),
		Change:            change,
		Indicator:         classify.NewChangeIndicator(change, classify.Spending),
		TopCategory:       stringOr(r.TopCategory, ""),
		FormattedSpending: cli.FormatCurrency(spending, currency),
		FormattedIncome:   cli.FormatCurrency(income, currency),
	}
}

// SpendingSummaryView is the spending summary keyed by period type.
type SpendingSummaryView = Parameterized[string, SpendingSummaryModel]

// NewSpendingSummary returns a query for the spending summary of periodType.
func NewSpendingSummary(src Source, o Options, periodType string, opts ...async.Option) *SpendingSummaryView {
	currency := o.currency()
	return newParameterized(NormalizePeriodType(periodType), func(ctx context.Context, p string) (SpendingSummaryModel, error) {
		r, err := src.SpendingSummary(ctx, p)
		if err != nil {
			return SpendingSummaryModel{}, err
		}
		return DeriveSpendingSummary(r, p, currency), nil
	}, o.queryOptions(opts))
}

// BreakdownRow is one ranked category or merchant.
type BreakdownRow struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	Amount           float64  `json:"amount"`
	Share            float64  `json:"share"`
	TransactionCount int      `json:"transaction_count"`
	AverageAmount    *float64 `json:"average_amount,omitempty"`
	FormattedAmount  string   `json:"formatted_amount"`
	FormattedAverage string   `json:"formatted_average,omitempty"`
}

// BreakdownModel ranks categories or merchants by amount, largest first.
// Share is on the 0-100 scale.
type BreakdownModel struct {
	TimeRange      string               `json:"time_range"`
	Total          float64              `json:"total"`
	Rows           []BreakdownRow       `json:"rows"`
	Series         metrics.Series       `json:"series"`
	Chart          metrics.ChartMetrics `json:"chart"`
	FormattedTotal string               `json:"formatted_total"`
}

func finishBreakdown(m *BreakdownModel, reportedTotal *float64, currency string) {
	slices.SortStableFunc(m.Rows, func(a, b BreakdownRow) int {
		return cmp.Compare(b.Amount, a.Amount)
	})

	var sum float64
	for _, r := range m.Rows {
		sum += r.Amount
	}
	m.Total = sum
	if reportedTotal != nil {
		m.Total = *reportedTotal
	}

	m.Series = make(metrics.Series, len(m.Rows))
	for i := range m.Rows {
		if m.Rows[i].Share == 0 && m.Total > 0 {
			m.Rows[i].Share = m.Rows[i].Amount / m.Total * 100
		}
		m.Series[i] = metrics.Point{Label: m.Rows[i].Label, Value: m.Rows[i].Amount}
	}
	m.Chart = metrics.ComputeChartMetrics(m.Series)
	m.FormattedTotal = cli.FormatCurrency(m.Total, currency)
}

// DeriveCategoryBreakdown builds the category breakdown.
func DeriveCategoryBreakdown(r *analytics.CategoryBreakdownResponse, timeRange, currency string) BreakdownModel {
	if r == nil {
		r = &analytics.CategoryBreakdownResponse{}
	}
	m := BreakdownModel{TimeRange: NormalizeTimeRange(stringOr(r.TimeRange, timeRange))}
	for _, c := range r.Categories {
		amt := amount.Parse(c.Amount)
		m.Rows = append(m.Rows, BreakdownRow{
			Name:             c.CategoryName,
			Label:            cli.TitleLabel(c.CategoryName),
			Amount:           amt,
			Share:            amount.Parse(c.Percentage),
			TransactionCount: c.TransactionCount,
			FormattedAmount:  cli.FormatCurrency(amt, currency),
		})
	}
	finishBreakdown(&m, amount.ParseOptional(r.Total), currency)
	return m
}

// DeriveMerchantBreakdown builds the merchant breakdown.
func DeriveMerchantBreakdown(r *analytics.MerchantBreakdownResponse, timeRange, currency string) BreakdownModel {
	if r == nil {
		r = &analytics.MerchantBreakdownResponse{}
	}
	m := BreakdownModel{TimeRange: NormalizeTimeRange(stringOr(r.TimeRange, timeRange))}
	for _, mr := range r.Merchants {
		amt := amount.Parse(mr.Amount)
		avg := amount.ParseOptional(mr.AverageAmount)
		if avg == nil && mr.TransactionCount > 0 {
			v := amt / float64(mr.TransactionCount)
			avg = &v
		}
		label := mr.MerchantName
		if label == "" {
			label = "Unknown merchant"
		}
		m.Rows = append(m.Rows, BreakdownRow{
			Name:             mr.MerchantName,
			Label:            label,
			Amount:           amt,
			TransactionCount: mr.TransactionCount,
			AverageAmount:    avg,
			FormattedAmount:  cli.FormatCurrency(amt, currency),
			FormattedAverage: cli.FormatOptionalCurrency(avg, currency),
		})
	}
	finishBreakdown(&m, nil, currency)
	return m
}

// BreakdownView is a category or merchant breakdown keyed by time range.
type BreakdownView = Parameterized[string, BreakdownModel]

// NewCategoryBreakdown returns a query for the category breakdown.
func NewCategoryBreakdown(src Source, o Options, timeRange string, opts ...async.Option) *BreakdownView {
	currency := o.currency()
	return newParameterized(NormalizeTimeRange(timeRange), func(ctx context.Context, tr string) (BreakdownModel, error) {
		r, err := src.Categories(ctx, tr)
		if err != nil {
			return BreakdownModel{}, err
		}
		return DeriveCategoryBreakdown(r, tr, currency), nil
	}, o.queryOptions(opts))
}

// NewMerchantBreakdown returns a query for the top merchants.
func NewMerchantBreakdown(src Source, o Options, timeRange string, limit int, opts ...async.Option) *BreakdownView {
	currency := o.currency()
	if limit <= 0 {
		limit = Defaults.MerchantLimit
	}
	return newParameterized(NormalizeTimeRange(timeRange), func(ctx context.Context, tr string) (BreakdownModel, error) {
		r, err := src.Merchants(ctx, tr, limit)
		if err != nil {
			return BreakdownModel{}, err
		}
		return DeriveMerchantBreakdown(r, tr, currency), nil
	}, o.queryOptions(opts))
}

// HistoryParams select a spending history series.
type HistoryParams struct {
	Months   int
	Category string
}

// HistoryModel is a spending series with its chart scaling and trend.
type HistoryModel struct {
	Category         string                   `json:"category,omitempty"`
	Series           metrics.Series           `json:"series"`
	Chart            metrics.ChartMetrics     `json:"chart"`
	Trend            metrics.Trend            `json:"trend"`
	Indicator        classify.ChangeIndicator `json:"indicator"`
	FormattedAverage string                   `json:"formatted_average"`
}

// DeriveHistory builds a history model. Dated points are sorted oldest
// first; points without a parseable date follow them in input order.
func DeriveHistory(r *analytics.SpendingHistoryResponse, currency string) HistoryModel {
	if r == nil {
		r = &analytics.SpendingHistoryResponse{}
	}

	s := make(metrics.Series, 0, len(r.Points))
	for _, p := range r.Points {
		pt := metrics.Point{Label: stringOr(p.Label, ""), Value: amount.Parse(p.Amount)}
		if t, err := time.Parse(time.DateOnly, p.PeriodStart); err == nil {
			pt.Date = &t
			if pt.Label == "" {
				pt.Label = t.Format("Jan")
			}
		}
		if pt.Label == "" {
			pt.Label = p.PeriodStart
		}
		s = append(s, pt)
	}
	slices.SortStableFunc(s, func(a, b metrics.Point) int {
		switch {
		case a.Date == nil && b.Date == nil:
			return 0
		case a.Date == nil:
			return 1
		case b.Date == nil:
			return -1
		}
		return a.Date.Compare(*b.Date)
	})

	return SeriesModel(stringOr(r.Category, ""), s, currency)
}

// SeriesModel computes chart metrics, trend and indicator for any
// chronological spending series.
func SeriesModel(category string, s metrics.Series, currency string) HistoryModel {
	trend := metrics.ComputeTrend(s)
	return HistoryModel{
		Category:         category,
		Series:           s,
		Chart:            metrics.ComputeChartMetrics(s),
		Trend:            trend,
		Indicator:        classify.NewChangeIndicator(trend.ChangePercentage, classify.Spending),
		FormattedAverage: cli.FormatCurrency(trend.Average, currency),
	}
}

// HistoryView is a spending history keyed by months and category.
type HistoryView = Parameterized[HistoryParams, HistoryModel]

// NewHistory returns a query for a spending history series.
func NewHistory(src Source, o Options, p HistoryParams, opts ...async.Option) *HistoryView {
	currency := o.currency()
	if p.Months <= 0 {
		p.Months = Defaults.HistoryMonths
	}
	return newParameterized(p, func(ctx context.Context, hp HistoryParams) (HistoryModel, error) {
		r, err := src.SpendingHistory(ctx, hp.Months, hp.Category)
		if err != nil {
			return HistoryModel{}, err
		}
		return DeriveHistory(r, currency), nil
	}, o.queryOptions(opts))
}
