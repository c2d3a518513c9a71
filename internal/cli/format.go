// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholder is rendered wherever a figure is unknown.
const Placeholder = "—"

// DefaultCurrency is used when no currency is configured or the configured
// code is not recognized.
const DefaultCurrency = money.USD

// FormatCurrency formats a float amount in the given ISO currency.
// e.g., (1234.5, "USD") -> "$1,234.50"
func FormatCurrency(v float64, code string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return FormatMoney(decimal.NewFromFloat(v), code)
}

// FormatOptionalCurrency formats v, or returns the placeholder when v is nil.
func FormatOptionalCurrency(v *float64, code string) string {
	if v == nil {
		return Placeholder
	}
	return FormatCurrency(*v, code)
}

// FormatMoney formats an exact decimal amount. Rounding to the currency's
// minor unit happens on the decimal, half away from zero.
func FormatMoney(d decimal.Decimal, code string) string {
	cur := currency(code)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// FormatCompactCurrency formats large amounts with an SI suffix for chart
// axes: 950 -> "$950", 12500 -> "$12.5k".
func FormatCompactCurrency(v float64, code string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	grapheme := currency(code).Grapheme
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v < 1000 {
		return fmt.Sprintf("%s%s%.0f", sign, grapheme, v)
	}
	value, prefix := humanize.ComputeSI(v)
	return fmt.Sprintf("%s%s%s%s", sign, grapheme, humanize.FtoaWithDigits(value, 1), prefix)
}

func currency(code string) *money.Currency {
	if c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))); c != nil {
		return c
	}
	return money.GetCurrency(DefaultCurrency)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a value already on the 0-100 scale.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return Placeholder
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRatio formats a 0-1 ratio as a percentage string.
func FormatRatio(f float64) string {
	return FormatPercent(f * 100)
}

// FormatOptionalPercent formats pct, or returns the placeholder when nil.
func FormatOptionalPercent(pct *float64) string {
	if pct == nil {
		return Placeholder
	}
	return FormatPercent(*pct)
}

// FormatAge renders how long ago t was, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// TitleLabel turns a backend identifier into a display label. Safe for
// concurrent use: a cases.Caser holds state, so each call builds its own.
// e.g., "FOOD_AND_DRINK" -> "Food And Drink", "dining out" -> "Dining Out"
func TitleLabel(s string) string {
	s = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	if s == "" {
		return "Uncategorized"
	}
	return cases.Title(language.English).String(strings.ToLower(strings.Join(strings.Fields(s), " ")))
}

// Truncate shortens s to n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
