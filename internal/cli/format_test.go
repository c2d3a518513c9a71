package cli

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5, "USD"))
	assert.Equal(t, "$0.29", FormatCurrency(0.29, "usd"))
	assert.Equal(t, "-$12.00", FormatCurrency(-12, "USD"))
	assert.Equal(t, "$5.00", FormatCurrency(5, "NOPE"), "unknown code falls back to USD")
	assert.Equal(t, Placeholder, FormatCurrency(math.NaN(), "USD"))
	assert.Equal(t, Placeholder, FormatOptionalCurrency(nil, "USD"))
}

func TestFormatMoney_RoundsOnDecimal(t *testing.T) {
	assert.Equal(t, "$0.13", FormatMoney(decimal.RequireFromString("0.125"), "USD"))
	assert.Equal(t, "$10.00", FormatMoney(decimal.RequireFromString("9.999"), "USD"))
}

func TestFormatCompactCurrency(t *testing.T) {
	assert.Equal(t, "$950", FormatCompactCurrency(950, "USD"))
	assert.Equal(t, "$12.5k", FormatCompactCurrency(12500, "USD"))
	assert.Equal(t, "-$2k", FormatCompactCurrency(-2000, "USD"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "42.0%", FormatPercent(42))
	assert.Equal(t, "25.0%", FormatRatio(0.25))
	assert.Equal(t, Placeholder, FormatOptionalPercent(nil))
	assert.Equal(t, Placeholder, FormatPercent(math.Inf(1)))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,000", FormatNumber(-1000))
	assert.Equal(t, "999", FormatNumber(999))
}

func TestTitleLabel(t *testing.T) {
	assert.Equal(t, "Food And Drink", TitleLabel("FOOD_AND_DRINK"))
	assert.Equal(t, "Dining Out", TitleLabel("  dining   out "))
	assert.Equal(t, "Uncategorized", TitleLabel(""))
}

func TestTitleLabel_Concurrent(t *testing.T) {
	inputs := map[string]string{
		"FOOD_AND_DRINK":             "Food And Drink",
		"personal-care and wellness": "Personal Care And Wellness",
		"rent":                       "Rent",
	}
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				for in, want := range inputs {
					if got := TitleLabel(in); got != want {
						t.Errorf("TitleLabel(%q) = %q, want %q", in, got, want)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 3))
}

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Change"},
		Rows: [][]string{
			{"Dining", "—"},
			{"---"},
			{"Travel", "+12.5%"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := lipgloss.Width(lines[0])
	for _, l := range lines {
		assert.Equal(t, want, lipgloss.Width(l), "line %q", l)
	}
}

func TestRenderSplitBar(t *testing.T) {
	bar := RenderSplitBar(0.25, "error", 20)
	assert.Equal(t, 20, lipgloss.Width(bar))
	assert.Empty(t, RenderSplitBar(0.5, "error", 0))
}
