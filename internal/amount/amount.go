// Package amount converts server-supplied decimal figures into safe numbers.
//
// The analytics API transmits every monetary value as a decimal string. This
// package is the single place those strings become numbers, and it never
// fails: malformed input degrades to a default instead of an error.
package amount

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts v into a finite float64.
// nil, empty, whitespace-only, malformed and non-finite inputs yield 0.
// Use it for aggregates where absence means "nothing".
func Parse(v any) float64 {
	f, ok := parse(v)
	if !ok {
		return 0
	}
	return f
}

// ParseOptional converts v like Parse but returns nil when the input is
// absent or malformed, so callers can render a placeholder instead of $0.00.
func ParseOptional(v any) *float64 {
	f, ok := parse(v)
	if !ok {
		return nil
	}
	return &f
}

// Decimal returns the exact fixed-point value of v, or zero when v does not
// hold a parseable number.
func Decimal(v any) decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Zero
	}
	return d
}

func parse(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case *float64:
		if x == nil {
			return 0, false
		}
		return finite(*x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}

	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return finite(f)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case string:
		return fromString(x)
	case *string:
		if x == nil {
			return decimal.Zero, false
		}
		return fromString(*x)
	case json.Number:
		return fromString(string(x))
	case Figure:
		return fromRaw(x)
	case *Figure:
		if x == nil {
			return decimal.Zero, false
		}
		return fromRaw(*x)
	case json.RawMessage:
		return fromRaw(Figure(x))
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case decimal.NullDecimal:
		return x.Decimal, x.Valid
	case float64:
		if _, ok := finite(x); !ok {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case *float64:
		if x == nil {
			return decimal.Zero, false
		}
		return toDecimal(*x)
	case float32:
		return toDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	}
	return decimal.Zero, false
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func fromRaw(f Figure) (decimal.Decimal, bool) {
	raw := bytes.TrimSpace(f)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
		return fromString(s)
	}
	return fromString(string(raw))
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
