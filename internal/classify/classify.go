// Package classify maps continuous financial values and backend enums onto
// the small set of discrete categories the presentation layer renders.
package classify

import (
	"fmt"
	"math"
	"strings"
)

// ColorRole is a semantic color. Concrete colors come from the active theme.
type ColorRole string

const (
	Success ColorRole = "success"
	Warning ColorRole = "warning"
	Error   ColorRole = "error"
	Accent  ColorRole = "accent" // teal
	Muted   ColorRole = "muted"
)

// PacingStatus is the backend's verdict on current spend vs. expected spend.
type PacingStatus string

const (
	PacingBehind  PacingStatus = "behind"
	PacingOnTrack PacingStatus = "on_track"
	PacingAhead   PacingStatus = "ahead"
)

// ParsePacingStatus validates a raw status. Unknown values are an error so
// the mapping functions below can stay total over the closed set.
func ParsePacingStatus(raw string) (PacingStatus, error) {
	switch s := PacingStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PacingBehind, PacingOnTrack, PacingAhead:
		return s, nil
	}
	return "", fmt.Errorf("classify: unknown pacing status %q", raw)
}

// Color returns the status color. Spending behind pace is good news.
func (s PacingStatus) Color() ColorRole {
	switch s {
	case PacingBehind:
		return Success
	case PacingOnTrack:
		return Accent
	case PacingAhead:
		return Warning
	}
	panic(fmt.Sprintf("classify: pacing status %q outside closed set", string(s)))
}

// Label returns the user-facing label.
func (s PacingStatus) Label() string {
	switch s {
	case PacingBehind:
		return "Under pace"
	case PacingOnTrack:
		return "On track"
	case PacingAhead:
		return "Ahead of pace"
	}
	panic(fmt.Sprintf("classify: pacing status %q outside closed set", string(s)))
}

// Emoji returns the status glyph.
func (s PacingStatus) Emoji() string {
	switch s {
	case PacingBehind:
		return "🐢"
	case PacingOnTrack:
		return "🎯"
	case PacingAhead:
		return "🔥"
	}
	panic(fmt.Sprintf("classify: pacing status %q outside closed set", string(s)))
}

// PacingMode selects which pacing fields are meaningful.
type PacingMode string

const (
	ModeKickoff   PacingMode = "kickoff"
	ModePacing    PacingMode = "pacing"
	ModeStability PacingMode = "stability"
)

// ParsePacingMode validates a raw mode.
func ParsePacingMode(raw string) (PacingMode, error) {
	switch m := PacingMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeKickoff, ModePacing, ModeStability:
		return m, nil
	}
	return "", fmt.Errorf("classify: unknown pacing mode %q", raw)
}

// TrendDirection is the direction of a period-over-period change.
type TrendDirection string

const (
	Up     TrendDirection = "up"
	Down   TrendDirection = "down"
	Stable TrendDirection = "stable"
)

// DeadZonePct is the absolute change, in percentage points, below which a
// change is reported as stable.
const DeadZonePct = 1.0

// Direction classifies a change percentage. nil means "incomparable" and is
// reported as stable.
func Direction(change *float64) TrendDirection {
	if change == nil || math.IsNaN(*change) || math.Abs(*change) < DeadZonePct {
		return Stable
	}
	if *change > 0 {
		return Up
	}
	return Down
}

// Arrow returns a glyph for the direction.
func (d TrendDirection) Arrow() string {
	switch d {
	case Up:
		return "↑"
	case Down:
		return "↓"
	default:
		return "→"
	}
}

// Polarity says which direction is favorable for a metric.
type Polarity int

const (
	// Spending metrics: going up is bad.
	Spending Polarity = iota
	// Income metrics: going up is good.
	Income
)

func (p Polarity) String() string {
	if p == Income {
		return "income"
	}
	return "spending"
}

// DirectionColor colors a direction for the given polarity.
func DirectionColor(d TrendDirection, p Polarity) ColorRole {
	if d == Stable {
		return Muted
	}
	favorable := (d == Down && p == Spending) || (d == Up && p == Income)
	if favorable {
		return Success
	}
	return Error
}

// ChangeIndicator is everything a caller needs to render a change badge.
type ChangeIndicator struct {
	Change    *float64
	Direction TrendDirection
	Color     ColorRole
	Arrow     string
	Text      string
}

// NewChangeIndicator classifies change under polarity p.
func NewChangeIndicator(change *float64, p Polarity) ChangeIndicator {
	dir := Direction(change)
	ind := ChangeIndicator{
		Change:    change,
		Direction: dir,
		Color:     DirectionColor(dir, p),
		Arrow:     dir.Arrow(),
		Text:      "—",
	}
	if change != nil && !math.IsNaN(*change) && !math.IsInf(*change, 0) {
		ind.Text = fmt.Sprintf("%s %.1f%%", ind.Arrow, math.Abs(*change))
	}
	return ind
}

// Balance is the sign of a period's net flow.
type Balance string

const (
	Surplus Balance = "surplus"
	Deficit Balance = "deficit"
	Neutral Balance = "neutral"
)

// BalanceStatus classifies income minus expenses with no tolerance band.
func BalanceStatus(income, expenses float64) Balance {
	net := income - expenses
	switch {
	case net > 0:
		return Surplus
	case net < 0:
		return Deficit
	default:
		return Neutral
	}
}

// Color returns the balance color.
func (b Balance) Color() ColorRole {
	switch b {
	case Surplus:
		return Success
	case Deficit:
		return Error
	default:
		return Muted
	}
}

// Label returns the user-facing label.
func (b Balance) Label() string {
	switch b {
	case Surplus:
		return "Surplus"
	case Deficit:
		return "Deficit"
	default:
		return "Break-even"
	}
}
