package views

import (
	"strings"

	"github.com/theirongolddev/pacer/internal/classify"
)

// Defaults is the single table of fallbacks for missing or unrecognized
// response fields. Derive functions apply it once; nothing downstream ever
// sees an absent enum.
var Defaults = struct {
	Mode          classify.PacingMode
	Severity      classify.Severity
	PacingStatus  classify.PacingStatus
	TargetStatus  classify.TargetStatus
	PeriodType    string
	TimeRange     string
	HistoryMonths int
	MerchantLimit int
	Currency      string
}{
	Mode:          classify.ModeKickoff,
	Severity:      classify.SeverityNone,
	PacingStatus:  classify.PacingOnTrack,
	TargetStatus:  classify.TargetBuilding,
	PeriodType:    "monthly",
	TimeRange:     "month",
	HistoryMonths: 6,
	MerchantLimit: 10,
	Currency:      "USD",
}

// PeriodTypes and TimeRanges list the accepted request parameters.
var (
	PeriodTypes = []string{"weekly", "monthly", "yearly"}
	TimeRanges  = []string{"week", "month", "year", "all"}
)

// NormalizePeriodType returns p if it is a known period type, else the default.
func NormalizePeriodType(p string) string {
	return oneOf(p, PeriodTypes, Defaults.PeriodType)
}

// NormalizeTimeRange returns r if it is a known time range, else the default.
func NormalizeTimeRange(r string) string {
	return oneOf(r, TimeRanges, Defaults.TimeRange)
}

func oneOf(v string, allowed []string, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

func modeOrDefault(raw *string) classify.PacingMode {
	if raw != nil {
		if m, err := classify.ParsePacingMode(*raw); err == nil {
			return m
		}
	}
	return Defaults.Mode
}

func severityOrDefault(raw *string) classify.Severity {
	if raw != nil {
		if s, err := classify.ParseSeverity(*raw); err == nil {
			return s
		}
	}
	return Defaults.Severity
}

func pacingStatusOrDefault(raw *string) classify.PacingStatus {
	if raw != nil {
		if s, err := classify.ParsePacingStatus(*raw); err == nil {
			return s
		}
	}
	return Defaults.PacingStatus
}

func targetStatusOrDefault(raw *string) classify.TargetStatus {
	if raw != nil {
		if s, err := classify.ParseTargetStatus(*raw); err == nil {
			return s
		}
	}
	return Defaults.TargetStatus
}

func stringOr(raw *string, fallback string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return fallback
	}
	return *raw
}

func intOr(raw *int, fallback int) int {
	if raw == nil {
		return fallback
	}
	return *raw
}
