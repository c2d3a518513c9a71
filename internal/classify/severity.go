package classify

import (
	"fmt"
	"strings"
)

// Severity is the backend's lifestyle-creep tier. It is rendered, never derived.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity validates a raw severity.
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh:
		return s, nil
	}
	return "", fmt.Errorf("classify: unknown severity %q", raw)
}

// Rank orders severities from 0 (none) to 3 (high).
func (s Severity) Rank() int {
	switch s {
	case SeverityNone:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	panic(fmt.Sprintf("classify: severity %q outside closed set", string(s)))
}

// Color walks the ramp success → warning → error.
func (s Severity) Color() ColorRole {
	switch s {
	case SeverityNone:
		return Success
	case SeverityLow:
		return Warning
	case SeverityMedium, SeverityHigh:
		return Error
	}
	panic(fmt.Sprintf("classify: severity %q outside closed set", string(s)))
}

// Intense reports whether the color should be rendered at full strength.
// Only high severity is intensified beyond the plain error color.
func (s Severity) Intense() bool { return s == SeverityHigh }

func (s Severity) Label() string {
	switch s {
	case SeverityNone:
		return "No creep"
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Moderate"
	case SeverityHigh:
		return "High"
	}
	panic(fmt.Sprintf("classify: severity %q outside closed set", string(s)))
}

// TargetStatus tells whether the spending target has enough history behind it.
type TargetStatus string

const (
	TargetBuilding    TargetStatus = "building"
	TargetEstablished TargetStatus = "established"
)

// ParseTargetStatus validates a raw target status.
func ParseTargetStatus(raw string) (TargetStatus, error) {
	switch s := TargetStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case TargetBuilding, TargetEstablished:
		return s, nil
	}
	return "", fmt.Errorf("classify: unknown target status %q", raw)
}

func (s TargetStatus) Label() string {
	if s == TargetEstablished {
		return "Established"
	}
	return "Building"
}

// ComputationStatus is the outcome reported by the backend's mutation endpoints.
type ComputationStatus string

const (
	ComputationSuccess    ComputationStatus = "success"
	ComputationFailed     ComputationStatus = "failed"
	ComputationInProgress ComputationStatus = "in_progress"
)

// ParseComputationStatus validates a raw computation status.
func ParseComputationStatus(raw string) (ComputationStatus, error) {
	switch s := ComputationStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ComputationSuccess, ComputationFailed, ComputationInProgress:
		return s, nil
	}
	return "", fmt.Errorf("classify: unknown computation status %q", raw)
}

func (s ComputationStatus) Color() ColorRole {
	switch s {
	case ComputationSuccess:
		return Success
	case ComputationFailed:
		return Error
	default:
		return Accent
	}
}
