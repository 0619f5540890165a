package types

import "time"

// CheckStatus represents the outcome of a security check probe.
type CheckStatus string

const (
	// StatusPass means the audited setting is compliant.
	StatusPass CheckStatus = "pass"
	// StatusFail means the audited setting is not compliant.
	StatusFail CheckStatus = "fail"
	// StatusWarning means an issue is present but is less severe than a fail.
	StatusWarning CheckStatus = "warning"
	// StatusUnknown means the check has not run, or its probe could not be
	// executed or classified.
	StatusUnknown CheckStatus = "unknown"
)

// IsIssue reports whether the status counts as an issue in aggregate totals.
// Warnings are counted the same as failures.
func (s CheckStatus) IsIssue() bool {
	return s == StatusFail || s == StatusWarning
}

// CheckResult is a point-in-time snapshot of a single security check.
type CheckResult struct {
	// ID is the stable check identifier.
	ID string `json:"id"`

	// Name is the human-readable check name.
	Name string `json:"name"`

	// Category is the check's category.
	Category string `json:"category"`

	// Severity is the catalog severity of the check.
	Severity string `json:"severity"`

	// Status is the result of the most recent probe.
	Status CheckStatus `json:"status"`

	// Evidence is the raw probe output captured by the most recent run.
	Evidence string `json:"evidence,omitempty"`

	// Description explains what the check verifies.
	Description string `json:"description,omitempty"`

	// Rationale explains why the setting matters.
	Rationale string `json:"rationale,omitempty"`

	// ManualSteps describes how to remediate by hand when Fix does not work.
	ManualSteps string `json:"manual_steps,omitempty"`

	// References lists related URLs.
	References []string `json:"references,omitempty"`

	// Tags are freeform labels from the catalog.
	Tags []string `json:"tags,omitempty"`

	// Duration is how long the probe took (not serialized to JSON).
	Duration time.Duration `json:"-"`

	// DurationMS is the duration in milliseconds for JSON serialization.
	DurationMS int64 `json:"duration_ms"`
}
