package types

import "time"

// AuditReport is the top-level structure for a complete audit run.
// It is serialized directly to JSON for the --format=json output.
type AuditReport struct {
	// Version is the bastion version that produced this report.
	Version string `json:"version"`

	// Timestamp is when the audit started.
	Timestamp time.Time `json:"timestamp"`

	// System describes the audited host.
	System AuditSystem `json:"system"`

	// Show is the display filter that was applied (findings, all, fail, pass).
	Show string `json:"show"`

	// Summary provides aggregate statistics over every check that ran.
	Summary AuditSummary `json:"summary"`

	// Results is the list of displayed check outcomes, in registry order.
	Results []CheckResult `json:"results"`
}

// AuditSystem describes the host that was audited.
type AuditSystem struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	OSVersion       string `json:"os_version"`
	Arch            string `json:"arch"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`

	// Elevated indicates whether the audit ran with administrative rights.
	Elevated bool `json:"elevated"`
}

// AuditSummary provides aggregate statistics for an audit.
type AuditSummary struct {
	// TotalChecks is the number of checks that ran.
	TotalChecks int `json:"total_checks"`

	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Unknown  int `json:"unknown"`

	// Issues is Failed + Warnings.
	Issues int `json:"issues"`

	// DurationMS is the total audit duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// Summarize tallies a set of results. DurationMS is left for the caller.
func Summarize(results []CheckResult) AuditSummary {
	s := AuditSummary{TotalChecks: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusWarning:
			s.Warnings++
		default:
			s.Unknown++
		}
	}
	s.Issues = s.Failed + s.Warnings
	return s
}
