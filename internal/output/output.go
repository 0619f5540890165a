// Package output renders audit reports, sweep progress and profile listings.
package output

import (
	"io"

	"github.com/ancients-collective/bastion/internal/types"
)

// Formatter writes an audit report to the given writer.
type Formatter interface {
	Write(w io.Writer, report *types.AuditReport) error
}

// Show filters which results a report displays.
const (
	ShowFindings = "findings"
	ShowAll      = "all"
	ShowFail     = "fail"
	ShowPass     = "pass"
)

// IsFinding reports whether a result needs attention: an issue, or a check
// that could not determine its status.
func IsFinding(r types.CheckResult) bool {
	return r.Status.IsIssue() || r.Status == types.StatusUnknown
}

// ShouldDisplay applies a --show filter to a result. Findings and all keep
// every result; the text formatter decides how to lay them out.
func ShouldDisplay(r types.CheckResult, show string) bool {
	switch show {
	case ShowPass:
		return r.Status == types.StatusPass
	case ShowFail:
		return r.Status.IsIssue()
	default:
		return true
	}
}
