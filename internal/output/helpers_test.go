package output

import (
	"time"

	"github.com/ancients-collective/bastion/internal/types"
)

// testTimestamp is a fixed time for deterministic test output.
var testTimestamp = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func testSystem() types.AuditSystem {
	return types.AuditSystem{
		Hostname:        "WS-0142",
		OS:              "windows",
		OSVersion:       "10.0.22631",
		Arch:            "amd64",
		Platform:        "Microsoft Windows 11 Pro",
		PlatformVersion: "10.0.22631",
		Elevated:        true,
	}
}

// newTestReport builds a representative AuditReport.
func newTestReport() *types.AuditReport {
	results := []types.CheckResult{
		{
			ID:          "firewall",
			Name:        "Windows Firewall",
			Category:    "network",
			Severity:    "high",
			Status:      types.StatusPass,
			Evidence:    "Domain Profile Settings:\nState                                 ON",
			Description: "Ensures Windows Firewall is enabled for all profiles",
			Rationale:   "The firewall is the first line of defense.",
			DurationMS:  41,
		},
		{
			ID:          "guest_account",
			Name:        "Guest Account",
			Category:    "accounts",
			Severity:    "medium",
			Status:      types.StatusFail,
			Evidence:    "User name                    Guest\nAccount active               Yes",
			Description: "Ensures the Guest account is disabled",
			Rationale:   "The Guest account provides anonymous access.",
			ManualSteps: "1. Open Computer Management\n2. Disable the Guest account",
			References:  []string{"https://learn.microsoft.com/guest"},
			DurationMS:  12,
		},
		{
			ID:          "smb1_protocol",
			Name:        "SMBv1 Protocol",
			Category:    "network",
			Severity:    "critical",
			Status:      types.StatusFail,
			Evidence:    "State : Enabled",
			Description: "Ensures SMBv1 is disabled",
			DurationMS:  900,
		},
		{
			ID:          "realtime_protection",
			Name:        "Windows Defender",
			Category:    "malware",
			Severity:    "high",
			Status:      types.StatusUnknown,
			Evidence:    "\nError: Get-MpComputerStatus : Access denied",
			Description: "Ensures real-time protection is on",
			DurationMS:  300,
		},
	}
	summary := types.Summarize(results)
	summary.DurationMS = 1253
	return &types.AuditReport{
		Version:   "1.0.0",
		Timestamp: testTimestamp,
		System:    testSystem(),
		Show:      "findings",
		Summary:   summary,
		Results:   results,
	}
}

// newCleanReport builds a report where everything passes.
func newCleanReport() *types.AuditReport {
	results := []types.CheckResult{
		{ID: "firewall", Name: "Windows Firewall", Category: "network", Severity: "high", Status: types.StatusPass, DurationMS: 1},
		{ID: "remote_desktop", Name: "Remote Desktop (RDP)", Category: "network", Severity: "high", Status: types.StatusPass, DurationMS: 2},
	}
	summary := types.Summarize(results)
	summary.DurationMS = 50
	return &types.AuditReport{
		Version:   "1.0.0",
		Timestamp: testTimestamp,
		System:    testSystem(),
		Show:      "findings",
		Summary:   summary,
		Results:   results,
	}
}

// newEmptyReport builds a report with zero results.
func newEmptyReport() *types.AuditReport {
	return &types.AuditReport{
		Version:   "1.0.0",
		Timestamp: testTimestamp,
		System:    testSystem(),
		Summary:   types.AuditSummary{DurationMS: 1},
		Results:   []types.CheckResult{},
	}
}
