package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ancients-collective/bastion/internal/types"
)

// JSONLFormatter writes newline-delimited JSON. The first line is a header
// with system and summary information; each following line is one result.
type JSONLFormatter struct{}

// Write renders the audit as JSONL: header line + one line per result.
func (f *JSONLFormatter) Write(w io.Writer, report *types.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := struct {
		Type      string             `json:"type"`
		Version   string             `json:"version"`
		Timestamp string             `json:"timestamp"`
		System    types.AuditSystem  `json:"system"`
		Summary   types.AuditSummary `json:"summary"`
	}{
		Type:      "header",
		Version:   report.Version,
		Timestamp: report.Timestamp.Format(time.RFC3339),
		System:    report.System,
		Summary:   report.Summary,
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, r := range report.Results {
		line := struct {
			Type   string            `json:"type"`
			Result types.CheckResult `json:"result"`
		}{
			Type:   "result",
			Result: r,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
