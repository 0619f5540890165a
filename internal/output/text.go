package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ancients-collective/bastion/internal/types"
)

// ─── Layout constants ────────────────────────────────────────────────
//
// Every result line follows a strict column grid:
//
//     col 0    4   6       14      16                          maxLine
//     │margin│ I │ BADGE   │2sp│ CHECK NAME ...           DURATION │
//
// Detail blocks start at colDetail and use labelWidth-padded labels
// so every value begins at colValue.
const (
	colMargin  = 4
	badgeWidth = 8
	colDetail  = 16
	labelWidth = 10
	colValue   = 26
	maxLine    = 110
	ruleWidth  = 64

	// evidenceLines caps evidence shown without --explain.
	evidenceLines = 4
)

// TextFormatter writes a colored, human-readable audit report.
type TextFormatter struct {
	Explain bool   // show rationale, manual steps and full evidence
	Show    string // "findings" (default), "all", "fail", "pass"
	Width   int    // terminal width for wrapping; 0 = unknown
	Dumb    bool   // TERM=dumb: single-char ASCII icons
}

var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()

	cRedBold    = color.New(color.FgRed, color.Bold).SprintFunc()
	cYellowBold = color.New(color.FgYellow, color.Bold).SprintFunc()
	cGreenBold  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// IsDumbTerm reports whether the terminal lacks Unicode support. Windows
// consoles leave TERM unset, so only an explicit TERM=dumb counts.
func IsDumbTerm() bool {
	t, ok := os.LookupEnv("TERM")
	if !ok {
		return false
	}
	return t == "dumb"
}

func (f *TextFormatter) show() string {
	if f.Show == "" {
		return ShowFindings
	}
	return f.Show
}

func (f *TextFormatter) wrapWidth() int {
	if f.Width > 0 && f.Width < maxLine {
		return f.Width
	}
	return maxLine
}

// Write renders the full text report.
func (f *TextFormatter) Write(w io.Writer, report *types.AuditReport) error {
	f.writeHeader(w, report)
	f.writeSystem(w, report)
	f.writeLoading(w, report)
	if f.show() != ShowFindings {
		f.writeResults(w, report)
	}
	f.writeSummary(w, report)
	if f.show() == ShowFindings {
		f.writeFindings(w, report)
	}
	f.writeHints(w, report)
	fmt.Fprintln(w)
	return nil
}

func (f *TextFormatter) writeHeader(w io.Writer, r *types.AuditReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  v%s\n", cBold("bastion"), r.Version)
	fmt.Fprintf(w, "  %s\n", cDim("Workstation security posture audit"))
	fmt.Fprintf(w, "  %s %s\n", cDim("Audit started:"), r.Timestamp.Format(time.RFC3339))
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeSystem(w io.Writer, r *types.AuditReport) {
	sys := r.System
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" System"))
	if sys.Hostname != "" {
		fmt.Fprintf(w, "    Host:    %s\n", sys.Hostname)
	}
	fmt.Fprintf(w, "    OS:      %s %s (%s)\n", sys.OS, sys.OSVersion, sys.Arch)
	if sys.Platform != "" {
		fmt.Fprintf(w, "    Product: %s %s\n", sys.Platform, sys.PlatformVersion)
	}
	fmt.Fprintln(w)
	if !sys.Elevated {
		fmt.Fprintf(w, "  %s %s\n", cYellow(f.icon("warn")),
			f.wrap("Not running as Administrator. Remediation will request elevation.", 4, 4))
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeLoading(w io.Writer, r *types.AuditReport) {
	fmt.Fprintf(w, "  %s Ran %d check(s)\n", cBold(f.icon("section")), r.Summary.TotalChecks)
	if show := f.show(); show != ShowFindings {
		fmt.Fprintf(w, "    Filters: show=%s\n", show)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeResults(w io.Writer, r *types.AuditReport) {
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" Results"))

	if len(r.Results) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s(no results match the current filters)\n", colPad(colMargin))
		return
	}

	currentCategory := ""
	for _, res := range f.sortResults(r.Results) {
		if res.Category != currentCategory {
			currentCategory = res.Category
			f.writeCategoryHeader(w, currentCategory)
		}
		f.writeResultLine(w, res)
		f.writeDetailBlock(w, res)
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeFindings(w io.Writer, r *types.AuditReport) {
	var findings []types.CheckResult
	for _, res := range r.Results {
		if IsFinding(res) {
			findings = append(findings, res)
		}
	}
	if len(findings) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cRedBold(f.icon("section")+" Findings"))

	currentCategory := ""
	for _, fi := range f.sortResults(findings) {
		if fi.Category != currentCategory {
			currentCategory = fi.Category
			f.writeCategoryHeader(w, currentCategory)
		}
		f.writeResultLine(w, fi)
		f.writeDetailBlock(w, fi)
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeSummary(w io.Writer, r *types.AuditReport) {
	rule := cDim(strings.Repeat("─", ruleWidth))
	fmt.Fprintf(w, "  %s\n", rule)

	f.writeVerdict(w, r)

	s := r.Summary
	parts := []string{
		cGreenBold(fmt.Sprintf("%d passed", s.Passed)),
		cRedBold(fmt.Sprintf("%d failed", s.Failed)),
	}
	if s.Warnings > 0 {
		parts = append(parts, cYellowBold(fmt.Sprintf("%d warnings", s.Warnings)))
	}
	parts = append(parts, cDim(fmt.Sprintf("%d unknown", s.Unknown)))

	fmt.Fprintf(w, "  %s  %s\n", cBold("Summary:"), strings.Join(parts, " · "))
	fmt.Fprintf(w, "  %s  %s\n", cDim("Completed in"), cBold(fmt.Sprintf("%.1fs", float64(s.DurationMS)/1000.0)))
	fmt.Fprintf(w, "  %s\n", rule)
}

func (f *TextFormatter) writeVerdict(w io.Writer, r *types.AuditReport) {
	s := r.Summary
	switch {
	case s.Issues == 0 && s.Unknown == 0:
		fmt.Fprintf(w, "  %s %s\n", cGreenBold(f.icon("pass")), cGreenBold("Clean, no issues found"))
		return
	case s.Issues == 0:
		fmt.Fprintf(w, "  %s %s\n", cYellowBold(f.icon("warn")),
			cYellowBold(fmt.Sprintf("No issues found, but %d check(s) could not determine a status", s.Unknown)))
		return
	}

	counts := map[string]int{}
	for _, res := range r.Results {
		if res.Status.IsIssue() {
			counts[res.Severity]++
		}
	}
	var parts []string
	for _, sev := range severityOrder {
		if c := counts[sev]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, sev))
		}
	}
	detail := ""
	if len(parts) > 0 {
		detail = fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
	}

	fmt.Fprintf(w, "  %s %s\n", cRedBold(f.icon("shield")),
		cRedBold(fmt.Sprintf("%d issue(s) require attention%s", s.Issues, detail)))
}

func (f *TextFormatter) writeHints(w io.Writer, r *types.AuditReport) {
	var hints []string
	s := r.Summary
	hasFindings := s.Issues > 0 || s.Unknown > 0

	if hasFindings && !f.Explain {
		hints = append(hints, "Run with --explain for rationale and manual steps")
	}
	if s.Issues > 0 {
		hints = append(hints, "Run 'bastion fix <check>' to remediate a single check")
	}
	if f.show() == ShowFindings && hasFindings {
		hints = append(hints, "Use --show all to see every check result")
	}
	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, h := range hints {
		fmt.Fprintf(w, "  %s %s\n", cDim("›"), cDim(h))
	}
}

func (f *TextFormatter) writeCategoryHeader(w io.Writer, category string) {
	label := strings.ToUpper(category)
	fill := max(ruleWidth-4-len(label), 1)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s %s %s\n", colPad(colMargin), cDim("──"), cBold(label), cDim(strings.Repeat("─", fill)))
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeResultLine(w io.Writer, res types.CheckResult) {
	durRaw := durationRaw(res)
	checkLabel := cBold(fmt.Sprintf("%-*s", labelWidth, "Check:"))
	nameAvail := f.wrapWidth() - colValue - 2 - len(durRaw)
	namePad := max(nameAvail-len(res.Name), 2)

	fmt.Fprintf(w, "%s%s %s  %s%s%s%s\n",
		colPad(colMargin),
		f.statusIcon(res.Status),
		coloredBadge(res.Severity),
		checkLabel,
		res.Name,
		strings.Repeat(" ", namePad),
		cDim(durRaw),
	)
}

func (f *TextFormatter) writeDetailBlock(w io.Writer, res types.CheckResult) {
	p := colPad(colDetail)

	f.writeLabel(w, p, "ID:", cDim, res.ID)

	switch res.Status {
	case types.StatusFail, types.StatusWarning:
		if res.Description != "" {
			f.writeLabel(w, p, "Expected:", cRed, res.Description)
		}
	case types.StatusUnknown:
		f.writeLabel(w, p, "Status:", cYellow, "could not be determined")
	}

	if res.Evidence != "" && (f.Explain || IsFinding(res)) {
		evidence := res.Evidence
		if !f.Explain {
			evidence = truncateLines(evidence, evidenceLines)
		}
		f.writeBlock(w, p, "Evidence:", cDim, evidence)
	}

	if res.Status.IsIssue() {
		f.writeLabel(w, p, "Fix:", cGreen, "bastion fix "+res.ID)
	}

	if f.Explain {
		if res.Rationale != "" {
			f.writeLabel(w, p, "Why:", cYellowBold, res.Rationale)
		}
		if res.ManualSteps != "" && res.Status != types.StatusPass {
			f.writeBlock(w, p, "Manual:", cYellowBold, res.ManualSteps)
		}
		for _, ref := range res.References {
			f.writeLabel(w, p, "Ref:", cCyan, ref)
		}
	}
}

// writeLabel emits one detail line: prefix + colored label + wrapped value.
func (f *TextFormatter) writeLabel(w io.Writer, prefix, label string, colorFn func(a ...any) string, value string) {
	colored := colorFn(fmt.Sprintf("%-*s", labelWidth, label))
	fmt.Fprintf(w, "%s%s%s\n", prefix, colored, f.wrap(value, colValue, colValue))
}

// writeBlock emits a multi-line value with every line aligned at colValue.
func (f *TextFormatter) writeBlock(w io.Writer, prefix, label string, colorFn func(a ...any) string, value string) {
	lines := nonEmptyLines(value)
	if len(lines) == 0 {
		return
	}
	f.writeLabel(w, prefix, label, colorFn, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(w, "%s%s\n", colPad(colValue), f.wrap(line, colValue, colValue))
	}
}

var severityOrder = []string{"critical", "high", "medium", "low", "info"}

func (f *TextFormatter) sortResults(results []types.CheckResult) []types.CheckResult {
	rank := make(map[string]int, len(severityOrder))
	for i, s := range severityOrder {
		rank[s] = i
	}
	sorted := append([]types.CheckResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := rank[sorted[i].Severity], rank[sorted[j].Severity]
		if si != sj {
			return si < sj
		}
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func (f *TextFormatter) wrap(text string, startCol, wrapCol int) string {
	w := f.wrapWidth()
	if startCol+len(text) <= w {
		return text
	}

	avail := w - startCol
	if avail < 20 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	wrapPad := colPad(wrapCol)
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > avail {
			b.WriteByte('\n')
			b.WriteString(wrapPad)
			b.WriteString(word)
			lineLen = len(word)
			avail = w - wrapCol
		} else {
			b.WriteByte(' ')
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}
	return b.String()
}

func (f *TextFormatter) icon(name string) string {
	return icon(name, f.Dumb)
}

func icon(name string, dumb bool) string {
	if dumb {
		switch name {
		case "pass":
			return "+"
		case "fail":
			return "x"
		case "warn", "shield":
			return "!"
		case "unknown":
			return "?"
		case "section":
			return ">"
		default:
			return "?"
		}
	}
	switch name {
	case "pass":
		return "✓"
	case "fail":
		return "✗"
	case "warn":
		return "⚠"
	case "unknown":
		return "?"
	case "shield":
		return "🛡"
	case "section":
		return "▸"
	default:
		return "?"
	}
}

func (f *TextFormatter) statusIcon(s types.CheckStatus) string {
	switch s {
	case types.StatusPass:
		return cGreen(f.icon("pass"))
	case types.StatusFail:
		return cRed(f.icon("fail"))
	case types.StatusWarning:
		return cYellow(f.icon("warn"))
	default:
		return cDim(f.icon("unknown"))
	}
}

func coloredBadge(sev string) string {
	padded := fmt.Sprintf("%-*s", badgeWidth, severityBadgeRaw(sev))
	switch sev {
	case "critical":
		return cRedBold(padded)
	case "high":
		return cRed(padded)
	case "medium":
		return cYellow(padded)
	case "low":
		return cGreen(padded)
	case "info":
		return cDim(padded)
	default:
		return padded
	}
}

func severityBadgeRaw(sev string) string {
	switch sev {
	case "critical":
		return "[CRIT]"
	case "high":
		return "[HIGH]"
	case "medium":
		return "[MED]"
	case "low":
		return "[LOW]"
	case "info":
		return "[INFO]"
	default:
		return "[----]"
	}
}

func durationRaw(r types.CheckResult) string {
	ms := r.DurationMS
	if ms <= 0 {
		ms = r.Duration.Milliseconds()
	}
	if ms < 1 {
		return "(<1ms)"
	}
	return fmt.Sprintf("(%dms)", ms)
}

func colPad(n int) string {
	return strings.Repeat(" ", n)
}

// nonEmptyLines splits text into trimmed lines, dropping blank ones.
func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func truncateLines(text string, n int) string {
	lines := nonEmptyLines(text)
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more line(s), use --explain", len(lines)-n)
}
