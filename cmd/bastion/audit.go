package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ancients-collective/bastion/internal/catalog"
	"github.com/ancients-collective/bastion/internal/checks"
	"github.com/ancients-collective/bastion/internal/output"
	"github.com/ancients-collective/bastion/internal/sysdetect"
	"github.com/ancients-collective/bastion/internal/types"
)

type auditOptions struct {
	checkID    string
	show       string
	format     string
	outputFile string
	quiet      bool
	explain    bool
}

func newAuditCommand(a *app) *cobra.Command {
	var opts auditOptions
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run every security check and report the results",
		Long: `Run the security checks and print a report.

Exit codes: 0 = no issues, 1 = at least one check failed or warned,
2 = no issues but some checks could not determine a status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAudit(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.checkID, "check", "", "Run a single check by its ID")
	f.StringVarP(&opts.show, "show", "s", output.ShowFindings, "Which results to display: findings, all, fail, pass")
	f.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json, jsonl")
	f.StringVarP(&opts.outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Print nothing; exit code only")
	f.BoolVar(&opts.explain, "explain", false, "Show rationale, manual steps and full evidence")
	return cmd
}

func (a *app) runAudit(ctx context.Context, opts auditOptions) error {
	if err := validateAuditFlags(opts); err != nil {
		return err
	}
	if opts.format != "text" || opts.outputFile != "" {
		color.NoColor = true
	}

	reg, err := a.buildRegistry()
	if err != nil {
		return err
	}

	ids := reg.IDs()
	if opts.checkID != "" {
		if !reg.Contains(opts.checkID) {
			a.reportUnknownCheck(reg, opts.checkID)
			return exitWith(exitIssues)
		}
		ids = []string{opts.checkID}
		opts.show = output.ShowAll
	}

	sys, warnings, err := sysdetect.DetectSystemContext(a.detector)
	if err != nil {
		return fmt.Errorf("failed to detect system context: %w", err)
	}
	if !opts.quiet {
		for _, w := range warnings {
			fmt.Fprintf(a.stderr, "  %s %s\n", warnIcon(a.dumb), w)
		}
	}

	start := time.Now()
	showProgress := opts.format == "text" && !opts.quiet && opts.outputFile == ""
	results := a.executeChecks(ctx, reg, ids, showProgress)

	summary := types.Summarize(results)
	summary.DurationMS = time.Since(start).Milliseconds()

	if opts.quiet {
		return exitWith(auditExitCode(summary))
	}

	report := buildAuditReport(sys, opts.show, start, summary, results)
	return a.writeReport(opts, report)
}

func validateAuditFlags(opts auditOptions) error {
	switch opts.show {
	case output.ShowFindings, output.ShowAll, output.ShowFail, output.ShowPass:
	default:
		return fmt.Errorf("invalid --show value %q (must be findings, all, fail, or pass)", opts.show)
	}
	switch opts.format {
	case "text", "json", "jsonl":
	default:
		return fmt.Errorf("invalid --format value %q (must be text, json, or jsonl)", opts.format)
	}
	return nil
}

// buildRegistry loads the catalog (with the configured override) and builds
// the check registry on the configured runner.
func (a *app) buildRegistry() (*checks.Registry, error) {
	entries, err := catalog.New(checks.BuiltinIDs()).Load(a.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load check catalog: %w", err)
	}
	return checks.NewRegistry(a.newRunner(a.cfg, a.log), entries, a.log)
}

func (a *app) reportUnknownCheck(reg *checks.Registry, id string) {
	fmt.Fprintf(a.stderr, "  %s No check found with ID %q\n", failIcon(a.dumb), id)
	if suggestions := reg.Suggest(id); len(suggestions) > 0 {
		fmt.Fprintf(a.stderr, "\n  Did you mean:\n")
		for _, s := range suggestions {
			fmt.Fprintf(a.stderr, "    • %s\n", s)
		}
	}
	fmt.Fprintf(a.stderr, "\n  Use 'bastion checks' to see all available check IDs.\n")
}

// executeChecks runs the given checks in registry order with optional
// progress output.
func (a *app) executeChecks(ctx context.Context, reg *checks.Registry, ids []string, showProgress bool) []types.CheckResult {
	if !showProgress && len(ids) == reg.Len() {
		return reg.RunAll(ctx)
	}

	results := make([]types.CheckResult, 0, len(ids))
	for i, id := range ids {
		if showProgress {
			fmt.Fprintf(a.stderr, "\r  Auditing... %d/%d", i+1, len(ids))
		}
		res, err := reg.Run(ctx, id)
		if err != nil {
			continue
		}
		results = append(results, res)
	}
	if showProgress {
		fmt.Fprintf(a.stderr, "\r  Auditing... done    \n")
	}
	return results
}

func buildAuditReport(sys types.SystemContext, show string, start time.Time,
	summary types.AuditSummary, results []types.CheckResult,
) *types.AuditReport {
	display := make([]types.CheckResult, 0, len(results))
	for _, r := range results {
		if output.ShouldDisplay(r, show) {
			display = append(display, r)
		}
	}

	return &types.AuditReport{
		Version:   version,
		Timestamp: start,
		System: types.AuditSystem{
			Hostname:        sys.Hostname,
			OS:              sys.OS.Name,
			OSVersion:       sys.OS.Version,
			Arch:            sys.OS.Arch,
			Platform:        sys.OS.Platform,
			PlatformVersion: sys.OS.PlatformVersion,
			Elevated:        sys.Elevated,
		},
		Show:    show,
		Summary: summary,
		Results: display,
	}
}

// writeReport formats the report to stdout or a file and returns the audit
// exit status.
func (a *app) writeReport(opts auditOptions, report *types.AuditReport) error {
	var formatter output.Formatter
	switch opts.format {
	case "json":
		formatter = &output.JSONFormatter{}
	case "jsonl":
		formatter = &output.JSONLFormatter{}
	default:
		width := 0
		if opts.outputFile == "" {
			width = a.termWidth()
		}
		formatter = &output.TextFormatter{
			Explain: opts.explain,
			Show:    opts.show,
			Width:   width,
			Dumb:    a.dumb,
		}
	}

	var w io.Writer = a.stdout
	if opts.outputFile != "" {
		f, err := createOutputFile(opts.outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := formatter.Write(w, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.outputFile != "" {
		s := report.Summary
		fmt.Fprintf(a.stderr, "  %s Audit complete: %d passed · %d issues · %d unknown, written to %s\n",
			okIcon(a.dumb), s.Passed, s.Issues, s.Unknown, opts.outputFile)
	}

	return exitWith(auditExitCode(report.Summary))
}

// auditExitCode returns 0 when clean, 1 when any issue exists and 2 when the
// only problems are checks with unknown status.
func auditExitCode(s types.AuditSummary) int {
	if s.Issues > 0 {
		return exitIssues
	}
	if s.Unknown > 0 {
		return exitUnknown
	}
	return exitOK
}

// unsafeOutputPrefixes are locations where report and export files are
// refused, so an elevated run cannot overwrite system files.
var unsafeOutputPrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/", "/sbin/", "/bin/", "/usr/"}

var unsafeWindowsPrefixes = []string{`c:\windows\`, `c:\program files\`, `c:\program files (x86)\`}

// validateOutputPath checks that the output file path is safe to write to.
func validateOutputPath(path string) error {
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		return nil
	}
	if runtime.GOOS == "windows" {
		lower := strings.ToLower(cleaned)
		for _, prefix := range unsafeWindowsPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return fmt.Errorf("refusing to write to system path %q", cleaned)
			}
		}
		return nil
	}
	for _, prefix := range unsafeOutputPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return fmt.Errorf("refusing to write to system path %q", cleaned)
		}
	}
	return nil
}

func createOutputFile(path string) (*os.File, error) {
	if err := validateOutputPath(path); err != nil {
		return nil, fmt.Errorf("unsafe output path: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
