package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/bastion/internal/checks"
	"github.com/ancients-collective/bastion/internal/types"
)

func newFixCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "fix <check-id>",
		Short: "Check one setting, apply its fix and verify the result",
		Long: `Run one check and, if it is not passing, apply its remediation after
confirmation, then verify it. Remediation needs administrative rights; a
non-elevated run requests elevation for the fix command only.

Exit codes: 0 = setting verified, 1 = fix declined, failed or not verified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFix(cmd.Context(), args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply the fix without asking")
	return cmd
}

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <check-id>",
		Short: "Re-run one check and report whether it passes",
		Long: `Re-run one check and print its status and evidence.

Exit codes: 0 = pass, 1 = fail or warning, 2 = unknown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd.Context(), args[0])
		},
	}
}

// lookupCheck builds the registry and resolves id, printing suggestions for
// unknown IDs.
func (a *app) lookupCheck(id string) (*checks.Registry, error) {
	reg, err := a.buildRegistry()
	if err != nil {
		return nil, err
	}
	if !reg.Contains(id) {
		a.reportUnknownCheck(reg, id)
		return nil, exitWith(exitIssues)
	}
	return reg, nil
}

func (a *app) runFix(ctx context.Context, id string, yes bool) error {
	reg, err := a.lookupCheck(id)
	if err != nil {
		return err
	}
	log := a.log.WithComponent("fix").WithField("check", id)

	res, err := reg.Run(ctx, id)
	if err != nil {
		return err
	}
	a.printResult(res)
	if res.Status == types.StatusPass {
		fmt.Fprintf(a.stdout, "\n  %s Already compliant, nothing to fix.\n", okIcon(a.dumb))
		return nil
	}

	if !yes {
		if !a.interactive() {
			return fmt.Errorf("refusing to change %s without --yes when stdin is not a terminal", res.Name)
		}
		if !a.confirm(fmt.Sprintf("Apply fix for %s?", res.Name)) {
			fmt.Fprintf(a.stdout, "\n  No changes made.\n")
			return exitWith(exitIssues)
		}
	}

	if !a.detector.DetectElevation() {
		fmt.Fprintf(a.stderr, "  %s Not running with administrative rights; the fix will request elevation.\n", warnIcon(a.dumb))
	}

	ok, err := reg.Fix(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn("remediation did not succeed")
		fmt.Fprintf(a.stdout, "\n  %s Fix failed for %s.\n", failIcon(a.dumb), res.Name)
		if res.ManualSteps != "" {
			fmt.Fprintf(a.stdout, "\n  Manual steps:\n%s\n", indent(res.ManualSteps, "    "))
		}
		return exitWith(exitIssues)
	}

	verified, after, err := reg.Verify(ctx, id)
	if err != nil {
		return err
	}
	log.WithField("verified", verified).Info("fix finished")
	if !verified {
		fmt.Fprintf(a.stdout, "\n  %s Fix applied but %s still reports %s.\n", warnIcon(a.dumb), after.Name, after.Status)
		if after.Evidence != "" {
			fmt.Fprintf(a.stdout, "%s\n", indent(after.Evidence, "    "))
		}
		return exitWith(exitIssues)
	}
	fmt.Fprintf(a.stdout, "\n  %s %s fixed and verified.\n", okIcon(a.dumb), after.Name)
	return nil
}

func (a *app) runVerify(ctx context.Context, id string) error {
	reg, err := a.lookupCheck(id)
	if err != nil {
		return err
	}
	_, res, err := reg.Verify(ctx, id)
	if err != nil {
		return err
	}
	a.printResult(res)
	return exitWith(auditExitCode(types.Summarize([]types.CheckResult{res})))
}

func (a *app) printResult(res types.CheckResult) {
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "  %s  %s  [%s]\n", statusLabel(res.Status), res.Name, res.ID)
	if res.Evidence != "" {
		fmt.Fprintf(a.stdout, "%s\n", indent(res.Evidence, "    "))
	}
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.stdout, "\n  %s [y/N] ", question)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func statusLabel(s types.CheckStatus) string {
	return strings.ToUpper(string(s))
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + strings.TrimRight(l, "\r")
	}
	return strings.Join(lines, "\n")
}
