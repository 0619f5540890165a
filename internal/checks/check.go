// Package checks implements the check/fix/verify contract, the built-in
// workstation security checks and the registry that owns them.
package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/bastion/internal/catalog"
	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/types"
)

// SecurityCheck audits one OS setting.
//
// Implementations are not safe for concurrent use; the Registry serializes
// calls per check.
type SecurityCheck interface {
	// ID is the stable identifier. It never changes after construction.
	ID() string
	Name() string
	Description() string
	Rationale() string
	ManualSteps() string

	// Status and Evidence reflect the most recent Check or Verify.
	Status() types.CheckStatus
	Evidence() string

	// Check runs the read-only probe and classifies its output. It never
	// panics; execution failures set StatusUnknown with the failure as
	// evidence.
	Check(ctx context.Context)

	// Fix runs the privileged remediation command and reports whether it
	// exited successfully. It does not change Status.
	Fix(ctx context.Context) bool

	// Verify re-runs Check and reports whether the status is now pass.
	Verify(ctx context.Context) bool

	// Result returns a snapshot for reporting.
	Result() types.CheckResult
}

// Classifier maps a probe's standard output to a status.
type Classifier func(stdout string) types.CheckStatus

// Definition is what a concrete check contributes: its probe, the rule that
// classifies the probe's output and the remediation command.
type Definition struct {
	ID string

	// Subject names the setting in failure evidence ("Error checking <subject>: ...").
	Subject string

	Probe    probe.Command
	Classify Classifier
	Remedy   probe.Command
}

// probeCheck is the single SecurityCheck implementation; concrete checks
// differ only in their Definition.
type probeCheck struct {
	def    Definition
	meta   catalog.Entry
	runner probe.Runner
	log    *logrus.Entry

	status   types.CheckStatus
	evidence string
	duration time.Duration
}

// newProbeCheck pairs a definition with its catalog metadata.
func newProbeCheck(def Definition, meta catalog.Entry, runner probe.Runner, log *logrus.Entry) *probeCheck {
	return &probeCheck{
		def:    def,
		meta:   meta,
		runner: runner,
		log:    log.WithField("check", def.ID),
		status: types.StatusUnknown,
	}
}

func (c *probeCheck) ID() string                { return c.def.ID }
func (c *probeCheck) Name() string              { return c.meta.Name }
func (c *probeCheck) Description() string       { return c.meta.Description }
func (c *probeCheck) Rationale() string         { return c.meta.Rationale }
func (c *probeCheck) ManualSteps() string       { return c.meta.ManualSteps }
func (c *probeCheck) Status() types.CheckStatus { return c.status }
func (c *probeCheck) Evidence() string          { return c.evidence }

// Check executes the probe. Diagnostic output takes precedence over content:
// any stderr text yields StatusUnknown with the text appended to the evidence.
func (c *probeCheck) Check(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.status = types.StatusUnknown
			c.evidence = fmt.Sprintf("Error checking %s: %v", c.def.Subject, r)
		}
		c.duration = time.Since(start)
		c.log.WithFields(logrus.Fields{
			"status":   c.status,
			"duration": c.duration.Round(time.Millisecond),
		}).Debug("check finished")
	}()

	out, err := c.runner.Run(ctx, c.def.Probe)
	if err != nil {
		c.status = types.StatusUnknown
		c.evidence = fmt.Sprintf("Error checking %s: %v", c.def.Subject, err)
		return
	}

	c.evidence = out.Stdout
	if out.Stderr != "" {
		c.status = types.StatusUnknown
		c.evidence += "\nError: " + out.Stderr
		return
	}

	c.status = c.def.Classify(out.Stdout)
}

// Fix runs the remediation command. A declined elevation prompt surfaces as a
// non-zero exit and yields false like any other failure.
func (c *probeCheck) Fix(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Warn("remediation panicked")
			ok = false
		}
	}()

	out, err := c.runner.Run(ctx, c.def.Remedy)
	if err != nil {
		c.log.WithError(err).Warn("remediation could not run")
		return false
	}
	if !out.Success() {
		c.log.WithField("exit_code", out.ExitCode).Warn("remediation failed")
		return false
	}
	c.log.Info("remediation applied")
	return true
}

// Verify re-runs Check and reports whether the setting now passes.
func (c *probeCheck) Verify(ctx context.Context) bool {
	c.Check(ctx)
	return c.status == types.StatusPass
}

func (c *probeCheck) Result() types.CheckResult {
	return types.CheckResult{
		ID:          c.def.ID,
		Name:        c.meta.Name,
		Category:    c.meta.Category,
		Severity:    c.meta.Severity,
		Status:      c.status,
		Evidence:    c.evidence,
		Description: c.meta.Description,
		Rationale:   c.meta.Rationale,
		ManualSteps: c.meta.ManualSteps,
		References:  c.meta.References,
		Tags:        c.meta.Tags,
		Duration:    c.duration,
		DurationMS:  c.duration.Milliseconds(),
	}
}
