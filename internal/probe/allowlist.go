package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/bastion/internal/logging"
)

// CommandSpec defines the constraints for an allowlisted command.
type CommandSpec struct {
	// Name is the command name callers use.
	Name string

	// Path is the resolved absolute path to the command binary.
	// Resolved at construction time via exec.LookPath, with a hardcoded fallback.
	Path string

	// FallbackPath is the hardcoded path used when LookPath fails.
	FallbackPath string

	// AllowedLeads are the permitted first arguments (verb or leading flag).
	AllowedLeads []string

	// MaxArgs is the maximum number of arguments allowed.
	MaxArgs int

	// Timeout is the maximum execution time for this command.
	Timeout time.Duration
}

// AllowlistRunner executes only pre-approved commands with validated arguments.
// This is the security boundary that prevents arbitrary command execution.
type AllowlistRunner struct {
	allowlist  map[string]CommandSpec
	elevator   Elevator
	fixTimeout time.Duration
	log        *logrus.Entry
}

// Option configures an AllowlistRunner.
type Option func(*AllowlistRunner)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *logging.Logger) Option {
	return func(r *AllowlistRunner) {
		if l != nil {
			r.log = l.WithComponent("probe")
		}
	}
}

// WithElevator replaces the platform elevation strategy.
func WithElevator(e Elevator) Option {
	return func(r *AllowlistRunner) {
		r.elevator = e
	}
}

// WithTimeouts overrides the timeouts of every spec: check for read-only
// commands and fix for commands requesting elevation.
func WithTimeouts(check, fix time.Duration) Option {
	return func(r *AllowlistRunner) {
		for name, spec := range r.allowlist {
			if check > 0 {
				spec.Timeout = check
			}
			r.allowlist[name] = spec
		}
		r.fixTimeout = fix
	}
}

// resolveCommandPath attempts to find the command using exec.LookPath.
// Falls back to the provided default path if LookPath fails.
func resolveCommandPath(name, fallbackPath string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return fallbackPath
}

// DefaultSpecs is the allowlist used by the built-in security checks.
func DefaultSpecs() []CommandSpec {
	return []CommandSpec{
		{Name: "netsh", FallbackPath: `C:\Windows\System32\netsh.exe`, AllowedLeads: []string{"advfirewall"}, MaxArgs: 5, Timeout: 30 * time.Second},
		{Name: "net", FallbackPath: `C:\Windows\System32\net.exe`, AllowedLeads: []string{"user"}, MaxArgs: 3, Timeout: 30 * time.Second},
		{Name: "reg", FallbackPath: `C:\Windows\System32\reg.exe`, AllowedLeads: []string{"query", "add"}, MaxArgs: 9, Timeout: 30 * time.Second},
		{Name: "powershell", FallbackPath: `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`, AllowedLeads: []string{"-NoProfile", "-Command"}, MaxArgs: 5, Timeout: 60 * time.Second},
	}
}

// NewAllowlistRunner creates a runner for the given specs. With no specs the
// DefaultSpecs allowlist is used. Command paths are resolved via
// exec.LookPath at construction time.
func NewAllowlistRunner(specs []CommandSpec, opts ...Option) *AllowlistRunner {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}

	allowlist := make(map[string]CommandSpec, len(specs))
	for _, s := range specs {
		if s.Path == "" {
			s.Path = resolveCommandPath(s.Name, s.FallbackPath)
		}
		allowlist[s.Name] = s
	}

	r := &AllowlistRunner{
		allowlist: allowlist,
		elevator:  platformElevator(),
		log:       logging.Discard().WithComponent("probe"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsAllowed checks whether a command is in the allowlist.
func (r *AllowlistRunner) IsAllowed(cmd string) bool {
	_, ok := r.allowlist[cmd]
	return ok
}

// Run executes an allowlisted command with validated arguments.
// Never uses shell invocation on the caller's behalf; elevation may wrap the
// command in a PowerShell Start-Process call (see Elevator).
func (r *AllowlistRunner) Run(ctx context.Context, cmd Command) (Output, error) {
	spec, ok := r.allowlist[cmd.Name]
	if !ok {
		return Output{}, fmt.Errorf("command %q not in allowlist", cmd.Name)
	}

	if err := ValidateArgs(spec, cmd.Args); err != nil {
		return Output{}, err
	}

	path, args := spec.Path, cmd.Args
	timeout := spec.Timeout
	if cmd.Elevated {
		if r.fixTimeout > 0 {
			timeout = r.fixTimeout
		}
		if r.elevator != nil && r.elevator.NeedsWrap() {
			path, args = r.elevator.Wrap(spec.Path, cmd.Args)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	execCmd := exec.CommandContext(ctx, path, args...)
	execCmd.WaitDelay = 2 * time.Second
	execCmd.Stdout = &stdout
	if cmd.CaptureStderr {
		execCmd.Stderr = &stderr
	}
	hideWindow(execCmd)

	start := time.Now()
	err := execCmd.Run()
	log := r.log.WithFields(logrus.Fields{
		"command":  cmd.String(),
		"elevated": cmd.Elevated,
		"duration": time.Since(start).Round(time.Millisecond),
	})

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Debug("command timed out")
		return Output{}, fmt.Errorf("command %q timed out after %v", cmd.Name, timeout)
	}

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.WithError(err).Debug("command failed to start")
			return Output{}, fmt.Errorf("failed to execute %s: %w", cmd.Name, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	log.WithField("exit_code", out.ExitCode).Debug("command finished")
	return out, nil
}

// ValidateArgs checks that all arguments comply with the CommandSpec constraints.
func ValidateArgs(spec CommandSpec, args []string) error {
	if len(args) > spec.MaxArgs {
		return fmt.Errorf("too many arguments: got %d, max %d", len(args), spec.MaxArgs)
	}

	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("argument contains NUL byte")
		}
	}

	if len(spec.AllowedLeads) == 0 || len(args) == 0 {
		return nil
	}
	if !isAllowedLead(spec.AllowedLeads, args[0]) {
		return fmt.Errorf("argument %q not allowed for this command (allowed: %s)",
			args[0], strings.Join(spec.AllowedLeads, ", "))
	}
	return nil
}

// isAllowedLead checks if the first argument is in the allowed list.
// Comparison is case-insensitive because Windows tools accept any case.
func isAllowedLead(allowed []string, lead string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, lead) {
			return true
		}
	}
	return false
}
