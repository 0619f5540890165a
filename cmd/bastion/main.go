// Package main is the entry point for bastion, a workstation posture auditor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ancients-collective/bastion/internal/config"
	"github.com/ancients-collective/bastion/internal/logging"
	"github.com/ancients-collective/bastion/internal/output"
	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/sysdetect"
)

// version is set at build time via -ldflags.
var version = "0.4.0"

// Exit codes shared by every command.
const (
	exitOK        = 0
	exitIssues    = 1
	exitUnknown   = 2
	exitCancelled = 130
)

// exitError carries a non-zero exit code out of a command without printing
// anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	if code == exitOK {
		return nil
	}
	return &exitError{code: code}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	catalog    string
	logLevel   string
	logFormat  string
	verbose    bool
	noColor    bool
}

// app holds the collaborators of one CLI invocation. Tests replace the
// runner, detector and terminal hooks.
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	// newRunner builds the probe runner once config is loaded.
	newRunner func(cfg *config.Config, log *logging.Logger) probe.Runner
	detector  sysdetect.Detector
	// interactive reports whether stdin is a terminal a human can answer.
	interactive func() bool
	// termWidth returns the stdout terminal width, or 0 when unknown.
	termWidth func() int

	flags globalFlags
	cfg   *config.Config
	log   *logging.Logger
	dumb  bool
}

func newApp() *app {
	return &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
		newRunner: func(cfg *config.Config, log *logging.Logger) probe.Runner {
			return probe.NewAllowlistRunner(nil,
				probe.WithLogger(log),
				probe.WithTimeouts(cfg.Probe.CheckTimeout, cfg.Probe.FixTimeout),
			)
		},
		detector: sysdetect.NewDetector(),
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		termWidth: func() int {
			fd := int(os.Stdout.Fd())
			if !term.IsTerminal(fd) {
				return 0
			}
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				return w
			}
			return 0
		},
	}
}

func main() {
	os.Exit(execute(context.Background(), newApp(), os.Args[1:]))
}

// execute runs the CLI and maps the outcome to a process exit code.
func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(a.stderr, "  %s %v\n", failIcon(a.dumb), err)
	return exitIssues
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bastion",
		Short: "Audit and harden workstation security settings",
		Long: `bastion checks a fixed set of operating system security settings,
reports their status with the evidence it saw, applies fixes on request and
sweeps user folders for unwanted files.

Examples:
  bastion audit                          Show findings
  bastion audit --show all               Show every check
  bastion audit --format json -o a.json  Write a JSON report
  bastion fix firewall                   Check, fix and verify one setting
  bastion sweep --ext mp3,exe            Look for media and executables
  bastion users alice                    Browse a user's default folders`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Path to bastion.yaml (default: ./bastion.yaml, then the user config dir)")
	pf.StringVar(&a.flags.catalog, "catalog", "", "YAML file overriding check descriptions")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "Log format: text, json")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Debug logging (same as --log-level debug)")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newAuditCommand(a),
		newFixCommand(a),
		newVerifyCommand(a),
		newChecksCommand(a),
		newSweepCommand(a),
		newUsersCommand(a),
	)
	return root
}

// setup loads config, applies global flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.catalog != "" {
		cfg.Catalog = a.flags.catalog
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.verbose {
		cfg.Log.Level = string(logging.LogLevelDebug)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logging.New(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Format: logging.LogFormat(cfg.Log.Format),
		Output: a.stderr,
	})
	a.dumb = output.IsDumbTerm()
	if a.flags.noColor || a.dumb {
		color.NoColor = true
	}

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.log))
	a.log.WithComponent("cli").WithField("command", cmd.Name()).Debug("config loaded")
	return nil
}

func failIcon(dumb bool) string {
	if dumb {
		return "x"
	}
	return "✗"
}

func warnIcon(dumb bool) string {
	if dumb {
		return "!"
	}
	return "⚠"
}

func okIcon(dumb bool) string {
	if dumb {
		return "+"
	}
	return "✓"
}
