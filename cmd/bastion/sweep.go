package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/bastion/internal/output"
	"github.com/ancients-collective/bastion/internal/sweep"
)

type sweepOptions struct {
	extensions    string
	minSizeMB     float64
	since         string
	includeSystem bool
	interval      time.Duration
	export        string
}

func newSweepCommand(a *app) *cobra.Command {
	var opts sweepOptions
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Search user folders for files with the given extensions",
		Long: `Walk the user profile root and the temp directory (and system
folders with --include-system) for files matching the extension, size and
date filters. Matches are printed as they are found; Ctrl-C stops the sweep
and keeps what was found so far.

Exit codes: 0 = completed, 130 = cancelled, 1 = failed or invalid options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSweep(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.extensions, "ext", "", "Comma-separated extensions, e.g. exe,mp3 (default from config)")
	f.Float64Var(&opts.minSizeMB, "min-size-mb", 0, "Only files of at least this many MB")
	f.StringVar(&opts.since, "since", "", "Only files modified on or after this date (YYYY-MM-DD)")
	f.BoolVar(&opts.includeSystem, "include-system", false, "Also sweep system folders")
	f.DurationVar(&opts.interval, "interval", sweep.DefaultInterval, "How often found files are printed")
	f.StringVar(&opts.export, "export", "", "Export matches to a .csv, .json or .yaml file")
	return cmd
}

// sweepConfig merges config defaults with the flags that were set.
func (a *app) sweepConfig(cmd *cobra.Command, opts sweepOptions) (sweep.Config, time.Duration, error) {
	def := a.cfg.Sweep
	cfg := sweep.Config{
		Extensions:    def.Extensions,
		MinSize:       sweep.MegabytesToBytes(def.MinSizeMB),
		IncludeSystem: def.IncludeSystem,
	}
	interval := def.Interval

	flags := cmd.Flags()
	if flags.Changed("ext") {
		cfg.Extensions = sweep.ParseExtensions(opts.extensions)
	}
	if flags.Changed("min-size-mb") {
		if opts.minSizeMB < 0 || math.IsNaN(opts.minSizeMB) {
			return cfg, 0, fmt.Errorf("%w: minimum size must be 0 or greater", sweep.ErrInvalidConfig)
		}
		cfg.MinSize = sweep.MegabytesToBytes(opts.minSizeMB)
	}
	if flags.Changed("include-system") {
		cfg.IncludeSystem = opts.includeSystem
	}
	if flags.Changed("interval") {
		interval = opts.interval
	}
	if opts.since != "" {
		t, err := time.ParseInLocation("2006-01-02", opts.since, time.Local)
		if err != nil {
			return cfg, 0, fmt.Errorf("invalid --since value %q (want YYYY-MM-DD)", opts.since)
		}
		cfg.ModifiedSince = t
	}
	return cfg, interval, nil
}

func (a *app) sweepLocations() sweep.Locations {
	l := a.cfg.Sweep.Locations
	return sweep.DefaultLocations().Override(sweep.Locations{
		User:   l.User,
		Temp:   l.Temp,
		System: l.System,
	})
}

func (a *app) runSweep(cmd *cobra.Command, opts sweepOptions) error {
	cfg, interval, err := a.sweepConfig(cmd, opts)
	if err != nil {
		return err
	}
	if opts.export != "" {
		if err := validateOutputPath(opts.export); err != nil {
			return fmt.Errorf("unsafe export path: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	scanner := sweep.NewScanner(
		sweep.WithLocations(a.sweepLocations()),
		sweep.WithLogger(a.log),
	)
	sw, err := scanner.Start(ctx, cfg)
	if err != nil {
		return err
	}

	printer := &output.SweepPrinter{Dumb: a.dumb}
	printer.Start(a.stdout, sw)
	state := sw.Stream(ctx, interval, func(batch []sweep.Match) {
		printer.Batch(a.stdout, batch)
	})
	printer.Finish(a.stdout, sw)

	if opts.export != "" {
		if err := exportMatches(opts.export, sw.Results()); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "  %s Exported %d file(s) to %s\n", okIcon(a.dumb), len(sw.Results()), opts.export)
	}

	return exitWith(sweepExitCode(state))
}

func exportMatches(path string, matches []sweep.Match) (err error) {
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	if err := sweep.Export(f, sweep.FormatFromPath(path), matches); err != nil {
		return fmt.Errorf("failed to export matches: %w", err)
	}
	return nil
}

// sweepExitCode maps a terminal sweep state to the process exit code.
func sweepExitCode(s sweep.State) int {
	switch s {
	case sweep.StateCompleted:
		return exitOK
	case sweep.StateCancelled:
		return exitCancelled
	default:
		return exitIssues
	}
}
