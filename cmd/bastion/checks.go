package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/bastion/internal/catalog"
	"github.com/ancients-collective/bastion/internal/checks"
)

func newChecksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the available checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.New(checks.BuiltinIDs()).Load(a.cfg.Catalog)
			if err != nil {
				return fmt.Errorf("failed to load check catalog: %w", err)
			}
			printCheckList(a.stdout, entries)
			return nil
		},
	}
}

// printCheckList prints a table of check IDs in catalog order.
func printCheckList(w io.Writer, entries []catalog.Entry) {
	maxID := 0
	for _, e := range entries {
		if len(e.ID) > maxID {
			maxID = len(e.ID)
		}
	}

	fmt.Fprintf(w, "\n  Available checks (%d):\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "    %-*s  %-8s  %-10s  %s\n", maxID, e.ID, e.Severity, e.Category, e.Name)
	}
	fmt.Fprintln(w)
}
