package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ancients-collective/bastion/internal/profiles"
	"github.com/ancients-collective/bastion/internal/sweep"
)

// SweepPrinter renders sweep progress as matches stream in.
type SweepPrinter struct {
	Dumb bool

	count int
}

// Start prints the sweep parameters.
func (p *SweepPrinter) Start(w io.Writer, sw *sweep.Sweep) {
	cfg := sw.Config()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cBold(icon("section", p.Dumb)+" Sweep"))
	fmt.Fprintf(w, "    Extensions: %s\n", strings.Join(cfg.Extensions, " "))
	if cfg.MinSize > 0 {
		fmt.Fprintf(w, "    Min size:   %s\n", sweep.FormatSize(cfg.MinSize))
	}
	if !cfg.ModifiedSince.IsZero() {
		fmt.Fprintf(w, "    Since:      %s\n", cfg.ModifiedSince.Format("2006-01-02"))
	}
	roots := sw.Roots()
	if len(roots) == 0 {
		fmt.Fprintf(w, "    Roots:      %s\n", cDim("(none found)"))
	}
	for i, r := range roots {
		label := "Roots:"
		if i > 0 {
			label = ""
		}
		fmt.Fprintf(w, "    %-11s %s\n", label, r)
	}
	fmt.Fprintln(w)
}

// Batch prints one streamed batch of matches.
func (p *SweepPrinter) Batch(w io.Writer, batch []sweep.Match) {
	for _, m := range batch {
		p.count++
		fmt.Fprintf(w, "    %s %s  %s  %s  %s\n",
			cDim(fmt.Sprintf("%4d", p.count)),
			cBold(fmt.Sprintf("%10s", sweep.FormatSize(m.Size))),
			m.Modified.Format(sweep.TimeLayout),
			m.Path,
			attributeTag(m.Attributes),
		)
	}
}

// Finish prints the terminal state and counters.
func (p *SweepPrinter) Finish(w io.Writer, sw *sweep.Sweep) {
	stats := sw.Stats()
	rule := cDim(strings.Repeat("─", ruleWidth))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", rule)

	switch sw.State() {
	case sweep.StateCompleted:
		fmt.Fprintf(w, "  %s %s\n", cGreenBold(icon("pass", p.Dumb)),
			cGreenBold(fmt.Sprintf("Sweep complete. Found %d file(s).", stats.Matches)))
	case sweep.StateCancelled:
		fmt.Fprintf(w, "  %s %s\n", cYellowBold(icon("warn", p.Dumb)),
			cYellowBold(fmt.Sprintf("Sweep cancelled. Found %d file(s) before stopping.", stats.Matches)))
	case sweep.StateFailed:
		fmt.Fprintf(w, "  %s %s\n", cRedBold(icon("fail", p.Dumb)),
			cRedBold(fmt.Sprintf("Sweep failed: %v", sw.Err())))
	}

	fmt.Fprintf(w, "  %s  %d directories · %d files examined · %s\n",
		cBold("Scanned:"), stats.Directories, stats.Files, stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  %s\n", rule)
}

func attributeTag(attrs string) string {
	if attrs == "" || attrs == "Normal" {
		return ""
	}
	return cYellow("[" + attrs + "]")
}

// WriteUsers lists profile names.
func WriteUsers(w io.Writer, root string, users []string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", cBold("User profiles in"), root)
	for _, u := range users {
		fmt.Fprintf(w, "    %s\n", u)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cDim(fmt.Sprintf("Found %d user profile(s)", len(users))))
}

// WriteListing renders a profile's default folders, one row per entry.
func WriteListing(w io.Writer, l *profiles.Listing) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", cBold("Profile"), l.Path)

	current := ""
	for _, e := range l.Entries {
		if e.Folder != current {
			current = e.Folder
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s%s %s\n", colPad(colMargin), cDim("──"), cBold(current))
		}
		size := ""
		name := e.Name
		if e.Kind == profiles.KindFile {
			size = sweep.FormatSize(e.Size)
		} else {
			name = cCyan(name + "/")
		}
		fmt.Fprintf(w, "      %-6s %10s  %s  %s %s\n",
			e.Kind, size, e.Modified.Format("2006-01-02 15:04"), name, attributeTag(e.Attributes))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cDim(fmt.Sprintf("Loaded %d folder(s), %d file(s) from %s's default locations",
		l.Folders, l.Files, l.User)))
}
