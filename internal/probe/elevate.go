package probe

import (
	"fmt"
	"strings"
)

// errorCancelled is ERROR_CANCELLED, reported when the elevation prompt is
// declined or cannot be shown.
const errorCancelled = 1223

// Elevator decides whether an elevated command must be relaunched and how.
type Elevator interface {
	// NeedsWrap reports whether the current process lacks the rights the
	// command asks for.
	NeedsWrap() bool

	// Wrap returns the binary and arguments that run path+args elevated and
	// propagate its exit code.
	Wrap(path string, args []string) (string, []string)
}

type noopElevator struct{}

func (noopElevator) NeedsWrap() bool { return false }

func (noopElevator) Wrap(path string, args []string) (string, []string) { return path, args }

// RunAsArgs builds the PowerShell arguments that launch path with args through
// Start-Process -Verb RunAs, wait for it and exit with its exit code. A
// declined prompt exits with ERROR_CANCELLED.
func RunAsArgs(path string, args []string) []string {
	script := fmt.Sprintf(
		"try { $p = Start-Process -FilePath %s -ArgumentList %s -Verb RunAs -Wait -PassThru -WindowStyle Hidden -ErrorAction Stop; exit $p.ExitCode } catch { exit %d }",
		psQuote(path), psQuote(JoinWindowsArgs(args)), errorCancelled)
	return []string{"-NoProfile", "-NonInteractive", "-Command", script}
}

// JoinWindowsArgs joins args into one command line using the quoting rules
// of the Microsoft C runtime.
func JoinWindowsArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteWindowsArg(a)
	}
	return strings.Join(quoted, " ")
}

func quoteWindowsArg(a string) string {
	if a == "" {
		return `""`
	}
	if !strings.ContainsAny(a, " \t\"") {
		return a
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, c := range a {
		switch c {
		case '\\':
			slashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes*2+1))
			b.WriteRune(c)
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
			b.WriteRune(c)
		}
		slashes = 0
	}
	b.WriteString(strings.Repeat(`\`, slashes*2))
	b.WriteByte('"')
	return b.String()
}

// psQuote renders s as a PowerShell single-quoted literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
