// Package probe executes the external commands that interrogate and mutate
// OS security settings. It is the only package that starts processes.
package probe

import (
	"context"
	"strings"
)

// Command describes a single external invocation.
type Command struct {
	// Name is the allowlisted binary name (e.g., "netsh").
	Name string

	// Args are passed verbatim, without shell interpretation.
	Args []string

	// Elevated requests administrative rights for the invocation.
	Elevated bool

	// CaptureStderr keeps the diagnostic stream in Output.Stderr.
	// When false the stream is discarded.
	CaptureStderr bool
}

// String renders the command line for logs and evidence.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Output is what a finished command produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit indicator.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner runs commands. Run returns an error only when the command could not
// be executed at all (rejected, missing, timed out). A non-zero exit is
// reported through Output.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}
