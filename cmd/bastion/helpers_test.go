package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/bastion/internal/checks"
	"github.com/ancients-collective/bastion/internal/config"
	"github.com/ancients-collective/bastion/internal/logging"
	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/types"
)

// stubRunner answers probe commands by their rendered command line. A
// remediation can switch the probe answer of its check.
type stubRunner struct {
	mu      sync.Mutex
	outputs map[string]probe.Output
	after   map[string]probe.Output // remedy command line -> new probe output
	probeOf map[string]string       // remedy command line -> probe command line
	calls   []string
}

func newStubRunner() *stubRunner {
	r := &stubRunner{
		outputs: make(map[string]probe.Output),
		after:   make(map[string]probe.Output),
		probeOf: make(map[string]string),
	}
	for id, out := range passingOutputs {
		r.setProbe(id, out)
	}
	return r
}

var passingOutputs = map[string]probe.Output{
	checks.IDFirewall:           {Stdout: "Domain Profile Settings:\nState                                 ON\n"},
	checks.IDGuestAccount:       {Stdout: "User name    Guest\nAccount active    No\n"},
	checks.IDRemoteDesktop:      {Stdout: "    fDenyTSConnections    REG_DWORD    0x1\n"},
	checks.IDRealtimeProtection: {Stdout: "RealTimeProtectionEnabled\n-------------------------\n                     True\n"},
	checks.IDSMB1Protocol:       {Stdout: "   State\n   -----\nDisabled\n"},
}

func definition(id string) checks.Definition {
	for _, d := range checks.Builtins() {
		if d.ID == id {
			return d
		}
	}
	panic("no builtin " + id)
}

func (r *stubRunner) Run(_ context.Context, cmd probe.Command) (probe.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cmd.String()
	r.calls = append(r.calls, key)
	out, ok := r.outputs[key]
	if !ok {
		return probe.Output{}, fmt.Errorf("unexpected command %q", key)
	}
	if next, ok := r.after[key]; ok && out.Success() {
		r.outputs[r.probeOf[key]] = next
	}
	return out, nil
}

func (r *stubRunner) setProbe(id string, out probe.Output) {
	r.outputs[definition(id).Probe.String()] = out
}

// setRemedy makes the remediation of id return out; when out succeeds the
// probe answers with after from then on.
func (r *stubRunner) setRemedy(id string, out, after probe.Output) {
	def := definition(id)
	key := def.Remedy.String()
	r.outputs[key] = out
	r.after[key] = after
	r.probeOf[key] = def.Probe.String()
}

func (r *stubRunner) called(cmd probe.Command) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == cmd.String() {
			n++
		}
	}
	return n
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// stubDetector reports a fixed Windows host.
type stubDetector struct {
	elevated bool
}

func (d stubDetector) DetectOS() (types.OSInfo, error) {
	return types.OSInfo{Name: "windows", Version: "10.0.22631", Arch: "amd64", Platform: "Microsoft Windows 11 Pro"}, nil
}

func (d stubDetector) DetectHostname() (string, error) { return "WS-01", nil }

func (d stubDetector) DetectElevation() bool { return d.elevated }

// testEnv is one isolated CLI invocation environment.
type testEnv struct {
	app     *app
	runner  *stubRunner
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	cfgPath string
	users   string
	temp    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		runner: newStubRunner(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		users:  filepath.Join(dir, "Users"),
		temp:   filepath.Join(dir, "Temp"),
	}
	require.NoError(t, os.MkdirAll(env.users, 0o755))
	require.NoError(t, os.MkdirAll(env.temp, 0o755))

	env.cfgPath = filepath.Join(dir, "bastion.yaml")
	cfg := fmt.Sprintf("log:\n  level: error\nsweep:\n  locations:\n    user: '%s'\n    temp: '%s'\n", env.users, env.temp)
	require.NoError(t, os.WriteFile(env.cfgPath, []byte(cfg), 0o644))

	env.app = &app{
		stdout: env.stdout,
		stderr: env.stderr,
		stdin:  strings.NewReader(""),
		newRunner: func(*config.Config, *logging.Logger) probe.Runner {
			return env.runner
		},
		detector:    stubDetector{elevated: true},
		interactive: func() bool { return false },
		termWidth:   func() int { return 0 },
	}
	return env
}

// run executes the CLI with the test config and colors disabled.
func (e *testEnv) run(args ...string) int {
	return e.runContext(context.Background(), args...)
}

func (e *testEnv) runContext(ctx context.Context, args ...string) int {
	full := append([]string{"--config", e.cfgPath, "--no-color"}, args...)
	return execute(ctx, e.app, full)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}
