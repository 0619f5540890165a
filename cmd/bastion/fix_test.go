package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ancients-collective/bastion/internal/checks"
	"github.com/ancients-collective/bastion/internal/probe"
)

var firewallOff = probe.Output{Stdout: "Domain Profile Settings:\nState                                 OFF\n"}

func TestFix_AlreadyCompliant(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("fix", checks.IDFirewall, "--yes")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, env.stdout.String(), "Already compliant")
	assert.Equal(t, 0, env.runner.called(definition(checks.IDFirewall).Remedy))
}

func TestFix_AppliesAndVerifies(t *testing.T) {
	env := newTestEnv(t)
	env.runner.setProbe(checks.IDFirewall, firewallOff)
	env.runner.setRemedy(checks.IDFirewall, probe.Output{Stdout: "Ok."}, passingOutputs[checks.IDFirewall])

	code := env.run("fix", checks.IDFirewall, "--yes")

	assert.Equal(t, exitOK, code, env.stderr.String())
	def := definition(checks.IDFirewall)
	assert.Equal(t, 2, env.runner.called(def.Probe), "check before and verify after")
	assert.Equal(t, 1, env.runner.called(def.Remedy))
	out := env.stdout.String()
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "fixed and verified")
}

func TestFix_RemedyFails(t *testing.T) {
	env := newTestEnv(t)
	env.runner.setProbe(checks.IDGuestAccount, probe.Output{Stdout: "Account active    Yes\n"})
	env.runner.setRemedy(checks.IDGuestAccount, probe.Output{ExitCode: 5, Stderr: "System error 5 has occurred."}, probe.Output{})

	code := env.run("fix", checks.IDGuestAccount, "--yes")

	assert.Equal(t, exitIssues, code)
	assert.Contains(t, env.stdout.String(), "Fix failed")
	assert.Contains(t, env.stdout.String(), "Manual steps")
	assert.Equal(t, 1, env.runner.called(definition(checks.IDGuestAccount).Probe), "no verify after a failed fix")
}

func TestFix_NotVerified(t *testing.T) {
	env := newTestEnv(t)
	env.runner.setProbe(checks.IDRemoteDesktop, probe.Output{Stdout: "fDenyTSConnections    REG_DWORD    0x0\n"})
	env.runner.setRemedy(checks.IDRemoteDesktop,
		probe.Output{Stdout: "The operation completed successfully."},
		probe.Output{Stdout: "fDenyTSConnections    REG_DWORD    0x0\n"})

	code := env.run("fix", checks.IDRemoteDesktop, "--yes")

	assert.Equal(t, exitIssues, code)
	assert.Contains(t, env.stdout.String(), "still reports fail")
}

func TestFix_NonInteractiveRequiresYes(t *testing.T) {
	env := newTestEnv(t)
	env.runner.setProbe(checks.IDFirewall, firewallOff)

	code := env.run("fix", checks.IDFirewall)

	assert.Equal(t, exitIssues, code)
	assert.Contains(t, env.stderr.String(), "--yes")
	assert.Equal(t, 0, env.runner.called(definition(checks.IDFirewall).Remedy))
}

func TestFix_Confirmation(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		wantCode   int
		wantRemedy int
		wantOutput string
	}{
		{"yes", "y\n", exitOK, 1, "fixed and verified"},
		{"full word", "YES\n", exitOK, 1, "fixed and verified"},
		{"no", "n\n", exitIssues, 0, "No changes made"},
		{"empty", "\n", exitIssues, 0, "No changes made"},
		{"eof", "", exitIssues, 0, "No changes made"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.app.interactive = func() bool { return true }
			env.app.stdin = strings.NewReader(tt.answer)
			env.runner.setProbe(checks.IDFirewall, firewallOff)
			env.runner.setRemedy(checks.IDFirewall, probe.Output{}, passingOutputs[checks.IDFirewall])

			code := env.run("fix", checks.IDFirewall)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantRemedy, env.runner.called(definition(checks.IDFirewall).Remedy))
			assert.Contains(t, env.stdout.String(), "Apply fix for Windows Firewall? [y/N]")
			assert.Contains(t, env.stdout.String(), tt.wantOutput)
		})
	}
}

func TestFix_WarnsWhenNotElevated(t *testing.T) {
	env := newTestEnv(t)
	env.app.detector = stubDetector{elevated: false}
	env.runner.setProbe(checks.IDFirewall, firewallOff)
	env.runner.setRemedy(checks.IDFirewall, probe.Output{}, passingOutputs[checks.IDFirewall])

	code := env.run("fix", checks.IDFirewall, "--yes")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, env.stderr.String(), "will request elevation")
}

func TestFix_UnknownCheck(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("fix", "guest_acount", "--yes")

	assert.Equal(t, exitIssues, code)
	assert.Contains(t, env.stderr.String(), "guest_account")
	assert.Equal(t, 0, env.runner.callCount())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		out      probe.Output
		wantCode int
		wantText string
	}{
		{"pass", passingOutputs[checks.IDRealtimeProtection], exitOK, "PASS"},
		{"fail", probe.Output{Stdout: "RealTimeProtectionEnabled\n                    False\n"}, exitIssues, "FAIL"},
		{"unknown", probe.Output{Stderr: "Get-MpComputerStatus : 0x800106ba"}, exitUnknown, "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.runner.setProbe(checks.IDRealtimeProtection, tt.out)

			code := env.run("verify", checks.IDRealtimeProtection)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, env.stdout.String(), tt.wantText)
			assert.Contains(t, env.stdout.String(), "Windows Defender")
		})
	}
}

func TestVerify_RequiresID(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("verify")

	assert.Equal(t, exitIssues, code)
	assert.Contains(t, env.stderr.String(), "accepts 1 arg")
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\r\nb\n", "  "))
}
