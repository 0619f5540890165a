package checks

import (
	"strings"

	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/types"
)

// Built-in check IDs, in display order.
const (
	IDFirewall           = "firewall"
	IDGuestAccount       = "guest_account"
	IDRemoteDesktop      = "remote_desktop"
	IDRealtimeProtection = "realtime_protection"
	IDSMB1Protocol       = "smb1_protocol"
)

const terminalServerKey = `HKLM\System\CurrentControlSet\Control\Terminal Server`

// Builtins returns the definitions of every built-in check.
//
// Classification matches substrings of the tools' English output. The
// phrases depend on the OS language and version; a localized system can
// report fail or unknown for a compliant setting.
func Builtins() []Definition {
	return []Definition{
		{
			ID:       IDFirewall,
			Subject:  "firewall",
			Probe:    probe.Command{Name: "netsh", Args: []string{"advfirewall", "show", "allprofiles", "state"}},
			Classify: ClassifyFirewall,
			Remedy:   probe.Command{Name: "netsh", Args: []string{"advfirewall", "set", "allprofiles", "state", "on"}, Elevated: true},
		},
		{
			ID:       IDGuestAccount,
			Subject:  "guest account",
			Probe:    probe.Command{Name: "net", Args: []string{"user", "guest"}},
			Classify: ClassifyGuestAccount,
			Remedy:   probe.Command{Name: "net", Args: []string{"user", "guest", "/active:no"}, Elevated: true},
		},
		{
			ID:       IDRemoteDesktop,
			Subject:  "RDP",
			Probe:    probe.Command{Name: "reg", Args: []string{"query", terminalServerKey, "/v", "fDenyTSConnections"}},
			Classify: ClassifyRemoteDesktop,
			Remedy: probe.Command{
				Name:     "reg",
				Args:     []string{"add", terminalServerKey, "/v", "fDenyTSConnections", "/t", "REG_DWORD", "/d", "1", "/f"},
				Elevated: true,
			},
		},
		{
			ID:      IDRealtimeProtection,
			Subject: "Windows Defender",
			Probe: probe.Command{
				Name:          "powershell",
				Args:          []string{"-NoProfile", "-Command", "Get-MpComputerStatus | Select-Object -Property RealTimeProtectionEnabled"},
				CaptureStderr: true,
			},
			Classify: ClassifyRealtimeProtection,
			Remedy: probe.Command{
				Name:          "powershell",
				Args:          []string{"-NoProfile", "-Command", "Set-MpPreference -DisableRealtimeMonitoring $false"},
				Elevated:      true,
				CaptureStderr: true,
			},
		},
		{
			ID:      IDSMB1Protocol,
			Subject: "SMBv1",
			Probe: probe.Command{
				Name:          "powershell",
				Args:          []string{"-NoProfile", "-Command", "Get-WindowsOptionalFeature -Online -FeatureName SMB1Protocol | Select-Object -Property State"},
				CaptureStderr: true,
			},
			Classify: ClassifySMB1,
			Remedy: probe.Command{
				Name:          "powershell",
				Args:          []string{"-NoProfile", "-Command", "Disable-WindowsOptionalFeature -Online -FeatureName SMB1Protocol -NoRestart"},
				Elevated:      true,
				CaptureStderr: true,
			},
		},
	}
}

// BuiltinIDs returns the IDs of Builtins in order.
func BuiltinIDs() []string {
	defs := Builtins()
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}

// ClassifyFirewall passes when a profile state is listed and no profile is off.
func ClassifyFirewall(out string) types.CheckStatus {
	if strings.Contains(out, "State") && !strings.Contains(strings.ToLower(out), "off") {
		return types.StatusPass
	}
	return types.StatusFail
}

// ClassifyGuestAccount passes when the listing has an "Account active" line
// and says "no" somewhere.
func ClassifyGuestAccount(out string) types.CheckStatus {
	lower := strings.ToLower(out)
	if strings.Contains(lower, "account active") && strings.Contains(lower, "no") {
		return types.StatusPass
	}
	return types.StatusFail
}

// ClassifyRemoteDesktop passes when fDenyTSConnections is 0x1.
func ClassifyRemoteDesktop(out string) types.CheckStatus {
	if strings.Contains(out, "0x1") {
		return types.StatusPass
	}
	return types.StatusFail
}

// ClassifyRealtimeProtection passes when RealTimeProtectionEnabled is True.
func ClassifyRealtimeProtection(out string) types.CheckStatus {
	if strings.Contains(strings.ToLower(out), "true") {
		return types.StatusPass
	}
	return types.StatusFail
}

// ClassifySMB1 passes when the feature is disabled, fails when it is enabled
// and is unknown otherwise.
func ClassifySMB1(out string) types.CheckStatus {
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "disabled"):
		return types.StatusPass
	case strings.Contains(lower, "enabled"):
		return types.StatusFail
	default:
		return types.StatusUnknown
	}
}
