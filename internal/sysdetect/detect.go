// Package sysdetect gathers the host details shown in audit report headers.
package sysdetect

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/ancients-collective/bastion/internal/probe"
	"github.com/ancients-collective/bastion/internal/types"
)

// Detector abstracts host detection so the coordinator can be tested.
type Detector interface {
	// DetectOS returns operating system information.
	DetectOS() (types.OSInfo, error)

	// DetectHostname returns the machine name.
	DetectHostname() (string, error)

	// DetectElevation reports whether the process has administrative rights.
	DetectElevation() bool
}

// DetectSystemContext coordinates layered detection:
//   - OS detection must succeed
//   - hostname failure is a warning
//   - elevation never fails
//
// Returns the context, non-fatal warnings and an error only when OS
// detection fails.
func DetectSystemContext(d Detector) (types.SystemContext, []string, error) {
	var ctx types.SystemContext
	var warnings []string

	osInfo, err := d.DetectOS()
	if err != nil {
		return ctx, nil, fmt.Errorf("OS detection failed: %w", err)
	}
	ctx.OS = osInfo

	hostname, err := d.DetectHostname()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("hostname detection failed: %v", err))
	} else {
		ctx.Hostname = hostname
	}

	ctx.Elevated = d.DetectElevation()
	return ctx, warnings, nil
}

// HostDetector implements Detector with gopsutil.
type HostDetector struct{}

// NewDetector returns the gopsutil-backed detector.
func NewDetector() Detector {
	return &HostDetector{}
}

// DetectOS reports GOOS/GOARCH plus the kernel and product versions. When
// gopsutil cannot read host info, only GOOS/GOARCH are filled.
func (d *HostDetector) DetectOS() (types.OSInfo, error) {
	info := types.OSInfo{Name: runtime.GOOS, Arch: runtime.GOARCH}

	hi, err := host.Info()
	if err != nil {
		return info, nil
	}
	info.Version = hi.KernelVersion
	info.Platform = hi.Platform
	info.PlatformVersion = hi.PlatformVersion
	return info, nil
}

// DetectHostname returns the OS hostname.
func (d *HostDetector) DetectHostname() (string, error) {
	return os.Hostname()
}

// DetectElevation checks the process token (Windows) or effective UID.
func (d *HostDetector) DetectElevation() bool {
	return probe.IsElevated()
}
