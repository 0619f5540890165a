package types

// SystemContext holds information about the host being audited.
// It is populated by the sysdetect package and rendered in report headers.
type SystemContext struct {
	// OS contains operating system information.
	OS OSInfo

	// Hostname is the system hostname.
	Hostname string

	// Elevated is true when the process runs as Administrator or root.
	Elevated bool
}

// OSInfo holds operating system details.
type OSInfo struct {
	// Name is the OS identifier (e.g., "windows", "linux").
	Name string

	// Version is the kernel version string.
	Version string

	// Arch is the CPU architecture (e.g., "amd64", "arm64").
	Arch string

	// Platform is the product name reported by the host
	// (e.g., "Microsoft Windows 11 Pro", "ubuntu").
	Platform string

	// PlatformVersion is the product version (e.g., "10.0.22631", "22.04").
	PlatformVersion string
}
