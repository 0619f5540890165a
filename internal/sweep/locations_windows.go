//go:build windows

package sweep

import (
	"os"
	"path/filepath"
)

func platformLocations() Locations {
	drive := os.Getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}
	root := drive + `\`
	return Locations{
		User: filepath.Join(root, "Users"),
		Temp: os.TempDir(),
		System: []string{
			filepath.Join(root, "Windows"),
			filepath.Join(root, "Program Files"),
			filepath.Join(root, "Program Files (x86)"),
		},
	}
}
