//go:build darwin

package sweep

import "os"

func platformLocations() Locations {
	return Locations{
		User:   "/Users",
		Temp:   os.TempDir(),
		System: []string{"/System", "/Applications", "/Library"},
	}
}
