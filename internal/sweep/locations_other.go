//go:build !windows && !darwin

package sweep

import "os"

func platformLocations() Locations {
	return Locations{
		User:   "/home",
		Temp:   os.TempDir(),
		System: []string{"/usr", "/opt", "/var"},
	}
}
