package sweep

import (
	"os"
	"path/filepath"
	"strings"
)

// Locations are the candidate sweep roots. User and Temp are always swept
// when they exist; System only when the sweep asks for it.
type Locations struct {
	User   string
	Temp   string
	System []string
}

// DefaultLocations returns the platform's well-known roots.
func DefaultLocations() Locations {
	return platformLocations()
}

// Override replaces each non-empty field of l with the one from o.
func (l Locations) Override(o Locations) Locations {
	if o.User != "" {
		l.User = o.User
	}
	if o.Temp != "" {
		l.Temp = o.Temp
	}
	if len(o.System) > 0 {
		l.System = append([]string(nil), o.System...)
	}
	return l
}

// Roots returns the existing locations in sweep order: user, temp, then the
// system locations when includeSystem is set. Paths that do not exist are
// left out. A location equal to or inside another candidate is dropped, since
// walking the outer one already covers it; duplicates keep their first
// position.
func (l Locations) Roots(includeSystem bool) []string {
	candidates := []string{l.User, l.Temp}
	if includeSystem {
		candidates = append(candidates, l.System...)
	}

	var paths, keys []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err != nil {
			continue
		}
		paths = append(paths, c)
		keys = append(keys, rootKey(c))
	}

	roots := make([]string, 0, len(paths))
	for i, key := range keys {
		covered := false
		for j, other := range keys {
			if (other == key && j < i) || isWithin(other, key) {
				covered = true
				break
			}
		}
		if !covered {
			roots = append(roots, paths[i])
		}
	}
	return roots
}

// isWithin reports whether child lies strictly below parent. Both must be
// keys from rootKey.
func isWithin(parent, child string) bool {
	if parent == child {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func rootKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	p = filepath.Clean(p)
	if filepath.Separator == '\\' {
		p = strings.ToLower(p)
	}
	return p
}
