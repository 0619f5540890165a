package sweep

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates parent directories and a file of the given size.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// newTestScanner sweeps only dir.
func newTestScanner(dir string) *Scanner {
	return NewScanner(WithLocations(Locations{User: dir}))
}

func runSweep(t *testing.T, sc *Scanner, cfg Config) *Sweep {
	t.Helper()
	sw, err := sc.Start(context.Background(), cfg)
	require.NoError(t, err)
	sw.Wait()
	return sw
}

// relPaths returns the match paths relative to root, sorted.
func relPaths(t *testing.T, root string, matches []Match) []string {
	t.Helper()
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(root, m.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}
