package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3 TB"},
		{2048 * 1024 * 1024 * 1024 * 1024, "2048 TB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestNewMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup.exe")
	writeFile(t, path, 42)
	info, err := os.Stat(path)
	require.NoError(t, err)

	m := NewMatch(path, info)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, int64(42), m.Size)
	assert.Equal(t, info.ModTime(), m.Modified)
	assert.NotEmpty(t, m.Attributes)
	assert.False(t, m.Reviewed)
}
