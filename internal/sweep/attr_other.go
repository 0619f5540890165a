//go:build !windows

package sweep

import (
	"io/fs"
	"strings"
)

// Unix has no attribute bits; dot files count as hidden and files without
// the owner write bit as read-only.
func platformAttributes(info fs.FileInfo) []string {
	var attrs []string
	if strings.HasPrefix(info.Name(), ".") {
		attrs = append(attrs, "Hidden")
	}
	if info.Mode().Perm()&0o200 == 0 {
		attrs = append(attrs, "ReadOnly")
	}
	return attrs
}
