package sweep

import (
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Match is a file that satisfied every filter of a sweep.
type Match struct {
	Path       string
	Size       int64
	Modified   time.Time
	Attributes string
	Reviewed   bool
}

// NewMatch builds a Match from a path and its file info.
func NewMatch(path string, info fs.FileInfo) Match {
	return Match{
		Path:       path,
		Size:       info.Size(),
		Modified:   info.ModTime(),
		Attributes: AttributeLabel(info),
	}
}

// AttributeLabel renders the file's attribute flags as "Hidden, ReadOnly",
// or "Normal" when none are set.
func AttributeLabel(info fs.FileInfo) string {
	attrs := platformAttributes(info)
	if len(attrs) == 0 {
		return "Normal"
	}
	return strings.Join(attrs, ", ")
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with binary units and at most two decimals.
func FormatSize(bytes int64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	s := fmt.Sprintf("%.2f", size)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + " " + sizeUnits[unit]
}
