//go:build windows

package sweep

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/windows"
)

var attributeFlags = []struct {
	mask  uint32
	label string
}{
	{windows.FILE_ATTRIBUTE_HIDDEN, "Hidden"},
	{windows.FILE_ATTRIBUTE_SYSTEM, "System"},
	{windows.FILE_ATTRIBUTE_READONLY, "ReadOnly"},
	{windows.FILE_ATTRIBUTE_ARCHIVE, "Archive"},
}

func platformAttributes(info fs.FileInfo) []string {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return nil
	}
	var attrs []string
	for _, f := range attributeFlags {
		if data.FileAttributes&f.mask != 0 {
			attrs = append(attrs, f.label)
		}
	}
	return attrs
}
