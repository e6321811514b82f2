//go:build windows

package smbfs

import (
	"os"
	"syscall"
	"time"
)

// fileTimes extracts the access and creation timestamps from a stat result.
// On Windows the OS stat carries the full attribute data.
func fileTimes(fi os.FileInfo) (accessed, created time.Time) {
	if d, ok := fi.Sys().(*syscall.Win32FileAttributeData); ok {
		accessed = time.Unix(0, d.LastAccessTime.Nanoseconds())
		created = time.Unix(0, d.CreationTime.Nanoseconds())
	}
	return accessed, created
}

// fileAttrs returns the FILE_ATTRIBUTE_* bits of a stat result, when the
// stat source carries them.
func fileAttrs(fi os.FileInfo) (uint32, bool) {
	if d, ok := fi.Sys().(*syscall.Win32FileAttributeData); ok {
		return d.FileAttributes, true
	}
	return 0, false
}
