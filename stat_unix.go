//go:build !windows

package smbfs

import (
	"os"
	"time"

	"github.com/hirochachacha/go-smb2"
)

// fileTimes extracts the access and creation timestamps from a stat result.
// go-smb2 surfaces the full SMB timestamps through Sys; anything else (the
// in-memory test backend included) leaves them unknown.
func fileTimes(fi os.FileInfo) (accessed, created time.Time) {
	if st, ok := fi.Sys().(*smb2.FileStat); ok {
		accessed = st.LastAccessTime
		created = st.CreationTime
	}
	return accessed, created
}

// fileAttrs returns the FILE_ATTRIBUTE_* bits of a stat result, when the
// stat source carries them.
func fileAttrs(fi os.FileInfo) (uint32, bool) {
	if st, ok := fi.Sys().(*smb2.FileStat); ok {
		return st.FileAttributes, true
	}
	return 0, false
}
