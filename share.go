package smbfs

import (
	"io"
	"os"
	"time"
)

// share is the subset of SMB share operations the client is written
// against. Paths are share-relative in backslash form. On non-Windows
// hosts the production implementation wraps a go-smb2 share; on Windows
// it maps the UNC path and delegates to the OS. Tests substitute an
// in-memory backend.
type share interface {
	Stat(name string) (os.FileInfo, error)
	OpenFile(name string, flag int, perm os.FileMode) (shareFile, error)
	Mkdir(name string, perm os.FileMode) error
	Remove(name string) error
	Rename(oldname, newname string) error
	Chmod(name string, mode os.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error
	Umount() error
}

// shareFile is an open handle on a share.
type shareFile interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
	Readdir(n int) ([]os.FileInfo, error)
}

// dialFunc produces a connected session. Swappable so tests can inject a
// mock share without a server.
type dialFunc func(creds *Credentials, opts *Options) (*session, error)
