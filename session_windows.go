//go:build windows

package smbfs

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/remotefs-go/smbfs/remotefs"
)

// defaultDial is the production connection path for this platform.
var defaultDial dialFunc = dialWNet

// session owns one live UNC mapping. The OS network stack carries the
// protocol, so there is no socket to hold on to.
type session struct {
	creds *Credentials
	share share
}

// dialWNet authenticates against the share with WNetAddConnection2 and
// serves it through the os package on the UNC path.
func dialWNet(creds *Credentials, opts *Options) (*session, error) {
	if err := wnetConnect(creds); err != nil {
		return nil, classifyWNetError(err)
	}

	return &session{
		creds: creds,
		share: &osShare{root: creds.UNCPath(), creds: creds},
	}, nil
}

// classifyWNetError maps WNet error codes onto the generic taxonomy where
// the code is unambiguous.
func classifyWNetError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case wnetLogonFailure, wnetAccessDenied:
			return remotefs.WrapError(remotefs.KindAuthenticationFailed, err)
		case wnetBadNetPath, wnetBadNetName:
			return remotefs.WrapError(remotefs.KindBadAddress, err)
		}
	}
	return err
}

func (s *session) close() error {
	if s.share == nil {
		return nil
	}
	err := s.share.Umount()
	s.share = nil
	return err
}

// alive probes the mapped share root.
func (s *session) alive() error {
	if s.share == nil {
		return errSessionClosed
	}
	_, err := s.share.Stat(".")
	return err
}

// osShare serves a mapped UNC path through the os package. Paths arrive
// share-relative in backslash form and are anchored at the UNC root.
type osShare struct {
	root  string
	creds *Credentials
}

func (s *osShare) path(name string) string {
	if name == "" || name == "." {
		return s.root
	}
	return s.root + "\\" + name
}

func (s *osShare) Stat(name string) (os.FileInfo, error) {
	return os.Stat(s.path(name))
}

func (s *osShare) OpenFile(name string, flag int, perm os.FileMode) (shareFile, error) {
	f, err := os.OpenFile(s.path(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *osShare) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(s.path(name), perm)
}

func (s *osShare) Remove(name string) error {
	return os.Remove(s.path(name))
}

func (s *osShare) Rename(oldname, newname string) error {
	return os.Rename(s.path(oldname), s.path(newname))
}

func (s *osShare) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(s.path(name), mode)
}

func (s *osShare) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(s.path(name), atime, mtime)
}

func (s *osShare) Umount() error {
	return wnetDisconnect(s.creds)
}
