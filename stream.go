package smbfs

import (
	"io"

	"github.com/remotefs-go/smbfs/remotefs"
)

// stream wraps an open share handle, translating native errors into the
// generic taxonomy. It serves both read and write streams.
type stream struct {
	handle shareFile
	path   string
}

var (
	_ io.ReadCloser  = (*stream)(nil)
	_ io.WriteCloser = (*stream)(nil)
	_ io.Seeker      = (*stream)(nil)
)

func (s *stream) Read(p []byte) (int, error) {
	if s.handle == nil {
		return 0, remotefs.WrapError(remotefs.KindIOError, errSessionClosed)
	}
	n, err := s.handle.Read(p)
	if err != nil && err != io.EOF {
		return n, convertError(remotefs.KindIOError, err)
	}
	return n, err
}

func (s *stream) Write(p []byte) (int, error) {
	if s.handle == nil {
		return 0, remotefs.WrapError(remotefs.KindIOError, errSessionClosed)
	}
	n, err := s.handle.Write(p)
	if err != nil {
		return n, convertError(remotefs.KindIOError, err)
	}
	return n, nil
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	if s.handle == nil {
		return 0, remotefs.WrapError(remotefs.KindIOError, errSessionClosed)
	}
	pos, err := s.handle.Seek(offset, whence)
	if err != nil {
		return pos, convertError(remotefs.KindIOError, err)
	}
	return pos, nil
}

func (s *stream) Close() error {
	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	if err != nil {
		return convertError(remotefs.KindIOError, err)
	}
	return nil
}
