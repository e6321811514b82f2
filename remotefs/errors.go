package remotefs

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote filesystem error into a protocol-agnostic
// taxonomy. Adapters translate their native error codes into one of these.
type ErrorKind int

const (
	// KindAuthenticationFailed indicates the server rejected the credentials.
	KindAuthenticationFailed ErrorKind = iota
	// KindBadAddress indicates the server address could not be used.
	KindBadAddress
	// KindBadFile indicates the path does not denote a usable file,
	// e.g. changing directory into a regular file.
	KindBadFile
	// KindConnectionError indicates the transport failed.
	KindConnectionError
	// KindCouldNotOpenFile indicates the file could not be opened.
	KindCouldNotOpenFile
	// KindCouldNotRemoveFile indicates the file or directory could not
	// be removed.
	KindCouldNotRemoveFile
	// KindDirectoryAlreadyExists indicates the directory to create exists.
	KindDirectoryAlreadyExists
	// KindDirectoryNotEmpty indicates the directory to remove has entries.
	KindDirectoryNotEmpty
	// KindFileCreateDenied indicates the file or directory could not
	// be created.
	KindFileCreateDenied
	// KindIOError indicates a data transfer failure.
	KindIOError
	// KindNoSuchFileOrDirectory indicates the path does not exist.
	KindNoSuchFileOrDirectory
	// KindNotConnected indicates the client is not connected.
	KindNotConnected
	// KindPexError indicates the server denied access to the path.
	KindPexError
	// KindProtocolError indicates an unexpected protocol-level failure.
	KindProtocolError
	// KindStatFailed indicates file metadata could not be read.
	KindStatFailed
	// KindUnsupportedFeature indicates the operation is not supported by
	// this adapter or protocol.
	KindUnsupportedFeature
)

// String returns a human-readable description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindBadAddress:
		return "bad address"
	case KindBadFile:
		return "bad file"
	case KindConnectionError:
		return "connection error"
	case KindCouldNotOpenFile:
		return "could not open file"
	case KindCouldNotRemoveFile:
		return "could not remove file"
	case KindDirectoryAlreadyExists:
		return "directory already exists"
	case KindDirectoryNotEmpty:
		return "directory not empty"
	case KindFileCreateDenied:
		return "file creation denied"
	case KindIOError:
		return "input/output error"
	case KindNoSuchFileOrDirectory:
		return "no such file or directory"
	case KindNotConnected:
		return "not connected"
	case KindPexError:
		return "permission denied"
	case KindProtocolError:
		return "protocol error"
	case KindStatFailed:
		return "stat failed"
	case KindUnsupportedFeature:
		return "unsupported feature"
	default:
		return "unknown error"
	}
}

// Error is a remote filesystem error: a taxonomy kind plus the underlying
// cause, when one exists.
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError returns an Error of the given kind with no underlying cause.
func NewError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

// WrapError returns an Error of the given kind wrapping err.
func WrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same kind. It makes
// errors.Is(err, remotefs.NewError(kind)) match on kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the ErrorKind from err. The second return value is false
// when err is not (and does not wrap) a remotefs Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is (or wraps) a remotefs Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
