package smbfs

import (
	"context"
	"errors"
	"io/fs"
	"net"

	"github.com/remotefs-go/smbfs/remotefs"
)

// errInvalidPath flags paths rejected before they reach the share.
var errInvalidPath = errors.New("invalid path")

// errSessionClosed flags use of a session after teardown.
var errSessionClosed = errors.New("session closed")

// convertError translates a native error into the remotefs taxonomy.
// Errors the standard library can classify get a precise kind; anything
// else falls back to the kind of the operation that failed, which mirrors
// how SMB client libraries report failures.
func convertError(kind remotefs.ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	// Already classified
	var re *remotefs.Error
	if errors.As(err, &re) {
		return err
	}

	switch {
	case errors.Is(err, errInvalidPath):
		return remotefs.WrapError(remotefs.KindBadFile, err)
	case errors.Is(err, fs.ErrNotExist):
		return remotefs.WrapError(remotefs.KindNoSuchFileOrDirectory, err)
	case errors.Is(err, fs.ErrPermission):
		return remotefs.WrapError(remotefs.KindPexError, err)
	case errors.Is(err, fs.ErrExist):
		return remotefs.WrapError(remotefs.KindDirectoryAlreadyExists, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return remotefs.WrapError(remotefs.KindConnectionError, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return remotefs.WrapError(remotefs.KindConnectionError, err)
	}

	return remotefs.WrapError(kind, err)
}

// isRetryable reports whether an error indicates a transient failure that
// may succeed on a new attempt. Only transport-level errors qualify;
// filesystem errors are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Transport-level failures (dial refused, reset) are worth retrying.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
