package smbfs

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remotefs-go/smbfs/remotefs"
)

func TestConvertError(t *testing.T) {
	tests := []struct {
		name     string
		kind     remotefs.ErrorKind
		err      error
		expected remotefs.ErrorKind
	}{
		{
			name:     "not exist",
			kind:     remotefs.KindStatFailed,
			err:      fs.ErrNotExist,
			expected: remotefs.KindNoSuchFileOrDirectory,
		},
		{
			name:     "permission",
			kind:     remotefs.KindCouldNotOpenFile,
			err:      fs.ErrPermission,
			expected: remotefs.KindPexError,
		},
		{
			name:     "exist",
			kind:     remotefs.KindFileCreateDenied,
			err:      fs.ErrExist,
			expected: remotefs.KindDirectoryAlreadyExists,
		},
		{
			name:     "invalid path",
			kind:     remotefs.KindStatFailed,
			err:      errInvalidPath,
			expected: remotefs.KindBadFile,
		},
		{
			name:     "context canceled",
			kind:     remotefs.KindIOError,
			err:      context.Canceled,
			expected: remotefs.KindConnectionError,
		},
		{
			name:     "deadline exceeded",
			kind:     remotefs.KindIOError,
			err:      context.DeadlineExceeded,
			expected: remotefs.KindConnectionError,
		},
		{
			name:     "network error",
			kind:     remotefs.KindStatFailed,
			err:      &net.OpError{Op: "read", Err: errors.New("reset")},
			expected: remotefs.KindConnectionError,
		},
		{
			name:     "unclassified falls back to operation kind",
			kind:     remotefs.KindCouldNotRemoveFile,
			err:      errors.New("sharing violation"),
			expected: remotefs.KindCouldNotRemoveFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertError(tt.kind, tt.err)
			assert.True(t, remotefs.IsKind(got, tt.expected),
				"convertError(%v, %v) = %v", tt.kind, tt.err, got)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestConvertErrorNil(t *testing.T) {
	assert.NoError(t, convertError(remotefs.KindIOError, nil))
}

func TestConvertErrorPreservesClassified(t *testing.T) {
	original := remotefs.NewError(remotefs.KindUnsupportedFeature)
	got := convertError(remotefs.KindIOError, original)
	assert.True(t, remotefs.IsKind(got, remotefs.KindUnsupportedFeature))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(errors.New("logon failure")))
	assert.False(t, isRetryable(fs.ErrNotExist))
	assert.True(t, isRetryable(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.True(t, isRetryable(&timeoutError{}))
}

// timeoutError is a net.Error reporting a timeout.
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

var _ net.Error = (*timeoutError)(nil)
