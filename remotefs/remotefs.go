// Package remotefs defines a protocol-agnostic client abstraction for
// remote filesystems. Protocol adapters (SMB, SFTP, FTP, ...) implement
// the Client interface; callers program against it without caring which
// transport carries the operations.
package remotefs

import (
	"io"
	"io/fs"
)

// Welcome holds optional information returned by the server on connect.
type Welcome struct {
	// Banner is the greeting message sent by the server, if any.
	Banner string
}

// Client is the interface implemented by remote filesystem adapters.
//
// All paths are slash-separated. Relative paths are resolved against the
// client's tracked working directory, which starts at "/".
type Client interface {
	// Connect establishes the connection to the remote server.
	Connect() (Welcome, error)

	// Disconnect terminates the connection.
	Disconnect() error

	// IsConnected reports whether the client is currently connected.
	IsConnected() bool

	// Pwd returns the tracked working directory.
	Pwd() (string, error)

	// ChangeDir changes the working directory and returns the new one.
	ChangeDir(dir string) (string, error)

	// List returns the entries of the directory at path.
	List(path string) ([]File, error)

	// Stat returns the file at path with its metadata.
	Stat(path string) (File, error)

	// SetStat applies the provided metadata to the file at path.
	SetStat(path string, metadata Metadata) error

	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)

	// RemoveFile removes the file at path.
	RemoveFile(path string) error

	// RemoveDir removes the empty directory at path.
	RemoveDir(path string) error

	// RemoveDirAll removes path and everything below it.
	RemoveDirAll(path string) error

	// CreateDir creates the directory at path with the given mode.
	CreateDir(path string, mode fs.FileMode) error

	// Symlink creates a symbolic link at path pointing to target.
	Symlink(path, target string) error

	// Copy copies src to dst.
	Copy(src, dst string) error

	// Move renames (moves) src to dst.
	Move(src, dst string) error

	// Exec executes a command on the remote host, returning its exit
	// code and output.
	Exec(cmd string) (uint32, string, error)

	// CreateFile writes src to a new file at path, truncating any
	// existing content, and returns the number of bytes written.
	CreateFile(path string, metadata Metadata, src io.Reader) (int64, error)

	// AppendFile appends src to the file at path, creating it if needed,
	// and returns the number of bytes written.
	AppendFile(path string, metadata Metadata, src io.Reader) (int64, error)

	// OpenFile copies the content of the file at path to dst and returns
	// the number of bytes read.
	OpenFile(path string, dst io.Writer) (int64, error)

	// Create opens a write stream to a new file at path.
	Create(path string, metadata Metadata) (io.WriteCloser, error)

	// Append opens a write stream positioned at the end of the file at
	// path, creating it if needed.
	Append(path string, metadata Metadata) (io.WriteCloser, error)

	// Open opens a read stream for the file at path.
	Open(path string) (io.ReadCloser, error)
}
