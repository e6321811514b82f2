package remotefs

import (
	"io/fs"
	"path"
	"strings"
	"time"
)

// FileType classifies a remote filesystem entry.
type FileType int

const (
	// TypeFile is a regular file.
	TypeFile FileType = iota
	// TypeDirectory is a directory.
	TypeDirectory
	// TypeSymlink is a symbolic link.
	TypeSymlink
)

// String returns the lowercase name of the file type.
func (t FileType) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// Metadata describes the attributes of a remote file.
//
// Not every protocol exposes every field; a zero time means the value is
// unknown and a zero Mode means the server did not report permissions.
type Metadata struct {
	// Size is the file size in bytes.
	Size int64

	// Type tells whether the entry is a file, directory or symlink.
	Type FileType

	// Mode holds the permission bits, when known.
	Mode fs.FileMode

	// UID and GID are the owning user and group, when known.
	UID uint32
	GID uint32

	// Accessed, Created and Modified are the file timestamps, when known.
	Accessed time.Time
	Created  time.Time
	Modified time.Time

	// SymlinkTarget is the link target when Type is TypeSymlink.
	SymlinkTarget string
}

// IsDir reports whether the metadata describes a directory.
func (m Metadata) IsDir() bool { return m.Type == TypeDirectory }

// IsFile reports whether the metadata describes a regular file.
func (m Metadata) IsFile() bool { return m.Type == TypeFile }

// IsSymlink reports whether the metadata describes a symbolic link.
func (m Metadata) IsSymlink() bool { return m.Type == TypeSymlink }

// File is a remote filesystem entry: an absolute path plus its metadata.
type File struct {
	Path     string
	Metadata Metadata
}

// Name returns the last element of the file path.
func (f File) Name() string {
	return path.Base(f.Path)
}

// Extension returns the suffix after the final dot of the file name,
// without the dot. It returns "" when the name has no extension.
func (f File) Extension() string {
	name := f.Name()
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

// IsDir reports whether the file is a directory.
func (f File) IsDir() bool { return f.Metadata.IsDir() }

// IsFile reports whether the file is a regular file.
func (f File) IsFile() bool { return f.Metadata.IsFile() }

// IsSymlink reports whether the file is a symbolic link.
func (f File) IsSymlink() bool { return f.Metadata.IsSymlink() }
