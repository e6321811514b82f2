package smbfs

import (
	"io/fs"
	"os"

	"github.com/remotefs-go/smbfs/remotefs"
)

// Windows file attribute flags as defined in MS-FSCC.
const (
	// FILE_ATTRIBUTE_READONLY indicates the file is read-only.
	FILE_ATTRIBUTE_READONLY = 0x00000001

	// FILE_ATTRIBUTE_HIDDEN indicates the file is hidden.
	FILE_ATTRIBUTE_HIDDEN = 0x00000002

	// FILE_ATTRIBUTE_SYSTEM indicates the file is a system file.
	FILE_ATTRIBUTE_SYSTEM = 0x00000004

	// FILE_ATTRIBUTE_DIRECTORY indicates the file is a directory.
	FILE_ATTRIBUTE_DIRECTORY = 0x00000010

	// FILE_ATTRIBUTE_ARCHIVE indicates the file should be archived.
	FILE_ATTRIBUTE_ARCHIVE = 0x00000020

	// FILE_ATTRIBUTE_DEVICE indicates the file is a device.
	FILE_ATTRIBUTE_DEVICE = 0x00000040

	// FILE_ATTRIBUTE_NORMAL indicates the file has no other attributes set.
	FILE_ATTRIBUTE_NORMAL = 0x00000080

	// FILE_ATTRIBUTE_TEMPORARY indicates the file is temporary.
	FILE_ATTRIBUTE_TEMPORARY = 0x00000100

	// FILE_ATTRIBUTE_SPARSE_FILE indicates the file is a sparse file.
	FILE_ATTRIBUTE_SPARSE_FILE = 0x00000200

	// FILE_ATTRIBUTE_REPARSE_POINT indicates the file is a reparse point
	// (symlink or junction).
	FILE_ATTRIBUTE_REPARSE_POINT = 0x00000400

	// FILE_ATTRIBUTE_COMPRESSED indicates the file is compressed.
	FILE_ATTRIBUTE_COMPRESSED = 0x00000800

	// FILE_ATTRIBUTE_OFFLINE indicates the file data is offline.
	FILE_ATTRIBUTE_OFFLINE = 0x00001000

	// FILE_ATTRIBUTE_ENCRYPTED indicates the file is encrypted.
	FILE_ATTRIBUTE_ENCRYPTED = 0x00004000
)

// attributesToMode converts Windows attributes to a Unix file mode.
// Best effort: the two permission models do not line up exactly.
func attributesToMode(attrs uint32, isDir bool) fs.FileMode {
	mode := fs.FileMode(0666)

	if attrs&FILE_ATTRIBUTE_READONLY != 0 {
		mode = fs.FileMode(0444)
	}

	if isDir || attrs&FILE_ATTRIBUTE_DIRECTORY != 0 {
		if attrs&FILE_ATTRIBUTE_READONLY != 0 {
			mode = fs.ModeDir | 0555
		} else {
			mode = fs.ModeDir | 0777
		}
	}

	if attrs&FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		mode |= fs.ModeSymlink
	}

	if attrs&FILE_ATTRIBUTE_DEVICE != 0 {
		mode |= fs.ModeDevice
	}

	return mode
}

// fileTypeOf classifies a file mode into the generic file type model.
// The symlink bit wins over the directory bit, matching how reparse
// points are reported.
func fileTypeOf(mode fs.FileMode) remotefs.FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return remotefs.TypeSymlink
	case mode.IsDir():
		return remotefs.TypeDirectory
	default:
		return remotefs.TypeFile
	}
}

// fileInfoToMetadata translates a native stat result into the generic
// metadata model. Timestamps and attribute bits come from the per-platform
// fileTimes/fileAttrs hooks; when the stat source carries FILE_ATTRIBUTE_*
// bits the mode is derived from them, so reparse points surface as symlinks.
func fileInfoToMetadata(fi os.FileInfo) remotefs.Metadata {
	mode := fi.Mode()
	if attrs, ok := fileAttrs(fi); ok {
		mode = attributesToMode(attrs, fi.IsDir())
	}

	accessed, created := fileTimes(fi)
	return remotefs.Metadata{
		Size:     fi.Size(),
		Type:     fileTypeOf(mode),
		Mode:     mode.Perm(),
		Accessed: accessed,
		Created:  created,
		Modified: fi.ModTime(),
	}
}

// fileInfoToFile pairs an absolute path with the translated metadata.
func fileInfoToFile(path string, fi os.FileInfo) remotefs.File {
	return remotefs.File{
		Path:     path,
		Metadata: fileInfoToMetadata(fi),
	}
}
