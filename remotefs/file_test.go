package remotefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/docs/report.pdf", "report.pdf"},
		{"/report.pdf", "report.pdf"},
		{"/", "/"},
		{"/docs/sub", "sub"},
	}

	for _, tt := range tests {
		f := File{Path: tt.path}
		assert.Equal(t, tt.expected, f.Name(), "path %q", tt.path)
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/docs/report.pdf", "pdf"},
		{"/archive.tar.gz", "gz"},
		{"/makefile", ""},
		{"/.bashrc", ""},
		{"/trailing.", ""},
		{"/docs.d/readme", ""},
	}

	for _, tt := range tests {
		f := File{Path: tt.path}
		assert.Equal(t, tt.expected, f.Extension(), "path %q", tt.path)
	}
}

func TestFileTypePredicates(t *testing.T) {
	file := File{Path: "/f", Metadata: Metadata{Type: TypeFile}}
	assert.True(t, file.IsFile())
	assert.False(t, file.IsDir())
	assert.False(t, file.IsSymlink())

	dir := File{Path: "/d", Metadata: Metadata{Type: TypeDirectory}}
	assert.True(t, dir.IsDir())
	assert.False(t, dir.IsFile())

	link := File{Path: "/l", Metadata: Metadata{Type: TypeSymlink}}
	assert.True(t, link.IsSymlink())
	assert.False(t, link.IsFile())
}

func TestFileTypeString(t *testing.T) {
	assert.Equal(t, "file", TypeFile.String())
	assert.Equal(t, "directory", TypeDirectory.String())
	assert.Equal(t, "symlink", TypeSymlink.String())
}
