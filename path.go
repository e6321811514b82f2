package smbfs

import (
	"path"
	"strings"
)

// pathNormalizer resolves caller-supplied paths against the tracked working
// directory and normalizes them into slash-separated absolute form.
type pathNormalizer struct {
	caseSensitive bool
}

func newPathNormalizer(caseSensitive bool) *pathNormalizer {
	return &pathNormalizer{
		caseSensitive: caseSensitive,
	}
}

// normalize normalizes a path. Supported input forms:
//   - Unix-style: /path/to/file
//   - Windows-style separators: \path\to\file
//   - relative: path/to/file (anchored at /)
func (pn *pathNormalizer) normalize(p string) string {
	// Unify separators before cleaning
	p = strings.ReplaceAll(p, "\\", "/")

	// Removes .., ., repeated slashes and trailing slash
	p = path.Clean(p)

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	// SMB shares are case-insensitive unless configured otherwise
	if !pn.caseSensitive {
		p = strings.ToLower(p)
	}

	return p
}

// absolutize resolves p against the working directory wrkdir. Absolute
// paths are only normalized; relative paths (including "." and "..") are
// joined onto wrkdir first.
func (pn *pathNormalizer) absolutize(wrkdir, p string) string {
	if isAbs(p) {
		return pn.normalize(p)
	}
	return pn.normalize(path.Join(wrkdir, strings.ReplaceAll(p, "\\", "/")))
}

// isAbs returns true if the path is absolute in either separator style.
func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\")
}

// validatePath validates that a path is usable. Traversal above the share
// root is not a concern here: resolution anchors every path at "/" and
// path.Clean on a rooted path cannot climb out, so ".." segments resolve
// against the working directory and clamp at the root.
func validatePath(p string) error {
	if p == "" {
		return errInvalidPath
	}

	if strings.Contains(p, "\x00") {
		return errInvalidPath
	}

	return nil
}

// toSMBPath converts a normalized slash path to the share-relative form the
// SMB layer expects: backslashes, no leading separator. The root maps to "."
// so the share layer always receives a non-empty name.
func toSMBPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return strings.ReplaceAll(p, "/", "\\")
}
