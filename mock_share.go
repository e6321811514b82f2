package smbfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockShare is an in-memory implementation of the share interface. It backs
// the unit tests: the client logic runs unchanged while the wire protocol is
// replaced by a map of paths. Errors can be injected per path or per
// operation, and every call is recorded for verification.
type MockShare struct {
	mu sync.RWMutex

	// files maps normalized slash paths to file data
	files map[string]*mockFileData

	// errors to inject for specific paths or operations
	errorOnPath map[string]error
	errorOnOp   map[string]error

	// operation tracking (own mutex to avoid lock contention)
	opMu       sync.Mutex
	operations []MockOperation

	unmounted bool
}

// mockFileData represents a file or directory in the mock share.
type mockFileData struct {
	name    string
	content []byte
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// MockOperation records an operation performed on the mock share.
type MockOperation struct {
	Op   string
	Path string
	Args []interface{}
	Time time.Time
}

// NewMockShare creates an empty mock share with a root directory.
func NewMockShare() *MockShare {
	m := &MockShare{
		files:       make(map[string]*mockFileData),
		errorOnPath: make(map[string]error),
		errorOnOp:   make(map[string]error),
		operations:  make([]MockOperation, 0),
	}

	m.files["/"] = &mockFileData{
		name:    "/",
		isDir:   true,
		mode:    fs.ModeDir | 0755,
		modTime: time.Now(),
	}

	return m
}

// AddFile adds a file to the mock share, creating parent directories.
func (m *MockShare) AddFile(p string, content []byte, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = normalizeMockPath(p)
	m.files[p] = &mockFileData{
		name:    path.Base(p),
		content: content,
		mode:    mode,
		modTime: time.Now(),
		isDir:   false,
	}
	m.ensureParentDirs(p)
}

// AddDir adds a directory to the mock share, creating parent directories.
func (m *MockShare) AddDir(p string, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = normalizeMockPath(p)
	m.files[p] = &mockFileData{
		name:    path.Base(p),
		isDir:   true,
		mode:    fs.ModeDir | mode,
		modTime: time.Now(),
	}
	m.ensureParentDirs(p)
}

// SetError injects an error for a specific path.
func (m *MockShare) SetError(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnPath[normalizeMockPath(p)] = err
}

// SetOperationError injects an error for a specific operation type.
func (m *MockShare) SetOperationError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnOp[op] = err
}

// ClearErrors removes all injected errors.
func (m *MockShare) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnPath = make(map[string]error)
	m.errorOnOp = make(map[string]error)
}

// Content returns the content of a file, for test verification.
func (m *MockShare) Content(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[normalizeMockPath(p)]; ok && !f.isDir {
		content := make([]byte, len(f.content))
		copy(content, f.content)
		return content, true
	}
	return nil, false
}

// HasPath reports whether a path exists in the mock share.
func (m *MockShare) HasPath(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[normalizeMockPath(p)]
	return ok
}

// Operations returns a copy of all recorded operations.
func (m *MockShare) Operations() []MockOperation {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	ops := make([]MockOperation, len(m.operations))
	copy(ops, m.operations)
	return ops
}

// ClearOperations clears the operation history.
func (m *MockShare) ClearOperations() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.operations = m.operations[:0]
}

// -- share interface

// Stat returns file info for the specified path.
func (m *MockShare) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unmounted {
		return nil, errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("stat", name); err != nil {
		return nil, err
	}
	m.recordOp("stat", name)

	data, exists := m.files[name]
	if !exists {
		return nil, fs.ErrNotExist
	}
	return &mockFileInfo{data: data}, nil
}

// OpenFile opens a file handle with the specified flags and permissions.
func (m *MockShare) OpenFile(name string, flag int, perm os.FileMode) (shareFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return nil, errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("open", name); err != nil {
		return nil, err
	}
	m.recordOp("open", name, flag, perm)

	data, exists := m.files[name]

	create := flag&os.O_CREATE != 0
	excl := flag&os.O_EXCL != 0
	trunc := flag&os.O_TRUNC != 0

	if excl && exists {
		return nil, fs.ErrExist
	}

	if !exists {
		if !create {
			return nil, fs.ErrNotExist
		}
		data = &mockFileData{
			name:    path.Base(name),
			content: []byte{},
			mode:    perm,
			modTime: time.Now(),
			isDir:   false,
		}
		m.files[name] = data
		m.ensureParentDirs(name)
	}

	if data.isDir && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, errors.New("is a directory")
	}

	if trunc && !data.isDir {
		data.content = []byte{}
		data.modTime = time.Now()
	}

	f := &mockFile{
		share: m,
		path:  name,
		data:  data,
		flag:  flag,
	}
	if flag&os.O_APPEND != 0 {
		f.offset = int64(len(data.content))
	}
	return f, nil
}

// Mkdir creates a directory. The parent must exist.
func (m *MockShare) Mkdir(name string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("mkdir", name); err != nil {
		return err
	}
	m.recordOp("mkdir", name, perm)

	if _, exists := m.files[name]; exists {
		return fs.ErrExist
	}

	parent, parentExists := m.files[path.Dir(name)]
	if !parentExists {
		return fs.ErrNotExist
	}
	if !parent.isDir {
		return errors.New("parent is not a directory")
	}

	m.files[name] = &mockFileData{
		name:    path.Base(name),
		isDir:   true,
		mode:    fs.ModeDir | perm,
		modTime: time.Now(),
	}
	return nil
}

// Remove removes a file or empty directory.
func (m *MockShare) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("remove", name); err != nil {
		return err
	}
	m.recordOp("remove", name)

	data, exists := m.files[name]
	if !exists {
		return fs.ErrNotExist
	}

	if data.isDir {
		for p := range m.files {
			if p != name && strings.HasPrefix(p, name+"/") {
				return errors.New("directory not empty")
			}
		}
	}

	delete(m.files, name)
	return nil
}

// Rename renames a file or directory, carrying children along.
func (m *MockShare) Rename(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return errSessionClosed
	}

	oldname = normalizeMockPath(oldname)
	newname = normalizeMockPath(newname)
	if err := m.checkError("rename", oldname); err != nil {
		return err
	}
	m.recordOp("rename", oldname, newname)

	data, exists := m.files[oldname]
	if !exists {
		return fs.ErrNotExist
	}
	if _, exists := m.files[newname]; exists {
		return fs.ErrExist
	}

	delete(m.files, oldname)
	data.name = path.Base(newname)
	m.files[newname] = data

	if data.isDir {
		for p, d := range m.files {
			if strings.HasPrefix(p, oldname+"/") {
				moved := newname + strings.TrimPrefix(p, oldname)
				delete(m.files, p)
				d.name = path.Base(moved)
				m.files[moved] = d
			}
		}
	}

	return nil
}

// Chmod changes the mode of a file, preserving the directory bit.
func (m *MockShare) Chmod(name string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("chmod", name); err != nil {
		return err
	}
	m.recordOp("chmod", name, mode)

	data, exists := m.files[name]
	if !exists {
		return fs.ErrNotExist
	}

	if data.isDir {
		data.mode = fs.ModeDir | mode
	} else {
		data.mode = mode
	}
	return nil
}

// Chtimes changes the modification time of a file.
func (m *MockShare) Chtimes(name string, atime, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return errSessionClosed
	}

	name = normalizeMockPath(name)
	if err := m.checkError("chtimes", name); err != nil {
		return err
	}
	m.recordOp("chtimes", name, atime, mtime)

	data, exists := m.files[name]
	if !exists {
		return fs.ErrNotExist
	}

	data.modTime = mtime
	return nil
}

// Umount marks the share as unmounted.
func (m *MockShare) Umount() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unmounted {
		return nil
	}
	m.unmounted = true
	m.recordOp("umount", "")
	return nil
}

// -- internals

func (m *MockShare) recordOp(op, path string, args ...interface{}) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.operations = append(m.operations, MockOperation{
		Op:   op,
		Path: path,
		Args: args,
		Time: time.Now(),
	})
}

func (m *MockShare) checkError(op, path string) error {
	if err, ok := m.errorOnOp[op]; ok {
		return err
	}
	if err, ok := m.errorOnPath[path]; ok {
		return err
	}
	return nil
}

// ensureParentDirs creates missing parent directories.
func (m *MockShare) ensureParentDirs(p string) {
	dir := path.Dir(p)
	if dir == p || dir == "/" {
		return
	}

	if _, ok := m.files[dir]; !ok {
		m.files[dir] = &mockFileData{
			name:    path.Base(dir),
			isDir:   true,
			mode:    fs.ModeDir | 0755,
			modTime: time.Now(),
		}
		m.ensureParentDirs(dir)
	}
}

// normalizeMockPath converts a share-relative SMB path to the normalized
// slash form used as map key.
func normalizeMockPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// mockFile implements shareFile over mock file data.
type mockFile struct {
	share  *MockShare
	path   string
	data   *mockFileData
	flag   int
	offset int64
	closed bool
	mu     sync.Mutex
}

func (f *mockFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}

	f.share.mu.RLock()
	defer f.share.mu.RUnlock()

	if err := f.share.checkError("read", f.path); err != nil {
		return 0, err
	}
	if f.data.isDir {
		return 0, errors.New("is a directory")
	}
	if f.offset >= int64(len(f.data.content)) {
		return 0, io.EOF
	}

	n := copy(p, f.data.content[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *mockFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if f.flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return 0, errors.New("file not opened for writing")
	}

	f.share.mu.Lock()
	defer f.share.mu.Unlock()

	if err := f.share.checkError("write", f.path); err != nil {
		return 0, err
	}
	if f.data.isDir {
		return 0, errors.New("is a directory")
	}

	end := f.offset + int64(len(p))
	if end > int64(len(f.data.content)) {
		grown := make([]byte, end)
		copy(grown, f.data.content)
		f.data.content = grown
	}

	n := copy(f.data.content[f.offset:], p)
	f.offset += int64(n)
	f.data.modTime = time.Now()
	return n, nil
}

func (f *mockFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}

	f.share.mu.RLock()
	size := int64(len(f.data.content))
	f.share.mu.RUnlock()

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.offset + offset
	case io.SeekEnd:
		pos = size + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if pos < 0 {
		return 0, errors.New("negative offset")
	}

	f.offset = pos
	return pos, nil
}

func (f *mockFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	f.share.recordOp("close", f.path)
	return nil
}

func (f *mockFile) Stat() (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, fs.ErrClosed
	}

	f.share.mu.RLock()
	defer f.share.mu.RUnlock()

	return &mockFileInfo{data: f.data}, nil
}

func (f *mockFile) Readdir(n int) ([]os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, fs.ErrClosed
	}

	f.share.mu.RLock()
	defer f.share.mu.RUnlock()

	if !f.data.isDir {
		return nil, errors.New("not a directory")
	}
	if err := f.share.checkError("readdir", f.path); err != nil {
		return nil, err
	}

	prefix := f.path
	if prefix != "/" {
		prefix += "/"
	}

	var infos []os.FileInfo
	for p, data := range f.share.files {
		if p == f.path || !strings.HasPrefix(p, prefix) {
			continue
		}
		// Direct children only
		if strings.Contains(strings.TrimPrefix(p, prefix), "/") {
			continue
		}
		infos = append(infos, &mockFileInfo{data: data})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	if n <= 0 || n > len(infos) {
		return infos, nil
	}
	return infos[:n], nil
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	data *mockFileData
}

func (fi *mockFileInfo) Name() string       { return fi.data.name }
func (fi *mockFileInfo) Size() int64        { return int64(len(fi.data.content)) }
func (fi *mockFileInfo) Mode() fs.FileMode  { return fi.data.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.data.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.data.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }
