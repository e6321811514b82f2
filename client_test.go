package smbfs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remotefs-go/smbfs/remotefs"
)

func testCredentials() *Credentials {
	return &Credentials{
		Server:   "fileserver",
		Share:    "data",
		Username: "operator",
		Password: "secret",
	}
}

func testOptions() *Options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Options{
		Logger:        logger,
		RetryAttempts: 1,
	}
}

// newTestClient returns a connected client whose session is backed by mock.
func newTestClient(t *testing.T, mock *MockShare) *SmbFs {
	t.Helper()

	client, err := New(testCredentials(), testOptions())
	require.NoError(t, err)

	client.dial = func(creds *Credentials, opts *Options) (*session, error) {
		return &session{share: mock}, nil
	}

	_, err = client.Connect()
	require.NoError(t, err)
	return client
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		creds *Credentials
	}{
		{"nil credentials", nil},
		{"missing server", &Credentials{Share: "data"}},
		{"missing share", &Credentials{Server: "fileserver"}},
		{"invalid port", &Credentials{Server: "fileserver", Share: "data", Port: 70000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.creds, nil)
			require.Error(t, err)
			assert.True(t, remotefs.IsKind(err, remotefs.KindBadAddress))
		})
	}
}

func TestConnectRetriesTransientFailures(t *testing.T) {
	client, err := New(testCredentials(), &Options{
		Logger:        testOptions().Logger,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
	require.NoError(t, err)

	mock := NewMockShare()
	attempts := 0
	client.dial = func(creds *Credentials, opts *Options) (*session, error) {
		attempts++
		if attempts < 3 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return &session{share: mock}, nil
	}

	_, err = client.Connect()
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, client.IsConnected())
}

func TestConnectDoesNotRetryFinalFailures(t *testing.T) {
	client, err := New(testCredentials(), testOptions())
	require.NoError(t, err)

	attempts := 0
	client.dial = func(creds *Credentials, opts *Options) (*session, error) {
		attempts++
		return nil, errors.New("logon failure")
	}

	_, err = client.Connect()
	require.Error(t, err)
	assert.True(t, remotefs.IsKind(err, remotefs.KindConnectionError))
	assert.Equal(t, 1, attempts)
}

func TestOperationsRequireConnection(t *testing.T) {
	client, err := New(testCredentials(), testOptions())
	require.NoError(t, err)

	_, err = client.Pwd()
	assert.True(t, remotefs.IsKind(err, remotefs.KindNotConnected))

	_, err = client.List("/")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNotConnected))

	_, err = client.Stat("/file.txt")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNotConnected))

	err = client.Disconnect()
	assert.True(t, remotefs.IsKind(err, remotefs.KindNotConnected))

	assert.False(t, client.IsConnected())
}

func TestDisconnect(t *testing.T) {
	mock := NewMockShare()
	client := newTestClient(t, mock)

	require.True(t, client.IsConnected())
	require.NoError(t, client.Disconnect())
	assert.False(t, client.IsConnected())

	err := client.Disconnect()
	assert.True(t, remotefs.IsKind(err, remotefs.KindNotConnected))
}

func TestIsConnectedProbesShare(t *testing.T) {
	mock := NewMockShare()
	client := newTestClient(t, mock)

	require.True(t, client.IsConnected())

	mock.SetOperationError("stat", errors.New("broken pipe"))
	assert.False(t, client.IsConnected())
}

func TestConnectLogsAtTraceLevel(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	client, err := New(testCredentials(), &Options{Logger: logger, RetryAttempts: 1})
	require.NoError(t, err)

	client.dial = func(creds *Credentials, opts *Options) (*session, error) {
		return &session{share: NewMockShare()}, nil
	}
	_, err = client.Connect()
	require.NoError(t, err)

	messages := make([]string, 0, len(hook.AllEntries()))
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "connecting")
	assert.Contains(t, messages, "connected")
}

func TestRelativeDotDotPaths(t *testing.T) {
	mock := NewMockShare()
	mock.AddDir("/projects/alpha", 0755)
	mock.AddFile("/projects/readme.txt", []byte("hello"), 0644)
	client := newTestClient(t, mock)

	_, err := client.ChangeDir("/projects/alpha")
	require.NoError(t, err)

	// Walk one level up through a relative path
	wrkdir, err := client.ChangeDir("..")
	require.NoError(t, err)
	assert.Equal(t, "/projects", wrkdir)

	// Dot-dot inside a relative path resolves against the working directory
	_, err = client.ChangeDir("alpha")
	require.NoError(t, err)
	file, err := client.Stat("../readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "/projects/readme.txt", file.Path)

	// Climbing past the share root clamps at the root
	wrkdir, err = client.ChangeDir("../../../..")
	require.NoError(t, err)
	assert.Equal(t, "/", wrkdir)
}

func TestPwdAndChangeDir(t *testing.T) {
	mock := NewMockShare()
	mock.AddDir("/projects/alpha", 0755)
	mock.AddFile("/projects/readme.txt", []byte("hello"), 0644)
	client := newTestClient(t, mock)

	wrkdir, err := client.Pwd()
	require.NoError(t, err)
	assert.Equal(t, "/", wrkdir)

	// Absolute change
	wrkdir, err = client.ChangeDir("/projects")
	require.NoError(t, err)
	assert.Equal(t, "/projects", wrkdir)

	// Relative change resolves against the working directory
	wrkdir, err = client.ChangeDir("alpha")
	require.NoError(t, err)
	assert.Equal(t, "/projects/alpha", wrkdir)

	// Dot-dot walks up
	wrkdir, err = client.ChangeDir("..")
	require.NoError(t, err)
	assert.Equal(t, "/projects", wrkdir)

	// Changing into a file fails and keeps the working directory
	_, err = client.ChangeDir("readme.txt")
	assert.True(t, remotefs.IsKind(err, remotefs.KindBadFile))

	wrkdir, err = client.Pwd()
	require.NoError(t, err)
	assert.Equal(t, "/projects", wrkdir)

	// Changing into a missing directory fails
	_, err = client.ChangeDir("/nowhere")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestList(t *testing.T) {
	mock := NewMockShare()
	mock.AddDir("/docs", 0755)
	mock.AddFile("/docs/a.txt", []byte("aaa"), 0644)
	mock.AddFile("/docs/b.txt", []byte("bbbb"), 0644)
	mock.AddDir("/docs/sub", 0755)
	mock.AddFile("/docs/sub/nested.txt", []byte("nested"), 0644)
	client := newTestClient(t, mock)

	files, err := client.List("/docs")
	require.NoError(t, err)
	require.Len(t, files, 3)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "sub"}, names)

	for _, f := range files {
		assert.True(t, strings.HasPrefix(f.Path, "/docs/"))
		switch f.Name() {
		case "a.txt":
			assert.Equal(t, int64(3), f.Metadata.Size)
			assert.True(t, f.IsFile())
		case "sub":
			assert.True(t, f.IsDir())
		}
	}
}

func TestListRelativePath(t *testing.T) {
	mock := NewMockShare()
	mock.AddDir("/docs", 0755)
	mock.AddFile("/docs/a.txt", []byte("aaa"), 0644)
	client := newTestClient(t, mock)

	_, err := client.ChangeDir("/docs")
	require.NoError(t, err)

	files, err := client.List(".")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/docs/a.txt", files[0].Path)
}

func TestListMissingDirectory(t *testing.T) {
	client := newTestClient(t, NewMockShare())

	_, err := client.List("/nowhere")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestStat(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/report.pdf", []byte("0123456789"), 0644)
	client := newTestClient(t, mock)

	file, err := client.Stat("/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/report.pdf", file.Path)
	assert.Equal(t, "report.pdf", file.Name())
	assert.Equal(t, "pdf", file.Extension())
	assert.Equal(t, int64(10), file.Metadata.Size)
	assert.True(t, file.IsFile())
	assert.False(t, file.Metadata.Modified.IsZero())

	_, err = client.Stat("/missing")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestStatInvalidPath(t *testing.T) {
	client := newTestClient(t, NewMockShare())

	for _, p := range []string{"", "a\x00b"} {
		_, err := client.Stat(p)
		assert.True(t, remotefs.IsKind(err, remotefs.KindBadFile), "path %q", p)
	}
}

func TestSetStat(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/notes.txt", []byte("x"), 0644)
	client := newTestClient(t, mock)

	mtime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	err := client.SetStat("/notes.txt", remotefs.Metadata{
		Modified: mtime,
		Mode:     0600,
	})
	require.NoError(t, err)

	file, err := client.Stat("/notes.txt")
	require.NoError(t, err)
	assert.True(t, file.Metadata.Modified.Equal(mtime))
	assert.Equal(t, "-rw-------", file.Metadata.Mode.String())

	// Zero metadata touches nothing
	mock.ClearOperations()
	require.NoError(t, client.SetStat("/notes.txt", remotefs.Metadata{}))
	for _, op := range mock.Operations() {
		assert.NotContains(t, []string{"chtimes", "chmod"}, op.Op)
	}
}

func TestExists(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/present.txt", []byte("y"), 0644)
	client := newTestClient(t, mock)

	exists, err := client.Exists("/present.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.Exists("/absent.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateDir(t *testing.T) {
	mock := NewMockShare()
	client := newTestClient(t, mock)

	require.NoError(t, client.CreateDir("/fresh", 0755))
	assert.True(t, mock.HasPath("/fresh"))

	err := client.CreateDir("/fresh", 0755)
	assert.True(t, remotefs.IsKind(err, remotefs.KindDirectoryAlreadyExists))
}

func TestRemoveFile(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/junk.tmp", []byte("z"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.RemoveFile("/junk.tmp"))
	assert.False(t, mock.HasPath("/junk.tmp"))

	err := client.RemoveFile("/junk.tmp")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestRemoveDir(t *testing.T) {
	mock := NewMockShare()
	mock.AddDir("/empty", 0755)
	mock.AddFile("/full/file.txt", []byte("k"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.RemoveDir("/empty"))
	assert.False(t, mock.HasPath("/empty"))

	err := client.RemoveDir("/full")
	assert.True(t, remotefs.IsKind(err, remotefs.KindCouldNotRemoveFile))
	assert.True(t, mock.HasPath("/full"))
}

func TestRemoveDirAll(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/tree/a.txt", []byte("a"), 0644)
	mock.AddFile("/tree/sub/b.txt", []byte("b"), 0644)
	mock.AddDir("/tree/sub/deeper", 0755)
	client := newTestClient(t, mock)

	require.NoError(t, client.RemoveDirAll("/tree"))
	assert.False(t, mock.HasPath("/tree"))
	assert.False(t, mock.HasPath("/tree/sub/b.txt"))
}

func TestCreateFileAndOpenFile(t *testing.T) {
	mock := NewMockShare()
	client := newTestClient(t, mock)

	n, err := client.CreateFile("/out.txt", remotefs.Metadata{Mode: 0644}, strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	content, ok := mock.Content("/out.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), content)

	var buf bytes.Buffer
	n, err = client.OpenFile("/out.txt", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", buf.String())
}

func TestCreateFileTruncatesExisting(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/out.txt", []byte("old content that is longer"), 0644)
	client := newTestClient(t, mock)

	_, err := client.CreateFile("/out.txt", remotefs.Metadata{}, strings.NewReader("new"))
	require.NoError(t, err)

	content, ok := mock.Content("/out.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), content)
}

func TestAppendFile(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/log.txt", []byte("first\n"), 0644)
	client := newTestClient(t, mock)

	n, err := client.AppendFile("/log.txt", remotefs.Metadata{}, strings.NewReader("second\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	content, ok := mock.Content("/log.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("first\nsecond\n"), content)
}

func TestOpenMissingFile(t *testing.T) {
	client := newTestClient(t, NewMockShare())

	var buf bytes.Buffer
	_, err := client.OpenFile("/missing.txt", &buf)
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestStreams(t *testing.T) {
	mock := NewMockShare()
	client := newTestClient(t, mock)

	w, err := client.Create("/stream.bin", remotefs.Metadata{Mode: 0644})
	require.NoError(t, err)
	_, err = w.Write([]byte("chunk1"))
	require.NoError(t, err)
	_, err = w.Write([]byte("chunk2"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := client.Open("/stream.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "chunk1chunk2", string(data))

	// Writing after close fails
	_, err = w.Write([]byte("late"))
	assert.True(t, remotefs.IsKind(err, remotefs.KindIOError))

	// Double close is harmless
	assert.NoError(t, r.Close())
}

func TestCopyFile(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/src.txt", []byte("copy me"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.Copy("/src.txt", "/dst.txt"))

	content, ok := mock.Content("/dst.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("copy me"), content)

	// Source is untouched
	content, ok = mock.Content("/src.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("copy me"), content)
}

func TestCopyFileIntoDirectory(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/src.txt", []byte("copy me"), 0644)
	mock.AddDir("/backup", 0755)
	client := newTestClient(t, mock)

	require.NoError(t, client.Copy("/src.txt", "/backup"))

	content, ok := mock.Content("/backup/src.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("copy me"), content)
}

func TestCopyDirectoryRecursive(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/proj/main.go", []byte("package main"), 0644)
	mock.AddFile("/proj/sub/util.go", []byte("package sub"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.Copy("/proj", "/proj2"))

	content, ok := mock.Content("/proj2/main.go")
	require.True(t, ok)
	assert.Equal(t, []byte("package main"), content)

	content, ok = mock.Content("/proj2/sub/util.go")
	require.True(t, ok)
	assert.Equal(t, []byte("package sub"), content)
}

func TestCopyMissingSource(t *testing.T) {
	client := newTestClient(t, NewMockShare())

	err := client.Copy("/nowhere", "/dst")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestMove(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/old.txt", []byte("data"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.Move("/old.txt", "/new.txt"))
	assert.False(t, mock.HasPath("/old.txt"))

	content, ok := mock.Content("/new.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("data"), content)

	err := client.Move("/old.txt", "/elsewhere.txt")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestMoveDirectoryCarriesChildren(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/dir/inner.txt", []byte("inner"), 0644)
	client := newTestClient(t, mock)

	require.NoError(t, client.Move("/dir", "/renamed"))
	assert.False(t, mock.HasPath("/dir"))

	content, ok := mock.Content("/renamed/inner.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("inner"), content)
}

func TestUnsupportedOperations(t *testing.T) {
	client := newTestClient(t, NewMockShare())

	err := client.Symlink("/link", "/target")
	assert.True(t, remotefs.IsKind(err, remotefs.KindUnsupportedFeature))

	_, _, err = client.Exec("ls")
	assert.True(t, remotefs.IsKind(err, remotefs.KindUnsupportedFeature))
}

func TestCaseInsensitivePaths(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/docs/readme.md", []byte("hi"), 0644)
	client := newTestClient(t, mock)

	// Default configuration folds path case
	file, err := client.Stat("/Docs/README.md")
	require.NoError(t, err)
	assert.Equal(t, "/docs/readme.md", file.Path)
}

func TestCaseSensitivePaths(t *testing.T) {
	opts := testOptions()
	opts.CaseSensitive = true
	client, err := New(testCredentials(), opts)
	require.NoError(t, err)

	mock := NewMockShare()
	mock.AddFile("/Docs/README.md", []byte("hi"), 0644)
	client.dial = func(creds *Credentials, opts *Options) (*session, error) {
		return &session{share: mock}, nil
	}
	_, err = client.Connect()
	require.NoError(t, err)

	file, err := client.Stat("/Docs/README.md")
	require.NoError(t, err)
	assert.Equal(t, "/Docs/README.md", file.Path)

	_, err = client.Stat("/docs/readme.md")
	assert.True(t, remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory))
}

func TestPermissionErrorMapping(t *testing.T) {
	mock := NewMockShare()
	mock.AddFile("/locked.txt", []byte("x"), 0644)
	mock.SetError("/locked.txt", fs.ErrPermission)
	client := newTestClient(t, mock)

	_, err := client.Stat("/locked.txt")
	assert.True(t, remotefs.IsKind(err, remotefs.KindPexError))
}
