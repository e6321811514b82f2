package smbfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/remotefs-go/smbfs/remotefs"
)

// SmbFs is the SMB implementation of remotefs.Client. It tracks a working
// directory, resolves every path against it and delegates the protocol
// work to the wrapped SMB library.
type SmbFs struct {
	creds *Credentials
	opts  *Options
	log   logrus.Ext1FieldLogger

	dial dialFunc
	sess *session

	wrkdir string
	norm   *pathNormalizer
}

// Ensure SmbFs implements remotefs.Client.
var _ remotefs.Client = (*SmbFs)(nil)

// New creates an SMB client. The connection is established lazily by
// Connect.
func New(creds *Credentials, opts *Options) (*SmbFs, error) {
	if creds == nil {
		return nil, remotefs.WrapError(remotefs.KindBadAddress, errors.New("credentials are required"))
	}

	creds.setDefaults()
	if err := creds.Validate(); err != nil {
		return nil, remotefs.WrapError(remotefs.KindBadAddress, err)
	}

	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()

	return &SmbFs{
		creds:  creds,
		opts:   opts,
		log:    opts.Logger.WithField("share", creds.UNCPath()),
		dial:   defaultDial,
		wrkdir: "/",
		norm:   newPathNormalizer(opts.CaseSensitive),
	}, nil
}

// Connect dials the server, authenticates and mounts the share. Transient
// network failures are retried with backoff.
func (fsys *SmbFs) Connect() (remotefs.Welcome, error) {
	if fsys.sess != nil {
		return remotefs.Welcome{}, nil
	}

	fsys.log.Trace("connecting")
	sess, err := retry.DoWithData(
		func() (*session, error) {
			return fsys.dial(fsys.creds, fsys.opts)
		},
		retry.Attempts(fsys.opts.RetryAttempts),
		retry.Delay(fsys.opts.RetryDelay),
		retry.MaxDelay(fsys.opts.RetryMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		fsys.log.WithError(err).Error("connection failed")
		return remotefs.Welcome{}, convertError(remotefs.KindConnectionError, err)
	}

	fsys.sess = sess
	fsys.log.Debug("connected")
	return remotefs.Welcome{}, nil
}

// Disconnect unmounts the share and terminates the session.
func (fsys *SmbFs) Disconnect() error {
	if fsys.sess == nil {
		return remotefs.NewError(remotefs.KindNotConnected)
	}

	err := fsys.sess.close()
	fsys.sess = nil
	fsys.log.Debug("disconnected")

	if err != nil {
		return convertError(remotefs.KindConnectionError, err)
	}
	return nil
}

// IsConnected probes the mounted share to verify the session is usable.
func (fsys *SmbFs) IsConnected() bool {
	return fsys.sess != nil && fsys.sess.alive() == nil
}

// Pwd returns the tracked working directory.
func (fsys *SmbFs) Pwd() (string, error) {
	if err := fsys.checkConnection(); err != nil {
		return "", err
	}
	return fsys.wrkdir, nil
}

// ChangeDir resolves dir, verifies it is a directory on the share and
// makes it the working directory.
func (fsys *SmbFs) ChangeDir(dir string) (string, error) {
	if err := fsys.checkConnection(); err != nil {
		return "", err
	}

	abs, _, err := fsys.resolve(dir)
	if err != nil {
		return "", err
	}

	fsys.log.WithField("path", abs).Trace("changing directory")
	file, err := fsys.statAbs(abs)
	if err != nil {
		return "", err
	}
	if !file.IsDir() {
		fsys.log.WithField("path", abs).Error("cannot enter: not a directory")
		return "", remotefs.WrapError(remotefs.KindBadFile, errors.New("not a directory"))
	}

	fsys.wrkdir = abs
	fsys.log.WithField("path", abs).Debug("new working directory")
	return fsys.wrkdir, nil
}

// List returns the entries of the directory at p.
func (fsys *SmbFs) List(p string) ([]remotefs.File, error) {
	if err := fsys.checkConnection(); err != nil {
		return nil, err
	}

	abs, smbPath, err := fsys.resolve(p)
	if err != nil {
		return nil, err
	}

	fsys.log.WithField("path", abs).Trace("listing files")
	handle, err := fsys.sess.share.OpenFile(smbPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, convertError(remotefs.KindCouldNotOpenFile, err)
	}
	defer handle.Close()

	infos, err := handle.Readdir(-1)
	if err != nil {
		return nil, convertError(remotefs.KindStatFailed, err)
	}

	files := make([]remotefs.File, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		files = append(files, fileInfoToFile(path.Join(abs, fi.Name()), fi))
	}
	return files, nil
}

// Stat returns the file at p with its metadata.
func (fsys *SmbFs) Stat(p string) (remotefs.File, error) {
	if err := fsys.checkConnection(); err != nil {
		return remotefs.File{}, err
	}

	abs, _, err := fsys.resolve(p)
	if err != nil {
		return remotefs.File{}, err
	}

	return fsys.statAbs(abs)
}

// SetStat applies the timestamps and mode carried by metadata. Fields left
// at their zero value are not touched.
func (fsys *SmbFs) SetStat(p string, metadata remotefs.Metadata) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	abs, smbPath, err := fsys.resolve(p)
	if err != nil {
		return err
	}

	fsys.log.WithField("path", abs).Trace("setting stat")
	if !metadata.Modified.IsZero() || !metadata.Accessed.IsZero() {
		atime, mtime := metadata.Accessed, metadata.Modified
		// The share wants both; mirror the one that was provided.
		if atime.IsZero() {
			atime = mtime
		}
		if mtime.IsZero() {
			mtime = atime
		}
		if err := fsys.sess.share.Chtimes(smbPath, atime, mtime); err != nil {
			return convertError(remotefs.KindCouldNotOpenFile, err)
		}
	}

	if metadata.Mode != 0 {
		if err := fsys.sess.share.Chmod(smbPath, metadata.Mode); err != nil {
			return convertError(remotefs.KindCouldNotOpenFile, err)
		}
	}

	return nil
}

// Exists reports whether p denotes an existing file or directory.
func (fsys *SmbFs) Exists(p string) (bool, error) {
	fsys.log.WithField("path", p).Trace("checking existence")
	_, err := fsys.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case remotefs.IsKind(err, remotefs.KindNoSuchFileOrDirectory),
		remotefs.IsKind(err, remotefs.KindStatFailed):
		return false, nil
	default:
		return false, err
	}
}

// RemoveFile removes the file at p.
func (fsys *SmbFs) RemoveFile(p string) error {
	return fsys.remove(p, "removing file")
}

// RemoveDir removes the empty directory at p.
func (fsys *SmbFs) RemoveDir(p string) error {
	return fsys.remove(p, "removing directory")
}

// RemoveDirAll removes p and everything below it, children first.
func (fsys *SmbFs) RemoveDirAll(p string) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	abs, _, err := fsys.resolve(p)
	if err != nil {
		return err
	}

	file, err := fsys.statAbs(abs)
	if err != nil {
		return err
	}

	if file.IsDir() {
		entries, err := fsys.List(abs)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := fsys.RemoveDirAll(entry.Path); err != nil {
				return err
			}
		}
	}

	return fsys.remove(abs, "removing")
}

// CreateDir creates the directory at p. Creating over an existing path
// fails with KindDirectoryAlreadyExists.
func (fsys *SmbFs) CreateDir(p string, mode fs.FileMode) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	exists, err := fsys.Exists(p)
	if err != nil {
		return err
	}
	if exists {
		return remotefs.NewError(remotefs.KindDirectoryAlreadyExists)
	}

	abs, smbPath, err := fsys.resolve(p)
	if err != nil {
		return err
	}

	fsys.log.WithField("path", abs).Trace("making directory")
	if err := fsys.sess.share.Mkdir(smbPath, mode); err != nil {
		return convertError(remotefs.KindFileCreateDenied, err)
	}
	return nil
}

// Symlink is not supported over SMB.
func (fsys *SmbFs) Symlink(p, target string) error {
	return remotefs.NewError(remotefs.KindUnsupportedFeature)
}

// Copy copies src to dst through the client, recursing into directories.
// SMB has no server-side copy in the wrapped surface, so the bytes travel
// through this host.
func (fsys *SmbFs) Copy(src, dst string) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	absSrc, _, err := fsys.resolve(src)
	if err != nil {
		return err
	}
	absDst, _, err := fsys.resolve(dst)
	if err != nil {
		return err
	}

	fsys.log.WithFields(logrus.Fields{"src": absSrc, "dst": absDst}).Trace("copying")
	srcFile, err := fsys.statAbs(absSrc)
	if err != nil {
		return err
	}

	if srcFile.IsDir() {
		if exists, err := fsys.Exists(absDst); err != nil {
			return err
		} else if !exists {
			if err := fsys.CreateDir(absDst, 0775); err != nil {
				return err
			}
		}
		entries, err := fsys.List(absSrc)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := fsys.Copy(entry.Path, path.Join(absDst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	// If the destination is an existing directory, copy into it.
	if dstFile, err := fsys.statAbs(absDst); err == nil && dstFile.IsDir() {
		absDst = path.Join(absDst, srcFile.Name())
	}

	reader, err := fsys.Open(absSrc)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := fsys.Create(absDst, srcFile.Metadata)
	if err != nil {
		return err
	}

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return convertError(remotefs.KindIOError, err)
	}
	if err := writer.Close(); err != nil {
		return convertError(remotefs.KindIOError, err)
	}
	return nil
}

// Move renames src to dst on the share.
func (fsys *SmbFs) Move(src, dst string) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	_, smbSrc, err := fsys.resolve(src)
	if err != nil {
		return err
	}
	_, smbDst, err := fsys.resolve(dst)
	if err != nil {
		return err
	}

	fsys.log.WithFields(logrus.Fields{"src": smbSrc, "dst": smbDst}).Trace("moving")
	if err := fsys.sess.share.Rename(smbSrc, smbDst); err != nil {
		return convertError(remotefs.KindProtocolError, err)
	}
	return nil
}

// Exec is not supported: an SMB share carries files, not shells.
func (fsys *SmbFs) Exec(cmd string) (uint32, string, error) {
	return 0, "", remotefs.NewError(remotefs.KindUnsupportedFeature)
}

// CreateFile writes src to a new file at p and returns the bytes written.
func (fsys *SmbFs) CreateFile(p string, metadata remotefs.Metadata, src io.Reader) (int64, error) {
	writer, err := fsys.Create(p, metadata)
	if err != nil {
		return 0, err
	}
	return fsys.transfer(writer, src)
}

// AppendFile appends src to the file at p and returns the bytes written.
func (fsys *SmbFs) AppendFile(p string, metadata remotefs.Metadata, src io.Reader) (int64, error) {
	writer, err := fsys.Append(p, metadata)
	if err != nil {
		return 0, err
	}
	return fsys.transfer(writer, src)
}

// OpenFile copies the content of the file at p to dst and returns the
// bytes read.
func (fsys *SmbFs) OpenFile(p string, dst io.Writer) (int64, error) {
	reader, err := fsys.Open(p)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	n, err := io.Copy(dst, reader)
	if err != nil {
		return n, convertError(remotefs.KindIOError, err)
	}
	return n, nil
}

// Create opens a write stream to a new file at p, truncating existing
// content.
func (fsys *SmbFs) Create(p string, metadata remotefs.Metadata) (io.WriteCloser, error) {
	return fsys.openStream(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, metadata.Mode, "creating file")
}

// Append opens a write stream positioned at the end of the file at p,
// creating it if needed.
func (fsys *SmbFs) Append(p string, metadata remotefs.Metadata) (io.WriteCloser, error) {
	return fsys.openStream(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, metadata.Mode, "opening file for append")
}

// Open opens a read stream for the file at p.
func (fsys *SmbFs) Open(p string) (io.ReadCloser, error) {
	return fsys.openStream(p, os.O_RDONLY, 0, "opening file for read")
}

// -- internals

func (fsys *SmbFs) checkConnection() error {
	if fsys.sess == nil {
		return remotefs.NewError(remotefs.KindNotConnected)
	}
	return nil
}

// resolve validates p and absolutizes it against the working directory,
// returning both the normalized and the share-relative form.
func (fsys *SmbFs) resolve(p string) (abs, smbPath string, err error) {
	if err := validatePath(p); err != nil {
		return "", "", convertError(remotefs.KindBadFile, err)
	}
	abs = fsys.norm.absolutize(fsys.wrkdir, p)
	return abs, toSMBPath(abs), nil
}

// statAbs stats an already-absolutized path.
func (fsys *SmbFs) statAbs(abs string) (remotefs.File, error) {
	fsys.log.WithField("path", abs).Trace("stat")
	fi, err := fsys.sess.share.Stat(toSMBPath(abs))
	if err != nil {
		return remotefs.File{}, convertError(remotefs.KindStatFailed, err)
	}
	return fileInfoToFile(abs, fi), nil
}

func (fsys *SmbFs) remove(p, msg string) error {
	if err := fsys.checkConnection(); err != nil {
		return err
	}

	abs, smbPath, err := fsys.resolve(p)
	if err != nil {
		return err
	}

	fsys.log.WithField("path", abs).Trace(msg)
	if err := fsys.sess.share.Remove(smbPath); err != nil {
		return convertError(remotefs.KindCouldNotRemoveFile, err)
	}
	return nil
}

// openStream opens a handle on the share and wraps it in an error-mapping
// stream.
func (fsys *SmbFs) openStream(p string, flag int, mode fs.FileMode, msg string) (*stream, error) {
	if err := fsys.checkConnection(); err != nil {
		return nil, err
	}

	abs, smbPath, err := fsys.resolve(p)
	if err != nil {
		return nil, err
	}

	if mode == 0 {
		mode = 0644
	}

	fsys.log.WithField("path", abs).Trace(msg)
	handle, err := fsys.sess.share.OpenFile(smbPath, flag, mode)
	if err != nil {
		return nil, convertError(remotefs.KindCouldNotOpenFile, err)
	}
	return &stream{handle: handle, path: abs}, nil
}

// transfer drains src into writer, closing it afterwards.
func (fsys *SmbFs) transfer(writer io.WriteCloser, src io.Reader) (int64, error) {
	n, err := io.Copy(writer, src)
	if err != nil {
		writer.Close()
		return n, convertError(remotefs.KindIOError, err)
	}
	if err := writer.Close(); err != nil {
		return n, convertError(remotefs.KindIOError, err)
	}
	return n, nil
}
