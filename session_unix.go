//go:build !windows

package smbfs

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hirochachacha/go-smb2"
)

// defaultDial is the production connection path for this platform.
var defaultDial dialFunc = dialSMB

// session owns one live connection: the TCP transport, the authenticated
// SMB session and the mounted share.
type session struct {
	conn  net.Conn
	smb   *smb2.Session
	share share
}

// dialSMB establishes a TCP connection, performs the NTLM session setup and
// mounts the share. The protocol handshake itself is owned by go-smb2.
func dialSMB(creds *Credentials, opts *Options) (*session, error) {
	dialer := &net.Dialer{Timeout: opts.ConnTimeout}

	addr := net.JoinHostPort(creds.Server, strconv.Itoa(creds.Port))
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     creds.Username,
			Password: creds.Password,
			Domain:   creds.Workgroup,
		},
	}

	smbSession, err := d.Dial(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMB session setup failed: %w", err)
	}

	mounted, err := smbSession.Mount(creds.Share)
	if err != nil {
		smbSession.Logoff()
		conn.Close()
		return nil, fmt.Errorf("failed to mount share %s: %w", creds.Share, err)
	}

	return &session{
		conn:  conn,
		smb:   smbSession,
		share: &smbShare{mounted},
	}, nil
}

// close unmounts the share and logs off. A successful logoff tears down the
// TCP connection; on any other path the connection is closed directly so the
// socket never leaks.
func (s *session) close() error {
	var err error
	if s.share != nil {
		err = s.share.Umount()
		s.share = nil
	}

	loggedOff := false
	if s.smb != nil {
		lerr := s.smb.Logoff()
		loggedOff = lerr == nil
		if err == nil {
			err = lerr
		}
		s.smb = nil
	}

	if s.conn != nil && !loggedOff {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	s.conn = nil
	return err
}

// alive probes the mounted share. A stat of the share root doubles as the
// connection health check.
func (s *session) alive() error {
	if s.share == nil {
		return errSessionClosed
	}
	_, err := s.share.Stat(".")
	return err
}

// smbShare adapts *smb2.Share to the share interface. Everything promotes
// except OpenFile, whose concrete return type needs wrapping.
type smbShare struct {
	*smb2.Share
}

func (s *smbShare) OpenFile(name string, flag int, perm os.FileMode) (shareFile, error) {
	f, err := s.Share.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}
