//go:build windows

package smbfs

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modmpr                     = windows.NewLazySystemDLL("mpr.dll")
	procWNetAddConnection2W    = modmpr.NewProc("WNetAddConnection2W")
	procWNetCancelConnection2W = modmpr.NewProc("WNetCancelConnection2W")
)

const resourcetypeDisk = 0x00000001

// WNet error codes relevant to mapping a share.
const (
	wnetSessionCredentialConflict syscall.Errno = 1219
	wnetLogonFailure              syscall.Errno = 1326
	wnetAccessDenied              syscall.Errno = 5
	wnetBadNetPath                syscall.Errno = 53
	wnetBadNetName                syscall.Errno = 67
)

// netResource mirrors the NETRESOURCEW structure used by WNet calls.
type netResource struct {
	Scope       uint32
	Type        uint32
	DisplayType uint32
	Usage       uint32
	LocalName   *uint16
	RemoteName  *uint16
	Comment     *uint16
	Provider    *uint16
}

// wnetConnect authenticates against the UNC path without assigning a drive
// letter. Subsequent os calls on the UNC path reuse the session.
func wnetConnect(creds *Credentials) error {
	remote, err := windows.UTF16PtrFromString(creds.UNCPath())
	if err != nil {
		return err
	}

	// nil username and password request the current or guest identity
	var username, password *uint16
	if creds.Username != "" {
		name := creds.Username
		if creds.Workgroup != "" {
			name = creds.Workgroup + "\\" + creds.Username
		}
		if username, err = windows.UTF16PtrFromString(name); err != nil {
			return err
		}
		if password, err = windows.UTF16PtrFromString(creds.Password); err != nil {
			return err
		}
	}

	res := netResource{
		Type:       resourcetypeDisk,
		RemoteName: remote,
	}

	r0, _, _ := procWNetAddConnection2W.Call(
		uintptr(unsafe.Pointer(&res)),
		uintptr(unsafe.Pointer(password)),
		uintptr(unsafe.Pointer(username)),
		0,
	)
	// A session to the server already exists; reuse it.
	if r0 == uintptr(wnetSessionCredentialConflict) {
		return nil
	}
	if r0 != 0 {
		return syscall.Errno(r0)
	}
	return nil
}

// wnetDisconnect tears down the UNC session established by wnetConnect.
func wnetDisconnect(creds *Credentials) error {
	remote, err := windows.UTF16PtrFromString(creds.UNCPath())
	if err != nil {
		return err
	}

	// force=1 closes the session even with open handles
	r0, _, _ := procWNetCancelConnection2W.Call(
		uintptr(unsafe.Pointer(remote)),
		0,
		1,
	)
	if r0 != 0 {
		return syscall.Errno(r0)
	}
	return nil
}
