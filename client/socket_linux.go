//go:build linux

package client

import (
	"golang.org/x/sys/unix"
)

// bindToDevice scopes the socket underlying fd to iface, the way a relay
// agent or a multi-homed client must when more than one interface can
// reach port 68. No-op when iface is empty.
func bindToDevice(fd int, iface string) error {
	if iface == "" {
		return nil
	}
	return unix.BindToDevice(fd, iface)
}
