//go:build !linux

package client

import "fmt"

// bindToDevice is only implemented on Linux, where SO_BINDTODEVICE exists.
// On other platforms an interface-scoped bind fails loudly rather than
// silently listening on every interface.
func bindToDevice(fd int, iface string) error {
	if iface == "" {
		return nil
	}
	return fmt.Errorf("interface-scoped bind is not supported on this platform")
}
