package client

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// DefaultClientPort and DefaultServerPort are the well-known DHCP ports
// (RFC 2131 §4.1). Tests that cannot bind privileged ports override both
// via Config.
const (
	DefaultClientPort = 68
	DefaultServerPort = 67
)

// socket wraps the single broadcast UDP socket a get_lease call owns for
// its duration. It is bound to the client port, optionally scoped to one
// interface via SO_BINDTODEVICE, and wrapped in an ipv4.PacketConn so the
// caller can read back which interface a reply actually arrived on.
type socket struct {
	pc   *ipv4.PacketConn
	conn *net.UDPConn
}

// newSocket opens and configures the client's broadcast socket. iface may
// be empty, in which case the socket listens on all interfaces.
func newSocket(iface string, clientPort int) (*socket, error) {
	udpConn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: clientPort})
	if err != nil {
		return nil, fmt.Errorf("listening on udp4:%d: %w", clientPort, err)
	}

	raw, err := udpConn.SyscallConn()
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("getting raw conn: %w", err)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
			return
		}
		sockErr = bindToDevice(int(fd), iface)
	}); err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("controlling raw conn: %w", err)
	}
	if sockErr != nil {
		udpConn.Close()
		return nil, fmt.Errorf("configuring socket (iface %q): %w", iface, sockErr)
	}

	pc := ipv4.NewPacketConn(udpConn)
	if err := pc.SetControlMessage(ipv4.FlagInterface, true); err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("enabling interface control messages: %w", err)
	}

	return &socket{pc: pc, conn: udpConn}, nil
}

func (s *socket) sendBroadcast(data []byte, serverPort int) error {
	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: serverPort}
	_, err := s.pc.WriteTo(data, nil, dst)
	return err
}

func (s *socket) sendTo(data []byte, addr *net.UDPAddr) error {
	_, err := s.pc.WriteTo(data, nil, addr)
	return err
}

func (s *socket) close() error {
	return s.conn.Close()
}
