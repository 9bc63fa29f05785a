package client

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/dhcpwire/dhcpv4"
)

// DefaultTimeout is the per-attempt deadline for each of the two awaits
// (OFFER, ACK) when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Config configures a single GetLease call.
type Config struct {
	Interface     string
	HardwareAddr  string // colon- or dash-separated hex
	SendBroadcast bool
	Server        net.IP
	Relay         net.IP // if set, placed in giaddr and SendBroadcast is cleared
	ExtraOptions  *dhcpv4.OptionList
	Timeout       time.Duration // per-attempt deadline; defaults to DefaultTimeout
	Logger        *slog.Logger

	// ClientPort and ServerPort override the well-known DHCP ports
	// (68/67). Zero means the default; tests that cannot bind privileged
	// ports set both to an ephemeral pair on a loopback harness.
	ClientPort int
	ServerPort int
}

// Lease is the immutable result of a successful DORA exchange.
type Lease struct {
	Discover *dhcpv4.Packet
	Offer    *dhcpv4.Packet
	Request  *dhcpv4.Packet
	Ack      *dhcpv4.Packet
	Elapsed  time.Duration
	Server   *net.UDPAddr
}

func randomXID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// GetLease runs one DISCOVER → OFFER → REQUEST → ACK exchange and returns
// the resulting Lease, or a typed *dhcpv4.Error on failure. The socket
// used for the exchange is opened at the start of the call and closed on
// every exit path.
func GetLease(ctx context.Context, cfg Config) (lease *Lease, err error) {
	start := time.Now()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	defer func() {
		outcome := "bound"
		if err != nil {
			if kind, ok := dhcpv4.KindOf(err); ok {
				outcome = kind.String()
			} else {
				outcome = "error"
			}
		}
		LeaseAttempts.WithLabelValues(outcome).Inc()
		LeaseDuration.Observe(time.Since(start).Seconds())
	}()

	clientPort := cfg.ClientPort
	if clientPort == 0 {
		clientPort = DefaultClientPort
	}
	serverPort := cfg.ServerPort
	if serverPort == 0 {
		serverPort = DefaultServerPort
	}

	xid, rerr := randomXID()
	if rerr != nil {
		return nil, dhcpv4wrap("GetLease", dhcpv4.SocketError, rerr)
	}

	sock, err := newSocket(cfg.Interface, clientPort)
	if err != nil {
		return nil, dhcpv4wrap("GetLease", dhcpv4.SocketError, err)
	}
	defer sock.close()

	sendBroadcast := cfg.SendBroadcast
	var giaddr net.IP
	if cfg.Relay != nil {
		giaddr = cfg.Relay.To4()
		sendBroadcast = false
	}

	discoverOpts := cfg.ExtraOptions
	discover, err := dhcpv4.Discover(cfg.HardwareAddr, xid, discoverOpts)
	if err != nil {
		return nil, err
	}
	if giaddr != nil {
		discover.GIAddr = giaddr
	}

	dest := dialAddr(cfg.Server, sendBroadcast, serverPort)
	if err := sendPacket(sock, discover, dest); err != nil {
		return nil, dhcpv4wrap("GetLease", dhcpv4.SocketError, err)
	}
	PacketsSent.WithLabelValues("DHCPDISCOVER").Inc()
	logger.Debug("sent DHCPDISCOVER", "xid", xid, "dest", dest.String())

	offer, offerSrc, err := awaitReply(ctx, sock, xid, discover.CHAddr, timeout, logger)
	if err != nil {
		return nil, err
	}
	if offer.MessageType() != "DHCPOFFER" {
		return nil, dhcpv4wrap("GetLease", dhcpv4.ProtocolViolation, fmt.Errorf("expected DHCPOFFER, got %s", offer.MessageType()))
	}
	serverIDOpt, ok := offer.Options.ByCode(54)
	if !ok {
		return nil, dhcpv4wrap("GetLease", dhcpv4.ProtocolViolation, fmt.Errorf("OFFER missing ServerIdentifier"))
	}
	serverIDVal, err := serverIDOpt.Value()
	if err != nil {
		return nil, dhcpv4wrap("GetLease", dhcpv4.ProtocolViolation, fmt.Errorf("OFFER ServerIdentifier: %w", err))
	}
	serverIDStr, _ := serverIDVal.(string)

	requestOpts := cfg.ExtraOptions
	if requestOpts == nil {
		requestOpts = dhcpv4.NewOptionList()
	} else {
		requestOpts = requestOpts.Clone()
	}
	if err := appendValue(requestOpts, "dhcp_server", serverIDStr); err != nil {
		return nil, err
	}
	if err := appendValue(requestOpts, "requested_ip_address", offer.YIAddr.String()); err != nil {
		return nil, err
	}

	request, err := dhcpv4.Request(cfg.HardwareAddr, xid, requestOpts)
	if err != nil {
		return nil, err
	}
	if giaddr != nil {
		request.GIAddr = giaddr
	}

	if err := sendPacket(sock, request, dest); err != nil {
		return nil, dhcpv4wrap("GetLease", dhcpv4.SocketError, err)
	}
	PacketsSent.WithLabelValues("DHCPREQUEST").Inc()
	logger.Debug("sent DHCPREQUEST", "xid", xid, "dest", dest.String())

	ack, _, err := awaitReply(ctx, sock, xid, discover.CHAddr, timeout, logger)
	if err != nil {
		return nil, err
	}
	switch ack.MessageType() {
	case "DHCPACK":
	case "DHCPNAK":
		return nil, dhcpv4wrap("GetLease", dhcpv4.Nak, fmt.Errorf("server sent DHCPNAK"))
	default:
		return nil, dhcpv4wrap("GetLease", dhcpv4.ProtocolViolation, fmt.Errorf("expected DHCPACK, got %s", ack.MessageType()))
	}

	return &Lease{
		Discover: discover,
		Offer:    offer,
		Request:  request,
		Ack:      ack,
		Elapsed:  time.Since(start),
		Server:   offerSrc,
	}, nil
}

func appendValue(l *dhcpv4.OptionList, name string, value any) error {
	opt, err := dhcpv4.FromValue(name, value)
	if err != nil {
		return err
	}
	return l.Append(opt)
}

func dialAddr(server net.IP, broadcast bool, serverPort int) *net.UDPAddr {
	if broadcast || server == nil {
		return &net.UDPAddr{IP: net.IPv4bcast, Port: serverPort}
	}
	return &net.UDPAddr{IP: server.To4(), Port: serverPort}
}

func sendPacket(sock *socket, pkt *dhcpv4.Packet, dest *net.UDPAddr) error {
	data, err := pkt.Encode()
	if err != nil {
		return err
	}
	if dest.IP.Equal(net.IPv4bcast) {
		return sock.sendBroadcast(data, dest.Port)
	}
	return sock.sendTo(data, dest)
}

// awaitReply reads datagrams until one decodes to a BOOTREPLY matching xid
// and chaddr, or the deadline expires. Non-matching datagrams (wrong xid,
// wrong chaddr, wrong op, or undecodable bytes) are discarded silently per
// the spec's transaction-correlation rule.
func awaitReply(ctx context.Context, sock *socket, xid uint32, chaddr net.HardwareAddr, timeout time.Duration, logger *slog.Logger) (*dhcpv4.Packet, *net.UDPAddr, error) {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := sock.conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, dhcpv4wrap("awaitReply", dhcpv4.SocketError, err)
	}

	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return nil, nil, dhcpv4wrap("awaitReply", dhcpv4.Timeout, ctx.Err())
		default:
		}

		n, _, src, err := sock.pc.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, nil, dhcpv4wrap("awaitReply", dhcpv4.Timeout, fmt.Errorf("no matching reply within %s", timeout))
			}
			return nil, nil, dhcpv4wrap("awaitReply", dhcpv4.SocketError, err)
		}

		pkt, err := dhcpv4.DecodePacket(buf[:n])
		if err != nil {
			PacketsDiscarded.WithLabelValues("undecodable").Inc()
			continue
		}
		if pkt.Op != dhcpv4.BootReply {
			PacketsDiscarded.WithLabelValues("wrong_op").Inc()
			continue
		}
		if pkt.XID != xid {
			PacketsDiscarded.WithLabelValues("wrong_xid").Inc()
			continue
		}
		if string(pkt.CHAddr) != string(chaddr) {
			PacketsDiscarded.WithLabelValues("wrong_chaddr").Inc()
			continue
		}

		udpSrc, _ := src.(*net.UDPAddr)
		logger.Debug("received matching reply", "xid", xid, "msg_type", pkt.MessageType(), "src", src.String())
		return pkt, udpSrc, nil
	}
}

func dhcpv4wrap(op string, kind dhcpv4.ErrorKind, err error) error {
	return &dhcpv4.Error{Kind: kind, Op: op, Err: err}
}
