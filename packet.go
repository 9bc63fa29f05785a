package dhcpv4

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
)

// OpCode is the BOOTP message op code (RFC 2131 §2).
type OpCode byte

const (
	BootRequest OpCode = 1
	BootReply   OpCode = 2
)

func (op OpCode) String() string {
	switch op {
	case BootRequest:
		return "BOOTREQUEST"
	case BootReply:
		return "BOOTREPLY"
	default:
		return fmt.Sprintf("OpCode(%d)", byte(op))
	}
}

// HardwareType is the RFC 1700 ARP hardware type carried in htype.
type HardwareType byte

const HardwareTypeEthernet HardwareType = 1

// MagicCookie is the fixed 4-octet marker at offset 236 (RFC 1497).
var MagicCookie = [4]byte{0x63, 0x82, 0x53, 0x63}

const (
	fixedHeaderLen = 236
	cookieLen      = 4
	optionsOffset  = fixedHeaderLen + cookieLen // 240
	minPacketSize  = 300
)

// Packet is a decoded DHCPv4 frame: the fixed BOOTP header plus the
// variable-length option trailer (RFC 2131 §2).
type Packet struct {
	Op     OpCode
	HType  HardwareType
	HLen   byte
	Hops   byte
	XID    uint32
	Secs   uint16
	Flags  uint16
	CIAddr net.IP
	YIAddr net.IP
	SIAddr net.IP
	GIAddr net.IP
	CHAddr net.HardwareAddr
	SName  [64]byte
	File   [128]byte

	Options *OptionList
}

// DecodeStats reports non-semantic facts about a decode, for metrics and
// diagnostics; it changes no codec behavior.
type DecodeStats struct {
	OptionCount  int
	UnknownCodes []OptionCode
	Concatenated []OptionCode
}

// DecodePacket parses a raw DHCPv4 datagram. It verifies the fixed
// header length and magic cookie, then decodes the option trailer via
// DecodeOptionList. Unknown/trailing bytes after the END sentinel are
// ignored, per the spec's decode contract.
func DecodePacket(data []byte) (*Packet, error) {
	p, _, err := decodePacket(data)
	return p, err
}

// DecodePacketVerbose is DecodePacket plus a DecodeStats summarizing the
// option trailer, for callers that want counts without re-walking the
// list themselves.
func DecodePacketVerbose(data []byte) (*Packet, DecodeStats, error) {
	return decodePacket(data)
}

func decodePacket(data []byte) (*Packet, DecodeStats, error) {
	var stats DecodeStats
	if len(data) < optionsOffset {
		return nil, stats, newError(MalformedPacket, "DecodePacket", fmt.Errorf("packet is %d bytes, want at least %d", len(data), optionsOffset))
	}

	cookie := data[fixedHeaderLen:optionsOffset]
	if cookie[0] != MagicCookie[0] || cookie[1] != MagicCookie[1] || cookie[2] != MagicCookie[2] || cookie[3] != MagicCookie[3] {
		return nil, stats, newError(MalformedPacket, "DecodePacket", fmt.Errorf("bad magic cookie % x", cookie))
	}

	p := &Packet{
		Op:    OpCode(data[0]),
		HType: HardwareType(data[1]),
		HLen:  data[2],
		Hops:  data[3],
		XID:   binary.BigEndian.Uint32(data[4:8]),
		Secs:  binary.BigEndian.Uint16(data[8:10]),
		Flags: binary.BigEndian.Uint16(data[10:12]),
	}
	p.CIAddr = net.IP(append([]byte(nil), data[12:16]...))
	p.YIAddr = net.IP(append([]byte(nil), data[16:20]...))
	p.SIAddr = net.IP(append([]byte(nil), data[20:24]...))
	p.GIAddr = net.IP(append([]byte(nil), data[24:28]...))

	hlen := int(p.HLen)
	if hlen > 16 {
		hlen = 16
	}
	p.CHAddr = net.HardwareAddr(append([]byte(nil), data[28:28+hlen]...))

	copy(p.SName[:], data[44:108])
	copy(p.File[:], data[108:236])

	opts, err := DecodeOptionList(data[optionsOffset:])
	if err != nil {
		return nil, stats, fmt.Errorf("decoding options: %w", err)
	}
	p.Options = opts

	stats.OptionCount = opts.Len()
	for _, opt := range opts.All() {
		if _, ok := LookupCode(opt.Code); !ok {
			stats.UnknownCodes = append(stats.UnknownCodes, opt.Code)
		}
	}
	raw := data[optionsOffset:]
	var prev OptionCode
	for i := 0; i+1 < len(raw) && raw[i] != byte(OptionEnd); {
		code := OptionCode(raw[i])
		if code == OptionPad {
			i++
			continue
		}
		if code == prev && (len(stats.Concatenated) == 0 || stats.Concatenated[len(stats.Concatenated)-1] != code) {
			stats.Concatenated = append(stats.Concatenated, code)
		}
		prev = code
		i += 2 + int(raw[i+1])
	}

	return p, stats, nil
}

// Encode serializes p to its wire form: the fixed header in big-endian
// order, the magic cookie, then the option trailer ending in END. The
// result is padded with zero bytes to at least 300 octets, since many
// real-world servers reject shorter frames.
func (p *Packet) Encode() ([]byte, error) {
	opts := p.Options
	if opts == nil {
		opts = NewOptionList()
	}
	optBytes := opts.Encode()

	total := optionsOffset + len(optBytes)
	if total < minPacketSize {
		total = minPacketSize
	}

	buf := make([]byte, total)
	buf[0] = byte(p.Op)
	buf[1] = byte(p.HType)
	buf[2] = p.HLen
	buf[3] = p.Hops
	binary.BigEndian.PutUint32(buf[4:8], p.XID)
	binary.BigEndian.PutUint16(buf[8:10], p.Secs)
	binary.BigEndian.PutUint16(buf[10:12], p.Flags)

	putIP := func(dst []byte, ip net.IP) {
		if ip == nil {
			return
		}
		v4 := ip.To4()
		if v4 == nil {
			return
		}
		copy(dst, v4)
	}
	putIP(buf[12:16], p.CIAddr)
	putIP(buf[16:20], p.YIAddr)
	putIP(buf[20:24], p.SIAddr)
	putIP(buf[24:28], p.GIAddr)

	if p.CHAddr != nil {
		n := len(p.CHAddr)
		if n > 16 {
			n = 16
		}
		copy(buf[28:28+n], p.CHAddr[:n])
	}
	copy(buf[44:108], p.SName[:])
	copy(buf[108:236], p.File[:])
	copy(buf[fixedHeaderLen:optionsOffset], MagicCookie[:])
	copy(buf[optionsOffset:], optBytes)

	return buf, nil
}

// ChaddrString renders CHAddr using exactly HLen octets, colon-separated
// uppercase hex, per the canonical textual form spec.md defines for
// chaddr.
func (p *Packet) ChaddrString() string {
	n := int(p.HLen)
	if n > len(p.CHAddr) {
		n = len(p.CHAddr)
	}
	return hwaddrString(p.CHAddr[:n])
}

func parseChaddr(hwaddr string) (net.HardwareAddr, byte, error) {
	mac, err := parseHWAddr(hwaddr)
	if err != nil {
		return nil, 0, err
	}
	if len(mac) > 16 {
		return nil, 0, fmt.Errorf("hardware address %q is %d bytes, max 16", hwaddr, len(mac))
	}
	return net.HardwareAddr(mac), byte(len(mac)), nil
}

func newBaseTemplate(op OpCode, hwaddr string, xid uint32, opts *OptionList) (*Packet, error) {
	mac, hlen, err := parseChaddr(hwaddr)
	if err != nil {
		return nil, newError(InvalidValue, "template", err)
	}
	if opts == nil {
		opts = NewOptionList()
	} else {
		opts = opts.Clone()
	}
	return &Packet{
		Op:      op,
		HType:   HardwareTypeEthernet,
		HLen:    hlen,
		Hops:    0,
		XID:     xid,
		Secs:    0,
		Flags:   0x8000,
		CIAddr:  net.IPv4zero.To4(),
		YIAddr:  net.IPv4zero.To4(),
		SIAddr:  net.IPv4zero.To4(),
		GIAddr:  net.IPv4zero.To4(),
		CHAddr:  mac,
		Options: opts,
	}, nil
}

func withMessageType(p *Packet, name string) error {
	opt, err := FromValue("dhcp_message_type", name)
	if err != nil {
		return err
	}
	return p.Options.Append(opt)
}

// randomXID draws a transaction ID from crypto/rand for callers that pass
// xid == 0 to Discover, meaning "no xid chosen yet".
func randomXID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Discover builds a baseline DHCPDISCOVER: BOOTREQUEST, secs=0,
// flags=0x8000 (broadcast), the given xid, or a random one if xid == 0.
// Extra options from opts are merged under the OptionList uniqueness rule.
func Discover(hwaddr string, xid uint32, opts *OptionList) (*Packet, error) {
	if xid == 0 {
		var err error
		xid, err = randomXID()
		if err != nil {
			return nil, newError(InvalidValue, "Discover", fmt.Errorf("drawing random xid: %w", err))
		}
	}
	p, err := newBaseTemplate(BootRequest, hwaddr, xid, opts)
	if err != nil {
		return nil, err
	}
	if err := withMessageType(p, "DHCPDISCOVER"); err != nil {
		return nil, err
	}
	return p, nil
}

// Offer builds a baseline DHCPOFFER: BOOTREPLY, the caller's xid and
// yiaddr (the address being offered).
func Offer(hwaddr string, xid uint32, yiaddr string, opts *OptionList) (*Packet, error) {
	p, err := newBaseTemplate(BootReply, hwaddr, xid, opts)
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(yiaddr).To4()
	if ip == nil {
		return nil, newError(InvalidValue, "Offer", fmt.Errorf("invalid yiaddr %q", yiaddr))
	}
	p.YIAddr = ip
	if err := withMessageType(p, "DHCPOFFER"); err != nil {
		return nil, err
	}
	return p, nil
}

// Request builds a baseline DHCPREQUEST: BOOTREQUEST, the caller's xid.
func Request(hwaddr string, xid uint32, opts *OptionList) (*Packet, error) {
	p, err := newBaseTemplate(BootRequest, hwaddr, xid, opts)
	if err != nil {
		return nil, err
	}
	if err := withMessageType(p, "DHCPREQUEST"); err != nil {
		return nil, err
	}
	return p, nil
}

// Ack builds a baseline DHCPACK: BOOTREPLY, the caller's xid and yiaddr.
func Ack(hwaddr string, xid uint32, yiaddr string, opts *OptionList) (*Packet, error) {
	p, err := newBaseTemplate(BootReply, hwaddr, xid, opts)
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(yiaddr).To4()
	if ip == nil {
		return nil, newError(InvalidValue, "Ack", fmt.Errorf("invalid yiaddr %q", yiaddr))
	}
	p.YIAddr = ip
	if err := withMessageType(p, "DHCPACK"); err != nil {
		return nil, err
	}
	return p, nil
}

// MessageType reads option 53 and returns its symbolic name, or "" if
// absent or malformed.
func (p *Packet) MessageType() string {
	opt, ok := p.Options.ByCode(53)
	if !ok {
		return ""
	}
	v, err := opt.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
