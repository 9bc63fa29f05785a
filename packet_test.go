package dhcpv4

import (
	"bytes"
	"net"
	"testing"
)

// androidDiscover is the README example: a real DISCOVER frame captured
// from an Android 9 phone, trimmed to the fixed header plus its options.
func androidDiscover() []byte {
	pkt := make([]byte, 300)
	pkt[0] = byte(BootRequest)
	pkt[1] = byte(HardwareTypeEthernet)
	pkt[2] = 6
	pkt[3] = 0

	xid := uint32(3938370455)
	pkt[4] = byte(xid >> 24)
	pkt[5] = byte(xid >> 16)
	pkt[6] = byte(xid >> 8)
	pkt[7] = byte(xid)

	pkt[10] = 0x80 // flags = 0x8000, broadcast

	mac := []byte{0x8C, 0x45, 0x00, 0x45, 0x12, 0x09}
	copy(pkt[28:34], mac)

	copy(pkt[236:240], MagicCookie[:])

	i := 240
	put := func(code byte, data []byte) {
		pkt[i] = code
		pkt[i+1] = byte(len(data))
		copy(pkt[i+2:], data)
		i += 2 + len(data)
	}
	put(53, []byte{1}) // DHCPDISCOVER
	put(61, append([]byte{1}, mac...))
	put(57, []byte{0x05, 0xDC}) // 1500
	put(60, []byte("android-dhcp-9"))
	put(12, []byte("Galaxy-S9"))
	put(55, []byte{1, 3, 6, 15, 26, 28, 51, 58, 59, 43})
	pkt[i] = byte(OptionEnd)

	return pkt
}

func TestDecodePacketAndroidDiscover(t *testing.T) {
	pkt, err := DecodePacket(androidDiscover())
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if pkt.Op != BootRequest {
		t.Errorf("Op = %v, want BOOTREQUEST", pkt.Op)
	}
	if pkt.XID != 3938370455 {
		t.Errorf("XID = %d, want 3938370455", pkt.XID)
	}
	if got := pkt.ChaddrString(); got != "8C:45:00:45:12:09" {
		t.Errorf("ChaddrString = %q, want 8C:45:00:45:12:09", got)
	}
	if pkt.MessageType() != "DHCPDISCOVER" {
		t.Errorf("MessageType = %q, want DHCPDISCOVER", pkt.MessageType())
	}

	wantCodes := []OptionCode{53, 61, 57, 60, 12, 55}
	got := pkt.Options.All()
	if len(got) != len(wantCodes) {
		t.Fatalf("option count = %d, want %d", len(got), len(wantCodes))
	}
	for i, opt := range got {
		if opt.Code != wantCodes[i] {
			t.Errorf("option[%d].Code = %d, want %d", i, opt.Code, wantCodes[i])
		}
	}

	cidOpt, ok := pkt.Options.ByCode(61)
	if !ok {
		t.Fatal("missing client_identifier")
	}
	v, err := cidOpt.Value()
	if err != nil {
		t.Fatalf("client_identifier Value: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("client_identifier value not a map: %#v", v)
	}
	if m["hwaddr"] != "8C:45:00:45:12:09" {
		t.Errorf("client_identifier hwaddr = %v, want 8C:45:00:45:12:09", m["hwaddr"])
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	opts := NewOptionList()
	opts.Append(Option{Code: 53, Data: []byte{1}})
	opts.Append(Option{Code: 50, Data: net.ParseIP("192.168.1.50").To4()})

	p := &Packet{
		Op:     BootRequest,
		HType:  HardwareTypeEthernet,
		HLen:   6,
		XID:    0xCAFEBABE,
		CHAddr: net.HardwareAddr{0, 1, 2, 3, 4, 5},
		CIAddr: net.IPv4zero.To4(),
		YIAddr: net.IPv4zero.To4(),
		SIAddr: net.IPv4zero.To4(),
		GIAddr: net.IPv4zero.To4(),
		Options: opts,
	}
	data, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < minPacketSize {
		t.Errorf("encoded length %d, want at least %d", len(data), minPacketSize)
	}
	if !bytes.Equal(data[fixedHeaderLen:optionsOffset], MagicCookie[:]) {
		t.Errorf("magic cookie missing at offset %d", fixedHeaderLen)
	}

	got, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if got.XID != p.XID {
		t.Errorf("XID round trip: got %d, want %d", got.XID, p.XID)
	}
	if got.Options.Len() != 2 {
		t.Errorf("option count round trip: got %d, want 2", got.Options.Len())
	}
}

func TestDecodePacketBadMagicCookie(t *testing.T) {
	data := make([]byte, minPacketSize)
	data[0] = byte(BootRequest)
	_, err := DecodePacket(data)
	if kind, ok := KindOf(err); !ok || kind != MalformedPacket {
		t.Fatalf("expected MalformedPacket, got %v", err)
	}
}

func TestDecodePacketTooShort(t *testing.T) {
	_, err := DecodePacket(make([]byte, 100))
	if kind, ok := KindOf(err); !ok || kind != MalformedPacket {
		t.Fatalf("expected MalformedPacket, got %v", err)
	}
}

func TestMagicCookiePlacementWithFile(t *testing.T) {
	p := &Packet{Op: BootReply, HType: HardwareTypeEthernet, HLen: 6, CHAddr: net.HardwareAddr{0, 1, 2, 3, 4, 5}, Options: NewOptionList()}
	copy(p.File[:], []byte("pxelinux.0"))
	data, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(data[236:240], MagicCookie[:]) {
		t.Fatalf("magic cookie not at offset 236 when File is non-empty")
	}
}

func TestTemplateConstructors(t *testing.T) {
	d, err := Discover("8C:45:00:45:12:09", 42, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if d.Op != BootRequest || d.Flags != 0x8000 || d.MessageType() != "DHCPDISCOVER" {
		t.Errorf("Discover template malformed: %+v", d)
	}

	o, err := Offer("8C:45:00:45:12:09", 42, "192.168.1.100", nil)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if o.Op != BootReply || o.YIAddr.String() != "192.168.1.100" || o.MessageType() != "DHCPOFFER" {
		t.Errorf("Offer template malformed: %+v", o)
	}

	r, err := Request("8C:45:00:45:12:09", 42, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if r.MessageType() != "DHCPREQUEST" {
		t.Errorf("Request template malformed: %+v", r)
	}

	a, err := Ack("8C:45:00:45:12:09", 42, "192.168.1.100", nil)
	if err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if a.MessageType() != "DHCPACK" {
		t.Errorf("Ack template malformed: %+v", a)
	}
}

// TestTemplateConstructorsDoNotAliasCallerOptions guards spec.md's
// "construction paths produce fresh values" invariant: a shared OptionList
// passed into two template constructors must not leak one call's
// dhcp_message_type into the other, or into the caller's own copy.
func TestTemplateConstructorsDoNotAliasCallerOptions(t *testing.T) {
	shared := NewOptionList()
	if err := shared.Append(mustFromValue(t, "hostname", "galaxy-s9")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := Discover("8C:45:00:45:12:09", 1, shared); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if _, err := Request("8C:45:00:45:12:09", 2, shared); err != nil {
		t.Fatalf("Request: %v", err)
	}

	if shared.Len() != 1 {
		t.Fatalf("caller's OptionList was mutated by template construction: len = %d, want 1", shared.Len())
	}
	if shared.Has(OptionCode(53)) {
		t.Fatalf("caller's OptionList picked up a dhcp_message_type option it never had")
	}
}

func mustFromValue(t *testing.T, name string, value any) Option {
	t.Helper()
	opt, err := FromValue(name, value)
	if err != nil {
		t.Fatalf("FromValue(%q): %v", name, err)
	}
	return opt
}
