package dhcpv4

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Option 119, Domain Search (RFC 3397), carries a list of domain names
// using the same DNS wire-format compression as RR owner names, with
// pointers resolved against offset 0 of the option's own data — not the
// surrounding packet. github.com/miekg/dns's name (un)packer works on any
// byte buffer given an offset, so it is reused here instead of hand-rolling
// RFC 1035 label parsing a second time.

func decodeDomainSearchList(data []byte) ([]string, error) {
	var names []string
	off := 0
	for off < len(data) {
		name, next, err := dns.UnpackDomainName(data, off)
		if err != nil {
			return nil, fmt.Errorf("unpacking domain name at offset %d: %w", off, err)
		}
		if next <= off {
			return nil, fmt.Errorf("domain search list stalled at offset %d", off)
		}
		names = append(names, strings.TrimSuffix(name, "."))
		off = next
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("empty domain search list")
	}
	return names, nil
}

func encodeDomainSearchList(names []string) ([]byte, error) {
	buf := make([]byte, 65535)
	compression := make(map[string]int)
	off := 0
	for _, n := range names {
		fqdn := dns.Fqdn(n)
		next, err := dns.PackDomainName(fqdn, buf, off, compression, true)
		if err != nil {
			return nil, fmt.Errorf("packing domain name %q: %w", n, err)
		}
		off = next
	}
	return buf[:off], nil
}

// Option 81, Client FQDN (RFC 4702): 1 flags octet, 2 deprecated RCODE
// octets kept for backward compatibility, then a domain name in the same
// compressed wire format as option 119.

type ClientFQDN struct {
	Flags byte
	Name  string
}

func decodeClientFQDN(data []byte) (any, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("client_fqdn: want at least 3 bytes, got %d", len(data))
	}
	name, next, err := dns.UnpackDomainName(data, 3)
	if err != nil {
		return nil, fmt.Errorf("client_fqdn: unpacking name: %w", err)
	}
	if next != len(data) {
		return nil, fmt.Errorf("client_fqdn: %d trailing bytes after name", len(data)-next)
	}
	return map[string]any{
		"flags": int(data[0]),
		"name":  strings.TrimSuffix(name, "."),
	}, nil
}

func encodeClientFQDN(value any, invalid func(error) error) ([]byte, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, invalid(fmt.Errorf("want {flags, name} map, got %#v", value))
	}
	flags, err := asInt(m["flags"])
	if err != nil || flags < 0 || flags > 0xff {
		return nil, invalid(fmt.Errorf("invalid flags %#v", m["flags"]))
	}
	name, ok := m["name"].(string)
	if !ok {
		return nil, invalid(fmt.Errorf("invalid name %#v", m["name"]))
	}
	header := []byte{byte(flags), 0, 0}
	nameBuf := make([]byte, 255)
	off, err := dns.PackDomainName(dns.Fqdn(name), nameBuf, 0, nil, false)
	if err != nil {
		return nil, invalid(fmt.Errorf("packing name %q: %w", name, err))
	}
	return append(header, nameBuf[:off]...), nil
}
