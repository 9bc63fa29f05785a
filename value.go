package dhcpv4

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// messageTypeNames is the canonical symbolic name for each DHCP message
// type byte (RFC 2131 §9.6).
var messageTypeNames = map[byte]string{
	1: "DHCPDISCOVER",
	2: "DHCPOFFER",
	3: "DHCPREQUEST",
	4: "DHCPDECLINE",
	5: "DHCPACK",
	6: "DHCPNAK",
	7: "DHCPRELEASE",
	8: "DHCPINFORM",
}

var messageTypeValues = func() map[string]byte {
	m := make(map[string]byte, len(messageTypeNames))
	for b, name := range messageTypeNames {
		m[name] = b
	}
	return m
}()

func decodeValue(def OptionDef, data []byte) (any, error) {
	switch def.Grammar {
	case GrammarUint8:
		if len(data) != 1 {
			return nil, fmt.Errorf("%s: want 1 byte, got %d", def.Name, len(data))
		}
		return int(data[0]), nil

	case GrammarUint16:
		if len(data) != 2 {
			return nil, fmt.Errorf("%s: want 2 bytes, got %d", def.Name, len(data))
		}
		return int(binary.BigEndian.Uint16(data)), nil

	case GrammarUint32:
		if len(data) != 4 {
			return nil, fmt.Errorf("%s: want 4 bytes, got %d", def.Name, len(data))
		}
		return uint32(binary.BigEndian.Uint32(data)), nil

	case GrammarInt32:
		if len(data) != 4 {
			return nil, fmt.Errorf("%s: want 4 bytes, got %d", def.Name, len(data))
		}
		return int32(binary.BigEndian.Uint32(data)), nil

	case GrammarIPv4:
		if len(data) != 4 {
			return nil, fmt.Errorf("%s: want 4 bytes, got %d", def.Name, len(data))
		}
		return net.IP(append([]byte(nil), data...)).String(), nil

	case GrammarIPv4List:
		ips, err := bytesToIPList(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		return ips, nil

	case GrammarText:
		return string(data), nil

	case GrammarUint8List:
		out := make([]int, len(data))
		for i, b := range data {
			out[i] = int(b)
		}
		return out, nil

	case GrammarUint16List:
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("%s: length %d not a multiple of 2", def.Name, len(data))
		}
		out := make([]int, len(data)/2)
		for i := range out {
			out[i] = int(binary.BigEndian.Uint16(data[i*2 : i*2+2]))
		}
		return out, nil

	case GrammarBool:
		if len(data) != 1 {
			return nil, fmt.Errorf("%s: want 1 byte, got %d", def.Name, len(data))
		}
		return data[0] != 0, nil

	case GrammarMessageType:
		if len(data) != 1 {
			return nil, fmt.Errorf("%s: want 1 byte, got %d", def.Name, len(data))
		}
		name, ok := messageTypeNames[data[0]]
		if !ok {
			return nil, fmt.Errorf("%s: unrecognized message type byte %d", def.Name, data[0])
		}
		return name, nil

	case GrammarClientID:
		if len(data) < 2 {
			return nil, fmt.Errorf("%s: want at least 2 bytes, got %d", def.Name, len(data))
		}
		return map[string]any{
			"hwtype": int(data[0]),
			"hwaddr": hwaddrString(data[1:]),
		}, nil

	case GrammarIPv4Pairs:
		if len(data)%8 != 0 || len(data) == 0 {
			return nil, fmt.Errorf("%s: length %d not a positive multiple of 8", def.Name, len(data))
		}
		// RFC 2132 §3.11 gives option 21 (policy_filters) address/mask
		// pairs; option 33 (static_routes) gives destination/router pairs.
		var keyA, keyB string
		switch def.Code {
		case 21:
			keyA, keyB = "address", "mask"
		default:
			keyA, keyB = "destination", "router"
		}
		pairs := make([]map[string]string, 0, len(data)/8)
		for i := 0; i+8 <= len(data); i += 8 {
			a := net.IP(data[i : i+4]).String()
			b := net.IP(data[i+4 : i+8]).String()
			pairs = append(pairs, map[string]string{keyA: a, keyB: b})
		}
		return pairs, nil

	case GrammarCIDRRoutes:
		routes, err := decodeCIDRRoutes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		return routes, nil

	case GrammarDomainNameList:
		names, err := decodeDomainSearchList(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		return names, nil

	case GrammarClientFQDN:
		return decodeClientFQDN(data)

	case GrammarRelayAgentInfo:
		return decodeRelayAgentInfo(data)

	case GrammarOverload:
		if len(data) != 1 {
			return nil, fmt.Errorf("%s: want 1 byte, got %d", def.Name, len(data))
		}
		names := map[byte]string{
			1: "file",
			2: "sname",
			3: "both",
		}
		name, ok := names[data[0]]
		if !ok {
			return nil, fmt.Errorf("%s: invalid overload value %d", def.Name, data[0])
		}
		return name, nil

	case GrammarOpaque:
		return append([]byte(nil), data...), nil

	default:
		return nil, fmt.Errorf("%s: unhandled grammar %d", def.Name, def.Grammar)
	}
}

func encodeValue(def OptionDef, value any) ([]byte, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%s: %w", def.Name, err)
	}

	switch def.Grammar {
	case GrammarUint8:
		v, err := asInt(value)
		if err != nil || v < 0 || v > 0xff {
			return nil, invalid(fmt.Errorf("want uint8 value, got %#v", value))
		}
		return []byte{byte(v)}, nil

	case GrammarUint16:
		v, err := asInt(value)
		if err != nil || v < 0 || v > 0xffff {
			return nil, invalid(fmt.Errorf("want uint16 value, got %#v", value))
		}
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v))
		return b, nil

	case GrammarUint32:
		v, err := asInt64(value)
		if err != nil || v < 0 || v > 0xffffffff {
			return nil, invalid(fmt.Errorf("want uint32 value, got %#v", value))
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		return b, nil

	case GrammarInt32:
		v, err := asInt64(value)
		if err != nil || v < -(1<<31) || v > (1<<31)-1 {
			return nil, invalid(fmt.Errorf("want int32 value, got %#v", value))
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(int32(v)))
		return b, nil

	case GrammarIPv4:
		s, ok := value.(string)
		if !ok {
			if ip, ok := value.(net.IP); ok {
				s = ip.String()
			} else {
				return nil, invalid(fmt.Errorf("want dotted-quad string, got %#v", value))
			}
		}
		ip := net.ParseIP(s).To4()
		if ip == nil {
			return nil, invalid(fmt.Errorf("invalid IPv4 address %q", s))
		}
		return []byte(ip), nil

	case GrammarIPv4List:
		ss, err := asStringList(value)
		if err != nil || len(ss) == 0 {
			return nil, invalid(fmt.Errorf("want non-empty list of IPv4 strings, got %#v", value))
		}
		var buf []byte
		for _, s := range ss {
			ip := net.ParseIP(s).To4()
			if ip == nil {
				return nil, invalid(fmt.Errorf("invalid IPv4 address %q", s))
			}
			buf = append(buf, []byte(ip)...)
		}
		return buf, nil

	case GrammarText:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(fmt.Errorf("want string, got %#v", value))
		}
		return []byte(s), nil

	case GrammarUint8List:
		ints, err := asIntList(value)
		if err != nil {
			return nil, invalid(err)
		}
		buf := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 0xff {
				return nil, invalid(fmt.Errorf("element %d out of uint8 range: %d", i, v))
			}
			buf[i] = byte(v)
		}
		return buf, nil

	case GrammarUint16List:
		ints, err := asIntList(value)
		if err != nil {
			return nil, invalid(err)
		}
		buf := make([]byte, len(ints)*2)
		for i, v := range ints {
			if v < 0 || v > 0xffff {
				return nil, invalid(fmt.Errorf("element %d out of uint16 range: %d", i, v))
			}
			binary.BigEndian.PutUint16(buf[i*2:i*2+2], uint16(v))
		}
		return buf, nil

	case GrammarBool:
		b, ok := value.(bool)
		if !ok {
			return nil, invalid(fmt.Errorf("want bool, got %#v", value))
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case GrammarMessageType:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(fmt.Errorf("want message type name string, got %#v", value))
		}
		b, ok := messageTypeValues[strings.ToUpper(s)]
		if !ok {
			return nil, invalid(fmt.Errorf("unrecognized message type name %q", s))
		}
		return []byte{b}, nil

	case GrammarClientID:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, invalid(fmt.Errorf("want {hwtype, hwaddr} map, got %#v", value))
		}
		hwtype, err := asInt(m["hwtype"])
		if err != nil || hwtype < 0 || hwtype > 0xff {
			return nil, invalid(fmt.Errorf("invalid hwtype %#v", m["hwtype"]))
		}
		hwaddrStr, ok := m["hwaddr"].(string)
		if !ok {
			return nil, invalid(fmt.Errorf("invalid hwaddr %#v", m["hwaddr"]))
		}
		hwaddr, err := parseHWAddr(hwaddrStr)
		if err != nil {
			return nil, invalid(err)
		}
		return append([]byte{byte(hwtype)}, hwaddr...), nil

	case GrammarIPv4Pairs:
		pairs, err := asPairList(value)
		if err != nil {
			return nil, invalid(err)
		}
		var buf []byte
		for _, p := range pairs {
			a := net.ParseIP(p[0]).To4()
			b := net.ParseIP(p[1]).To4()
			if a == nil || b == nil {
				return nil, invalid(fmt.Errorf("invalid IPv4 pair %v", p))
			}
			buf = append(buf, a...)
			buf = append(buf, b...)
		}
		if len(buf) == 0 {
			return nil, invalid(fmt.Errorf("want a non-empty list of address pairs"))
		}
		return buf, nil

	case GrammarCIDRRoutes:
		return encodeCIDRRoutesValue(value, invalid)

	case GrammarDomainNameList:
		ss, err := asStringList(value)
		if err != nil || len(ss) == 0 {
			return nil, invalid(fmt.Errorf("want non-empty list of domain names, got %#v", value))
		}
		return encodeDomainSearchList(ss)

	case GrammarClientFQDN:
		return encodeClientFQDN(value, invalid)

	case GrammarRelayAgentInfo:
		return encodeRelayAgentInfo(value, invalid)

	case GrammarOverload:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(fmt.Errorf("want one of file/sname/both, got %#v", value))
		}
		codes := map[string]byte{"file": 1, "sname": 2, "both": 3}
		b, ok := codes[s]
		if !ok {
			return nil, invalid(fmt.Errorf("invalid overload value %q", s))
		}
		return []byte{b}, nil

	case GrammarOpaque:
		switch v := value.(type) {
		case []byte:
			return append([]byte(nil), v...), nil
		case string:
			return []byte(v), nil
		default:
			return nil, invalid(fmt.Errorf("want []byte or string, got %#v", value))
		}

	default:
		return nil, invalid(fmt.Errorf("unhandled grammar %d", def.Grammar))
	}
}

func bytesToIPList(data []byte) ([]string, error) {
	if len(data)%4 != 0 || len(data) == 0 {
		return nil, fmt.Errorf("length %d not a positive multiple of 4", len(data))
	}
	out := make([]string, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, net.IP(data[i:i+4]).String())
	}
	return out, nil
}

func hwaddrString(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, ":")
}

func parseHWAddr(s string) ([]byte, error) {
	hw, err := net.ParseMAC(strings.ReplaceAll(s, "-", ":"))
	if err != nil {
		return nil, fmt.Errorf("invalid hardware address %q: %w", s, err)
	}
	return []byte(hw), nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %#v", v)
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %#v", v)
	}
}

func asIntList(v any) ([]int, error) {
	switch xs := v.(type) {
	case []int:
		return xs, nil
	case []byte:
		out := make([]int, len(xs))
		for i, b := range xs {
			out[i] = int(b)
		}
		return out, nil
	case []any:
		out := make([]int, len(xs))
		for i, x := range xs {
			n, err := asInt(x)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a list of integers, got %#v", v)
	}
}

func asStringList(v any) ([]string, error) {
	switch xs := v.(type) {
	case []string:
		return xs, nil
	case []any:
		out := make([]string, len(xs))
		for i, x := range xs {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("element %d not a string: %#v", i, x)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a list of strings, got %#v", v)
	}
}

func asPairList(v any) ([][2]string, error) {
	extract := func(m map[string]string) ([2]string, bool) {
		a, ok1 := m["destination"]
		b, ok2 := m["router"]
		if ok1 && ok2 {
			return [2]string{a, b}, true
		}
		a, ok1 = m["address"]
		b, ok2 = m["mask"]
		if ok1 && ok2 {
			return [2]string{a, b}, true
		}
		return [2]string{}, false
	}

	switch xs := v.(type) {
	case []map[string]string:
		out := make([][2]string, 0, len(xs))
		for _, m := range xs {
			pair, ok := extract(m)
			if !ok {
				return nil, fmt.Errorf("pair entry missing destination/router or address/mask: %#v", m)
			}
			out = append(out, pair)
		}
		return out, nil
	case []any:
		out := make([][2]string, 0, len(xs))
		for _, x := range xs {
			m, ok := x.(map[string]string)
			if !ok {
				if mAny, ok2 := x.(map[string]any); ok2 {
					m = make(map[string]string, len(mAny))
					for k, vv := range mAny {
						if s, ok := vv.(string); ok {
							m[k] = s
						}
					}
				} else {
					return nil, fmt.Errorf("pair entry not a map: %#v", x)
				}
			}
			pair, ok := extract(m)
			if !ok {
				return nil, fmt.Errorf("pair entry missing destination/router or address/mask: %#v", m)
			}
			out = append(out, pair)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a list of address-pair maps, got %#v", v)
	}
}
