package dhcpv4

import (
	"fmt"
	"net"
)

// CIDRRoute is one entry of option 121, Classless Static Route (RFC 3442):
// a destination network expressed as prefix length plus only its
// significant octets, followed by a 4-octet gateway address.
type CIDRRoute struct {
	Destination string
	PrefixLen   int
	Gateway     string
}

func decodeCIDRRoutes(data []byte) ([]CIDRRoute, error) {
	var routes []CIDRRoute
	i := 0
	for i < len(data) {
		prefixLen := int(data[i])
		i++
		if prefixLen > 32 {
			return nil, fmt.Errorf("invalid CIDR prefix length %d at offset %d", prefixLen, i-1)
		}
		sigOctets := (prefixLen + 7) / 8
		if i+sigOctets+4 > len(data) {
			return nil, fmt.Errorf("truncated classless static route at offset %d", i)
		}
		dest := make([]byte, 4)
		copy(dest, data[i:i+sigOctets])
		i += sigOctets
		gw := net.IP(data[i : i+4]).String()
		i += 4

		mask := net.CIDRMask(prefixLen, 32)
		routes = append(routes, CIDRRoute{
			Destination: net.IP(dest).Mask(mask).String(),
			PrefixLen:   prefixLen,
			Gateway:     gw,
		})
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("empty classless static route list")
	}
	return routes, nil
}

func encodeCIDRRoutesValue(value any, invalid func(error) error) ([]byte, error) {
	routes, err := asCIDRRouteList(value)
	if err != nil {
		return nil, invalid(err)
	}
	if len(routes) == 0 {
		return nil, invalid(fmt.Errorf("want a non-empty list of routes"))
	}
	var buf []byte
	for _, r := range routes {
		if r.PrefixLen < 0 || r.PrefixLen > 32 {
			return nil, invalid(fmt.Errorf("invalid prefix length %d", r.PrefixLen))
		}
		dest := net.ParseIP(r.Destination).To4()
		gw := net.ParseIP(r.Gateway).To4()
		if dest == nil || gw == nil {
			return nil, invalid(fmt.Errorf("invalid route %+v", r))
		}
		sigOctets := (r.PrefixLen + 7) / 8
		buf = append(buf, byte(r.PrefixLen))
		buf = append(buf, dest[:sigOctets]...)
		buf = append(buf, gw...)
	}
	return buf, nil
}

func asCIDRRouteList(value any) ([]CIDRRoute, error) {
	switch xs := value.(type) {
	case []CIDRRoute:
		return xs, nil
	case []map[string]any:
		out := make([]CIDRRoute, 0, len(xs))
		for _, m := range xs {
			r, err := cidrRouteFromMap(m)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case []any:
		out := make([]CIDRRoute, 0, len(xs))
		for _, x := range xs {
			m, ok := x.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("route entry not a map: %#v", x)
			}
			r, err := cidrRouteFromMap(m)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a list of route maps, got %#v", value)
	}
}

func cidrRouteFromMap(m map[string]any) (CIDRRoute, error) {
	dest, ok := m["destination"].(string)
	if !ok {
		return CIDRRoute{}, fmt.Errorf("route missing destination: %#v", m)
	}
	gw, ok := m["gateway"].(string)
	if !ok {
		return CIDRRoute{}, fmt.Errorf("route missing gateway: %#v", m)
	}
	prefixLen, err := asInt(m["prefix_len"])
	if err != nil {
		return CIDRRoute{}, fmt.Errorf("route missing prefix_len: %#v", m)
	}
	return CIDRRoute{Destination: dest, PrefixLen: prefixLen, Gateway: gw}, nil
}
