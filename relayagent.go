package dhcpv4

import "fmt"

// Sub-option codes within option 82, Relay Agent Information (RFC 3046),
// plus the RFC 3527 Link Selection sub-option some relays also send.
const (
	RelaySubOptionCircuitID  byte = 1
	RelaySubOptionRemoteID   byte = 2
	RelaySubOptionLinkSelect byte = 5
)

var relaySubOptionNames = map[byte]string{
	RelaySubOptionCircuitID:  "circuit_id",
	RelaySubOptionRemoteID:   "remote_id",
	RelaySubOptionLinkSelect: "link_selection",
}

var relaySubOptionCodes = func() map[string]byte {
	m := make(map[string]byte, len(relaySubOptionNames))
	for code, name := range relaySubOptionNames {
		m[name] = code
	}
	return m
}()

// decodeRelayAgentInfo splits option 82's TLV-encoded sub-options into a
// name -> value map: circuit_id and remote_id as strings, every other
// sub-option as raw bytes. Unknown sub-option types are kept under a
// "suboption_<code>" key so no relay-injected data is silently dropped.
func decodeRelayAgentInfo(data []byte) (any, error) {
	out := make(map[string]any)
	i := 0
	for i < len(data) {
		if i+1 >= len(data) {
			return nil, fmt.Errorf("relay_agent_info: truncated sub-option header at offset %d", i)
		}
		subType := data[i]
		subLen := int(data[i+1])
		i += 2
		if i+subLen > len(data) {
			return nil, fmt.Errorf("relay_agent_info: truncated sub-option %d at offset %d", subType, i-2)
		}
		subData := make([]byte, subLen)
		copy(subData, data[i:i+subLen])
		i += subLen

		key, ok := relaySubOptionNames[subType]
		if !ok {
			key = fmt.Sprintf("suboption_%d", subType)
		}
		if subType == RelaySubOptionCircuitID || subType == RelaySubOptionRemoteID {
			out[key] = string(subData)
		} else {
			out[key] = subData
		}
	}
	return out, nil
}

func encodeRelayAgentInfo(value any, invalid func(error) error) ([]byte, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, invalid(fmt.Errorf("want a sub-option name -> value map, got %#v", value))
	}
	var buf []byte
	for key, v := range m {
		code, known := relaySubOptionCodes[key]
		if !known {
			var n int
			if _, err := fmt.Sscanf(key, "suboption_%d", &n); err != nil || n < 0 || n > 255 {
				return nil, invalid(fmt.Errorf("unknown relay sub-option %q", key))
			}
			code = byte(n)
		}
		var subData []byte
		switch x := v.(type) {
		case string:
			subData = []byte(x)
		case []byte:
			subData = x
		default:
			return nil, invalid(fmt.Errorf("relay sub-option %q: want string or bytes, got %#v", key, v))
		}
		if len(subData) > 255 {
			return nil, invalid(fmt.Errorf("relay sub-option %q: %d bytes exceeds 255", key, len(subData)))
		}
		buf = append(buf, code, byte(len(subData)))
		buf = append(buf, subData...)
	}
	return buf, nil
}
