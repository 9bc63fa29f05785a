package dhcpv4

// OptionCode identifies a DHCP option on the wire (RFC 2132 §1).
type OptionCode byte

const (
	OptionPad OptionCode = 0
	OptionEnd OptionCode = 255
)

// Grammar identifies the wire shape a registry entry's data follows. Each
// grammar has a matching encode/decode pair in value.go; the registry
// dispatches on Grammar rather than growing a class hierarchy per option,
// per the "open option taxonomy" design note.
type Grammar int

const (
	GrammarUint8 Grammar = iota
	GrammarUint16
	GrammarUint32
	GrammarInt32
	GrammarIPv4
	GrammarIPv4List
	GrammarText
	GrammarUint8List
	GrammarBool
	GrammarMessageType
	GrammarClientID
	GrammarIPv4Pairs
	GrammarCIDRRoutes
	GrammarDomainNameList // RFC 3397, DNS-compressed names
	GrammarRelayAgentInfo // RFC 3046 sub-TLVs
	GrammarOverload
	GrammarUint16List
	GrammarClientFQDN // RFC 4702
	GrammarOpaque
)

// OptionDef is the registry entry for one option code: its canonical name
// (the "key" used by from_value/value_to_bytes), and the grammar used to
// move between bytes and a structured value.
type OptionDef struct {
	Code    OptionCode
	Name    string
	Grammar Grammar
}

// registry maps code -> definition. Built from RFC 2132 plus the handful
// of later RFCs (3046, 3397, 3442, 4702) real-world clients and servers
// exchange routinely.
var registry = map[OptionCode]OptionDef{
	1:  {1, "subnet_mask", GrammarIPv4},
	2:  {2, "time_offset_s", GrammarInt32},
	3:  {3, "routers", GrammarIPv4List},
	4:  {4, "time_servers", GrammarIPv4List},
	5:  {5, "name_servers", GrammarIPv4List},
	6:  {6, "dns_servers", GrammarIPv4List},
	7:  {7, "log_servers", GrammarIPv4List},
	8:  {8, "cookie_servers", GrammarIPv4List},
	9:  {9, "lpr_servers", GrammarIPv4List},
	10: {10, "impress_servers", GrammarIPv4List},
	11: {11, "resource_location_servers", GrammarIPv4List},
	12: {12, "hostname", GrammarText},
	13: {13, "bootfile_size", GrammarUint16},
	14: {14, "merit_dump_file", GrammarText},
	15: {15, "domain_name", GrammarText},
	16: {16, "swap_server", GrammarIPv4},
	17: {17, "root_path", GrammarText},
	18: {18, "extensions_path", GrammarText},
	19: {19, "ip_forwarding", GrammarBool},
	20: {20, "non_local_source_routing", GrammarBool},
	21: {21, "policy_filters", GrammarIPv4Pairs},
	22: {22, "max_datagram_reassembly_size", GrammarUint16},
	23: {23, "default_ip_ttl", GrammarUint8},
	24: {24, "path_mtu_aging_timeout", GrammarUint32},
	25: {25, "path_mtu_plateau_table", GrammarUint16List},
	26: {26, "interface_mtu", GrammarUint16},
	27: {27, "all_subnets_local", GrammarBool},
	28: {28, "broadcast_address", GrammarIPv4},
	29: {29, "perform_mask_discovery", GrammarBool},
	30: {30, "mask_supplier", GrammarBool},
	31: {31, "perform_router_discovery", GrammarBool},
	32: {32, "router_solicitation_address", GrammarIPv4},
	33: {33, "static_routes", GrammarIPv4Pairs},
	34: {34, "trailer_encapsulation", GrammarBool},
	35: {35, "arp_cache_timeout", GrammarUint32},
	36: {36, "ethernet_encapsulation", GrammarBool},
	37: {37, "tcp_default_ttl", GrammarUint8},
	38: {38, "tcp_keepalive_interval", GrammarUint32},
	39: {39, "tcp_keepalive_garbage", GrammarBool},
	40: {40, "network_information_service_domain", GrammarText},
	41: {41, "network_information_servers", GrammarIPv4List},
	42: {42, "ntp_servers", GrammarIPv4List},
	43: {43, "vendor_specific_information", GrammarOpaque},
	44: {44, "netbios_name_servers", GrammarIPv4List},
	45: {45, "netbios_datagram_distribution_server", GrammarIPv4List},
	46: {46, "netbios_node_type", GrammarUint8},
	47: {47, "netbios_scope", GrammarText},
	48: {48, "netbios_x_window_system_font_servers", GrammarIPv4List},
	49: {49, "x_window_system_display_manager", GrammarIPv4List},
	50: {50, "requested_ip_address", GrammarIPv4},
	51: {51, "lease_time", GrammarUint32},
	52: {52, "option_overload", GrammarOverload},
	53: {53, "dhcp_message_type", GrammarMessageType},
	54: {54, "dhcp_server", GrammarIPv4},
	55: {55, "parameter_request_list", GrammarUint8List},
	56: {56, "message", GrammarText},
	57: {57, "max_dhcp_message_size", GrammarUint16},
	58: {58, "renewal_time", GrammarUint32},
	59: {59, "rebinding_time", GrammarUint32},
	60: {60, "vendor_class_identifier", GrammarText},
	61: {61, "client_identifier", GrammarClientID},
	64: {64, "nis_plus_domain", GrammarText},
	65: {65, "nis_plus_servers", GrammarIPv4List},
	66: {66, "tftp_server_name", GrammarText},
	67: {67, "bootfile_name", GrammarText},
	68: {68, "mobile_ip_home_agent", GrammarIPv4List},
	69: {69, "smtp_servers", GrammarIPv4List},
	70: {70, "pop3_servers", GrammarIPv4List},
	71: {71, "nntp_servers", GrammarIPv4List},
	72: {72, "world_wide_web_servers", GrammarIPv4List},
	73: {73, "finger_servers", GrammarIPv4List},
	74: {74, "irc_servers", GrammarIPv4List},
	75: {75, "streettalk_servers", GrammarIPv4List},
	76: {76, "stda_servers", GrammarIPv4List},
	77: {77, "user_class", GrammarOpaque},
	81: {81, "client_fqdn", GrammarClientFQDN}, // RFC 4702
	82: {82, "relay_agent_info", GrammarRelayAgentInfo},
	118: {118, "subnet_selection", GrammarIPv4},
	119: {119, "domain_search", GrammarDomainNameList},
	121: {121, "classless_static_routes", GrammarCIDRRoutes},
	150: {150, "tftp_server_address", GrammarIPv4List},
}

var nameToCode = func() map[string]OptionCode {
	m := make(map[string]OptionCode, len(registry))
	for code, def := range registry {
		m[def.Name] = code
	}
	return m
}()

// LookupCode returns the registry entry for code, and false if code is not
// registered (in which case the caller should treat it as Unknown).
func LookupCode(code OptionCode) (OptionDef, bool) {
	def, ok := registry[code]
	return def, ok
}

// LookupName returns the registry entry whose canonical name is name.
func LookupName(name string) (OptionDef, bool) {
	code, ok := nameToCode[name]
	if !ok {
		return OptionDef{}, false
	}
	return registry[code], true
}
