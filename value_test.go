package dhcpv4

import (
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, name string, value any) any {
	t.Helper()
	def, ok := LookupName(name)
	if !ok {
		t.Fatalf("unknown option %q", name)
	}
	data, err := encodeValue(def, value)
	if err != nil {
		t.Fatalf("encodeValue(%q): %v", name, err)
	}
	got, err := decodeValue(def, data)
	if err != nil {
		t.Fatalf("decodeValue(%q): %v", name, err)
	}
	return got
}

func TestRoundTripScalarGrammars(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"default_ip_ttl", 64},
		{"bootfile_size", 1200},
		{"lease_time", uint32(86400)},
		{"time_offset_s", int32(-3600)},
		{"subnet_mask", "255.255.255.0"},
		{"hostname", "galaxy-s9"},
		{"ip_forwarding", true},
		{"dhcp_message_type", "DHCPACK"},
	}
	for _, c := range cases {
		got := roundTrip(t, c.name, c.value)
		if !reflect.DeepEqual(got, c.value) {
			t.Errorf("%s round trip: got %#v, want %#v", c.name, got, c.value)
		}
	}
}

func TestRoundTripListGrammars(t *testing.T) {
	routers := []string{"192.168.1.1", "192.168.1.2"}
	got := roundTrip(t, "routers", routers)
	if !reflect.DeepEqual(got, routers) {
		t.Errorf("routers round trip: got %#v, want %#v", got, routers)
	}

	prl := []int{1, 3, 6, 15, 26, 28, 51, 58, 59, 43}
	got = roundTrip(t, "parameter_request_list", prl)
	if !reflect.DeepEqual(got, prl) {
		t.Errorf("parameter_request_list round trip: got %#v, want %#v", got, prl)
	}

	mtu := []int{68, 296, 508, 1006}
	got = roundTrip(t, "path_mtu_plateau_table", mtu)
	if !reflect.DeepEqual(got, mtu) {
		t.Errorf("path_mtu_plateau_table round trip: got %#v, want %#v", got, mtu)
	}
}

func TestRoundTripDomainSearchList(t *testing.T) {
	names := []string{"eng.example.com", "example.com"}
	got := roundTrip(t, "domain_search", names)
	gotList, ok := got.([]string)
	if !ok {
		t.Fatalf("domain_search did not decode to []string: %#v", got)
	}
	if !reflect.DeepEqual(gotList, names) {
		t.Errorf("domain_search round trip: got %#v, want %#v", gotList, names)
	}
}

func TestRoundTripClasslessStaticRoutes(t *testing.T) {
	routes := []CIDRRoute{
		{Destination: "10.0.0.0", PrefixLen: 8, Gateway: "192.168.1.1"},
		{Destination: "172.16.0.0", PrefixLen: 16, Gateway: "192.168.1.2"},
	}
	got := roundTrip(t, "classless_static_routes", routes)
	gotRoutes, ok := got.([]CIDRRoute)
	if !ok {
		t.Fatalf("classless_static_routes did not decode to []CIDRRoute: %#v", got)
	}
	if !reflect.DeepEqual(gotRoutes, routes) {
		t.Errorf("classless_static_routes round trip: got %#v, want %#v", gotRoutes, routes)
	}
}

func TestRoundTripIPv4Pairs(t *testing.T) {
	// Option 21 (policy_filters) pairs are {address, mask}; option 33
	// (static_routes) pairs are {destination, router} (RFC 2132 §3.11).
	filters := []map[string]string{{"address": "10.0.0.0", "mask": "255.0.0.0"}}
	got := roundTrip(t, "policy_filters", filters)
	gotFilters, ok := got.([]map[string]string)
	if !ok || len(gotFilters) != 1 {
		t.Fatalf("policy_filters did not decode to a 1-element []map[string]string: %#v", got)
	}
	if gotFilters[0]["address"] != "10.0.0.0" || gotFilters[0]["mask"] != "255.0.0.0" {
		t.Errorf("policy_filters round trip mismatch: %#v", gotFilters[0])
	}

	routes := []map[string]string{{"destination": "192.168.1.0", "router": "192.168.1.1"}}
	got = roundTrip(t, "static_routes", routes)
	gotRoutes, ok := got.([]map[string]string)
	if !ok || len(gotRoutes) != 1 {
		t.Fatalf("static_routes did not decode to a 1-element []map[string]string: %#v", got)
	}
	if gotRoutes[0]["destination"] != "192.168.1.0" || gotRoutes[0]["router"] != "192.168.1.1" {
		t.Errorf("static_routes round trip mismatch: %#v", gotRoutes[0])
	}
}

func TestRoundTripRelayAgentInfo(t *testing.T) {
	value := map[string]any{
		"circuit_id": "eth0/1",
		"remote_id":  "switch-42",
	}
	got := roundTrip(t, "relay_agent_info", value)
	gotMap, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("relay_agent_info did not decode to map: %#v", got)
	}
	if gotMap["circuit_id"] != "eth0/1" || gotMap["remote_id"] != "switch-42" {
		t.Errorf("relay_agent_info round trip mismatch: %#v", gotMap)
	}
}

func TestRoundTripClientFQDN(t *testing.T) {
	value := map[string]any{"flags": 1, "name": "host.example.com"}
	got := roundTrip(t, "client_fqdn", value)
	gotMap, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("client_fqdn did not decode to map: %#v", got)
	}
	if gotMap["name"] != "host.example.com" || gotMap["flags"] != 1 {
		t.Errorf("client_fqdn round trip mismatch: %#v", gotMap)
	}
}
