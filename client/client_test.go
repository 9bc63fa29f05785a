package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dhcpwire/dhcpv4"
)

// fakeServer is a minimal DHCP responder for the loopback DORA test: it
// answers every DISCOVER with a canned OFFER and every REQUEST with a
// canned ACK, both echoing the request's xid and chaddr.
func fakeServer(t *testing.T, serverPort int, offerIP, ackIP string) {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: serverPort})
	if err != nil {
		t.Fatalf("fake server listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			n, src, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			pkt, err := dhcpv4.DecodePacket(buf[:n])
			if err != nil {
				continue
			}
			switch pkt.MessageType() {
			case "DHCPDISCOVER":
				offer, err := dhcpv4.Offer(pkt.ChaddrString(), pkt.XID, offerIP, nil)
				if err != nil {
					continue
				}
				offer.Options.Append(mustOption("dhcp_server", "192.168.56.2"))
				data, _ := offer.Encode()
				conn.WriteToUDP(data, src)
			case "DHCPREQUEST":
				ack, err := dhcpv4.Ack(pkt.ChaddrString(), pkt.XID, ackIP, nil)
				if err != nil {
					continue
				}
				ack.Options.Append(mustOption("dhcp_server", "192.168.56.2"))
				data, _ := ack.Encode()
				conn.WriteToUDP(data, src)
			}
		}
	}()
}

func mustOption(name string, value any) dhcpv4.Option {
	opt, err := dhcpv4.FromValue(name, value)
	if err != nil {
		panic(err)
	}
	return opt
}

func TestGetLeaseLoopbackDORA(t *testing.T) {
	const clientPort = 16680
	const serverPort = 16681

	fakeServer(t, serverPort, "192.168.56.3", "192.168.56.3")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lease, err := GetLease(ctx, Config{
		HardwareAddr: "00:11:22:33:44:55",
		ClientPort:   clientPort,
		ServerPort:   serverPort,
		Timeout:      2 * time.Second,
	})
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}

	if lease.Ack.YIAddr.String() != "192.168.56.3" {
		t.Errorf("Ack.YIAddr = %s, want 192.168.56.3", lease.Ack.YIAddr)
	}
	xid := lease.Discover.XID
	for name, pkt := range map[string]*dhcpv4.Packet{
		"Discover": lease.Discover,
		"Offer":    lease.Offer,
		"Request":  lease.Request,
		"Ack":      lease.Ack,
	} {
		if pkt.XID != xid {
			t.Errorf("%s.XID = %d, want %d (all four share one xid)", name, pkt.XID, xid)
		}
	}
}

func TestGetLeaseTimesOutWithNoServer(t *testing.T) {
	const clientPort = 16690
	const serverPort = 16691 // nothing listens here

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := GetLease(ctx, Config{
		HardwareAddr: "00:11:22:33:44:55",
		ClientPort:   clientPort,
		ServerPort:   serverPort,
		Timeout:      500 * time.Millisecond,
	})
	if kind, ok := dhcpv4.KindOf(err); !ok || kind != dhcpv4.Timeout {
		t.Fatalf("expected Timeout, got %v", err)
	}
}
