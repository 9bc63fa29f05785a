package leasestore

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dhcpwire/dhcpv4"
	"github.com/dhcpwire/dhcpv4/client"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "leases.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleLease(t *testing.T) *client.Lease {
	t.Helper()
	ack, err := dhcpv4.Ack("00:11:22:33:44:55", 1, "192.168.1.50", nil)
	if err != nil {
		t.Fatalf("Ack: %v", err)
	}
	leaseOpt, err := dhcpv4.FromValue("lease_time", uint32(3600))
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if err := ack.Options.Append(leaseOpt); err != nil {
		t.Fatalf("Append: %v", err)
	}
	return &client.Lease{
		Ack:     ack,
		Elapsed: 250 * time.Millisecond,
		Server:  &net.UDPAddr{IP: net.ParseIP("192.168.1.1"), Port: 67},
	}
}

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t)

	if _, found, err := store.Get("eth0"); err != nil || found {
		t.Fatalf("Get on empty store: found=%v err=%v", found, err)
	}

	lease := sampleLease(t)
	if err := store.Put("eth0", lease); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get("eth0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected a cached record")
	}
	if rec.Address != "192.168.1.50" {
		t.Errorf("Address = %q, want 192.168.1.50", rec.Address)
	}
	if rec.LeaseTime != 3600 {
		t.Errorf("LeaseTime = %d, want 3600", rec.LeaseTime)
	}
	if rec.Server != "192.168.1.1" {
		t.Errorf("Server = %q, want 192.168.1.1", rec.Server)
	}
}

func TestStoreOverwritesPreviousEntry(t *testing.T) {
	store := newTestStore(t)
	first := sampleLease(t)
	if err := store.Put("eth0", first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second, err := dhcpv4.Ack("00:11:22:33:44:55", 2, "192.168.1.99", nil)
	if err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if err := store.Put("eth0", &client.Lease{Ack: second}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get("eth0")
	if err != nil || !found {
		t.Fatalf("Get after overwrite: found=%v err=%v", found, err)
	}
	if rec.Address != "192.168.1.99" {
		t.Errorf("Address = %q, want 192.168.1.99 (overwrite)", rec.Address)
	}
}
