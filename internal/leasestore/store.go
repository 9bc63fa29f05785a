// Package leasestore persists the most recently acquired lease per
// interface, so a CLI invocation can report the last-known address
// without re-running DORA.
package leasestore

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dhcpwire/dhcpv4/client"
)

var bucketLeases = []byte("leases")

// Record is the JSON-serializable projection of a client.Lease kept on
// disk; it trades the full packet structures for the handful of fields a
// cache lookup actually needs.
type Record struct {
	Interface  string        `json:"interface"`
	Address    string        `json:"address"`
	Server     string        `json:"server"`
	LeaseTime  int           `json:"lease_time_s,omitempty"`
	AcquiredAt time.Time     `json:"acquired_at"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Store wraps a BoltDB file holding one Record per interface.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the lease cache database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening lease cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLeases)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing lease cache bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put records lease as the most recent result for iface, overwriting any
// previous entry.
func (s *Store) Put(iface string, lease *client.Lease) error {
	rec := Record{
		Interface:  iface,
		Address:    lease.Ack.YIAddr.String(),
		AcquiredAt: time.Now(),
		Elapsed:    lease.Elapsed,
	}
	if lease.Server != nil {
		rec.Server = lease.Server.IP.String()
	}
	if opt, ok := lease.Ack.Options.ByCode(51); ok {
		if v, err := opt.Value(); err == nil {
			if n, ok := v.(uint32); ok {
				rec.LeaseTime = int(n)
			}
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling lease record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLeases).Put([]byte(iface), data)
	})
}

// Get returns the most recent Record for iface, or false if none is cached.
func (s *Store) Get(iface string) (Record, bool, error) {
	var rec Record
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketLeases).Get([]byte(iface))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("reading lease cache: %w", err)
	}
	return rec, found, nil
}
