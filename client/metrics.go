// Package client implements the DHCPv4 DORA exchange: DISCOVER, OFFER,
// REQUEST, ACK over a single interface-bound broadcast socket.
package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dhcpv4_client"

var (
	// LeaseAttempts counts get_lease calls by final state: "bound" on
	// success, otherwise the failing dhcpv4.ErrorKind name (e.g. "Timeout",
	// "Nak"), or "error" for an error that carries no kind.
	LeaseAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lease_attempts_total",
		Help:      "Total GetLease attempts, by outcome.",
	}, []string{"outcome"})

	// LeaseDuration tracks how long each DORA exchange took, successful
	// or not.
	LeaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lease_duration_seconds",
		Help:      "Wall-clock duration of a DORA exchange, success or failure.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20},
	})

	// PacketsSent counts packets transmitted by message type.
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_sent_total",
		Help:      "Total DHCP packets sent, by message type.",
	}, []string{"msg_type"})

	// PacketsDiscarded counts inbound datagrams dropped as undecodable or
	// for xid/chaddr/op mismatch, not counted as protocol errors.
	PacketsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_discarded_total",
		Help:      "Total inbound datagrams discarded as not matching the pending exchange.",
	}, []string{"reason"})
)
