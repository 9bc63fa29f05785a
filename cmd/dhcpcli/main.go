// dhcpcli runs a single DHCPv4 DISCOVER/OFFER/REQUEST/ACK exchange against
// a server or relay and reports the resulting lease.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	nethttp "net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhcpwire/dhcpv4"
	"github.com/dhcpwire/dhcpv4/client"
	"github.com/dhcpwire/dhcpv4/internal/leasestore"
	"github.com/dhcpwire/dhcpv4/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	iface := flag.String("interface", "", "network interface to bind to")
	hwaddr := flag.String("hwaddr", "", "client hardware address (colon- or dash-separated hex)")
	server := flag.String("server", "", "DHCP server IPv4 address; empty sends to the broadcast address")
	relay := flag.String("relay", "", "relay IPv4 address to place in giaddr")
	broadcast := flag.Bool("broadcast", true, "set the broadcast flag and send to 255.255.255.255")
	timeoutSec := flag.Int("timeout", 0, "per-attempt deadline in seconds (default 5)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (default info)")
	cacheDB := flag.String("cache", "", "path to a BoltDB file caching the last lease per interface")
	debugPort := flag.String("debug-port", "", "serve /metrics and pprof on this port")
	flag.Parse()

	fileCfg, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	cfg := client.Config{
		Interface:     firstNonEmpty(*iface, fileCfg.Interface),
		HardwareAddr:  firstNonEmpty(*hwaddr, fileCfg.HardwareAddr),
		SendBroadcast: *broadcast || fileCfg.SendBroadcast,
	}
	if s := firstNonEmpty(*server, fileCfg.Server); s != "" {
		cfg.Server = net.ParseIP(s)
	}
	if r := firstNonEmpty(*relay, fileCfg.Relay); r != "" {
		cfg.Relay = net.ParseIP(r)
	}
	if t := *timeoutSec; t > 0 {
		cfg.Timeout = time.Duration(t) * time.Second
	} else if fileCfg.TimeoutSec > 0 {
		cfg.Timeout = time.Duration(fileCfg.TimeoutSec) * time.Second
	}
	opts := dhcpv4.NewOptionList()
	for name, value := range fileCfg.ExtraOptions {
		opt, err := dhcpv4.FromValue(name, value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: extra_options.%s: %v\n", name, err)
			os.Exit(1)
		}
		if err := opts.Append(opt); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: extra_options.%s: %v\n", name, err)
			os.Exit(1)
		}
	}
	// Mirror the reference CLI's default option set: a ClientIdentifier
	// derived from the hardware type and MAC is always sent unless the
	// caller already chose one explicitly.
	if cfg.HardwareAddr != "" && !opts.Has(dhcpv4.OptionCode(61)) {
		clientID, err := dhcpv4.FromValue("client_identifier", map[string]any{
			"hwtype": 1,
			"hwaddr": cfg.HardwareAddr,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: default client_identifier: %v\n", err)
			os.Exit(1)
		}
		if err := opts.Append(clientID); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: default client_identifier: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.ExtraOptions = opts

	level := firstNonEmpty(*logLevel, fileCfg.LogLevel)
	logger := logging.Setup(level, os.Stdout)
	cfg.Logger = logger

	if cfg.Interface == "" || cfg.HardwareAddr == "" {
		fmt.Fprintln(os.Stderr, "FATAL: -interface and -hwaddr are required")
		os.Exit(1)
	}

	port := firstNonEmpty(*debugPort, fileCfg.DebugPort)
	if port != "" {
		mux := nethttp.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/pprof/", nethttp.DefaultServeMux)
		go func() {
			addr := "0.0.0.0:" + port
			logger.Info("debug server listening", "addr", addr)
			if err := nethttp.ListenAndServe(addr, mux); err != nil {
				logger.Error("debug server failed", "error", err)
			}
		}()
	}

	perAttempt := cfg.Timeout
	if perAttempt == 0 {
		perAttempt = client.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*perAttempt+5*time.Second)
	defer cancel()

	lease, err := client.GetLease(ctx, cfg)
	if err != nil {
		logger.Error("get_lease failed", "error", err)
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	dbPath := firstNonEmpty(*cacheDB, fileCfg.CacheDB)
	if dbPath != "" {
		store, err := leasestore.Open(dbPath)
		if err != nil {
			logger.Warn("opening lease cache failed", "error", err)
		} else {
			if err := store.Put(cfg.Interface, lease); err != nil {
				logger.Warn("writing lease cache failed", "error", err)
			}
			store.Close()
		}
	}

	printLease(lease)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func printLease(lease *client.Lease) {
	out := map[string]any{
		"address": lease.Ack.YIAddr.String(),
		"elapsed": lease.Elapsed.String(),
		"xid":     lease.Ack.XID,
	}
	if lease.Server != nil {
		out["server"] = lease.Server.IP.String()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
