package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// fileConfig holds the settings dhcpcli accepts from a TOML file; flags
// of the same name override whatever the file sets.
type fileConfig struct {
	Interface     string         `toml:"interface"`
	HardwareAddr  string         `toml:"hardware_addr"`
	Server        string         `toml:"server"`
	Relay         string         `toml:"relay"`
	SendBroadcast bool           `toml:"send_broadcast"`
	TimeoutSec    int            `toml:"timeout_seconds"`
	LogLevel      string         `toml:"log_level"`
	CacheDB       string         `toml:"cache_db"`
	ExtraOptions  map[string]any `toml:"extra_options"`
	DebugPort     string         `toml:"debug_port"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
