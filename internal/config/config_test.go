package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DiscoveryInterval.Std() != 60*time.Second {
		t.Errorf("discovery interval = %v, want 60s", cfg.DiscoveryInterval.Std())
	}
	if cfg.FullScanInterval.Std() != 300*time.Second {
		t.Errorf("full scan interval = %v, want 300s", cfg.FullScanInterval.Std())
	}
	if cfg.MaxLogFiles != 10 {
		t.Errorf("max log files = %d, want 10", cfg.MaxLogFiles)
	}
	if cfg.Tools.Discover != "netdiscover" || cfg.Tools.Inspect != "nmap" {
		t.Errorf("tools = %+v", cfg.Tools)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
interface: wlan0
subnet: 192.168.1.0/24
discovery_interval: 90s
full_scan_interval: 600
max_log_files: 25
known_devices:
  "aa:bb:cc:dd:ee:11": My Laptop
  "AA:BB:CC:DD:EE:22": My Phone
tools:
  discover: arp-scan
snmp:
  community: internal
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Interface != "wlan0" || cfg.Subnet != "192.168.1.0/24" {
		t.Errorf("network settings = %s %s", cfg.Interface, cfg.Subnet)
	}
	if cfg.DiscoveryInterval.Std() != 90*time.Second {
		t.Errorf("discovery interval = %v, want 90s", cfg.DiscoveryInterval.Std())
	}
	// Bare integers are seconds.
	if cfg.FullScanInterval.Std() != 600*time.Second {
		t.Errorf("full scan interval = %v, want 10m", cfg.FullScanInterval.Std())
	}
	if cfg.MaxLogFiles != 25 {
		t.Errorf("max log files = %d", cfg.MaxLogFiles)
	}
	// Partial tool override keeps the other default.
	if cfg.Tools.Discover != "arp-scan" || cfg.Tools.Inspect != "nmap" {
		t.Errorf("tools = %+v", cfg.Tools)
	}
	if cfg.SNMP.Community != "internal" {
		t.Errorf("snmp community = %s", cfg.SNMP.Community)
	}
	// Known-device MACs are canonicalized to uppercase.
	if cfg.KnownDevices["AA:BB:CC:DD:EE:11"] != "My Laptop" {
		t.Errorf("known devices not canonicalized: %v", cfg.KnownDevices)
	}
	if len(cfg.KnownDevices) != 2 {
		t.Errorf("known devices = %v", cfg.KnownDevices)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIFIWARDEN_SUBNET", "10.0.0.0/16")
	t.Setenv("WIFIWARDEN_DISCOVERY_INTERVAL", "2m")
	t.Setenv("WIFIWARDEN_MAX_LOG_FILES", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Subnet != "10.0.0.0/16" {
		t.Errorf("subnet = %s", cfg.Subnet)
	}
	if cfg.DiscoveryInterval.Std() != 2*time.Minute {
		t.Errorf("discovery interval = %v", cfg.DiscoveryInterval.Std())
	}
	if cfg.MaxLogFiles != 5 {
		t.Errorf("max log files = %d", cfg.MaxLogFiles)
	}
}

func TestEnvSecondsForm(t *testing.T) {
	t.Setenv("WIFIWARDEN_DISCOVERY_INTERVAL", "45")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DiscoveryInterval.Std() != 45*time.Second {
		t.Errorf("discovery interval = %v, want 45s", cfg.DiscoveryInterval.Std())
	}
}

func TestEnvMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad discovery interval", "WIFIWARDEN_DISCOVERY_INTERVAL", "soon"},
		{"bad full scan interval", "WIFIWARDEN_FULL_SCAN_INTERVAL", "5 minutes"},
		{"bad max log files", "WIFIWARDEN_MAX_LOG_FILES", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := Load("")
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.env {
				t.Errorf("error field = %s, want %s", cfgErr.Field, tt.env)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad subnet", func(c *Config) { c.Subnet = "not-a-cidr" }, "subnet"},
		{"zero discovery interval", func(c *Config) { c.DiscoveryInterval = 0 }, "discovery_interval"},
		{"negative full scan interval", func(c *Config) { c.FullScanInterval = -1 }, "full_scan_interval"},
		{"zero log window", func(c *Config) { c.MaxLogFiles = 0 }, "max_log_files"},
		{"empty log dir", func(c *Config) { c.LogDir = "" }, "log_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("error field = %s, want %s", cfgErr.Field, tt.wantField)
			}
		})
	}
}
