// Package config holds the process configuration: built from defaults,
// an optional YAML file, WIFIWARDEN_* environment variables and CLI
// flags, in ascending priority. The resulting struct is constructed once
// at startup and passed by reference; nothing here is mutated afterwards.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"wifiwarden/internal/model"
)

// ConfigError reports an invalid or unresolvable configuration value.
// It is fatal: the process must not enter monitoring with a broken
// configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Duration wraps time.Duration with YAML support for both duration
// strings ("90s", "5m") and bare integers, which are read as seconds to
// stay compatible with interval settings expressed that way.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if secs, err := strconv.Atoi(value.Value); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ToolConfig names the external binaries the scan adapter shells out to.
type ToolConfig struct {
	Discover string `yaml:"discover"`
	Inspect  string `yaml:"inspect"`
}

// CaptureConfig controls the background frame-capture process.
type CaptureConfig struct {
	Disabled      bool   `yaml:"disabled"`
	Tool          string `yaml:"tool"`
	Prefix        string `yaml:"prefix"`
	WriteInterval int    `yaml:"write_interval"`
}

// AlertConfig controls the audible announcement of new devices.
type AlertConfig struct {
	Disabled bool   `yaml:"disabled"`
	Tool     string `yaml:"tool"`
	Message  string `yaml:"message"`
}

// SNMPConfig controls the identity probe run against new devices.
type SNMPConfig struct {
	Disabled  bool     `yaml:"disabled"`
	Community string   `yaml:"community"`
	Port      uint16   `yaml:"port"`
	Timeout   Duration `yaml:"timeout"`
}

// Config is the full application configuration.
type Config struct {
	Interface string `yaml:"interface"` // empty: auto-detect
	Subnet    string `yaml:"subnet"`    // CIDR; empty: derive from interface

	DiscoveryInterval Duration `yaml:"discovery_interval"`
	FullScanInterval  Duration `yaml:"full_scan_interval"`

	LogDir      string `yaml:"log_dir"`
	MaxLogFiles int    `yaml:"max_log_files"`
	DataDir     string `yaml:"data_dir"`

	KnownDevices map[string]string `yaml:"known_devices"`

	Tools   ToolConfig    `yaml:"tools"`
	Capture CaptureConfig `yaml:"capture"`
	Alert   AlertConfig   `yaml:"alert"`
	SNMP    SNMPConfig    `yaml:"snmp"`

	// ConfigFile records where the file portion was loaded from.
	ConfigFile string `yaml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DiscoveryInterval: Duration(60 * time.Second),
		FullScanInterval:  Duration(300 * time.Second),
		LogDir:            "./wifi_logs",
		MaxLogFiles:       10,
		DataDir:           "./data",
		KnownDevices:      map[string]string{},
		Tools: ToolConfig{
			Discover: "netdiscover",
			Inspect:  "nmap",
		},
		Capture: CaptureConfig{
			Tool:          "airodump-ng",
			Prefix:        "airodump_out",
			WriteInterval: 30,
		},
		Alert: AlertConfig{
			Tool:    "espeak",
			Message: "New device detected",
		},
		SNMP: SNMPConfig{
			Community: "public",
			Port:      161,
			Timeout:   Duration(2 * time.Second),
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply; a named file that does not
// exist is an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Field: "config file", Reason: err.Error()}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Field: "config file", Reason: err.Error()}
		}
		cfg.ConfigFile = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

// applyEnv overlays WIFIWARDEN_* variables. A set-but-malformed value is
// an error; silently running on defaults would hide the typo.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("WIFIWARDEN_INTERFACE"); v != "" {
		cfg.Interface = v
	}
	if v := os.Getenv("WIFIWARDEN_SUBNET"); v != "" {
		cfg.Subnet = v
	}
	if v := os.Getenv("WIFIWARDEN_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("WIFIWARDEN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WIFIWARDEN_DISCOVERY_INTERVAL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return &ConfigError{Field: "WIFIWARDEN_DISCOVERY_INTERVAL", Reason: fmt.Sprintf("invalid duration %q", v)}
		}
		cfg.DiscoveryInterval = d
	}
	if v := os.Getenv("WIFIWARDEN_FULL_SCAN_INTERVAL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return &ConfigError{Field: "WIFIWARDEN_FULL_SCAN_INTERVAL", Reason: fmt.Sprintf("invalid duration %q", v)}
		}
		cfg.FullScanInterval = d
	}
	if v := os.Getenv("WIFIWARDEN_MAX_LOG_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "WIFIWARDEN_MAX_LOG_FILES", Reason: fmt.Sprintf("invalid count %q", v)}
		}
		cfg.MaxLogFiles = n
	}
	if v := os.Getenv("WIFIWARDEN_SNMP_COMMUNITY"); v != "" {
		cfg.SNMP.Community = v
	}
	return nil
}

func parseDuration(s string) (Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return Duration(time.Duration(secs) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	return Duration(d), err
}

// normalize canonicalizes known-device MACs so lookups are case-stable.
func (c *Config) normalize() {
	known := make(map[string]string, len(c.KnownDevices))
	for mac, label := range c.KnownDevices {
		known[model.CanonicalMAC(mac)] = label
	}
	c.KnownDevices = known
}

// Validate checks the configuration for values that would make
// monitoring impossible. It does not require interface or subnet, since
// both can be auto-detected at startup.
func (c *Config) Validate() error {
	if c.Subnet != "" {
		if _, _, err := net.ParseCIDR(c.Subnet); err != nil {
			return &ConfigError{Field: "subnet", Reason: fmt.Sprintf("%q is not valid CIDR", c.Subnet)}
		}
	}
	if c.DiscoveryInterval <= 0 {
		return &ConfigError{Field: "discovery_interval", Reason: "must be positive"}
	}
	if c.FullScanInterval <= 0 {
		return &ConfigError{Field: "full_scan_interval", Reason: "must be positive"}
	}
	if c.MaxLogFiles < 1 {
		return &ConfigError{Field: "max_log_files", Reason: "must be at least 1"}
	}
	if c.LogDir == "" {
		return &ConfigError{Field: "log_dir", Reason: "must not be empty"}
	}
	return nil
}
