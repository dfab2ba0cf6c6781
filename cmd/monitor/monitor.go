// Package monitor provides the long-running monitoring command.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/paularlott/cli"

	"wifiwarden/internal/config"
	"wifiwarden/internal/log"
	"wifiwarden/internal/logdir"
	"wifiwarden/internal/model"
	"wifiwarden/internal/monitor"
	"wifiwarden/internal/registry"
	"wifiwarden/internal/scan"
	"wifiwarden/internal/storage"
	"wifiwarden/internal/wireless"
)

// Command returns the monitor command.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "monitor",
		Usage:       "Run the presence monitor",
		Description: "Continuously sweep the local subnet, classify every device against the known-device registry, and deep-inspect devices seen for the first time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"WIFIWARDEN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "interface",
				Usage: "Wireless interface to monitor (default: auto-detect)",
			},
			&cli.StringFlag{
				Name:  "subnet",
				Usage: "Subnet to sweep in CIDR form (default: derive from interface)",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Directory for the journal and inspection reports",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory for the audit database",
			},
			&cli.IntFlag{
				Name:  "discovery-interval",
				Usage: "Seconds between discovery sweeps",
			},
			&cli.IntFlag{
				Name:  "full-scan-interval",
				Usage: "Seconds between full-subnet sweeps",
			},
			&cli.IntFlag{
				Name:         "workers",
				Usage:        "Concurrent inspection workers",
				DefaultValue: 2,
			},
			&cli.BoolFlag{
				Name:  "no-capture",
				Usage: "Skip the background frame capture",
			},
			&cli.BoolFlag{
				Name:  "no-snmp",
				Usage: "Skip the SNMP identity probe on new devices",
			},
			&cli.BoolFlag{
				Name:  "no-alert",
				Usage: "Skip the audible new-device alert",
			},
			&cli.BoolFlag{
				Name:  "no-monitor-mode",
				Usage: "Leave the interface in managed mode (also disables capture)",
			},
			&cli.BoolFlag{
				Name:  "allow-non-root",
				Usage: "Do not require root privileges",
			},
		},
		Run: runMonitor,
	}
}

func runMonitor(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The raw ARP sweeps, the SYN inspections and the mode switch all
	// need raw socket or interface privileges.
	if os.Geteuid() != 0 && !cmd.GetBool("allow-non-root") {
		return fmt.Errorf("must run as root (or pass --allow-non-root)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := scan.OSRunner{}
	netctx, err := resolveNetwork(ctx, runner, cfg)
	if err != nil {
		return err
	}
	log.Info("Network context resolved",
		"interface", netctx.Interface,
		"subnet", netctx.Subnet,
		"ssid", netctx.SSID,
		"bssid", netctx.BSSID,
		"channel", netctx.Channel)

	journal, err := logdir.OpenJournal(cfg.LogDir)
	if err != nil {
		return err
	}
	defer journal.Close()

	store, err := storage.NewSQLiteStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer store.Close()

	if cmd.GetBool("no-alert") {
		cfg.Alert.Disabled = true
	}

	var prober monitor.Prober
	if !cfg.SNMP.Disabled && !cmd.GetBool("no-snmp") {
		prober = scan.NewSNMPProbe(cfg.SNMP.Community, cfg.SNMP.Port, cfg.SNMP.Timeout.Std())
	}

	var session monitor.NetSession
	if !cmd.GetBool("no-monitor-mode") {
		withCapture := !cfg.Capture.Disabled && !cmd.GetBool("no-capture")
		session = wireless.NewSession(runner, netctx.Interface, wireless.CaptureOptions{
			Tool:          cfg.Capture.Tool,
			OutPrefix:     filepath.Join(cfg.LogDir, cfg.Capture.Prefix),
			WriteInterval: cfg.Capture.WriteInterval,
			BSSID:         netctx.BSSID,
			Channel:       netctx.Channel,
		}, withCapture, monitor.DefaultGrace)
	}

	m := monitor.New(monitor.Options{
		Config:   cfg,
		Network:  netctx,
		Scanner:  scan.NewAdapter(cfg.DiscoveryInterval.Std(), scan.WithTools(cfg.Tools.Discover, cfg.Tools.Inspect)),
		Session:  session,
		Registry: registry.New(),
		Journal:  journal,
		Store:    store,
		Prober:   prober,
		Runner:   runner,
		Workers:  cmd.GetInt("workers"),
	})

	return m.Run(ctx)
}

// loadConfig builds the configuration from file, environment and flags.
// Flags win, but only when actually set to something.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.GetString("config"))
	if err != nil {
		return nil, err
	}

	if v := cmd.GetString("interface"); v != "" {
		cfg.Interface = v
	}
	if v := cmd.GetString("subnet"); v != "" {
		cfg.Subnet = v
	}
	if v := cmd.GetString("log-dir"); v != "" {
		cfg.LogDir = v
	}
	if v := cmd.GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v := cmd.GetInt("discovery-interval"); v > 0 {
		cfg.DiscoveryInterval = config.Duration(time.Duration(v) * time.Second)
	}
	if v := cmd.GetInt("full-scan-interval"); v > 0 {
		cfg.FullScanInterval = config.Duration(time.Duration(v) * time.Second)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveNetwork determines the interface and subnet to monitor,
// auto-detecting whatever the configuration leaves blank.
func resolveNetwork(ctx context.Context, runner scan.Runner, cfg *config.Config) (*model.NetworkContext, error) {
	iface := cfg.Interface
	if iface == "" {
		detected, err := wireless.DetectInterface(ctx, runner)
		if err != nil {
			return nil, fmt.Errorf("no interface configured and auto-detection failed: %w", err)
		}
		iface = detected
		log.Info("Auto-detected wireless interface", "interface", iface)
	}

	if cfg.Subnet != "" {
		nc := &model.NetworkContext{Interface: iface, Subnet: cfg.Subnet}
		// Link details are nice to have for the capture filter but not
		// required when the subnet is pinned by configuration.
		if resolved, err := wireless.ResolveContext(ctx, runner, iface); err == nil {
			nc.BSSID = resolved.BSSID
			nc.Channel = resolved.Channel
			nc.SSID = resolved.SSID
		}
		return nc, nil
	}

	nc, err := wireless.ResolveContext(ctx, runner, iface)
	if err != nil {
		return nil, fmt.Errorf("resolving network context: %w", err)
	}
	return nc, nil
}
