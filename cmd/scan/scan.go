// Package scan provides the one-shot discovery command.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/paularlott/cli"

	"wifiwarden/internal/config"
	"wifiwarden/internal/model"
	"wifiwarden/internal/registry"
	"wifiwarden/internal/scan"
	"wifiwarden/internal/wireless"
)

// Command returns the scan command.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Usage:       "Run a single discovery sweep",
		Description: "Sweep a subnet once, classify every answering device against the known-device configuration and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"WIFIWARDEN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "subnet",
				Usage: "Subnet to sweep in CIDR form (default: derive from the connected interface)",
			},
			&cli.IntFlag{
				Name:         "timeout",
				Usage:        "Sweep timeout in seconds",
				DefaultValue: 60,
			},
		},
		Run: runScan,
	}
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.GetString("config"))
	if err != nil {
		return err
	}

	runner := scan.OSRunner{}
	subnet := cmd.GetString("subnet")
	if subnet == "" {
		subnet = cfg.Subnet
	}
	if subnet == "" {
		iface, err := wireless.DetectInterface(ctx, runner)
		if err != nil {
			return fmt.Errorf("no subnet given and auto-detection failed: %w", err)
		}
		nc, err := wireless.ResolveContext(ctx, runner, iface)
		if err != nil {
			return err
		}
		subnet = nc.Subnet
	}

	timeout := time.Duration(cmd.GetInt("timeout")) * time.Second
	adapter := scan.NewAdapter(timeout, scan.WithTools(cfg.Tools.Discover, cfg.Tools.Inspect))

	reg := registry.New()
	reg.Seed(cfg.KnownDevices)

	fmt.Printf("Sweeping %s...\n", subnet)
	start := time.Now()

	sightings, err := adapter.Discover(ctx, subnet)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Found %d device(s) in %v\n\n", len(sightings), time.Since(start).Round(time.Millisecond))
	for _, s := range sightings {
		class := reg.Classify(s.IP, s.MAC)
		marker := " "
		if class == model.ClassificationNew {
			marker = "!"
		}
		fmt.Printf("%s %-15s  %-17s  %-12s  %s\n", marker, s.IP, model.CanonicalMAC(s.MAC), class, reg.Label(s.MAC))
	}
	return nil
}
