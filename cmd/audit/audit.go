// Package audit provides read-only commands over the audit database.
package audit

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"wifiwarden/internal/config"
	"wifiwarden/internal/storage"
)

// Commands returns the audit subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		sightingsCommand(),
		inspectionsCommand(),
	}
}

func sightingsCommand() *cli.Command {
	return &cli.Command{
		Name:        "sightings",
		Usage:       "List recent sightings",
		Description: "Show the most recent classified sightings from the audit database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"WIFIWARDEN_CONFIG"},
			},
			&cli.IntFlag{
				Name:         "limit",
				Usage:        "Maximum number of sightings to show",
				DefaultValue: 50,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sightings, err := store.RecentSightings(cmd.GetInt("limit"))
			if err != nil {
				return err
			}
			if len(sightings) == 0 {
				fmt.Println("No sightings recorded.")
				return nil
			}

			for _, s := range sightings {
				fmt.Printf("%s  %-15s  %-17s  %-12s  %s\n",
					s.SeenAt.Format("2006-01-02 15:04:05"), s.IP, s.MAC, s.Classification, s.Label)
			}
			return nil
		},
	}
}

func inspectionsCommand() *cli.Command {
	return &cli.Command{
		Name:        "inspections",
		Usage:       "List inspections of one device",
		Description: "Show every recorded deep inspection of a device, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"WIFIWARDEN_CONFIG"},
			},
			&cli.StringFlag{
				Name:     "mac",
				Usage:    "MAC address of the device",
				Required: true,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			inspections, err := store.InspectionsForMAC(cmd.GetString("mac"))
			if err != nil {
				return err
			}
			if len(inspections) == 0 {
				fmt.Println("No inspections recorded for that device.")
				return nil
			}

			for _, i := range inspections {
				fmt.Printf("%s  %-15s  %s\n", i.CreatedAt.Format("2006-01-02 15:04:05"), i.IP, i.ReportPath)
				if i.SNMPName != "" || i.SNMPDescr != "" {
					fmt.Printf("    snmp: %s  %s\n", i.SNMPName, i.SNMPDescr)
				}
			}
			return nil
		},
	}
}

func openStore(cmd *cli.Command) (*storage.SQLiteStore, error) {
	cfg, err := config.Load(cmd.GetString("config"))
	if err != nil {
		return nil, err
	}
	return storage.NewSQLiteStore(cfg.DataDir)
}
