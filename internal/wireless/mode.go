package wireless

import (
	"context"
	"fmt"

	"wifiwarden/internal/log"
	"wifiwarden/internal/scan"
)

// Mode is a wireless interface operating mode.
type Mode string

const (
	// ModeMonitor enables passive frame capture.
	ModeMonitor Mode = "monitor"
	// ModeManaged is the normal connectivity mode.
	ModeManaged Mode = "managed"
)

// SetMode switches the interface operating mode. The interface is
// brought down first, re-typed, then brought back up; each step is
// synchronous and a failure aborts the sequence.
func SetMode(ctx context.Context, runner scan.Runner, iface string, mode Mode) error {
	log.Info("Switching interface mode", "interface", iface, "mode", string(mode))

	steps := [][]string{
		{"ifconfig", iface, "down"},
		{"iwconfig", iface, "mode", string(mode)},
		{"ifconfig", iface, "up"},
	}
	for _, step := range steps {
		if err := runner.Run(ctx, step[0], step[1:]...); err != nil {
			return fmt.Errorf("%v: %w", step, err)
		}
	}
	return nil
}
