package wireless

import (
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"wifiwarden/internal/log"
)

// CaptureOptions configures the background capture process.
type CaptureOptions struct {
	Tool          string // defaults to airodump-ng
	OutPrefix     string // path prefix for capture output files
	WriteInterval int    // seconds between CSV writes
	BSSID         string // optional: restrict to one access point
	Channel       string // optional: lock to one channel
}

// Capture is a running background frame-capture process.
type Capture struct {
	cmd *exec.Cmd
}

// StartCapture launches the capture tool on a monitor-mode interface.
// Output goes to files under the log directory; the process's own
// stdout/stderr are discarded.
func StartCapture(iface string, opts CaptureOptions) (*Capture, error) {
	tool := opts.Tool
	if tool == "" {
		tool = "airodump-ng"
	}
	interval := opts.WriteInterval
	if interval <= 0 {
		interval = 30
	}

	args := []string{
		iface,
		"--write", opts.OutPrefix,
		"--write-interval", strconv.Itoa(interval),
		"--beacons",
	}
	if opts.BSSID != "" {
		args = append(args, "--bssid", opts.BSSID)
	}
	if opts.Channel != "" {
		args = append(args, "--channel", opts.Channel)
	}

	cmd := exec.Command(tool, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", tool, err)
	}

	log.Info("Capture process started", "tool", tool, "interface", iface, "pid", cmd.Process.Pid)
	return &Capture{cmd: cmd}, nil
}

// Stop terminates the capture process, waiting up to grace for a clean
// exit before escalating to a kill.
func (c *Capture) Stop(grace time.Duration) error {
	if c == nil || c.cmd == nil || c.cmd.Process == nil {
		return nil
	}

	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		log.Debug("Capture terminate signal failed", "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			log.Debug("Capture process exited", "error", err)
		}
		return nil
	case <-time.After(grace):
		log.Warn("Capture process did not exit in time, killing", "pid", c.cmd.Process.Pid)
		if err := c.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("killing capture process: %w", err)
		}
		<-done
		return nil
	}
}
