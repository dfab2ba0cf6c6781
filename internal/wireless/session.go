package wireless

import (
	"context"
	"fmt"
	"time"

	"wifiwarden/internal/log"
	"wifiwarden/internal/scan"
)

// Session owns the interface mode and the capture process for one
// monitoring run: monitor mode on entry, managed mode on exit.
type Session struct {
	runner       scan.Runner
	iface        string
	captureOpts  CaptureOptions
	withCapture  bool
	grace        time.Duration
	capture      *Capture
	modeSwitched bool
}

// NewSession prepares a session for the given interface. When
// withCapture is false only the mode is switched.
func NewSession(runner scan.Runner, iface string, opts CaptureOptions, withCapture bool, grace time.Duration) *Session {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Session{
		runner:      runner,
		iface:       iface,
		captureOpts: opts,
		withCapture: withCapture,
		grace:       grace,
	}
}

// Begin switches the interface to monitor mode and starts the capture
// process. If the capture fails to start after the mode was already
// switched, the managed mode is restored before the error is returned.
func (s *Session) Begin(ctx context.Context) error {
	if err := SetMode(ctx, s.runner, s.iface, ModeMonitor); err != nil {
		return fmt.Errorf("entering monitor mode: %w", err)
	}
	s.modeSwitched = true

	if !s.withCapture {
		return nil
	}

	capture, err := StartCapture(s.iface, s.captureOpts)
	if err != nil {
		s.restoreManaged(ctx)
		return fmt.Errorf("starting capture: %w", err)
	}
	s.capture = capture
	return nil
}

// End stops the capture process within the grace period and restores
// managed mode. Both steps are best-effort; the first error is returned
// after everything has been attempted.
func (s *Session) End(ctx context.Context) error {
	var firstErr error

	if s.capture != nil {
		if err := s.capture.Stop(s.grace); err != nil {
			log.Warn("Stopping capture failed", "error", err)
			firstErr = err
		}
		s.capture = nil
	}

	if err := s.restoreManaged(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *Session) restoreManaged(ctx context.Context) error {
	if !s.modeSwitched {
		return nil
	}
	if err := SetMode(ctx, s.runner, s.iface, ModeManaged); err != nil {
		log.Error("Restoring managed mode failed", "interface", s.iface, "error", err)
		return err
	}
	s.modeSwitched = false
	return nil
}
