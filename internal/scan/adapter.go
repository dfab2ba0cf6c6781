// Package scan wraps the external discovery and inspection tools,
// normalizing their text output into structured records and their
// failures into typed errors.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"wifiwarden/internal/log"
	"wifiwarden/internal/model"
)

// Adapter invokes the external network tools. All calls are blocking and
// carry a bounded execution timeout so a hung tool can never stall the
// caller indefinitely.
type Adapter struct {
	runner            Runner
	discoverTool      string
	inspectTool       string
	discoveryTimeout  time.Duration
	inspectionTimeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRunner replaces the command runner, used by tests.
func WithRunner(r Runner) Option {
	return func(a *Adapter) { a.runner = r }
}

// WithTools overrides the discovery and inspection tool names.
func WithTools(discover, inspect string) Option {
	return func(a *Adapter) {
		if discover != "" {
			a.discoverTool = discover
		}
		if inspect != "" {
			a.inspectTool = inspect
		}
	}
}

// NewAdapter creates an adapter whose discovery calls are bounded by the
// discovery interval and whose inspections are allowed twice that.
func NewAdapter(discoveryInterval time.Duration, opts ...Option) *Adapter {
	a := &Adapter{
		runner:            OSRunner{},
		discoverTool:      "netdiscover",
		inspectTool:       "nmap",
		discoveryTimeout:  discoveryInterval,
		inspectionTimeout: 2 * discoveryInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Discover sweeps the subnet with the discovery tool and returns one
// sighting per matching output line. An empty result is not an error: a
// quiet network is a valid answer. The tool being absent or killed by
// its deadline surfaces as ErrScanUnavailable / ErrScanTimeout.
func (a *Adapter) Discover(ctx context.Context, subnet string) ([]model.Sighting, error) {
	ctx, cancel := context.WithTimeout(ctx, a.discoveryTimeout)
	defer cancel()

	out, err := a.runner.CombinedOutput(ctx, a.discoverTool, "-r", subnet)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", a.discoverTool, ErrScanUnavailable)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s on %s: %w", a.discoverTool, subnet, ErrScanTimeout)
		}
		// A cancelled sweep must not read as a quiet network.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s on %s: %w", a.discoverTool, subnet, ctx.Err())
		}

		// Some discovery tools exit non-zero when nothing answered.
		// Only treat the failure as hard when the output hints at a
		// broken install; otherwise report zero hosts.
		sightings := ParseDiscoveryOutput(out)
		if len(sightings) > 0 {
			return sightings, nil
		}
		if looksLikeMissingBinary(out) {
			return nil, fmt.Errorf("%s: %v: %w", a.discoverTool, err, ErrScanUnavailable)
		}
		log.Debug("Discovery tool exited non-zero with no hosts", "tool", a.discoverTool, "error", err)
		return nil, nil
	}

	return ParseDiscoveryOutput(out), nil
}

// Inspect runs the inspection tool against a single host and captures
// its combined output verbatim. Failures are wrapped in InspectionError
// and must not abort the sweep that dispatched the inspection.
func (a *Adapter) Inspect(ctx context.Context, ip string) (*model.InspectionReport, error) {
	ctx, cancel := context.WithTimeout(ctx, a.inspectionTimeout)
	defer cancel()

	out, err := a.runner.CombinedOutput(ctx, a.inspectTool, "-sS", "-T4", "-Pn", ip)
	if err != nil {
		return nil, &InspectionError{IP: ip, Err: err}
	}

	return &model.InspectionReport{
		IP:         ip,
		CapturedAt: time.Now(),
		Body:       string(out),
	}, nil
}

// SweepSubnet fires a quick ping sweep across the whole subnet. The
// output is discarded; the call exists to keep liveness state warm and
// produce a log line. Errors are returned for logging only.
func (a *Adapter) SweepSubnet(ctx context.Context, subnet string) error {
	ctx, cancel := context.WithTimeout(ctx, a.inspectionTimeout)
	defer cancel()

	if err := a.runner.Run(ctx, a.inspectTool, "-sn", subnet); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s -sn %s: %w", a.inspectTool, subnet, ErrScanTimeout)
		}
		return fmt.Errorf("%s -sn %s: %w", a.inspectTool, subnet, err)
	}
	return nil
}

func looksLikeMissingBinary(out []byte) bool {
	lower := bytes.ToLower(out)
	return bytes.Contains(lower, []byte("not found")) ||
		bytes.Contains(lower, []byte("no such file"))
}
