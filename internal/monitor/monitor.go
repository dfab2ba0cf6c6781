// Package monitor runs the presence-monitoring lifecycle: two periodic
// sweeps against one subnet, novelty classification of everything the
// sweeps find, and background inspection of devices seen for the first
// time.
package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"wifiwarden/internal/config"
	"wifiwarden/internal/log"
	"wifiwarden/internal/logdir"
	"wifiwarden/internal/model"
	"wifiwarden/internal/registry"
	"wifiwarden/internal/scan"
	"wifiwarden/internal/storage"
	"wifiwarden/internal/worker"
)

// DefaultGrace bounds every teardown step: abandoning an in-flight
// sweep, draining the inspection pool, and stopping the capture process.
const DefaultGrace = 5 * time.Second

// Scanner is the external-tool surface the monitor drives.
type Scanner interface {
	Discover(ctx context.Context, subnet string) ([]model.Sighting, error)
	Inspect(ctx context.Context, ip string) (*model.InspectionReport, error)
	SweepSubnet(ctx context.Context, subnet string) error
}

// Prober resolves a device's SNMP identity. Optional.
type Prober interface {
	Identify(ip string) (name, descr string, err error)
}

// NetSession owns the interface state for the duration of one run.
// Optional; without one the interface is left as-is.
type NetSession interface {
	Begin(ctx context.Context) error
	End(ctx context.Context) error
}

// Options carries the monitor's collaborators. Config, Network, Scanner,
// Registry and Journal are required; the rest may be nil or zero.
type Options struct {
	Config   *config.Config
	Network  *model.NetworkContext
	Scanner  Scanner
	Session  NetSession
	Registry *registry.Registry
	Journal  *logdir.Journal
	Store    storage.Store
	Prober   Prober
	// Runner executes the audible-alert tool. Optional; without one new
	// devices are only journaled.
	Runner  scan.Runner
	Workers int
	Grace   time.Duration
}

// Monitor ties the sweeps, the registry and the inspection pool
// together. Create with New, drive with Run.
type Monitor struct {
	cfg     *config.Config
	net     *model.NetworkContext
	scanner Scanner
	session NetSession
	reg     *registry.Registry
	journal *logdir.Journal
	store   storage.Store
	prober  Prober
	runner  scan.Runner
	pool    *worker.Pool
	grace   time.Duration

	cron      *cron.Cron
	runCtx    context.Context
	runCancel context.CancelFunc
	state     stateVar
}

// New assembles a monitor and seeds the registry with the configured
// known devices.
func New(opts Options) *Monitor {
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Workers < 1 {
		opts.Workers = 2
	}

	m := &Monitor{
		cfg:     opts.Config,
		net:     opts.Network,
		scanner: opts.Scanner,
		session: opts.Session,
		reg:     opts.Registry,
		journal: opts.Journal,
		store:   opts.Store,
		prober:  opts.Prober,
		runner:  opts.Runner,
		pool:    worker.NewPool(opts.Workers),
		grace:   opts.Grace,
	}
	m.runCtx, m.runCancel = context.WithCancel(context.Background())
	m.reg.Seed(opts.Config.KnownDevices)
	return m
}

// State reports the current lifecycle phase.
func (m *Monitor) State() State {
	return m.state.get()
}

// Run blocks until ctx is cancelled, then tears everything down in
// order: scheduler, inspection pool, network session. Each teardown step
// is bounded by the grace period, so Run returns promptly even with a
// sweep or inspection stuck mid-flight.
func (m *Monitor) Run(ctx context.Context) error {
	m.state.set(StateStarting)
	defer m.runCancel()

	if m.session != nil {
		if err := m.session.Begin(ctx); err != nil {
			m.state.set(StateStopped)
			return err
		}
	}

	m.pool.Start()

	// Each sweep gets its own overlap guard: a slow discovery must not
	// pile up behind itself, and must not delay the full sweep either.
	m.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	discovery := cron.NewChain(cron.SkipIfStillRunning(cronLog{})).Then(cron.FuncJob(m.discoveryTick))
	fullSweep := cron.NewChain(cron.SkipIfStillRunning(cronLog{})).Then(cron.FuncJob(m.fullSweepTick))
	m.cron.Schedule(cron.Every(m.cfg.DiscoveryInterval.Std()), discovery)
	m.cron.Schedule(cron.Every(m.cfg.FullScanInterval.Std()), fullSweep)
	m.cron.Start()

	m.state.set(StateMonitoring)
	log.Info("Monitoring started",
		"interface", m.net.Interface,
		"subnet", m.net.Subnet,
		"discovery_interval", m.cfg.DiscoveryInterval.Std(),
		"full_scan_interval", m.cfg.FullScanInterval.Std())
	m.journal.Event("monitoring started on %s (%s)", m.net.Interface, m.net.Subnet)

	// The schedule only fires after a full interval has elapsed; run the
	// first discovery immediately so startup is not a blind minute. The
	// chain wrapper keeps it from overlapping the scheduled runs.
	go discovery.Run()

	<-ctx.Done()

	m.state.set(StateStopping)
	log.Info("Shutdown requested")
	m.journal.Event("shutdown requested")

	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(m.grace):
		log.Warn("In-flight sweep did not finish within grace period, abandoning", "grace", m.grace)
		m.runCancel()
	}

	m.pool.StopWait(m.grace)

	var err error
	if m.session != nil {
		endCtx, cancel := context.WithTimeout(context.Background(), m.grace)
		defer cancel()
		err = m.session.End(endCtx)
	}

	m.journal.Event("monitoring stopped")
	m.state.set(StateStopped)
	log.Info("Monitoring stopped")
	return err
}

// discoveryTick runs one discovery sweep: classify every sighting,
// record it, and dispatch an inspection for each first-time device.
func (m *Monitor) discoveryTick() {
	sightings, err := m.scanner.Discover(m.runCtx, m.net.Subnet)
	if err != nil {
		log.Warn("Discovery sweep skipped", "subnet", m.net.Subnet, "error", err)
		m.journal.Event("discovery sweep skipped: %v", err)
		return
	}

	sweepID := newSweepID()
	newDevices := 0
	for _, s := range sightings {
		class := m.reg.Classify(s.IP, s.MAC)
		m.recordSighting(sweepID, s, class)

		if class != model.ClassificationNew {
			continue
		}
		newDevices++
		log.Info("New device detected", "ip", s.IP, "mac", s.MAC)
		m.journal.Event("NEW DEVICE: ip=%s mac=%s", s.IP, model.CanonicalMAC(s.MAC))
		m.announce()

		sighting := s
		err := m.pool.Submit(worker.Job{
			ID:      "inspect-" + sighting.IP,
			Handler: func(ctx context.Context) error { return m.inspect(ctx, sighting) },
		})
		if err != nil {
			log.Warn("Inspection not dispatched", "ip", sighting.IP, "error", err)
		}
	}

	log.Debug("Discovery sweep complete", "sweep_id", sweepID, "hosts", len(sightings), "new", newDevices)

	if err := logdir.Rotate(m.cfg.LogDir, m.cfg.MaxLogFiles); err != nil {
		log.Warn("Log rotation failed", "dir", m.cfg.LogDir, "error", err)
	}
}

// fullSweepTick fires the slow full-subnet ping sweep. Its failures are
// log-only; the discovery loop is the authoritative source of sightings.
func (m *Monitor) fullSweepTick() {
	log.Debug("Full-subnet sweep starting", "subnet", m.net.Subnet)
	if err := m.scanner.SweepSubnet(m.runCtx, m.net.Subnet); err != nil {
		log.Warn("Full-subnet sweep failed", "subnet", m.net.Subnet, "error", err)
		m.journal.Event("full sweep of %s failed: %v", m.net.Subnet, err)
		return
	}
	m.journal.Event("full sweep of %s complete", m.net.Subnet)
}

// inspect runs the deep inspection of one newly seen device and persists
// its artifacts. Runs on the worker pool.
func (m *Monitor) inspect(ctx context.Context, s model.Sighting) error {
	report, err := m.scanner.Inspect(ctx, s.IP)
	if err != nil {
		m.journal.Event("inspection of %s failed: %v", s.IP, err)
		return err
	}

	path, err := logdir.WriteReport(m.cfg.LogDir, report)
	if err != nil {
		log.Warn("Report write failed", "ip", s.IP, "error", err)
	} else {
		m.journal.Event("inspection of %s written to %s", s.IP, path)
	}

	rec := &model.InspectionRecord{
		IP:         s.IP,
		MAC:        model.CanonicalMAC(s.MAC),
		ReportPath: path,
	}
	if m.prober != nil {
		if name, descr, err := m.prober.Identify(s.IP); err == nil {
			rec.SNMPName = name
			rec.SNMPDescr = descr
			log.Info("SNMP identity resolved", "ip", s.IP, "name", name)
		} else {
			log.Debug("SNMP probe failed", "ip", s.IP, "error", err)
		}
	}
	if m.store != nil {
		if err := m.store.RecordInspection(rec); err != nil {
			log.Warn("Recording inspection failed", "ip", s.IP, "error", err)
		}
	}
	return nil
}

// announce speaks the new-device alert through the configured
// text-to-speech tool. Best effort; a failure usually just means the
// tool is not installed.
func (m *Monitor) announce() {
	if m.runner == nil || m.cfg.Alert.Disabled {
		return
	}
	tool := m.cfg.Alert.Tool
	if tool == "" {
		tool = "espeak"
	}
	msg := m.cfg.Alert.Message
	if msg == "" {
		msg = "New device detected"
	}

	ctx, cancel := context.WithTimeout(m.runCtx, 10*time.Second)
	defer cancel()
	if err := m.runner.Run(ctx, tool, msg); err != nil {
		log.Debug("Audible alert failed", "tool", tool, "error", err)
	}
}

func (m *Monitor) recordSighting(sweepID string, s model.Sighting, class model.Classification) {
	if m.store == nil {
		return
	}
	rec := &model.SightingRecord{
		SweepID:        sweepID,
		IP:             s.IP,
		MAC:            model.CanonicalMAC(s.MAC),
		Label:          m.reg.Label(s.MAC),
		Classification: class.String(),
	}
	if err := m.store.RecordSighting(rec); err != nil {
		log.Warn("Recording sighting failed", "mac", rec.MAC, "error", err)
	}
}

func newSweepID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// cronLog adapts the structured logger to the scheduler's interface. It
// only ever receives skip notices from the overlap guard.
type cronLog struct{}

func (cronLog) Info(msg string, keyvals ...any) {
	log.Debug(msg, keyvals...)
}

func (cronLog) Error(err error, msg string, keyvals ...any) {
	log.Error(msg, append(keyvals, "error", err)...)
}
