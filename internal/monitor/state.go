package monitor

import "sync/atomic"

// State is the lifecycle phase of the monitor.
type State int32

const (
	// StateStarting covers context resolution, the mode switch and the
	// capture launch. Failures here are fatal.
	StateStarting State = iota
	// StateMonitoring is the steady state with both periodic sweeps
	// running.
	StateMonitoring
	// StateStopping covers the graceful teardown after a shutdown signal.
	StateStopping
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateMonitoring:
		return "monitoring"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type stateVar struct {
	v atomic.Int32
}

func (s *stateVar) set(state State) {
	s.v.Store(int32(state))
}

func (s *stateVar) get() State {
	return State(s.v.Load())
}
