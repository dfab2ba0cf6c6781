// Package logdir manages the on-disk log directory: the running event
// journal, per-inspection report artifacts, and bounded retention.
package logdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wifiwarden/internal/log"
)

// JournalName is the running log file inside the log directory.
const JournalName = "wifiwarden.log"

// Journal is the append-only running log: one timestamped line per
// event. Safe for concurrent use.
type Journal struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenJournal opens (creating if needed) the journal inside dir.
func OpenJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, JournalName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return &Journal{f: f, path: path}, nil
}

// Event appends one timestamped line to the journal. Write failures are
// logged but never propagated; the journal is an artifact, not a
// dependency of the monitoring loop.
func (j *Journal) Event(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.f.WriteString(line); err != nil {
		log.Warn("Journal write failed", "path", j.path, "error", err)
	}
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}
