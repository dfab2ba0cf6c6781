package logdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"wifiwarden/internal/log"
)

// Rotate enforces a bounded-count rolling window over the log directory:
// entries are ordered by modification time and the oldest are deleted
// until at most maxFiles remain. Only entries strictly older than the
// newest maxFiles are candidates, so a file currently being appended is
// never deleted as long as writes bump its mtime. A failed deletion is
// logged and skipped so one stuck file cannot block the rest.
func Rotate(dir string, maxFiles int) error {
	if maxFiles < 1 {
		return fmt.Errorf("max files must be at least 1, got %d", maxFiles)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing log directory: %w", err)
	}

	type candidate struct {
		name  string
		mtime int64
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Deleted between the listing and the stat; not ours to worry about.
			continue
		}
		files = append(files, candidate{name: e.Name(), mtime: info.ModTime().UnixNano()})
	}

	if len(files) <= maxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime < files[j].mtime })

	for _, f := range files[:len(files)-maxFiles] {
		path := filepath.Join(dir, f.name)
		if err := os.Remove(path); err != nil {
			log.Warn("Log rotation could not delete file", "path", path, "error", err)
			continue
		}
		log.Debug("Rotated out old log file", "path", path)
	}
	return nil
}
