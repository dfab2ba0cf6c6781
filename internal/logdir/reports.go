package logdir

import (
	"fmt"
	"os"
	"path/filepath"

	"wifiwarden/internal/model"
)

// reportTimeFormat is second-granularity and lexically sortable.
const reportTimeFormat = "20060102_150405"

// WriteReport persists an inspection report verbatim to a deterministic
// artifact name derived from the target IP and the capture time, e.g.
// nmap_192.168.1.9_20240131_154502.log. Returns the written path.
func WriteReport(dir string, report *model.InspectionReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	name := fmt.Sprintf("nmap_%s_%s.log", report.IP, report.CapturedAt.Format(reportTimeFormat))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(report.Body), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", name, err)
	}
	return path, nil
}
