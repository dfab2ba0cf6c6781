package logdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wifiwarden/internal/model"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	captured := time.Date(2024, 1, 31, 15, 45, 2, 0, time.UTC)

	report := &model.InspectionReport{
		IP:         "192.168.1.9",
		CapturedAt: captured,
		Body:       "PORT   STATE SERVICE\n22/tcp open  ssh\n",
	}

	path, err := WriteReport(dir, report)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	if want := "nmap_192.168.1.9_20240131_154502.log"; filepath.Base(path) != want {
		t.Errorf("artifact name = %s, want %s", filepath.Base(path), want)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(body) != report.Body {
		t.Errorf("artifact body not verbatim:\n%q", body)
	}
}

func TestWriteReportNamesSortAndDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 31, 15, 45, 2, 0, time.UTC)

	var names []string
	for i := 0; i < 3; i++ {
		report := &model.InspectionReport{
			IP:         "10.0.0.7",
			CapturedAt: base.Add(time.Duration(i) * time.Second),
			Body:       "x",
		}
		path, err := WriteReport(dir, report)
		if err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		names = append(names, filepath.Base(path))
	}

	for i := 1; i < len(names); i++ {
		if !(names[i-1] < names[i]) {
			t.Errorf("names not sortable: %s then %s", names[i-1], names[i])
		}
	}
}

func TestJournalAppendsTimestampedLines(t *testing.T) {
	dir := t.TempDir()

	j, err := OpenJournal(dir)
	if err != nil {
		t.Fatalf("OpenJournal() error = %v", err)
	}
	j.Event("monitoring %s", "192.168.1.0/24")
	j.Event("new device detected: mac=%s", "FF:FF:FF:FF:FF:FF")
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	body, err := os.ReadFile(filepath.Join(dir, JournalName))
	if err != nil {
		t.Fatalf("reading journal: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("journal lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.Contains(lines[0], "monitoring 192.168.1.0/24") {
		t.Errorf("unexpected journal line: %q", lines[0])
	}

	// Reopening appends rather than truncates.
	j2, err := OpenJournal(dir)
	if err != nil {
		t.Fatalf("reopening journal: %v", err)
	}
	j2.Event("resumed")
	j2.Close()

	body, _ = os.ReadFile(filepath.Join(dir, JournalName))
	if got := strings.Count(string(body), "\n"); got != 3 {
		t.Errorf("journal lines after reopen = %d, want 3", got)
	}
}
