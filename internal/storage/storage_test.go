package storage

import (
	"testing"
	"time"

	"wifiwarden/internal/model"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListSightings(t *testing.T) {
	store := setupTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, mac := range []string{"AA:AA:AA:AA:AA:01", "AA:AA:AA:AA:AA:02", "AA:AA:AA:AA:AA:03"} {
		rec := &model.SightingRecord{
			SweepID:        "sweep-1",
			IP:             "192.168.1.5",
			MAC:            mac,
			Label:          model.UnknownLabel,
			Classification: "new",
			SeenAt:         base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordSighting(rec); err != nil {
			t.Fatalf("RecordSighting() error = %v", err)
		}
		if rec.ID == "" {
			t.Fatal("RecordSighting() did not assign an ID")
		}
	}

	got, err := store.RecentSightings(2)
	if err != nil {
		t.Fatalf("RecentSightings() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentSightings(2) returned %d records", len(got))
	}
	// Newest first.
	if got[0].MAC != "AA:AA:AA:AA:AA:03" || got[1].MAC != "AA:AA:AA:AA:AA:02" {
		t.Errorf("unexpected order: %s, %s", got[0].MAC, got[1].MAC)
	}
}

func TestRecentSightingsEmpty(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.RecentSightings(10)
	if err != nil {
		t.Fatalf("RecentSightings() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("RecentSightings() on empty store = %v", got)
	}
}

func TestRecordAndQueryInspections(t *testing.T) {
	store := setupTestStore(t)

	rec := &model.InspectionRecord{
		IP:         "192.168.1.9",
		MAC:        "FF:FF:FF:FF:FF:FF",
		ReportPath: "/var/log/wifiwarden/nmap_192.168.1.9_20240131_154502.log",
		SNMPName:   "printer-01",
	}
	if err := store.RecordInspection(rec); err != nil {
		t.Fatalf("RecordInspection() error = %v", err)
	}

	// Lookup is MAC-canonical.
	got, err := store.InspectionsForMAC("ff:ff:ff:ff:ff:ff")
	if err != nil {
		t.Fatalf("InspectionsForMAC() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("InspectionsForMAC() returned %d records", len(got))
	}
	if got[0].ReportPath != rec.ReportPath || got[0].SNMPName != "printer-01" {
		t.Errorf("round trip mismatch: %+v", got[0])
	}

	none, err := store.InspectionsForMAC("00:00:00:00:00:00")
	if err != nil {
		t.Fatalf("InspectionsForMAC(none) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no inspections, got %v", none)
	}
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	err = store.RecordSighting(&model.SightingRecord{
		SweepID: "sweep-1", IP: "10.0.0.1", MAC: "AA:AA:AA:AA:AA:01",
		Label: model.UnknownLabel, Classification: "new",
	})
	if err != nil {
		t.Fatalf("RecordSighting() error = %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.RecentSightings(10)
	if err != nil {
		t.Fatalf("RecentSightings() after reopen: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("records after reopen = %d, want 1", len(got))
	}
}
