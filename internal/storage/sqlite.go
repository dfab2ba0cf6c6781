package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"wifiwarden/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sightings (
	id             TEXT PRIMARY KEY,
	sweep_id       TEXT NOT NULL,
	ip             TEXT NOT NULL,
	mac            TEXT NOT NULL,
	label          TEXT NOT NULL,
	classification TEXT NOT NULL,
	seen_at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sightings_mac ON sightings(mac);
CREATE INDEX IF NOT EXISTS idx_sightings_seen_at ON sightings(seen_at);

CREATE TABLE IF NOT EXISTS inspections (
	id          TEXT PRIMARY KEY,
	ip          TEXT NOT NULL,
	mac         TEXT NOT NULL,
	report_path TEXT NOT NULL,
	snmp_name   TEXT NOT NULL DEFAULT '',
	snmp_descr  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inspections_mac ON inspections(mac);
`

// SQLiteStore implements Store with a SQLite backend.
type SQLiteStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the audit database under
// dataDir.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "sightings.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordSighting appends one classified sighting to the audit trail.
func (s *SQLiteStore) RecordSighting(rec *model.SightingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.SeenAt.IsZero() {
		rec.SeenAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO sightings (id, sweep_id, ip, mac, label, classification, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.SweepID, rec.IP, rec.MAC, rec.Label, rec.Classification, rec.SeenAt)
	if err != nil {
		return fmt.Errorf("inserting sighting: %w", err)
	}
	return nil
}

// RecordInspection appends one completed inspection to the audit trail.
func (s *SQLiteStore) RecordInspection(rec *model.InspectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO inspections (id, ip, mac, report_path, snmp_name, snmp_descr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.IP, rec.MAC, rec.ReportPath, rec.SNMPName, rec.SNMPDescr, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting inspection: %w", err)
	}
	return nil
}

// RecentSightings returns up to limit sightings, newest first.
func (s *SQLiteStore) RecentSightings(limit int) ([]model.SightingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, sweep_id, ip, mac, label, classification, seen_at
		FROM sightings
		ORDER BY seen_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sightings: %w", err)
	}
	defer rows.Close()

	var out []model.SightingRecord
	for rows.Next() {
		var rec model.SightingRecord
		if err := rows.Scan(&rec.ID, &rec.SweepID, &rec.IP, &rec.MAC, &rec.Label, &rec.Classification, &rec.SeenAt); err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InspectionsForMAC returns all inspections of one device, newest first.
func (s *SQLiteStore) InspectionsForMAC(mac string) ([]model.InspectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, ip, mac, report_path, snmp_name, snmp_descr, created_at
		FROM inspections
		WHERE mac = ?
		ORDER BY created_at DESC
	`, model.CanonicalMAC(mac))
	if err != nil {
		return nil, fmt.Errorf("querying inspections: %w", err)
	}
	defer rows.Close()

	var out []model.InspectionRecord
	for rows.Next() {
		var rec model.InspectionRecord
		if err := rows.Scan(&rec.ID, &rec.IP, &rec.MAC, &rec.ReportPath, &rec.SNMPName, &rec.SNMPDescr, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning inspection: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// generateID returns a time-ordered unique ID, falling back to a random
// one if the clock misbehaves.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
