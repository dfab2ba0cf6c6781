// Package storage persists the sighting audit trail. The registry itself
// is in-memory and reseeded on every start; this store only records what
// happened so past sweeps can be reviewed after the fact.
package storage

import (
	"errors"

	"wifiwarden/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store records classified sightings and completed inspections.
type Store interface {
	RecordSighting(s *model.SightingRecord) error
	RecordInspection(i *model.InspectionRecord) error

	// RecentSightings returns up to limit sightings, newest first.
	RecentSightings(limit int) ([]model.SightingRecord, error)

	// InspectionsForMAC returns all inspections of one device, newest first.
	InspectionsForMAC(mac string) ([]model.InspectionRecord, error)

	Close() error
}
