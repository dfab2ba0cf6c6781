// Package registry tracks every device identity observed on the network
// and classifies new sightings against the known-device configuration.
package registry

import (
	"sync"
	"time"

	"wifiwarden/internal/model"
)

// Registry is the in-process device registry. It is append/update-only:
// identities are created on first sighting (or at seed time) and never
// removed for the life of the process. All methods are safe for
// concurrent use; classification and the seen-set update happen under a
// single lock so two concurrent sightings of the same unseen MAC can
// never both classify as new.
type Registry struct {
	mu      sync.Mutex
	known   map[string]string // canonical MAC -> label, fixed after seeding
	devices map[string]*model.DeviceIdentity
	order   []string // insertion order of MACs, for stable snapshots
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		known:   make(map[string]string),
		devices: make(map[string]*model.DeviceIdentity),
	}
}

// Seed initializes the seen-set with the known-device mapping. Known
// devices never trigger a novelty alert. Seeding is idempotent: MACs
// already present are left untouched.
func (r *Registry) Seed(knownDevices map[string]string) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for mac, label := range knownDevices {
		mac = model.CanonicalMAC(mac)
		if mac == "" {
			continue
		}
		r.known[mac] = label
		if _, ok := r.devices[mac]; ok {
			continue
		}
		r.devices[mac] = &model.DeviceIdentity{
			MAC:       mac,
			Label:     label,
			FirstSeen: now,
			LastSeen:  now,
		}
		r.order = append(r.order, mac)
	}
}

// Classify records a sighting and reports how the device relates to what
// the registry has seen before. The identity is upserted as a side
// effect: created on a first sighting, otherwise its IP and last-seen
// time are refreshed. MAC addresses are the only deduplication key.
func (r *Registry) Classify(ip, mac string) model.Classification {
	mac = model.CanonicalMAC(mac)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.devices[mac]; ok {
		if ip != "" {
			d.IP = ip
		}
		d.LastSeen = now
		if _, isKnown := r.known[mac]; isKnown {
			return model.ClassificationKnown
		}
		return model.ClassificationAlreadySeen
	}

	r.devices[mac] = &model.DeviceIdentity{
		MAC:       mac,
		IP:        ip,
		Label:     model.UnknownLabel,
		FirstSeen: now,
		LastSeen:  now,
	}
	r.order = append(r.order, mac)
	return model.ClassificationNew
}

// Label returns the friendly name for a MAC, or the unknown placeholder.
func (r *Registry) Label(mac string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if label, ok := r.known[model.CanonicalMAC(mac)]; ok {
		return label
	}
	return model.UnknownLabel
}

// Snapshot returns a consistent point-in-time copy of every identity in
// first-seen order.
func (r *Registry) Snapshot() []model.DeviceIdentity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.DeviceIdentity, 0, len(r.order))
	for _, mac := range r.order {
		out = append(out, *r.devices[mac])
	}
	return out
}
