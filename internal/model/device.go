package model

import (
	"strings"
	"time"
)

// Classification is the result of checking a sighting against the registry.
type Classification int

const (
	// ClassificationKnown means the MAC was pre-registered with a label.
	ClassificationKnown Classification = iota
	// ClassificationAlreadySeen means the MAC was sighted in a prior sweep
	// but is not pre-registered.
	ClassificationAlreadySeen
	// ClassificationNew means this is the first-ever sighting of the MAC.
	ClassificationNew
)

func (c Classification) String() string {
	switch c {
	case ClassificationKnown:
		return "known"
	case ClassificationAlreadySeen:
		return "already_seen"
	case ClassificationNew:
		return "new"
	default:
		return "unknown"
	}
}

// UnknownLabel is assigned to devices that are not in the known-device map.
const UnknownLabel = "Unknown"

// DeviceIdentity is a device tracked by the registry. The MAC address is
// the natural key; the IP is the most recently observed address and may
// change between sweeps (DHCP reassignment is expected).
type DeviceIdentity struct {
	MAC       string    `json:"mac"`
	IP        string    `json:"ip,omitempty"`
	Label     string    `json:"label"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Sighting is a single (ip, mac) pair reported by one discovery sweep.
type Sighting struct {
	IP  string `json:"ip"`
	MAC string `json:"mac"`
}

// InspectionReport is the raw output of a deep inspection of one host.
// The body is persisted verbatim and never parsed further.
type InspectionReport struct {
	IP         string    `json:"ip"`
	CapturedAt time.Time `json:"captured_at"`
	Body       string    `json:"-"`
}

// NetworkContext describes the network being monitored. It is resolved
// once at startup and read-only afterwards.
type NetworkContext struct {
	Interface string `json:"interface"`
	Subnet    string `json:"subnet"` // CIDR form
	BSSID     string `json:"bssid,omitempty"`
	Channel   string `json:"channel,omitempty"`
	SSID      string `json:"ssid,omitempty"`
}

// SightingRecord is the audit-trail row written for every classified
// sighting.
type SightingRecord struct {
	ID             string    `json:"id"`
	SweepID        string    `json:"sweep_id"`
	IP             string    `json:"ip"`
	MAC            string    `json:"mac"`
	Label          string    `json:"label"`
	Classification string    `json:"classification"`
	SeenAt         time.Time `json:"seen_at"`
}

// InspectionRecord is the audit-trail row written when a new device has
// been inspected.
type InspectionRecord struct {
	ID         string    `json:"id"`
	IP         string    `json:"ip"`
	MAC        string    `json:"mac"`
	ReportPath string    `json:"report_path"`
	SNMPName   string    `json:"snmp_name,omitempty"`
	SNMPDescr  string    `json:"snmp_descr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CanonicalMAC normalizes a MAC address to the registry's canonical
// uppercase colon-hex form.
func CanonicalMAC(mac string) string {
	return strings.ToUpper(strings.TrimSpace(mac))
}
