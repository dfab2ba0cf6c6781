package scan

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

const (
	oidSysDescr = ".1.3.6.1.2.1.1.1.0"
	oidSysName  = ".1.3.6.1.2.1.1.5.0"
)

// SNMPProbe asks a host for its SNMP system identity. Most consumer
// devices refuse SNMP entirely, so callers treat every failure as a
// soft miss.
type SNMPProbe struct {
	Community string
	Port      uint16
	Timeout   time.Duration
}

// NewSNMPProbe returns a probe with the conventional v2c defaults.
func NewSNMPProbe(community string, port uint16, timeout time.Duration) *SNMPProbe {
	if community == "" {
		community = "public"
	}
	if port == 0 {
		port = 161
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SNMPProbe{Community: community, Port: port, Timeout: timeout}
}

// Identify queries sysName and sysDescr from the target host.
func (p *SNMPProbe) Identify(ip string) (name, descr string, err error) {
	client := &gosnmp.GoSNMP{
		Target:    ip,
		Port:      p.Port,
		Community: p.Community,
		Version:   gosnmp.Version2c,
		Timeout:   p.Timeout,
		Retries:   1,
	}

	if err := client.Connect(); err != nil {
		return "", "", fmt.Errorf("snmp connect %s: %w", ip, err)
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysDescr, oidSysName})
	if err != nil {
		return "", "", fmt.Errorf("snmp get %s: %w", ip, err)
	}
	if result.Error != gosnmp.NoError {
		return "", "", fmt.Errorf("snmp get %s: response error %v", ip, result.Error)
	}

	for _, v := range result.Variables {
		if v.Type != gosnmp.OctetString {
			continue
		}
		raw, ok := v.Value.([]byte)
		if !ok {
			continue
		}
		value := strings.TrimSpace(string(raw))
		switch normalizeOID(v.Name) {
		case oidSysDescr:
			descr = value
		case oidSysName:
			name = value
		}
	}

	return name, descr, nil
}

func normalizeOID(oid string) string {
	if !strings.HasPrefix(oid, ".") {
		return "." + oid
	}
	return oid
}
