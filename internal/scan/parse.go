package scan

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"wifiwarden/internal/model"
)

// Discovery tool output is line-oriented; a record line starts with a
// dotted-quad IP followed by whitespace-separated fields, e.g.
//
//	192.168.1.10   00:11:22:33:44:55   1   60   Intel Corporate
//
// Field 0 is the IP and field 1 the MAC. Anything else (headers, blank
// lines, totals) is skipped silently.
var recordLine = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)

// ParseDiscoveryOutput extracts (ip, mac) sightings from raw discovery
// tool output. The result is not deduplicated; that is the registry's
// job. MAC addresses are uppercased.
func ParseDiscoveryOutput(out []byte) []model.Sighting {
	var sightings []model.Sighting

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !recordLine.MatchString(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sightings = append(sightings, model.Sighting{
			IP:  fields[0],
			MAC: model.CanonicalMAC(fields[1]),
		})
	}
	return sightings
}
