// Package wireless resolves the local Wi-Fi environment and manages the
// interface mode and the background capture process.
package wireless

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"wifiwarden/internal/log"
	"wifiwarden/internal/model"
	"wifiwarden/internal/scan"
)

var (
	reInterface = regexp.MustCompile(`Interface\s+(\S+)`)
	reConnected = regexp.MustCompile(`Connected to\s+([\da-fA-F:]+)\s+\(on\s+freq\s+(\d+)\)`)
	reSSID      = regexp.MustCompile(`SSID:\s+(.+)`)
	reInetCIDR  = regexp.MustCompile(`inet\s+(\d+\.\d+\.\d+\.\d+/\d+)`)
)

// ErrNoWirelessInterface is returned when no associated Wi-Fi interface
// can be found on the host.
var ErrNoWirelessInterface = errors.New("no connected wireless interface found")

// DetectInterface finds a wireless interface that is currently
// associated with a network, by listing interfaces with `iw dev` and
// checking each one's link status.
func DetectInterface(ctx context.Context, runner scan.Runner) (string, error) {
	out, err := runner.CombinedOutput(ctx, "iw", "dev")
	if err != nil {
		return "", fmt.Errorf("listing wireless interfaces: %w", err)
	}

	for _, iface := range parseInterfaces(out) {
		link, err := runner.CombinedOutput(ctx, "iw", iface, "link")
		if err != nil {
			log.Debug("Link query failed", "interface", iface, "error", err)
			continue
		}
		if strings.Contains(string(link), "Connected to") {
			return iface, nil
		}
	}
	return "", ErrNoWirelessInterface
}

// ResolveContext gathers the BSSID, channel, SSID and local subnet for
// the given interface. BSSID/channel/SSID are best-effort; the subnet is
// required and its absence is an error.
func ResolveContext(ctx context.Context, runner scan.Runner, iface string) (*model.NetworkContext, error) {
	nc := &model.NetworkContext{Interface: iface}

	if out, err := runner.CombinedOutput(ctx, "iw", iface, "link"); err == nil {
		bssid, channel, ssid := parseLink(out)
		nc.BSSID = bssid
		nc.Channel = channel
		nc.SSID = ssid
	} else {
		log.Warn("Could not query link info", "interface", iface, "error", err)
	}

	out, err := runner.CombinedOutput(ctx, "ip", "-f", "inet", "address", "show", "dev", iface)
	if err != nil {
		return nil, fmt.Errorf("querying address of %s: %w", iface, err)
	}
	subnet, err := parseSubnet(out)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", iface, err)
	}
	nc.Subnet = subnet

	return nc, nil
}

func parseInterfaces(out []byte) []string {
	var ifaces []string
	for _, m := range reInterface.FindAllStringSubmatch(string(out), -1) {
		ifaces = append(ifaces, m[1])
	}
	return ifaces
}

// parseLink extracts BSSID, channel and SSID from `iw <if> link` output.
// 2.4 GHz frequencies map to channel numbers; anything else keeps the raw
// frequency string, since there is no single authoritative mapping for
// the 5 GHz band here.
func parseLink(out []byte) (bssid, channel, ssid string) {
	s := string(out)

	if m := reConnected.FindStringSubmatch(s); m != nil {
		bssid = strings.ToUpper(m[1])
		channel = freqToChannel(m[2])
	}
	if m := reSSID.FindStringSubmatch(s); m != nil {
		ssid = strings.TrimSpace(m[1])
	}
	return bssid, channel, ssid
}

func freqToChannel(freq string) string {
	f, err := strconv.Atoi(freq)
	if err != nil {
		return freq
	}
	if f >= 2412 && f <= 2472 {
		return strconv.Itoa(1 + (f-2412)/5)
	}
	return freq
}

// parseSubnet derives the network address in CIDR form from
// `ip -f inet address show` output, e.g. 192.168.1.101/24 becomes
// 192.168.1.0/24.
func parseSubnet(out []byte) (string, error) {
	m := reInetCIDR.FindStringSubmatch(string(out))
	if m == nil {
		return "", errors.New("no inet address assigned")
	}

	_, ipNet, err := net.ParseCIDR(m[1])
	if err != nil {
		return "", fmt.Errorf("parsing address %q: %w", m[1], err)
	}
	return ipNet.String(), nil
}
