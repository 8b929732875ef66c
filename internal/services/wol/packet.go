package wol

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/mdlayher/wol"
)

const (
	// DefaultPort is the discard port most NICs listen on for magic packets.
	DefaultPort = 9
	// DefaultAddress is the limited broadcast address.
	DefaultAddress = "255.255.255.255"
	// MagicPacketSize is 6 sync bytes followed by 16 repetitions of the MAC.
	MagicPacketSize = 6 + 16*6

	macHexLen = 12
)

var defaultAddr = netip.MustParseAddr(DefaultAddress)

// NormalizeMAC removes every colon separator from mac.
func NormalizeMAC(mac string) string {
	return strings.ReplaceAll(mac, ":", "")
}

// ValidMAC reports whether normalized is exactly 12 hex digits.
func ValidMAC(normalized string) bool {
	if len(normalized) != macHexLen {
		return false
	}
	for i := 0; i < len(normalized); i++ {
		if _, ok := nibble(normalized[i]); !ok {
			return false
		}
	}
	return true
}

// MagicPacket builds the 102-byte payload for a colon-stripped MAC address.
// Decoding is lenient: characters past the twelfth are ignored and missing or
// non-hex digits become zero nibbles, so a malformed address yields a packet
// for the wrong target instead of an error.
func MagicPacket(normalized string) ([]byte, error) {
	mp := wol.MagicPacket{Target: decodeMAC(normalized)}
	b, err := mp.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal magic packet: %w", err)
	}
	return b, nil
}

func decodeMAC(normalized string) net.HardwareAddr {
	mac := make(net.HardwareAddr, 6)
	for i := 0; i < macHexLen && i < len(normalized); i++ {
		n, _ := nibble(normalized[i])
		if i%2 == 0 {
			mac[i/2] |= n << 4
		} else {
			mac[i/2] |= n
		}
	}
	return mac
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ResolvePort returns the decimal port in s, or DefaultPort when s is empty,
// contains anything but ASCII digits, or is outside the UDP port range.
func ResolvePort(s string) int {
	if s == "" {
		return DefaultPort
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return DefaultPort
		}
	}
	port, err := strconv.Atoi(s)
	if err != nil || port > 65535 {
		return DefaultPort
	}
	return port
}

// ResolveAddress returns the IP literal in s, or DefaultAddress when s does
// not parse as an IPv4 or IPv6 address.
func ResolveAddress(s string) netip.Addr {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return defaultAddr
	}
	return addr
}
