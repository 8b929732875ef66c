package wol

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// Transport sends a single datagram. Implementations own the socket for the
// duration of one call only.
type Transport interface {
	Send(ctx context.Context, dst netip.AddrPort, payload []byte) error
}

// UDPTransport opens a fresh broadcast-enabled UDP socket per send.
type UDPTransport struct {
	lc net.ListenConfig
}

// NewUDPTransport creates a transport that sets SO_BROADCAST on every socket.
func NewUDPTransport() *UDPTransport {
	return &UDPTransport{
		lc: net.ListenConfig{Control: enableBroadcast},
	}
}

// Send writes payload to dst. Socket setup failures are returned as
// *TransportOpenError.
func (t *UDPTransport) Send(ctx context.Context, dst netip.AddrPort, payload []byte) error {
	network, local := "udp4", "0.0.0.0:0"
	if !dst.Addr().Unmap().Is4() {
		network, local = "udp6", "[::]:0"
	}

	conn, err := t.lc.ListenPacket(ctx, network, local)
	if err != nil {
		return &TransportOpenError{Err: err}
	}
	defer func() { _ = conn.Close() }()

	to := net.UDPAddrFromAddrPort(netip.AddrPortFrom(dst.Addr().Unmap(), dst.Port()))
	n, err := conn.WriteTo(payload, to)
	if err != nil {
		return fmt.Errorf("failed to send magic packet to %s: %w", dst, err)
	}
	if n != len(payload) {
		return fmt.Errorf("short write to %s: %d of %d bytes", dst, n, len(payload))
	}

	return nil
}
