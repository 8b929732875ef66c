// Package wol provides Wake-on-LAN operations.
package wol

import (
	"context"
	"maps"
	"net/netip"

	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for Wake-on-LAN operations.
type Service interface {
	Wake(ctx context.Context, req models.WakeRequest) error
	WakeAsync(ctx context.Context, req models.WakeRequest) error
}

// Impl implements the WOL Service interface.
type Impl struct {
	transport Transport
	logger    zerolog.Logger
	strictMAC bool
}

// Option configures an Impl.
type Option func(*Impl)

// WithStrictMAC rejects MAC addresses that are not 12 hex digits instead of
// sending a packet for a mangled target.
func WithStrictMAC(strict bool) Option {
	return func(s *Impl) {
		s.strictMAC = strict
	}
}

// New creates a new WOL service.
func New(logger zerolog.Logger, opts ...Option) *Impl {
	return NewWithTransport(logger, NewUDPTransport(), opts...)
}

// NewWithTransport creates a new WOL service with a custom transport (for testing).
func NewWithTransport(logger zerolog.Logger, transport Transport, opts ...Option) *Impl {
	s := &Impl{
		transport: transport,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pending is a validated request whose packet has not been sent yet.
type pending struct {
	dst        netip.AddrPort
	mac        string
	packet     []byte
	onComplete func(models.WakeResult)
	extra      map[string]any
}

// Wake sends one magic packet and invokes req.OnComplete before returning.
// Only parameter validation errors are returned; transport failures reach
// the callback with a failed status.
func (s *Impl) Wake(ctx context.Context, req models.WakeRequest) error {
	p, err := s.prepare(req)
	if err != nil {
		return err
	}
	s.dispatch(ctx, p)
	return nil
}

// WakeAsync validates req synchronously and sends the packet on a separate
// goroutine.
func (s *Impl) WakeAsync(ctx context.Context, req models.WakeRequest) error {
	p, err := s.prepare(req)
	if err != nil {
		return err
	}
	go s.dispatch(ctx, p)
	return nil
}

func (s *Impl) prepare(req models.WakeRequest) (*pending, error) {
	if req.MACAddress == "" {
		return nil, &MissingParameterError{Param: "macAddress"}
	}
	if req.OnComplete == nil {
		return nil, &MissingParameterError{Param: "onComplete"}
	}

	mac := NormalizeMAC(req.MACAddress)
	if !ValidMAC(mac) {
		if s.strictMAC {
			return nil, &InvalidMACError{MAC: req.MACAddress}
		}
		s.logger.Warn().Str("mac", req.MACAddress).Msg("malformed MAC address, packet will not match any NIC")
	}

	packet, err := MagicPacket(mac)
	if err != nil {
		return nil, err
	}

	dst := netip.AddrPortFrom(ResolveAddress(req.Address), uint16(ResolvePort(req.Port))) //nolint:gosec // range checked by ResolvePort

	return &pending{
		dst:        dst,
		mac:        mac,
		packet:     packet,
		onComplete: req.OnComplete,
		extra:      maps.Clone(req.Extra),
	}, nil
}

func (s *Impl) dispatch(ctx context.Context, p *pending) {
	result := models.WakeResult{
		MACAddress: p.mac,
		Address:    p.dst.Addr().String(),
		Port:       int(p.dst.Port()),
		Status:     models.WakeStatusSent,
		Extra:      p.extra,
	}

	s.logger.Info().
		Str("mac", p.mac).
		Str("address", result.Address).
		Int("port", result.Port).
		Msg("sending WOL packet")

	if err := s.transport.Send(ctx, p.dst, p.packet); err != nil {
		result.Status = models.WakeStatusFailed
		result.Err = err
		s.logger.Error().Err(err).Str("mac", p.mac).Msg("failed to send WOL packet")
	} else {
		s.logger.Debug().Int("bytes", len(p.packet)).Msg("WOL packet sent")
	}

	p.onComplete(result)
}
