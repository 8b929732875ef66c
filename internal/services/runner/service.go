// Package runner wakes one or more targets and reports the outcome.
package runner

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/fgeck/wakeonlan/internal/services/telegram"
	"github.com/fgeck/wakeonlan/internal/services/wol"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service defines the interface for the wake runner.
type Service interface {
	Run(ctx context.Context, cfg models.Config, targets []models.HostConfig, extra map[string]any) ([]models.WakeResult, error)
}

// Impl implements the runner Service interface.
type Impl struct {
	wolSvc      wol.Service
	telegramSvc telegram.Service
	logger      zerolog.Logger
	hostname    string
	async       bool
}

// Option configures an Impl.
type Option func(*Impl)

// WithAsync dispatches every packet through wol.Service.WakeAsync and waits
// for the completion callbacks instead of calling Wake.
func WithAsync(async bool) Option {
	return func(s *Impl) {
		s.async = async
	}
}

// New creates a new runner service.
func New(logger zerolog.Logger, strictMAC bool, opts ...Option) *Impl {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return NewWithServices(logger, wol.New(logger, wol.WithStrictMAC(strictMAC)), telegram.New(logger), hostname, opts...)
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	wolSvc wol.Service,
	telegramSvc telegram.Service,
	hostname string,
	opts ...Option,
) *Impl {
	s := &Impl{
		wolSvc:      wolSvc,
		telegramSvc: telegramSvc,
		logger:      logger,
		hostname:    hostname,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectHosts looks up the named hosts in cfg, preserving the given order.
// Names match case-insensitively since config keys are stored lowercased.
func SelectHosts(cfg models.Config, names []string) ([]models.HostConfig, error) {
	hosts := make([]models.HostConfig, 0, len(names))
	for _, name := range names {
		host, ok := cfg.Hosts[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown host %q", name)
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// Run sends one magic packet per target concurrently. Results are returned in
// target order. A parameter error on any target is returned as-is; failed
// sends are reported in the results and summarised in the returned error.
func (s *Impl) Run(ctx context.Context, cfg models.Config, targets []models.HostConfig, extra map[string]any) ([]models.WakeResult, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets to wake")
	}

	startTime := time.Now()
	results := make([]models.WakeResult, len(targets))

	s.logger.Info().
		Int("targets", len(targets)).
		Msg("starting wake run")

	var err error
	if s.async {
		err = s.wakeAsync(ctx, targets, extra, results)
	} else {
		err = s.wake(ctx, targets, extra, results)
	}
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Status != models.WakeStatusSent {
			failed++
		}
	}

	s.logger.Info().
		Int("sent", len(results)-failed).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("wake run completed")

	if cfg.Telegram != nil {
		s.sendNotification(ctx, *cfg.Telegram, startTime, results)
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d wake packets failed", failed, len(results))
	}
	return results, nil
}

// request builds the wake request for one target. The completion handler
// records the result with the configured host name attached.
func request(target models.HostConfig, extra map[string]any, onComplete func(models.WakeResult)) models.WakeRequest {
	return models.WakeRequest{
		MACAddress: target.MACAddress,
		Address:    target.Address,
		Port:       target.Port,
		OnComplete: func(r models.WakeResult) {
			r.Host = target.Name
			onComplete(r)
		},
		Extra: maps.Clone(extra),
	}
}

func (s *Impl) wake(ctx context.Context, targets []models.HostConfig, extra map[string]any, results []models.WakeResult) error {
	var g errgroup.Group
	for i, target := range targets {
		req := request(target, extra, func(r models.WakeResult) { results[i] = r })

		g.Go(func() error {
			if err := s.wolSvc.Wake(ctx, req); err != nil {
				return fmt.Errorf("wake %s: %w", describe(target), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// wakeAsync returns once every accepted request has delivered its result.
// The first validation error is returned after the others complete.
func (s *Impl) wakeAsync(ctx context.Context, targets []models.HostConfig, extra map[string]any, results []models.WakeResult) error {
	var (
		wg       sync.WaitGroup
		firstErr error
	)
	for i, target := range targets {
		req := request(target, extra, func(r models.WakeResult) {
			defer wg.Done()
			results[i] = r
		})

		wg.Add(1)
		if err := s.wolSvc.WakeAsync(ctx, req); err != nil {
			wg.Done()
			if firstErr == nil {
				firstErr = fmt.Errorf("wake %s: %w", describe(target), err)
			}
		}
	}
	wg.Wait()
	return firstErr
}

func describe(target models.HostConfig) string {
	if target.Name != "" {
		return target.Name
	}
	return target.MACAddress
}

func (s *Impl) sendNotification(ctx context.Context, cfg models.TelegramConfig, startTime time.Time, results []models.WakeResult) {
	msg := models.TelegramMessage{
		Host:      s.hostname,
		StartTime: startTime,
		Duration:  time.Since(startTime),
		Results:   results,
	}

	result, err := s.telegramSvc.SendNotification(ctx, cfg, msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to send Telegram notification")
		return
	}
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("failed to send Telegram notification")
		return
	}

	s.logger.Info().Msg("Telegram notification sent")
}
