// Package scheduler runs TrackIQ's periodic background jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/lock"
	"trackiq/internal/infrastructure/notify"
	"trackiq/pkg/logger"
)

// LowStockLockKey guards the low-stock scan across worker replicas.
const LowStockLockKey = "trackiq:lowstock"

// LowStockSource lists items at or below their reorder point, grouped by brand.
type LowStockSource interface {
	LowStockByBrand(ctx context.Context, brandID *id.ID) ([]reports.LowStockGroup, error)
}

// Notifier delivers a low-stock alert.
type Notifier interface {
	NotifyLowStock(ctx context.Context, alert notify.LowStockAlert) error
}

// Config configures the scheduler.
type Config struct {
	// LowStockSpec is a standard 5-field cron expression
	LowStockSpec string

	// JobTimeout bounds one run; it is also the lock TTL
	JobTimeout time.Duration
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	source   LowStockSource
	notifier Notifier
	locker   lock.Locker
	log      *logger.Logger
	now      func() time.Time
}

// New creates a scheduler. A nil locker means this process is the only runner.
func New(cfg Config, source LowStockSource, notifier Notifier, locker lock.Locker, log *logger.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("scheduler")

	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:      cfg,
		source:   source,
		notifier: notifier,
		locker:   locker,
		log:      log,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := cron.ParseStandard(s.cfg.LowStockSpec); err != nil {
		return fmt.Errorf("invalid low-stock schedule %q: %w", s.cfg.LowStockSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.LowStockSpec, s.runLowStock); err != nil {
		return fmt.Errorf("schedule low-stock scan: %w", err)
	}

	s.log.Infow("starting scheduler", "low_stock", s.cfg.LowStockSpec)
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop(ctx context.Context) {
	s.log.Info("stopping scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) runLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	var sent int
	ran, err := s.locker.Run(ctx, LowStockLockKey, s.cfg.JobTimeout, func(ctx context.Context) error {
		var err error
		sent, err = s.ScanLowStock(ctx)
		return err
	})
	switch {
	case err != nil:
		s.log.Errorw("low-stock scan failed", "error", err, "alerts_sent", sent)
	case !ran:
		s.log.Debug("low-stock scan skipped: another replica holds the lock")
	default:
		s.log.Infow("low-stock scan finished", "alerts_sent", sent)
	}
}

// ScanLowStock sends one alert per brand that has low items and returns how
// many were delivered. A failed delivery does not stop the other brands.
func (s *Scheduler) ScanLowStock(ctx context.Context) (int, error) {
	groups, err := s.source.LowStockByBrand(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list low stock: %w", err)
	}

	var (
		sent int
		errs []error
	)
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		alert := notify.LowStockAlert{
			BrandID:     g.BrandID,
			Brand:       g.BrandCode,
			Items:       g.Items,
			GeneratedAt: s.now().UTC(),
		}
		if s.notifier == nil {
			s.log.Warnw("low stock", "brand", g.BrandCode, "items", len(g.Items))
			continue
		}
		if err := s.notifier.NotifyLowStock(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("brand %s: %w", g.BrandCode, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
