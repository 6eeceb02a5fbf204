package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/store"
	"github.com/avillareal/homescout/pkg/logger"
)

const defaultSweepSpec = "@daily"

// Sweeper periodically removes expired place-search and photo rows and
// reclaims the freed space. Geocode rows are never swept.
type Sweeper struct {
	store    *store.Store
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used to compute the expiry cutoff.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(st *store.Store, opts ...Option) (*Sweeper, error) {
	if st == nil {
		return nil, errors.New("maintenance: store is required")
	}

	s := &Sweeper{
		store:    st,
		now:      time.Now,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return s, nil
}

// Start registers the sweep job with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.sweep(context.Background()); err != nil {
			s.log.Warn("scheduled sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes a single sweep immediately. Used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if err := s.sweep(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (s *Sweeper) sweep(ctx context.Context) error {
	runID := uuid.NewString()
	cutoff := s.now().Add(-s.store.TTL())

	report, err := s.store.SweepExpired(ctx, cutoff)
	if err != nil {
		return err
	}

	s.log.Info("sweep run complete",
		zap.String("run_id", runID),
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", report.TotalDeleted()),
		zap.Int64("bytes_reclaimed", report.BytesReclaimed),
	)
	return nil
}
