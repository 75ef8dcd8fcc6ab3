// Package service drives the fusion pipeline and serves its latest result
// to the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/okian/recessionwatch/internal/adapters/repository"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/recession"
	"github.com/okian/recessionwatch/pkg/logger"
	"github.com/okian/recessionwatch/pkg/metrics"
)

// Service holds the most recent labeled table and refreshes it on demand or
// on a cron schedule.
type Service struct {
	mu        sync.RWMutex
	refreshMu sync.Mutex

	runner   Runner
	calendar *recession.Calendar
	store    repository.Store

	// Scheduling
	schedule  string
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc

	// State
	current     repository.Snapshot
	lastError   error
	lastAttempt time.Time
	refreshes   int
	failures    int
	started     bool

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets where refreshed tables are persisted.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCalendar sets the recession calendar answered by Recessions and Labels.
func WithCalendar(c *recession.Calendar) Option {
	return func(s *Service) {
		if c != nil {
			s.calendar = c
		}
	}
}

// WithSchedule sets a cron expression for background refreshes. An empty
// expression disables scheduling.
func WithSchedule(expr string) Option {
	return func(s *Service) {
		s.schedule = expr
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow sets the clock used for snapshot timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service around runner.
func New(runner Runner, opts ...Option) *Service {
	s := &Service{
		runner: runner,
		store:  repository.NewMemoryStore(),
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.calendar == nil {
		if p, ok := runner.(*Pipeline); ok {
			s.calendar = p.Calendar()
		} else {
			s.calendar = recession.Default(recession.WithClock(s.now))
		}
	}
	return s
}

// Start loads the last persisted table and starts the refresh scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	snap, err := s.store.Latest(ctx)
	switch {
	case err == nil:
		s.current = snap
		s.logger.Info(ctx, "loaded persisted table",
			logger.String("refresh_id", snap.ID.String()),
			logger.Int("rows", snap.Table.Len()),
		)
	case errors.Is(err, repository.ErrNotFound):
	default:
		s.logger.Warn(ctx, "could not load persisted table", logger.Error(err))
	}

	if s.schedule != "" {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		scheduler := gocron.NewScheduler(time.UTC)
		scheduler.SingletonModeAll()
		_, err := scheduler.Cron(s.schedule).Do(func() {
			s.logger.Info(runCtx, "scheduled refresh")
			if _, err := s.Refresh(runCtx); err != nil {
				s.logger.Error(runCtx, "scheduled refresh failed", logger.Error(err))
			}
		})
		if err != nil {
			cancel()
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, s.schedule, err)
		}
		scheduler.StartAsync()
		s.scheduler = scheduler
		s.cancel = cancel
	}

	s.started = true
	s.logger.Info(ctx, "recession service started", logger.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and closes the store when it supports closing.
// A scheduled refresh in flight is cancelled.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	scheduler, cancel := s.scheduler, s.cancel
	s.scheduler, s.cancel = nil, nil
	s.started = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.logger.Info(context.Background(), "recession service stopped")
}

// Refresh runs the pipeline once. Refreshes are serialized. On failure the
// previous table stays in place and the error is returned.
func (s *Service) Refresh(ctx context.Context) (repository.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	id := uuid.New()
	log := s.logger.With(logger.String("refresh_id", id.String()))
	started := time.Now()
	log.Info(ctx, "refresh started")

	table, err := s.runner.Run(ctx)
	elapsed := float64(time.Since(started).Milliseconds())
	if err != nil {
		metrics.RecordRefresh(metrics.StatusFailure, elapsed)
		s.mu.Lock()
		s.lastError = err
		s.lastAttempt = s.now()
		s.failures++
		s.mu.Unlock()
		log.Error(ctx, "refresh failed", logger.Error(err))
		return repository.Snapshot{}, err
	}

	snap := repository.Snapshot{ID: id, CreatedAt: s.now().UTC(), Table: table}
	if err := s.store.Save(ctx, snap); err != nil {
		metrics.RecordErrorByComponent("service", "store_save")
		log.Error(ctx, "could not persist table", logger.Error(err))
	}

	s.mu.Lock()
	s.current = snap
	s.lastError = nil
	s.lastAttempt = snap.CreatedAt
	s.refreshes++
	s.mu.Unlock()

	metrics.RecordRefresh(metrics.StatusSuccess, elapsed)
	metrics.UpdateLastRefresh(snap.CreatedAt.Unix())
	log.Info(ctx, "refresh finished",
		logger.Int("rows", table.Len()),
		logger.Duration("took", time.Since(started)),
	)
	return snap, nil
}

// Latest returns the most recent successful snapshot.
func (s *Service) Latest() (repository.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Table == nil {
		return repository.Snapshot{}, ErrNoTable
	}
	return s.current, nil
}

// Recessions returns the recession intervals used for labeling.
func (s *Service) Recessions() []recession.Interval {
	return s.calendar.Intervals()
}

// Labels evaluates the four labels for the day d.
func (s *Service) Labels(d time.Time) labels.Set {
	return labels.At(s.calendar, d)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"schedule":   s.schedule,
		"refreshes":  s.refreshes,
		"failures":   s.failures,
		"goroutines": runtime.NumGoroutine(),
	}
	if !s.lastAttempt.IsZero() {
		stats["lastAttempt"] = s.lastAttempt.UTC().Format(time.RFC3339)
	}
	if s.lastError != nil {
		stats["lastError"] = s.lastError.Error()
	}
	if t := s.current.Table; t != nil {
		first, _ := t.First()
		last, _ := t.Last()
		stats["refreshId"] = s.current.ID.String()
		stats["refreshedAt"] = s.current.CreatedAt.UTC().Format(time.RFC3339)
		stats["rows"] = t.Len()
		stats["columns"] = len(t.Columns())
		stats["firstDate"] = first.String()
		stats["lastDate"] = last.String()
		stats["unknownLabels"] = labels.Counts(t)
	}

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}
