// Package scheduler drives the recurring refresh jobs. Each tick is a
// fresh attempt: a job that fails or loses the lock race simply waits
// for its next tick, never a terminal state.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/trogers1052/portfolio-advisor/internal/lock"
)

// Job is one schedulable unit of work
type Job struct {
	Name       string
	Spec       string // cron spec with seconds field
	WindowOnly bool   // run only while the trading window is open
	Run        func(ctx context.Context) error
}

// LockConfig tunes distributed lock acquisition per job run
type LockConfig struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

// Scheduler wraps a cron driver with trading-window gating and
// distributed mutual exclusion per job name.
type Scheduler struct {
	cron    *cron.Cron
	locker  lock.Locker
	window  *TradingWindow
	lockCfg LockConfig
	log     zerolog.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

// New creates a scheduler running in the trading window's timezone
func New(locker lock.Locker, window *TradingWindow, lockCfg LockConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(window.Location)),
		locker:  locker,
		window:  window,
		lockCfg: lockCfg,
		log:     log.With().Str("component", "scheduler").Logger(),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Register adds a job to the cron driver, wrapped in window gating and
// lock acquisition.
func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		s.RunJob(context.Background(), job)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("job", job.Name).Str("schedule", job.Spec).
		Bool("window_only", job.WindowOnly).Msg("job registered")
	return nil
}

// RunJob executes one tick of a job: window check, lock acquisition with
// a bounded retry budget, the body, then release. Lock contention skips
// the tick silently; the next tick is a fresh attempt.
func (s *Scheduler) RunJob(ctx context.Context, job Job) {
	if job.WindowOnly && !s.window.Open(s.now()) {
		s.log.Debug().Str("job", job.Name).Msg("trading window closed, skipping tick")
		return
	}

	token, err := s.acquireWithRetry(ctx, job.Name)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.log.Debug().Str("job", job.Name).Msg("lock busy, skipping tick")
		} else {
			s.log.Error().Err(err).Str("job", job.Name).Msg("lock acquisition failed")
		}
		return
	}
	defer func() {
		if err := s.locker.Release(ctx, job.Name, token); err != nil {
			s.log.Warn().Err(err).Str("job", job.Name).Msg("lock release failed, TTL will expire it")
		}
	}()

	start := s.now()
	if err := job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
		return
	}
	s.log.Info().Str("job", job.Name).Dur("took", s.now().Sub(start)).Msg("job completed")
}

func (s *Scheduler) acquireWithRetry(ctx context.Context, name string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.lockCfg.Retries; attempt++ {
		if attempt > 0 {
			s.sleep(s.lockCfg.RetryDelay)
		}
		token, err := s.locker.Acquire(ctx, name, s.lockCfg.TTL)
		if err == nil {
			return token, nil
		}
		lastErr = err
		if !errors.Is(err, lock.ErrNotAcquired) {
			return "", err
		}
	}
	return "", lastErr
}

// Start begins issuing ticks
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts the cron driver and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// Status describes the scheduler for the status endpoint
type Status struct {
	WindowOpen bool      `json:"window_open"`
	NextRun    time.Time `json:"next_run,omitempty"`
}

// Status reports whether the trading window is open and the next tick
func (s *Scheduler) Status() Status {
	st := Status{WindowOpen: s.window.Open(s.now())}
	for _, entry := range s.cron.Entries() {
		if st.NextRun.IsZero() || (!entry.Next.IsZero() && entry.Next.Before(st.NextRun)) {
			st.NextRun = entry.Next
		}
	}
	return st
}
