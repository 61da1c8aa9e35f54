// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Maintenance job names
const (
	JobCleanupBackups = "mt_cleanup_backups"
	JobJuryReminders  = "mt_jury_reminders"
	JobDailyReport    = "mt_daily_report"
)

// JobNames lists the maintenance jobs the server schedules.
var JobNames = []string{JobCleanupBackups, JobJuryReminders, JobDailyReport}

var ErrUnknownJob = errors.New("unknown job")

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	next     time.Time
}

// Scheduler runs named jobs periodically. A job first runs one interval
// after it is scheduled. Jobs run one at a time.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	wake   chan struct{}
	logger *slog.Logger
}

// New creates an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		jobs:   make(map[string]*job),
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Schedule registers or replaces a job.
func (s *Scheduler) Schedule(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	s.mu.Lock()
	s.jobs[name] = &job{name: name, interval: interval, fn: fn, next: time.Now().Add(interval)}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Clear unschedules the named jobs and returns the names that were
// scheduled. With no names it clears everything.
func (s *Scheduler) Clear(names ...string) []string {
	s.mu.Lock()
	if len(names) == 0 {
		for name := range s.jobs {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	cleared := []string{}
	for _, name := range names {
		if _, ok := s.jobs[name]; ok {
			delete(s.jobs, name)
			cleared = append(cleared, name)
		}
	}
	s.mu.Unlock()
	s.notify()
	return cleared
}

// Scheduled returns the names of the scheduled jobs, sorted.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow runs a scheduled job immediately without moving its next run.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownJob)
	}
	return s.execute(ctx, j.name, j.fn)
}

// Run executes due jobs until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		timer := time.NewTimer(s.untilNext(time.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
			s.runDue(ctx, time.Now())
		}
	}
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) untilNext(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	wait := time.Hour
	for _, j := range s.jobs {
		if d := j.next.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (s *Scheduler) runDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []job
	for _, j := range s.jobs {
		if !j.next.After(now) {
			j.next = now.Add(j.interval)
			due = append(due, *j)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(a, b int) bool { return due[a].name < due[b].name })
	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		_ = s.execute(ctx, j.name, j.fn)
	}
}

func (s *Scheduler) execute(ctx context.Context, name string, fn JobFunc) error {
	start := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Error("scheduled job failed", "job", name, "error", err)
		return err
	}
	s.logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	return nil
}
