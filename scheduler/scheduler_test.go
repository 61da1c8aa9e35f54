// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/logging"
)

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := New(logging.NewNop())

	var runs atomic.Int32
	if err := s.Schedule(JobDailyReport, 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	<-done

	if runs.Load() < 2 {
		t.Errorf("expected job to run repeatedly, ran %d times", runs.Load())
	}
}

func TestScheduler_ClearReturnsScheduledNames(t *testing.T) {
	s := New(logging.NewNop())
	noop := func(ctx context.Context) error { return nil }

	for _, name := range JobNames {
		if err := s.Schedule(name, time.Hour, noop); err != nil {
			t.Fatal(err)
		}
	}

	cleared := s.Clear(JobCleanupBackups, "mt_not_scheduled")
	if len(cleared) != 1 || cleared[0] != JobCleanupBackups {
		t.Errorf("Clear() = %v, want [%s]", cleared, JobCleanupBackups)
	}

	rest := s.Clear()
	if len(rest) != 2 {
		t.Errorf("Clear() all = %v, want 2 jobs", rest)
	}
	if len(s.Scheduled()) != 0 {
		t.Errorf("Scheduled() = %v after clearing", s.Scheduled())
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(logging.NewNop())
	boom := errors.New("boom")

	var ran bool
	_ = s.Schedule(JobJuryReminders, time.Hour, func(ctx context.Context) error {
		ran = true
		return boom
	})

	if err := s.RunNow(context.Background(), JobJuryReminders); !errors.Is(err, boom) {
		t.Errorf("RunNow() error = %v, want %v", err, boom)
	}
	if !ran {
		t.Error("job did not run")
	}

	if err := s.RunNow(context.Background(), "mt_missing"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("RunNow() error = %v, want ErrUnknownJob", err)
	}
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New(logging.NewNop())
	if err := s.Schedule("mt_x", 0, func(ctx context.Context) error { return nil }); err == nil {
		t.Error("expected error for zero interval")
	}
}
