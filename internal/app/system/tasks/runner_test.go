package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/tasks"
	"go.uber.org/zap"
)

// counting returns a job that counts its runs.
func counting(name string, interval time.Duration, n *atomic.Int32) tasks.Job {
	return tasks.Job{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context) error {
			n.Add(1)
			return nil
		},
	}
}

func stop(t *testing.T, r *tasks.Runner, within time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_RunsEveryJobOnStart(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var evictions, reloads atomic.Int32
	runner.Register(counting("viewer-cleanup", 50*time.Millisecond, &evictions))
	runner.Register(counting("dataset-reload", 50*time.Millisecond, &reloads))

	runner.Start()
	time.Sleep(150 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if evictions.Load() < 1 || reloads.Load() < 1 {
		t.Errorf("runs: viewer-cleanup=%d dataset-reload=%d, want both >= 1",
			evictions.Load(), reloads.Load())
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	cancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "dataset-reload",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("job context was not cancelled")
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			time.Sleep(5 * time.Second) // ignores ctx
			return nil
		},
	})

	runner.Start()
	<-started

	if err := stop(t, runner, 100*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop() error = %v, want DeadlineExceeded", err)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(counting("stale-view-cleanup", time.Hour, &runs))

	tests := []struct {
		name     string
		job      string
		wantErr  error
		wantRuns int32
	}{
		{"registered", "stale-view-cleanup", nil, 1},
		{"again", "stale-view-cleanup", nil, 2},
		{"unknown", "nonexistent-job", tasks.ErrUnknownJob, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runner.RunOnce(context.Background(), tt.job)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RunOnce(%q) error = %v, want %v", tt.job, err, tt.wantErr)
			}
			if got := runs.Load(); got != tt.wantRuns {
				t.Errorf("runs = %d, want %d", got, tt.wantRuns)
			}
		})
	}
}

func TestRunner_Status(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	fail := errors.New("source offline")
	runner.Register(tasks.Job{
		Name:     "b-failing",
		Interval: time.Hour,
		Run:      func(ctx context.Context) error { return fail },
	})
	runner.Register(tasks.Job{
		Name:     "a-ok",
		Interval: time.Hour,
		Run:      func(ctx context.Context) error { return nil },
	})

	ctx := context.Background()
	_ = runner.RunOnce(ctx, "a-ok")
	_ = runner.RunOnce(ctx, "b-failing")

	st := runner.Status()
	if len(st) != 2 {
		t.Fatalf("len(Status()) = %d, want 2", len(st))
	}
	if st[0].Name != "a-ok" || st[1].Name != "b-failing" {
		t.Errorf("Status() order = %s, %s; want sorted by name", st[0].Name, st[1].Name)
	}
	if st[0].Runs != 1 || st[0].LastError != "" || st[0].LastRun.IsZero() {
		t.Errorf("a-ok status = %+v", st[0])
	}
	if st[1].LastError != "source offline" {
		t.Errorf("b-failing LastError = %q", st[1].LastError)
	}
	if st[0].Running || st[1].Running {
		t.Error("no job should be running")
	}
}
