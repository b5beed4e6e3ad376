package scheduler

import (
	"context"
	"testing"
	"time"

	_ "time/tzdata"
)

func newTestScheduler(t *testing.T, expr string, loc *time.Location) *CronScheduler {
	t.Helper()
	c, err := NewCronScheduler(expr, loc, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewCronScheduler: %v", err)
	}
	return c
}

func TestNewCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	if _, err := NewCronScheduler("not a cron", nil, 0, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNextSkipsWeekend(t *testing.T) {
	t.Parallel()

	c := newTestScheduler(t, "0 7 * * 1-5", time.UTC)
	friday := time.Date(2025, time.November, 7, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, time.November, 10, 7, 0, 0, 0, time.UTC)
	if got := c.Next(friday); !got.Equal(want) {
		t.Fatalf("Next = %s, want %s", got, want)
	}
}

func TestNextUsesTimezone(t *testing.T) {
	t.Parallel()

	kigali, err := time.LoadLocation("Africa/Kigali")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	c := newTestScheduler(t, "0 7 * * 1-5", kigali)
	got := c.Next(time.Date(2025, time.November, 10, 4, 0, 0, 0, time.UTC))
	if want := time.Date(2025, time.November, 10, 5, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("Next = %s, want %s", got.UTC(), want)
	}
}

func TestTickRunsWhenDueAndSkipsOverlap(t *testing.T) {
	t.Parallel()

	c := newTestScheduler(t, "0 7 * * 1-5", time.UTC)
	release := make(chan struct{})
	runs := make(chan time.Time, 4)
	c.job = func(at time.Time) {
		runs <- at
		<-release
	}
	monday := time.Date(2025, time.November, 10, 7, 0, 0, 0, time.UTC)
	c.next = monday
	ctx := context.Background()

	if c.tick(ctx, monday.Add(-time.Minute)) {
		t.Fatal("ran before due")
	}
	if !c.tick(ctx, monday.Add(time.Minute)) {
		t.Fatal("did not run when due")
	}
	<-runs
	if want := time.Date(2025, time.November, 11, 7, 0, 0, 0, time.UTC); !c.next.Equal(want) {
		t.Fatalf("next = %s, want %s", c.next, want)
	}

	c.next = monday
	if c.tick(ctx, monday.Add(2*time.Minute)) {
		t.Fatal("overlapping run started")
	}

	close(release)
	c.jobs.Wait()
	c.next = monday
	if !c.tick(ctx, monday.Add(3*time.Minute)) {
		t.Fatal("run after completion did not start")
	}
	c.jobs.Wait()
}

func TestTickRecoversPanic(t *testing.T) {
	t.Parallel()

	c := newTestScheduler(t, "* * * * *", time.UTC)
	c.job = func(time.Time) { panic("boom") }
	now := time.Date(2025, time.November, 10, 7, 0, 0, 0, time.UTC)
	c.next = now

	if !c.tick(context.Background(), now) {
		t.Fatal("did not run")
	}
	c.jobs.Wait()
	if c.running.Load() {
		t.Fatal("still marked running after panic")
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	c := newTestScheduler(t, "0 7 * * 1-5", time.UTC)
	ctx := context.Background()
	if err := c.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
