package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"TenderScanner/internal/logging"
	"TenderScanner/internal/ports"
)

const defaultPollInterval = 2 * time.Minute

// CronScheduler wakes every poll interval and runs the job once the next cron
// occurrence is due. A tick that arrives while the job is still running is skipped.
type CronScheduler struct {
	schedule cron.Schedule
	location *time.Location
	poll     time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	next    time.Time
	job     func(time.Time)
	stop    chan struct{}
	done    chan struct{}
	running atomic.Bool
	jobs    sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses a standard five-field cron expression evaluated in loc.
func NewCronScheduler(expr string, loc *time.Location, poll time.Duration, logger *slog.Logger) (*CronScheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if poll <= 0 {
		poll = defaultPollInterval
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &CronScheduler{
		schedule: schedule,
		location: loc,
		poll:     poll,
		logger:   logger.With("component", "cron"),
		now:      time.Now,
	}, nil
}

// Next returns the first occurrence strictly after t, in the scheduler's timezone.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.schedule.Next(t.In(c.location))
}

// Start begins polling in the background. It returns immediately; a second call while
// running is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}

	c.job = job
	c.next = c.Next(c.now())
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.logger.Info("scheduler started", "next_run", c.next.Format(time.RFC3339), "poll", c.poll.String())

	go c.loop(ctx, c.stop, c.done)
	return nil
}

func (c *CronScheduler) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.C:
			c.tick(ctx, t)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// tick launches the job when the next occurrence is due. It reports whether a run
// started.
func (c *CronScheduler) tick(ctx context.Context, now time.Time) bool {
	c.mu.Lock()
	due := !now.Before(c.next)
	if due {
		c.next = c.Next(now)
	}
	job, next := c.job, c.next
	c.mu.Unlock()

	c.logger.Debug("scheduler tick", "due", due, "next_run", next.Format(time.RFC3339))
	if !due || job == nil {
		return false
	}
	if !c.running.CompareAndSwap(false, true) {
		c.logger.Warn("previous run still in progress, skipping", "trigger", now.Format(time.RFC3339))
		return false
	}

	c.jobs.Add(1)
	go func() {
		defer c.jobs.Done()
		defer c.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("scheduled job panicked", "panic", r)
			}
		}()
		if ctx.Err() != nil {
			return
		}
		job(now.In(c.location))
	}()
	return true
}

// Stop halts polling and waits for an in-flight job until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return nil
	}

	close(stop)
	finished := make(chan struct{})
	go func() {
		<-done
		c.jobs.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}
