package usecase

import (
	"context"
	"testing"
	"time"
)

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (f *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	f.job = job
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}

func TestSchedulerRunsCycleOnTrigger(t *testing.T) {
	t.Parallel()

	source := &fakeSource{ids: []string{"1"}, records: records("1")}
	driver := &fakeDriver{}
	s := NewScheduler(driver, NewPipeline(PipelineDeps{Source: source}), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if driver.job == nil {
		t.Fatal("job not registered")
	}

	driver.job(time.Date(2025, time.November, 11, 7, 0, 0, 0, time.UTC))
	if len(source.windows) != 1 || source.windows[0].From() != "2025-11-10" {
		t.Fatalf("windows = %+v", source.windows)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop: %v stopped=%v", err, driver.stopped)
	}
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
