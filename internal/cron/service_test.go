package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/osteovet/clinic-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: registry, Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunCycleContinuesAfterFailure(t *testing.T) {
	failing := &stubJob{name: "fail", err: errors.New("boom")}
	ok := &stubJob{name: "ok"}
	lock := &fakeLock{}
	service := newTestService(t, lock, failing, ok)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Fatalf("expected both jobs to run once, got fail=%d ok=%d", failing.calls, ok.calls)
	}
	if lock.held || lock.released != 1 {
		t.Fatalf("expected lock to be released after the cycle")
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &stubJob{name: "ok"}
	service := newTestService(t, &fakeLock{held: true}, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.calls != 0 {
		t.Fatalf("job must not run without the lock")
	}
}

func TestRunOnceByName(t *testing.T) {
	a := &stubJob{name: "a"}
	b := &stubJob{name: "b", err: errors.New("nope")}
	service := newTestService(t, &fakeLock{}, a, b)
	ctx := context.Background()

	if err := service.RunOnce(ctx, "a"); err != nil {
		t.Fatalf("run a: %v", err)
	}
	if a.calls != 1 || b.calls != 0 {
		t.Fatalf("expected only a to run")
	}
	if err := service.RunOnce(ctx, "b"); err == nil {
		t.Fatalf("expected b's error to surface")
	}
	if err := service.RunOnce(ctx, "missing"); err == nil {
		t.Fatalf("expected unknown job to fail")
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatalf("expected missing lock to fail")
	}
}
