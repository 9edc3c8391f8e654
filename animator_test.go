package fx

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAnimatorRunsSteps(t *testing.T) {
	var steps atomic.Int64
	a := newAnimator(time.Millisecond, func(time.Time) {
		steps.Add(1)
	})

	a.Start()
	if !a.Running() {
		t.Error("expected running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for steps.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	a.Stop()
	if steps.Load() < 3 {
		t.Errorf("expected at least 3 steps, got %d", steps.Load())
	}
	if a.Running() {
		t.Error("expected stopped after Stop")
	}

	// No steps after Stop returns.
	after := steps.Load()
	time.Sleep(20 * time.Millisecond)
	if steps.Load() != after {
		t.Error("expected no steps after Stop")
	}
}

func TestAnimatorStartStopIdempotent(t *testing.T) {
	a := newAnimator(time.Millisecond, func(time.Time) {})

	// Stopping a stopped animator is a no-op.
	a.Stop()

	a.Start()
	a.Start()
	a.Stop()
	a.Stop()

	// Restart after stop.
	a.Start()
	if !a.Running() {
		t.Error("expected running after restart")
	}
	a.Stop()
}

func TestAnimatorDefaultInterval(t *testing.T) {
	a := newAnimator(0, func(time.Time) {})
	if a.interval != DefaultFrameInterval {
		t.Errorf("expected default interval, got %v", a.interval)
	}
	a = newAnimator(-time.Second, func(time.Time) {})
	if a.interval != DefaultFrameInterval {
		t.Errorf("expected default interval for negative input, got %v", a.interval)
	}
}
