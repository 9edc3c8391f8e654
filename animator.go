package fx

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the frame pacing of the built-in loop, roughly
// 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// animator drives the per-frame step on a background goroutine. Frame
// deadlines are computed from the loop start time rather than chained from
// the previous tick, so a slow frame does not shift every later frame.
type animator struct {
	interval time.Duration
	step     func(now time.Time)

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func newAnimator(interval time.Duration, step func(now time.Time)) *animator {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &animator{interval: interval, step: step}
}

// Start launches the frame loop. Starting a running animator is a no-op.
func (a *animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stop, a.done)
}

// Stop halts the frame loop and waits for the in-flight frame to finish.
// Stopping a stopped animator is a no-op.
func (a *animator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	stop, done := a.stop, a.done
	a.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether the frame loop is active.
func (a *animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *animator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	var frame int64
	for {
		select {
		case <-stop:
			return
		case now := <-timer.C:
			a.step(now)

			frame++
			next := start.Add(time.Duration(frame) * a.interval)
			wait := time.Until(next)
			if wait < 0 {
				// Fell behind; skip the missed deadlines instead of
				// bursting frames to catch up.
				frame += int64(-wait/a.interval) + 1
				next = start.Add(time.Duration(frame) * a.interval)
				wait = time.Until(next)
				if wait < 0 {
					wait = 0
				}
			}
			timer.Reset(wait)
		}
	}
}
