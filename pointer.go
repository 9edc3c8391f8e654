package fx

import (
	"sync"
	"time"

	"github.com/gogpu/fx/internal/sim"
)

// offSurface is the sentinel position for a pointer that left the surface,
// far outside the normalized 0..1 range so distance falloffs evaluate to
// zero everywhere.
var offSurface = V2(-10, -10)

// DefaultIdleTimeout is how long a pointer may sit still before it stops
// counting as active input.
const DefaultIdleTimeout = 50 * time.Millisecond

// Tracker converts host pointer events into the per-frame snapshots the
// simulations consume. It is safe for concurrent use: the host delivers
// Move and Leave from its event loop while the animator calls Snapshot from
// the frame loop.
//
// The previous position trails the current one by exactly one update. On the
// first move after a leave, an idle gap or at startup both collapse onto the
// same point, so the first frame never sees a segment spanning the gap.
type Tracker struct {
	mu sync.Mutex

	pos      Vec2
	prev     Vec2
	active   bool
	speed    float64
	lastMove time.Time

	idleTimeout time.Duration
}

// NewTracker creates a tracker in the off-surface state.
func NewTracker(idleTimeout time.Duration) *Tracker {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Tracker{
		pos:         offSurface,
		prev:        offSurface,
		idleTimeout: idleTimeout,
	}
}

// Move records a pointer position in normalized surface coordinates
// (0..1, y-axis up) at the given time.
func (t *Tracker) Move(nx, ny float64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := V2(nx, ny)
	if !t.active || now.Sub(t.lastMove) > t.idleTimeout {
		// Re-entry after a leave or an idle gap: collapse prev onto the
		// new position so no segment spans the gap.
		t.pos = p
		t.prev = p
		t.active = true
		t.speed = 0
		t.lastMove = now
		return
	}

	if dt := now.Sub(t.lastMove).Seconds(); dt > 0 {
		t.speed = p.Sub(t.pos).Length() / dt
	}
	t.prev = t.pos
	t.pos = p
	t.lastMove = now
}

// Leave marks the pointer as off the surface. The position snaps to a
// sentinel far outside the normalized range.
func (t *Tracker) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = offSurface
	t.prev = offSurface
	t.active = false
	t.speed = 0
}

// Snapshot returns the pointer state for the frame at the given time. A
// pointer that has not moved within the idle timeout reports as inactive
// with its segment collapsed, so simulations stop injecting but keep
// decaying.
func (t *Tracker) Snapshot(now time.Time) sim.Pointer {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := sim.Pointer{
		X:      t.pos.X,
		Y:      t.pos.Y,
		PrevX:  t.prev.X,
		PrevY:  t.prev.Y,
		Active: t.active,
		Speed:  t.speed,
	}
	if t.active && now.Sub(t.lastMove) > t.idleTimeout {
		p.Active = false
		p.PrevX, p.PrevY = p.X, p.Y
		p.Speed = 0
	}
	return p
}

// SetIdleTimeout replaces the idle window. Non-positive values restore the
// default.
func (t *Tracker) SetIdleTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d <= 0 {
		d = DefaultIdleTimeout
	}
	t.idleTimeout = d
}
