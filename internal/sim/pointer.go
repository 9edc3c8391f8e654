// Package sim implements the CPU simulation kernels behind the fx effects:
// the ripple pulse state machine, the wave-equation water integrator, the
// fluid trail accumulator, and the stateless glitch distortion functions.
//
// All kernels work in normalized surface coordinates (0..1, y-axis up) and
// are pure state machines: no goroutines, no clocks, no GPU types. The
// compositors (CPU and GPU) read their state after each step.
package sim

import "math"

// Pointer is an immutable per-step snapshot of pointer state. Prev trails
// the current position by exactly one update; after the first move following
// an idle period both collapse to the same point.
type Pointer struct {
	X, Y         float64
	PrevX, PrevY float64

	// Active is false when the pointer left the surface or idled out.
	// Inactive pointers stop injecting energy; decay continues naturally.
	Active bool

	// Speed is the pointer speed in normalized surface units per second,
	// measured between the last two updates.
	Speed float64
}

// Moved reports whether the snapshot describes an actual movement segment.
func (p Pointer) Moved() bool {
	return p.Active && (p.X != p.PrevX || p.Y != p.PrevY)
}

// Smoothstep returns the cubic 0..1 transition between edge0 and edge1.
// When edge0 == edge1 it degenerates to a hard step at the shared edge.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x >= edge0 {
			return 1
		}
		return 0
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SegmentDistance returns the distance from point (px, py) to the segment
// from (ax, ay) to (bx, by). A degenerate segment is treated as a point.
func SegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := Clamp(((px-ax)*dx+(py-ay)*dy)/lenSq, 0, 1)
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// Fract returns the fractional part of x.
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Mix linearly interpolates between a and b.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}
