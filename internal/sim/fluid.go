package sim

import "math"

// trailCap bounds the accumulated trail value before the reveal threshold
// is applied, keeping injection finite under any pointer input.
const trailCap = 4.0

// FluidParams are the tunables of the trail accumulator. LineWidth is in
// normalized surface units.
type FluidParams struct {
	Speed         float64
	Decay         float64
	LineWidth     float64
	LineIntensity float64
}

// Fluid accumulates a decaying trail-intensity field along the pointer
// path. Each frame runs one or more sub-steps (Speed above 1 splits the
// pointer segment so fast strokes stay continuous): the previous field is
// scaled by Decay into the back buffer, energy is added along the sub-step
// segment with a smooth point-to-segment falloff, and the pair swaps.
type Fluid struct {
	params FluidParams
	trail  *FieldPair
}

// NewFluid creates a zeroed trail accumulator at the given resolution.
func NewFluid(w, h int, params FluidParams) *Fluid {
	return &Fluid{params: params, trail: NewFieldPair(w, h)}
}

// SetParams replaces the tunables without touching the field state.
func (f *Fluid) SetParams(params FluidParams) {
	f.params = params
}

// Resize reallocates both trail buffers zeroed at the new resolution.
func (f *Fluid) Resize(w, h int) {
	f.trail.Resize(w, h)
}

// Size returns the grid resolution.
func (f *Fluid) Size() (int, int) {
	return f.trail.Front.W, f.trail.Front.H
}

// Trail returns the most recently written trail field.
func (f *Fluid) Trail() *Field { return f.trail.Front }

// Step advances the trail by one frame using the pointer snapshot.
func (f *Fluid) Step(dt float64, p Pointer) {
	_ = dt
	steps := int(math.Ceil(f.params.Speed))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		t0 := float64(i) / float64(steps)
		t1 := float64(i+1) / float64(steps)
		f.substep(p, t0, t1)
	}
}

// substep decays the field and injects along the [t0, t1] slice of the
// previous-to-current pointer segment.
func (f *Fluid) substep(p Pointer, t0, t1 float64) {
	prev := f.trail.Front
	next := f.trail.Back
	decay := float32(f.params.Decay)
	for i, v := range prev.Data {
		next.Data[i] = v * decay
	}

	if p.Active {
		ax := Mix(p.PrevX, p.X, t0)
		ay := Mix(p.PrevY, p.Y, t0)
		bx := Mix(p.PrevX, p.X, t1)
		by := Mix(p.PrevY, p.Y, t1)
		f.injectSegment(next, ax, ay, bx, by)
	}

	f.trail.Swap()
}

func (f *Fluid) injectSegment(next *Field, ax, ay, bx, by float64) {
	gw, gh := next.W, next.H
	if gw < 2 || gh < 2 {
		return
	}
	// Segment endpoints and falloff width in grid cells.
	sx := float64(gw - 1)
	sy := float64(gh - 1)
	width := f.params.LineWidth
	x0 := (math.Min(ax, bx) - width) * sx
	y0 := (math.Min(ay, by) - width) * sy
	x1 := (math.Max(ax, bx) + width) * sx
	y1 := (math.Max(ay, by) + width) * sy
	forEachInBox(gw, gh, x0, y0, x1, y1, func(x, y int) {
		u := float64(x) / sx
		v := float64(y) / sy
		d := SegmentDistance(u, v, ax, ay, bx, by)
		fall := 1 - Smoothstep(0, width, d)
		if fall <= 0 {
			return
		}
		t := next.Get(x, y) + float32(f.params.LineIntensity*fall)
		if t > trailCap {
			t = trailCap
		}
		next.Set(x, y, t)
	})
}

// Reveal maps a trail value to a blend factor in [0, 1] using a softened
// threshold. A zero edge width degenerates to a hard step at the threshold.
func Reveal(trail, threshold, edgeWidth float64) float64 {
	return Smoothstep(threshold, threshold+edgeWidth, trail)
}
