package sim

import "math"

// Integrator constants. The spring and drag terms bleed energy out of the
// system so the oscillation stays bounded under any pointer input; the
// pressure bleed factor matches the reference integrator.
const (
	waterTimeScale     = 60.0 // dt seconds to reference frame units
	waterMaxStep       = 1.0 / 20.0
	waterSpring        = 0.004
	waterDrag          = 0.015
	waterPressureBleed = 0.999
	waterSpeedMin      = 0.5
	waterSpeedMax      = 3.0
)

// WaterParams are the tunables of the water integrator. Radii and widths
// are in surface pixels.
type WaterParams struct {
	SimulationSpeed float64
	EffectRadius    float64
	HeadStrength    float64
	TailStrength    float64
	TailWidth       float64
}

// Water integrates the 2D wave equation over a ping-pong pressure pair.
// Each step: velocity += dt*laplacian(pressure)*0.25, pressure += dt*velocity,
// with damping terms for stability. Edges mirror the missing neighbor
// (Neumann-like), so waves reflect instead of leaking energy. While the
// pointer is active, energy is injected at the pointer ("head") and along
// the previous-to-current segment ("tail"), scaled by the clamped pointer
// speed so fast swipes inject proportionally more.
//
// The output carries pressure plus its horizontal and vertical gradients;
// the compositor uses the gradients for refraction displacement and a fake
// specular highlight.
type Water struct {
	params WaterParams

	pressure *FieldPair
	velocity *Field
	gradX    *Field
	gradY    *Field
}

// NewWater creates a zeroed water integrator at the given resolution.
func NewWater(w, h int, params WaterParams) *Water {
	return &Water{
		params:   params,
		pressure: NewFieldPair(w, h),
		velocity: NewField(w, h),
		gradX:    NewField(w, h),
		gradY:    NewField(w, h),
	}
}

// SetParams replaces the tunables without touching the field state.
func (w *Water) SetParams(params WaterParams) {
	w.params = params
}

// Resize reallocates every buffer zeroed at the new resolution.
func (w *Water) Resize(width, height int) {
	w.pressure.Resize(width, height)
	w.velocity.Resize(width, height)
	w.gradX.Resize(width, height)
	w.gradY.Resize(width, height)
}

// Size returns the grid resolution.
func (w *Water) Size() (int, int) {
	return w.pressure.Front.W, w.pressure.Front.H
}

// Pressure returns the most recently written pressure field.
func (w *Water) Pressure() *Field { return w.pressure.Front }

// GradX returns the horizontal pressure gradient.
func (w *Water) GradX() *Field { return w.gradX }

// GradY returns the vertical pressure gradient.
func (w *Water) GradY() *Field { return w.gradY }

// StepSize returns the integrator step for a dt-second frame, clamped so a
// stalled loop cannot integrate one huge unstable step.
func (w *Water) StepSize(dt float64) float64 {
	return Clamp(dt, 0, waterMaxStep) * w.params.SimulationSpeed * waterTimeScale
}

// SpeedScale maps a pointer speed to the injection multiplier. Fast swipes
// inject proportionally more energy, within bounds.
func SpeedScale(speed float64) float64 {
	return Clamp(speed, waterSpeedMin, waterSpeedMax)
}

// Step advances the simulation by dt seconds using the pointer snapshot.
func (w *Water) Step(dt float64, p Pointer) {
	gw, gh := w.Size()
	if gw < 2 || gh < 2 {
		return
	}
	h := w.StepSize(dt)

	prev := w.pressure.Front
	next := w.pressure.Back
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			c := prev.Get(x, y)
			lap := prev.At(x-1, y) + prev.At(x+1, y) + prev.At(x, y-1) + prev.At(x, y+1) - 4*c
			v := w.velocity.Get(x, y)
			v += float32(h) * lap * 0.25
			v -= float32(waterSpring*h) * c
			v *= float32(1 - waterDrag*h)
			w.velocity.Set(x, y, v)
			next.Set(x, y, (c+float32(h)*v)*waterPressureBleed)
		}
	}

	if p.Active {
		w.inject(next, p, h)
	}

	w.updateGradients(next)
	w.pressure.Swap()
}

// inject adds head and tail energy into the freshly written pressure field.
func (w *Water) inject(next *Field, p Pointer, h float64) {
	gw, gh := next.W, next.H
	mul := SpeedScale(p.Speed)

	px := p.X * float64(gw-1)
	py := p.Y * float64(gh-1)
	radius := w.params.EffectRadius
	amount := w.params.HeadStrength * mul * h
	forEachInBox(gw, gh, px-radius, py-radius, px+radius, py+radius, func(x, y int) {
		d := math.Hypot(float64(x)-px, float64(y)-py)
		fall := 1 - Smoothstep(0, radius, d)
		if fall > 0 {
			next.Set(x, y, next.Get(x, y)+float32(amount*fall))
		}
	})

	if !p.Moved() {
		return
	}
	qx := p.PrevX * float64(gw-1)
	qy := p.PrevY * float64(gh-1)
	width := w.params.TailWidth
	amount = w.params.TailStrength * mul * h
	x0 := math.Min(px, qx) - width
	y0 := math.Min(py, qy) - width
	x1 := math.Max(px, qx) + width
	y1 := math.Max(py, qy) + width
	forEachInBox(gw, gh, x0, y0, x1, y1, func(x, y int) {
		d := SegmentDistance(float64(x), float64(y), qx, qy, px, py)
		fall := 1 - Smoothstep(0, width, d)
		if fall > 0 {
			next.Set(x, y, next.Get(x, y)+float32(amount*fall))
		}
	})
}

// updateGradients computes central-difference gradients of the pressure
// field with mirrored edges.
func (w *Water) updateGradients(pres *Field) {
	gw, gh := pres.W, pres.H
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			w.gradX.Set(x, y, (pres.At(x+1, y)-pres.At(x-1, y))*0.5)
			w.gradY.Set(x, y, (pres.At(x, y+1)-pres.At(x, y-1))*0.5)
		}
	}
}

// forEachInBox visits every grid cell inside the clamped bounding box.
func forEachInBox(gw, gh int, x0, y0, x1, y1 float64, fn func(x, y int)) {
	ix0 := int(math.Max(0, math.Floor(x0)))
	iy0 := int(math.Max(0, math.Floor(y0)))
	ix1 := int(math.Min(float64(gw-1), math.Ceil(x1)))
	iy1 := int(math.Min(float64(gh-1), math.Ceil(y1)))
	for y := iy0; y <= iy1; y++ {
		for x := ix0; x <= ix1; x++ {
			fn(x, y)
		}
	}
}
