package sim

import "math"

// rippleEpsilon is the amplitude below which a pulse is considered finished.
const rippleEpsilon = 0.01

// RippleState enumerates the ripple pulse states.
type RippleState int

const (
	// RippleIdle means no pulse is running and the effect is the identity
	// transform.
	RippleIdle RippleState = iota

	// RipplePulsing means a ring is expanding from the trigger point.
	RipplePulsing
)

// RippleParams are the tunables of the ripple pulse.
type RippleParams struct {
	Strength   float64
	Radius     float64
	PulseSpeed float64
	Decay      float64
	Frequency  float64
}

// Ripple is the ring-pulse state machine. A pointer move triggers a pulse
// at the pointer position; the pulse expands outward while its amplitude
// decays exponentially, and the machine returns to idle once the amplitude
// drops below epsilon. Re-triggering restarts the pulse; the latest move
// always wins, overlapping pulses are not blended.
type Ripple struct {
	params RippleParams

	state     RippleState
	centerX   float64
	centerY   float64
	amplitude float64
	pulseTime float64
}

// NewRipple creates an idle ripple machine.
func NewRipple(params RippleParams) *Ripple {
	return &Ripple{params: params}
}

// SetParams replaces the tunables. The running pulse keeps its amplitude
// and elapsed time.
func (r *Ripple) SetParams(params RippleParams) {
	r.params = params
}

// Params returns the current tunables.
func (r *Ripple) Params() RippleParams { return r.params }

// Trigger starts (or restarts) a pulse at normalized (x, y).
func (r *Ripple) Trigger(x, y float64) {
	r.state = RipplePulsing
	r.centerX = x
	r.centerY = y
	r.amplitude = 1
	r.pulseTime = 0
}

// Step advances the pulse by dt seconds.
func (r *Ripple) Step(dt float64) {
	if r.state != RipplePulsing {
		return
	}
	r.pulseTime += dt
	r.amplitude *= math.Exp(-r.params.Decay * dt)
	if r.amplitude < rippleEpsilon {
		r.amplitude = 0
		r.state = RippleIdle
	}
}

// State returns the current pulse state.
func (r *Ripple) State() RippleState { return r.state }

// Amplitude returns the current pulse amplitude in [0, 1].
func (r *Ripple) Amplitude() float64 { return r.amplitude }

// PulseTime returns seconds since the last trigger.
func (r *Ripple) PulseTime() float64 { return r.pulseTime }

// Center returns the trigger position.
func (r *Ripple) Center() (x, y float64) { return r.centerX, r.centerY }

// Offset returns the texture coordinate displacement at normalized (u, v).
// The displacement is a ring envelope expanding at PulseSpeed, modulated by
// a sine wave and the decaying amplitude, directed radially away from the
// trigger point. Idle machines return (0, 0), the identity transform.
func (r *Ripple) Offset(u, v float64) (du, dv float64) {
	if r.state != RipplePulsing || r.amplitude == 0 {
		return 0, 0
	}
	dx := u - r.centerX
	dy := v - r.centerY
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0, 0
	}
	ring := dist - r.pulseTime*r.params.PulseSpeed
	envelope := 1 - Smoothstep(0, r.params.Radius, math.Abs(ring))
	if envelope == 0 {
		return 0, 0
	}
	wave := math.Sin(dist*r.params.Frequency*2*math.Pi - r.pulseTime*r.params.PulseSpeed*r.params.Frequency)
	disp := envelope * wave * r.params.Strength * r.amplitude
	return disp * dx / dist, disp * dy / dist
}
