package sim

import "math"

// GlitchParams are the tunables of the glitch distortion.
type GlitchParams struct {
	Intensity         float64
	ChromaShift       float64
	Displacement      float64
	NoiseAmount       float64
	ScanlineIntensity float64
	GlitchFrequency   float64
	HorrorMode        bool
}

// Glitch evaluates the procedural glitch distortion. Everything is a pure
// function of (normalized coordinate, elapsed time, params): there is no
// persistent buffer, the running clock is the only state an effect carries.
//
// A periodic trigger derived from GlitchFrequency decides per frame whether
// the large-scale distortions (block displacement, tears, full chroma
// shift) are applied. Noise and scanlines run continuously. HorrorMode adds
// tracking-error bands, warping around a focal point, pixelation, inverted
// flashes, and desaturated grading.
type Glitch struct {
	params GlitchParams
}

// NewGlitch creates a glitch evaluator.
func NewGlitch(params GlitchParams) *Glitch {
	return &Glitch{params: params}
}

// SetParams replaces the tunables.
func (g *Glitch) SetParams(params GlitchParams) {
	g.params = params
}

// Hash maps n to a pseudo-random value in [0, 1).
func Hash(n float64) float64 {
	return Fract(math.Sin(n) * 43758.5453123)
}

// Hash2 maps (x, y) to a pseudo-random value in [0, 1).
func Hash2(x, y float64) float64 {
	return Fract(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// Active reports whether a distortion burst is running at time t.
func (g *Glitch) Active(t float64) bool {
	if g.params.GlitchFrequency <= 0 {
		return false
	}
	cell := math.Floor(t * 8 * g.params.GlitchFrequency)
	return Hash(cell) < 0.35
}

// Warp returns the distorted sampling coordinate for (u, v) at time t.
func (g *Glitch) Warp(u, v, t float64) (wu, wv float64) {
	p := g.params
	wu, wv = u, v
	active := g.Active(t)

	if active {
		// Block displacement: horizontal bands shifted by a per-band,
		// per-burst random amount.
		band := math.Floor(v * 16)
		burst := math.Floor(t * 20)
		r := Hash2(band, burst)
		if r > 0.75 {
			wu += (r - 0.875) * 4 * p.Displacement * p.Intensity
		}

		// Horizontal tears: thin slices with a large offset.
		tear := Hash2(math.Floor(v*96), burst)
		if tear > 0.96 {
			wu += (Hash(burst+band) - 0.5) * 2 * p.Displacement * p.Intensity
		}
	}

	if p.HorrorMode {
		// Tracking-error bands crawling down the frame.
		track := Fract(v*2.5 - t*0.4)
		if track < 0.04 {
			wu += (0.04 - track) * 1.5 * p.Intensity
			wv += math.Sin(t*30) * 0.003 * p.Intensity
		}

		// Warp toward a focal point that drifts with time.
		fx := 0.5 + 0.2*math.Sin(t*0.7)
		fy := 0.5 + 0.2*math.Cos(t*0.9)
		dx := wu - fx
		dy := wv - fy
		d := math.Hypot(dx, dy)
		pull := 0.04 * p.Intensity * math.Sin(t*1.3) / (1 + d*8)
		wu -= dx * pull
		wv -= dy * pull

		if active {
			// Pixelation quantizes the sampling grid during bursts.
			cells := 90.0
			wu = (math.Floor(wu*cells) + 0.5) / cells
			wv = (math.Floor(wv*cells) + 0.5) / cells
		}
	}

	return Clamp(wu, 0, 1), Clamp(wv, 0, 1)
}

// ChromaOffset returns the chromatic channel offset in surface pixels at
// time t. Outside bursts a small residual fringe remains.
func (g *Glitch) ChromaOffset(t float64) float64 {
	mul := 0.2
	if g.Active(t) {
		mul = 1
	}
	return g.params.ChromaShift * g.params.Intensity * mul
}

// Noise returns the signed per-pixel noise term in [-0.5, 0.5] scaled by
// NoiseAmount.
func (g *Glitch) Noise(u, v, t float64) float64 {
	return (Hash2(u*912.13+Fract(t)*37.7, v*517.71) - 0.5) * g.params.NoiseAmount
}

// Scanline returns the brightness multiplier for normalized row v on a
// surface of h rows.
func (g *Glitch) Scanline(v float64, h int) float64 {
	s := math.Sin(v * float64(h) * math.Pi)
	return 1 - g.params.ScanlineIntensity*0.5*(1-s*s)
}

// InvertFlash reports whether horror mode inverts colors at time t.
func (g *Glitch) InvertFlash(t float64) bool {
	if !g.params.HorrorMode {
		return false
	}
	cell := math.Floor(t * 3)
	return Hash(cell*7.77) > 0.93
}

// Desaturation returns the horror-mode desaturation amount in [0, 1].
func (g *Glitch) Desaturation() float64 {
	if !g.params.HorrorMode {
		return 0
	}
	return 0.6 * g.params.Intensity
}
