package fx

import (
	"fmt"
	"time"
)

// Kind identifies one of the built-in effects.
type Kind int

const (
	// KindRipple is the ring-pulse texture displacement effect.
	KindRipple Kind = iota

	// KindWater is the wave-equation water simulation effect.
	KindWater

	// KindFluid is the fluid trail reveal effect.
	KindFluid

	// KindGlitch is the procedural glitch distortion effect.
	KindGlitch
)

// String returns the effect name.
func (k Kind) String() string {
	switch k {
	case KindRipple:
		return "ripple"
	case KindWater:
		return "water"
	case KindFluid:
		return "fluid"
	case KindGlitch:
		return "glitch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Config is implemented by the per-effect configuration types. A Config is
// validated and clamped at effect creation and at ApplyConfig; the running
// effect reads an immutable snapshot at the start of each step, so a Config
// value handed to fx is never shared mutable state.
type Config interface {
	// Kind reports which effect the config belongs to.
	Kind() Kind

	validate() error
	clamped() Config
}

// RippleConfig configures the ripple effect.
type RippleConfig struct {
	// Strength scales the texture coordinate displacement.
	Strength float64

	// Radius is the half-width of the expanding ring envelope, in
	// normalized surface units.
	Radius float64

	// PulseSpeed is the outward expansion speed of the ring, in normalized
	// surface units per second.
	PulseSpeed float64

	// Decay is the exponential amplitude decay rate per second. The pulse
	// ends when amplitude falls below 0.01.
	Decay float64

	// Frequency is the spatial wave frequency inside the ring.
	Frequency float64
}

// DefaultRippleConfig returns the ripple defaults.
func DefaultRippleConfig() RippleConfig {
	return RippleConfig{
		Strength:   0.08,
		Radius:     0.3,
		PulseSpeed: 2.0,
		Decay:      2.5,
		Frequency:  20,
	}
}

// Kind implements Config.
func (RippleConfig) Kind() Kind { return KindRipple }

func (c RippleConfig) validate() error {
	if c.Decay <= 0 {
		return fmt.Errorf("%w: ripple decay must be positive, got %v", ErrInvalidConfig, c.Decay)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: ripple radius must be positive, got %v", ErrInvalidConfig, c.Radius)
	}
	return nil
}

func (c RippleConfig) clamped() Config {
	c.Strength = clamp(c.Strength, 0, 1)
	c.Radius = clamp(c.Radius, 0.01, 2)
	c.PulseSpeed = clamp(c.PulseSpeed, 0.01, 20)
	c.Frequency = clamp(c.Frequency, 0.1, 200)
	return c
}

// WaterGrading holds the visual grading applied by the water compositor.
type WaterGrading struct {
	// ReflectionIntensity scales the fake specular highlight derived from
	// the pressure gradient.
	ReflectionIntensity float64

	// Contrast remaps color around mid gray.
	Contrast float64

	// Saturation scales chroma.
	Saturation float64

	// Brightness scales the final color.
	Brightness float64

	// ShadowIntensity darkens troughs of the pressure field. Negative
	// values darken, positive lighten.
	ShadowIntensity float64
}

// WaterConfig configures the realistic water effect.
type WaterConfig struct {
	// SimulationSpeed scales the integrator time step.
	SimulationSpeed float64

	// EffectRadius is the head injection radius in surface pixels.
	EffectRadius float64

	// HeadStrength scales energy injected at the pointer position.
	HeadStrength float64

	// TailStrength scales energy injected along the previous-to-current
	// pointer segment.
	TailStrength float64

	// TailWidth is the tail injection falloff width in surface pixels.
	TailWidth float64

	// Grading is the visual grading applied at composite time.
	Grading WaterGrading
}

// DefaultWaterConfig returns the water defaults.
func DefaultWaterConfig() WaterConfig {
	return WaterConfig{
		SimulationSpeed: 1.3,
		EffectRadius:    25,
		HeadStrength:    0.7,
		TailStrength:    0.6,
		TailWidth:       20,
		Grading: WaterGrading{
			ReflectionIntensity: 0.5,
			Contrast:            0.9,
			Saturation:          1.0,
			Brightness:          1.25,
			ShadowIntensity:     -0.28,
		},
	}
}

// Kind implements Config.
func (WaterConfig) Kind() Kind { return KindWater }

func (c WaterConfig) validate() error {
	if c.SimulationSpeed <= 0 {
		return fmt.Errorf("%w: water simulation speed must be positive, got %v", ErrInvalidConfig, c.SimulationSpeed)
	}
	if c.EffectRadius <= 0 {
		return fmt.Errorf("%w: water effect radius must be positive, got %v", ErrInvalidConfig, c.EffectRadius)
	}
	return nil
}

func (c WaterConfig) clamped() Config {
	c.SimulationSpeed = clamp(c.SimulationSpeed, 0.1, 4)
	c.EffectRadius = clamp(c.EffectRadius, 1, 500)
	c.HeadStrength = clamp(c.HeadStrength, 0, 4)
	c.TailStrength = clamp(c.TailStrength, 0, 4)
	c.TailWidth = clamp(c.TailWidth, 1, 500)
	c.Grading.ReflectionIntensity = clamp(c.Grading.ReflectionIntensity, 0, 2)
	c.Grading.Contrast = clamp(c.Grading.Contrast, 0.1, 2)
	c.Grading.Saturation = clamp(c.Grading.Saturation, 0, 2)
	c.Grading.Brightness = clamp(c.Grading.Brightness, 0.1, 2)
	c.Grading.ShadowIntensity = clamp(c.Grading.ShadowIntensity, -1, 1)
	return c
}

// FluidConfig configures the fluid trail reveal effect.
type FluidConfig struct {
	// Speed controls simulation sub-steps per frame. Values above 1 split
	// each frame into multiple sub-steps along the pointer segment.
	Speed float64

	// Decay is the per-step trail retention factor in (0, 1].
	Decay float64

	// LineWidth is the trail injection falloff width in normalized
	// surface units.
	LineWidth float64

	// LineIntensity scales trail energy injected per step.
	LineIntensity float64

	// Threshold is the trail value at which the reveal begins.
	Threshold float64

	// EdgeWidth softens the reveal threshold. Zero produces a hard step.
	EdgeWidth float64

	// MovementTimeout is the pointer idle window after which injection
	// stops.
	MovementTimeout time.Duration
}

// DefaultFluidConfig returns the fluid defaults.
func DefaultFluidConfig() FluidConfig {
	return FluidConfig{
		Speed:           1.0,
		Decay:           0.97,
		LineWidth:       0.05,
		LineIntensity:   0.3,
		Threshold:       0.02,
		EdgeWidth:       0.004,
		MovementTimeout: 50 * time.Millisecond,
	}
}

// Kind implements Config.
func (FluidConfig) Kind() Kind { return KindFluid }

func (c FluidConfig) validate() error {
	if c.Decay <= 0 || c.Decay > 1 {
		return fmt.Errorf("%w: fluid decay must be in (0, 1], got %v", ErrInvalidConfig, c.Decay)
	}
	if c.LineWidth <= 0 {
		return fmt.Errorf("%w: fluid line width must be positive, got %v", ErrInvalidConfig, c.LineWidth)
	}
	if c.EdgeWidth < 0 {
		return fmt.Errorf("%w: fluid edge width must not be negative, got %v", ErrInvalidConfig, c.EdgeWidth)
	}
	return nil
}

func (c FluidConfig) clamped() Config {
	c.Speed = clamp(c.Speed, 0.1, 8)
	c.LineWidth = clamp(c.LineWidth, 0.001, 1)
	c.LineIntensity = clamp(c.LineIntensity, 0, 4)
	c.Threshold = clamp(c.Threshold, 0, 1)
	c.EdgeWidth = clamp(c.EdgeWidth, 0, 1)
	if c.MovementTimeout <= 0 {
		c.MovementTimeout = DefaultFluidConfig().MovementTimeout
	}
	return c
}

// GlitchConfig configures the glitch distortion effect.
type GlitchConfig struct {
	// Intensity scales every distortion term.
	Intensity float64

	// ChromaShift is the chromatic channel offset in surface pixels.
	ChromaShift float64

	// Displacement is the maximum block displacement in normalized
	// surface units.
	Displacement float64

	// NoiseAmount scales per-pixel noise.
	NoiseAmount float64

	// ScanlineIntensity scales the scanline darkening.
	ScanlineIntensity float64

	// GlitchFrequency controls how often distortion bursts trigger.
	GlitchFrequency float64

	// HorrorMode enables compounded distortions: tracking bands, focal
	// warp, pixelation, invert flashes, and desaturated grading.
	HorrorMode bool
}

// DefaultGlitchConfig returns the glitch defaults.
func DefaultGlitchConfig() GlitchConfig {
	return GlitchConfig{
		Intensity:         0.7,
		ChromaShift:       3.0,
		Displacement:      0.05,
		NoiseAmount:       0.15,
		ScanlineIntensity: 0.3,
		GlitchFrequency:   0.3,
		HorrorMode:        false,
	}
}

// Kind implements Config.
func (GlitchConfig) Kind() Kind { return KindGlitch }

func (c GlitchConfig) validate() error {
	if c.GlitchFrequency < 0 {
		return fmt.Errorf("%w: glitch frequency must not be negative, got %v", ErrInvalidConfig, c.GlitchFrequency)
	}
	return nil
}

func (c GlitchConfig) clamped() Config {
	c.Intensity = clamp(c.Intensity, 0, 1)
	c.ChromaShift = clamp(c.ChromaShift, 0, 64)
	c.Displacement = clamp(c.Displacement, 0, 0.5)
	c.NoiseAmount = clamp(c.NoiseAmount, 0, 1)
	c.ScanlineIntensity = clamp(c.ScanlineIntensity, 0, 1)
	c.GlitchFrequency = clamp(c.GlitchFrequency, 0, 10)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
