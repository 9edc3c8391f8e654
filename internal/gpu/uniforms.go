package gpu

import (
	"encoding/binary"
	"math"
)

// Kind selects which effect pipeline a frame uses.
type Kind int

const (
	KindRipple Kind = iota
	KindWater
	KindFluid
	KindGlitch
)

// Pointer is the per-frame pointer snapshot in texture-space coordinates
// (origin top-left, v down). The caller converts from surface coordinates
// before upload.
type Pointer struct {
	X, Y         float32
	PrevX, PrevY float32
	Speed        float32
	Active       bool
}

// RippleState drives the ripple pass. The pulse state machine runs on the
// CPU; the shader only evaluates the displacement.
type RippleState struct {
	CenterX, CenterY float32
	PulseTime        float32
	Amplitude        float32
	Strength         float32
	Radius           float32
	PulseSpeed       float32
	Frequency        float32
}

// WaterState drives the water simulation and composite passes. Step is the
// premultiplied integrator step for this frame; radii and widths are in
// simulation texture pixels.
type WaterState struct {
	Step         float32
	HeadRadiusPx float32
	HeadAmount   float32
	TailAmount   float32
	TailWidthPx  float32
	Refraction   float32

	Reflection float32
	Contrast   float32
	Saturation float32
	Brightness float32
	Shadow     float32
}

// FluidState drives the fluid simulation and composite passes. LineWidth,
// Threshold and EdgeWidth are in normalized surface units. Speed above 1
// splits the pointer segment into that many simulation sub-steps per frame.
type FluidState struct {
	Speed         float32
	Decay         float32
	LineWidth     float32
	LineIntensity float32
	Threshold     float32
	EdgeWidth     float32
	HasTop        bool
	HasBack       bool
}

// GlitchState drives the glitch pass. ChromaOffsetUV is the chromatic
// channel offset already converted to texture units.
type GlitchState struct {
	Intensity         float32
	ChromaOffsetUV    float32
	Displacement      float32
	NoiseAmount       float32
	ScanlineIntensity float32
	GlitchFrequency   float32
	Horror            bool
}

// Frame describes one frame for Compositor.Render. Source and Back are
// tightly packed RGBA rows at the surface size; Out receives the rendered
// pixels, same layout.
type Frame struct {
	Kind          Kind
	Width, Height int

	// Simulation texture size for the dual-buffer effects.
	SimWidth, SimHeight int

	Elapsed float32

	Source        []byte
	SourceChanged bool
	Back          []byte
	BackChanged   bool

	Pointer Pointer
	Ripple  RippleState
	Water   WaterState
	Fluid   FluidState
	Glitch  GlitchState

	Out []byte
}

// Uniform buffer sizes per pass, vec4-packed to match the WGSL structs.
const (
	rippleUniformSize         = 32
	waterSimUniformSize       = 48
	waterCompositeUniformSize = 32
	fluidSimUniformSize       = 32
	fluidCompositeUniformSize = 16
	glitchUniformSize         = 48
)

// packFloats serializes float32 values as little-endian bytes for GPU
// upload.
func packFloats(vals ...float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func boolFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func makeRippleUniform(f *Frame) []byte {
	r := f.Ripple
	return packFloats(
		r.CenterX, r.CenterY, r.PulseTime, r.Amplitude,
		r.Strength, r.Radius, r.PulseSpeed, r.Frequency,
	)
}

func makeWaterSimUniform(f *Frame) []byte {
	w := f.Water
	p := f.Pointer
	texelX := float32(1) / float32(f.SimWidth)
	texelY := float32(1) / float32(f.SimHeight)
	return packFloats(
		p.X, p.Y, p.PrevX, p.PrevY,
		w.Step, w.HeadRadiusPx, w.HeadAmount, w.TailAmount,
		w.TailWidthPx, texelX, texelY, boolFloat(p.Active),
	)
}

func makeWaterCompositeUniform(f *Frame) []byte {
	w := f.Water
	return packFloats(
		w.Reflection, w.Contrast, w.Saturation, w.Brightness,
		w.Shadow, w.Refraction, 0, 0,
	)
}

// fluidSubsteps returns how many trail passes a fluid frame runs. Speed
// above 1 splits the pointer segment so fast strokes stay continuous.
func fluidSubsteps(f *Frame) int {
	steps := int(math.Ceil(float64(f.Fluid.Speed)))
	if steps < 1 {
		steps = 1
	}
	return steps
}

// makeFluidSimUniform packs one sub-step of the trail pass. The [t0, t1]
// range selects the slice of the previous-to-current pointer segment this
// sub-step injects along.
func makeFluidSimUniform(f *Frame, t0, t1 float32) []byte {
	fl := f.Fluid
	p := f.Pointer
	return packFloats(
		p.PrevX+(p.X-p.PrevX)*t0, p.PrevY+(p.Y-p.PrevY)*t0,
		p.PrevX+(p.X-p.PrevX)*t1, p.PrevY+(p.Y-p.PrevY)*t1,
		fl.Decay, fl.LineWidth, fl.LineIntensity, boolFloat(p.Active),
	)
}

func makeFluidCompositeUniform(f *Frame) []byte {
	fl := f.Fluid
	return packFloats(
		fl.Threshold, fl.EdgeWidth, boolFloat(fl.HasTop), boolFloat(fl.HasBack),
	)
}

func makeGlitchUniform(f *Frame) []byte {
	g := f.Glitch
	return packFloats(
		f.Elapsed, g.Intensity, g.ChromaOffsetUV, g.Displacement,
		g.NoiseAmount, g.ScanlineIntensity, g.GlitchFrequency, boolFloat(g.Horror),
		float32(f.Height), 0, 0, 0,
	)
}
