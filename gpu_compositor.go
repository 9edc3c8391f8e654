package fx

import (
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/internal/gpu"
	"github.com/gogpu/fx/internal/sim"
)

// gpuCompositor renders frames through the HAL pipeline and reads the
// result back into the target image. It translates between the y-up
// surface coordinates of the public API and the y-down texture space the
// shaders work in.
type gpuCompositor struct {
	comp *gpu.Compositor
}

// newGPUCompositor creates the GPU render path on a host-owned device.
func newGPUCompositor(device hal.Device, queue hal.Queue) (compositor, error) {
	comp, err := gpu.New(device, queue)
	if err != nil {
		return nil, err
	}
	return &gpuCompositor{comp: comp}, nil
}

func (c *gpuCompositor) Resize(w, h int) {
	c.comp.Resize(w, h)
}

func (c *gpuCompositor) Destroy() {
	c.comp.Destroy()
}

func (c *gpuCompositor) Render(f *renderFrame) error {
	if f.out == nil || f.w < 2 || f.h < 2 {
		return nil
	}

	gf := &gpu.Frame{
		Width:   f.w,
		Height:  f.h,
		Elapsed: float32(f.elapsed),
		Pointer: texturePointer(f.pointer),
		Out:     f.out.Pix,
	}
	gf.Source, gf.SourceChanged = imagePixels(f.src, f.srcChanged)
	gf.Back, gf.BackChanged = imagePixels(f.back, f.backChanged)

	switch f.kind {
	case KindRipple:
		gf.Kind = gpu.KindRipple
		gf.Ripple = rippleState(f.ripple)
	case KindWater:
		gf.Kind = gpu.KindWater
		gf.SimWidth, gf.SimHeight = f.water.Size()
		gf.Water = waterState(f)
	case KindFluid:
		gf.Kind = gpu.KindFluid
		gf.SimWidth, gf.SimHeight = f.fluid.Size()
		gf.Fluid = fluidState(f)
	case KindGlitch:
		gf.Kind = gpu.KindGlitch
		gf.Glitch = glitchState(f)
	}

	return c.comp.Render(gf)
}

// texturePointer converts a y-up pointer snapshot to texture space.
func texturePointer(p sim.Pointer) gpu.Pointer {
	return gpu.Pointer{
		X:      float32(p.X),
		Y:      float32(1 - p.Y),
		PrevX:  float32(p.PrevX),
		PrevY:  float32(1 - p.PrevY),
		Speed:  float32(p.Speed),
		Active: p.Active,
	}
}

// imagePixels returns the tightly packed pixels of img, or nil when absent.
// Images allocated by bindings and targets have no row padding.
func imagePixels(img *image.RGBA, changed bool) ([]byte, bool) {
	if img == nil {
		return nil, changed
	}
	return img.Pix, changed
}

// rippleState snapshots the pulse machine. The radial displacement is
// symmetric under the y flip, so converting the center is enough.
func rippleState(r *sim.Ripple) gpu.RippleState {
	cx, cy := r.Center()
	p := r.Params()
	return gpu.RippleState{
		CenterX:    float32(cx),
		CenterY:    float32(1 - cy),
		PulseTime:  float32(r.PulseTime()),
		Amplitude:  float32(r.Amplitude()),
		Strength:   float32(p.Strength),
		Radius:     float32(p.Radius),
		PulseSpeed: float32(p.PulseSpeed),
		Frequency:  float32(p.Frequency),
	}
}

// waterState premultiplies the per-frame injection amounts so the shader
// only evaluates falloffs. Radii convert from surface pixels to simulation
// texture pixels.
func waterState(f *renderFrame) gpu.WaterState {
	cfg := f.waterCfg
	gw, _ := f.water.Size()
	scale := 1.0
	if f.w > 0 {
		scale = float64(gw) / float64(f.w)
	}
	step := f.water.StepSize(f.dt)
	mul := sim.SpeedScale(f.pointer.Speed)
	return gpu.WaterState{
		Step:         float32(step),
		HeadRadiusPx: float32(cfg.EffectRadius * scale),
		HeadAmount:   float32(cfg.HeadStrength * mul * step),
		TailAmount:   float32(cfg.TailStrength * mul * step),
		TailWidthPx:  float32(cfg.TailWidth * scale),
		Refraction:   waterRefraction,
		Reflection:   float32(cfg.Grading.ReflectionIntensity),
		Contrast:     float32(cfg.Grading.Contrast),
		Saturation:   float32(cfg.Grading.Saturation),
		Brightness:   float32(cfg.Grading.Brightness),
		Shadow:       float32(cfg.Grading.ShadowIntensity),
	}
}

func fluidState(f *renderFrame) gpu.FluidState {
	cfg := f.fluidCfg
	return gpu.FluidState{
		Speed:         float32(cfg.Speed),
		Decay:         float32(cfg.Decay),
		LineWidth:     float32(cfg.LineWidth),
		LineIntensity: float32(cfg.LineIntensity),
		Threshold:     float32(cfg.Threshold),
		EdgeWidth:     float32(cfg.EdgeWidth),
		HasTop:        f.src != nil,
		HasBack:       f.back != nil,
	}
}

// glitchState pre-scales the chromatic offset to texture units; the shader
// applies the burst multiplier itself.
func glitchState(f *renderFrame) gpu.GlitchState {
	cfg := f.glitchCfg
	return gpu.GlitchState{
		Intensity:         float32(cfg.Intensity),
		ChromaOffsetUV:    float32(cfg.ChromaShift * cfg.Intensity / float64(f.w)),
		Displacement:      float32(cfg.Displacement),
		NoiseAmount:       float32(cfg.NoiseAmount),
		ScanlineIntensity: float32(cfg.ScanlineIntensity),
		GlitchFrequency:   float32(cfg.GlitchFrequency),
		Horror:            cfg.HorrorMode,
	}
}
