package fx

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/fx/internal/sim"
)

// waterRefraction scales how far the pressure gradient displaces the source
// sampling coordinate, in normalized surface units per unit gradient.
const waterRefraction = 0.35

// renderFrame carries everything a compositor needs for one frame. Only the
// fields of the active kind are populated.
type renderFrame struct {
	kind    Kind
	w, h    int
	elapsed float64
	dt      float64

	src         *image.RGBA
	back        *image.RGBA
	out         *image.RGBA
	srcChanged  bool
	backChanged bool

	waterCfg  WaterConfig
	fluidCfg  FluidConfig
	glitchCfg GlitchConfig

	ripple *sim.Ripple
	water  *sim.Water
	fluid  *sim.Fluid
	glitch *sim.Glitch

	pointer sim.Pointer
}

// compositor turns simulation state into target pixels. The CPU
// implementation always works; the GPU implementation is selected when the
// host hands fx a usable HAL device.
type compositor interface {
	Render(f *renderFrame) error
	Resize(w, h int)
	Destroy()
}

// softwareCompositor renders on the CPU. It holds no resources; all state
// lives in the frame.
type softwareCompositor struct{}

func (softwareCompositor) Resize(int, int) {}

func (softwareCompositor) Destroy() {}

func (c softwareCompositor) Render(f *renderFrame) error {
	if f.out == nil || f.w < 2 || f.h < 2 {
		return nil
	}
	switch f.kind {
	case KindRipple:
		c.renderRipple(f)
	case KindWater:
		c.renderWater(f)
	case KindFluid:
		c.renderFluid(f)
	case KindGlitch:
		c.renderGlitch(f)
	}
	return nil
}

func (softwareCompositor) renderRipple(f *renderFrame) {
	if f.src == nil {
		clearImage(f.out)
		return
	}
	eachPixel(f.out, f.w, f.h, func(i int, u, v float64) {
		du, dv := f.ripple.Offset(u, v)
		r, g, b, a := sampleImage(f.src, u+du, v+dv)
		putPixel(f.out, i, r, g, b, a)
	})
}

func (softwareCompositor) renderWater(f *renderFrame) {
	if f.src == nil {
		clearImage(f.out)
		return
	}
	grading := f.waterCfg.Grading
	pres := f.water.Pressure()
	gradX := f.water.GradX()
	gradY := f.water.GradY()

	// Light direction for the fake specular term, normalized.
	const lx, ly = 0.53, 0.848

	eachPixel(f.out, f.w, f.h, func(i int, u, v float64) {
		gx := float64(gradX.Sample(u, v))
		gy := float64(gradY.Sample(u, v))
		p := float64(pres.Sample(u, v))

		r, g, b, a := sampleImage(f.src, u-gx*waterRefraction, v-gy*waterRefraction)

		highlight := math.Max(0, gx*lx+gy*ly) * grading.ReflectionIntensity
		shade := p * grading.ShadowIntensity
		r += highlight + shade
		g += highlight + shade
		b += highlight + shade

		r = (r-0.5)*grading.Contrast + 0.5
		g = (g-0.5)*grading.Contrast + 0.5
		b = (b-0.5)*grading.Contrast + 0.5

		if grading.Saturation != 1 {
			col := colorful.Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
			hh, ss, ll := col.Hsl()
			col = colorful.Hsl(hh, clamp01(ss*grading.Saturation), ll)
			r, g, b = col.R, col.G, col.B
		}

		r *= grading.Brightness
		g *= grading.Brightness
		b *= grading.Brightness
		putPixel(f.out, i, r, g, b, a)
	})
}

func (softwareCompositor) renderFluid(f *renderFrame) {
	trail := f.fluid.Trail()
	threshold := f.fluidCfg.Threshold
	edge := f.fluidCfg.EdgeWidth

	eachPixel(f.out, f.w, f.h, func(i int, u, v float64) {
		reveal := sim.Reveal(float64(trail.Sample(u, v)), threshold, edge)

		var tr, tg, tb, ta float64
		if f.src != nil {
			tr, tg, tb, ta = sampleImage(f.src, u, v)
		}
		var br, bg, bb, ba float64
		if f.back != nil {
			br, bg, bb, ba = sampleImage(f.back, u, v)
		}
		putPixel(f.out, i,
			mix(tr, br, reveal),
			mix(tg, bg, reveal),
			mix(tb, bb, reveal),
			mix(ta, ba, reveal))
	})
}

func (softwareCompositor) renderGlitch(f *renderFrame) {
	if f.src == nil {
		clearImage(f.out)
		return
	}
	g := f.glitch
	t := f.elapsed
	chroma := g.ChromaOffset(t) / float64(f.w)
	desat := g.Desaturation()
	invert := g.InvertFlash(t)

	eachPixel(f.out, f.w, f.h, func(i int, u, v float64) {
		wu, wv := g.Warp(u, v, t)

		cr, _, _, a := sampleImage(f.src, wu+chroma, wv)
		_, cg, _, _ := sampleImage(f.src, wu, wv)
		_, _, cb, _ := sampleImage(f.src, wu-chroma, wv)

		n := g.Noise(u, v, t)
		cr += n
		cg += n
		cb += n

		scan := g.Scanline(v, f.h)
		cr *= scan
		cg *= scan
		cb *= scan

		if invert {
			cr, cg, cb = 1-cr, 1-cg, 1-cb
		}
		if desat > 0 {
			col := colorful.Color{R: clamp01(cr), G: clamp01(cg), B: clamp01(cb)}
			hh, ss, ll := col.Hsl()
			col = colorful.Hsl(hh, ss*(1-desat), ll)
			cr, cg, cb = col.R, col.G, col.B
		}
		putPixel(f.out, i, cr, cg, cb, a)
	})
}

// eachPixel walks the output in row order, handing the callback the pixel
// offset and the normalized y-up coordinate of the pixel center.
func eachPixel(out *image.RGBA, w, h int, fn func(i int, u, v float64)) {
	sx := 1 / float64(w-1)
	sy := 1 / float64(h-1)
	for y := 0; y < h; y++ {
		v := 1 - float64(y)*sy
		row := out.PixOffset(0, y)
		for x := 0; x < w; x++ {
			fn(row+x*4, float64(x)*sx, v)
		}
	}
}

// sampleImage bilinearly samples img at a normalized y-up coordinate,
// clamping to the edge. Channels are returned in 0..1.
func sampleImage(img *image.RGBA, u, v float64) (r, g, b, a float64) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	px := clamp(u, 0, 1) * float64(w-1)
	py := (1 - clamp(v, 0, 1)) * float64(h-1)

	x0 := int(px)
	y0 := int(py)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	tx := px - float64(x0)
	ty := py - float64(y0)

	r00, g00, b00, a00 := texel(img, x0, y0)
	r10, g10, b10, a10 := texel(img, x1, y0)
	r01, g01, b01, a01 := texel(img, x0, y1)
	r11, g11, b11, a11 := texel(img, x1, y1)

	r = mix(mix(r00, r10, tx), mix(r01, r11, tx), ty)
	g = mix(mix(g00, g10, tx), mix(g01, g11, tx), ty)
	b = mix(mix(b00, b10, tx), mix(b01, b11, tx), ty)
	a = mix(mix(a00, a10, tx), mix(a01, a11, tx), ty)
	return r, g, b, a
}

func texel(img *image.RGBA, x, y int) (r, g, b, a float64) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return float64(p[0]) / 255, float64(p[1]) / 255, float64(p[2]) / 255, float64(p[3]) / 255
}

func putPixel(out *image.RGBA, i int, r, g, b, a float64) {
	p := out.Pix[i : i+4 : i+4]
	p[0] = uint8(clamp01(r)*255 + 0.5)
	p[1] = uint8(clamp01(g)*255 + 0.5)
	p[2] = uint8(clamp01(b)*255 + 0.5)
	p[3] = uint8(clamp01(a)*255 + 0.5)
}

func clearImage(out *image.RGBA) {
	for i := range out.Pix {
		out.Pix[i] = 0
	}
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func mix(a, b, t float64) float64 { return a + (b-a)*t }
