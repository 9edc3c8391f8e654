// Command fxdemo runs each effect against a generated backdrop and writes
// the rendered frames as PNG files. It drives the frame loop manually with
// a synthetic pointer path, so the output is deterministic enough to eyeball
// regressions.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/fx"
)

func main() {
	var (
		width   = flag.Int("width", 640, "surface width")
		height  = flag.Int("height", 480, "surface height")
		frames  = flag.Int("frames", 90, "frames to simulate per effect")
		outDir  = flag.String("out", "frames", "output directory")
		effect  = flag.String("effect", "all", "effect to run: ripple, water, fluid, glitch, all")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		fx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	kinds := []string{"ripple", "water", "fluid", "glitch"}
	if *effect != "all" {
		kinds = []string{*effect}
	}
	for _, kind := range kinds {
		if err := runEffect(kind, *width, *height, *frames, *outDir); err != nil {
			log.Fatalf("%s: %v", kind, err)
		}
	}
}

func runEffect(kind string, w, h, frames int, outDir string) error {
	target, err := fx.NewTarget(float64(w), float64(h), 1)
	if err != nil {
		return err
	}
	source := fx.NewImageSource(backdrop(w, h))

	var e *fx.Effect
	switch kind {
	case "ripple":
		e, err = fx.NewRipple(target, source, fx.DefaultRippleConfig())
	case "water":
		e, err = fx.NewWater(target, source, fx.DefaultWaterConfig())
	case "fluid":
		e, err = fx.NewFluid(target, source, fx.NewImageSource(hiddenLayer(w, h)), fx.DefaultFluidConfig())
	case "glitch":
		cfg := fx.DefaultGlitchConfig()
		cfg.HorrorMode = true
		e, err = fx.NewGlitch(target, source, cfg)
	default:
		return fmt.Errorf("unknown effect %q", kind)
	}
	if err != nil {
		return err
	}
	defer e.Dispose()

	// Sweep the pointer along a lissajous path and step at a fixed 60 Hz.
	start := time.Now()
	const dt = time.Second / 60
	for i := 0; i < frames; i++ {
		now := start.Add(time.Duration(i) * dt)
		t := float64(i) / 60
		px := (0.5 + 0.35*math.Sin(t*2.1)) * float64(w)
		py := (0.5 + 0.35*math.Sin(t*1.3)) * float64(h)
		e.PointerMove(px, py)
		if err := e.Step(now); err != nil {
			return err
		}
	}

	name := filepath.Join(outDir, kind+".png")
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, target.Image()); err != nil {
		return err
	}
	log.Printf("wrote %s (%dx%d, %d frames)", name, w, h, frames)
	return nil
}

// backdrop draws a color-wheel style gradient with grid lines so every
// distortion is visible.
func backdrop(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := float64(x) / float64(w-1)
			v := float64(y) / float64(h-1)
			c := color.RGBA{
				R: uint8(255 * u),
				G: uint8(255 * v),
				B: uint8(255 * (1 - u) * (1 - v)),
				A: 255,
			}
			if x%40 == 0 || y%40 == 0 {
				c = color.RGBA{R: 32, G: 32, B: 32, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// hiddenLayer is the image the fluid trail reveals.
func hiddenLayer(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if ((x/20)+(y/20))%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: 255, A: 255})
		}
	}
	return img
}
