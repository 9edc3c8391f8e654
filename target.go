package fx

import (
	"fmt"
	"image"
	"math"
	"sync"
)

// Target is the surface an effect renders into. It tracks a logical size and
// a device pixel ratio; the backing pixel buffer uses the physical size
// round(logical * ratio). The host reads Image after each frame, or uploads
// it to its own presentation path.
type Target struct {
	mu sync.Mutex

	logicalW, logicalH float64
	pixelRatio         float64
	img                *image.RGBA
}

// NewTarget creates a target with the given logical size and device pixel
// ratio. Returns ErrInvalidDimensions for non-positive values.
func NewTarget(logicalW, logicalH, pixelRatio float64) (*Target, error) {
	t := &Target{}
	if err := t.Resize(logicalW, logicalH, pixelRatio); err != nil {
		return nil, err
	}
	return t, nil
}

// Resize changes the logical size or pixel ratio and reallocates the pixel
// buffer at the new physical size. The old buffer contents are discarded.
func (t *Target) Resize(logicalW, logicalH, pixelRatio float64) error {
	if logicalW <= 0 || logicalH <= 0 {
		return fmt.Errorf("%w: logical size %vx%v", ErrInvalidDimensions, logicalW, logicalH)
	}
	if pixelRatio <= 0 {
		return fmt.Errorf("%w: pixel ratio %v", ErrInvalidDimensions, pixelRatio)
	}
	pw := int(math.Round(logicalW * pixelRatio))
	ph := int(math.Round(logicalH * pixelRatio))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.logicalW, t.logicalH = logicalW, logicalH
	t.pixelRatio = pixelRatio
	if t.img == nil || t.img.Bounds().Dx() != pw || t.img.Bounds().Dy() != ph {
		t.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	return nil
}

// Size returns the physical pixel size of the backing buffer.
func (t *Target) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img.Bounds().Dx(), t.img.Bounds().Dy()
}

// LogicalSize returns the logical size the host works in.
func (t *Target) LogicalSize() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logicalW, t.logicalH
}

// PixelRatio returns the device pixel ratio.
func (t *Target) PixelRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixelRatio
}

// Image returns the backing pixel buffer. The effect overwrites it on every
// frame; callers that need a stable copy must make one.
func (t *Target) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}
