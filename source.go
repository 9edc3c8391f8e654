package fx

import (
	"image"
	"io"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Source supplies a texture for an effect to distort. Implementations must
// be safe for concurrent use; Frame is called once per rendered frame.
type Source interface {
	// Frame returns the current image and whether it changed since the
	// previous call. A nil image means the source has nothing yet; the
	// effect renders transparent black until one arrives.
	Frame() (image.Image, bool)

	// Dynamic reports whether the image may change between frames. Static
	// sources let the effect skip the per-frame re-upload.
	Dynamic() bool
}

// ImageSource is a Source backed by a single image. Replace swaps the image
// at any time, so it also serves video-like feeds driven by the host.
type ImageSource struct {
	mu      sync.Mutex
	img     image.Image
	changed bool
	dynamic bool
}

// NewImageSource creates a static source from img.
func NewImageSource(img image.Image) *ImageSource {
	return &ImageSource{img: img, changed: img != nil}
}

// NewDynamicSource creates a source the host updates via Replace, for
// feeds like camera or video frames.
func NewDynamicSource() *ImageSource {
	return &ImageSource{dynamic: true}
}

// Replace swaps the source image. The next Frame call reports the change.
func (s *ImageSource) Replace(img image.Image) {
	s.mu.Lock()
	s.img = img
	s.changed = true
	s.mu.Unlock()
}

// Frame implements Source.
func (s *ImageSource) Frame() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.changed
	s.changed = false
	return s.img, changed
}

// Dynamic implements Source.
func (s *ImageSource) Dynamic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamic
}

// DecodeSource decodes an image from r on a background goroutine and
// returns a source that starts empty and flips to the decoded image once
// ready. Decode failures are logged at Warn level and the source stays
// empty, mirroring how a missing texture degrades visually rather than
// failing the effect.
//
// The caller must register the image formats it expects, for example with
// a blank import of image/png.
func DecodeSource(r io.Reader) *ImageSource {
	s := &ImageSource{}
	go func() {
		img, format, err := image.Decode(r)
		if err != nil {
			Logger().Warn("fx: source decode failed", "error", err)
			return
		}
		Logger().Debug("fx: source decoded", "format", format,
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		s.Replace(img)
	}()
	return s
}

// binding caches a source scaled to the target's physical size with
// cover-fit semantics. refresh re-scales only when the source changed or
// the target was resized.
type binding struct {
	source Source
	scaled *image.RGBA
}

func newBinding(source Source) *binding {
	return &binding{source: source}
}

// refresh updates the cached scaled image for a w x h target. It reports
// whether the cached pixels changed.
func (b *binding) refresh(w, h int) bool {
	if b.source == nil || w <= 0 || h <= 0 {
		return false
	}
	img, changed := b.source.Frame()
	if img == nil {
		return false
	}
	resized := b.scaled == nil || b.scaled.Bounds().Dx() != w || b.scaled.Bounds().Dy() != h
	if !changed && !resized {
		return false
	}
	if resized {
		b.scaled = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	src := coverRect(img.Bounds(), w, h)
	xdraw.ApproxBiLinear.Scale(b.scaled, b.scaled.Bounds(), img, src, xdraw.Src, nil)
	return true
}

// image returns the cached scaled image, or nil if no source frame has
// arrived yet.
func (b *binding) image() *image.RGBA {
	return b.scaled
}

// coverRect returns the sub-rectangle of src that cover-fits a dstW x dstH
// surface: the largest centered region with the destination's aspect ratio.
// Scaling that region to the destination fills it completely, cropping the
// overflow axis.
func coverRect(src image.Rectangle, dstW, dstH int) image.Rectangle {
	sw := float64(src.Dx())
	sh := float64(src.Dy())
	if sw <= 0 || sh <= 0 || dstW <= 0 || dstH <= 0 {
		return src
	}
	scale := sw / float64(dstW)
	if s := sh / float64(dstH); s < scale {
		scale = s
	}
	cw := float64(dstW) * scale
	ch := float64(dstH) * scale
	x0 := float64(src.Min.X) + (sw-cw)/2
	y0 := float64(src.Min.Y) + (sh-ch)/2
	return image.Rect(int(x0), int(y0), int(x0+cw), int(y0+ch))
}
