package fx

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestImageSourceFrame(t *testing.T) {
	img := uniformImage(4, 4, color.RGBA{R: 255, A: 255})
	s := NewImageSource(img)

	got, changed := s.Frame()
	if got != img || !changed {
		t.Error("expected the image reported as changed on first frame")
	}
	if _, changed := s.Frame(); changed {
		t.Error("expected no change on second frame")
	}
	if s.Dynamic() {
		t.Error("expected static source")
	}

	next := uniformImage(4, 4, color.RGBA{G: 255, A: 255})
	s.Replace(next)
	got, changed = s.Frame()
	if got != next || !changed {
		t.Error("expected replacement reported as changed")
	}
}

func TestDynamicSource(t *testing.T) {
	s := NewDynamicSource()
	if !s.Dynamic() {
		t.Error("expected dynamic source")
	}
	if img, _ := s.Frame(); img != nil {
		t.Error("expected nil frame before first Replace")
	}
}

func TestDecodeSource(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, uniformImage(8, 8, color.RGBA{B: 255, A: 255})); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}

	s := DecodeSource(&buf)
	deadline := time.Now().Add(2 * time.Second)
	for {
		img, _ := s.Frame()
		if img != nil {
			if img.Bounds().Dx() != 8 {
				t.Errorf("expected 8px wide image, got %d", img.Bounds().Dx())
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("decoded image never arrived")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDecodeSourceBadData(t *testing.T) {
	s := DecodeSource(bytes.NewReader([]byte("not an image")))
	time.Sleep(50 * time.Millisecond)
	if img, _ := s.Frame(); img != nil {
		t.Error("expected the source to stay empty on decode failure")
	}
}

func TestCoverRect(t *testing.T) {
	tests := []struct {
		name       string
		src        image.Rectangle
		dstW, dstH int
		want       image.Rectangle
	}{
		{"same aspect", image.Rect(0, 0, 100, 50), 200, 100, image.Rect(0, 0, 100, 50)},
		{"wide source", image.Rect(0, 0, 200, 100), 100, 100, image.Rect(50, 0, 150, 100)},
		{"tall source", image.Rect(0, 0, 100, 200), 100, 100, image.Rect(0, 50, 100, 150)},
		{"offset bounds", image.Rect(10, 10, 210, 110), 100, 100, image.Rect(60, 10, 160, 110)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coverRect(tt.src, tt.dstW, tt.dstH); got != tt.want {
				t.Errorf("coverRect(%v, %d, %d) = %v, want %v", tt.src, tt.dstW, tt.dstH, got, tt.want)
			}
		})
	}
}

func TestBindingRefresh(t *testing.T) {
	src := NewImageSource(uniformImage(10, 10, color.RGBA{R: 200, A: 255}))
	b := newBinding(src)

	if !b.refresh(20, 20) {
		t.Fatal("expected first refresh to scale")
	}
	img := b.image()
	if img == nil || img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatal("expected a 20x20 cached image")
	}

	if b.refresh(20, 20) {
		t.Error("expected no work when nothing changed")
	}
	if !b.refresh(40, 40) {
		t.Error("expected rescale after target resize")
	}
	src.Replace(uniformImage(10, 10, color.RGBA{G: 200, A: 255}))
	if !b.refresh(40, 40) {
		t.Error("expected rescale after source replacement")
	}
}

func TestBindingNilSource(t *testing.T) {
	b := newBinding(nil)
	if b.refresh(20, 20) {
		t.Error("expected no work without a source")
	}
	if b.image() != nil {
		t.Error("expected nil image without a source")
	}
}
