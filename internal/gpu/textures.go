package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture bundles a HAL texture with its view and size. curUsage tracks
// the usage state for barrier insertion; the session updates it on every
// transition.
type texture struct {
	tex      hal.Texture
	view     hal.TextureView
	width    uint32
	height   uint32
	curUsage gputypes.TextureUsage
}

// createTexture creates a texture and its default view.
func createTexture(device hal.Device, label string, w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &texture{tex: tex, view: view, width: w, height: h}, nil
}

// destroy releases the view and texture. Safe on nil.
func (t *texture) destroy(device hal.Device) {
	if t == nil {
		return
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// ensureTexture returns cur if it already has the requested size, otherwise
// destroys it and creates a fresh texture. The second result reports
// whether a new texture was created.
func ensureTexture(device hal.Device, cur *texture, label string, w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, bool, error) {
	if cur != nil && cur.width == w && cur.height == h {
		return cur, false, nil
	}
	cur.destroy(device)
	t, err := createTexture(device, label, w, h, format, usage)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// uploadTexture writes tightly packed RGBA pixels into a texture.
func uploadTexture(queue hal.Queue, t *texture, pixels []byte) {
	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.width * 4,
			RowsPerImage: t.height,
		},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
}
