package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// simTextureUsage covers both roles of a simulation texture: render target
// of the simulation pass and sampled input of the next pass.
const simTextureUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

// pingPong manages the A/B simulation texture pair. Exactly two textures
// exist; every step reads front and writes back, then swaps. Fresh pairs
// (newly created or resized) must be cleared before the first read, which
// the session does with an empty clear pass; history never survives a
// resize.
type pingPong struct {
	front *texture
	back  *texture
	fresh bool
}

// ensureSize recreates both textures at the given size if needed. Sets
// fresh when the pair was (re)created.
func (p *pingPong) ensureSize(device hal.Device, label string, w, h uint32) error {
	if p.front != nil && p.front.width == w && p.front.height == h {
		return nil
	}
	p.destroy(device)

	front, err := createTexture(device, label+"_a", w, h, gputypes.TextureFormatRGBA8Unorm, simTextureUsage)
	if err != nil {
		return err
	}
	back, err := createTexture(device, label+"_b", w, h, gputypes.TextureFormatRGBA8Unorm, simTextureUsage)
	if err != nil {
		front.destroy(device)
		return err
	}
	p.front = front
	p.back = back
	p.fresh = true
	return nil
}

// swap exchanges front and back after the simulation pass wrote back.
func (p *pingPong) swap() {
	p.front, p.back = p.back, p.front
}

// destroy releases both textures. Safe to call repeatedly.
func (p *pingPong) destroy(device hal.Device) {
	p.front.destroy(device)
	p.back.destroy(device)
	p.front = nil
	p.back = nil
	p.fresh = false
}
