package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the BytesPerRow alignment WebGPU (and DX12)
// require for texture-to-buffer copies.
const copyPitchAlignment = 256

// gpuTimeout bounds the fence wait after each submission.
const gpuTimeout = 5 * time.Second

// Compositor renders effect frames on the GPU and reads the result back to
// CPU pixels. It owns the sampler, the fullscreen quad, the per-pass
// pipelines, the source textures and the simulation ping-pong pair; the
// caller owns the device and queue.
//
// One frame is one submission: optional simulation pass into the back
// texture, ping-pong swap, composite pass into the output texture, copy to
// a staging buffer, fence wait, readback.
type Compositor struct {
	device hal.Device
	queue  hal.Queue

	sampler hal.Sampler
	quadBuf hal.Buffer

	// Lazily created, indexed by passKind.
	pipelines [passGlitch + 1]*passPipeline

	srcTex  *texture
	backTex *texture
	outTex  *texture
	sim     pingPong
}

// New creates a compositor on the given device and queue. Textures and
// pipelines are allocated lazily on the first Render.
func New(device hal.Device, queue hal.Queue) (*Compositor, error) {
	c := &Compositor{device: device, queue: queue}

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fx_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	c.sampler = sampler

	quadBuf, err := c.createAndUploadBuffer("fx_quad", quadVertexData(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		c.Destroy()
		return nil, err
	}
	c.quadBuf = quadBuf

	return c, nil
}

// Resize is a no-op: size-dependent textures are recreated lazily on the
// next Render when the frame dimensions change.
func (c *Compositor) Resize(_, _ int) {}

// Destroy releases every GPU resource the compositor owns. Safe to call
// multiple times; the device and queue stay untouched.
func (c *Compositor) Destroy() {
	c.sim.destroy(c.device)
	c.srcTex.destroy(c.device)
	c.srcTex = nil
	c.backTex.destroy(c.device)
	c.backTex = nil
	c.outTex.destroy(c.device)
	c.outTex = nil
	for i, p := range c.pipelines {
		p.destroy(c.device)
		c.pipelines[i] = nil
	}
	if c.quadBuf != nil {
		c.device.DestroyBuffer(c.quadBuf)
		c.quadBuf = nil
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
}

// Render executes one frame and fills f.Out with the rendered pixels.
func (c *Compositor) Render(f *Frame) error {
	if f.Width < 1 || f.Height < 1 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	w, h := uint32(f.Width), uint32(f.Height) //nolint:gosec // surface sizes fit uint32

	if err := c.ensureFrameTextures(f, w, h); err != nil {
		return err
	}

	switch f.Kind {
	case KindRipple:
		return c.renderSinglePass(f, passRipple, makeRippleUniform(f), w, h)
	case KindGlitch:
		return c.renderSinglePass(f, passGlitch, makeGlitchUniform(f), w, h)
	case KindWater:
		return c.renderWater(f, w, h)
	case KindFluid:
		return c.renderFluid(f, w, h)
	default:
		return fmt.Errorf("unknown effect kind %d", f.Kind)
	}
}

// ensureFrameTextures creates or resizes the output, source and simulation
// textures for this frame and uploads changed source pixels.
func (c *Compositor) ensureFrameTextures(f *Frame, w, h uint32) error {
	outTex, created, err := ensureTexture(c.device, c.outTex, "fx_out", w, h,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	if created {
		outTex.curUsage = gputypes.TextureUsageRenderAttachment
	}
	c.outTex = outTex

	srcTex, created, err := ensureTexture(c.device, c.srcTex, "fx_source", w, h,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	c.srcTex = srcTex
	if created || f.SourceChanged {
		c.uploadOrClear(srcTex, f.Source)
	}

	if f.Kind == KindFluid {
		backTex, created, err := ensureTexture(c.device, c.backTex, "fx_back", w, h,
			gputypes.TextureFormatRGBA8Unorm,
			gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
		if err != nil {
			return err
		}
		c.backTex = backTex
		if created || f.BackChanged {
			c.uploadOrClear(backTex, f.Back)
		}
	}

	if f.Kind == KindWater || f.Kind == KindFluid {
		if f.SimWidth < 1 || f.SimHeight < 1 {
			return fmt.Errorf("invalid simulation size %dx%d", f.SimWidth, f.SimHeight)
		}
		sw, sh := uint32(f.SimWidth), uint32(f.SimHeight) //nolint:gosec // grid sizes fit uint32
		if err := c.sim.ensureSize(c.device, "fx_sim", sw, sh); err != nil {
			return err
		}
	}
	return nil
}

// uploadOrClear uploads source pixels, or zeroes the texture when the
// source has not decoded yet so stale pixels never show.
func (c *Compositor) uploadOrClear(t *texture, pixels []byte) {
	need := int(t.width) * int(t.height) * 4
	if len(pixels) != need {
		pixels = make([]byte, need)
	}
	uploadTexture(c.queue, t, pixels)
}

// pipeline lazily builds the pipeline for a pass.
func (c *Compositor) pipeline(p passKind) (*passPipeline, error) {
	if c.pipelines[p] != nil {
		return c.pipelines[p], nil
	}
	pipe, err := newPassPipeline(c.device, specFor(p))
	if err != nil {
		return nil, err
	}
	c.pipelines[p] = pipe
	return pipe, nil
}

// renderSinglePass runs the ripple and glitch path: one pass sampling the
// source texture straight into the output.
func (c *Compositor) renderSinglePass(f *Frame, pass passKind, uniform []byte, w, h uint32) error {
	pipe, err := c.pipeline(pass)
	if err != nil {
		return err
	}

	uniformBuf, bindGroup, err := c.frameBindGroup(pipe, uniform, []hal.TextureView{c.srcTex.view})
	if err != nil {
		return err
	}
	defer c.device.DestroyBindGroup(bindGroup)
	defer c.device.DestroyBuffer(uniformBuf)

	return c.encodeAndSubmit(f, w, h, func(encoder hal.CommandEncoder) {
		rp := encoder.BeginRenderPass(c.outputPassDescriptor(pipe.spec.label))
		c.recordQuad(rp, pipe, bindGroup)
		rp.End()
	})
}

// renderWater runs the simulation pass into the back texture, swaps, then
// composites the fresh state with the refracted source.
func (c *Compositor) renderWater(f *Frame, w, h uint32) error {
	simPipe, err := c.pipeline(passWaterSim)
	if err != nil {
		return err
	}
	compPipe, err := c.pipeline(passWaterComposite)
	if err != nil {
		return err
	}

	simBuf, simGroup, err := c.frameBindGroup(simPipe, makeWaterSimUniform(f), []hal.TextureView{c.sim.front.view})
	if err != nil {
		return err
	}
	defer c.device.DestroyBindGroup(simGroup)
	defer c.device.DestroyBuffer(simBuf)

	compBuf, compGroup, err := c.frameBindGroup(compPipe, makeWaterCompositeUniform(f),
		[]hal.TextureView{c.sim.back.view, c.srcTex.view})
	if err != nil {
		return err
	}
	defer c.device.DestroyBindGroup(compGroup)
	defer c.device.DestroyBuffer(compBuf)

	// Zero pressure and velocity encode as mid-gray under the biased
	// signed mapping.
	zeroState := gputypes.Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}

	err = c.encodeAndSubmit(f, w, h, func(encoder hal.CommandEncoder) {
		c.clearFreshSim(encoder, zeroState)
		c.encodeSimStep(encoder, simPipe, simGroup, c.sim.front, c.sim.back)
		c.encodeCompositePass(encoder, compPipe, compGroup)
	})
	if err == nil {
		c.sim.swap()
	}
	return err
}

// renderFluid runs one trail pass per sub-step, ping-ponging through the
// pair, then blends top and back images by the revealed trail.
func (c *Compositor) renderFluid(f *Frame, w, h uint32) error {
	simPipe, err := c.pipeline(passFluidSim)
	if err != nil {
		return err
	}
	compPipe, err := c.pipeline(passFluidComposite)
	if err != nil {
		return err
	}

	// Each sub-step samples the texture the previous one wrote, so the
	// bind groups alternate between the pair. After the loop read points
	// at the texture holding the final state.
	steps := fluidSubsteps(f)
	simGroups := make([]hal.BindGroup, steps)
	read := c.sim.front
	for i := 0; i < steps; i++ {
		t0 := float32(i) / float32(steps)
		t1 := float32(i+1) / float32(steps)
		buf, group, err := c.frameBindGroup(simPipe, makeFluidSimUniform(f, t0, t1),
			[]hal.TextureView{read.view})
		if err != nil {
			return err
		}
		defer c.device.DestroyBindGroup(group)
		defer c.device.DestroyBuffer(buf)
		simGroups[i] = group
		if read == c.sim.front {
			read = c.sim.back
		} else {
			read = c.sim.front
		}
	}

	compBuf, compGroup, err := c.frameBindGroup(compPipe, makeFluidCompositeUniform(f),
		[]hal.TextureView{read.view, c.srcTex.view, c.backTex.view})
	if err != nil {
		return err
	}
	defer c.device.DestroyBindGroup(compGroup)
	defer c.device.DestroyBuffer(compBuf)

	err = c.encodeAndSubmit(f, w, h, func(encoder hal.CommandEncoder) {
		c.clearFreshSim(encoder, gputypes.Color{R: 0, G: 0, B: 0, A: 1})
		src, dst := c.sim.front, c.sim.back
		for _, group := range simGroups {
			c.encodeSimStep(encoder, simPipe, group, src, dst)
			src, dst = dst, src
		}
		c.encodeCompositePass(encoder, compPipe, compGroup)
	})
	// An odd sub-step count leaves the final state in the back texture;
	// swap so the front always holds the latest state.
	if err == nil && steps%2 == 1 {
		c.sim.swap()
	}
	return err
}

// clearFreshSim zeroes a newly created simulation pair with empty clear
// passes so the first simulation step reads defined state.
func (c *Compositor) clearFreshSim(encoder hal.CommandEncoder, clear gputypes.Color) {
	if !c.sim.fresh {
		return
	}
	for _, t := range []*texture{c.sim.front, c.sim.back} {
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "fx_sim_clear",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       t.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear,
			}},
		})
		rp.End()
		t.curUsage = gputypes.TextureUsageRenderAttachment
	}
	c.sim.fresh = false
}

// encodeSimStep renders one simulation step from read into write.
func (c *Compositor) encodeSimStep(encoder hal.CommandEncoder, pipe *passPipeline, bindGroup hal.BindGroup, read, write *texture) {
	c.transition(encoder, read, gputypes.TextureUsageTextureBinding)
	c.transition(encoder, write, gputypes.TextureUsageRenderAttachment)

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: pipe.spec.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       write.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	c.recordQuad(rp, pipe, bindGroup)
	rp.End()

	// The freshly written state is sampled by the next step or the
	// composite pass.
	c.transition(encoder, write, gputypes.TextureUsageTextureBinding)
}

// encodeCompositePass renders the final color into the output texture.
func (c *Compositor) encodeCompositePass(encoder hal.CommandEncoder, pipe *passPipeline, bindGroup hal.BindGroup) {
	rp := encoder.BeginRenderPass(c.outputPassDescriptor(pipe.spec.label))
	c.recordQuad(rp, pipe, bindGroup)
	rp.End()
}

func (c *Compositor) outputPassDescriptor(label string) *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: label + "_out",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       c.outTex.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	}
}

// recordQuad records the fullscreen draw for one pass.
func (c *Compositor) recordQuad(rp hal.RenderPassEncoder, pipe *passPipeline, bindGroup hal.BindGroup) {
	rp.SetPipeline(pipe.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, c.quadBuf, 0)
	rp.Draw(quadVertexCount, 1, 0, 0)
}

// transition inserts a usage barrier when the tracked usage differs.
func (c *Compositor) transition(encoder hal.CommandEncoder, t *texture, usage gputypes.TextureUsage) {
	if t.curUsage == usage {
		return
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: t.curUsage,
			NewUsage: usage,
		},
	}})
	t.curUsage = usage
}

// frameBindGroup creates the per-frame uniform buffer and bind group for a
// pass. The caller destroys both after submission.
func (c *Compositor) frameBindGroup(pipe *passPipeline, uniform []byte, views []hal.TextureView) (hal.Buffer, hal.BindGroup, error) {
	uniformBuf, err := c.createAndUploadBuffer(pipe.spec.label+"_uniform", uniform,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, nil, err
	}

	entries := []gputypes.BindGroupEntry{{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: pipe.spec.uniformSize,
		},
	}}
	for i, view := range views {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i + 1), //nolint:gosec // at most 3 textures
			Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()},
		})
	}
	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  uint32(len(views) + 1), //nolint:gosec // at most 3 textures
		Resource: gputypes.SamplerBinding{Sampler: c.sampler.NativeHandle()},
	})

	bindGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   pipe.spec.label + "_bind",
		Layout:  pipe.bindLayout,
		Entries: entries,
	})
	if err != nil {
		c.device.DestroyBuffer(uniformBuf)
		return nil, nil, fmt.Errorf("create %s bind group: %w", pipe.spec.label, err)
	}
	return uniformBuf, bindGroup, nil
}

// encodeAndSubmit wraps pass encoding with the shared frame choreography:
// begin encoding, record passes, copy the output to an aligned staging
// buffer, submit with a fence, wait and read back into f.Out.
func (c *Compositor) encodeAndSubmit(f *Frame, w, h uint32, record func(encoder hal.CommandEncoder)) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "fx_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fx_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	record(encoder)

	// WebGPU (and DX12) require BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingBufSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fx_staging",
		Size:  stagingBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(stagingBuf)

	c.transition(encoder, c.outTex, gputypes.TextureUsageCopySrc)
	encoder.CopyTextureToBuffer(c.outTex.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: c.outTex.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	c.transition(encoder, c.outTex, gputypes.TextureUsageRenderAttachment)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingBufSize)
	if err := c.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// Strip per-row padding into the tightly packed destination.
	if len(f.Out) < int(bytesPerRow)*int(h) {
		return fmt.Errorf("output buffer too small: %d < %d", len(f.Out), int(bytesPerRow)*int(h))
	}
	if alignedBytesPerRow == bytesPerRow {
		copy(f.Out, readback[:int(bytesPerRow)*int(h)])
	} else {
		for row := uint32(0); row < h; row++ {
			srcOff := int(row) * int(alignedBytesPerRow)
			dstOff := int(row) * int(bytesPerRow)
			copy(f.Out[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
		}
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (c *Compositor) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	c.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
