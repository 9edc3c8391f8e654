package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func rippleFrame(w, h int) *Frame {
	f := &Frame{
		Kind:          KindRipple,
		Width:         w,
		Height:        h,
		Source:        make([]byte, w*h*4),
		SourceChanged: true,
		Out:           make([]byte, w*h*4),
	}
	f.Ripple.Amplitude = 0.5
	f.Ripple.Radius = 0.1
	return f
}

func TestCompositorNewDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.sampler == nil {
		t.Error("expected non-nil sampler")
	}
	if c.quadBuf == nil {
		t.Error("expected non-nil quad buffer")
	}

	c.Destroy()
	if c.sampler != nil || c.quadBuf != nil {
		t.Error("expected resources cleared after Destroy")
	}
	// Second Destroy must be a no-op.
	c.Destroy()
}

func TestCompositorRenderRipple(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	f := rippleFrame(64, 48)
	if err := c.Render(f); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c.pipelines[passRipple] == nil {
		t.Error("expected ripple pipeline after first render")
	}
	if c.outTex == nil || c.outTex.width != 64 || c.outTex.height != 48 {
		t.Error("expected 64x48 output texture")
	}
	if c.srcTex == nil {
		t.Error("expected source texture")
	}
	if c.sim.front != nil {
		t.Error("ripple must not allocate simulation textures")
	}

	// Second render reuses the textures.
	out, src := c.outTex, c.srcTex
	f.SourceChanged = false
	if err := c.Render(f); err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if c.outTex != out || c.srcTex != src {
		t.Error("expected textures reused at the same size")
	}
}

func TestCompositorRenderInvalidSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	if err := c.Render(&Frame{Kind: KindRipple, Width: 0, Height: 48}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestCompositorRenderOutputTooSmall(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	f := rippleFrame(64, 48)
	f.Out = make([]byte, 16)
	if err := c.Render(f); err == nil {
		t.Error("expected error for undersized output buffer")
	}
}

func TestCompositorRenderWater(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	const w, h = 64, 48
	f := &Frame{
		Kind:          KindWater,
		Width:         w,
		Height:        h,
		SimWidth:      16,
		SimHeight:     12,
		Source:        make([]byte, w*h*4),
		SourceChanged: true,
		Out:           make([]byte, w*h*4),
	}
	f.Pointer.Active = true
	f.Water.Step = 1

	if err := c.Render(f); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c.sim.front == nil || c.sim.front.width != 16 || c.sim.front.height != 12 {
		t.Fatal("expected 16x12 simulation textures")
	}
	if c.sim.fresh {
		t.Error("expected fresh cleared after first render")
	}
	if c.pipelines[passWaterSim] == nil || c.pipelines[passWaterComposite] == nil {
		t.Error("expected both water pipelines after render")
	}

	// The pair swaps every frame so state advances through both textures.
	front := c.sim.front
	if err := c.Render(f); err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if c.sim.front == front {
		t.Error("expected ping-pong swap between frames")
	}

	// Changing the simulation size resets the pair.
	f.SimWidth, f.SimHeight = 32, 24
	if err := c.Render(f); err != nil {
		t.Fatalf("resized Render failed: %v", err)
	}
	if c.sim.front.width != 32 || c.sim.front.height != 24 {
		t.Error("expected simulation textures recreated at the new size")
	}
}

func TestCompositorRenderFluid(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	const w, h = 64, 48
	f := &Frame{
		Kind:          KindFluid,
		Width:         w,
		Height:        h,
		SimWidth:      16,
		SimHeight:     12,
		Source:        make([]byte, w*h*4),
		SourceChanged: true,
		BackChanged:   true,
		Out:           make([]byte, w*h*4),
	}
	f.Fluid.HasTop = true

	// Back source absent: the compositor uploads zeroed pixels instead.
	if err := c.Render(f); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c.backTex == nil {
		t.Fatal("expected back texture for fluid")
	}
	if c.pipelines[passFluidSim] == nil || c.pipelines[passFluidComposite] == nil {
		t.Error("expected both fluid pipelines after render")
	}

	f.Back = make([]byte, w*h*4)
	f.BackChanged = true
	f.Fluid.HasBack = true
	if err := c.Render(f); err != nil {
		t.Fatalf("Render with back source failed: %v", err)
	}
}

func TestCompositorRenderFluidSubsteps(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	const w, h = 64, 48
	f := &Frame{
		Kind:          KindFluid,
		Width:         w,
		Height:        h,
		SimWidth:      16,
		SimHeight:     12,
		Source:        make([]byte, w*h*4),
		SourceChanged: true,
		Out:           make([]byte, w*h*4),
	}
	f.Pointer = Pointer{X: 0.9, Y: 0.5, PrevX: 0.1, PrevY: 0.5, Active: true}

	if err := c.Render(f); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// An even sub-step count ends on the front texture, so the pair must
	// not swap; an odd count ends on the back and swaps. Either way the
	// front holds the latest state for the next frame.
	front := c.sim.front
	f.Fluid.Speed = 2
	if err := c.Render(f); err != nil {
		t.Fatalf("Render with two sub-steps failed: %v", err)
	}
	if c.sim.front != front {
		t.Error("expected no swap after an even sub-step count")
	}

	f.Fluid.Speed = 3
	if err := c.Render(f); err != nil {
		t.Fatalf("Render with three sub-steps failed: %v", err)
	}
	if c.sim.front == front {
		t.Error("expected a swap after an odd sub-step count")
	}
}

func TestCompositorRenderGlitch(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	const w, h = 64, 48
	f := &Frame{
		Kind:          KindGlitch,
		Width:         w,
		Height:        h,
		Elapsed:       1.25,
		Source:        make([]byte, w*h*4),
		SourceChanged: true,
		Out:           make([]byte, w*h*4),
	}
	f.Glitch.Intensity = 1
	f.Glitch.GlitchFrequency = 1

	if err := c.Render(f); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if c.pipelines[passGlitch] == nil {
		t.Error("expected glitch pipeline after render")
	}
}

func TestCompositorResizeRecreatesTextures(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(device, queue)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	if err := c.Render(rippleFrame(64, 48)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	c.Resize(128, 96)
	if err := c.Render(rippleFrame(128, 96)); err != nil {
		t.Fatalf("Render after resize failed: %v", err)
	}
	if c.outTex.width != 128 || c.outTex.height != 96 {
		t.Errorf("expected 128x96 output texture, got %dx%d", c.outTex.width, c.outTex.height)
	}
}
