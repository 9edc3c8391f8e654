package fx

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/internal/sim"
)

// Simulation grids run below the physical resolution; the compositor
// samples them bilinearly, which also smooths the fields.
const (
	simDownscale = 4
	simGridMin   = 32
)

// maxFrameDelta caps the simulation time step so a stalled loop does not
// integrate one huge unstable step when it resumes.
const maxFrameDelta = 0.1

// Option configures an Effect during creation.
type Option func(*effectOptions)

type effectOptions struct {
	halDevice     hal.Device
	halQueue      hal.Queue
	idleTimeout   time.Duration
	frameInterval time.Duration
}

func defaultEffectOptions() effectOptions {
	return effectOptions{
		idleTimeout:   DefaultIdleTimeout,
		frameInterval: DefaultFrameInterval,
	}
}

// WithHALDevice hands the effect a raw wgpu HAL device and queue, enabling
// the GPU compositor. fx never creates a device of its own; the host owns
// the device and its lifetime.
func WithHALDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *effectOptions) {
		o.halDevice = device
		o.halQueue = queue
	}
}

// WithDeviceProvider extracts a HAL device and queue from a host device
// provider. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue; anything else leaves the effect on
// the CPU path.
func WithDeviceProvider(provider any) Option {
	return func(o *effectOptions) {
		hp, ok := provider.(interface {
			HalDevice() any
			HalQueue() any
		})
		if !ok {
			Logger().Debug("fx: device provider has no HAL accessors, using CPU path")
			return
		}
		device, ok := hp.HalDevice().(hal.Device)
		if !ok {
			Logger().Debug("fx: provider HalDevice is not hal.Device, using CPU path")
			return
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok {
			Logger().Debug("fx: provider HalQueue is not hal.Queue, using CPU path")
			return
		}
		o.halDevice = device
		o.halQueue = queue
	}
}

// WithIdleTimeout sets the pointer idle window. Non-positive values keep
// the default.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *effectOptions) {
		if d > 0 {
			o.idleTimeout = d
		}
	}
}

// WithFrameInterval sets the pacing of the built-in frame loop started by
// Start. Non-positive values keep the default.
func WithFrameInterval(d time.Duration) Option {
	return func(o *effectOptions) {
		if d > 0 {
			o.frameInterval = d
		}
	}
}

// Effect is a running effect instance. It owns the pointer tracker, the
// simulation state, the compositor and the frame loop; Dispose releases all
// of it exactly once.
//
// All simulation and rendering happens on the frame-loop goroutine (or on
// the caller of Step when the host drives frames itself). Pointer events
// may arrive from any goroutine.
type Effect struct {
	kind   Kind
	target *Target

	srcBinding  *binding
	backBinding *binding

	tracker *Tracker
	anim    *animator
	comp    compositor

	mu       sync.Mutex
	cfg      Config
	ripple   *sim.Ripple
	water    *sim.Water
	fluid    *sim.Fluid
	glitch   *sim.Glitch
	start    time.Time
	lastStep time.Time
	lastW    int
	lastH    int

	disposed atomic.Bool
}

// NewRipple creates a ripple effect over source rendered into target.
func NewRipple(target *Target, source Source, cfg RippleConfig, opts ...Option) (*Effect, error) {
	return newEffect(KindRipple, target, source, nil, cfg, opts)
}

// NewWater creates a water simulation effect over source rendered into
// target.
func NewWater(target *Target, source Source, cfg WaterConfig, opts ...Option) (*Effect, error) {
	return newEffect(KindWater, target, source, nil, cfg, opts)
}

// NewFluid creates a fluid trail reveal effect. The pointer trail reveals
// back through top.
func NewFluid(target *Target, top, back Source, cfg FluidConfig, opts ...Option) (*Effect, error) {
	if top == nil && back == nil {
		return nil, fmt.Errorf("%w: fluid needs a top or back source", ErrNoSource)
	}
	return newEffect(KindFluid, target, top, back, cfg, opts)
}

// NewGlitch creates a glitch distortion effect over source rendered into
// target.
func NewGlitch(target *Target, source Source, cfg GlitchConfig, opts ...Option) (*Effect, error) {
	return newEffect(KindGlitch, target, source, nil, cfg, opts)
}

func newEffect(kind Kind, target *Target, source, back Source, cfg Config, opts []Option) (*Effect, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if source == nil && kind != KindFluid {
		return nil, ErrNoSource
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clamped()

	o := defaultEffectOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if fc, ok := cfg.(FluidConfig); ok {
		o.idleTimeout = fc.MovementTimeout
	}

	e := &Effect{
		kind:       kind,
		target:     target,
		srcBinding: newBinding(source),
		tracker:    NewTracker(o.idleTimeout),
		cfg:        cfg,
		start:      time.Now(),
	}
	if back != nil {
		e.backBinding = newBinding(back)
	}
	e.anim = newAnimator(o.frameInterval, func(now time.Time) {
		if err := e.Step(now); err != nil {
			Logger().Debug("fx: frame skipped", "kind", kind.String(), "error", err)
		}
	})

	w, h := target.Size()
	gw, gh := simGridSize(w, h)
	switch kind {
	case KindRipple:
		e.ripple = sim.NewRipple(rippleParams(cfg.(RippleConfig)))
	case KindWater:
		e.water = sim.NewWater(gw, gh, waterParams(cfg.(WaterConfig), w, gw))
	case KindFluid:
		e.fluid = sim.NewFluid(gw, gh, fluidParams(cfg.(FluidConfig)))
	case KindGlitch:
		e.glitch = sim.NewGlitch(glitchParams(cfg.(GlitchConfig)))
	}
	e.lastW, e.lastH = w, h

	e.comp = newCompositor(o.halDevice, o.halQueue)
	Logger().Debug("fx: effect created", "kind", kind.String(), "width", w, "height", h)
	return e, nil
}

// newCompositor selects the GPU path when a HAL device is available and
// falls back to the CPU path otherwise, or when GPU setup fails.
func newCompositor(device hal.Device, queue hal.Queue) compositor {
	if device == nil || queue == nil {
		return softwareCompositor{}
	}
	c, err := newGPUCompositor(device, queue)
	if err != nil {
		Logger().Warn("fx: GPU compositor unavailable, using CPU path", "error", err)
		return softwareCompositor{}
	}
	return c
}

// Kind returns the effect kind.
func (e *Effect) Kind() Kind { return e.kind }

// Target returns the surface the effect renders into.
func (e *Effect) Target() *Target { return e.target }

// Config returns the active configuration snapshot.
func (e *Effect) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Start launches the built-in frame loop. No-op on a disposed effect or
// when already running. Hosts that drive frames themselves call Step
// instead and never Start.
func (e *Effect) Start() {
	if e.disposed.Load() {
		return
	}
	e.anim.Start()
}

// Stop halts the built-in frame loop without releasing anything; Start
// resumes it.
func (e *Effect) Stop() {
	e.anim.Stop()
}

// Step advances the simulation and renders one frame at the given time.
func (e *Effect) Step(now time.Time) error {
	if e.disposed.Load() {
		return ErrDisposed
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var dt float64
	if !e.lastStep.IsZero() {
		dt = clamp(now.Sub(e.lastStep).Seconds(), 0, maxFrameDelta)
	}
	e.lastStep = now

	w, h := e.target.Size()
	if w != e.lastW || h != e.lastH {
		e.resizeLocked(w, h)
	}

	srcChanged := e.srcBinding.refresh(w, h)
	backChanged := false
	if e.backBinding != nil {
		backChanged = e.backBinding.refresh(w, h)
	}

	snap := e.tracker.Snapshot(now)
	switch e.kind {
	case KindRipple:
		e.ripple.Step(dt)
	case KindWater:
		e.water.Step(dt, snap)
	case KindFluid:
		e.fluid.Step(dt, snap)
	case KindGlitch:
		// Pure function of elapsed time, nothing to advance.
	}

	f := &renderFrame{
		kind:        e.kind,
		w:           w,
		h:           h,
		elapsed:     now.Sub(e.start).Seconds(),
		dt:          dt,
		src:         e.srcBinding.image(),
		srcChanged:  srcChanged,
		backChanged: backChanged,
		out:         e.target.Image(),
		ripple:      e.ripple,
		water:       e.water,
		fluid:       e.fluid,
		glitch:      e.glitch,
		pointer:     snap,
	}
	if e.backBinding != nil {
		f.back = e.backBinding.image()
	}
	switch cfg := e.cfg.(type) {
	case WaterConfig:
		f.waterCfg = cfg
	case FluidConfig:
		f.fluidCfg = cfg
	case GlitchConfig:
		f.glitchCfg = cfg
	}

	err := e.comp.Render(f)
	if err != nil {
		if _, cpu := e.comp.(softwareCompositor); !cpu {
			// The CPU kernels stepped above, so the software path can
			// still deliver this frame from the same state.
			Logger().Warn("fx: frame failed, rendering on the CPU", "kind", e.kind.String(), "error", err)
			return softwareCompositor{}.Render(f)
		}
	}
	return err
}

// resizeLocked reallocates resolution-bound state. Simulation history is
// cleared; decay effects restart visibly, which is accepted.
func (e *Effect) resizeLocked(w, h int) {
	gw, gh := simGridSize(w, h)
	switch e.kind {
	case KindWater:
		e.water.Resize(gw, gh)
		e.water.SetParams(waterParams(e.cfg.(WaterConfig), w, gw))
	case KindFluid:
		e.fluid.Resize(gw, gh)
	}
	e.comp.Resize(w, h)
	e.lastW, e.lastH = w, h
	Logger().Debug("fx: effect resized", "kind", e.kind.String(), "width", w, "height", h)
}

// PointerMove records a pointer position in the target's logical
// coordinates (origin top-left, y down, as hosts deliver events).
func (e *Effect) PointerMove(px, py float64) {
	if e.disposed.Load() {
		return
	}
	lw, lh := e.target.LogicalSize()
	nx := px / lw
	ny := 1 - py/lh
	e.tracker.Move(nx, ny, time.Now())

	if e.kind == KindRipple {
		// Every move restarts the pulse; the latest move wins.
		e.mu.Lock()
		e.ripple.Trigger(nx, ny)
		e.mu.Unlock()
	}
}

// PointerLeave marks the pointer as off the surface.
func (e *Effect) PointerLeave() {
	e.tracker.Leave()
}

// ApplyConfig swaps the configuration in place, without tearing down the
// effect or its simulation state. The config must match the effect kind.
func (e *Effect) ApplyConfig(cfg Config) error {
	if e.disposed.Load() {
		return ErrDisposed
	}
	if cfg.Kind() != e.kind {
		return fmt.Errorf("%w: %v config applied to %v effect", ErrConfigKind, cfg.Kind(), e.kind)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	cfg = cfg.clamped()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	switch c := cfg.(type) {
	case RippleConfig:
		e.ripple.SetParams(rippleParams(c))
	case WaterConfig:
		gw, _ := e.water.Size()
		e.water.SetParams(waterParams(c, e.lastW, gw))
	case FluidConfig:
		e.fluid.SetParams(fluidParams(c))
		e.tracker.SetIdleTimeout(c.MovementTimeout)
	case GlitchConfig:
		e.glitch.SetParams(glitchParams(c))
	}
	return nil
}

// Dispose stops the frame loop and releases every owned resource. It is
// idempotent; only the first call does anything, later calls return
// immediately.
func (e *Effect) Dispose() {
	if !e.disposed.CompareAndSwap(false, true) {
		return
	}
	e.anim.Stop()
	e.mu.Lock()
	e.comp.Destroy()
	e.mu.Unlock()
	Logger().Debug("fx: effect disposed", "kind", e.kind.String())
}

// Disposed reports whether Dispose has been called.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}

// simGridSize maps a physical surface size to the simulation grid size.
func simGridSize(w, h int) (int, int) {
	gw := w / simDownscale
	gh := h / simDownscale
	if gw < simGridMin {
		gw = min(w, simGridMin)
	}
	if gh < simGridMin {
		gh = min(h, simGridMin)
	}
	return gw, gh
}

func rippleParams(c RippleConfig) sim.RippleParams {
	return sim.RippleParams{
		Strength:   c.Strength,
		Radius:     c.Radius,
		PulseSpeed: c.PulseSpeed,
		Decay:      c.Decay,
		Frequency:  c.Frequency,
	}
}

// waterParams converts pixel-space radii to simulation grid cells.
func waterParams(c WaterConfig, surfaceW, gridW int) sim.WaterParams {
	scale := 1.0
	if surfaceW > 0 {
		scale = float64(gridW) / float64(surfaceW)
	}
	return sim.WaterParams{
		SimulationSpeed: c.SimulationSpeed,
		EffectRadius:    c.EffectRadius * scale,
		HeadStrength:    c.HeadStrength,
		TailStrength:    c.TailStrength,
		TailWidth:       c.TailWidth * scale,
	}
}

func fluidParams(c FluidConfig) sim.FluidParams {
	return sim.FluidParams{
		Speed:         c.Speed,
		Decay:         c.Decay,
		LineWidth:     c.LineWidth,
		LineIntensity: c.LineIntensity,
	}
}

func glitchParams(c GlitchConfig) sim.GlitchParams {
	return sim.GlitchParams{
		Intensity:         c.Intensity,
		ChromaShift:       c.ChromaShift,
		Displacement:      c.Displacement,
		NoiseAmount:       c.NoiseAmount,
		ScanlineIntensity: c.ScanlineIntensity,
		GlitchFrequency:   c.GlitchFrequency,
		HorrorMode:        c.HorrorMode,
	}
}
