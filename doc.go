// Package fx is an interactive shader-effect runtime for the gogpu family.
//
// fx renders pointer-driven visual effects (ripple distortion, a
// physically-inspired water simulation, a fluid trail reveal, and a glitch
// distortion) into a pixel surface. The host application owns the surface
// and the pointer events; fx owns the simulation state machines, the
// per-frame render loop, and the GPU resource lifecycle.
//
// Each effect is created with a target surface, one or two texture sources,
// and a typed configuration:
//
//	target, _ := fx.NewTarget(800, 600, 1.0)
//	effect, err := fx.NewWater(target, fx.NewImageSource(img), fx.DefaultWaterConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer effect.Dispose()
//
//	effect.Start()          // drive frames internally, or
//	effect.Step(time.Now()) // drive frames from the host loop
//
// Pointer events are forwarded in CSS pixels relative to the surface:
//
//	effect.PointerMove(x, y)
//	effect.PointerLeave()
//
// By default effects render on the CPU. When the host provides a GPU device
// via WithHALDevice or WithDeviceProvider, simulation and compositing run as
// wgpu/hal render passes with ping-pong state textures.
package fx
