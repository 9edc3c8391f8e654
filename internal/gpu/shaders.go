// Package gpu implements the GPU compositor for the fx effects on top of
// the wgpu HAL. Simulation state lives in ping-pong texture pairs advanced
// by render passes; a composite pass samples the fresh state plus the
// source textures and the result is read back to the CPU surface.
package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources, one per render pass.

//go:embed shaders/ripple.wgsl
var rippleShaderSource string

//go:embed shaders/water_sim.wgsl
var waterSimShaderSource string

//go:embed shaders/water_composite.wgsl
var waterCompositeShaderSource string

//go:embed shaders/fluid_sim.wgsl
var fluidSimShaderSource string

//go:embed shaders/fluid_composite.wgsl
var fluidCompositeShaderSource string

//go:embed shaders/glitch.wgsl
var glitchShaderSource string

// compileShaderToSPIRV compiles WGSL source to a SPIR-V uint32 slice.
// SPIR-V is little-endian 32-bit words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// createShaderModule compiles WGSL through naga and wraps it in a HAL
// shader module.
func createShaderModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	if wgslSource == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}
	spirvCode, err := compileShaderToSPIRV(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirvCode,
		},
	})
}
