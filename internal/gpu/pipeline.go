package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// quadVertexStride is the byte stride per vertex of the fullscreen quad.
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
const quadVertexStride = 16

// quadVertexCount is two triangles covering clip space.
const quadVertexCount = 6

// quadVertexData returns the fullscreen quad with texture coordinates
// (origin top-left, v down).
func quadVertexData() []byte {
	verts := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		1, 1, 1, 0,
		-1, -1, 0, 1,
		1, 1, 1, 0,
		-1, 1, 0, 0,
	}
	return packFloats(verts...)
}

// passKind identifies one of the six render passes.
type passKind int

const (
	passRipple passKind = iota
	passWaterSim
	passWaterComposite
	passFluidSim
	passFluidComposite
	passGlitch
)

// passSpec describes how to build the pipeline for one pass.
type passSpec struct {
	label        string
	source       string
	uniformSize  uint64
	textureCount int
	format       gputypes.TextureFormat
}

func specFor(p passKind) passSpec {
	switch p {
	case passRipple:
		return passSpec{"fx_ripple", rippleShaderSource, rippleUniformSize, 1, gputypes.TextureFormatRGBA8Unorm}
	case passWaterSim:
		return passSpec{"fx_water_sim", waterSimShaderSource, waterSimUniformSize, 1, gputypes.TextureFormatRGBA8Unorm}
	case passWaterComposite:
		return passSpec{"fx_water_composite", waterCompositeShaderSource, waterCompositeUniformSize, 2, gputypes.TextureFormatRGBA8Unorm}
	case passFluidSim:
		return passSpec{"fx_fluid_sim", fluidSimShaderSource, fluidSimUniformSize, 1, gputypes.TextureFormatRGBA8Unorm}
	case passFluidComposite:
		return passSpec{"fx_fluid_composite", fluidCompositeShaderSource, fluidCompositeUniformSize, 3, gputypes.TextureFormatRGBA8Unorm}
	default:
		return passSpec{"fx_glitch", glitchShaderSource, glitchUniformSize, 1, gputypes.TextureFormatRGBA8Unorm}
	}
}

// passPipeline owns the shader, layouts and render pipeline for one pass.
// Bind groups are created per frame by the session.
type passPipeline struct {
	spec       passSpec
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// newPassPipeline compiles the pass shader and creates the render pipeline.
// Bind group layout:
//
//	Binding 0:              uniforms (vertex+fragment)
//	Binding 1..n:           sampled textures (fragment)
//	Binding n+1:            sampler (fragment)
func newPassPipeline(device hal.Device, spec passSpec) (*passPipeline, error) {
	p := &passPipeline{spec: spec}

	shader, err := createShaderModule(device, spec.label+"_shader", spec.source)
	if err != nil {
		return nil, err
	}
	p.shader = shader

	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for i := 0; i < spec.textureCount; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i + 1), //nolint:gosec // texture count is at most 3
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding:    uint32(spec.textureCount + 1), //nolint:gosec // texture count is at most 3
		Visibility: gputypes.ShaderStageFragment,
		Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
	})

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   spec.label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s bind layout: %w", spec.label, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", spec.label, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  spec.label + "_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    spec.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline: %w", spec.label, err)
	}
	p.pipeline = pipeline

	return p, nil
}

// destroy releases pipeline resources in reverse creation order. Safe to
// call on a partially built pipeline.
func (p *passPipeline) destroy(device hal.Device) {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// quadVertexLayout returns the vertex buffer layout shared by every pass.
// Matches VertexInput in the pass shaders:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}
