package gpu

import (
	"strings"
	"testing"
)

func TestShaderSourcesEmbedded(t *testing.T) {
	sources := map[string]string{
		"ripple":          rippleShaderSource,
		"water_sim":       waterSimShaderSource,
		"water_composite": waterCompositeShaderSource,
		"fluid_sim":       fluidSimShaderSource,
		"fluid_composite": fluidCompositeShaderSource,
		"glitch":          glitchShaderSource,
	}
	for name, src := range sources {
		if src == "" {
			t.Errorf("%s: shader source is empty", name)
			continue
		}
		if !strings.Contains(src, "vs_main") {
			t.Errorf("%s: missing vs_main entry point", name)
		}
		if !strings.Contains(src, "fs_main") {
			t.Errorf("%s: missing fs_main entry point", name)
		}
		if !strings.Contains(src, "@group(0) @binding(0)") {
			t.Errorf("%s: missing uniform binding", name)
		}
	}
}

func TestCompileShaderToSPIRV(t *testing.T) {
	sources := map[string]string{
		"ripple":          rippleShaderSource,
		"water_sim":       waterSimShaderSource,
		"water_composite": waterCompositeShaderSource,
		"fluid_sim":       fluidSimShaderSource,
		"fluid_composite": fluidCompositeShaderSource,
		"glitch":          glitchShaderSource,
	}
	for name, src := range sources {
		code, err := compileShaderToSPIRV(src)
		if err != nil {
			t.Fatalf("%s: compileShaderToSPIRV failed: %v", name, err)
		}
		if len(code) == 0 {
			t.Fatalf("%s: expected non-empty SPIR-V code", name)
		}
		// SPIR-V modules start with the magic number.
		if code[0] != 0x07230203 {
			t.Errorf("%s: expected SPIR-V magic 0x07230203, got 0x%08x", name, code[0])
		}
	}
}

func TestCreateShaderModuleEmptySource(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := createShaderModule(device, "empty", ""); err == nil {
		t.Error("expected error for empty shader source")
	}
}
