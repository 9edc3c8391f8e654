package fx

import (
	"errors"
	"testing"
	"time"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindRipple, "ripple"},
		{KindWater, "water"},
		{KindFluid, "fluid"},
		{KindGlitch, "glitch"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestDefaultConfigsValid(t *testing.T) {
	configs := []Config{
		DefaultRippleConfig(),
		DefaultWaterConfig(),
		DefaultFluidConfig(),
		DefaultGlitchConfig(),
	}
	kinds := []Kind{KindRipple, KindWater, KindFluid, KindGlitch}
	for i, cfg := range configs {
		if err := cfg.validate(); err != nil {
			t.Errorf("%v default config invalid: %v", kinds[i], err)
		}
		if cfg.Kind() != kinds[i] {
			t.Errorf("expected kind %v, got %v", kinds[i], cfg.Kind())
		}
		// Defaults must survive clamping unchanged.
		if cfg.clamped() != cfg {
			t.Errorf("%v default config altered by clamping", kinds[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"ripple zero decay", RippleConfig{Radius: 0.3}},
		{"ripple zero radius", RippleConfig{Decay: 1}},
		{"water zero speed", WaterConfig{EffectRadius: 10}},
		{"water zero radius", WaterConfig{SimulationSpeed: 1}},
		{"fluid zero decay", FluidConfig{LineWidth: 0.1}},
		{"fluid decay above one", FluidConfig{Decay: 1.5, LineWidth: 0.1}},
		{"fluid zero line width", FluidConfig{Decay: 0.9}},
		{"fluid negative edge", FluidConfig{Decay: 0.9, LineWidth: 0.1, EdgeWidth: -1}},
		{"glitch negative frequency", GlitchConfig{GlitchFrequency: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRippleConfigClamped(t *testing.T) {
	cfg := RippleConfig{Strength: 5, Radius: 10, PulseSpeed: 100, Decay: 1, Frequency: 1000}
	c := cfg.clamped().(RippleConfig)
	if c.Strength != 1 {
		t.Errorf("expected strength clamped to 1, got %v", c.Strength)
	}
	if c.Radius != 2 {
		t.Errorf("expected radius clamped to 2, got %v", c.Radius)
	}
	if c.PulseSpeed != 20 {
		t.Errorf("expected pulse speed clamped to 20, got %v", c.PulseSpeed)
	}
	if c.Frequency != 200 {
		t.Errorf("expected frequency clamped to 200, got %v", c.Frequency)
	}
}

func TestWaterConfigClamped(t *testing.T) {
	cfg := DefaultWaterConfig()
	cfg.SimulationSpeed = 100
	cfg.Grading.Saturation = 5
	c := cfg.clamped().(WaterConfig)
	if c.SimulationSpeed != 4 {
		t.Errorf("expected simulation speed clamped to 4, got %v", c.SimulationSpeed)
	}
	if c.Grading.Saturation != 2 {
		t.Errorf("expected saturation clamped to 2, got %v", c.Grading.Saturation)
	}
}

func TestFluidConfigClampedTimeout(t *testing.T) {
	cfg := DefaultFluidConfig()
	cfg.MovementTimeout = 0
	c := cfg.clamped().(FluidConfig)
	if c.MovementTimeout != 50*time.Millisecond {
		t.Errorf("expected default timeout restored, got %v", c.MovementTimeout)
	}
}

func TestGlitchConfigClamped(t *testing.T) {
	cfg := GlitchConfig{Intensity: 3, ChromaShift: 1000, Displacement: 2}
	c := cfg.clamped().(GlitchConfig)
	if c.Intensity != 1 {
		t.Errorf("expected intensity clamped to 1, got %v", c.Intensity)
	}
	if c.ChromaShift != 64 {
		t.Errorf("expected chroma shift clamped to 64, got %v", c.ChromaShift)
	}
	if c.Displacement != 0.5 {
		t.Errorf("expected displacement clamped to 0.5, got %v", c.Displacement)
	}
}
