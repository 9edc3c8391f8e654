package sim

import (
	"math"
	"testing"
)

func testFluidParams() FluidParams {
	return FluidParams{
		Speed:         1.0,
		Decay:         0.97,
		LineWidth:     0.05,
		LineIntensity: 0.3,
	}
}

func TestRevealSmoothstepValue(t *testing.T) {
	// Trail 0.022 sits at the midpoint of the [0.02, 0.024] edge, where the
	// cubic 3t^2 - 2t^3 evaluates to exactly 0.5.
	got := Reveal(0.022, 0.02, 0.004)
	want := 0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Reveal(0.022, 0.02, 0.004) = %v, want %v", got, want)
	}
}

func TestRevealHardStepAtZeroEdgeWidth(t *testing.T) {
	tests := []struct {
		trail float64
		want  float64
	}{
		{0.019, 0},
		{0.02, 1},
		{0.021, 1},
	}
	for _, tt := range tests {
		if got := Reveal(tt.trail, 0.02, 0); got != tt.want {
			t.Errorf("Reveal(%v, 0.02, 0) = %v, want %v", tt.trail, got, tt.want)
		}
	}
}

func TestRevealBounds(t *testing.T) {
	for trail := -1.0; trail <= 5.0; trail += 0.01 {
		got := Reveal(trail, 0.02, 0.004)
		if got < 0 || got > 1 {
			t.Fatalf("Reveal(%v) = %v, out of [0, 1]", trail, got)
		}
	}
}

func TestFluidInjectsAlongSegment(t *testing.T) {
	f := NewFluid(64, 64, testFluidParams())
	p := Pointer{X: 0.7, Y: 0.5, PrevX: 0.3, PrevY: 0.5, Active: true, Speed: 1}
	f.Step(1.0/60, p)

	mid := f.Trail().Sample(0.5, 0.5)
	if mid <= 0 {
		t.Fatal("no trail along the pointer segment")
	}
	far := f.Trail().Sample(0.5, 0.95)
	if far >= mid {
		t.Errorf("far=%v mid=%v, want trail concentrated near the segment", far, mid)
	}
}

func TestFluidTrailDecays(t *testing.T) {
	f := NewFluid(32, 32, testFluidParams())
	p := Pointer{X: 0.6, Y: 0.5, PrevX: 0.4, PrevY: 0.5, Active: true, Speed: 1}
	f.Step(1.0/60, p)
	before := f.Trail().Sample(0.5, 0.5)

	idle := Pointer{Active: false}
	for i := 0; i < 200; i++ {
		f.Step(1.0/60, idle)
	}
	after := f.Trail().Sample(0.5, 0.5)
	if after >= before {
		t.Errorf("trail did not decay: before=%v after=%v", before, after)
	}
	if after < 0 {
		t.Errorf("trail went negative: %v", after)
	}
}

func TestFluidTrailBounded(t *testing.T) {
	params := testFluidParams()
	params.LineIntensity = 4
	f := NewFluid(16, 16, params)
	p := Pointer{X: 0.5, Y: 0.5, PrevX: 0.5, PrevY: 0.5, Active: true, Speed: 1}
	for i := 0; i < 500; i++ {
		f.Step(1.0/60, p)
	}
	for i, v := range f.Trail().Data {
		if float64(v) > trailCap {
			t.Fatalf("trail[%d] = %v exceeds cap %v", i, v, trailCap)
		}
	}
}

func TestFluidSubstepsAboveSpeedOne(t *testing.T) {
	// At speed 3 the segment is split into sub-steps, so decay is applied
	// three times per frame and the whole segment still receives trail.
	params := testFluidParams()
	params.Speed = 3
	f := NewFluid(64, 64, params)
	p := Pointer{X: 0.9, Y: 0.5, PrevX: 0.1, PrevY: 0.5, Active: true, Speed: 2}
	f.Step(1.0/60, p)

	for _, u := range []float64{0.2, 0.5, 0.8} {
		if f.Trail().Sample(u, 0.5) <= 0 {
			t.Errorf("no trail at u=%v with sub-stepping", u)
		}
	}
}

func TestFluidResizeZeroesTrail(t *testing.T) {
	f := NewFluid(32, 32, testFluidParams())
	p := Pointer{X: 0.6, Y: 0.5, PrevX: 0.4, PrevY: 0.5, Active: true, Speed: 1}
	f.Step(1.0/60, p)

	f.Resize(48, 40)
	gw, gh := f.Size()
	if gw != 48 || gh != 40 {
		t.Fatalf("Size = (%d, %d), want (48, 40)", gw, gh)
	}
	for i, v := range f.Trail().Data {
		if v != 0 {
			t.Fatalf("trail[%d] = %v after resize, want 0", i, v)
		}
	}
}
