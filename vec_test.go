package fx

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		got    Vec2
		expect Vec2
	}{
		{"add", V2(1, 2).Add(V2(3, 4)), V2(4, 6)},
		{"sub", V2(5, 7).Sub(V2(2, 3)), V2(3, 4)},
		{"mul", V2(1, -2).Mul(3), V2(3, -6)},
		{"lerp mid", V2(0, 0).Lerp(V2(2, 4), 0.5), V2(1, 2)},
		{"lerp end", V2(0, 0).Lerp(V2(2, 4), 1), V2(2, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expect {
				t.Errorf("got %v, want %v", tt.got, tt.expect)
			}
		})
	}
}

func TestVec2Length(t *testing.T) {
	v := V2(3, 4)
	if v.Length() != 5 {
		t.Errorf("expected length 5, got %v", v.Length())
	}
	if v.LengthSq() != 25 {
		t.Errorf("expected squared length 25, got %v", v.LengthSq())
	}
	if v.Dot(V2(1, 0)) != 3 {
		t.Errorf("expected dot 3, got %v", v.Dot(V2(1, 0)))
	}
}

func TestVec2Normalize(t *testing.T) {
	n := V2(3, 4).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("expected unit length, got %v", n.Length())
	}
	if !V2(0, 0).Normalize().IsZero() {
		t.Error("expected zero vector normalized to zero")
	}
}

func TestVec2Approx(t *testing.T) {
	if !V2(1, 1).Approx(V2(1+1e-9, 1-1e-9), 1e-6) {
		t.Error("expected approximate equality within epsilon")
	}
	if V2(1, 1).Approx(V2(1.1, 1), 1e-6) {
		t.Error("expected inequality outside epsilon")
	}
}
