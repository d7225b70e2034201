package orient

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tolerance = 1e-9

func eulerClose(a, b Euler) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance
}

func TestQuatRoundTrip(t *testing.T) {
	tests := []Euler{
		{0, 0, 0},
		{10, 20, 30},
		{-45, 15, 170},
		{90, 0, 0},
		{0.001, -0.002, 0.003},
	}

	for _, e := range tests {
		got := FromQuat(e.Quat())
		if !eulerClose(got, e) {
			t.Errorf("Round trip of %+v: got %+v", e, got)
		}
	}
}

func TestWorldZRotationAddsToZ(t *testing.T) {
	// A world-Z rotation on an XYZ Euler only advances the Z angle.
	e := Euler{10, 20, 30}
	got := Rotate(e, AxisAngle(r3.Vec{Z: 1}, 15))
	want := Euler{10, 20, 45}
	if !eulerClose(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestAxisAngleZeroAxis(t *testing.T) {
	e := Euler{10, 20, 30}
	got := Rotate(e, AxisAngle(r3.Vec{}, 90))
	if !eulerClose(got, e) {
		t.Errorf("Zero axis should be identity, got %+v", got)
	}
}

func TestLocalZ(t *testing.T) {
	tests := []struct {
		e    Euler
		want r3.Vec
	}{
		{Euler{0, 0, 0}, r3.Vec{Z: 1}},
		{Euler{0, 0, 123}, r3.Vec{Z: 1}}, // spinning about Z keeps Z
		{Euler{90, 0, 0}, r3.Vec{Y: -1}}, // tilt about X sends Z to -Y
		{Euler{0, 90, 0}, r3.Vec{X: 1}},  // tilt about Y sends Z to +X
	}

	for _, tt := range tests {
		got := LocalZ(tt.e)
		if math.Abs(got.X-tt.want.X) > tolerance ||
			math.Abs(got.Y-tt.want.Y) > tolerance ||
			math.Abs(got.Z-tt.want.Z) > tolerance {
			t.Errorf("LocalZ(%+v): expected %+v, got %+v", tt.e, tt.want, got)
		}
	}
}

func TestAddSub(t *testing.T) {
	a := Euler{1, 2, 3}
	b := Euler{10, 20, 30}
	if got := a.Add(b); !eulerClose(got, Euler{11, 22, 33}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := b.Sub(a); !eulerClose(got, Euler{9, 18, 27}) {
		t.Errorf("Sub: got %+v", got)
	}
}

func TestFromSlice(t *testing.T) {
	if got := FromSlice([]float64{1, 2, 3}); got != (Euler{1, 2, 3}) {
		t.Errorf("FromSlice full: got %+v", got)
	}
	if got := FromSlice([]float64{1}); got != (Euler{X: 1}) {
		t.Errorf("FromSlice short: got %+v", got)
	}
	if got := FromSlice(nil); got != (Euler{}) {
		t.Errorf("FromSlice nil: got %+v", got)
	}
}
