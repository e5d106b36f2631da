package systems

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

// approxVec compares vectors component-wise within an absolute margin.
var approxVec = cmpopts.EquateApprox(0, 1e-9)

func TestRemap(t *testing.T) {
	tests := []struct {
		name                         string
		v, fromMin, fromMax, to0, to1 float64
		want                         float64
	}{
		{"low end", -1, -1, 1, 5, 10, 5},
		{"high end", 1, -1, 1, 5, 10, 10},
		{"middle", 0, -1, 1, 5, 10, 7.5},
		{"clamped above", 3, -1, 1, 5, 10, 10},
		{"clamped below", -3, -1, 1, 5, 10, 5},
		{"swapped source range", 0.25, 1, 0, 0, 100, 25},
		{"reversed target", 0, 0, 1, 10, 0, 10},
		{"reversed target high", 1, 0, 1, 10, 0, 0},
		{"degenerate source", 4, 2, 2, 3, 9, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remap(tt.v, tt.fromMin, tt.fromMax, tt.to0, tt.to1)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Remap(%v, %v, %v, %v, %v) = %v, want %v",
					tt.v, tt.fromMin, tt.fromMax, tt.to0, tt.to1, got, tt.want)
			}
		})
	}
}

func TestUnitZeroVector(t *testing.T) {
	if got := Unit(r3.Vec{}); got != (r3.Vec{}) {
		t.Errorf("Unit(0) = %v, want zero vector", got)
	}
	got := Unit(r3.Vec{X: 3, Y: 4})
	if diff := cmp.Diff(r3.Vec{X: 0.6, Y: 0.8}, got, approxVec); diff != "" {
		t.Errorf("Unit mismatch (-want +got):\n%s", diff)
	}
}

func TestClampMagnitude(t *testing.T) {
	tests := []struct {
		name string
		v    r3.Vec
		max  float64
		want r3.Vec
	}{
		{"within", r3.Vec{X: 1, Y: 1}, 5, r3.Vec{X: 1, Y: 1}},
		{"shortened", r3.Vec{X: 30, Y: 40}, 5, r3.Vec{X: 3, Y: 4}},
		{"zero max", r3.Vec{X: 1}, 0, r3.Vec{}},
		{"negative max", r3.Vec{X: 1}, -2, r3.Vec{}},
		{"zero vector", r3.Vec{}, 3, r3.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampMagnitude(tt.v, tt.max)
			if diff := cmp.Diff(tt.want, got, approxVec); diff != "" {
				t.Errorf("ClampMagnitude mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClampAngle(t *testing.T) {
	tests := []struct {
		angle, lo, hi, want float64
	}{
		{10, -40, 85, 10},
		{100, -40, 85, 85},
		{350, -40, 85, 350},
		{300, -40, 85, 320},
	}
	for _, tt := range tests {
		if got := ClampAngle(tt.angle, tt.lo, tt.hi); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ClampAngle(%v, %v, %v) = %v, want %v", tt.angle, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestCircleDirection(t *testing.T) {
	const n = 8
	var sum r3.Vec
	for i := 0; i < n; i++ {
		d := CircleDirection(i, n)
		if math.Abs(r3.Norm(d)-1) > 1e-12 {
			t.Errorf("direction %d not unit: %v", i, d)
		}
		if d.Z != 0 {
			t.Errorf("direction %d leaves the XY plane: %v", i, d)
		}
		sum = r3.Add(sum, d)
	}
	if r3.Norm(sum) > 1e-9 {
		t.Errorf("evenly spaced directions should cancel, sum = %v", sum)
	}
	if diff := cmp.Diff(r3.Vec{Y: 1}, CircleDirection(2, n), approxVec); diff != "" {
		t.Errorf("quarter turn mismatch (-want +got):\n%s", diff)
	}
}

func TestCircleDirectionsAroundAxis(t *testing.T) {
	axis := r3.Vec{Y: 1}
	dirs := CircleDirectionsAroundAxis(4, axis, 0.5)
	if len(dirs) != 4 {
		t.Fatalf("got %d directions, want 4", len(dirs))
	}

	// Fan is symmetric about the axis, so the sum points along it
	sum := Sum(dirs...)
	if math.Abs(sum.X) > 1e-9 || sum.Y <= 0 {
		t.Errorf("fan not centred on axis, sum = %v", sum)
	}
	for _, d := range dirs {
		if r3.Dot(d, axis) <= 0 {
			t.Errorf("half-circle fan should stay on the axis side, got %v", d)
		}
	}

	if CircleDirectionsAroundAxis(0, axis, 1) != nil {
		t.Error("zero resolution should return nil")
	}
}

func TestFromToRotate(t *testing.T) {
	tests := []struct {
		name     string
		v        r3.Vec
		from, to r3.Vec
		want     r3.Vec
	}{
		{"identity", r3.Vec{X: 1}, r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1}},
		{"from maps to to", r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Y: 1}},
		{"quarter turn carries others", r3.Vec{Z: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1}, r3.Vec{X: -1}},
		{"antiparallel", r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{Z: -1}, r3.Vec{Z: -1}},
		{"zero from", r3.Vec{X: 2}, r3.Vec{}, r3.Vec{Z: 1}, r3.Vec{X: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromToRotate(tt.v, tt.from, tt.to)
			if diff := cmp.Diff(tt.want, got, approxVec); diff != "" {
				t.Errorf("FromToRotate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRotateToPlaneKeepsUnitLength(t *testing.T) {
	up := Unit(r3.Vec{X: 1, Y: 1, Z: 1})
	for i := 0; i < 6; i++ {
		d := RotateToPlane(CircleDirection(i, 6), up)
		if math.Abs(r3.Norm(d)-1) > 1e-9 {
			t.Errorf("sample %d length %v", i, r3.Norm(d))
		}
		if math.Abs(r3.Dot(d, up)) > 1e-9 {
			t.Errorf("sample %d not perpendicular to up: %v", i, d)
		}
	}
}

func TestTangent(t *testing.T) {
	tests := []struct {
		name string
		v    r3.Vec
		up   r3.Vec
		want r3.Vec
	}{
		{"already tangent", r3.Vec{X: 2}, r3.Vec{Z: 1}, r3.Vec{X: 1}},
		{"drops the up part", r3.Vec{X: 3, Z: 4}, r3.Vec{Z: 1}, r3.Vec{X: 1}},
		{"unnormalized up", r3.Vec{Y: 1, Z: -1}, r3.Vec{Z: 5}, r3.Vec{Y: 1}},
		{"parallel", r3.Vec{Z: -2}, r3.Vec{Z: 1}, r3.Vec{}},
		{"zero up", r3.Vec{X: 3, Y: 4}, r3.Vec{}, r3.Vec{X: 0.6, Y: 0.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tangent(tt.v, tt.up)
			if diff := cmp.Diff(tt.want, got, approxVec); diff != "" {
				t.Errorf("Tangent mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTangentOfArbitraryDirections(t *testing.T) {
	up := Unit(r3.Vec{X: 0.91, Y: -0.36, Z: 0.21})
	for i, v := range []r3.Vec{{X: -0.27, Y: 0.21, Z: 0.94}, {X: 1, Y: 1, Z: 1}, {Y: -3}} {
		d := Tangent(v, up)
		if math.Abs(r3.Norm(d)-1) > 1e-9 || math.Abs(r3.Dot(d, up)) > 1e-9 {
			t.Errorf("direction %d: %v is not a unit tangent to %v", i, d, up)
		}
	}
}
