package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphereColliderClosestPoint(t *testing.T) {
	c := SphereCollider{Center: r3.Vec{X: 1}, Radius: 2}

	tests := []struct {
		name string
		p    r3.Vec
		want r3.Vec
	}{
		{"outside on axis", r3.Vec{X: 11}, r3.Vec{X: 3}},
		{"outside off axis", r3.Vec{X: 1, Y: -10}, r3.Vec{X: 1, Y: -2}},
		{"inside", r3.Vec{X: 1.5, Y: 0.5}, r3.Vec{X: 1.5, Y: 0.5}},
		{"center", r3.Vec{X: 1}, r3.Vec{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ClosestPoint(tt.p)
			if r3.Norm(r3.Sub(got, tt.want)) > 1e-12 {
				t.Errorf("ClosestPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGoalKindString(t *testing.T) {
	if GoalPursue.String() != "pursue" {
		t.Errorf("GoalPursue.String() = %q", GoalPursue.String())
	}
	if GoalKind(200).String() != "unknown" {
		t.Errorf("out of range kind should be unknown")
	}
}

func TestSteeringSpeed(t *testing.T) {
	s := Steering{Velocity: r3.Vec{X: 3, Y: 4}}
	if math.Abs(s.Speed()-5) > 1e-12 {
		t.Errorf("Speed() = %v, want 5", s.Speed())
	}
}
