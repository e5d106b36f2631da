package camera

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/systems"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNew(t *testing.T) {
	cam := New(10, 50)

	if cam.Distance() != 30 {
		t.Errorf("expected distance 30 at half zoom, got %f", cam.Distance())
	}
	if cam.Position().Y <= 0 {
		t.Errorf("default camera should sit above the target, got %v", cam.Position())
	}
}

func TestFrameIsOrthonormal(t *testing.T) {
	cam := New(10, 50)
	field := systems.NewAttractionField()
	field.Register(&systems.GravitySource{Strength: 1, FalloffRadius: 500, Radius: 100})

	targets := []r3.Vec{{Y: 101}, {X: 101}, {Y: -101}, {X: 60, Z: -80}}
	for _, target := range targets {
		for _, yaw := range []float64{0, 45, 170} {
			cam.Follow(target, field)
			cam.Yaw = yaw
			f, u := cam.Forward(), cam.Up()
			if math.Abs(r3.Norm(f)-1) > 1e-9 || math.Abs(r3.Norm(u)-1) > 1e-9 {
				t.Errorf("target %v yaw %v: forward %v up %v not unit", target, yaw, f, u)
			}
			if math.Abs(r3.Dot(f, u)) > 1e-9 {
				t.Errorf("target %v yaw %v: forward and up not perpendicular", target, yaw)
			}
		}
	}
}

func TestPositionLooksAtTarget(t *testing.T) {
	cam := New(10, 50)
	cam.Smoothing = 0
	cam.Target = r3.Vec{X: 3, Y: 4, Z: 5}
	cam.Update(0)

	got := r3.Add(cam.Position(), r3.Scale(cam.Distance(), cam.Forward()))
	if diff := cmp.Diff(cam.Target, got, approx); diff != "" {
		t.Errorf("camera does not look at target (-want +got):\n%s", diff)
	}
}

func TestFollowAlignsWithSurface(t *testing.T) {
	cam := New(10, 50)
	cam.Pitch = 90
	cam.Yaw = 0
	field := systems.NewAttractionField()
	field.Register(&systems.GravitySource{Strength: 1, FalloffRadius: 500, Radius: 100})

	// On the +X side of the planet the camera looks straight down -X
	cam.Follow(r3.Vec{X: 101}, field)
	if diff := cmp.Diff(r3.Vec{X: -1}, cam.Forward(), approx); diff != "" {
		t.Errorf("forward mismatch (-want +got):\n%s", diff)
	}

	cam.Follow(r3.Vec{X: 101}, nil)
	if diff := cmp.Diff(r3.Vec{Y: -1}, cam.Forward(), approx); diff != "" {
		t.Errorf("without a field forward should use world up (-want +got):\n%s", diff)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	tests := []struct {
		name   string
		dPitch float64
		want   float64
	}{
		{"small", -10, 40},
		{"over max", -500, MaxPitch},
		{"under min", 500, MinPitch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(10, 50)
			cam.Rotate(0, tt.dPitch)
			if cam.Pitch != tt.want {
				t.Errorf("Pitch = %v, want %v", cam.Pitch, tt.want)
			}
		})
	}
}

func TestRotateWrapsYaw(t *testing.T) {
	cam := New(10, 50)
	cam.Rotate(370, 0)
	if math.Abs(cam.Yaw-10) > 1e-9 {
		t.Errorf("Yaw = %v, want 10", cam.Yaw)
	}
}

func TestZoomByClamps(t *testing.T) {
	cam := New(10, 50)
	cam.ZoomBy(0.25)
	if cam.Zoom != 0.25 {
		t.Errorf("Zoom = %v, want 0.25", cam.Zoom)
	}
	cam.ZoomBy(5)
	if cam.Zoom != 0 {
		t.Errorf("Zoom = %v, want 0", cam.Zoom)
	}
	cam.ZoomBy(-5)
	if cam.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", cam.Zoom)
	}
}

func TestUpdateEasesDistance(t *testing.T) {
	cam := New(10, 50)
	cam.Zoom = 1

	cam.Update(0.05)
	if d := cam.Distance(); d <= 30 || d >= 50 {
		t.Errorf("after one step distance = %v, want between 30 and 50", d)
	}
	for i := 0; i < 200; i++ {
		cam.Update(0.05)
	}
	if math.Abs(cam.Distance()-50) > 1e-6 {
		t.Errorf("distance should settle at 50, got %v", cam.Distance())
	}
}
