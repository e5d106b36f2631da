package systems

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func defaultAvoid() AvoidParams {
	return AvoidParams{ScanRadius: 10, Samples: 8, DangerWeight: 0.8, Mask: ^uint32(0)}
}

func TestAvoidWithoutObstacles(t *testing.T) {
	a := newTestAgent()
	got := a.Avoid(r3.Vec{X: 1}, defaultAvoid(), nil)
	if diff := cmp.Diff(r3.Vec{X: 10}, got, approxVec); diff != "" {
		t.Errorf("open space should keep the heading (-want +got):\n%s", diff)
	}
}

func TestAvoidNoSamples(t *testing.T) {
	a := newTestAgent()
	p := defaultAvoid()
	p.Samples = 0
	if got := a.Avoid(r3.Vec{X: 1}, p, nil); got != (r3.Vec{}) {
		t.Errorf("zero samples = %v, want zero", got)
	}
}

func TestAvoidSteersAwayFromObstacle(t *testing.T) {
	a := newTestAgent()
	probe := NewSphereProbe(1)
	// Sits on the +X+Y diagonal sample
	probe.Add(0, r3.Vec{X: 3.5, Y: 3.5}, 1, 1)

	got := a.Avoid(r3.Vec{X: 1}, defaultAvoid(), probe)
	if got.Y >= 0 {
		t.Errorf("avoidance should veer toward -Y, got %v", got)
	}
	if got.X <= 0 {
		t.Errorf("avoidance should keep moving forward, got %v", got)
	}
	if math.Abs(got.Z) > 1e-9 {
		t.Errorf("avoidance left the plane: %v", got)
	}
}

func TestAvoidTrace(t *testing.T) {
	a := newTestAgent()
	probe := NewSphereProbe(1)
	probe.Add(0, r3.Vec{X: 4}, 1, 1)

	var calls, hits int
	p := defaultAvoid()
	p.Trace = func(dir r3.Vec, influence, danger float64) {
		calls++
		if danger > 0 {
			hits++
			// Hit at distance 3 of 10
			want := math.Exp(1-0.3) - 1
			if math.Abs(danger-want) > 1e-9 {
				t.Errorf("danger = %v, want %v", danger, want)
			}
		}
	}
	a.Avoid(r3.Vec{X: 1}, p, probe)

	// Samples at 0, ±45 and the +90 sample whose dot rounds just above zero
	if calls < 3 {
		t.Errorf("trace called %d times, want at least 3", calls)
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestSphereProbeLayers(t *testing.T) {
	probe := NewSphereProbe(2)
	probe.Add(0, r3.Vec{X: 5}, 1, 2)

	if _, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 1}, 10, 1); hit {
		t.Error("sphere on an excluded layer should not be hit")
	}
	dist, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 1}, 10, 2)
	if !hit || math.Abs(dist-4) > 1e-9 {
		t.Errorf("Raycast = (%v, %v), want (4, true)", dist, hit)
	}
	if _, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 1}, 3, 2); hit {
		t.Error("hit beyond maxDistance should be ignored")
	}
	if _, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: -1}, 10, 2); hit {
		t.Error("sphere behind the ray should not be hit")
	}
}

func TestSphereProbeNearestHit(t *testing.T) {
	probe := NewSphereProbe(2)
	probe.Add(0, r3.Vec{X: 8}, 1, 1)
	probe.Add(0, r3.Vec{X: 4}, 1, 1)

	dist, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 2}, 20, 1)
	if !hit || math.Abs(dist-3) > 1e-9 {
		t.Errorf("Raycast = (%v, %v), want nearest hit at 3", dist, hit)
	}
}

func TestSphereProbeIgnoringOwner(t *testing.T) {
	probe := NewSphereProbe(2)
	probe.Add(7, r3.Vec{}, 1, 1)     // the caster's own body
	probe.Add(9, r3.Vec{X: 6}, 1, 1) // another agent

	dist, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 1}, 10, 1)
	if !hit || dist != 0 {
		t.Errorf("origin inside own sphere should hit at 0, got (%v, %v)", dist, hit)
	}

	dist, hit = probe.Ignoring(7).Raycast(r3.Vec{}, r3.Vec{X: 1}, 10, 1)
	if !hit || math.Abs(dist-5) > 1e-9 {
		t.Errorf("Ignoring(7) = (%v, %v), want (5, true)", dist, hit)
	}
}

func TestSphereProbeReset(t *testing.T) {
	probe := NewSphereProbe(4)
	probe.Add(0, r3.Vec{X: 2}, 1, 1)
	probe.Reset()
	if probe.Len() != 0 {
		t.Errorf("Len() after Reset = %d", probe.Len())
	}
	if _, hit := probe.Raycast(r3.Vec{}, r3.Vec{X: 1}, 10, 1); hit {
		t.Error("reset probe should not hit anything")
	}
}
