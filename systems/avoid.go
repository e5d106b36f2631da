package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ObstacleProbe answers raycasts against the world's obstacles.
type ObstacleProbe interface {
	// Raycast returns the distance to the first obstacle on a layer in mask
	// along dir from origin, within maxDistance.
	Raycast(origin, dir r3.Vec, maxDistance float64, mask uint32) (dist float64, hit bool)
}

// AvoidParams configures Avoid.
type AvoidParams struct {
	ScanRadius   float64
	Samples      int
	DangerWeight float64
	Mask         uint32

	// Trace, if set, receives every considered sample with its influence and
	// danger (0-1.7). Used by the debug viewer.
	Trace func(dir r3.Vec, influence, danger float64)
}

// Avoid samples directions evenly around the agent, keeps those pointing
// toward direction and pushes away from obstacles found along them. Danger
// grows exponentially as hits get closer. A nil probe sees no obstacles.
func (a *Agent) Avoid(direction r3.Vec, p AvoidParams, probe ObstacleProbe) r3.Vec {
	if p.Samples <= 0 {
		return r3.Vec{}
	}
	up := a.up()

	var result r3.Vec
	for i := 0; i < p.Samples; i++ {
		current := RotateToPlane(CircleDirection(i, p.Samples), up)
		interest := r3.Dot(current, direction)
		if interest <= 0 {
			continue
		}

		danger := 0.0
		if probe != nil && p.ScanRadius > 0 {
			if dist, hit := probe.Raycast(a.State.Position, current, p.ScanRadius, p.Mask); hit {
				danger = math.Exp(1-dist/p.ScanRadius) - 1
			}
		}
		influence := interest - danger*p.DangerWeight
		result = r3.Add(result, r3.Scale(influence, current))

		if p.Trace != nil {
			p.Trace(current, influence, danger)
		}
	}

	result = Unit(result)
	return r3.Scale(a.SpeedFor(result), result)
}

// probeSphere is an obstacle snapshot held by SphereProbe.
type probeSphere struct {
	owner  uint32
	center r3.Vec
	radius float64
	layer  uint32
}

// SphereProbe raycasts against a snapshot of spheres. It is rebuilt each tick
// in the read phase and only read afterwards, so concurrent Raycasts are safe.
type SphereProbe struct {
	spheres []probeSphere
}

// NewSphereProbe creates an empty probe.
func NewSphereProbe(capacity int) *SphereProbe {
	return &SphereProbe{spheres: make([]probeSphere, 0, capacity)}
}

// Reset removes all spheres, keeping capacity.
func (p *SphereProbe) Reset() {
	p.spheres = p.spheres[:0]
}

// Add registers a sphere. owner identifies the agent the sphere belongs to
// (0 for static obstacles) so that agent's own probes can skip it.
func (p *SphereProbe) Add(owner uint32, center r3.Vec, radius float64, layer uint32) {
	p.spheres = append(p.spheres, probeSphere{owner: owner, center: center, radius: radius, layer: layer})
}

// Len returns the number of spheres.
func (p *SphereProbe) Len() int {
	return len(p.spheres)
}

// Raycast implements ObstacleProbe.
func (p *SphereProbe) Raycast(origin, dir r3.Vec, maxDistance float64, mask uint32) (float64, bool) {
	return p.raycast(origin, dir, maxDistance, mask, 0)
}

// Ignoring returns a probe view that skips spheres owned by owner.
func (p *SphereProbe) Ignoring(owner uint32) ObstacleProbe {
	return ignoringProbe{probe: p, owner: owner}
}

type ignoringProbe struct {
	probe *SphereProbe
	owner uint32
}

func (v ignoringProbe) Raycast(origin, dir r3.Vec, maxDistance float64, mask uint32) (float64, bool) {
	return v.probe.raycast(origin, dir, maxDistance, mask, v.owner)
}

func (p *SphereProbe) raycast(origin, dir r3.Vec, maxDistance float64, mask uint32, skip uint32) (float64, bool) {
	d := Unit(dir)
	if d == (r3.Vec{}) || maxDistance <= 0 {
		return 0, false
	}

	best := math.Inf(1)
	for i := range p.spheres {
		s := &p.spheres[i]
		if s.layer&mask == 0 || (skip != 0 && s.owner == skip) {
			continue
		}
		t, ok := RaySphere(origin, d, s.center, s.radius)
		if ok && t <= maxDistance && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// RaySphere intersects a ray (unit dir) with a sphere. Origins inside the
// sphere hit at distance 0.
func RaySphere(origin, dir, center r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(origin, center)
	c := r3.Norm2(oc) - radius*radius
	if c <= 0 {
		return 0, true
	}
	b := r3.Dot(oc, dir)
	if b > 0 {
		// Outside and pointing away
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}
