package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
)

// MotionStep is the outcome of composing one fixed step of movement.
type MotionStep struct {
	Position r3.Vec
	Up       r3.Vec
	Look     r3.Vec
}

// Integrate composes the steering velocity with the attraction for one step of
// length dt. The agent's up is turned to face away from the attraction and the
// look direction is carried along, then snapped to the tangential velocity when
// the agent is moving.
func Integrate(s components.Steering, up, attraction r3.Vec, useGravity bool, dt float64) MotionStep {
	step := r3.Add(s.Velocity, gravityTerm(attraction, useGravity))
	out := MotionStep{
		Position: r3.Add(s.Position, r3.Scale(dt, step)),
		Up:       up,
		Look:     s.LookDirection,
	}

	if newUp := Unit(r3.Scale(-1, attraction)); newUp != (r3.Vec{}) {
		out.Look = Unit(FromToRotate(out.Look, up, newUp))
		out.Up = newUp
	}

	upUnit := Unit(out.Up)
	tangent := r3.Sub(s.Velocity, r3.Scale(r3.Dot(s.Velocity, upUnit), upUnit))
	if r3.Norm2(tangent) > 1e-12 {
		out.Look = Unit(tangent)
	}
	return out
}

func gravityTerm(attraction r3.Vec, useGravity bool) r3.Vec {
	if !useGravity {
		return r3.Vec{}
	}
	return attraction
}

// MovePower scales speed by facing: 1 when looking straight at the nearest
// planet's core, 0 when looking directly away. Without planets it is 1.
func MovePower(look, position r3.Vec, field *AttractionField) float64 {
	src, ok := field.Nearest(position)
	if !ok {
		return 1
	}
	return Remap(r3.Dot(look, Unit(r3.Sub(src.Position, position))), -1, 1, 0, 1)
}

// ClampToSurface keeps a body of the given radius from sinking below the
// surface of the nearest source. It stands in for the host's collision engine.
func ClampToSurface(p r3.Vec, bodyRadius float64, field *AttractionField) r3.Vec {
	src, ok := field.Nearest(p)
	if !ok || src.Radius <= 0 {
		return p
	}
	offset := r3.Sub(p, src.Position)
	minDist := src.Radius + bodyRadius
	d := r3.Norm(offset)
	if d >= minDist {
		return p
	}
	if d == 0 {
		return r3.Add(src.Position, r3.Vec{Z: minDist})
	}
	return r3.Add(src.Position, r3.Scale(minDist/d, offset))
}

// SurfacePoint returns the point at altitude above the source's surface in dir.
func SurfacePoint(src *GravitySource, dir r3.Vec, altitude float64) r3.Vec {
	d := Unit(dir)
	if d == (r3.Vec{}) {
		d = r3.Vec{Z: 1}
	}
	return r3.Add(src.Position, r3.Scale(src.Radius+altitude, d))
}
