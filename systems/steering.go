// Package systems contains the steering and attraction systems for the simulation.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
)

// NoPredictionCap disables the prediction horizon cap in Pursue and Evade.
var NoPredictionCap = math.Inf(1)

// Body is an agent's bounding volume.
type Body interface {
	ClosestPoint(p r3.Vec) r3.Vec
}

// RandomSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Published is the read-only state an agent exposes to others for a tick.
type Published struct {
	ID       uint32
	Position r3.Vec
	Velocity r3.Vec
	MaxSpeed float64
}

// Agent binds an entity's steering state to its collaborators for one tick.
// Behaviors read State; only Result writes State.Velocity.
type Agent struct {
	ID    uint32
	State *components.Steering
	Up    r3.Vec // normal of the plane Wander and Avoid sample on; zero means +Z
	Body  Body   // optional
}

// Publish returns the agent's externally visible state.
func (a *Agent) Publish() Published {
	return Published{
		ID:       a.ID,
		Position: a.State.Position,
		Velocity: a.State.Velocity,
		MaxSpeed: a.State.MaxSpeed,
	}
}

// Direction returns the unit direction from the agent to target.
func (a *Agent) Direction(target r3.Vec) r3.Vec {
	return Unit(r3.Sub(target, a.State.Position))
}

// ClosestDistance returns the distance from target to the nearest point of the
// agent's body, or to its position when it has no body.
func (a *Agent) ClosestDistance(target r3.Vec) float64 {
	if a.Body == nil {
		return Distance(target, a.State.Position)
	}
	return Distance(target, a.Body.ClosestPoint(target))
}

// SpeedFor returns the permitted speed for moving along dir: MaxSpeed when dir
// matches the look direction, MaxSpeed*ReverseFactor when directly opposite.
func (a *Agent) SpeedFor(dir r3.Vec) float64 {
	s := a.State
	return Remap(r3.Dot(s.LookDirection, dir), -1, 1, s.MaxSpeed*s.ReverseFactor, s.MaxSpeed)
}

// Seek steers straight at target.
func (a *Agent) Seek(target r3.Vec) r3.Vec {
	dir := a.Direction(target)
	return r3.Scale(a.SpeedFor(dir), dir)
}

// Flee steers straight away from target.
func (a *Agent) Flee(target r3.Vec) r3.Vec {
	return r3.Scale(-1, a.Seek(target))
}

// Arrive seeks target, slowing linearly inside brakeDistance and stopping on it.
// A non-positive brakeDistance disables braking.
func (a *Agent) Arrive(target r3.Vec, brakeDistance float64) r3.Vec {
	d := a.ClosestDistance(target)
	if d == 0 {
		return r3.Vec{}
	}

	seek := a.Seek(target)
	factor := 1.0
	if brakeDistance > 0 {
		factor = math.Min(1, d/brakeDistance)
	}
	speed := math.Min(r3.Norm(seek)*factor, a.State.MaxSpeed)
	return r3.Scale(speed, Unit(seek))
}

// PredictPosition extrapolates other along its velocity for the time this agent
// needs to cover the gap at MaxSpeed, capped at maxPrediction.
func (a *Agent) PredictPosition(other Published, maxPrediction float64) r3.Vec {
	if a.State.MaxSpeed <= 0 {
		return other.Position
	}
	horizon := math.Min(a.ClosestDistance(other.Position)/a.State.MaxSpeed, maxPrediction)
	if !(horizon > 0) {
		return other.Position
	}
	return r3.Add(other.Position, r3.Scale(horizon, other.Velocity))
}

// Pursue seeks where other will be.
func (a *Agent) Pursue(other Published, maxPrediction float64) r3.Vec {
	return a.Seek(a.PredictPosition(other, maxPrediction))
}

// Evade flees from where other will be.
func (a *Agent) Evade(other Published, maxPrediction float64) r3.Vec {
	return r3.Scale(-1, a.Pursue(other, maxPrediction))
}

// Wander projects a circle of radius at distance along direction and steers at a
// point on it offset by a random angle in [-maxAngle, maxAngle].
func (a *Agent) Wander(direction r3.Vec, maxAngle, radius, distance float64, rng RandomSource) r3.Vec {
	up := a.up()
	heading := Tangent(direction, up)

	offset := (rng.Float64()*2 - 1) * maxAngle
	var displacement r3.Vec
	if heading != (r3.Vec{}) {
		displacement = r3.Scale(radius, r3.Rotate(heading, offset, up))
	}

	circle := r3.Scale(distance, direction)
	return r3.Scale(a.SpeedFor(direction), Unit(r3.Add(circle, displacement)))
}

// Separation steers away from others closer than threshold, weighting each by
// inverse distance. Self and exactly coincident agents are ignored.
func (a *Agent) Separation(others []Published, threshold float64) r3.Vec {
	var sum r3.Vec
	n := 0
	for _, o := range others {
		if o.ID == a.ID {
			continue
		}
		away := r3.Sub(a.State.Position, o.Position)
		d := r3.Norm(away)
		if d == 0 || d >= threshold {
			continue
		}
		sum = r3.Add(sum, r3.Scale(1/d, away))
		n++
	}
	if n == 0 {
		return r3.Vec{}
	}

	dir := Unit(r3.Scale(1/float64(n), sum))
	return r3.Scale(a.SpeedFor(dir), dir)
}

// Alignment returns the mean velocity of agents, or zero for an empty list.
func Alignment(agents []Published) r3.Vec {
	if len(agents) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, o := range agents {
		sum = r3.Add(sum, o.Velocity)
	}
	return r3.Scale(1/float64(len(agents)), sum)
}

// Cohesion returns the mean position of agents, or zero for an empty list.
// Feed it to Seek or Arrive to steer toward the group.
func Cohesion(agents []Published) r3.Vec {
	if len(agents) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, o := range agents {
		sum = r3.Add(sum, o.Position)
	}
	return r3.Scale(1/float64(len(agents)), sum)
}

// Result folds forces into the agent's velocity. The change is limited to
// MaxForce and the new velocity to MaxSpeed. Returns the new velocity.
func (a *Agent) Result(forces ...r3.Vec) r3.Vec {
	s := a.State
	change := ClampMagnitude(r3.Sub(Sum(forces...), s.Velocity), s.MaxForce)
	s.Velocity = ClampMagnitude(r3.Add(s.Velocity, change), s.MaxSpeed)
	return s.Velocity
}

func (a *Agent) up() r3.Vec {
	up := Unit(a.Up)
	if up == (r3.Vec{}) {
		return r3.Vec{Z: 1}
	}
	return up
}
