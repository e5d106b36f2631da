// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// GoalKind selects the primary steering behavior of an agent.
type GoalKind uint8

const (
	GoalSeek GoalKind = iota
	GoalArrive
	GoalFlee
	GoalPursue
	GoalEvade
	GoalWander
)

var goalNames = [...]string{"seek", "arrive", "flee", "pursue", "evade", "wander"}

func (k GoalKind) String() string {
	if int(k) < len(goalNames) {
		return goalNames[k]
	}
	return "unknown"
}

// Steering is an agent's kinematic state and capability limits.
// Velocity is only written by the steering combiner.
type Steering struct {
	Position      r3.Vec
	LookDirection r3.Vec // unit
	Velocity      r3.Vec

	MaxSpeed      float64
	MaxForce      float64
	ReverseFactor float64 // 0-1, speed fraction when moving directly backwards
}

// Speed returns the velocity magnitude.
func (s *Steering) Speed() float64 {
	return r3.Norm(s.Velocity)
}

// Agent holds per-agent identity and host-side movement settings.
type Agent struct {
	ID         uint32
	Up         r3.Vec  // current local up, aligned against the attraction each tick
	BaseSpeed  float64 // MaxSpeed before orientation scaling
	UseGravity bool
	Grounded   bool // resting on a surface after the last step
}

// Goal is what an agent is currently steering toward.
type Goal struct {
	Kind     GoalKind
	Target   r3.Vec // Seek/Arrive/Flee target point
	TargetID uint32 // Pursue/Evade quarry
	Reached  int    // number of goals reached so far
}

// Obstacle is a static sphere visible to avoidance probes.
type Obstacle struct {
	Position r3.Vec
	Radius   float64
	Layer    uint32
}
