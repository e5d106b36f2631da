package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/systems"
)

// AvoidSample is one avoidance direction considered by the selected agent.
type AvoidSample struct {
	Direction r3.Vec
	Influence float64
	Danger    float64 // 0 when the sample saw nothing
}

// AgentView is a read-only copy of an agent for viewers and tools.
type AgentView struct {
	ID       uint32
	Position r3.Vec
	Velocity r3.Vec
	Look     r3.Vec
	Up       r3.Vec
	MaxSpeed float64
	Radius   float64
	Grounded bool
	Goal     components.Goal
}

// Agents returns a view of every agent in query order.
func (g *Game) Agents() []AgentView {
	views := make([]AgentView, 0, len(g.entities))
	query := g.agentFilter.Query()
	for query.Next() {
		st, ag, goal, body := query.Get()
		views = append(views, AgentView{
			ID:       ag.ID,
			Position: st.Position,
			Velocity: st.Velocity,
			Look:     st.LookDirection,
			Up:       ag.Up,
			MaxSpeed: st.MaxSpeed,
			Radius:   body.Radius,
			Grounded: ag.Grounded,
			Goal:     *goal,
		})
	}
	return views
}

// Agent returns the view of a single agent.
func (g *Game) Agent(id uint32) (AgentView, bool) {
	e, ok := g.entities[id]
	if !ok || !g.world.Alive(e) {
		return AgentView{}, false
	}
	st := g.steeringMap.Get(e)
	ag := g.agentMap.Get(e)
	goal := g.goalMap.Get(e)
	body := g.bodyMap.Get(e)
	return AgentView{
		ID:       id,
		Position: st.Position,
		Velocity: st.Velocity,
		Look:     st.LookDirection,
		Up:       ag.Up,
		MaxSpeed: st.MaxSpeed,
		Radius:   body.Radius,
		Grounded: ag.Grounded,
		Goal:     *goal,
	}, true
}

// AgentCount returns the number of agents.
func (g *Game) AgentCount() int {
	return len(g.entities)
}

// Obstacles returns every static obstacle.
func (g *Game) Obstacles() []components.Obstacle {
	var out []components.Obstacle
	query := g.obstacleFilter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	return out
}

// Select marks an agent for inspection. Its avoidance samples are captured
// every tick from then on.
func (g *Game) Select(id uint32) bool {
	if _, ok := g.entities[id]; !ok {
		return false
	}
	g.selectedID = id
	g.hasSelection = true
	g.avoidTrace = g.avoidTrace[:0]
	return true
}

// ClearSelection deselects the inspected agent.
func (g *Game) ClearSelection() {
	g.hasSelection = false
	g.avoidTrace = g.avoidTrace[:0]
}

// Selected returns the inspected agent's ID.
func (g *Game) Selected() (uint32, bool) {
	return g.selectedID, g.hasSelection
}

// AvoidTrace returns the selected agent's avoidance samples from the last tick.
func (g *Game) AvoidTrace() []AvoidSample {
	return g.avoidTrace
}

// PickAgent returns the first agent hit by a ray.
func (g *Game) PickAgent(origin, dir r3.Vec) (uint32, bool) {
	d := systems.Unit(dir)
	if d == (r3.Vec{}) {
		return 0, false
	}

	best := math.Inf(1)
	var bestID uint32
	query := g.agentFilter.Query()
	for query.Next() {
		st, ag, _, body := query.Get()
		if t, hit := systems.RaySphere(origin, d, st.Position, body.Radius); hit && t < best {
			best = t
			bestID = ag.ID
		}
	}
	return bestID, !math.IsInf(best, 1)
}

// captureAvoidTrace replays the avoidance pass of the selected agent with
// tracing enabled. It runs on snapshot state so the result matches the tick.
func (g *Game) captureAvoidTrace(snap *agentSnapshot, in *intent) {
	st := snap.Steering
	st.MaxSpeed = in.MaxSpeed
	agent := g.bindAgent(snap, &st)

	g.avoidTrace = g.avoidTrace[:0]
	params := g.avoidParams()
	params.Trace = func(dir r3.Vec, influence, danger float64) {
		g.avoidTrace = append(g.avoidTrace, AvoidSample{Direction: dir, Influence: influence, Danger: danger})
	}
	agent.Avoid(in.Heading, params, g.probe.Ignoring(snap.ID))
}
