package game

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/systems"
)

// agentLayer is the probe layer agent bodies are registered on.
const agentLayer uint32 = 1 << 1

// registerPlanets adds every configured planet to the attraction field.
func (g *Game) registerPlanets() {
	for _, p := range g.config().Planets {
		g.field.Register(&systems.GravitySource{
			Name:          p.Name,
			Position:      p.Position.Vec(),
			Strength:      p.Strength(),
			FalloffRadius: p.AttractionRadius,
			Radius:        p.Radius,
		})
	}
}

// spawnObstacles creates an entity per configured obstacle.
func (g *Game) spawnObstacles() {
	for _, o := range g.config().Obstacles {
		obs := components.Obstacle{
			Position: o.Position.Vec(),
			Radius:   o.Radius,
			Layer:    o.Layer,
		}
		g.obstacleMapper.NewEntity(&obs)
	}
}

// spawnInitialPopulation creates the starting agents. Roles are dealt out in
// order: pursuers, evaders, wanderers, then goal seekers.
func (g *Game) spawnInitialPopulation() {
	pop := g.config().Population

	for i := 0; i < pop.Agents; i++ {
		kind := components.GoalArrive
		switch {
		case i < pop.Pursuers:
			kind = components.GoalPursue
		case i < pop.Pursuers+pop.Evaders:
			kind = components.GoalEvade
		case i < pop.Pursuers+pop.Evaders+pop.Wanderers:
			kind = components.GoalWander
		default:
			// Goal seekers cycle arrive, seek, arrive, flee
			switch i % 4 {
			case 1:
				kind = components.GoalSeek
			case 3:
				kind = components.GoalFlee
			}
		}
		g.spawnAgent(kind)
	}

	// Quarries are assigned once every agent exists
	roster := g.roster()
	for _, r := range roster {
		if r.Kind != components.GoalPursue && r.Kind != components.GoalEvade {
			continue
		}
		if goal := g.goalMap.Get(g.entities[r.ID]); goal != nil {
			goal.TargetID = g.pickQuarry(r.ID, r.Kind, roster)
		}
	}

	slog.Debug("population spawned",
		"agents", pop.Agents,
		"pursuers", pop.Pursuers,
		"evaders", pop.Evaders,
		"wanderers", pop.Wanderers,
	)
}

// spawnAgent creates an agent at a random point above a planet surface.
func (g *Game) spawnAgent(kind components.GoalKind) ecs.Entity {
	cfg := g.config()

	id := g.nextID
	g.nextID++

	pos, up := g.randomSurfacePoint()
	look := tangentLook(randomUnit(g.rng), up)

	st := components.Steering{
		Position:      pos,
		LookDirection: look,
		MaxSpeed:      cfg.Agent.Speed,
		MaxForce:      cfg.Agent.MaxForce,
		ReverseFactor: cfg.Agent.ReverseFactor,
	}
	ag := components.Agent{
		ID:         id,
		Up:         up,
		BaseSpeed:  cfg.Agent.Speed,
		UseGravity: cfg.Agent.UseGravity,
	}
	goal := components.Goal{Kind: kind}
	body := components.Body{Radius: cfg.Agent.BodyRadius}

	// Each agent owns a wander stream seeded from the game rng
	g.agentRNG[id] = rand.New(rand.NewSource(g.rng.Int63()))

	switch kind {
	case components.GoalSeek, components.GoalArrive, components.GoalFlee:
		goal.Target = g.rollTarget(pos)
	}

	entity := g.agentMapper.NewEntity(&st, &ag, &goal, &body)
	g.entities[id] = entity
	return entity
}

// randomSurfacePoint picks a planet at random and returns a point at spawn
// altitude above it, with the local up there.
func (g *Game) randomSurfacePoint() (pos, up r3.Vec) {
	altitude := g.config().Agent.Altitude
	dir := randomUnit(g.rng)

	srcs := g.field.Sources()
	if len(srcs) == 0 {
		return r3.Scale(altitude, dir), r3.Vec{Z: 1}
	}
	src := srcs[g.rng.Intn(len(srcs))]
	return systems.SurfacePoint(src, dir, altitude), dir
}

// rollTarget returns a new goal point within the goal radius of from,
// projected onto the nearest planet's surface at spawn altitude.
func (g *Game) rollTarget(from r3.Vec) r3.Vec {
	cfg := g.config()
	offset := r3.Scale(cfg.Population.GoalRadius*math.Cbrt(g.rng.Float64()), randomUnit(g.rng))
	target := r3.Add(from, offset)

	src, ok := g.field.Nearest(target)
	if !ok {
		return target
	}
	return systems.SurfacePoint(src, r3.Sub(target, src.Position), cfg.Agent.Altitude)
}

// rosterEntry is an agent's ID and primary behavior.
type rosterEntry struct {
	ID   uint32
	Kind components.GoalKind
}

// roster lists every agent in query order.
func (g *Game) roster() []rosterEntry {
	var out []rosterEntry
	query := g.agentFilter.Query()
	for query.Next() {
		_, ag, goal, _ := query.Get()
		out = append(out, rosterEntry{ID: ag.ID, Kind: goal.Kind})
	}
	return out
}

// pickQuarry returns a random agent for id to chase or keep away from.
// Evaders prefer pursuers; pursuers prefer anything that is not a pursuer.
func (g *Game) pickQuarry(id uint32, kind components.GoalKind, roster []rosterEntry) uint32 {
	var preferred, fallback []uint32
	for _, r := range roster {
		if r.ID == id {
			continue
		}
		fallback = append(fallback, r.ID)
		isPursuer := r.Kind == components.GoalPursue
		if (kind == components.GoalEvade) == isPursuer {
			preferred = append(preferred, r.ID)
		}
	}

	switch {
	case len(preferred) > 0:
		return preferred[g.rng.Intn(len(preferred))]
	case len(fallback) > 0:
		return fallback[g.rng.Intn(len(fallback))]
	}
	return 0
}

// respawnAgent moves a caught agent to a fresh spot and brings it to rest.
func (g *Game) respawnAgent(e ecs.Entity) {
	st := g.steeringMap.Get(e)
	ag := g.agentMap.Get(e)
	goal := g.goalMap.Get(e)
	if st == nil || ag == nil || goal == nil {
		return
	}

	pos, up := g.randomSurfacePoint()
	st.Position = pos
	// Host-side reset; Result takes over from the next tick
	st.Velocity = r3.Vec{}
	st.LookDirection = tangentLook(st.LookDirection, up)
	ag.Up = up
	ag.Grounded = false

	switch goal.Kind {
	case components.GoalSeek, components.GoalArrive, components.GoalFlee:
		goal.Target = g.rollTarget(pos)
	}
}

// tangentLook returns v flattened onto the surface plane at up, falling back to
// an arbitrary tangent when v points straight along up.
func tangentLook(v, up r3.Vec) r3.Vec {
	if look := systems.Tangent(v, up); look != (r3.Vec{}) {
		return look
	}
	if look := systems.Unit(r3.Cross(up, r3.Vec{X: 1})); look != (r3.Vec{}) {
		return look
	}
	return systems.Unit(r3.Cross(up, r3.Vec{Z: 1}))
}

// randomUnit returns a uniformly distributed unit vector.
func randomUnit(rng *rand.Rand) r3.Vec {
	z := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
}
