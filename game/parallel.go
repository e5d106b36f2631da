package game

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// agentSnapshot captures read-only state for the compute phase.
type agentSnapshot struct {
	Entity     ecs.Entity
	ID         uint32
	Steering   components.Steering
	Up         r3.Vec
	BaseSpeed  float64
	UseGravity bool
	Grounded   bool
	Radius     float64
	Goal       components.Goal
	Quarry     int // snapshot index of the pursue/evade target, -1 if none
	Rand       *rand.Rand
}

// intent captures computed outputs to apply after the compute phase.
type intent struct {
	Velocity  r3.Vec
	Position  r3.Vec
	Up        r3.Vec
	Look      r3.Vec
	MaxSpeed  float64
	Grounded  bool
	AvoidHits int
	Heading   r3.Vec // direction avoidance sampled around
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
	Others    []systems.Published
	Flock     []systems.Published
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	dt         float64
}

// parallelState holds resources for parallel steering computation.
type parallelState struct {
	snapshots  []agentSnapshot
	published  []systems.Published
	intents    []intent
	index      map[uint32]int // agent ID -> snapshot index
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
		scratches[i].Others = make([]systems.Published, 0, 64)
		scratches[i].Flock = make([]systems.Published, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
		snapshots:  make([]agentSnapshot, 0, 256),
		published:  make([]systems.Published, 0, 256),
		intents:    make([]intent, 0, 256),
		index:      make(map[uint32]int),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end, scratch, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// buildSnapshots copies every agent's state and refreshes the obstacle probe.
// Nothing written during the compute phase is visible until applyIntents.
func (g *Game) buildSnapshots() {
	p := g.parallel
	p.snapshots = p.snapshots[:0]
	p.published = p.published[:0]
	clear(p.index)

	query := g.agentFilter.Query()
	for query.Next() {
		entity := query.Entity()
		st, ag, goal, body := query.Get()

		p.index[ag.ID] = len(p.snapshots)
		p.snapshots = append(p.snapshots, agentSnapshot{
			Entity:     entity,
			ID:         ag.ID,
			Steering:   *st,
			Up:         ag.Up,
			BaseSpeed:  ag.BaseSpeed,
			UseGravity: ag.UseGravity,
			Grounded:   ag.Grounded,
			Radius:     body.Radius,
			Goal:       *goal,
			Quarry:     -1,
			Rand:       g.agentRNG[ag.ID],
		})
		p.published = append(p.published, systems.Published{
			ID:       ag.ID,
			Position: st.Position,
			Velocity: st.Velocity,
			MaxSpeed: st.MaxSpeed,
		})
	}

	for i := range p.snapshots {
		s := &p.snapshots[i]
		if s.Goal.Kind != components.GoalPursue && s.Goal.Kind != components.GoalEvade {
			continue
		}
		if idx, ok := p.index[s.Goal.TargetID]; ok && idx != i {
			s.Quarry = idx
		}
	}

	// Obstacles and agent bodies are both visible to avoidance
	g.probe.Reset()
	oq := g.obstacleFilter.Query()
	for oq.Next() {
		o := oq.Get()
		g.probe.Add(0, o.Position, o.Radius, o.Layer)
	}
	for i := range p.snapshots {
		s := &p.snapshots[i]
		g.probe.Add(s.ID, s.Steering.Position, s.Radius, agentLayer)
	}
}

// rebuildSpatialGrid indexes the snapshot positions.
func (g *Game) rebuildSpatialGrid() {
	g.spatialGrid.Clear()
	for i := range g.parallel.snapshots {
		g.spatialGrid.Insert(i, g.parallel.snapshots[i].Steering.Position)
	}
}

// computeIntents runs the compute phase, in parallel for large populations.
func (g *Game) computeIntents(dt float64) {
	p := g.parallel
	n := len(p.snapshots)
	if n == 0 {
		return
	}

	if cap(p.intents) < n {
		p.intents = make([]intent, n)
	}
	p.intents = p.intents[:n]

	if n < parallelThreshold {
		g.computeChunk(0, n, &p.scratches[0], dt)
	} else {
		g.computeParallel(n, dt)
	}
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int, dt float64) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		g.parallel.workChan <- workChunk{start: start, end: end, dt: dt}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// applyIntents writes computed results back to ECS components.
func (g *Game) applyIntents() {
	for i := range g.parallel.snapshots {
		snap := &g.parallel.snapshots[i]
		in := &g.parallel.intents[i]

		st := g.steeringMap.Get(snap.Entity)
		ag := g.agentMap.Get(snap.Entity)
		if st == nil || ag == nil {
			continue
		}

		st.Velocity = in.Velocity
		st.Position = in.Position
		st.LookDirection = in.Look
		st.MaxSpeed = in.MaxSpeed
		ag.Up = in.Up

		if in.Grounded && !ag.Grounded {
			g.collector.RecordSurfaceContact()
		}
		ag.Grounded = in.Grounded
		g.collector.RecordAvoidHits(in.AvoidHits)

		// Selected agent only: record the avoidance samples it saw this tick
		if g.hasSelection && snap.ID == g.selectedID {
			g.captureAvoidTrace(snap, in)
		}
	}
}

// computeChunk processes a range of agents for a single worker.
func (g *Game) computeChunk(i0, i1 int, scratch *workerScratch, dt float64) {
	for i := i0; i < i1; i++ {
		g.parallel.intents[i] = g.computeAgent(i, scratch, dt)
	}
}

// computeAgent steers one agent and integrates its motion. It reads only
// snapshots and shared read-only structures.
func (g *Game) computeAgent(i int, scratch *workerScratch, dt float64) intent {
	cfg := g.config()
	snap := &g.parallel.snapshots[i]

	st := snap.Steering
	if cfg.Agent.OrientSpeed {
		st.MaxSpeed = snap.BaseSpeed * systems.MovePower(st.LookDirection, st.Position, g.field)
	}

	agent := g.bindAgent(snap, &st)
	forces, heading, avoidHits := g.steer(i, &agent, snap, scratch)
	agent.Result(forces...)

	attraction := g.field.NetAttraction(st.Position)
	step := systems.Integrate(st, snap.Up, attraction, snap.UseGravity, dt)
	pos := systems.ClampToSurface(step.Position, snap.Radius, g.field)

	return intent{
		Velocity:  st.Velocity,
		Position:  pos,
		Up:        step.Up,
		Look:      step.Look,
		MaxSpeed:  st.MaxSpeed,
		Grounded:  pos != step.Position,
		AvoidHits: avoidHits,
		Heading:   heading,
	}
}

// bindAgent wraps a snapshot's steering state for the behavior functions.
func (g *Game) bindAgent(snap *agentSnapshot, st *components.Steering) systems.Agent {
	return systems.Agent{
		ID:    snap.ID,
		State: st,
		Up:    snap.Up,
		Body:  components.SphereCollider{Center: st.Position, Radius: snap.Radius},
	}
}

// steer returns the weighted behavior forces for agent i, the heading
// avoidance sampled around and the number of samples that hit something.
func (g *Game) steer(i int, agent *systems.Agent, snap *agentSnapshot, scratch *workerScratch) ([]r3.Vec, r3.Vec, int) {
	cfg := g.config()
	sc := &cfg.Steering
	w := &sc.Weights

	goal := g.goalForce(agent, snap)

	// Neighbours within the larger of the two perception radii
	radius := max(sc.SeparationThreshold, sc.NeighborRadius)
	scratch.Neighbors = g.spatialGrid.QueryRadiusInto(scratch.Neighbors[:0], agent.State.Position, radius, i)
	scratch.Others = scratch.Others[:0]
	scratch.Flock = scratch.Flock[:0]
	nr2 := sc.NeighborRadius * sc.NeighborRadius
	for _, n := range scratch.Neighbors {
		other := g.parallel.published[n.Index]
		scratch.Others = append(scratch.Others, other)
		if n.DistSq <= nr2 {
			scratch.Flock = append(scratch.Flock, other)
		}
	}

	separation := agent.Separation(scratch.Others, sc.SeparationThreshold)

	var alignment, cohesion r3.Vec
	if len(scratch.Flock) > 0 {
		if w.Alignment != 0 {
			alignment = systems.Alignment(scratch.Flock)
		}
		if w.Cohesion != 0 {
			cohesion = agent.Seek(systems.Cohesion(scratch.Flock))
		}
	}

	// Avoid around the way the goal is pulling, or the current heading
	heading := systems.Unit(goal)
	if heading == (r3.Vec{}) {
		heading = agent.State.LookDirection
	}
	hits := 0
	params := g.avoidParams()
	params.Trace = func(_ r3.Vec, _, danger float64) {
		if danger > 0 {
			hits++
		}
	}
	avoid := agent.Avoid(heading, params, g.probe.Ignoring(snap.ID))

	return []r3.Vec{
		r3.Scale(w.Goal, goal),
		r3.Scale(w.Separation, separation),
		r3.Scale(w.Alignment, alignment),
		r3.Scale(w.Cohesion, cohesion),
		r3.Scale(w.Avoid, avoid),
	}, heading, hits
}

// goalForce returns the desired velocity for the agent's primary behavior.
func (g *Game) goalForce(agent *systems.Agent, snap *agentSnapshot) r3.Vec {
	sc := &g.config().Steering

	switch snap.Goal.Kind {
	case components.GoalSeek:
		return agent.Seek(snap.Goal.Target)
	case components.GoalArrive:
		return agent.Arrive(snap.Goal.Target, sc.BrakeDistance)
	case components.GoalFlee:
		return agent.Flee(snap.Goal.Target)
	case components.GoalPursue, components.GoalEvade:
		if snap.Quarry < 0 {
			return r3.Vec{}
		}
		other := g.parallel.published[snap.Quarry]
		if snap.Goal.Kind == components.GoalPursue {
			return agent.Pursue(other, g.predictionCap())
		}
		return agent.Evade(other, g.predictionCap())
	case components.GoalWander:
		if snap.Rand == nil {
			return r3.Vec{}
		}
		w := sc.Wander
		return agent.Wander(agent.State.LookDirection, w.MaxAngle, w.Radius, w.Distance, snap.Rand)
	}
	return r3.Vec{}
}

// avoidParams converts the avoid config.
func (g *Game) avoidParams() systems.AvoidParams {
	a := g.config().Steering.Avoid
	return systems.AvoidParams{
		ScanRadius:   a.ScanRadius,
		Samples:      a.SampleCount,
		DangerWeight: a.DangerWeight,
		Mask:         a.LayerMask,
	}
}

// predictionCap returns the pursue/evade horizon cap; 0 means uncapped.
func (g *Game) predictionCap() float64 {
	if c := g.config().Steering.MaxPredictionDistance; c > 0 {
		return c
	}
	return systems.NoPredictionCap
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
