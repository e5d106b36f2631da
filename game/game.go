// Package game hosts the steering simulation: an ECS world of agents on
// planets, stepped at a fixed rate with a parallel compute phase.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/systems"
	"github.com/pthm-cable/orbitsteer/telemetry"
)

// Speed limits for Update.
const (
	MinSpeed = 1
	MaxSpeed = 20
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = config telemetry.stats_window
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Config overrides the global config (used by the optimizer and tests).
	Config *config.Config

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64
	cfg     *config.Config

	agentMapper *ecs.Map4[
		components.Steering,
		components.Agent,
		components.Goal,
		components.Body,
	]
	agentFilter *ecs.Filter4[
		components.Steering,
		components.Agent,
		components.Goal,
		components.Body,
	]
	obstacleMapper *ecs.Map1[components.Obstacle]
	obstacleFilter *ecs.Filter1[components.Obstacle]

	// Individual component mappers for lookups
	steeringMap *ecs.Map1[components.Steering]
	agentMap    *ecs.Map1[components.Agent]
	goalMap     *ecs.Map1[components.Goal]
	bodyMap     *ecs.Map1[components.Body]

	// Per-agent wander streams, keyed by agent ID
	agentRNG map[uint32]*rand.Rand
	entities map[uint32]ecs.Entity

	field       *systems.AttractionField
	probe       *systems.SphereProbe
	spatialGrid *systems.SpatialGrid

	parallel *parallelState

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
	lastStats        telemetry.WindowStats

	// Selection (viewer)
	selectedID   uint32
	hasSelection bool
	avoidTrace   []AvoidSample

	// State
	tick           int32
	paused         bool
	speed          int
	stepsPerUpdate int
	nextID         uint32
	totalReached   int
	totalCaptures  int
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		world:   world,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,
		cfg:     cfg,
		agentMapper: ecs.NewMap4[
			components.Steering,
			components.Agent,
			components.Goal,
			components.Body,
		](world),
		agentFilter: ecs.NewFilter4[
			components.Steering,
			components.Agent,
			components.Goal,
			components.Body,
		](world),
		obstacleMapper: ecs.NewMap1[components.Obstacle](world),
		obstacleFilter: ecs.NewFilter1[components.Obstacle](world),
		steeringMap:    ecs.NewMap1[components.Steering](world),
		agentMap:       ecs.NewMap1[components.Agent](world),
		goalMap:        ecs.NewMap1[components.Goal](world),
		bodyMap:        ecs.NewMap1[components.Body](world),

		agentRNG: make(map[uint32]*rand.Rand),
		entities: make(map[uint32]ecs.Entity),

		field:       systems.NewAttractionField(),
		probe:       systems.NewSphereProbe(cfg.Population.Agents + len(cfg.Obstacles)),
		spatialGrid: systems.NewSpatialGrid(cfg.Physics.GridCellSize),
		parallel:    newParallelState(),

		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,

		speed:          1,
		stepsPerUpdate: steps,
		nextID:         1,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.registerPlanets()
	g.spawnObstacles()
	g.spawnInitialPopulation()

	return g
}

// config returns the game's configuration.
func (g *Game) config() *config.Config {
	return g.cfg
}

// Update advances the simulation by speed steps unless paused.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.step()
	}
}

// UpdateHeadless advances the simulation by StepsPerUpdate steps.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step runs one fixed simulation tick.
func (g *Game) step() {
	dt := g.config().Physics.DT
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.buildSnapshots()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.rebuildSpatialGrid()

	g.perfCollector.StartPhase(telemetry.PhaseSteering)
	g.computeIntents(dt)

	g.perfCollector.StartPhase(telemetry.PhaseApply)
	g.applyIntents()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseGoals)
	g.updateGoals()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Field returns the attraction field agents move in.
func (g *Game) Field() *systems.AttractionField {
	return g.field
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// GoalsReached returns the total number of goals reached since start.
func (g *Game) GoalsReached() int {
	return g.totalReached
}

// Captures returns the total number of pursuer captures since start.
func (g *Game) Captures() int {
	return g.totalCaptures
}

// LastStats returns the most recently flushed telemetry window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}

// PerfStats returns timing over the perf collector window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Speed returns the number of ticks run per Update.
func (g *Game) Speed() int {
	return g.speed
}

// SetSpeed sets the number of ticks run per Update, clamped to [MinSpeed, MaxSpeed].
func (g *Game) SetSpeed(speed int) {
	g.speed = min(max(speed, MinSpeed), MaxSpeed)
}

// StepOnce runs a single tick regardless of pause state.
func (g *Game) StepOnce() {
	g.step()
}

// Unload stops the worker pool and closes output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
