package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/game"
	"github.com/pthm-cable/orbitsteer/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the telemetry windows of the best seed run so far.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	goals       int
	captures    int
	agents      int
	simSeconds  float64
	windowStats []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: computeFitness(result),
				quality: computeQuality(result.windowStats),
				windows: result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedWindows []telemetry.WindowStats
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}

	result.goals = g.GoalsReached()
	result.captures = g.Captures()
	result.agents = g.AgentCount()
	result.simSeconds = float64(g.Tick()) * cfg.Physics.DT
	return result
}

// copyConfig returns a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Planets = slices.Clone(fe.baseConfig.Planets)
	cfg.Obstacles = slices.Clone(fe.baseConfig.Obstacles)
	return &cfg
}

// Fitness weights.
const (
	captureWeight = 2.0 // a capture is worth this many goals
	qualityBonus  = 0.2 // quality adds up to this fraction
)

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(events per agent-minute × (1 + 0.2 × quality)), where events
// are goals reached plus weighted captures.
func computeFitness(r *runResult) float64 {
	if r.agents == 0 || r.simSeconds == 0 {
		return 0
	}
	events := float64(r.goals) + captureWeight*float64(r.captures)
	rate := events / float64(r.agents) / (r.simSeconds / 60)
	return -(rate * (1 + qualityBonus*computeQuality(r.windowStats)))
}

// Quality component weights.
const (
	qualityWeightSteady  = 0.5
	qualityWeightClear   = 0.3
	qualityWeightGrounds = 0.2

	qualityWarmupWindows = 1
)

// computeQuality scores run smoothness in [0, 1] from window stats: steady
// goal rates, few avoidance hits and agents kept off the ground.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	rates := make([]float64, 0, len(valid))
	var hitsPerAgent, contactsPerAgent float64
	for _, w := range valid {
		rates = append(rates, w.GoalRate)
		if w.Agents > 0 {
			hitsPerAgent += float64(w.AvoidHits) / float64(w.Agents)
			contactsPerAgent += float64(w.SurfaceContacts) / float64(w.Agents)
		}
	}
	n := float64(len(valid))

	steady := 0.0
	if len(rates) >= 2 {
		mean, std := stat.MeanStdDev(rates, nil)
		if mean > 0 {
			cv := std / mean
			steady = math.Exp(-cv * cv)
		}
	}
	clearance := math.Exp(-hitsPerAgent / n / 50)
	grounds := math.Exp(-contactsPerAgent / n)

	quality := qualityWeightSteady*steady +
		qualityWeightClear*clearance +
		qualityWeightGrounds*grounds
	return min(max(quality, 0), 1)
}
