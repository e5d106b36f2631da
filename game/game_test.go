package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, seed int64) *Game {
	t.Helper()
	g := NewGameWithOptions(Options{Seed: seed, Config: cfg})
	t.Cleanup(g.Unload)
	return g
}

func runTicks(g *Game, n int) {
	for i := 0; i < n; i++ {
		g.StepOnce()
	}
}

func TestNewGameSpawnsPopulation(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg, 1)

	agents := g.Agents()
	if len(agents) != cfg.Population.Agents {
		t.Fatalf("spawned %d agents, want %d", len(agents), cfg.Population.Agents)
	}

	kinds := map[components.GoalKind]uint32{}
	home := g.Field().Sources()[0]
	pursuers := map[uint32]bool{}
	for _, a := range agents {
		kinds[a.Goal.Kind]++
		if a.Goal.Kind == components.GoalPursue {
			pursuers[a.ID] = true
		}
		want := home.Radius + cfg.Agent.Altitude
		if d := home.DistanceToCore(a.Position); math.Abs(d-want) > 1e-9 {
			t.Errorf("agent %d spawned at distance %v, want %v", a.ID, d, want)
		}
		if math.Abs(r3.Norm(a.Look)-1) > 1e-9 || math.Abs(r3.Dot(a.Look, a.Up)) > 1e-9 {
			t.Errorf("agent %d look %v not a unit tangent to up %v", a.ID, a.Look, a.Up)
		}
	}

	pop := cfg.Population
	if int(kinds[components.GoalPursue]) != pop.Pursuers ||
		int(kinds[components.GoalEvade]) != pop.Evaders ||
		int(kinds[components.GoalWander]) != pop.Wanderers {
		t.Errorf("role counts = %v", kinds)
	}

	for _, a := range agents {
		switch a.Goal.Kind {
		case components.GoalPursue:
			if a.Goal.TargetID == 0 || a.Goal.TargetID == a.ID || pursuers[a.Goal.TargetID] {
				t.Errorf("pursuer %d has quarry %d", a.ID, a.Goal.TargetID)
			}
		case components.GoalEvade:
			if !pursuers[a.Goal.TargetID] {
				t.Errorf("evader %d keeps away from %d, want a pursuer", a.ID, a.Goal.TargetID)
			}
		}
	}

	if got := len(g.Obstacles()); got != len(cfg.Obstacles) {
		t.Errorf("obstacles = %d, want %d", got, len(cfg.Obstacles))
	}
}

func TestStepKeepsInvariants(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg, 7)
	home := g.Field().Sources()[0]

	for tick := 0; tick < 200; tick++ {
		g.StepOnce()
		for _, a := range g.Agents() {
			if d := home.DistanceToCore(a.Position); d < home.Radius+a.Radius-1e-9 {
				t.Fatalf("tick %d: agent %d sank to %v", tick, a.ID, d)
			}
			if s := r3.Norm(a.Velocity); s > a.MaxSpeed+1e-9 {
				t.Fatalf("tick %d: agent %d speed %v above max %v", tick, a.ID, s, a.MaxSpeed)
			}
			if math.Abs(r3.Norm(a.Look)-1) > 1e-6 {
				t.Fatalf("tick %d: agent %d look %v not unit", tick, a.ID, a.Look)
			}
		}
	}

	if g.Tick() != 200 {
		t.Errorf("Tick() = %d, want 200", g.Tick())
	}
}

func TestPauseAndSpeed(t *testing.T) {
	g := newTestGame(t, testConfig(t), 1)

	g.SetPaused(true)
	g.Update()
	if g.Tick() != 0 {
		t.Errorf("paused Update advanced to tick %d", g.Tick())
	}

	g.SetPaused(false)
	g.SetSpeed(3)
	g.Update()
	if g.Tick() != 3 {
		t.Errorf("Update at speed 3 reached tick %d", g.Tick())
	}

	g.SetSpeed(1000)
	if g.Speed() != MaxSpeed {
		t.Errorf("Speed() = %d, want clamp to %d", g.Speed(), MaxSpeed)
	}
	g.SetSpeed(0)
	if g.Speed() != MinSpeed {
		t.Errorf("Speed() = %d, want clamp to %d", g.Speed(), MinSpeed)
	}
}

func TestUpdateHeadlessRunsStepsPerUpdate(t *testing.T) {
	g := NewGameWithOptions(Options{Seed: 1, Config: testConfig(t), StepsPerUpdate: 4, Headless: true})
	defer g.Unload()

	g.UpdateHeadless()
	g.UpdateHeadless()
	if g.Tick() != 8 {
		t.Errorf("Tick() = %d, want 8", g.Tick())
	}
}

func TestStatsCallback(t *testing.T) {
	cfg := testConfig(t)
	var windows []telemetry.WindowStats
	g := NewGameWithOptions(Options{
		Seed:           3,
		Config:         cfg,
		StatsWindowSec: 0.1, // 5 ticks
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})
	defer g.Unload()

	runTicks(g, 10)

	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	w := windows[1]
	if w.WindowStartTick != 5 || w.WindowEndTick != 10 {
		t.Errorf("window ticks = %d..%d, want 5..10", w.WindowStartTick, w.WindowEndTick)
	}
	if w.Agents != cfg.Population.Agents {
		t.Errorf("Agents = %d, want %d", w.Agents, cfg.Population.Agents)
	}
	if w.AttractionMean <= 0 {
		t.Errorf("AttractionMean = %v, agents should feel the planet", w.AttractionMean)
	}
	if g.LastStats() != w {
		t.Error("LastStats should return the last flushed window")
	}
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g := NewGameWithOptions(Options{
		Seed:           5,
		Config:         testConfig(t),
		StatsWindowSec: 0.1,
		OutputDir:      dir,
	})
	runTicks(g, 15)
	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	rows := 0
	for _, b := range data {
		if b == '\n' {
			rows++
		}
	}
	if rows != 4 { // header + 3 windows
		t.Errorf("telemetry.csv has %d lines, want 4", rows)
	}
}

func TestCreateSnapshot(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg, 9)
	runTicks(g, 3)

	snap := g.CreateSnapshot(nil)
	if snap.Tick != 3 || snap.RNGSeed != 9 || snap.Version != telemetry.SnapshotVersion {
		t.Errorf("snapshot header = %+v", snap)
	}
	if len(snap.Agents) != cfg.Population.Agents {
		t.Errorf("snapshot has %d agents, want %d", len(snap.Agents), cfg.Population.Agents)
	}
	if len(snap.Planets) != len(cfg.Planets) {
		t.Errorf("snapshot has %d planets", len(snap.Planets))
	}
}
