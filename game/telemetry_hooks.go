package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/systems"
	"github.com/pthm-cable/orbitsteer/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleAgents())
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleAgents collects per-agent values for the window distributions.
func (g *Game) sampleAgents() telemetry.Sample {
	s := telemetry.Sample{}

	query := g.agentFilter.Query()
	for query.Next() {
		st, _, _, body := query.Get()
		s.Agents++
		s.Speeds = append(s.Speeds, st.Speed())
		s.Attractions = append(s.Attractions, r3.Norm(g.field.NetAttraction(st.Position)))
		s.MovePowers = append(s.MovePowers, systems.MovePower(st.LookDirection, st.Position, g.field))

		if src, ok := g.field.Nearest(st.Position); ok {
			s.Altitudes = append(s.Altitudes, src.DistanceToCore(st.Position)-src.Radius-body.Radius)
		}
	}

	return s
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.CreateSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// CreateSnapshot builds a snapshot from the current state.
func (g *Game) CreateSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	cfg := g.config()
	snapshot := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   g.rngSeed,
		Tick:      g.tick,
		Planets:   cfg.Planets,
		Obstacles: cfg.Obstacles,
		Bookmark:  bookmark,
	}

	for _, a := range g.Agents() {
		snapshot.Agents = append(snapshot.Agents, telemetry.AgentState{
			ID:           a.ID,
			Position:     vec3(a.Position),
			Velocity:     vec3(a.Velocity),
			Look:         vec3(a.Look),
			Up:           vec3(a.Up),
			MaxSpeed:     a.MaxSpeed,
			Goal:         a.Goal.Kind.String(),
			GoalTarget:   vec3(a.Goal.Target),
			GoalTargetID: a.Goal.TargetID,
			GoalsReached: a.Goal.Reached,
		})
	}

	return snapshot
}

func vec3(v r3.Vec) config.Vec3 {
	return config.Vec3{v.X, v.Y, v.Z}
}
