package game

import (
	"log/slog"
)

// LogValue implements slog.LogValuer with a run summary.
func (g *Game) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(g.tick)),
		slog.Float64("sim_time", float64(g.tick)*g.config().Physics.DT),
		slog.Int("agents", g.AgentCount()),
		slog.Int("planets", g.field.Len()),
		slog.Int("goals_reached", g.totalReached),
		slog.Int("captures", g.totalCaptures),
		slog.Int64("seed", g.rngSeed),
	)
}

// LogSummary logs the run summary at info level.
func (g *Game) LogSummary(msg string) {
	perf := g.perfCollector.Stats()
	slog.Info(msg, "game", g, "perf", perf)
}
