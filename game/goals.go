package game

import (
	"log/slog"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/systems"
)

// updateGoals re-rolls reached goals and resolves captures. Runs after
// applyIntents on the updated positions.
func (g *Game) updateGoals() {
	cfg := g.config()
	reach := cfg.Population.ReachDistance

	var roster []rosterEntry
	for i := range g.parallel.snapshots {
		snap := &g.parallel.snapshots[i]
		st := g.steeringMap.Get(snap.Entity)
		goal := g.goalMap.Get(snap.Entity)
		if st == nil || goal == nil {
			continue
		}

		switch goal.Kind {
		case components.GoalSeek, components.GoalArrive:
			if systems.Distance(st.Position, goal.Target) <= reach+snap.Radius {
				g.goalReached(goal, st)
			}

		case components.GoalFlee:
			if systems.Distance(st.Position, goal.Target) >= cfg.Population.GoalRadius {
				g.goalReached(goal, st)
			}

		case components.GoalPursue:
			quarry, ok := g.entities[goal.TargetID]
			if !ok {
				continue
			}
			qst := g.steeringMap.Get(quarry)
			if qst == nil {
				continue
			}
			qr := snap.Radius
			if qi, ok := g.parallel.index[goal.TargetID]; ok {
				qr = g.parallel.snapshots[qi].Radius
			}
			if systems.Distance(st.Position, qst.Position) > snap.Radius+qr+reach {
				continue
			}

			g.collector.RecordCapture()
			g.totalCaptures++
			goal.Reached++
			g.respawnAgent(quarry)

			if roster == nil {
				roster = g.roster()
			}
			goal.TargetID = g.pickQuarry(snap.ID, components.GoalPursue, roster)

			slog.Debug("capture", "tick", g.tick, "pursuer", snap.ID, "next", goal.TargetID)
		}
	}
}

// goalReached records a reached goal and rolls the next one.
func (g *Game) goalReached(goal *components.Goal, st *components.Steering) {
	goal.Reached++
	goal.Target = g.rollTarget(st.Position)
	g.totalReached++
	g.collector.RecordGoalReached()
}
