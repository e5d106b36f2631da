package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/game"
)

// AgentOverlays selects the per-agent decorations to draw.
type AgentOverlays struct {
	Velocity  bool
	Look      bool
	Goals     bool
	Neighbors float64 // radius to draw around the selected agent, 0 = off
}

// AgentRenderer draws agents, their headings and the selected agent's
// avoidance samples.
type AgentRenderer struct {
	selectedColor rl.Color
}

// NewAgentRenderer creates a new agent renderer.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{selectedColor: rl.White}
}

// Draw renders every agent. Call inside BeginMode3D.
func (r *AgentRenderer) Draw(agents []game.AgentView, selected uint32, hasSelection bool, ov AgentOverlays) {
	for i := range agents {
		a := &agents[i]
		pos := vec(a.Position)
		color := goalColor(a.Goal.Kind)

		rl.DrawSphereEx(pos, float32(a.Radius), 8, 10, color)
		if hasSelection && a.ID == selected {
			rl.DrawSphereWires(pos, float32(a.Radius)*1.6, 6, 8, r.selectedColor)
			if ov.Neighbors > 0 {
				rl.DrawSphereWires(pos, float32(ov.Neighbors), 8, 12, rl.Color{R: 255, G: 255, B: 255, A: 40})
			}
		}

		if ov.Velocity && r3.Norm2(a.Velocity) > 0 {
			rl.DrawLine3D(pos, segment(a.Position, a.Velocity, 0.5), rl.Green)
		}
		if ov.Look {
			rl.DrawLine3D(pos, segment(a.Position, a.Look, 3*a.Radius), rl.SkyBlue)
		}
		if ov.Goals {
			r.drawGoal(a, agents)
		}
	}
}

// drawGoal links an agent to its target point or quarry.
func (r *AgentRenderer) drawGoal(a *game.AgentView, agents []game.AgentView) {
	color := goalColor(a.Goal.Kind)
	color.A = 90

	switch a.Goal.Kind {
	case components.GoalSeek, components.GoalArrive, components.GoalFlee:
		target := vec(a.Goal.Target)
		rl.DrawCube(target, 0.8, 0.8, 0.8, color)
		rl.DrawLine3D(vec(a.Position), target, color)
	case components.GoalPursue, components.GoalEvade:
		for i := range agents {
			if agents[i].ID == a.Goal.TargetID {
				rl.DrawLine3D(vec(a.Position), vec(agents[i].Position), color)
				break
			}
		}
	}
}

// DrawAvoidTrace renders the selected agent's avoidance samples as rays
// scaled by influence and colored by danger.
func (r *AgentRenderer) DrawAvoidTrace(origin r3.Vec, scanRadius float64, trace []game.AvoidSample) {
	for _, s := range trace {
		length := scanRadius * (0.25 + 0.75*s.Influence)
		rl.DrawLine3D(vec(origin), segment(origin, s.Direction, length), dangerColor(s.Danger))
	}
}
