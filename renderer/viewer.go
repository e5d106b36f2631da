package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/camera"
	"github.com/pthm-cable/orbitsteer/game"
	"github.com/pthm-cable/orbitsteer/systems"
	"github.com/pthm-cable/orbitsteer/ui"
)

const controlsLegend = "RMB drag: orbit | Wheel: zoom | LMB: select | Space: pause | ,/.: speed | S: step | Tab: controls | R/F/V/L/G/A/N: overlays"

// Viewer is the interactive window: camera, input and all drawing for a game.
type Viewer struct {
	game *game.Game
	cam  *camera.Camera

	background *BackgroundRenderer
	planets    *PlanetRenderer
	field      *FieldRenderer
	agents     *AgentRenderer

	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	inspector *ui.Inspector

	screenW, screenH int32
	showPerf         bool
}

// NewViewer creates a viewer for g. Must be called after rl.InitWindow.
func NewViewer(g *game.Game, screenW, screenH int32) *Viewer {
	maxRadius := 0.0
	for _, src := range g.Field().Sources() {
		maxRadius = math.Max(maxRadius, src.Radius)
	}

	v := &Viewer{
		game:       g,
		cam:        camera.New(10, math.Max(100, maxRadius*4)),
		background: NewBackgroundRenderer(screenW, screenH, 30, 40, 60),
		planets:    NewPlanetRenderer(),
		field:      NewFieldRenderer(),
		agents:     NewAgentRenderer(),
		overlays:   ui.NewOverlayRegistry(),
		hud:        ui.NewHUD(),
		perfPanel:  ui.NewPerfPanel(screenW-260, 10),
		controls:   ui.NewControlsPanel(10, 120, 240),
		inspector:  ui.NewInspector(screenW-260, 140, 250),
		screenW:    screenW,
		screenH:    screenH,
	}
	v.cam.Follow(v.homeTarget(), g.Field())
	return v
}

// Update handles input, advances the game and moves the camera.
func (v *Viewer) Update() {
	v.handleResize()
	v.handleInput()
	v.game.Update()

	target := v.homeTarget()
	if id, ok := v.game.Selected(); ok {
		if a, alive := v.game.Agent(id); alive {
			target = a.Position
		}
	}
	v.cam.Follow(target, v.game.Field())
	v.cam.Update(float64(rl.GetFrameTime()))
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	v.background.Draw()

	rl.BeginMode3D(v.camera3D())
	v.drawWorld()
	rl.EndMode3D()

	v.drawUI()
	rl.EndDrawing()
}

func (v *Viewer) drawWorld() {
	g := v.game
	v.planets.Draw(g.Field().Sources(), v.overlays.IsEnabled(ui.OverlayAttractionRadius))
	if v.overlays.IsEnabled(ui.OverlayFieldVectors) {
		v.field.Draw(g.Field())
	}
	v.planets.DrawObstacles(g.Obstacles())

	selected, hasSelection := g.Selected()
	ov := AgentOverlays{
		Velocity: v.overlays.IsEnabled(ui.OverlayVelocity),
		Look:     v.overlays.IsEnabled(ui.OverlayLook),
		Goals:    v.overlays.IsEnabled(ui.OverlayGoals),
	}
	if v.overlays.IsEnabled(ui.OverlayNeighbors) {
		ov.Neighbors = g.Config().Steering.NeighborRadius
	}
	v.agents.Draw(g.Agents(), selected, hasSelection, ov)

	if hasSelection && v.overlays.IsEnabled(ui.OverlayAvoidTrace) {
		if a, ok := g.Agent(selected); ok {
			v.agents.DrawAvoidTrace(a.Position, g.Config().Steering.Avoid.ScanRadius, g.AvoidTrace())
		}
	}
}

func (v *Viewer) drawUI() {
	g := v.game
	v.hud.Draw(ui.HUDData{
		Title:        "Orbit Steer",
		Agents:       g.AgentCount(),
		Planets:      g.Field().Len(),
		Obstacles:    len(g.Obstacles()),
		Tick:         g.Tick(),
		Speed:        g.Speed(),
		FPS:          rl.GetFPS(),
		Paused:       g.Paused(),
		GoalsReached: g.GoalsReached(),
		Captures:     g.Captures(),
		Window:       g.LastStats(),
	})
	v.hud.DrawControls(v.screenH, controlsLegend)

	if v.showPerf {
		v.perfPanel.Draw(g.PerfStats())
	}

	cfg := g.Config()
	state := ui.ControlsState{
		Paused:  g.Paused(),
		Speed:   g.Speed(),
		Weights: &cfg.Steering.Weights,
		Avoid:   &cfg.Steering.Avoid,
	}
	v.controls.Draw(&state, game.MaxSpeed, v.overlays)
	g.SetPaused(state.Paused)
	g.SetSpeed(state.Speed)

	if id, ok := g.Selected(); ok {
		if data, alive := v.inspectorData(id); alive {
			v.inspector.Draw(data)
		}
	}
}

func (v *Viewer) inspectorData(id uint32) (ui.InspectorData, bool) {
	g := v.game
	a, ok := g.Agent(id)
	if !ok {
		return ui.InspectorData{}, false
	}

	data := ui.InspectorData{
		Agent:      a,
		Attraction: g.Field().NetAttraction(a.Position),
		MovePower:  systems.MovePower(a.Look, a.Position, g.Field()),
	}
	if src, ok := g.Field().Nearest(a.Position); ok {
		data.Altitude = src.DistanceToCore(a.Position) - src.Radius - a.Radius
	}
	for _, s := range g.AvoidTrace() {
		if s.Danger > 0 {
			data.AvoidHits++
		}
	}
	if a.Goal.TargetID != 0 {
		_, data.QuarryAlive = g.Agent(a.Goal.TargetID)
	}
	return data, true
}

func (v *Viewer) handleInput() {
	g := v.game

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		g.SetPaused(!g.Paused())
	case rl.IsKeyPressed(rl.KeyComma):
		g.SetSpeed(g.Speed() - 1)
	case rl.IsKeyPressed(rl.KeyPeriod):
		g.SetSpeed(g.Speed() + 1)
	case rl.IsKeyPressed(rl.KeyS) && g.Paused():
		g.StepOnce()
	case rl.IsKeyPressed(rl.KeyTab):
		v.controls.Toggle()
	case rl.IsKeyPressed(rl.KeyP):
		v.showPerf = !v.showPerf
	}
	v.overlays.HandleKeys()

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Rotate(float64(d.X)*0.3, float64(d.Y)*0.3)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(float64(wheel) * 0.05)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if v.controls.Contains(mouse) {
			return
		}
		ray := rl.GetScreenToWorldRay(mouse, v.camera3D())
		if id, ok := g.PickAgent(fromRL(ray.Position), fromRL(ray.Direction)); ok {
			g.Select(id)
		} else {
			g.ClearSelection()
		}
	}
}

func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v.screenW = int32(rl.GetScreenWidth())
	v.screenH = int32(rl.GetScreenHeight())
	v.background.Resize(v.screenW, v.screenH)
	v.perfPanel.SetPosition(v.screenW-260, 10)
	v.inspector.SetPosition(v.screenW-260, 140)
}

// homeTarget is the camera pivot with nothing selected: the top of the
// first planet, or the origin.
func (v *Viewer) homeTarget() r3.Vec {
	srcs := v.game.Field().Sources()
	if len(srcs) == 0 {
		return r3.Vec{}
	}
	return r3.Add(srcs[0].Position, r3.Vec{Y: srcs[0].Radius})
}

func (v *Viewer) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(v.cam.Position()),
		Target:     vec(v.cam.Target),
		Up:         vec(v.cam.Up()),
		Fovy:       50,
		Projection: rl.CameraPerspective,
	}
}
