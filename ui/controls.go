package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orbitsteer/config"
)

// ControlsState is what the controls panel edits.
type ControlsState struct {
	Paused  bool
	Speed   int
	Weights *config.BehaviorWeights
	Avoid   *config.AvoidConfig
}

// ControlsPanel renders the left-side panel: run controls, behavior weight
// sliders and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel, initially hidden.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the panel, so clicks
// there are not used for picking.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return p.X >= float32(c.x) && p.X <= float32(c.x+c.width) && p.Y >= float32(c.y)
}

// Draw renders the panel and applies edits to state. Returns the Y below the panel.
func (c *ControlsPanel) Draw(state *ControlsState, maxSpeed int, overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := c.y + padding

	rl.DrawText("Controls", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	pauseText := "Pause"
	if state.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 24}, pauseText) {
		state.Paused = !state.Paused
	}
	y += 30

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: float32(y), Width: inner - 80, Height: 16},
		"Speed", fmt.Sprintf("%dx", state.Speed),
		float32(state.Speed), 1, float32(maxSpeed),
	)
	state.Speed = int(speed + 0.5)
	y += lineHeight + 10

	if state.Weights != nil {
		y = r.DrawSectionHeader(int32(x), y, "Weights")
		y = c.slider(x, y, inner, "Goal", &state.Weights.Goal, 0, 3)
		y = c.slider(x, y, inner, "Separate", &state.Weights.Separation, 0, 3)
		y = c.slider(x, y, inner, "Align", &state.Weights.Alignment, 0, 3)
		y = c.slider(x, y, inner, "Cohere", &state.Weights.Cohesion, 0, 3)
		y = c.slider(x, y, inner, "Avoid", &state.Weights.Avoid, 0, 3)
	}
	if state.Avoid != nil {
		y = c.slider(x, y, inner, "Danger", &state.Avoid.DangerWeight, 0, 1)
		y = c.slider(x, y, inner, "Scan", &state.Avoid.ScanRadius, 1, 40)
	}
	y += 4

	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(int32(x), y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			label := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			if overlays.IsEnabled(desc.ID) {
				label = "* " + label
			}
			if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: float32(lineHeight + 2)}, label) {
				overlays.Toggle(desc.ID)
			}
			y += lineHeight + 4
		}
	}

	return y
}

// slider draws a labelled float slider bound to v.
func (c *ControlsPanel) slider(x float32, y int32, width float32, label string, v *float64, lo, hi float32) int32 {
	got := gui.SliderBar(
		rl.Rectangle{X: x + 60, Y: float32(y), Width: width - 100, Height: 14},
		label, fmt.Sprintf("%.2f", *v),
		float32(*v), lo, hi,
	)
	if got != float32(*v) {
		*v = float64(got)
	}
	return y + c.renderer.Theme.LineHeight + 4
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	lh := c.renderer.Theme.LineHeight
	rows := int32(0)
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	return c.renderer.Theme.Padding*2 + lh + 4 + 30 + lh + 10 + lh + 7*(lh+4) + 4 + rows*(lh+4)
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "field":
		return "Field"
	case "agents":
		return "Agents"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
