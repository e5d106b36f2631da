package ui

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/game"
)

// InspectorData is the selected agent plus values derived from the field.
type InspectorData struct {
	Agent       game.AgentView
	Attraction  r3.Vec
	Altitude    float64
	MovePower   float64
	AvoidHits   int
	QuarryAlive bool
}

// Inspector renders the selected-agent panel from descriptors.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor[InspectorData]
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: inspectorSections(),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	r.DrawPanel(ins.x, ins.y, ins.width, 330)

	x := ins.x + padding
	y := r.DrawSectionHeader(x, ins.y+padding, fmt.Sprintf("Agent #%d", data.Agent.ID))
	for _, sd := range ins.sections {
		y = DrawSection(r, x, y, sd, data, ins.width-padding*2)
	}
	return y
}

func inspectorSections() []SectionDescriptor[InspectorData] {
	isChaser := func(d InspectorData) bool {
		return d.Agent.Goal.Kind == components.GoalPursue || d.Agent.Goal.Kind == components.GoalEvade
	}
	hasPoint := func(d InspectorData) bool {
		switch d.Agent.Goal.Kind {
		case components.GoalSeek, components.GoalArrive, components.GoalFlee:
			return true
		}
		return false
	}

	return []SectionDescriptor[InspectorData]{
		{
			Title: "Goal",
			Fields: []FieldDescriptor[InspectorData]{
				{Label: "Behavior", Widget: WidgetText, TextGetter: func(d InspectorData) string { return d.Agent.Goal.Kind.String() }},
				{Label: "Reached", Widget: WidgetText, Format: "%.0f", Getter: func(d InspectorData) float32 { return float32(d.Agent.Goal.Reached) }},
				{Label: "Quarry", Widget: WidgetText, Visible: isChaser, TextGetter: func(d InspectorData) string {
					if !d.QuarryAlive {
						return "none"
					}
					return fmt.Sprintf("#%d", d.Agent.Goal.TargetID)
				}},
				{Label: "Distance", Widget: WidgetText, Format: "%.1f", Visible: hasPoint, Getter: func(d InspectorData) float32 {
					return float32(r3.Norm(r3.Sub(d.Agent.Goal.Target, d.Agent.Position)))
				}},
			},
		},
		{
			Title: "Motion",
			Fields: []FieldDescriptor[InspectorData]{
				{Label: "Speed", Widget: WidgetBar, Getter: func(d InspectorData) float32 { return float32(r3.Norm(d.Agent.Velocity)) },
					Range: FieldRange{Min: 0, Max: 20}},
				{Label: "Max speed", Widget: WidgetText, Format: "%.2f", Getter: func(d InspectorData) float32 { return float32(d.Agent.MaxSpeed) }},
				{Label: "Move power", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d InspectorData) float32 { return float32(d.MovePower) }},
				{Label: "Climb", Widget: WidgetCenteredBar, Range: FieldRange{Min: -1, Max: 1}, Getter: func(d InspectorData) float32 {
					if d.Agent.MaxSpeed == 0 {
						return 0
					}
					return float32(r3.Dot(d.Agent.Velocity, d.Agent.Up) / d.Agent.MaxSpeed)
				}},
				{Label: "Grounded", Widget: WidgetText, TextGetter: func(d InspectorData) string { return yesNo(d.Agent.Grounded) }},
			},
		},
		{
			Title: "Field",
			Fields: []FieldDescriptor[InspectorData]{
				{Label: "Pull", Widget: WidgetText, Format: "%.2f", Getter: func(d InspectorData) float32 { return float32(r3.Norm(d.Attraction)) }},
				{Label: "Altitude", Widget: WidgetText, Format: "%.2f", Getter: func(d InspectorData) float32 { return float32(d.Altitude) }},
				{Label: "Avoid hits", Widget: WidgetText, Format: "%.0f", Getter: func(d InspectorData) float32 { return float32(d.AvoidHits) }},
			},
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
