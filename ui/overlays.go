package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayAttractionRadius OverlayID = "attraction_radius"
	OverlayFieldVectors     OverlayID = "field_vectors"
	OverlayVelocity         OverlayID = "velocity"
	OverlayLook             OverlayID = "look"
	OverlayGoals            OverlayID = "goals"
	OverlayAvoidTrace       OverlayID = "avoid_trace"
	OverlayNeighbors        OverlayID = "neighbors"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID        OverlayID
	Name      string
	Key       int32  // 0 = no key
	KeyLabel  string // e.g. "F"
	Category  string // "field", "agents" or "debug"
	Exclusive []OverlayID
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default overlays.
// Attraction radii, velocity and the avoid trace start enabled.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	reg.SetEnabled(OverlayAttractionRadius, true)
	reg.SetEnabled(OverlayVelocity, true)
	reg.SetEnabled(OverlayAvoidTrace, true)
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:       OverlayAttractionRadius,
		Name:     "Attraction Radius",
		Key:      rl.KeyR,
		KeyLabel: "R",
		Category: "field",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayFieldVectors,
		Name:     "Field Vectors",
		Key:      rl.KeyF,
		KeyLabel: "F",
		Category: "field",
	})

	r.Register(OverlayDescriptor{
		ID:       OverlayVelocity,
		Name:     "Velocity",
		Key:      rl.KeyV,
		KeyLabel: "V",
		Category: "agents",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayLook,
		Name:     "Look Direction",
		Key:      rl.KeyL,
		KeyLabel: "L",
		Category: "agents",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayGoals,
		Name:     "Goal Targets",
		Key:      rl.KeyG,
		KeyLabel: "G",
		Category: "agents",
	})

	r.Register(OverlayDescriptor{
		ID:        OverlayAvoidTrace,
		Name:      "Avoid Samples",
		Key:       rl.KeyA,
		KeyLabel:  "A",
		Category:  "debug",
		Exclusive: []OverlayID{OverlayNeighbors},
	})
	r.Register(OverlayDescriptor{
		ID:        OverlayNeighbors,
		Name:      "Neighbor Radius",
		Key:       rl.KeyN,
		KeyLabel:  "N",
		Category:  "debug",
		Exclusive: []OverlayID{OverlayAvoidTrace},
	})
}

// Register adds an overlay to the registry, initially disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	state := !r.enabled[id]
	r.SetEnabled(id, state)
	return state
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
