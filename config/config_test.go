package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Physics.DT <= 0 {
		t.Errorf("expected positive dt, got %v", cfg.Physics.DT)
	}
	if len(cfg.Planets) == 0 {
		t.Fatal("expected at least one planet")
	}
	home := cfg.Planets[0]
	if home.Gravity != -9.81 || home.AttractionRadius != 500 {
		t.Errorf("unexpected home planet %+v", home)
	}
	if math.Abs(home.Strength()-9.81) > 1e-12 {
		t.Errorf("Strength() = %v, want 9.81", home.Strength())
	}
	if cfg.Steering.Avoid.LayerMask != ^uint32(0) {
		t.Errorf("zero layer mask should expand to all layers, got %#x", cfg.Steering.Avoid.LayerMask)
	}
	if cfg.Derived.TicksPerWindow != 250 {
		t.Errorf("TicksPerWindow = %d, want 250", cfg.Derived.TicksPerWindow)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	overlay := []byte(`
agent:
  max_force: 3.5
planets:
  - name: moon
    position: [300, 0, 0]
    gravity: -1.6
    attraction_radius: 120
`)
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Agent.MaxForce != 3.5 {
		t.Errorf("max_force = %v, want 3.5", cfg.Agent.MaxForce)
	}
	// Untouched fields keep their defaults
	if cfg.Agent.Speed != 10 {
		t.Errorf("speed = %v, want default 10", cfg.Agent.Speed)
	}
	if len(cfg.Planets) != 1 || cfg.Planets[0].Name != "moon" {
		t.Fatalf("expected planets to be replaced by overlay, got %+v", cfg.Planets)
	}
	if got := cfg.Planets[0].Position.Vec(); got.X != 300 {
		t.Errorf("moon position = %v", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"zero dt", "physics:\n  dt: 0\n"},
		{"reverse factor above one", "agent:\n  reverse_factor: 1.5\n"},
		{"zero attraction radius", "planets:\n  - name: x\n    attraction_radius: 0\n"},
		{"too many roles", "population:\n  agents: 4\n  pursuers: 3\n  wanderers: 2\n"},
		{"negative role", "population:\n  evaders: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Steering.BrakeDistance = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if loaded.Steering.BrakeDistance != 42 {
		t.Errorf("brake_distance = %v, want 42", loaded.Steering.BrakeDistance)
	}
}
