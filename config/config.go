// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Agent      AgentConfig      `yaml:"agent"`
	Steering   SteeringConfig   `yaml:"steering"`
	Planets    []PlanetConfig   `yaml:"planets"`
	Obstacles  []ObstacleConfig `yaml:"obstacles"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML-friendly [x, y, z] triple.
type Vec3 [3]float64

// Vec converts the triple to an r3 vector.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds fixed-step parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// AgentConfig holds per-agent capability defaults.
type AgentConfig struct {
	Speed         float64 `yaml:"speed"`          // Base speed, scaled by move power into MaxSpeed
	MaxForce      float64 `yaml:"max_force"`      // Max velocity change per tick
	ReverseFactor float64 `yaml:"reverse_factor"` // Speed fraction when moving directly backwards (0-1)
	BodyRadius    float64 `yaml:"body_radius"`
	UseGravity    bool    `yaml:"use_gravity"`
	OrientSpeed   bool    `yaml:"orient_speed"` // Scale MaxSpeed by facing relative to the nearest planet
	Altitude      float64 `yaml:"altitude"`     // Spawn height above the planet surface
}

// SteeringConfig holds behavior tunables.
type SteeringConfig struct {
	BrakeDistance         float64         `yaml:"brake_distance"`
	SeparationThreshold   float64         `yaml:"separation_threshold"`
	NeighborRadius        float64         `yaml:"neighbor_radius"`         // Alignment/cohesion perception
	MaxPredictionDistance float64         `yaml:"max_prediction_distance"` // 0 = uncapped
	Wander                WanderConfig    `yaml:"wander"`
	Avoid                 AvoidConfig     `yaml:"avoid"`
	Weights               BehaviorWeights `yaml:"weights"`
}

// WanderConfig holds wander circle parameters.
type WanderConfig struct {
	MaxAngle float64 `yaml:"max_angle"` // Radians
	Radius   float64 `yaml:"radius"`
	Distance float64 `yaml:"distance"`
}

// AvoidConfig holds obstacle avoidance probe parameters.
type AvoidConfig struct {
	ScanRadius   float64 `yaml:"scan_radius"`
	SampleCount  int     `yaml:"sample_count"`
	DangerWeight float64 `yaml:"danger_weight"`
	LayerMask    uint32  `yaml:"layer_mask"`
}

// BehaviorWeights scales each behavior before the forces are combined.
type BehaviorWeights struct {
	Goal       float64 `yaml:"goal"` // Seek/Arrive/Flee/Pursue/Evade/Wander
	Separation float64 `yaml:"separation"`
	Alignment  float64 `yaml:"alignment"`
	Cohesion   float64 `yaml:"cohesion"`
	Avoid      float64 `yaml:"avoid"`
}

// PlanetConfig defines a gravity source.
type PlanetConfig struct {
	Name             string  `yaml:"name"`
	Position         Vec3    `yaml:"position"`
	Gravity          float64 `yaml:"gravity"`           // Negative pulls toward the planet
	AttractionRadius float64 `yaml:"attraction_radius"` // Pull reaches zero here
	Radius           float64 `yaml:"radius"`            // Surface radius (spawning, viewer)
}

// Strength returns the signed attraction strength (positive pulls toward the planet).
func (p PlanetConfig) Strength() float64 {
	return -p.Gravity
}

// ObstacleConfig defines a spherical obstacle visible to avoidance probes.
type ObstacleConfig struct {
	Position Vec3    `yaml:"position"`
	Radius   float64 `yaml:"radius"`
	Layer    uint32  `yaml:"layer"`
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	Agents        int     `yaml:"agents"`
	Pursuers      int     `yaml:"pursuers"`       // Agents that chase another agent
	Evaders       int     `yaml:"evaders"`        // Agents that keep away from a pursuer
	Wanderers     int     `yaml:"wanderers"`      // Agents that wander instead of seeking
	GoalRadius    float64 `yaml:"goal_radius"`    // Reached goals are re-rolled within this distance
	ReachDistance float64 `yaml:"reach_distance"` // Distance at which a goal or quarry counts as reached
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TicksPerWindow int32 // Telemetry.StatsWindow / Physics.DT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Agent.ReverseFactor < 0 || c.Agent.ReverseFactor > 1 {
		return fmt.Errorf("agent.reverse_factor must be in [0,1], got %v", c.Agent.ReverseFactor)
	}
	for i, p := range c.Planets {
		if p.AttractionRadius <= 0 {
			return fmt.Errorf("planets[%d] (%s): attraction_radius must be positive", i, p.Name)
		}
	}
	p := c.Population
	if p.Pursuers < 0 || p.Evaders < 0 || p.Wanderers < 0 {
		return fmt.Errorf("population role counts must not be negative")
	}
	if p.Pursuers+p.Evaders+p.Wanderers > p.Agents {
		return fmt.Errorf("population: %d pursuers, %d evaders and %d wanderers exceed %d agents",
			p.Pursuers, p.Evaders, p.Wanderers, p.Agents)
	}
	if c.Steering.Avoid.SampleCount < 0 {
		return fmt.Errorf("steering.avoid.sample_count must not be negative")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// A single default planet when none are configured
	if len(c.Planets) == 0 {
		c.Planets = []PlanetConfig{
			{
				Name:             "home",
				Gravity:          -9.81,
				AttractionRadius: 500,
				Radius:           100,
			},
		}
	}

	for i := range c.Planets {
		if c.Planets[i].Name == "" {
			c.Planets[i].Name = fmt.Sprintf("planet-%d", i)
		}
	}

	if c.Steering.Avoid.LayerMask == 0 {
		c.Steering.Avoid.LayerMask = ^uint32(0)
	}
	for i := range c.Obstacles {
		if c.Obstacles[i].Layer == 0 {
			c.Obstacles[i].Layer = 1
		}
	}

	c.Derived.TicksPerWindow = int32(math.Round(c.Telemetry.StatsWindow / c.Physics.DT))
	if c.Derived.TicksPerWindow < 1 {
		c.Derived.TicksPerWindow = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
