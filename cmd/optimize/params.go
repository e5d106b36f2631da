// Package main provides CMA-ES optimization for steering tunables.
package main

import (
	"github.com/pthm-cable/orbitsteer/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Arrival and spacing
			{Name: "brake_distance", Path: "steering.brake_distance", Min: 1, Max: 40, Default: 10,
				get: func(c *config.Config) float64 { return c.Steering.BrakeDistance },
				set: func(c *config.Config, v float64) { c.Steering.BrakeDistance = v }},
			{Name: "separation_threshold", Path: "steering.separation_threshold", Min: 0.5, Max: 20, Default: 5,
				get: func(c *config.Config) float64 { return c.Steering.SeparationThreshold },
				set: func(c *config.Config, v float64) { c.Steering.SeparationThreshold = v }},
			{Name: "max_prediction", Path: "steering.max_prediction_distance", Min: 0, Max: 10, Default: 2,
				get: func(c *config.Config) float64 { return c.Steering.MaxPredictionDistance },
				set: func(c *config.Config, v float64) { c.Steering.MaxPredictionDistance = v }},
			// Weights
			{Name: "w_goal", Path: "steering.weights.goal", Min: 0.2, Max: 3, Default: 1,
				get: func(c *config.Config) float64 { return c.Steering.Weights.Goal },
				set: func(c *config.Config, v float64) { c.Steering.Weights.Goal = v }},
			{Name: "w_separation", Path: "steering.weights.separation", Min: 0, Max: 3, Default: 0.6,
				get: func(c *config.Config) float64 { return c.Steering.Weights.Separation },
				set: func(c *config.Config, v float64) { c.Steering.Weights.Separation = v }},
			{Name: "w_avoid", Path: "steering.weights.avoid", Min: 0, Max: 3, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Steering.Weights.Avoid },
				set: func(c *config.Config, v float64) { c.Steering.Weights.Avoid = v }},
			// Wander
			{Name: "wander_angle", Path: "steering.wander.max_angle", Min: 0.05, Max: 1.5, Default: 0.6,
				get: func(c *config.Config) float64 { return c.Steering.Wander.MaxAngle },
				set: func(c *config.Config, v float64) { c.Steering.Wander.MaxAngle = v }},
			// Avoidance probe
			{Name: "danger_weight", Path: "steering.avoid.danger_weight", Min: 0, Max: 1, Default: 0.8,
				get: func(c *config.Config) float64 { return c.Steering.Avoid.DangerWeight },
				set: func(c *config.Config, v float64) { c.Steering.Avoid.DangerWeight = v }},
			{Name: "scan_radius", Path: "steering.avoid.scan_radius", Min: 2, Max: 40, Default: 12,
				get: func(c *config.Config) float64 { return c.Steering.Avoid.ScanRadius },
				set: func(c *config.Config, v float64) { c.Steering.Avoid.ScanRadius = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
