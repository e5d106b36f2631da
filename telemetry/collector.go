package telemetry

import "math"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	goalsReached    int
	captures        int
	avoidHits       int
	surfaceContacts int
}

// Sample holds per-agent values gathered at window end.
type Sample struct {
	Agents      int
	Speeds      []float64
	Attractions []float64 // attraction magnitude at each agent
	Altitudes   []float64 // height above the nearest surface
	MovePowers  []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordGoalReached records an agent reaching its goal.
func (c *Collector) RecordGoalReached() {
	c.goalsReached++
}

// RecordCapture records a pursuer catching its quarry.
func (c *Collector) RecordCapture() {
	c.captures++
}

// RecordAvoidHits records avoidance samples that found an obstacle.
func (c *Collector) RecordAvoidHits(n int) {
	c.avoidHits += n
}

// RecordSurfaceContact records an agent being pushed back onto a surface.
func (c *Collector) RecordSurfaceContact() {
	c.surfaceContacts++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	speedMean, speedStd, p10, p50, p90 := ComputeDistribution(s.Speeds)

	var goalRate float64
	elapsed := float64(currentTick-c.windowStartTick) * c.dt
	if s.Agents > 0 && elapsed > 0 {
		goalRate = float64(c.goalsReached) / float64(s.Agents) / elapsed
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents: s.Agents,

		GoalsReached:    c.goalsReached,
		Captures:        c.captures,
		AvoidHits:       c.avoidHits,
		SurfaceContacts: c.surfaceContacts,
		GoalRate:        goalRate,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		AttractionMean: meanOrZero(s.Attractions),
		AltitudeMean:   meanOrZero(s.Altitudes),
		AltitudeMin:    minOrZero(s.Altitudes),
		MovePowerMean:  meanOrZero(s.MovePowers),
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.goalsReached = 0
	c.captures = 0
	c.avoidHits = 0
	c.surfaceContacts = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
