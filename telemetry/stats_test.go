package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(std-3.02765) > 0.001 {
		t.Errorf("std = %v, want ~3.028", std)
	}
	if math.Abs(p10-1.9) > 0.01 {
		t.Errorf("p10 = %v, want ~1.9", p10)
	}
	if math.Abs(p50-5.5) > 0.01 {
		t.Errorf("p50 = %v, want ~5.5", p50)
	}
	if math.Abs(p90-9.1) > 0.01 {
		t.Errorf("p90 = %v, want ~9.1", p90)
	}
}

func TestComputeDistributionDoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was modified: %v", values)
	}
}

func TestComputeDistributionSmall(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, p10, p50, p90 = ComputeDistribution([]float64{4})
	if mean != 4 || std != 0 || p10 != 4 || p50 != 4 || p90 != 4 {
		t.Errorf("single value = (%v, %v, %v, %v, %v)", mean, std, p10, p50, p90)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.02) // 50 ticks per window

	if c.WindowDurationTicks() != 50 {
		t.Fatalf("WindowDurationTicks = %d, want 50", c.WindowDurationTicks())
	}
	if c.ShouldFlush(49) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(50) {
		t.Error("should flush at the window end")
	}

	c.RecordGoalReached()
	c.RecordGoalReached()
	c.RecordCapture()
	c.RecordAvoidHits(3)
	c.RecordSurfaceContact()

	stats := c.Flush(50, Sample{
		Agents:      4,
		Speeds:      []float64{2, 4, 6, 8},
		Attractions: []float64{9, 9, 9, 9},
		Altitudes:   []float64{2, 1, 3, 2},
		MovePowers:  []float64{0.5, 1, 0, 0.5},
	})

	if stats.GoalsReached != 2 || stats.Captures != 1 || stats.AvoidHits != 3 || stats.SurfaceContacts != 1 {
		t.Errorf("event counts = %+v", stats)
	}
	// 2 goals / 4 agents / 1 second
	if math.Abs(stats.GoalRate-0.5) > 1e-9 {
		t.Errorf("GoalRate = %v, want 0.5", stats.GoalRate)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 1", stats.SimTimeSec)
	}
	if stats.SpeedMean != 5 || stats.AttractionMean != 9 || stats.AltitudeMean != 2 || stats.AltitudeMin != 1 {
		t.Errorf("sampled values = %+v", stats)
	}
	if stats.MovePowerMean != 0.5 {
		t.Errorf("MovePowerMean = %v, want 0.5", stats.MovePowerMean)
	}

	// Counters reset for the next window
	next := c.Flush(100, Sample{})
	if next.WindowStartTick != 50 || next.GoalsReached != 0 || next.Captures != 0 || next.AvoidHits != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.GoalRate != 0 {
		t.Errorf("GoalRate without agents = %v, want 0", next.GoalRate)
	}
}
