package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSpatialGrid)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseSteering)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseSpatialGrid]; !ok {
		t.Error("expected spatial_grid phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseSteering]; !ok {
		t.Error("expected steering phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	// Fill window completely; later ticks are slower and push out the early ones
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSpatialGrid)
		clock.advance(time.Duration(i+1) * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration != 6*time.Millisecond || stats.MaxTickDuration != 10*time.Millisecond {
		t.Errorf("window range = [%v, %v], want [6ms, 10ms]", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		clock.advance(10 * time.Microsecond)
		pc.StartPhase("slow")
		clock.advance(30 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if got := stats.PhasePct["fast"]; math.Abs(got-25) > 1e-9 {
		t.Errorf("fast phase = %v%%, want 25%%", got)
	}
	if got := stats.PhasePct["slow"]; math.Abs(got-75) > 1e-9 {
		t.Errorf("slow phase = %v%%, want 75%%", got)
	}
	if stats.AvgTickDuration != 40*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want 40µs", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	// First call establishes baseline
	pc.RecordFrame()
	clock.advance(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration != 16*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 16ms", stats.FrameDuration)
	}
	if math.Abs(stats.FPS-62.5) > 1e-9 {
		t.Errorf("FPS = %v, want 62.5", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 2 * time.Millisecond,
		P99TickDuration: 5 * time.Millisecond,
		PhasePct: map[string]float64{
			PhaseSteering: 70,
			PhaseApply:    20,
		},
	}

	rec := s.ToCSV(500)
	if rec.WindowEnd != 500 || rec.AvgTickUS != 2000 || rec.P99TickUS != 5000 {
		t.Errorf("timing columns = %+v", rec)
	}
	if rec.SteeringPct != 70 || rec.ApplyPct != 20 || rec.GoalsPct != 0 {
		t.Errorf("phase columns = %+v", rec)
	}
}
