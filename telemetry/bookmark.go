package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGoalBreakthrough BookmarkType = "goal_breakthrough"
	BookmarkCaptureSpike     BookmarkType = "capture_spike"
	BookmarkCongestion       BookmarkType = "congestion"
	BookmarkStall            BookmarkType = "stall"
	BookmarkSettled          BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentSpeedPeak     float64
	settledWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		checks := []func(WindowStats) *Bookmark{
			bd.checkGoalBreakthrough,
			bd.checkCaptureSpike,
			bd.checkCongestion,
			bd.checkStall,
			bd.checkSettled,
		}
		for _, check := range checks {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if stats.SpeedMean > bd.recentSpeedPeak {
		bd.recentSpeedPeak = stats.SpeedMean
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// rollingMean averages field over the history.
func (bd *BookmarkDetector) rollingMean(field func(WindowStats) float64) float64 {
	history := bd.getHistory()
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, h := range history {
		sum += field(h)
	}
	return sum / float64(len(history))
}

func (bd *BookmarkDetector) checkGoalBreakthrough(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 {
		return nil
	}

	avg := bd.rollingMean(func(h WindowStats) float64 { return h.GoalRate })
	if avg == 0 {
		return nil
	}

	if stats.GoalRate > avg*2.0 && stats.GoalsReached >= 3 {
		return &Bookmark{
			Type:        BookmarkGoalBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Goal rate %.3f is %.1fx average (%.3f)", stats.GoalRate, stats.GoalRate/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCaptureSpike(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 || stats.Captures < 3 {
		return nil
	}

	avg := bd.rollingMean(func(h WindowStats) float64 { return float64(h.Captures) })
	if float64(stats.Captures) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkCaptureSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d captures against an average of %.1f", stats.Captures, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCongestion(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 || stats.AvoidHits < 10 {
		return nil
	}

	avg := bd.rollingMean(func(h WindowStats) float64 { return float64(h.AvoidHits) })
	if float64(stats.AvoidHits) > avg*3.0 {
		return &Bookmark{
			Type:        BookmarkCongestion,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d avoidance hits, %.1fx average", stats.AvoidHits, float64(stats.AvoidHits)/max(avg, 1)),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStall(stats WindowStats) *Bookmark {
	if bd.recentSpeedPeak < 1 {
		return nil
	}

	drop := 1.0 - stats.SpeedMean/bd.recentSpeedPeak
	if drop > 0.7 {
		oldPeak := bd.recentSpeedPeak
		// Reset peak after a stall
		bd.recentSpeedPeak = stats.SpeedMean

		return &Bookmark{
			Type:        BookmarkStall,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed fell %.0f%% from peak %.2f to %.2f", drop*100, oldPeak, stats.SpeedMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Agents == 0 || stats.SpeedMean <= 0 {
		bd.settledWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.SpeedMean
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.SpeedMean - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.settledWindowsCount++
	} else {
		bd.settledWindowsCount = 0
	}

	if bd.settledWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Flow settled around mean speed %.2f with %d agents", mean, stats.Agents),
		}
	}
	return nil
}
