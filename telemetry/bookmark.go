package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkErrorSpike     BookmarkType = "error_spike"
	BookmarkFallbackBurst  BookmarkType = "fallback_burst"
	BookmarkOverrideBurst  BookmarkType = "override_burst"
	BookmarkStableAccuracy BookmarkType = "stable_accuracy"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Cycle       int64        `csv:"cycle" json:"cycle"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"cycle", b.Cycle,
		"description", b.Description,
	)
}

// BookmarkDetector flags windows where the interception predictions behave
// unusually compared with recent history.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
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
		if b := bd.checkErrorSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFallbackBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkOverrideBurst(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStableAccuracy(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
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

// checkErrorSpike fires when the mean prediction error doubles the rolling
// average over at least three chases.
func (bd *BookmarkDetector) checkErrorSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Chases < 3 {
		return nil
	}

	var sum float64
	var chases int
	for _, h := range history {
		sum += h.PredErrMean * float64(h.Chases)
		chases += h.Chases
	}
	if chases == 0 {
		return nil
	}
	avg := sum / float64(chases)
	if stats.PredErrMean > 2*avg && stats.PredErrMean >= 2 {
		return &Bookmark{
			Type:        BookmarkErrorSpike,
			Cycle:       stats.WindowEnd,
			Description: fmt.Sprintf("Prediction error %.2f is %.1fx average (%.2f)", stats.PredErrMean, stats.PredErrMean/max(avg, 1e-9), avg),
		}
	}
	return nil
}

// checkFallbackBurst fires when fallback-only cycles triple the rolling
// average.
func (bd *BookmarkDetector) checkFallbackBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.Fallbacks
	}
	avg := float64(total) / float64(len(history))
	if stats.Fallbacks >= 5 && float64(stats.Fallbacks) > 3*avg {
		return &Bookmark{
			Type:        BookmarkFallbackBurst,
			Cycle:       stats.WindowEnd,
			Description: fmt.Sprintf("%d fallback cycles against an average of %.1f", stats.Fallbacks, avg),
		}
	}
	return nil
}

// checkOverrideBurst fires when heard messages override most of the
// window's table updates.
func (bd *BookmarkDetector) checkOverrideBurst(stats WindowStats) *Bookmark {
	if stats.Updates < 10 {
		return nil
	}
	share := float64(stats.Overrides) / float64(stats.Updates)
	if share > 0.5 {
		return &Bookmark{
			Type:        BookmarkOverrideBurst,
			Cycle:       stats.WindowEnd,
			Description: fmt.Sprintf("Heard messages overrode %.0f%% of %d updates", share*100, stats.Updates),
		}
	}
	return nil
}

// checkStableAccuracy fires once after five consecutive windows with a
// mean error of at most one cycle.
func (bd *BookmarkDetector) checkStableAccuracy(stats WindowStats) *Bookmark {
	if stats.Chases == 0 {
		return nil
	}
	if stats.PredErrMean <= 1 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}
	if bd.stableWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkStableAccuracy,
			Cycle:       stats.WindowEnd,
			Description: "Reach predictions within one cycle over 5 windows",
		}
	}
	return nil
}
