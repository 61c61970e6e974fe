package telemetry

import "math"

// Collector accumulates events within cycle windows and produces
// WindowStats. It also pairs chase starts with ball control to measure how
// far the predicted reach step was from the realised one.
type Collector struct {
	windowCycles int64
	windowStart  int64

	// Event counters for current window
	updates     int
	skipped     int
	overrides   int
	fallbacks   int
	controls    int
	aborts      int
	modeChanges int

	candidates []float64
	selfSteps  []float64
	errors     []float64

	chasing        bool
	chaseStart     int64
	chasePredicted int

	// Whole-run accuracy
	totalAbsErr float64
	totalErrN   int
}

// NewCollector creates a collector flushing every windowCycles cycles.
func NewCollector(windowCycles int) *Collector {
	if windowCycles < 1 {
		windowCycles = 1
	}
	return &Collector{windowCycles: int64(windowCycles)}
}

// Record folds one event into the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventTableUpdate:
		c.updates++
		c.candidates = append(c.candidates, float64(ev.Candidates))
		c.selfSteps = append(c.selfSteps, float64(ev.Step))
	case EventTableSkipped:
		c.skipped++
	case EventHeardOverride:
		c.overrides++
	case EventFallback:
		c.fallbacks++
	case EventChaseStart:
		if !c.chasing {
			c.chasing = true
			c.chaseStart = ev.Cycle
			c.chasePredicted = ev.Step
		}
	case EventChaseAbort:
		if c.chasing {
			c.chasing = false
			c.aborts++
		}
	case EventBallControl:
		c.controls++
		if c.chasing {
			c.chasing = false
			realised := ev.Cycle - c.chaseStart
			err := math.Abs(float64(int64(c.chasePredicted) - realised))
			c.errors = append(c.errors, err)
			c.totalAbsErr += err
			c.totalErrN++
		}
	case EventModeChange:
		c.modeChanges++
		if c.chasing {
			c.chasing = false
			c.aborts++
		}
	}
}

// Chasing reports whether a chase is being tracked.
func (c *Collector) Chasing() bool { return c.chasing }

// ShouldFlush returns true if enough cycles have passed to flush the window.
func (c *Collector) ShouldFlush(cycle int64) bool {
	return cycle-c.windowStart >= c.windowCycles
}

// Accuracy returns the mean absolute error between predicted and realised
// reach steps over the whole run, and the number of completed chases.
func (c *Collector) Accuracy() (float64, int) {
	if c.totalErrN == 0 {
		return 0, 0
	}
	return c.totalAbsErr / float64(c.totalErrN), c.totalErrN
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(cycle int64) WindowStats {
	cand := Summarize(c.candidates)
	self := Summarize(c.selfSteps)
	errs := Summarize(c.errors)

	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   cycle,

		Updates:     c.updates,
		Skipped:     c.skipped,
		Overrides:   c.overrides,
		Fallbacks:   c.fallbacks,
		Controls:    c.controls,
		Aborts:      c.aborts,
		ModeChanges: c.modeChanges,

		CandidatesMean: cand.Mean,
		CandidatesP90:  cand.P90,

		SelfStepMean: self.Mean,
		SelfStepP50:  self.P50,
		SelfStepP90:  self.P90,

		Chases:      len(c.errors),
		PredErrMean: errs.Mean,
		PredErrStd:  errs.Std,
		PredErrP50:  errs.P50,
		PredErrP90:  errs.P90,
	}

	c.windowStart = cycle
	c.updates = 0
	c.skipped = 0
	c.overrides = 0
	c.fallbacks = 0
	c.controls = 0
	c.aborts = 0
	c.modeChanges = 0
	c.candidates = c.candidates[:0]
	c.selfSteps = c.selfSteps[:0]
	c.errors = c.errors[:0]

	return stats
}

// WindowCycles returns the number of cycles per window.
func (c *Collector) WindowCycles() int64 {
	return c.windowCycles
}
