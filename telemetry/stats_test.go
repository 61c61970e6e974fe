package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/striker/world"
)

func TestSummarize(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	s := Summarize(values)

	if s.N != 10 {
		t.Errorf("N = %d, want 10", s.N)
	}
	if math.Abs(s.Mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", s.Mean)
	}
	if s.P10 != 1 || s.P50 != 5 || s.P90 != 9 {
		t.Errorf("deciles = %v/%v/%v, want 1/5/9", s.P10, s.P50, s.P90)
	}
	if s.Std <= 0 {
		t.Errorf("std = %v, want positive", s.Std)
	}
	if values[0] != 10 {
		t.Error("Summarize must not reorder its input")
	}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("empty sample = %+v, want zeros", s)
	}
	s := Summarize([]float64{3})
	if s.Mean != 3 || s.Std != 0 || s.P50 != 3 {
		t.Errorf("single sample = %+v", s)
	}
}

func TestCollector_PredictionError(t *testing.T) {
	c := NewCollector(100)
	agent := world.NewPlayerID(world.SideLeft, 7)

	c.Record(NewChaseStartEvent(10, agent, 6))
	// A second start while chasing keeps the first prediction.
	c.Record(NewChaseStartEvent(11, agent, 2))
	c.Record(NewBallControlEvent(18, agent))

	c.Record(NewChaseStartEvent(30, agent, 4))
	c.Record(NewModeChangeEvent(32, world.KickIn))
	c.Record(NewBallControlEvent(40, agent))

	mae, n := c.Accuracy()
	if n != 1 || mae != 2 {
		t.Errorf("accuracy = %v over %d chases, want 2 over 1", mae, n)
	}

	stats := c.Flush(100)
	if stats.Chases != 1 || stats.Aborts != 1 || stats.Controls != 2 {
		t.Errorf("chases/aborts/controls = %d/%d/%d", stats.Chases, stats.Aborts, stats.Controls)
	}
	if stats.PredErrMean != 2 {
		t.Errorf("PredErrMean = %v, want 2", stats.PredErrMean)
	}
}

func TestCollector_FlushResets(t *testing.T) {
	c := NewCollector(50)
	if c.ShouldFlush(49) || !c.ShouldFlush(50) {
		t.Error("ShouldFlush should trigger after a full window")
	}

	c.Record(NewTableUpdateEvent(1, 4, 6))
	c.Record(NewTableUpdateEvent(2, 8, 2))
	c.Record(NewTableSkippedEvent(3))
	c.Record(NewHeardOverrideEvent(3, world.NewPlayerID(world.SideLeft, 2), 3))
	c.Record(NewFallbackEvent(4))

	stats := c.Flush(50)
	if stats.Updates != 2 || stats.Skipped != 1 || stats.Overrides != 1 || stats.Fallbacks != 1 {
		t.Errorf("counters = %+v", stats)
	}
	if stats.CandidatesMean != 4 || stats.SelfStepMean != 6 {
		t.Errorf("means = %v/%v, want 4/6", stats.CandidatesMean, stats.SelfStepMean)
	}

	next := c.Flush(100)
	if next.WindowStart != 50 || next.Updates != 0 || next.CandidatesMean != 0 {
		t.Errorf("window was not reset: %+v", next)
	}
	if c.ShouldFlush(120) {
		t.Error("ShouldFlush should be relative to the last flush")
	}
}
