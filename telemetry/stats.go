package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a cycle window.
type WindowStats struct {
	WindowStart int64 `csv:"-"`
	WindowEnd   int64 `csv:"window_end"`

	// Table activity
	Updates     int `csv:"updates"`
	Skipped     int `csv:"skipped"`
	Overrides   int `csv:"heard_overrides"`
	Fallbacks   int `csv:"fallbacks"`
	Controls    int `csv:"ball_controls"`
	Aborts      int `csv:"chase_aborts"`
	ModeChanges int `csv:"mode_changes"`

	CandidatesMean float64 `csv:"candidates_mean"`
	CandidatesP90  float64 `csv:"candidates_p90"`

	SelfStepMean float64 `csv:"self_step_mean"`
	SelfStepP50  float64 `csv:"self_step_p50"`
	SelfStepP90  float64 `csv:"self_step_p90"`

	// Absolute error between predicted and realised reach steps
	Chases      int     `csv:"chases"`
	PredErrMean float64 `csv:"pred_err_mean"`
	PredErrStd  float64 `csv:"pred_err_std"`
	PredErrP50  float64 `csv:"pred_err_p50"`
	PredErrP90  float64 `csv:"pred_err_p90"`
}

// Summary describes a sample.
type Summary struct {
	N    int
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes the mean, standard deviation and empirical deciles of
// values. The input is not modified. An empty sample yields zeros.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		N:    n,
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if n > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStart),
		slog.Int64("window_end", s.WindowEnd),
		slog.Int("updates", s.Updates),
		slog.Int("skipped", s.Skipped),
		slog.Int("heard_overrides", s.Overrides),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("ball_controls", s.Controls),
		slog.Int("chase_aborts", s.Aborts),
		slog.Int("mode_changes", s.ModeChanges),
		slog.Float64("candidates_mean", s.CandidatesMean),
		slog.Float64("self_step_mean", s.SelfStepMean),
		slog.Int("chases", s.Chases),
		slog.Float64("pred_err_mean", s.PredErrMean),
		slog.Float64("pred_err_p90", s.PredErrP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"updates", s.Updates,
		"skipped", s.Skipped,
		"heard_overrides", s.Overrides,
		"fallbacks", s.Fallbacks,
		"ball_controls", s.Controls,
		"chase_aborts", s.Aborts,
		"mode_changes", s.ModeChanges,
		"candidates_mean", s.CandidatesMean,
		"candidates_p90", s.CandidatesP90,
		"self_step_mean", s.SelfStepMean,
		"self_step_p50", s.SelfStepP50,
		"self_step_p90", s.SelfStepP90,
		"chases", s.Chases,
		"pred_err_mean", s.PredErrMean,
		"pred_err_std", s.PredErrStd,
		"pred_err_p50", s.PredErrP50,
		"pred_err_p90", s.PredErrP90,
	)
}
