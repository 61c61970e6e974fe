package main

import (
	"math"

	"github.com/pthm-cable/striker/config"
)

// ParamSpec defines a single calibrated parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // rounded before use
}

// ParamVector holds the set of calibrated interception policy constants.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibrated parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "control_area_buf", Path: "intercept.control_area_buf", Min: 0.02, Max: 0.5, Default: 0.15},
			{Name: "safety_dist_buf", Path: "intercept.safety_dist_buf", Min: 0.0, Max: 0.6, Default: 0.2},
			{Name: "ball_noise_buf", Path: "intercept.ball_noise_buf", Min: 0.0, Max: 0.1, Default: 0.02},
			{Name: "min_turn_margin", Path: "intercept.min_turn_margin", Min: 2.0, Max: 30.0, Default: 12.0},
			{Name: "back_dash_threshold", Path: "intercept.back_dash_threshold", Min: 0, Max: 12, Default: 5, Integer: true},
			{Name: "stamina_tie_threshold", Path: "intercept.stamina_tie_threshold", Min: 0, Max: 1000, Default: 200},
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

// FromConfig reads the current parameter values from cfg.
func (pv *ParamVector) FromConfig(cfg *config.Config) []float64 {
	ic := cfg.Intercept
	return []float64{
		ic.ControlAreaBuf,
		ic.SafetyDistBuf,
		ic.BallNoiseBuf,
		ic.MinTurnMargin,
		float64(ic.BackDashThreshold),
		ic.StaminaTieThreshold,
	}
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

// Clamp ensures all values are within bounds and integer parameters are
// whole numbers.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	ic := &cfg.Intercept
	ic.ControlAreaBuf = clamped[0]
	ic.SafetyDistBuf = clamped[1]
	ic.BallNoiseBuf = clamped[2]
	ic.MinTurnMargin = clamped[3]
	ic.BackDashThreshold = int(clamped[4])
	ic.StaminaTieThreshold = clamped[5]
}

// EvalRow is one evaluation in calibrate_log.csv.
type EvalRow struct {
	Eval                int     `csv:"eval"`
	Fitness             float64 `csv:"fitness"`
	MAE                 float64 `csv:"mae"`
	Chases              int     `csv:"chases"`
	Fallbacks           int     `csv:"fallbacks"`
	ControlAreaBuf      float64 `csv:"control_area_buf"`
	SafetyDistBuf       float64 `csv:"safety_dist_buf"`
	BallNoiseBuf        float64 `csv:"ball_noise_buf"`
	MinTurnMargin       float64 `csv:"min_turn_margin"`
	BackDashThreshold   int     `csv:"back_dash_threshold"`
	StaminaTieThreshold float64 `csv:"stamina_tie_threshold"`
}

// NewEvalRow flattens an evaluation. values must be clamped.
func NewEvalRow(eval int, r Result, values []float64) EvalRow {
	return EvalRow{
		Eval:                eval,
		Fitness:             r.Fitness,
		MAE:                 r.MAE,
		Chases:              r.Chases,
		Fallbacks:           r.Fallbacks,
		ControlAreaBuf:      values[0],
		SafetyDistBuf:       values[1],
		BallNoiseBuf:        values[2],
		MinTurnMargin:       values[3],
		BackDashThreshold:   int(values[4]),
		StaminaTieThreshold: values[5],
	}
}
