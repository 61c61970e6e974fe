// Package physics models the soccer simulator's movement, turning and
// stamina rules: server parameters, heterogeneous player types and the
// stamina model, plus the Model capability that selects between physics
// generations.
package physics

import (
	"math"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
)

// ServerParams holds the global physical constants together with the
// values derived from them.
type ServerParams struct {
	config.ServerConfig

	PitchHalfLength      float64
	PitchHalfWidth       float64
	PenaltyAreaHalfWidth float64
	CatchableArea        float64
	RecoverDecThrValue   float64
	EffortDecThrValue    float64
	EffortIncThrValue    float64
}

// NewServerParams builds server parameters from a loaded configuration.
func NewServerParams(cfg *config.Config) *ServerParams {
	return &ServerParams{
		ServerConfig:         cfg.Server,
		PitchHalfLength:      cfg.Derived.PitchHalfLength,
		PitchHalfWidth:       cfg.Derived.PitchHalfWidth,
		PenaltyAreaHalfWidth: cfg.Derived.PenaltyAreaHalfW,
		CatchableArea:        cfg.Derived.CatchableArea,
		RecoverDecThrValue:   cfg.Derived.RecoverDecThrVal,
		EffortDecThrValue:    cfg.Derived.EffortDecThrVal,
		EffortIncThrValue:    cfg.Derived.EffortIncThrVal,
	}
}

// NormalizeDashPower clamps a dash power to the legal range.
func (sp *ServerParams) NormalizeDashPower(power float64) float64 {
	return geom.Clamp(power, sp.MinDashPower, sp.MaxDashPower)
}

// NormalizeDashAngle wraps and clamps a dash direction to the legal range.
func (sp *ServerParams) NormalizeDashAngle(dir float64) float64 {
	return geom.Clamp(geom.NormalizeAngle(dir), sp.MinDashAngle, sp.MaxDashAngle)
}

// DiscretizeDashAngle snaps a dash direction to the nearest legal bin.
func (sp *ServerParams) DiscretizeDashAngle(dir float64) float64 {
	if sp.DashAngleStep < geom.Epsilon {
		return dir
	}
	return geom.NormalizeAngle(sp.DashAngleStep * math.Round(dir/sp.DashAngleStep))
}

// InOurPenaltyArea reports whether pos lies inside the left-hand penalty
// area, grown by buf on every side.
func (sp *ServerParams) InOurPenaltyArea(pos geom.Vec, buf float64) bool {
	lineX := -sp.PitchHalfLength + sp.PenaltyAreaLength
	return pos.X < lineX+buf &&
		pos.X > -sp.PitchHalfLength-buf &&
		math.Abs(pos.Y) < sp.PenaltyAreaHalfWidth+buf
}

// InTheirPenaltyArea is the mirror of InOurPenaltyArea.
func (sp *ServerParams) InTheirPenaltyArea(pos geom.Vec, buf float64) bool {
	return sp.InOurPenaltyArea(geom.Vec{X: -pos.X, Y: pos.Y}, buf)
}

// OutOfPitch reports whether pos lies beyond the touch or goal lines by
// more than margin.
func (sp *ServerParams) OutOfPitch(pos geom.Vec, margin float64) bool {
	return math.Abs(pos.X) > sp.PitchHalfLength+margin ||
		math.Abs(pos.Y) > sp.PitchHalfWidth+margin
}
