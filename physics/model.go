package physics

import (
	"math"

	"github.com/pthm-cable/striker/geom"
)

// Model is the physics capability consumed by the interception core.
// Different server generations differ only in how a dash direction maps
// to acceleration efficiency and in whether sideways dashes exist.
type Model interface {
	Params() *ServerParams
	// DashDirRate returns the efficiency of a dash towards dir degrees
	// relative to the body. Zero disables the direction.
	DashDirRate(dir float64) float64
	// EffectiveTurn returns the body rotation produced by a turn moment
	// at the given speed.
	EffectiveTurn(pt *PlayerType, moment, speed float64) float64
	// OmniDash reports whether non-axial dash directions are legal.
	OmniDash() bool
}

// Standard is the omni-directional dash model.
type Standard struct {
	sp *ServerParams
}

// NewStandard creates the omni-directional dash model.
func NewStandard(sp *ServerParams) *Standard {
	return &Standard{sp: sp}
}

func (m *Standard) Params() *ServerParams { return m.sp }

func (m *Standard) OmniDash() bool { return true }

func (m *Standard) DashDirRate(dir float64) float64 {
	d := math.Abs(geom.NormalizeAngle(dir))
	if d > 90 {
		return m.sp.BackDashRate - (m.sp.BackDashRate-m.sp.SideDashRate)*(1-(d-90)/90)
	}
	return m.sp.SideDashRate + (1-m.sp.SideDashRate)*(1-d/90)
}

func (m *Standard) EffectiveTurn(pt *PlayerType, moment, speed float64) float64 {
	return effectiveTurn(pt, moment, speed)
}

// Legacy is the forward/backward-only dash model of older servers.
// A backward dash runs at full efficiency.
type Legacy struct {
	sp *ServerParams
}

// NewLegacy creates the forward/backward-only model.
func NewLegacy(sp *ServerParams) *Legacy {
	return &Legacy{sp: sp}
}

func (m *Legacy) Params() *ServerParams { return m.sp }

func (m *Legacy) OmniDash() bool { return false }

func (m *Legacy) DashDirRate(dir float64) float64 {
	d := math.Abs(geom.NormalizeAngle(dir))
	if d < 1e-3 || math.Abs(d-180) < 1e-3 {
		return 1
	}
	return 0
}

func (m *Legacy) EffectiveTurn(pt *PlayerType, moment, speed float64) float64 {
	return effectiveTurn(pt, moment, speed)
}

func effectiveTurn(pt *PlayerType, moment, speed float64) float64 {
	return moment / (1 + pt.InertiaMoment*speed)
}

// NewModel returns the model named by the server configuration.
func NewModel(sp *ServerParams) Model {
	if sp.PhysicsModel == "legacy" {
		return NewLegacy(sp)
	}
	return NewStandard(sp)
}

// DashAccel returns the acceleration produced by a dash of the given power
// towards dir degrees relative to body. Negative power dashes towards the
// opposite direction.
func DashAccel(m Model, pt *PlayerType, effort, power, body, dir float64) geom.Vec {
	sp := m.Params()
	power = sp.NormalizeDashPower(power)
	dir = sp.DiscretizeDashAngle(sp.NormalizeDashAngle(dir))
	if power < 0 {
		power = -power
		dir = geom.NormalizeAngle(dir + 180)
	}
	accel := power * pt.DashPowerRate * effort * m.DashDirRate(dir)
	if accel > sp.PlayerAccelMax {
		accel = sp.PlayerAccelMax
	}
	return geom.Polar(accel, body+dir)
}

// DashRate returns the acceleration produced per unit of positive dash
// power towards dir.
func DashRate(m Model, pt *PlayerType, effort, dir float64) float64 {
	return pt.DashPowerRate * effort * m.DashDirRate(dir)
}
