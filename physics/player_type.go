package physics

import (
	"math"
	"sort"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
)

// PlayerType holds one heterogeneous player type and its derived
// movement tables.
type PlayerType struct {
	config.PlayerTypeConfig

	KickableArea  float64
	CatchableArea float64
	RealSpeedMax  float64

	sp        *ServerParams
	dashTable []float64 // dashTable[n]: distance covered by n max-power dashes from rest
}

// NewPlayerType derives a player type from its configuration. maxCycle
// bounds the precomputed dash distance table.
func NewPlayerType(cfg config.PlayerTypeConfig, sp *ServerParams, maxCycle int) *PlayerType {
	pt := &PlayerType{
		PlayerTypeConfig: cfg,
		sp:               sp,
	}
	pt.KickableArea = cfg.PlayerSize + cfg.KickableMargin + sp.BallSize
	pt.CatchableArea = math.Sqrt(math.Pow(sp.CatchAreaWidth*0.5, 2) +
		math.Pow(sp.CatchAreaLength*cfg.CatchAreaStretch, 2))

	accel := pt.MaxDashAccel(cfg.EffortMax)
	pt.RealSpeedMax = math.Min(cfg.PlayerSpeedMax, accel/(1-cfg.PlayerDecay))

	if maxCycle < 1 {
		maxCycle = 1
	}
	pt.dashTable = make([]float64, maxCycle+1)
	speed, dist := 0.0, 0.0
	for n := 1; n <= maxCycle; n++ {
		speed = math.Min(speed+accel, cfg.PlayerSpeedMax)
		dist += speed
		speed *= cfg.PlayerDecay
		pt.dashTable[n] = dist
	}
	return pt
}

// Params returns the server parameters the type was derived with.
func (pt *PlayerType) Params() *ServerParams { return pt.sp }

// MaxDashAccel returns the forward acceleration of a max-power dash.
func (pt *PlayerType) MaxDashAccel(effort float64) float64 {
	return math.Min(pt.sp.MaxDashPower*pt.DashPowerRate*effort, pt.sp.PlayerAccelMax)
}

// DashDistance returns the distance covered by n consecutive max-power
// forward dashes starting from rest.
func (pt *PlayerType) DashDistance(n int) float64 {
	if n <= 0 {
		return 0
	}
	last := len(pt.dashTable) - 1
	if n <= last {
		return pt.dashTable[n]
	}
	return pt.dashTable[last] + float64(n-last)*pt.RealSpeedMax
}

// CyclesToReachDistance returns the dash cycles needed to cover dist from
// rest.
func (pt *PlayerType) CyclesToReachDistance(dist float64) int {
	if dist <= 0 {
		return 0
	}
	last := len(pt.dashTable) - 1
	if dist > pt.dashTable[last] {
		return last + int(math.Ceil((dist-pt.dashTable[last])/pt.RealSpeedMax))
	}
	return sort.SearchFloat64s(pt.dashTable, dist)
}

// KickRate returns the kick power rate for a ball at dist metres and
// dirDiff degrees off the body direction.
func (pt *PlayerType) KickRate(dist, dirDiff float64) float64 {
	rate := pt.KickPowerRate * (1 -
		0.25*math.Abs(dirDiff)/180 -
		0.25*(dist-pt.PlayerSize-pt.sp.BallSize)/pt.KickableMargin)
	return math.Max(0, rate)
}

// InertiaPoint returns where a player of this type coasts to in n cycles.
func (pt *PlayerType) InertiaPoint(pos, vel geom.Vec, n int) geom.Vec {
	return geom.InertiaPoint(pos, vel, pt.PlayerDecay, n)
}

// InertiaFinal returns where a player of this type stops when coasting.
func (pt *PlayerType) InertiaFinal(pos, vel geom.Vec) geom.Vec {
	return geom.InertiaFinal(pos, vel, pt.PlayerDecay)
}

// Registry resolves player types by id for one configuration.
type Registry struct {
	Params *ServerParams
	Model  Model
	types  map[int]*PlayerType
	first  *PlayerType
}

// NewRegistry builds the server parameters, physics model and every
// configured player type.
func NewRegistry(cfg *config.Config) *Registry {
	sp := NewServerParams(cfg)
	r := &Registry{
		Params: sp,
		Model:  NewModel(sp),
		types:  make(map[int]*PlayerType, len(cfg.PlayerTypes)),
	}
	for _, ptc := range cfg.PlayerTypes {
		pt := NewPlayerType(ptc, sp, cfg.Table.MaxCycle)
		r.types[ptc.ID] = pt
		if r.first == nil {
			r.first = pt
		}
	}
	return r
}

// Type returns the player type with the given id, falling back to the
// default type for unknown ids.
func (r *Registry) Type(id int) *PlayerType {
	if pt, ok := r.types[id]; ok {
		return pt
	}
	return r.first
}

// Count returns the number of registered types.
func (r *Registry) Count() int { return len(r.types) }
