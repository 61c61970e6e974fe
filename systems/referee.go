package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

const (
	goalHalfWidth  = 7.01
	goalAreaLength = 5.5
	// MaxRestartWait is the number of cycles a restart may stall before
	// play resumes without a kick.
	MaxRestartWait = 50
)

// Score counts goals per side.
type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// RefereeSystem keeps the match clock and enforces the laws the sandbox
// models: kick-off, goals, touch and goal lines, goalie catches and the
// end of the match.
type RefereeSystem struct {
	players ecs.Filter4[components.Position, components.Velocity, components.Body, components.Player]
	ball    ecs.Filter3[components.Position, components.Velocity, components.Ball]
	sp      *physics.ServerParams
	length  int64

	Time      world.Time
	Mode      world.GameMode
	KickSide  world.Side // side awarded the current restart
	Score     Score
	modeStart int64
}

// NewRefereeSystem creates a referee for a match of two halves.
func NewRefereeSystem(w *ecs.World, sp *physics.ServerParams, halfTimeCycles int) *RefereeSystem {
	return &RefereeSystem{
		players: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Player](w),
		ball:    *ecs.NewFilter3[components.Position, components.Velocity, components.Ball](w),
		sp:      sp,
		length:  2 * int64(halfTimeCycles),
		Mode:    world.BeforeKickOff,
	}
}

// Update advances the clock by one cycle and applies the laws to the
// current positions. It reports whether the game mode changed.
func (r *RefereeSystem) Update(w *ecs.World) bool {
	if r.Mode == world.TimeOver {
		return false
	}
	prev := r.Mode

	var pos *components.Position
	var vel *components.Velocity
	var ball *components.Ball
	bq := r.ball.Query()
	for bq.Next() {
		pos, vel, ball = bq.Get()
	}
	if ball == nil {
		return false
	}

	if r.Mode == world.BeforeKickOff {
		r.kickOff(world.SideLeft, pos, vel, ball)
		return true
	}

	r.Time.Cycle++
	if r.length > 0 && r.Time.Cycle >= r.length {
		r.setMode(world.TimeOver, world.SideNeutral)
		return true
	}

	switch {
	case ball.Holder != world.NoPlayer:
		if r.Mode != world.GoalieCatch {
			r.setMode(world.GoalieCatch, ball.Holder.Side())
		}
	case r.Mode != world.PlayOn:
		if ball.KickCycle > r.modeStart || r.Time.Cycle-r.modeStart > MaxRestartWait {
			r.setMode(world.PlayOn, world.SideNeutral)
		}
	default:
		r.checkBallOut(pos, vel, ball)
	}
	return r.Mode != prev
}

func (r *RefereeSystem) setMode(mode world.GameMode, side world.Side) {
	r.Mode = mode
	r.KickSide = side
	r.modeStart = r.Time.Cycle
}

func (r *RefereeSystem) checkBallOut(pos *components.Position, vel *components.Velocity, ball *components.Ball) {
	hl, hw := r.sp.PitchHalfLength, r.sp.PitchHalfWidth
	p := pos.Vec()

	switch {
	case math.Abs(p.X) > hl:
		defending := world.SideRight
		if p.X < 0 {
			defending = world.SideLeft
		}
		sx := math.Copysign(1, p.X)
		if math.Abs(p.Y) < goalHalfWidth {
			if defending == world.SideLeft {
				r.Score.Right++
			} else {
				r.Score.Left++
			}
			r.kickOff(defending, pos, vel, ball)
			return
		}
		if ball.LastKicker.Side() == defending {
			placeBall(pos, vel, ball, geom.Vec{X: sx * (hl - 1), Y: math.Copysign(hw-1, p.Y)})
			r.setMode(world.CornerKick, defending.Opposite())
			return
		}
		placeBall(pos, vel, ball, geom.Vec{X: sx * (hl - goalAreaLength)})
		r.setMode(world.GoalKick, defending)

	case math.Abs(p.Y) > hw:
		side := ball.LastKicker.Side().Opposite()
		if side == world.SideNeutral {
			side = world.SideLeft
		}
		placeBall(pos, vel, ball, geom.Vec{X: geom.Clamp(p.X, -hl, hl), Y: math.Copysign(hw, p.Y)})
		r.setMode(world.KickIn, side)
	}
}

// kickOff returns every player to its formation position and places the
// ball on the centre spot.
func (r *RefereeSystem) kickOff(side world.Side, pos *components.Position, vel *components.Velocity, ball *components.Ball) {
	query := r.players.Query()
	for query.Next() {
		ppos, pvel, body, pl := query.Get()
		ppos.Set(pl.Home)
		pvel.Set(geom.Vec{})
		body.Dir = 0
		if pl.ID.Side() == world.SideRight {
			body.Dir = 180
		}
	}
	placeBall(pos, vel, ball, geom.Vec{})
	ball.LastKicker = world.NoPlayer
	r.setMode(world.KickOff, side)
}

func placeBall(pos *components.Position, vel *components.Velocity, ball *components.Ball, at geom.Vec) {
	pos.Set(at)
	vel.Set(geom.Vec{})
	ball.Holder = world.NoPlayer
}
