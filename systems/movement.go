package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

// MovementSystem executes body commands and advances players and the ball
// by one cycle.
type MovementSystem struct {
	players ecs.Filter6[components.Position, components.Velocity, components.Body, components.Stamina, components.Player, components.Command]
	ball    ecs.Filter3[components.Position, components.Velocity, components.Ball]
	reg     *physics.Registry
	rng     *rand.Rand
	margin  float64
}

// NewMovementSystem creates a movement system. Players are kept within
// margin metres of the pitch.
func NewMovementSystem(w *ecs.World, reg *physics.Registry, rng *rand.Rand, margin float64) *MovementSystem {
	return &MovementSystem{
		players: *ecs.NewFilter6[components.Position, components.Velocity, components.Body, components.Stamina, components.Player, components.Command](w),
		ball:    *ecs.NewFilter3[components.Position, components.Velocity, components.Ball](w),
		reg:     reg,
		rng:     rng,
		margin:  margin,
	}
}

// Update runs the movement system for the given cycle.
func (s *MovementSystem) Update(w *ecs.World, cycle int64) {
	sp := s.reg.Params
	model := s.reg.Model

	var ballPos *components.Position
	var ballVel *components.Velocity
	var ball *components.Ball
	bq := s.ball.Query()
	for bq.Next() {
		ballPos, ballVel, ball = bq.Get()
	}
	if ball == nil {
		return
	}

	var kickAccel geom.Vec
	var holderPos geom.Vec
	held := false

	query := s.players.Query()
	for query.Next() {
		pos, vel, body, st, pl, cmd := query.Get()
		pt := s.reg.Type(pl.TypeID)

		switch cmd.Kind {
		case components.CmdTurn:
			moment := geom.Clamp(cmd.Dir, sp.MinMoment, sp.MaxMoment)
			body.Dir = geom.NormalizeAngle(body.Dir + model.EffectiveTurn(pt, moment, r2.Norm(vel.Vec())))
			st.SimulateWait(pt)

		case components.CmdDash:
			power := st.AvailableDashPower(pt, cmd.Power)
			accel := physics.DashAccel(model, pt, st.Effort, power, body.Dir, cmd.Dir)
			vel.Set(r2.Add(vel.Vec(), accel))
			st.SimulateDash(pt, power)

		case components.CmdKick:
			if a, ok := s.kick(pt, pos.Vec(), body.Dir, ballPos.Vec(), cmd); ok {
				kickAccel = r2.Add(kickAccel, a)
				ball.LastKicker = pl.ID
				ball.KickCycle = cycle
				if ball.Holder == pl.ID {
					ball.Holder = world.NoPlayer
				}
			}
			st.SimulateWait(pt)

		case components.CmdCatch:
			if ball.Holder == world.NoPlayer && r2.Norm(r2.Sub(ballPos.Vec(), pos.Vec())) <= pt.CatchableArea {
				ball.Holder = pl.ID
				ball.LastKicker = pl.ID
				ballVel.Set(geom.Vec{})
			}
			st.SimulateWait(pt)

		default:
			st.SimulateWait(pt)
		}

		v := geom.LimitLength(vel.Vec(), pt.PlayerSpeedMax)
		next := r2.Add(pos.Vec(), v)
		next.X = geom.Clamp(next.X, -sp.PitchHalfLength-s.margin, sp.PitchHalfLength+s.margin)
		next.Y = geom.Clamp(next.Y, -sp.PitchHalfWidth-s.margin, sp.PitchHalfWidth+s.margin)
		pos.Set(next)
		vel.Set(r2.Scale(pt.PlayerDecay, v))
		*cmd = components.Command{}

		if pl.ID == ball.Holder {
			holderPos = next
			held = true
		}
	}

	if held {
		ballPos.Set(holderPos)
		ballVel.Set(geom.Vec{})
		return
	}

	bv := geom.LimitLength(r2.Add(ballVel.Vec(), geom.LimitLength(kickAccel, sp.BallSpeedMax)), sp.BallSpeedMax)
	ballPos.Set(r2.Add(ballPos.Vec(), bv))
	ballVel.Set(r2.Scale(sp.BallDecay, bv))
}

// kick returns the ball acceleration of a kick command, or false when the
// ball is out of reach.
func (s *MovementSystem) kick(pt *physics.PlayerType, pos geom.Vec, body float64, ballPos geom.Vec, cmd *components.Command) (geom.Vec, bool) {
	toBall := r2.Sub(ballPos, pos)
	dist := r2.Norm(toBall)
	if dist > pt.KickableArea {
		return geom.Vec{}, false
	}
	sp := s.reg.Params
	power := geom.Clamp(cmd.Power, 0, sp.MaxPower)
	rate := pt.KickRate(dist, geom.AngleDiff(geom.AngleOf(toBall), body))
	accel := geom.Polar(power*rate, body+cmd.Dir)

	noise := pt.KickRand * power / sp.MaxPower * s.rng.Float64()
	return r2.Add(accel, geom.Polar(noise, s.rng.Float64()*360)), true
}
