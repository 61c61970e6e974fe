package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

const (
	// maxChaseSteps bounds the straight-line estimate used to pick chasers.
	maxChaseSteps = 50
	turnThreshold = 15.0 // degrees
	supportShift  = 0.4  // fraction of the ball's x the formation follows
)

// Situation is the match state behaviour decisions depend on.
type Situation struct {
	Mode     world.GameMode
	KickSide world.Side
	Agent    world.PlayerID // decided elsewhere, skipped here
}

// ChaseSystem decides the body commands of every player except the agent.
// On each side the player with the smallest straight-line estimate chases
// the ball, goalies guard their area and everyone else holds a formation
// position shifted towards the ball.
type ChaseSystem struct {
	players ecs.Filter6[components.Position, components.Velocity, components.Body, components.Stamina, components.Player, components.Command]
	ball    ecs.Filter3[components.Position, components.Velocity, components.Ball]
	reg     *physics.Registry
	cfg     config.MatchConfig
	rng     *rand.Rand
	chasers map[world.Side]chaser
}

type chaser struct {
	id    world.PlayerID
	steps int
}

// NewChaseSystem creates a chase system.
func NewChaseSystem(w *ecs.World, reg *physics.Registry, cfg config.MatchConfig, rng *rand.Rand) *ChaseSystem {
	return &ChaseSystem{
		players: *ecs.NewFilter6[components.Position, components.Velocity, components.Body, components.Stamina, components.Player, components.Command](w),
		ball:    *ecs.NewFilter3[components.Position, components.Velocity, components.Ball](w),
		reg:     reg,
		cfg:     cfg,
		rng:     rng,
		chasers: make(map[world.Side]chaser, 2),
	}
}

// Chaser returns the player chasing the ball for side and its estimated
// steps, as decided by the last update.
func (s *ChaseSystem) Chaser(side world.Side) (world.PlayerID, int) {
	c, ok := s.chasers[side]
	if !ok {
		return world.NoPlayer, maxChaseSteps
	}
	return c.id, c.steps
}

// Update writes the next command of every non-agent player.
func (s *ChaseSystem) Update(w *ecs.World, sit Situation) {
	var ballPos, ballVel geom.Vec
	var ball components.Ball
	bq := s.ball.Query()
	for bq.Next() {
		p, v, b := bq.Get()
		ballPos, ballVel, ball = p.Vec(), v.Vec(), *b
	}

	clear(s.chasers)
	query := s.players.Query()
	for query.Next() {
		pos, vel, _, _, pl, _ := query.Get()
		side := pl.ID.Side()
		if pl.Goalie() && !s.inOwnArea(side, ballPos) {
			continue
		}
		pt := s.reg.Type(pl.TypeID)
		steps := EstimateSteps(pt, pos.Vec(), vel.Vec(), ballPos, ballVel)
		if c, ok := s.chasers[side]; !ok || steps < c.steps || (steps == c.steps && pl.ID < c.id) {
			s.chasers[side] = chaser{id: pl.ID, steps: steps}
		}
	}

	query = s.players.Query()
	for query.Next() {
		pos, vel, body, st, pl, cmd := query.Get()
		if pl.ID == sit.Agent {
			continue
		}
		a := actor{
			pt:   s.reg.Type(pl.TypeID),
			pl:   pl,
			pos:  pos.Vec(),
			vel:  vel.Vec(),
			body: body.Dir,
			st:   st.StaminaModel,
		}
		*cmd = s.decide(sit, &a, ballPos, ballVel, ball)
	}
}

type actor struct {
	pt   *physics.PlayerType
	pl   *components.Player
	pos  geom.Vec
	vel  geom.Vec
	body float64
	st   physics.StaminaModel
}

func (s *ChaseSystem) decide(sit Situation, a *actor, ballPos, ballVel geom.Vec, ball components.Ball) components.Command {
	if sit.Mode.IsTerminalOrPreKickOff() {
		return components.Command{}
	}
	side := a.pl.ID.Side()
	if ball.Holder == a.pl.ID {
		return s.shoot(a, ballPos)
	}
	if ball.Holder != world.NoPlayer || (sit.Mode != world.PlayOn && side != sit.KickSide) {
		return s.goTo(a, a.pl.Home, 2)
	}

	dist := r2.Norm(r2.Sub(ballPos, a.pos))
	if dist <= a.pt.KickableArea {
		return s.shoot(a, ballPos)
	}

	c := s.chasers[side]
	inArea := s.inOwnArea(side, ballPos)
	if a.pl.Goalie() {
		if sit.Mode.AllowsGoalieCatch() && inArea && dist <= a.pt.CatchableArea {
			return components.Command{Kind: components.CmdCatch, Dir: geom.NormalizeAngle(geom.AngleOf(r2.Sub(ballPos, a.pos)) - a.body)}
		}
		if !inArea || c.id != a.pl.ID {
			guard := geom.Vec{X: a.pl.Home.X, Y: geom.Clamp(ballPos.Y*0.2, -goalHalfWidth, goalHalfWidth)}
			return s.goTo(a, guard, 1)
		}
	}

	if c.id == a.pl.ID {
		target := geom.InertiaPoint(ballPos, ballVel, s.reg.Params.BallDecay, c.steps)
		return s.goTo(a, target, 0.5)
	}

	return s.goTo(a, SupportPosition(s.reg.Params, a.pl.Home, ballPos), 2)
}

// SupportPosition shifts a formation position along the pitch with the ball.
func SupportPosition(sp *physics.ServerParams, home, ballPos geom.Vec) geom.Vec {
	home.X = geom.Clamp(home.X+ballPos.X*supportShift, -sp.PitchHalfLength, sp.PitchHalfLength)
	return home
}

// goTo turns towards target until the body is aligned and then dashes,
// keeping the stamina above the recovery threshold.
func (s *ChaseSystem) goTo(a *actor, target geom.Vec, tolerance float64) components.Command {
	rel := r2.Sub(target, a.pt.InertiaPoint(a.pos, a.vel, 1))
	if r2.Norm(rel) < tolerance {
		return components.Command{}
	}
	diff := geom.NormalizeAngle(geom.AngleOf(rel) - a.body)
	if math.Abs(diff) > turnThreshold {
		moment := diff * (1 + a.pt.InertiaMoment*r2.Norm(a.vel))
		return components.Command{Kind: components.CmdTurn, Dir: moment}
	}
	power := a.st.SafeDashPower(a.pt, s.reg.Params.MaxDashPower, 0)
	return components.Command{Kind: components.CmdDash, Power: power}
}

// Steer returns the turn or dash that moves a player towards target, or
// no command once it is within tolerance.
func (s *ChaseSystem) Steer(pt *physics.PlayerType, pos, vel geom.Vec, body float64, st physics.StaminaModel, target geom.Vec, tolerance float64) components.Command {
	a := actor{pt: pt, pos: pos, vel: vel, body: body, st: st}
	return s.goTo(&a, target, tolerance)
}

// shoot kicks the ball towards a random point of the opponent goal.
func (s *ChaseSystem) shoot(a *actor, ballPos geom.Vec) components.Command {
	sp := s.reg.Params
	attack := 1.0
	if a.pl.ID.Side() == world.SideRight {
		attack = -1
	}
	goal := geom.Vec{X: attack * sp.PitchHalfLength, Y: (s.rng.Float64()*2 - 1) * goalHalfWidth * 0.8}

	toBall := r2.Sub(ballPos, a.pos)
	rate := a.pt.KickRate(r2.Norm(toBall), geom.AngleDiff(geom.AngleOf(toBall), a.body))
	speed := s.cfg.KickSpeedMin + s.rng.Float64()*(s.cfg.KickSpeedMax-s.cfg.KickSpeedMin)
	power := sp.MaxPower
	if rate > 0 {
		power = math.Min(sp.MaxPower, speed/rate)
	}
	return components.Command{
		Kind:  components.CmdKick,
		Power: power,
		Dir:   geom.NormalizeAngle(geom.AngleOf(r2.Sub(goal, ballPos)) - a.body),
	}
}

func (s *ChaseSystem) inOwnArea(side world.Side, pos geom.Vec) bool {
	if side == world.SideRight {
		return s.reg.Params.InTheirPenaltyArea(pos, 0)
	}
	return s.reg.Params.InOurPenaltyArea(pos, 0)
}

// EstimateSteps returns a straight-line estimate of the cycles a player
// needs to reach a kickable distance from the ball, assuming one turn
// cycle. It saturates at maxChaseSteps.
func EstimateSteps(pt *physics.PlayerType, pos, vel, ballPos, ballVel geom.Vec) int {
	decay := pt.Params().BallDecay
	for n := 0; n < maxChaseSteps; n++ {
		ball := geom.InertiaPoint(ballPos, ballVel, decay, n)
		d := r2.Norm(r2.Sub(ball, pt.InertiaPoint(pos, vel, n))) - pt.KickableArea
		if d <= 0 || pt.DashDistance(n-1) >= d {
			return n
		}
	}
	return maxChaseSteps
}
