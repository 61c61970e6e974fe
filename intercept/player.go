package intercept

import (
	"math"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// PlayerPredictor estimates how soon another player reaches the ball,
// assuming a turn followed by straight max-power dashes.
type PlayerPredictor struct {
	cfg         config.InterceptConfig
	unreachable int
}

// NewPlayerPredictor creates a predictor that reports unreachable when no
// cached step works.
func NewPlayerPredictor(cfg config.InterceptConfig, unreachable int) *PlayerPredictor {
	return &PlayerPredictor{cfg: cfg, unreachable: unreachable}
}

// Predict returns the estimated reach step of p. Goalies are also tried
// with the catch radius while the ball is inside their penalty area, and
// the smaller step is kept.
func (pp *PlayerPredictor) Predict(ws *world.State, p *world.Player, cache *BallCache, teammate bool) int {
	pt := p.Type
	if pt == nil {
		return pp.unreachable
	}
	sp := ws.Model.Params()

	step := pp.predict(ws, p, cache, pt.KickableArea, nil)
	if p.Goalie {
		inArea := func(ball geom.Vec) bool { return sp.InTheirPenaltyArea(ball, 0) }
		if teammate {
			inArea = func(ball geom.Vec) bool { return sp.InOurPenaltyArea(ball, 0) }
		}
		step = min(step, pp.predict(ws, p, cache, pt.CatchableArea, inArea))
	}
	return step
}

func (pp *PlayerPredictor) predict(ws *world.State, p *world.Player, cache *BallCache, control float64, eligible func(geom.Vec) bool) int {
	pt := p.Type

	// Stale or distant observations may hide movement towards the ball.
	allowance := float64(p.PosCount)*pt.RealSpeedMax*pp.cfg.PlayerStaleMoveRate +
		geom.Dist(p.Pos, ws.Self.Pos)*pp.cfg.PlayerDistNoiseRate

	body := p.Body
	penalty := 0
	if p.BodyCount > 0 {
		if r2.Norm(p.Vel) > 0.2 {
			body = geom.AngleOf(p.Vel)
		}
		penalty = pp.cfg.UnknownBodyTurnPenalty
	}

	for n := 0; n <= cache.MaxStep(); n++ {
		ballPos := cache.Pos(n)
		if eligible != nil && !eligible(ballPos) {
			continue
		}
		inertia := pt.InertiaPoint(p.Pos, p.Vel, n)
		gap := geom.Dist(inertia, ballPos)
		dist := gap - control - allowance
		if dist <= 0 {
			return n
		}
		nTurn := turnCycles(ws.Model, pt, body, r2.Sub(ballPos, inertia), control, p.Vel, pp.cfg.MinTurnMargin)
		if nTurn > 0 {
			nTurn += penalty
		}
		nDash := n - nTurn
		if nDash <= 0 {
			continue
		}
		if pt.DashDistance(nDash) >= dist {
			return n
		}
	}
	return pp.unreachable
}

// maxTurnCycles bounds turn counting when the turn moment is degenerate.
const maxTurnCycles = 10

// turnCycles counts the max-moment turns a player needs to face target
// within the aiming tolerance for the control radius.
func turnCycles(m physics.Model, pt *physics.PlayerType, body float64, target geom.Vec, control float64, vel geom.Vec, minMargin float64) int {
	dist := r2.Norm(target)
	if dist <= control {
		return 0
	}
	margin := math.Max(minMargin, math.Asin(math.Min(1, control/dist))*180/math.Pi)
	diff := geom.AngleDiff(geom.AngleOf(target), body)
	speed := r2.Norm(vel)
	n := 0
	for diff > margin && n < maxTurnCycles {
		diff -= m.EffectiveTurn(pt, m.Params().MaxMoment, speed)
		speed *= pt.PlayerDecay
		n++
	}
	return n
}
