package intercept

import (
	"math"

	"github.com/pthm-cable/striker/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// simulateNoDash checks whether the ball comes under control next cycle
// without moving. The ball must also be stoppable by a kick unless the
// goalie can catch it.
func (c *selfContext) simulateNoDash() (Intercept, bool) {
	ballNext := c.cache.Pos(1)
	selfNext := c.pt.InertiaPoint(c.self.Pos, c.self.Vel, 1)
	control := c.controlArea(ballNext)
	dist := geom.Dist(selfNext, ballNext)
	if dist > control-c.cfg.ControlAreaBuf {
		return Intercept{}, false
	}

	goalie := c.goalieCatch && c.sp.InOurPenaltyArea(ballNext, 0)
	if !goalie {
		rel := geom.Rotate(r2.Sub(ballNext, selfNext), -c.self.Body)
		kickRate := c.pt.KickRate(dist, geom.AngleOf(rel))
		ballSpeed := r2.Norm(c.ballVel(1))
		if c.sp.MaxPower*kickRate <= ballSpeed*c.cfg.KickStopMargin {
			return Intercept{}, false
		}
	}

	st := c.self.Stamina
	st.SimulateWait(c.pt)
	return Intercept{
		StaminaType:      Normal,
		ActionType:       TurnForwardDash,
		TurnCycles:       1,
		DashCycles:       0,
		PredictedPos:     selfNext,
		BallDist:         dist,
		RemainingStamina: st.Stamina,
	}, true
}

// simulateOneDash searches every dash direction bin for a single dash
// that brings the ball under control next cycle, and returns the best.
func (c *selfContext) simulateOneDash() []Intercept {
	ballNext := c.cache.Pos(1)
	selfNext := c.pt.InertiaPoint(c.self.Pos, c.self.Vel, 1)
	control := c.controlArea(ballNext)
	reach := control - c.cfg.ControlAreaBuf
	if reach <= 0 {
		return nil
	}
	safetyDist := math.Max(control-c.cfg.SafetyDistBuf, c.pt.PlayerSize+c.sp.BallSize)

	step := math.Max(c.cfg.MinDashAngleStep, c.sp.DashAngleStep)
	if step < 1 {
		step = 1
	}

	var best Intercept
	found := false
	for dir := -180.0; dir < 180.0-geom.Epsilon; dir += step {
		if c.m.DashDirRate(dir) < geom.Epsilon {
			continue
		}
		cand, ok := c.oneDashAt(dir, ballNext, selfNext, reach)
		if !ok {
			continue
		}
		if !found || betterOneDash(cand, best, safetyDist) {
			best = cand
			found = true
		}
	}
	if !found {
		return nil
	}
	return []Intercept{best}
}

// oneDashAt solves the dash power along dir that best matches the ball's
// position next cycle. The stamina-saving limit is tried first, then the
// full available power.
func (c *selfContext) oneDashAt(dir float64, ballNext, selfNext geom.Vec, reach float64) (Intercept, bool) {
	ax := c.axis(c.sp.DiscretizeDashAngle(dir))
	dashAngle := c.self.Body + ax.dir
	rel := geom.Rotate(r2.Sub(ballNext, selfNext), -dashAngle)
	if math.Abs(rel.Y) > reach {
		return Intercept{}, false
	}

	rate := c.rate(ax, c.self.Stamina.Effort)
	if rate < geom.Epsilon {
		return Intercept{}, false
	}
	for _, exhaust := range []bool{false, true} {
		maxAccel := math.Min(c.powerLimit(c.self.Stamina, ax, exhaust)*rate, c.sp.PlayerAccelMax)
		accel := geom.Clamp(rel.X, 0, maxAccel)
		power := ax.sign * accel / rate

		pos, vel, st := c.self.Pos, c.self.Vel, c.self.Stamina
		c.dash(&pos, &vel, &st, c.self.Body, ax, power)
		dist := geom.Dist(pos, ballNext)
		if dist > reach {
			continue
		}
		return Intercept{
			StaminaType:      c.exhausted(st),
			ActionType:       oneDashAction(ax, power),
			TurnCycles:       0,
			DashCycles:       1,
			FirstDashPower:   power,
			FirstDashDir:     ax.cmdDir,
			PredictedPos:     pos,
			BallDist:         dist,
			RemainingStamina: st.Stamina,
		}, true
	}
	return Intercept{}, false
}

func oneDashAction(ax dashAxis, power float64) ActionType {
	switch {
	case math.Abs(ax.dir) < geom.Epsilon:
		return TurnForwardDash
	case math.Abs(math.Abs(ax.dir)-180) < geom.Epsilon:
		return TurnBackDash
	case ax.sign < 0 || power < 0:
		return TurnBackDash
	}
	return OmniDash
}

// betterOneDash prefers the closer ball, except that two candidates
// already inside the safety distance are ranked by remaining stamina.
func betterOneDash(a, b Intercept, safetyDist float64) bool {
	if a.BallDist < safetyDist && b.BallDist < safetyDist {
		return a.RemainingStamina > b.RemainingStamina
	}
	return a.BallDist < b.BallDist
}
