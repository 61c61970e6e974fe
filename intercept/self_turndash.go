package intercept

import (
	"github.com/pthm-cable/striker/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// simulateTurnDash turns the body towards (or away from, when back is
// set) the ball's predicted position and dashes straight along the body
// axis, once per cycle horizon.
func (c *selfContext) simulateTurnDash(back, exhaust bool, maxStep int) []Intercept {
	var out []Intercept
	for n := c.estimateMinStep(maxStep); n <= maxStep; n++ {
		if back && n > c.cfg.BackDashThreshold && !c.goalieBackDash() {
			break
		}
		cand, ok := c.turnDashAt(n, back, exhaust)
		if !ok {
			continue
		}
		out = append(out, cand)
		if len(out) >= c.cfg.MaxSuccessCount {
			break
		}
	}
	return out
}

// goalieBackDash reports whether long backward dashes are worth trying:
// a goalie inside its own penalty area while catching is allowed.
func (c *selfContext) goalieBackDash() bool {
	return c.goalieCatch && c.sp.InOurPenaltyArea(c.self.Pos, 0)
}

// estimateMinStep returns the first horizon at which the ball's position
// falls inside the area self could cover by dashing flat out.
func (c *selfContext) estimateMinStep(maxStep int) int {
	for n := 1; n <= maxStep; n++ {
		ballPos := c.cache.Pos(n)
		inertia := c.pt.InertiaPoint(c.self.Pos, c.self.Vel, n)
		if geom.Dist(ballPos, inertia) <= c.pt.DashDistance(n)+c.controlArea(ballPos) {
			return n
		}
	}
	return maxStep + 1
}

// turnDashAt simulates turning then dashing to meet the ball exactly n
// cycles from now.
func (c *selfContext) turnDashAt(n int, back, exhaust bool) (Intercept, bool) {
	ballPos := c.cache.Pos(n)
	control := c.controlArea(ballPos)
	buf := c.cfg.ControlAreaBuf + c.noiseBuf
	if back {
		buf += c.cfg.BackDashBuf
	}
	reach := control - buf
	if reach <= 0 {
		return Intercept{}, false
	}

	inertia := c.pt.InertiaPoint(c.self.Pos, c.self.Vel, n)
	target := r2.Sub(ballPos, inertia)
	dist := r2.Norm(target)

	faceAngle := geom.AngleOf(target)
	if back {
		faceAngle = geom.NormalizeAngle(faceAngle + 180)
	}
	body, nTurn, ok := c.turnsToFace(c.self.Body, faceAngle, c.turnMargin(control, dist), r2.Norm(c.self.Vel), n)
	if !ok {
		return Intercept{}, false
	}

	pos, vel, st := c.self.Pos, c.self.Vel, c.self.Stamina
	for i := 0; i < nTurn; i++ {
		c.coast(&pos, &vel, &st)
	}

	ax := c.axis(0)
	if back {
		ax = c.axis(180)
	}
	moveAngle := body + ax.dir
	nDash := n - nTurn
	firstPower := 0.0
	coasting := false
	for i := 0; i < nDash; i++ {
		remaining := nDash - i
		if !coasting && c.coastReaches(pos, vel, ballPos, remaining, reach) {
			coasting = true
		}
		if coasting {
			c.coast(&pos, &vel, &st)
			continue
		}

		// Closing speed that reaches the ball exactly when coasting the rest.
		rel := geom.Rotate(r2.Sub(ballPos, pos), -moveAngle)
		relVel := geom.Rotate(vel, -moveAngle)
		want := rel.X/geom.InertiaSum(c.pt.PlayerDecay, remaining) - relVel.X
		rate := c.rate(ax, st.Effort)
		if want <= 0 || rate < geom.Epsilon {
			coasting = true
			c.coast(&pos, &vel, &st)
			continue
		}
		accel := min(want, c.powerLimit(st, ax, exhaust)*rate, c.sp.PlayerAccelMax)
		power := ax.sign * accel / rate
		if i == 0 {
			firstPower = power
		}
		c.dash(&pos, &vel, &st, body, ax, power)
	}

	ballDist := geom.Dist(pos, ballPos)
	if ballDist > reach {
		return Intercept{}, false
	}

	action := TurnForwardDash
	if back {
		action = TurnBackDash
	}
	return Intercept{
		StaminaType:      c.exhausted(st),
		ActionType:       action,
		TurnCycles:       nTurn,
		DashCycles:       nDash,
		FirstDashPower:   firstPower,
		FirstDashDir:     ax.cmdDir,
		PredictedPos:     pos,
		BallDist:         ballDist,
		RemainingStamina: st.Stamina,
	}, true
}
