package intercept

import (
	"math"

	"github.com/pthm-cable/striker/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// simulateOmniDash re-chooses the dash direction every cycle without
// turning. Horizons whose lateral gap exceeds what side dashes can cover
// are rejected up front.
func (c *selfContext) simulateOmniDash(exhaust bool, maxStep int) []Intercept {
	sideAccel := math.Min(c.sp.MaxDashPower*c.rate(c.axis(90), c.self.Stamina.Effort), c.sp.PlayerAccelMax)
	sideSpeed := math.Min(c.pt.PlayerSpeedMax, sideAccel/(1-c.pt.PlayerDecay))

	var out []Intercept
	for n := c.estimateMinStep(maxStep); n <= maxStep; n++ {
		ballPos := c.cache.Pos(n)
		reach := c.controlArea(ballPos) - c.cfg.ControlAreaBuf - c.noiseBuf
		if reach <= 0 {
			continue
		}
		inertia := c.pt.InertiaPoint(c.self.Pos, c.self.Vel, n)
		rel := geom.Rotate(r2.Sub(ballPos, inertia), -c.self.Body)
		if math.Abs(rel.Y)-reach > sideSpeed*float64(n) {
			continue
		}

		cand, ok := c.omniDashAt(n, ballPos, reach, exhaust)
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

// omniDashAt simulates n cycles of dashes aimed at the acceleration that
// would meet the ball exactly, snapped to the legal direction bins.
func (c *selfContext) omniDashAt(n int, ballPos geom.Vec, reach float64, exhaust bool) (Intercept, bool) {
	body := c.self.Body
	pos, vel, st := c.self.Pos, c.self.Vel, c.self.Stamina
	firstPower, firstDir := 0.0, 0.0
	coasting := false

	for i := 0; i < n; i++ {
		remaining := n - i
		if !coasting && c.coastReaches(pos, vel, ballPos, remaining, reach) {
			coasting = true
		}
		if coasting {
			c.coast(&pos, &vel, &st)
			continue
		}

		want := r2.Sub(r2.Scale(1/geom.InertiaSum(c.pt.PlayerDecay, remaining), r2.Sub(ballPos, pos)), vel)
		if r2.Norm(want) < geom.Epsilon {
			coasting = true
			c.coast(&pos, &vel, &st)
			continue
		}
		ax := c.axis(c.sp.DiscretizeDashAngle(geom.NormalizeAngle(geom.AngleOf(want) - body)))
		along := r2.Dot(want, geom.Polar(1, body+ax.dir))
		rate := c.rate(ax, st.Effort)
		if along <= 0 || rate < geom.Epsilon {
			c.coast(&pos, &vel, &st)
			continue
		}

		accel := min(along, c.powerLimit(st, ax, exhaust)*rate, c.sp.PlayerAccelMax)
		power := ax.sign * accel / rate
		if i == 0 {
			firstPower, firstDir = power, ax.cmdDir
		}
		c.dash(&pos, &vel, &st, body, ax, power)
	}

	ballDist := geom.Dist(pos, ballPos)
	if ballDist > reach {
		return Intercept{}, false
	}
	return Intercept{
		StaminaType:      c.exhausted(st),
		ActionType:       OmniDash,
		TurnCycles:       0,
		DashCycles:       n,
		FirstDashPower:   firstPower,
		FirstDashDir:     firstDir,
		PredictedPos:     pos,
		BallDist:         ballDist,
		RemainingStamina: st.Stamina,
	}, true
}
