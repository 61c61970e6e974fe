package intercept

import (
	"github.com/pthm-cable/striker/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// simulateFinal builds the guaranteed plan used when no strategy found a
// candidate: face the ball's stop position and dash there at full power.
// The result never exceeds the table horizon.
func (c *selfContext) simulateFinal(maxStep int) Intercept {
	ballFinal := geom.InertiaFinal(c.cache.Pos(0), c.cache.Vel(), c.sp.BallDecay)
	selfFinal := c.pt.InertiaFinal(c.self.Pos, c.self.Vel)
	target := r2.Sub(ballFinal, selfFinal)
	dist := r2.Norm(target)
	control := c.controlArea(ballFinal)

	nTurn := 0
	if dist > control {
		_, nTurn, _ = c.turnsToFace(c.self.Body, geom.AngleOf(target), c.turnMargin(control, dist), r2.Norm(c.self.Vel), c.maxCycle)
	}
	nDash := c.pt.CyclesToReachDistance(dist - control)
	nDash = max(nDash, maxStep-nTurn, 0)
	if nTurn+nDash > c.maxCycle {
		nTurn = min(nTurn, c.maxCycle)
		nDash = c.maxCycle - nTurn
	}

	st := c.self.Stamina
	st.SimulateWaits(c.pt, nTurn)
	power := 0.0
	for i := 0; i < nDash; i++ {
		p := st.SafeDashPower(c.pt, c.sp.MaxDashPower, c.cfg.SafeStaminaBuf)
		if i == 0 {
			power = p
		}
		st.SimulateDash(c.pt, p)
	}

	return Intercept{
		StaminaType:      Normal,
		ActionType:       TurnForwardDash,
		TurnCycles:       nTurn,
		DashCycles:       nDash,
		FirstDashPower:   power,
		FirstDashDir:     0,
		PredictedPos:     ballFinal,
		BallDist:         0,
		RemainingStamina: st.Stamina,
	}
}
