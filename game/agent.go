package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/systems"
	"github.com/pthm-cable/striker/telemetry"
	"github.com/pthm-cable/striker/world"
)

// decideAgent picks the agent's command from its interception table.
// The agent chases while it is the fastest of its team, executing the
// first action of its best self candidate, and otherwise holds its
// support position.
func (m *Match) decideAgent(cycle int64) components.Command {
	mode := m.referee.Mode
	if mode.IsTerminalOrPreKickOff() {
		return components.Command{}
	}

	self := &m.state.Self
	ball := m.ballMap.Get(m.ballEntity)
	ballPos := m.posMap.Get(m.ballEntity).Vec()
	home := m.playerMap.Get(m.agentEntity).Home

	if ball.Holder != world.NoPlayer || (mode != world.PlayOn && m.referee.KickSide != m.state.OurSide) {
		return m.steer(self, home, 2)
	}
	if geom.Dist(self.Pos, ballPos) <= self.Type.KickableArea {
		return m.kickToGoal(self, ballPos)
	}

	best, ok := m.table.BestSelf()
	if !ok {
		return m.steer(self, systems.SupportPosition(m.reg.Params, home, ballPos), 2)
	}

	fastest := m.table.SelfStep() <= m.table.TeammateStep()
	if !m.collector.Chasing() {
		if !fastest || mode != world.PlayOn {
			return m.steer(self, systems.SupportPosition(m.reg.Params, home, ballPos), 2)
		}
		m.collector.Record(telemetry.NewChaseStartEvent(cycle, m.agent, best.ReachCycles()))
		m.logger.Debug("chase", "cycle", cycle, "plan", best.String())
	}
	return m.execute(self, best)
}

// execute issues the first body command of a plan.
func (m *Match) execute(self *world.Self, plan intercept.Intercept) components.Command {
	if plan.TurnCycles > 0 {
		dir := geom.AngleOf(r2.Sub(plan.PredictedPos, self.Pos))
		if plan.ActionType == intercept.TurnBackDash {
			dir += 180
		}
		diff := geom.NormalizeAngle(dir - self.Body)
		moment := diff * (1 + self.Type.InertiaMoment*r2.Norm(self.Vel))
		return components.Command{Kind: components.CmdTurn, Dir: moment}
	}
	if plan.DashCycles == 0 {
		return components.Command{}
	}
	return components.Command{Kind: components.CmdDash, Power: plan.FirstDashPower, Dir: plan.FirstDashDir}
}

func (m *Match) steer(self *world.Self, target geom.Vec, tolerance float64) components.Command {
	return m.chase.Steer(self.Type, self.Pos, self.Vel, self.Body, self.Stamina, target, tolerance)
}

// kickToGoal kicks the ball at full power towards the centre of the
// opponent goal.
func (m *Match) kickToGoal(self *world.Self, ballPos geom.Vec) components.Command {
	goal := geom.Vec{X: m.reg.Params.PitchHalfLength}
	return components.Command{
		Kind:  components.CmdKick,
		Power: m.reg.Params.MaxPower,
		Dir:   geom.NormalizeAngle(geom.AngleOf(r2.Sub(goal, ballPos)) - self.Body),
	}
}
