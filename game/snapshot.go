package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/world"
)

// buildState converts the agent's observations into the world snapshot
// the interception table consumes. Self comes from the true state; other
// players appear once seen, at their last observed state; the ball is
// extrapolated from its last observation.
func (m *Match) buildState() *world.State {
	ws := &world.State{
		Time:    m.referee.Time,
		Mode:    m.referee.Mode,
		OurSide: world.SideLeft,
		Model:   m.reg.Model,
	}

	query := m.players.Query()
	for query.Next() {
		pos, vel, body, st, pl, obs, _ := query.Get()
		pt := m.reg.Type(pl.TypeID)

		if pl.ID == m.agent {
			ws.Self = world.Self{
				ID:       pl.ID,
				Pos:      pos.Vec(),
				Vel:      vel.Vec(),
				Body:     body.Dir,
				Stamina:  st.StaminaModel,
				TypeID:   pl.TypeID,
				Type:     pt,
				Goalie:   pl.Goalie(),
				PosCount: obs.PosCount,
			}
			continue
		}
		if !obs.Seen {
			continue
		}

		p := world.Player{
			ID:        pl.ID,
			Pos:       obs.Pos,
			Vel:       obs.Vel,
			Body:      obs.Body,
			PosCount:  obs.PosCount,
			VelCount:  obs.VelCount,
			BodyCount: obs.BodyCount,
			Goalie:    pl.Goalie(),
			TypeID:    pl.TypeID,
			Type:      pt,
		}
		if pl.ID.Side() == ws.OurSide {
			ws.Teammates = append(ws.Teammates, p)
		} else {
			ws.Opponents = append(ws.Opponents, p)
		}
	}

	ballObs := m.obsMap.Get(m.ballEntity)
	ws.Ball = world.Ball{PosCount: ballObs.PosCount, VelCount: ballObs.VelCount}
	if ballObs.Seen {
		decay := m.reg.Params.BallDecay
		n := ballObs.PosCount
		ws.Ball.Pos = geom.InertiaPoint(ballObs.Pos, ballObs.Vel, decay, n)
		ws.Ball.Vel = r2.Scale(math.Pow(decay, float64(n)), ballObs.Vel)
	}

	ws.UpdateDistances()
	return ws
}
