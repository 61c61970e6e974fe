package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/traits"
	"github.com/pthm-cable/striker/world"
)

// unseenCount is the observation age of an entity never seen.
const unseenCount = 1000

// formation holds 4-4-2 home positions of the left side by uniform number.
var formation = [...]geom.Vec{
	{X: -50, Y: 0},
	{X: -36, Y: -20}, {X: -38, Y: -7}, {X: -38, Y: 7}, {X: -36, Y: 20},
	{X: -20, Y: -20}, {X: -22, Y: -6}, {X: -22, Y: 6}, {X: -20, Y: 20},
	{X: -8, Y: -8}, {X: -8, Y: 8},
}

// HomePosition returns the formation position of a player. The right
// side mirrors the left through the centre spot.
func HomePosition(id world.PlayerID) geom.Vec {
	unum := id.Unum()
	if unum < 1 || unum > len(formation) {
		return geom.Vec{}
	}
	home := formation[unum-1]
	if id.Side() == world.SideRight {
		home = geom.Vec{X: -home.X, Y: -home.Y}
	}
	return home
}

// spawnTeams creates the ball and both teams at their home positions.
func (m *Match) spawnTeams() {
	n := min(m.cfg.Match.PlayersPerSide, len(formation))
	for _, side := range []world.Side{world.SideLeft, world.SideRight} {
		for unum := 1; unum <= n; unum++ {
			e := m.spawnPlayer(world.NewPlayerID(side, unum))
			if side == world.SideLeft && unum == m.cfg.Match.AgentUnum {
				m.agentEntity = e
			}
		}
	}

	pos := components.Position{}
	vel := components.Velocity{}
	ball := components.Ball{}
	obs := unseen()
	m.ballEntity = m.ballMapper.NewEntity(&pos, &vel, &ball, &obs)
}

// spawnPlayer creates one player entity. Player types are dealt round
// robin by uniform number.
func (m *Match) spawnPlayer(id world.PlayerID) ecs.Entity {
	typeID := m.cfg.PlayerTypes[(id.Unum()-1)%len(m.cfg.PlayerTypes)].ID
	pt := m.reg.Type(typeID)
	m.kickRadius = max(m.kickRadius, pt.KickableArea)

	home := HomePosition(id)
	body := components.Body{}
	if id.Side() == world.SideRight {
		body.Dir = 180
	}

	pos := components.Position{X: home.X, Y: home.Y}
	vel := components.Velocity{}
	st := components.Stamina{StaminaModel: physics.NewStaminaModel(pt)}
	pl := components.Player{
		ID:     id,
		TypeID: typeID,
		Roles:  traits.ForUnum(id.Unum()),
		Home:   home,
	}
	obs := unseen()
	cmd := components.Command{}
	return m.playerMapper.NewEntity(&pos, &vel, &body, &st, &pl, &obs, &cmd)
}

func unseen() components.Observation {
	return components.Observation{PosCount: unseenCount, VelCount: unseenCount, BodyCount: unseenCount}
}
