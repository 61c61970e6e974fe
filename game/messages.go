package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/systems"
	"github.com/pthm-cable/striker/telemetry"
	"github.com/pthm-cable/striker/world"
)

// message is an intercept report said by a teammate: the reach step of
// the subject as the sender estimated it in the given cycle.
type message struct {
	cycle  int64
	sender world.PlayerID
	about  world.PlayerID
	step   int
}

// updateGrid rebuilds the spatial index of player positions.
func (m *Match) updateGrid() {
	m.grid.Clear()
	query := m.players.Query()
	for query.Next() {
		pos, _, _, _, _, _, _ := query.Get()
		m.grid.Insert(query.Entity(), pos.Vec())
	}
}

// deliverMessages hands last cycle's reports to the table. Steps are
// reduced by the cycles that passed since they were said.
func (m *Match) deliverMessages(cycle int64) {
	for _, msg := range m.inbox {
		step := max(msg.step-int(cycle-msg.cycle), 0)

		var applied bool
		if msg.about.Side() == m.state.OurSide {
			applied = m.table.HearTeammate(m.state, msg.about.Unum(), step)
		} else {
			applied = m.table.HearOpponent(m.state, msg.about.Unum(), step)
		}
		if !applied {
			continue
		}
		m.collector.Record(telemetry.NewHeardOverrideEvent(cycle, msg.about, step))
		m.logger.Debug("heard intercept", "cycle", cycle, "sender", msg.sender, "player", msg.about, "step", step)
	}
}

// composeMessages lets the teammate closest to the ball report its own
// reach step and that of the closest opponent, estimated from the true
// state. Reports are said every SayInterval cycles.
func (m *Match) composeMessages(cycle int64, dst []message) []message {
	interval := int64(m.cfg.Match.SayInterval)
	if interval <= 0 || cycle%interval != 0 || m.referee.Mode.IsTerminalOrPreKickOff() {
		return dst
	}

	ballPos := m.posMap.Get(m.ballEntity).Vec()
	m.neighbors = m.grid.QueryRadiusInto(m.neighbors[:0], ballPos, m.cfg.Match.VisibleDist, m.ballEntity, m.posMap)

	var mates, opps []systems.Neighbor
	for _, n := range m.neighbors {
		pl := m.playerMap.Get(n.E)
		switch {
		case pl.ID == m.agent:
		case pl.ID.Side() == world.SideLeft:
			mates = append(mates, n)
		default:
			opps = append(opps, n)
		}
	}
	sender, ok := systems.Nearest(mates)
	if !ok {
		return dst
	}

	truth := m.trueView(sender.E)
	cache := intercept.NewBallCache(truth, m.cfg.Table)
	senderID := m.playerMap.Get(sender.E).ID

	dst = append(dst, message{
		cycle:  cycle,
		sender: senderID,
		about:  senderID,
		step:   m.predictTrue(truth, sender.E, cache, true),
	})
	if opp, ok := systems.Nearest(opps); ok {
		dst = append(dst, message{
			cycle:  cycle,
			sender: senderID,
			about:  m.playerMap.Get(opp.E).ID,
			step:   m.predictTrue(truth, opp.E, cache, false),
		})
	}
	return dst
}

// trueView builds the exact world around the ball as seen by observer.
// Only the fields the player predictor reads are filled.
func (m *Match) trueView(observer ecs.Entity) *world.State {
	pl := m.playerMap.Get(observer)
	return &world.State{
		Time:    m.referee.Time,
		Mode:    m.referee.Mode,
		OurSide: world.SideLeft,
		Model:   m.reg.Model,
		Self:    world.Self{ID: pl.ID, Pos: m.posMap.Get(observer).Vec()},
		Ball: world.Ball{
			Pos: m.posMap.Get(m.ballEntity).Vec(),
			Vel: m.velMap.Get(m.ballEntity).Vec(),
		},
	}
}

func (m *Match) predictTrue(truth *world.State, e ecs.Entity, cache *intercept.BallCache, teammate bool) int {
	pl := m.playerMap.Get(e)
	p := world.Player{
		ID:     pl.ID,
		Pos:    m.posMap.Get(e).Vec(),
		Vel:    m.velMap.Get(e).Vec(),
		Body:   m.bodyMap.Get(e).Dir,
		Goalie: pl.Goalie(),
		TypeID: pl.TypeID,
		Type:   m.reg.Type(pl.TypeID),
	}
	p.DistFromBall = geom.Dist(p.Pos, truth.Ball.Pos)
	return m.predictor.Predict(truth, &p, cache, teammate)
}

// controller returns the player controlling the ball: the goalie holding
// it, or the closest player within its kickable area.
func (m *Match) controller() world.PlayerID {
	if holder := m.ballMap.Get(m.ballEntity).Holder; holder != world.NoPlayer {
		return holder
	}

	ballPos := m.posMap.Get(m.ballEntity).Vec()
	m.neighbors = m.grid.QueryRadiusInto(m.neighbors[:0], ballPos, m.kickRadius, m.ballEntity, m.posMap)

	best := world.NoPlayer
	bestDist := math.Inf(1)
	for _, n := range m.neighbors {
		pl := m.playerMap.Get(n.E)
		dist := math.Sqrt(n.DistSq)
		if dist > m.reg.Type(pl.TypeID).KickableArea || dist >= bestDist {
			continue
		}
		best, bestDist = pl.ID, dist
	}
	return best
}

// trackPossession closes the agent's chase when somebody gains the ball.
func (m *Match) trackPossession(cycle int64) {
	owner := m.controller()
	prev := m.owner
	m.owner = owner
	if owner == prev || owner == world.NoPlayer {
		return
	}

	if owner == m.agent {
		m.collector.Record(telemetry.NewBallControlEvent(cycle, m.agent))
		return
	}
	if m.collector.Chasing() {
		m.collector.Record(telemetry.NewChaseAbortEvent(cycle, m.agent))
		m.logger.Debug("chase lost", "cycle", cycle, "owner", owner)
	}
}
