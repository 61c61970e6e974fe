// Package world defines the read-only kinematic snapshot the interception
// core consumes each cycle: the agent itself, the ball, every other
// player, the game mode and the physics model in force.
package world

import (
	"fmt"

	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
)

// Observation-age thresholds above which a position estimate is invalid.
const (
	SelfPosCountThr = 20
	BallPosCountThr = 10
)

// Side identifies a team.
type Side uint8

const (
	SideNeutral Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "neutral"
	}
}

// Opposite returns the other team's side.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideNeutral
	}
}

// PlayerID is a stable player identity built from side and uniform number.
type PlayerID int32

// NoPlayer is the zero identity.
const NoPlayer PlayerID = 0

// NewPlayerID returns the identity of the player wearing unum on side.
func NewPlayerID(side Side, unum int) PlayerID {
	return PlayerID(int(side)*100 + unum)
}

// Side returns the team of the player.
func (id PlayerID) Side() Side { return Side(id / 100) }

// Unum returns the uniform number of the player.
func (id PlayerID) Unum() int { return int(id % 100) }

func (id PlayerID) String() string {
	if id == NoPlayer {
		return "none"
	}
	return fmt.Sprintf("%s:%d", id.Side(), id.Unum())
}

// Time is a simulator timestamp. Stopped counts cycles elapsed while the
// game clock is halted.
type Time struct {
	Cycle   int64 `json:"cycle"`
	Stopped int64 `json:"stopped"`
}

// Before reports whether t happens strictly before o.
func (t Time) Before(o Time) bool {
	if t.Cycle != o.Cycle {
		return t.Cycle < o.Cycle
	}
	return t.Stopped < o.Stopped
}

func (t Time) String() string {
	return fmt.Sprintf("[%d,%d]", t.Cycle, t.Stopped)
}

// Self is the agent's own kinematic state.
type Self struct {
	ID       PlayerID             `json:"id"`
	Pos      geom.Vec             `json:"pos"`
	Vel      geom.Vec             `json:"vel"`
	Body     float64              `json:"body"`
	Stamina  physics.StaminaModel `json:"stamina"`
	TypeID   int                  `json:"type_id"`
	Type     *physics.PlayerType  `json:"-"`
	Goalie   bool                 `json:"goalie"`
	PosCount int                  `json:"pos_count"`
}

// Ball is the estimated ball state.
type Ball struct {
	Pos      geom.Vec `json:"pos"`
	Vel      geom.Vec `json:"vel"`
	PosCount int      `json:"pos_count"`
	VelCount int      `json:"vel_count"`
}

// Player is another player's estimated state. Counts are the cycles since
// the respective quantity was last observed.
type Player struct {
	ID           PlayerID            `json:"id"`
	Pos          geom.Vec            `json:"pos"`
	Vel          geom.Vec            `json:"vel"`
	Body         float64             `json:"body"`
	PosCount     int                 `json:"pos_count"`
	VelCount     int                 `json:"vel_count"`
	BodyCount    int                 `json:"body_count"`
	Goalie       bool                `json:"goalie"`
	TypeID       int                 `json:"type_id"`
	Type         *physics.PlayerType `json:"-"`
	DistFromBall float64             `json:"dist_from_ball"`
}

// Unum returns the player's uniform number.
func (p *Player) Unum() int { return p.ID.Unum() }

// Kickable reports whether the player is estimated to control the ball now.
func (p *Player) Kickable() bool {
	if p.Type == nil {
		return false
	}
	return p.PosCount <= 1 && p.DistFromBall <= p.Type.KickableArea
}

// State is one cycle's snapshot of the world model.
type State struct {
	Time      Time          `json:"time"`
	Mode      GameMode      `json:"mode"`
	OurSide   Side          `json:"our_side"`
	Model     physics.Model `json:"-"`
	Self      Self          `json:"self"`
	Ball      Ball          `json:"ball"`
	Teammates []Player      `json:"teammates"`
	Opponents []Player      `json:"opponents"`
}

// SelfPosValid reports whether the agent's own position can be trusted.
func (s *State) SelfPosValid() bool {
	return s.Self.PosCount < SelfPosCountThr
}

// BallPosValid reports whether the ball position can be trusted.
func (s *State) BallPosValid() bool {
	return s.Ball.PosCount < BallPosCountThr
}

// Teammate returns the teammate with the given uniform number, or nil.
func (s *State) Teammate(unum int) *Player {
	return findUnum(s.Teammates, unum)
}

// Opponent returns the opponent with the given uniform number, or nil.
func (s *State) Opponent(unum int) *Player {
	return findUnum(s.Opponents, unum)
}

// Player returns the teammate or opponent with the given identity, or nil.
func (s *State) Player(id PlayerID) *Player {
	for i := range s.Teammates {
		if s.Teammates[i].ID == id {
			return &s.Teammates[i]
		}
	}
	for i := range s.Opponents {
		if s.Opponents[i].ID == id {
			return &s.Opponents[i]
		}
	}
	return nil
}

// KickableOpponent returns the opponent closest to the ball among those
// able to kick it, or nil.
func (s *State) KickableOpponent() *Player {
	return closestKickable(s.Opponents)
}

// KickableTeammate returns the teammate closest to the ball among those
// able to kick it, or nil.
func (s *State) KickableTeammate() *Player {
	return closestKickable(s.Teammates)
}

// UpdateDistances recomputes every player's distance to the ball.
func (s *State) UpdateDistances() {
	for i := range s.Teammates {
		s.Teammates[i].DistFromBall = geom.Dist(s.Teammates[i].Pos, s.Ball.Pos)
	}
	for i := range s.Opponents {
		s.Opponents[i].DistFromBall = geom.Dist(s.Opponents[i].Pos, s.Ball.Pos)
	}
}

// Resolve relinks the physics model and player types after the state was
// decoded from a serialized form.
func (s *State) Resolve(reg *physics.Registry) {
	s.Model = reg.Model
	s.Self.Type = reg.Type(s.Self.TypeID)
	for i := range s.Teammates {
		s.Teammates[i].Type = reg.Type(s.Teammates[i].TypeID)
	}
	for i := range s.Opponents {
		s.Opponents[i].Type = reg.Type(s.Opponents[i].TypeID)
	}
}

// Clone returns a deep copy of the snapshot.
func (s *State) Clone() *State {
	out := *s
	out.Teammates = append([]Player(nil), s.Teammates...)
	out.Opponents = append([]Player(nil), s.Opponents...)
	return &out
}

func findUnum(players []Player, unum int) *Player {
	for i := range players {
		if players[i].Unum() == unum {
			return &players[i]
		}
	}
	return nil
}

func closestKickable(players []Player) *Player {
	var best *Player
	for i := range players {
		p := &players[i]
		if !p.Kickable() {
			continue
		}
		if best == nil || p.DistFromBall < best.DistFromBall {
			best = p
		}
	}
	return best
}
