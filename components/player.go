package components

import (
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/traits"
	"github.com/pthm-cable/striker/world"
)

// Player holds the identity of a player entity.
type Player struct {
	ID     world.PlayerID
	TypeID int
	Roles  traits.Role
	Home   geom.Vec // formation position in pitch coordinates
}

// Goalie reports whether the player keeps goal.
func (p *Player) Goalie() bool { return traits.IsGoalie(p.Roles) }

// Stamina wraps the player's stamina model.
type Stamina struct {
	physics.StaminaModel
}

// Observation is the agent's knowledge of an entity: the last observed
// state and the cycles since each part was seen.
type Observation struct {
	Seen      bool
	Pos       geom.Vec
	Vel       geom.Vec
	Body      float64
	PosCount  int
	VelCount  int
	BodyCount int
}

// See records a sighting. Parts that were not seen age by one cycle.
func (o *Observation) See(pos, vel geom.Vec, body float64, withVel, withBody bool) {
	o.Seen = true
	o.Pos = pos
	o.PosCount = 0
	if withVel {
		o.Vel = vel
		o.VelCount = 0
	} else {
		o.VelCount++
	}
	if withBody {
		o.Body = body
		o.BodyCount = 0
	} else {
		o.BodyCount++
	}
}

// Age marks one more cycle without a sighting.
func (o *Observation) Age() {
	o.PosCount++
	o.VelCount++
	o.BodyCount++
}

// Ball marks the ball entity and tracks who touched it last.
type Ball struct {
	LastKicker world.PlayerID
	KickCycle  int64
	Holder     world.PlayerID // goalie holding the ball after a catch
}

// CommandKind enumerates body commands.
type CommandKind uint8

const (
	CmdNone CommandKind = iota
	CmdTurn
	CmdDash
	CmdKick
	CmdCatch
)

func (k CommandKind) String() string {
	switch k {
	case CmdTurn:
		return "turn"
	case CmdDash:
		return "dash"
	case CmdKick:
		return "kick"
	case CmdCatch:
		return "catch"
	default:
		return "none"
	}
}

// Command is the body command a player issues this cycle.
type Command struct {
	Kind  CommandKind
	Power float64 // dash or kick power
	Dir   float64 // turn moment, or dash/kick direction relative to the body
}
