// Package traits defines player roles and characteristics.
package traits

// Role is a set of player role flags.
type Role uint32

const (
	// Side membership relative to the agent
	Teammate Role = 1 << iota
	Opponent

	// Position on the pitch
	Goalie
	Defender
	Midfielder
	Forward

	// The agent's own player
	Self
)

// Has checks if a role set contains a role.
func (r Role) Has(other Role) bool {
	return r&other != 0
}

// Add adds a role to the set.
func (r Role) Add(other Role) Role {
	return r | other
}

// Remove removes a role from the set.
func (r Role) Remove(other Role) Role {
	return r &^ other
}

// IsGoalie checks if the role set marks a goalkeeper.
func IsGoalie(r Role) bool {
	return r.Has(Goalie)
}

// IsFieldPlayer checks if the role set marks an outfield player.
func IsFieldPlayer(r Role) bool {
	return r.Has(Defender) || r.Has(Midfielder) || r.Has(Forward)
}

// ForUnum returns the positional role of a uniform number in a 4-4-2 line-up.
func ForUnum(unum int) Role {
	switch {
	case unum == 1:
		return Goalie
	case unum <= 5:
		return Defender
	case unum <= 9:
		return Midfielder
	default:
		return Forward
	}
}

// PositionalRoles are the mutually exclusive on-pitch roles.
var PositionalRoles = Goalie | Defender | Midfielder | Forward
