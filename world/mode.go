package world

// GameMode is the referee's current play mode.
type GameMode uint8

const (
	BeforeKickOff GameMode = iota
	TimeOver
	PlayOn
	KickOff
	KickIn
	FreeKick
	CornerKick
	GoalKick
	GoalieCatch
	Offside
	PenaltyTaken
)

var modeNames = [...]string{
	BeforeKickOff: "before_kick_off",
	TimeOver:      "time_over",
	PlayOn:        "play_on",
	KickOff:       "kick_off",
	KickIn:        "kick_in",
	FreeKick:      "free_kick",
	CornerKick:    "corner_kick",
	GoalKick:      "goal_kick",
	GoalieCatch:   "goalie_catch",
	Offside:       "offside",
	PenaltyTaken:  "penalty_taken",
}

func (m GameMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// IsTerminalOrPreKickOff reports whether no interception is meaningful in
// this mode.
func (m GameMode) IsTerminalOrPreKickOff() bool {
	return m == BeforeKickOff || m == TimeOver
}

// AllowsGoalieCatch reports whether a goalie may catch the ball in this mode.
func (m GameMode) AllowsGoalieCatch() bool {
	return m == PlayOn || m == PenaltyTaken
}

// IsSetPiece reports whether play is stopped for a restart.
func (m GameMode) IsSetPiece() bool {
	switch m {
	case KickOff, KickIn, FreeKick, CornerKick, GoalKick, GoalieCatch, Offside:
		return true
	}
	return false
}
