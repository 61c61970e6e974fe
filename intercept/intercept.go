// Package intercept predicts when and how players can first bring the
// ball under control. SelfSimulator forward-simulates the agent's own
// turn and dash sequences, PlayerPredictor gives a lighter straight-line
// estimate for everyone else, and Table folds both into a per-cycle
// summary for the decision layer.
package intercept

import (
	"fmt"
	"math"

	"github.com/pthm-cable/striker/geom"
)

// StaminaType classifies whether a plan keeps the stamina recovery intact.
type StaminaType uint8

const (
	Normal StaminaType = iota
	Exhaust
)

func (s StaminaType) String() string {
	if s == Exhaust {
		return "exhaust"
	}
	return "normal"
}

// ActionType tags the dash-direction mode of a plan.
type ActionType uint8

const (
	OmniDash ActionType = iota
	TurnForwardDash
	TurnBackDash
)

func (a ActionType) String() string {
	switch a {
	case TurnForwardDash:
		return "turn_forward_dash"
	case TurnBackDash:
		return "turn_back_dash"
	default:
		return "omni_dash"
	}
}

// Intercept is one candidate plan for reaching the ball.
type Intercept struct {
	StaminaType      StaminaType `json:"stamina_type"`
	ActionType       ActionType  `json:"action_type"`
	TurnCycles       int         `json:"turn_cycles"`
	DashCycles       int         `json:"dash_cycles"`
	FirstDashPower   float64     `json:"first_dash_power"`
	FirstDashDir     float64     `json:"first_dash_dir"`
	PredictedPos     geom.Vec    `json:"predicted_pos"`
	BallDist         float64     `json:"ball_dist"`
	RemainingStamina float64     `json:"remaining_stamina"`
}

// ReachCycles is the total number of cycles until the ball is under control.
func (i Intercept) ReachCycles() int { return i.TurnCycles + i.DashCycles }

// Valid reports whether i describes a physically meaningful plan.
func (i Intercept) Valid() bool {
	return i.TurnCycles >= 0 && i.DashCycles >= 0 &&
		i.BallDist >= 0 && !math.IsNaN(i.BallDist) &&
		!math.IsNaN(i.PredictedPos.X) && !math.IsNaN(i.PredictedPos.Y)
}

func (i Intercept) String() string {
	return fmt.Sprintf("%s/%s turn=%d dash=%d power=%.1f dir=%.1f dist=%.3f stamina=%.1f",
		i.ActionType, i.StaminaType, i.TurnCycles, i.DashCycles,
		i.FirstDashPower, i.FirstDashDir, i.BallDist, i.RemainingStamina)
}
