package intercept

import (
	"math"
	"slices"
)

// Less orders candidates by reach cycles, then turn cycles. Candidates
// tied on both prefer the closer ball when their remaining stamina
// differs by less than staminaTieThr, and the larger stamina otherwise.
func Less(a, b Intercept, staminaTieThr float64) bool {
	if a.ReachCycles() != b.ReachCycles() {
		return a.ReachCycles() < b.ReachCycles()
	}
	if a.TurnCycles != b.TurnCycles {
		return a.TurnCycles < b.TurnCycles
	}
	if math.Abs(a.RemainingStamina-b.RemainingStamina) < staminaTieThr {
		return a.BallDist < b.BallDist
	}
	return a.RemainingStamina > b.RemainingStamina
}

// Equivalent reports whether two candidates describe the same action
// sequence shape.
func Equivalent(a, b Intercept) bool {
	return a.ActionType == b.ActionType &&
		a.TurnCycles == b.TurnCycles &&
		a.DashCycles == b.DashCycles
}

// SortAndDedupe sorts list in place and drops every candidate equivalent
// to a better-ranked one. The returned slice aliases list.
func SortAndDedupe(list []Intercept, staminaTieThr float64) []Intercept {
	slices.SortStableFunc(list, func(a, b Intercept) int {
		switch {
		case Less(a, b, staminaTieThr):
			return -1
		case Less(b, a, staminaTieThr):
			return 1
		}
		return 0
	})

	out := list[:0]
	for _, c := range list {
		dup := false
		for _, kept := range out {
			if Equivalent(kept, c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// BestOf returns the first candidate of the given stamina class in a
// sorted list.
func BestOf(list []Intercept, st StaminaType) (Intercept, bool) {
	for _, c := range list {
		if c.StaminaType == st {
			return c, true
		}
	}
	return Intercept{}, false
}
