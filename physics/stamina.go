package physics

import "math"

// StaminaModel tracks a player's stamina, effort, recovery and remaining
// stamina capacity. It is a value type: simulations copy it freely.
type StaminaModel struct {
	Stamina  float64 `json:"stamina"`
	Effort   float64 `json:"effort"`
	Recovery float64 `json:"recovery"`
	Capacity float64 `json:"capacity"`
}

// NewStaminaModel returns a fully rested stamina model for pt.
func NewStaminaModel(pt *PlayerType) StaminaModel {
	return StaminaModel{
		Stamina:  pt.sp.StaminaMax,
		Effort:   pt.EffortMax,
		Recovery: 1.0,
		Capacity: pt.sp.StaminaCapacity,
	}
}

// CapacityIsEmpty reports whether the stamina capacity has run out.
// Always false when the server disables the capacity.
func (m StaminaModel) CapacityIsEmpty(pt *PlayerType) bool {
	return pt.sp.StaminaCapacity >= 0 && m.Capacity <= 1e-5
}

// SimulateWait advances the model by one cycle without dashing.
func (m *StaminaModel) SimulateWait(pt *PlayerType) {
	sp := pt.sp

	if m.Stamina <= sp.RecoverDecThrValue && m.Recovery > sp.RecoverMin {
		m.Recovery = math.Max(sp.RecoverMin, m.Recovery-sp.RecoverDec)
	}

	if m.Stamina <= sp.EffortDecThrValue && m.Effort > pt.EffortMin {
		m.Effort = math.Max(pt.EffortMin, m.Effort-sp.EffortDec)
	}
	if m.Stamina >= sp.EffortIncThrValue && m.Effort < pt.EffortMax {
		m.Effort = math.Min(pt.EffortMax, m.Effort+sp.EffortInc)
	}

	inc := math.Min(pt.StaminaIncMax*m.Recovery, sp.StaminaMax-m.Stamina)
	if inc < 0 {
		inc = 0
	}
	if sp.StaminaCapacity >= 0 {
		m.Stamina += math.Min(inc, m.Capacity)
		m.Capacity = math.Max(0, m.Capacity-inc)
	} else {
		m.Stamina += inc
	}
	m.Stamina = math.Min(m.Stamina, sp.StaminaMax)
}

// SimulateWaits advances the model by n idle cycles.
func (m *StaminaModel) SimulateWaits(pt *PlayerType, n int) {
	for i := 0; i < n; i++ {
		m.SimulateWait(pt)
	}
}

// SimulateDash advances the model by one cycle with a dash of the given
// power. Backward dashes consume double stamina.
func (m *StaminaModel) SimulateDash(pt *PlayerType, power float64) {
	m.Stamina -= consumption(power)
	if m.Stamina < 0 {
		m.Stamina = 0
	}
	m.SimulateWait(pt)
}

// SafeDashPower limits power so that stamina stays above the recovery
// decay threshold plus buf. With an empty capacity only the extra stamina
// may be spent.
func (m StaminaModel) SafeDashPower(pt *PlayerType, power, buf float64) float64 {
	threshold := pt.sp.RecoverDecThrValue + math.Max(buf, 1.0)
	if m.CapacityIsEmpty(pt) {
		threshold = -pt.ExtraStamina
	}
	return m.limitPower(pt, power, threshold)
}

// AvailableDashPower limits power only by the stamina left plus the extra
// stamina, allowing the recovery to degrade.
func (m StaminaModel) AvailableDashPower(pt *PlayerType, power float64) float64 {
	return m.limitPower(pt, power, -pt.ExtraStamina)
}

func (m StaminaModel) limitPower(pt *PlayerType, power, threshold float64) float64 {
	power = pt.sp.NormalizeDashPower(power)
	available := math.Max(0, m.Stamina-threshold)
	if available < consumption(power) {
		if power > 0 {
			return available
		}
		return available * -0.5
	}
	return power
}

func consumption(power float64) float64 {
	if power >= 0 {
		return power
	}
	return power * -2.0
}
