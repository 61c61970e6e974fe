package physics

import (
	"math"
	"testing"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return NewRegistry(cfg)
}

func TestDashDirRate_Standard(t *testing.T) {
	r := testRegistry(t)
	m := r.Model

	if got := m.DashDirRate(0); math.Abs(got-1) > 1e-9 {
		t.Errorf("forward dash rate = %v, want 1", got)
	}
	if got := m.DashDirRate(90); math.Abs(got-r.Params.SideDashRate) > 1e-9 {
		t.Errorf("side dash rate = %v, want %v", got, r.Params.SideDashRate)
	}
	if got := m.DashDirRate(180); math.Abs(got-r.Params.BackDashRate) > 1e-9 {
		t.Errorf("back dash rate = %v, want %v", got, r.Params.BackDashRate)
	}
	if m.DashDirRate(45) <= m.DashDirRate(90) {
		t.Error("diagonal dash should be more efficient than a side dash")
	}
	if !m.OmniDash() {
		t.Error("standard model should allow omni dash")
	}
}

func TestDashDirRate_Legacy(t *testing.T) {
	r := testRegistry(t)
	m := NewLegacy(r.Params)

	if m.DashDirRate(0) != 1 || m.DashDirRate(180) != 1 {
		t.Error("legacy model should dash forward and backward at full rate")
	}
	if m.DashDirRate(90) != 0 || m.DashDirRate(-45) != 0 {
		t.Error("legacy model should disable side dashes")
	}
}

func TestDiscretizeDashAngle(t *testing.T) {
	r := testRegistry(t)
	sp := r.Params
	cases := []struct{ in, want float64 }{
		{0, 0}, {20, 0}, {23, 45}, {-100, -90}, {170, 180}, {-170, 180},
	}
	for _, tc := range cases {
		if got := sp.DiscretizeDashAngle(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("DiscretizeDashAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDashAccel_BackwardPower(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)

	fwd := DashAccel(r.Model, pt, 1, 100, 0, 0)
	back := DashAccel(r.Model, pt, 1, -100, 0, 0)

	if fwd.X <= 0 {
		t.Errorf("forward dash should accelerate along +x, got %v", fwd)
	}
	if back.X >= 0 {
		t.Errorf("negative power should accelerate along -x, got %v", back)
	}
	if math.Abs(-back.X-fwd.X*r.Params.BackDashRate) > 1e-9 {
		t.Errorf("back dash accel = %v, want %v", -back.X, fwd.X*r.Params.BackDashRate)
	}
}

func TestPlayerType_DashTable(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)

	if pt.DashDistance(0) != 0 {
		t.Error("zero dashes should cover no distance")
	}
	prev := 0.0
	for n := 1; n < 20; n++ {
		d := pt.DashDistance(n)
		if d <= prev {
			t.Fatalf("dash distance must grow: n=%d d=%v prev=%v", n, d, prev)
		}
		if d-prev > pt.PlayerSpeedMax+1e-9 {
			t.Fatalf("per-cycle gain %v exceeds max speed", d-prev)
		}
		prev = d
	}

	for _, dist := range []float64{0.5, 3, 10, 40} {
		n := pt.CyclesToReachDistance(dist)
		if pt.DashDistance(n) < dist {
			t.Errorf("CyclesToReachDistance(%v) = %d covers only %v", dist, n, pt.DashDistance(n))
		}
		if n > 0 && pt.DashDistance(n-1) >= dist {
			t.Errorf("CyclesToReachDistance(%v) = %d is not minimal", dist, n)
		}
	}

	if pt.CyclesToReachDistance(-1) != 0 {
		t.Error("non-positive distance needs no dashes")
	}
	if pt.CyclesToReachDistance(1e4) <= 100 {
		t.Error("distances beyond the table should extrapolate")
	}
}

func TestPlayerType_KickableArea(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)
	want := 0.3 + 0.7 + 0.085
	if math.Abs(pt.KickableArea-want) > 1e-9 {
		t.Errorf("KickableArea = %v, want %v", pt.KickableArea, want)
	}
	if pt.CatchableArea <= pt.KickableArea {
		t.Error("catchable area should exceed kickable area")
	}
	if r.Type(99) != r.Type(0) {
		t.Error("unknown type ids should fall back to the default type")
	}
}

func TestKickRate(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)

	near := pt.KickRate(pt.PlayerSize+r.Params.BallSize, 0)
	if math.Abs(near-pt.KickPowerRate) > 1e-9 {
		t.Errorf("touching ball in front should give full kick rate, got %v", near)
	}
	far := pt.KickRate(pt.KickableArea, 180)
	if far >= near {
		t.Error("kick rate should drop with distance and angle")
	}
}

func TestStamina_DashConsumes(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)
	m := NewStaminaModel(pt)

	m.SimulateDash(pt, 100)
	want := r.Params.StaminaMax - 100 + pt.StaminaIncMax
	if math.Abs(m.Stamina-math.Min(want, r.Params.StaminaMax)) > 1e-9 {
		t.Errorf("stamina after dash = %v, want %v", m.Stamina, want)
	}

	back := NewStaminaModel(pt)
	back.SimulateDash(pt, -50)
	if math.Abs(back.Stamina-m.Stamina) > 1e-9 {
		t.Errorf("backward dash of 50 should cost like forward 100: %v vs %v", back.Stamina, m.Stamina)
	}
}

func TestStamina_RecoveryDecays(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)
	m := NewStaminaModel(pt)
	m.Stamina = r.Params.RecoverDecThrValue - 1

	m.SimulateWait(pt)
	if m.Recovery >= 1 {
		t.Errorf("recovery should degrade below threshold, got %v", m.Recovery)
	}
}

func TestStamina_SafeDashPower(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)
	m := NewStaminaModel(pt)

	if got := m.SafeDashPower(pt, 100, 1); got != 100 {
		t.Errorf("rested player should dash at full power, got %v", got)
	}

	m.Stamina = r.Params.RecoverDecThrValue + 20
	safe := m.SafeDashPower(pt, 100, 1)
	if safe >= 100 || safe <= 0 {
		t.Errorf("tired player safe power = %v, want in (0,100)", safe)
	}
	after := m
	after.SimulateDash(pt, safe)
	if after.Recovery < 1 {
		t.Errorf("safe dash must not degrade recovery, got %v", after.Recovery)
	}

	if avail := m.AvailableDashPower(pt, 100); avail != 100 {
		t.Errorf("available power = %v, want 100", avail)
	}

	back := m.SafeDashPower(pt, -100, 1)
	if back >= 0 || back < -100 {
		t.Errorf("safe backward power = %v, want negative", back)
	}
}

func TestStamina_CapacityEmpty(t *testing.T) {
	r := testRegistry(t)
	pt := r.Type(0)
	m := NewStaminaModel(pt)
	m.Capacity = 0
	m.Stamina = 100

	if !m.CapacityIsEmpty(pt) {
		t.Fatal("capacity should be empty")
	}
	before := m.Stamina
	m.SimulateWait(pt)
	if m.Stamina != before {
		t.Errorf("stamina should not recover without capacity: %v -> %v", before, m.Stamina)
	}
	if got := m.SafeDashPower(pt, 500, 1); got > m.Stamina+pt.ExtraStamina+1e-9 {
		t.Errorf("empty capacity safe power %v exceeds stamina + extra", got)
	}
}

func TestPenaltyArea(t *testing.T) {
	r := testRegistry(t)
	sp := r.Params
	if !sp.InOurPenaltyArea(geom.Vec{X: -50, Y: 0}, 0) {
		t.Error("(-50,0) should be inside our penalty area")
	}
	if sp.InOurPenaltyArea(geom.Vec{X: 0, Y: 0}, 0) {
		t.Error("centre spot should be outside our penalty area")
	}
	if !sp.InTheirPenaltyArea(geom.Vec{X: 50, Y: 5}, 0) {
		t.Error("(50,5) should be inside their penalty area")
	}
	if !sp.OutOfPitch(geom.Vec{X: 60}, 0) || sp.OutOfPitch(geom.Vec{X: 50}, 0) {
		t.Error("OutOfPitch misclassified positions")
	}
}
