package intercept

import (
	"math"
	"reflect"
	"testing"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/world"
)

func TestSimulate_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		legacy  bool
		body    float64
		ball    geom.Vec
		ballVel geom.Vec
		goalie  bool
	}{
		{name: "ball ahead at rest", ball: geom.Vec{X: 6}},
		{name: "ball behind", ball: geom.Vec{X: -3}},
		{name: "ball to the side", ball: geom.Vec{Y: 4}, body: 0},
		{name: "ball crossing", ball: geom.Vec{X: 8, Y: -6}, ballVel: geom.Vec{Y: 1.2}},
		{name: "ball incoming", ball: geom.Vec{X: 15, Y: 2}, ballVel: geom.Vec{X: -2}},
		{name: "far ball", ball: geom.Vec{X: 40, Y: 25}},
		{name: "legacy model", legacy: true, ball: geom.Vec{X: 5, Y: 5}, ballVel: geom.Vec{X: 0.5}},
		{name: "legacy behind", legacy: true, ball: geom.Vec{X: -2, Y: 0.5}},
		{name: "goalie", goalie: true, ball: geom.Vec{X: 6, Y: 3}, ballVel: geom.Vec{X: -1.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) {
				if tc.legacy {
					c.Server.PhysicsModel = "legacy"
				}
			})
			self := geom.Vec{}
			ball := tc.ball
			if tc.goalie {
				self = geom.Vec{X: -48}
				ball = geom.Vec{X: -48 + tc.ball.X, Y: tc.ball.Y}
			}
			ws := f.state(self, ball, tc.ballVel)
			ws.Self.Body = tc.body
			ws.Self.Goalie = tc.goalie

			list, _ := f.simulate(ws)
			checkCandidates(t, list)
		})
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{X: 1, Y: -2}, geom.Vec{X: 10, Y: 3}, geom.Vec{X: -0.8, Y: 0.4})
	ws.Self.Body = 30

	a, _ := f.simulate(ws)
	b, _ := f.simulate(ws)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different candidates:\n%v\n%v", a, b)
	}
}

func TestSimulate_NoDashDominates(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: 0.3}, geom.Vec{X: 0.3})

	list, _ := f.simulate(ws)
	checkCandidates(t, list)
	best := list[0]
	if best.TurnCycles != 1 || best.DashCycles != 0 {
		t.Errorf("best = %v, want turn=1 dash=0", best)
	}
	if len(list) != 1 {
		t.Errorf("no-dash should be the only candidate, got %d", len(list))
	}
}

func TestSimulate_BallClosingIn(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Server.BallDecay = 0.9
		// Kickable radius of exactly 1.0.
		c.PlayerTypes[0].KickableMargin = 1.0 - c.PlayerTypes[0].PlayerSize - c.Server.BallSize
	})
	ws := f.state(geom.Vec{}, geom.Vec{X: 2}, geom.Vec{X: -1})

	list, _ := f.simulate(ws)
	checkCandidates(t, list)
	if got := list[0].ReachCycles(); got > 2 {
		t.Errorf("best reach = %d, want <= 2 (best %v)", got, list[0])
	}
}

func TestSimulate_UnreachableFallsBack(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{X: -40}, geom.Vec{X: 30}, geom.Vec{X: 2.7})

	list, cache := f.simulate(ws)
	checkCandidates(t, list)
	best := list[0]
	if best.ReachCycles() > f.cfg.Table.MaxCycle {
		t.Errorf("fallback reach %d exceeds horizon %d", best.ReachCycles(), f.cfg.Table.MaxCycle)
	}
	if best.ReachCycles() < cache.MaxStep() {
		t.Errorf("fallback reach %d shorter than simulated horizon %d", best.ReachCycles(), cache.MaxStep())
	}
	if best.StaminaType != Normal {
		t.Errorf("fallback should be a normal candidate, got %v", best.StaminaType)
	}
}

func TestSimulate_OpponentKickableFreezesBall(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: 5}, geom.Vec{X: 2})
	ws.Opponents = []world.Player{f.player(world.SideRight, 9, geom.Vec{X: 5.5})}

	_, cache := f.simulate(ws)
	if v := cache.Vel(); v.X != 0 || v.Y != 0 {
		t.Errorf("ball velocity = %v, want zero while an opponent can kick", v)
	}
	if p := cache.Pos(10); p != ws.Ball.Pos {
		t.Errorf("frozen ball moved to %v", p)
	}
}

func TestSimulate_TiredPlayerHasExhaustPlans(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: 8}, geom.Vec{})
	ws.Self.Stamina.Stamina = f.reg.Params.RecoverDecThrValue + 5

	list, _ := f.simulate(ws)
	checkCandidates(t, list)

	normal, ok := BestOf(list, Normal)
	if !ok {
		t.Fatal("expected a normal candidate")
	}
	exhaust, ok := BestOf(list, Exhaust)
	if !ok {
		t.Fatal("expected an exhaust candidate for a tired player")
	}
	if exhaust.ReachCycles() >= normal.ReachCycles() {
		t.Errorf("exhaust reach %d should beat normal reach %d", exhaust.ReachCycles(), normal.ReachCycles())
	}
	if exhaust.RemainingStamina >= normal.RemainingStamina {
		t.Errorf("exhaust plan should spend more stamina: %v vs %v", exhaust.RemainingStamina, normal.RemainingStamina)
	}
}

func TestSimulate_EmptyCapacityNeverRecovers(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: 8}, geom.Vec{})
	ws.Self.Stamina.Stamina = f.reg.Params.RecoverDecThrValue + 5
	ws.Self.Stamina.Capacity = 0

	list, _ := f.simulate(ws)
	checkCandidates(t, list)
	for _, c := range list {
		if c.RemainingStamina > ws.Self.Stamina.Stamina+1e-9 {
			t.Errorf("stamina recovered without capacity: %v", c)
		}
	}
}

func TestSimulate_BackDashForBallBehind(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: -2.5}, geom.Vec{})

	list, _ := f.simulate(ws)
	checkCandidates(t, list)
	found := false
	for _, c := range list {
		if c.ActionType == TurnBackDash && c.TurnCycles == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a back dash without turning, got %v", list)
	}
}

func TestSimulateNoDash_KickMustStopBall(t *testing.T) {
	tests := []struct {
		name    string
		self    geom.Vec
		ball    geom.Vec
		ballVel geom.Vec
		goalie  bool
		want    bool
	}{
		// Next cycle the ball passes 0.5 m ahead, faster than a full kick can absorb.
		{name: "fast ball", ball: geom.Vec{X: -2.1}, ballVel: geom.Vec{X: 2.6}, want: false},
		{name: "slow ball", ball: geom.Vec{X: -0.5}, ballVel: geom.Vec{X: 1.0}, want: true},
		{name: "resting ball", ball: geom.Vec{X: 0.6}, want: true},
		{name: "goalie catches fast ball", self: geom.Vec{X: -45}, ball: geom.Vec{X: -47.1}, ballVel: geom.Vec{X: 2.6}, goalie: true, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ws := f.state(tc.self, tc.ball, tc.ballVel)
			ws.Self.Goalie = tc.goalie

			_, ok := f.context(ws).simulateNoDash()
			if ok != tc.want {
				t.Fatalf("simulateNoDash ok = %v, want %v", ok, tc.want)
			}

			list, _ := f.simulate(ws)
			checkCandidates(t, list)
			idle := list[0].TurnCycles == 1 && list[0].DashCycles == 0 && len(list) == 1
			if idle != tc.want {
				t.Errorf("best = %v (len %d), idle plan expected %v", list[0], len(list), tc.want)
			}
		})
	}
}

func TestSimulate_GoalieCatchRadius(t *testing.T) {
	f := newFixture(t, nil)
	pt := f.reg.Type(0)
	// 1.1 m is beyond the kickable reach but inside the catchable one.
	dist := 1.1
	if dist <= pt.KickableArea-f.cfg.Intercept.ControlAreaBuf || dist >= pt.CatchableArea-f.cfg.Intercept.ControlAreaBuf {
		t.Fatalf("scenario distance %v does not separate kickable %v and catchable %v", dist, pt.KickableArea, pt.CatchableArea)
	}

	for _, goalie := range []bool{false, true} {
		ws := f.state(geom.Vec{X: -45}, geom.Vec{X: -45 + dist}, geom.Vec{})
		ws.Self.Goalie = goalie

		c := f.context(ws)
		want := pt.KickableArea
		if goalie {
			want = pt.CatchableArea
		}
		if got := c.controlArea(ws.Ball.Pos); got != want {
			t.Errorf("goalie=%v: control area %v, want %v", goalie, got, want)
		}

		list, _ := f.simulate(ws)
		checkCandidates(t, list)
		idle := list[0].DashCycles == 0
		if idle != goalie {
			t.Errorf("goalie=%v: best = %v", goalie, list[0])
		}
	}

	// Outside open play the goalie only has its kickable area.
	ws := f.state(geom.Vec{X: -45}, geom.Vec{X: -45 + dist}, geom.Vec{})
	ws.Self.Goalie = true
	ws.Mode = world.FreeKick
	if got := f.context(ws).controlArea(ws.Ball.Pos); got != pt.KickableArea {
		t.Errorf("free kick control area %v, want kickable %v", got, pt.KickableArea)
	}
}

func TestSimulateOneDash_Selection(t *testing.T) {
	tests := []struct {
		name      string
		safetyBuf float64
		ball      geom.Vec
		wantPower float64
		wantDir   float64
		wantDist  float64
	}{
		// Both the idle bins and the forward dash end inside the safety
		// distance, so the plan that saves stamina wins.
		{name: "stamina tie break", safetyBuf: 0.2, ball: geom.Vec{X: 0.8}, wantPower: 0, wantDist: 0.8},
		// With a small safety distance the closest finish wins.
		{name: "closest ball", safetyBuf: 0.6, ball: geom.Vec{X: 0.8}, wantPower: 100, wantDir: 0, wantDist: 0.2},
		{name: "only forward reaches", safetyBuf: 0.2, ball: geom.Vec{X: 1.5}, wantPower: 100, wantDir: 0, wantDist: 0.9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) { c.Intercept.SafetyDistBuf = tc.safetyBuf })
			ws := f.state(geom.Vec{}, tc.ball, geom.Vec{})

			got := f.context(ws).simulateOneDash()
			if len(got) != 1 {
				t.Fatalf("one dash returned %d candidates, want the single best", len(got))
			}
			c := got[0]
			if c.TurnCycles != 0 || c.DashCycles != 1 {
				t.Errorf("candidate %v is not a single dash", c)
			}
			if math.Abs(c.FirstDashPower-tc.wantPower) > 1e-6 {
				t.Errorf("power = %v, want %v", c.FirstDashPower, tc.wantPower)
			}
			if tc.wantPower > 0 && c.FirstDashDir != tc.wantDir {
				t.Errorf("dir = %v, want %v", c.FirstDashDir, tc.wantDir)
			}
			if math.Abs(c.BallDist-tc.wantDist) > 1e-6 {
				t.Errorf("ball dist = %v, want %v", c.BallDist, tc.wantDist)
			}
		})
	}
}

func TestBetterOneDash(t *testing.T) {
	const safety = 0.8
	tests := []struct {
		name string
		a, b Intercept
		want bool
	}{
		{"closer outside safety", Intercept{BallDist: 0.85, RemainingStamina: 10}, Intercept{BallDist: 0.9, RemainingStamina: 8000}, true},
		{"one inside safety", Intercept{BallDist: 0.5, RemainingStamina: 10}, Intercept{BallDist: 0.9, RemainingStamina: 8000}, true},
		{"both inside prefer stamina", Intercept{BallDist: 0.7, RemainingStamina: 7000}, Intercept{BallDist: 0.1, RemainingStamina: 6000}, true},
		{"both inside less stamina", Intercept{BallDist: 0.1, RemainingStamina: 6000}, Intercept{BallDist: 0.7, RemainingStamina: 7000}, false},
	}
	for _, tc := range tests {
		if got := betterOneDash(tc.a, tc.b, safety); got != tc.want {
			t.Errorf("%s: betterOneDash = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSimulateOneDash_TiredPlayerCappedByStamina(t *testing.T) {
	f := newFixture(t, nil)
	ws := f.state(geom.Vec{}, geom.Vec{X: 1.3}, geom.Vec{})
	ws.Self.Stamina.Stamina = 30

	got := f.context(ws).simulateOneDash()
	if len(got) != 1 {
		t.Fatalf("one dash returned %d candidates, want 1", len(got))
	}
	limit := ws.Self.Stamina.Stamina + ws.Self.Type.ExtraStamina
	if c := got[0]; math.Abs(c.FirstDashPower-limit) > 1e-6 || c.StaminaType != Exhaust {
		t.Errorf("candidate %v, want an exhausting dash at the stamina limit %v", c, limit)
	}
}

func TestSimulateOmniDash(t *testing.T) {
	f := newFixture(t, nil)
	pt := f.reg.Type(0)
	reach := pt.KickableArea - f.cfg.Intercept.ControlAreaBuf

	// Ball straight to the side: only omni dashes cover it without turning.
	ws := f.state(geom.Vec{}, geom.Vec{Y: 2.5}, geom.Vec{})
	c := f.context(ws)
	list := c.simulateOmniDash(false, 15)
	if len(list) == 0 {
		t.Fatal("standard model should produce omni dash candidates")
	}
	sideAccel := math.Min(f.reg.Params.MaxDashPower*c.rate(c.axis(90), 1), f.reg.Params.PlayerAccelMax)
	sideSpeed := math.Min(pt.PlayerSpeedMax, sideAccel/(1-pt.PlayerDecay))
	minSteps := int(math.Ceil((2.5 - reach) / sideSpeed))
	for _, cand := range list {
		if cand.ActionType != OmniDash || cand.TurnCycles != 0 {
			t.Errorf("unexpected candidate %v", cand)
		}
		if cand.DashCycles < minSteps {
			t.Errorf("candidate at %d cycles beats the lateral bound %d", cand.DashCycles, minSteps)
		}
	}

	all, _ := f.simulate(ws)
	found := false
	for _, cand := range all {
		found = found || cand.ActionType == OmniDash
	}
	if !found {
		t.Errorf("full simulation dropped the omni dash candidates: %v", all)
	}

	// A ball far to the side is rejected at every horizon.
	far := f.context(f.state(geom.Vec{}, geom.Vec{Y: 30}, geom.Vec{}))
	if got := far.simulateOmniDash(false, 20); len(got) != 0 {
		t.Errorf("far lateral ball produced %d candidates", len(got))
	}

	legacy := newFixture(t, func(c *config.Config) { c.Server.PhysicsModel = "legacy" })
	lws := legacy.state(geom.Vec{}, geom.Vec{Y: 2.5}, geom.Vec{})
	llist, _ := legacy.simulate(lws)
	for _, cand := range llist {
		if cand.ActionType == OmniDash {
			t.Errorf("legacy model produced an omni dash: %v", cand)
		}
	}
}

func TestSimulateTurnDash_BackDashThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		self      geom.Vec
		goalie    bool
		wantAny   bool
	}{
		{name: "within threshold", threshold: 5, wantAny: true},
		{name: "beyond threshold", threshold: 2, wantAny: false},
		{name: "goalie in own area", threshold: 2, self: geom.Vec{X: -40}, goalie: true, wantAny: true},
		{name: "goalie outside area", threshold: 2, self: geom.Vec{X: -20}, goalie: true, wantAny: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) { c.Intercept.BackDashThreshold = tc.threshold })
			ws := f.state(tc.self, geom.Vec{X: tc.self.X - 3}, geom.Vec{})
			ws.Self.Goalie = tc.goalie

			c := f.context(ws)
			list := c.simulateTurnDash(true, false, c.cache.MaxStep())
			if (len(list) > 0) != tc.wantAny {
				t.Fatalf("back dash candidates = %v, want any: %v", list, tc.wantAny)
			}
			for _, cand := range list {
				if cand.ActionType != TurnBackDash {
					t.Errorf("unexpected action %v", cand.ActionType)
				}
				if !tc.goalie && cand.ReachCycles() > tc.threshold {
					t.Errorf("back dash of %d cycles exceeds threshold %d", cand.ReachCycles(), tc.threshold)
				}
			}
			if tc.goalie && tc.wantAny && list[len(list)-1].ReachCycles() <= tc.threshold {
				t.Errorf("goalie back dashes should extend past %d cycles: %v", tc.threshold, list)
			}
		})
	}
}

func TestSimulate_MaxSuccessCount(t *testing.T) {
	for _, limit := range []int{10, 3} {
		f := newFixture(t, func(c *config.Config) { c.Intercept.MaxSuccessCount = limit })
		ws := f.state(geom.Vec{}, geom.Vec{X: 10}, geom.Vec{})
		c := f.context(ws)

		forward := c.simulateTurnDash(false, false, c.cache.MaxStep())
		if len(forward) != limit {
			t.Errorf("limit %d: turn dash produced %d candidates", limit, len(forward))
		}
		omni := c.simulateOmniDash(false, c.cache.MaxStep())
		if len(omni) != limit {
			t.Errorf("limit %d: omni dash produced %d candidates", limit, len(omni))
		}
	}
}
