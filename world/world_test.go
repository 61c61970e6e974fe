package world

import (
	"testing"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
)

func testState(t *testing.T) (*State, *physics.Registry) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	reg := physics.NewRegistry(cfg)
	pt := reg.Type(0)
	ws := &State{
		Time:  Time{Cycle: 10},
		Mode:  PlayOn,
		Model: reg.Model,
		Self:  Self{ID: NewPlayerID(SideLeft, 7), Type: pt},
		Ball:  Ball{Pos: geom.Vec{X: 5}},
		Teammates: []Player{
			{ID: NewPlayerID(SideLeft, 2), Pos: geom.Vec{X: 5.5}, Type: pt},
			{ID: NewPlayerID(SideLeft, 3), Pos: geom.Vec{X: 5, Y: 0.8}, Type: pt},
		},
		Opponents: []Player{
			{ID: NewPlayerID(SideRight, 9), Pos: geom.Vec{X: 20}, Type: pt},
			{ID: NewPlayerID(SideRight, 10), Pos: geom.Vec{X: 4.6}, PosCount: 3, Type: pt},
		},
	}
	ws.UpdateDistances()
	return ws, reg
}

func TestPlayerID(t *testing.T) {
	id := NewPlayerID(SideRight, 11)
	if id.Side() != SideRight || id.Unum() != 11 {
		t.Errorf("round trip gave side %v unum %d", id.Side(), id.Unum())
	}
	if id.String() != "right:11" {
		t.Errorf("String() = %q", id.String())
	}
	if NoPlayer.String() != "none" {
		t.Errorf("NoPlayer.String() = %q", NoPlayer.String())
	}
	if SideLeft.Opposite() != SideRight || SideNeutral.Opposite() != SideNeutral {
		t.Error("Opposite returned the wrong side")
	}
}

func TestTimeOrdering(t *testing.T) {
	cases := []struct {
		a, b Time
		want bool
	}{
		{Time{1, 0}, Time{2, 0}, true},
		{Time{2, 0}, Time{1, 5}, false},
		{Time{3, 1}, Time{3, 2}, true},
		{Time{3, 2}, Time{3, 2}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Before(tc.b); got != tc.want {
			t.Errorf("%v.Before(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestGameMode(t *testing.T) {
	if !BeforeKickOff.IsTerminalOrPreKickOff() || !TimeOver.IsTerminalOrPreKickOff() {
		t.Error("before kick off and time over are terminal")
	}
	if PlayOn.IsTerminalOrPreKickOff() {
		t.Error("play on is not terminal")
	}
	if !PlayOn.AllowsGoalieCatch() || FreeKick.AllowsGoalieCatch() {
		t.Error("goalie catch only during open play")
	}
	if !GoalKick.IsSetPiece() || PlayOn.IsSetPiece() {
		t.Error("IsSetPiece misclassified modes")
	}
	if GameMode(200).String() != "unknown" {
		t.Error("out of range modes should print unknown")
	}
}

func TestStateLookups(t *testing.T) {
	ws, _ := testState(t)

	if p := ws.Teammate(3); p == nil || p.Unum() != 3 {
		t.Errorf("Teammate(3) = %v", p)
	}
	if ws.Teammate(9) != nil {
		t.Error("Teammate(9) should not resolve an opponent")
	}
	if p := ws.Player(NewPlayerID(SideRight, 9)); p == nil || p.Pos.X != 20 {
		t.Errorf("Player(right:9) = %v", p)
	}

	if k := ws.KickableTeammate(); k == nil || k.Unum() != 2 {
		t.Errorf("KickableTeammate = %v, want the closer teammate 2", k)
	}
	// Opponent 10 is close but stale.
	if k := ws.KickableOpponent(); k != nil {
		t.Errorf("KickableOpponent = %v, want nil", k)
	}
}

func TestStateValidity(t *testing.T) {
	ws, _ := testState(t)
	if !ws.SelfPosValid() || !ws.BallPosValid() {
		t.Fatal("fresh observations should be valid")
	}
	ws.Self.PosCount = SelfPosCountThr
	ws.Ball.PosCount = BallPosCountThr
	if ws.SelfPosValid() || ws.BallPosValid() {
		t.Error("observations at the threshold should be invalid")
	}
}

func TestResolveAndClone(t *testing.T) {
	ws, reg := testState(t)
	clone := ws.Clone()
	clone.Teammates[0].Pos = geom.Vec{X: -30}
	if ws.Teammates[0].Pos.X == -30 {
		t.Error("Clone shares player slices")
	}

	clone.Model = nil
	clone.Self.Type = nil
	clone.Opponents[0].Type = nil
	clone.Resolve(reg)
	if clone.Model == nil || clone.Self.Type == nil || clone.Opponents[0].Type == nil {
		t.Error("Resolve should relink model and player types")
	}
}
