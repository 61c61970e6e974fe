package intercept

import (
	"testing"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

type fixture struct {
	cfg *config.Config
	reg *physics.Registry
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	return &fixture{cfg: cfg, reg: physics.NewRegistry(cfg)}
}

// state builds a play-on snapshot with self facing +x at selfPos.
func (f *fixture) state(selfPos, ballPos, ballVel geom.Vec) *world.State {
	pt := f.reg.Type(0)
	return &world.State{
		Time:    world.Time{Cycle: 1},
		Mode:    world.PlayOn,
		OurSide: world.SideLeft,
		Model:   f.reg.Model,
		Self: world.Self{
			ID:      world.NewPlayerID(world.SideLeft, 7),
			Pos:     selfPos,
			Stamina: physics.NewStaminaModel(pt),
			Type:    pt,
		},
		Ball: world.Ball{Pos: ballPos, Vel: ballVel},
	}
}

func (f *fixture) player(side world.Side, unum int, pos geom.Vec) world.Player {
	return world.Player{
		ID:   world.NewPlayerID(side, unum),
		Pos:  pos,
		Type: f.reg.Type(0),
	}
}

func (f *fixture) simulate(ws *world.State) ([]Intercept, *BallCache) {
	ws.UpdateDistances()
	cache := NewBallCache(ws, f.cfg.Table)
	sim := NewSelfSimulator(f.cfg.Intercept, f.cfg.Table.MaxCycle, nil)
	return sim.Simulate(ws, cache, cache.MaxStep()), cache
}

func checkCandidates(t *testing.T, list []Intercept) {
	t.Helper()
	if len(list) == 0 {
		t.Fatal("candidate list is empty")
	}
	for i, c := range list {
		if !c.Valid() {
			t.Errorf("candidate %d invalid: %v", i, c)
		}
		if c.ReachCycles() != c.TurnCycles+c.DashCycles {
			t.Errorf("candidate %d reach %d != turn %d + dash %d", i, c.ReachCycles(), c.TurnCycles, c.DashCycles)
		}
		if i == 0 {
			continue
		}
		prev := list[i-1]
		if prev.ReachCycles() > c.ReachCycles() {
			t.Errorf("candidates %d,%d out of order by reach: %d > %d", i-1, i, prev.ReachCycles(), c.ReachCycles())
		}
		if prev.ReachCycles() == c.ReachCycles() && prev.TurnCycles > c.TurnCycles {
			t.Errorf("candidates %d,%d out of order by turns: %d > %d", i-1, i, prev.TurnCycles, c.TurnCycles)
		}
		for j := 0; j < i; j++ {
			if Equivalent(list[j], c) {
				t.Errorf("candidates %d and %d are duplicates: %v", j, i, c)
			}
		}
	}
}

// context prepares the per-call simulator state for ws so single
// strategies can be exercised on their own.
func (f *fixture) context(ws *world.State) *selfContext {
	ws.UpdateDistances()
	cache := NewBallCache(ws, f.cfg.Table)
	sim := NewSelfSimulator(f.cfg.Intercept, f.cfg.Table.MaxCycle, nil)
	return sim.newContext(ws, cache)
}
