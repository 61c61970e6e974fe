package telemetry

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

func scenarioState(t *testing.T) (*config.Config, *physics.Registry, *world.State) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	reg := physics.NewRegistry(cfg)
	pt := reg.Type(0)
	ws := &world.State{
		Time:    world.Time{Cycle: 1000},
		Mode:    world.PlayOn,
		OurSide: world.SideLeft,
		Model:   reg.Model,
		Self: world.Self{
			ID:      world.NewPlayerID(world.SideLeft, 7),
			Pos:     geom.Vec{X: -8, Y: 3},
			Body:    30,
			Stamina: physics.NewStaminaModel(pt),
			Type:    pt,
		},
		Ball: world.Ball{Pos: geom.Vec{X: 2, Y: -1}, Vel: geom.Vec{X: -0.8, Y: 0.2}},
		Teammates: []world.Player{
			{ID: world.NewPlayerID(world.SideLeft, 8), Pos: geom.Vec{X: 6, Y: 6}, Body: 200, Type: pt},
		},
		Opponents: []world.Player{
			{ID: world.NewPlayerID(world.SideRight, 9), Pos: geom.Vec{X: 10, Y: -4}, Body: 180, PosCount: 2, Type: pt},
		},
	}
	ws.UpdateDistances()
	return cfg, reg, ws
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, reg, ws := scenarioState(t)

	table := intercept.NewTable(cfg, nil)
	table.Update(ws)
	expected := table.Snapshot()

	snapshot := NewSnapshot("run-1", 42, ws, &expected)
	snapshot.Bookmark = &Bookmark{Type: BookmarkErrorSpike, Cycle: 1000, Description: "Test bookmark"}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.ID != snapshot.ID || loaded.RunID != "run-1" || loaded.RNGSeed != 42 {
		t.Errorf("header mismatch: got %q/%q/%d", loaded.ID, loaded.RunID, loaded.RNGSeed)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkErrorSpike {
		t.Errorf("bookmark not restored: %+v", loaded.Bookmark)
	}
	if loaded.State.Self.Type != nil {
		t.Error("player types should not be serialised")
	}

	// Replaying the loaded scenario reproduces the recorded table.
	loaded.Resolve(reg)
	replay := intercept.NewTable(cfg, nil)
	replay.Update(&loaded.State)
	if !reflect.DeepEqual(replay.Snapshot(), *loaded.Table) {
		t.Errorf("replayed table differs:\n%+v\n%+v", replay.Snapshot(), *loaded.Table)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Cycle:    5000,
		Bookmark: &Bookmark{Type: BookmarkFallbackBurst, Cycle: 5000},
	}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_5000_fallback_burst.json"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}

	withID := &Snapshot{Version: SnapshotVersion, Cycle: 3000, ID: "0123456789abcdef"}
	path, err = SaveSnapshot(withID, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_3000_01234567.json"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}
}

func TestLoadSnapshotRejectsBadFiles(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}

	bad := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"version": 99, "id": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(bad); err == nil {
		t.Error("wrong version should fail")
	}
}
