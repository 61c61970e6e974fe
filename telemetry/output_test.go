package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/world"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	if err := om.WriteTable(TableRow{}, nil); err != nil {
		t.Errorf("nil manager should ignore writes: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager Close: %v", err)
	}
}

func TestOutputManager_TableRows(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	snap := intercept.Snapshot{
		Time:            world.Time{Cycle: 12},
		Valid:           true,
		SelfStep:        4,
		FastestTeammate: world.NewPlayerID(world.SideLeft, 2),
		TeammateStep:    6,
		Candidates: []intercept.Intercept{
			{ActionType: intercept.OmniDash, DashCycles: 4},
			{ActionType: intercept.TurnForwardDash, TurnCycles: 1, DashCycles: 4},
			{ActionType: intercept.TurnBackDash, DashCycles: 5},
		},
	}
	for cycle := int64(12); cycle < 14; cycle++ {
		snap.Time.Cycle = cycle
		row := NewTableRow(snap, world.PlayOn, geom.Vec{X: 1, Y: 2})
		if err := om.WriteTable(row, NewCandidateRows(snap, 2)); err != nil {
			t.Fatalf("WriteTable: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var rows []TableRow
	f, err := os.Open(filepath.Join(dir, "table.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading table.csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("table.csv has %d rows, want 2", len(rows))
	}
	if rows[1].Cycle != 13 || rows[0].Teammate != "left:2" || rows[0].Mode != "play_on" {
		t.Errorf("unexpected rows: %+v", rows)
	}

	var cands []CandidateRow
	cf, err := os.Open(filepath.Join(dir, "candidates.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer cf.Close()
	if err := gocsv.UnmarshalFile(cf, &cands); err != nil {
		t.Fatalf("reading candidates.csv: %v", err)
	}
	if len(cands) != 4 {
		t.Fatalf("candidates.csv has %d rows, want 2 per cycle", len(cands))
	}
	if cands[1].Rank != 1 || cands[1].TurnCycles != 1 {
		t.Errorf("second candidate = %+v", cands[1])
	}
}
