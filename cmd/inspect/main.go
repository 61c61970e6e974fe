// Command inspect replays a saved scenario through the interception table
// and reports any difference from the table recorded with it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"slices"
	"text/tabwriter"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/telemetry"
	"github.com/pthm-cable/striker/world"
)

func main() {
	configPath := flag.String("config", "", "Config YAML used for the recorded run (empty = defaults)")
	snapshotPath := flag.String("snapshot", "", "Snapshot JSON file to replay")
	flag.Parse()

	if *snapshotPath == "" {
		log.Fatal("--snapshot is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	snap, err := telemetry.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	snap.Resolve(physics.NewRegistry(cfg))

	got := replay(cfg, &snap.State)
	printTable(os.Stdout, snap, got)

	if snap.Table == nil {
		fmt.Println("\nno recorded table to compare against")
		return
	}
	if diffs := diff(*snap.Table, got); len(diffs) > 0 {
		fmt.Println("\nMISMATCH against the recorded table:")
		for _, d := range diffs {
			fmt.Println("  " + d)
		}
		os.Exit(1)
	}
	fmt.Println("\nreplay matches the recorded table")
}

// replay runs a fresh table over ws.
func replay(cfg *config.Config, ws *world.State) intercept.Snapshot {
	table := intercept.NewTable(cfg, nil)
	table.Update(ws)
	return table.Snapshot()
}

func printTable(w io.Writer, snap *telemetry.Snapshot, s intercept.Snapshot) {
	fmt.Fprintf(w, "snapshot %s (run %s, seed %d) cycle %d mode %s\n",
		snap.ID, snap.RunID, snap.RNGSeed, snap.Cycle, snap.State.Mode)
	if snap.Bookmark != nil {
		fmt.Fprintf(w, "bookmark: %s %s\n", snap.Bookmark.Type, snap.Bookmark.Description)
	}
	fmt.Fprintf(w, "ball %.2f,%.2f vel %.2f,%.2f\n",
		snap.State.Ball.Pos.X, snap.State.Ball.Pos.Y, snap.State.Ball.Vel.X, snap.State.Ball.Vel.Y)
	fmt.Fprintf(w, "self %d (exhaust %d) fallback=%v valid=%v\n", s.SelfStep, s.SelfExhaustStep, s.Fallback, s.Valid)
	fmt.Fprintf(w, "teammates %s@%d %s@%d\n", s.FastestTeammate, s.TeammateStep, s.SecondTeammate, s.SecondTeammateStep)
	fmt.Fprintf(w, "opponents %s@%d %s@%d\n\n", s.FastestOpponent, s.OpponentStep, s.SecondOpponent, s.SecondOpponentStep)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tACTION\tSTAMINA\tTURN\tDASH\tPOWER\tDIR\tDIST\tLEFT")
	for i, c := range s.Candidates {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.3f\t%.0f\n",
			i, c.ActionType, c.StaminaType, c.TurnCycles, c.DashCycles,
			c.FirstDashPower, c.FirstDashDir, c.BallDist, c.RemainingStamina)
	}
	tw.Flush()

	ids := make([]world.PlayerID, 0, len(s.Steps))
	for id := range s.Steps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fmt.Fprintln(w)
	for _, id := range ids {
		fmt.Fprintf(w, "%-9s %d\n", id, s.Steps[id])
	}
}

// diff lists the fields where the replayed table differs from the recorded one.
func diff(want, got intercept.Snapshot) []string {
	var out []string
	wv, gv := reflect.ValueOf(want), reflect.ValueOf(got)
	for i := 0; i < wv.NumField(); i++ {
		name := wv.Type().Field(i).Name
		if !reflect.DeepEqual(wv.Field(i).Interface(), gv.Field(i).Interface()) {
			out = append(out, fmt.Sprintf("%s: recorded %v, replayed %v", name, wv.Field(i).Interface(), gv.Field(i).Interface()))
		}
	}
	return out
}
