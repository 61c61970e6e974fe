package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/world"
)

// TableRow is one cycle of the interception table in table.csv.
type TableRow struct {
	Cycle           int64   `csv:"cycle"`
	Mode            string  `csv:"mode"`
	Valid           bool    `csv:"valid"`
	BallX           float64 `csv:"ball_x"`
	BallY           float64 `csv:"ball_y"`
	SelfStep        int     `csv:"self_step"`
	SelfExhaustStep int     `csv:"self_exhaust_step"`
	Teammate        string  `csv:"teammate"`
	TeammateStep    int     `csv:"teammate_step"`
	Teammate2       string  `csv:"teammate2"`
	Teammate2Step   int     `csv:"teammate2_step"`
	Opponent        string  `csv:"opponent"`
	OpponentStep    int     `csv:"opponent_step"`
	Opponent2       string  `csv:"opponent2"`
	Opponent2Step   int     `csv:"opponent2_step"`
	Candidates      int     `csv:"candidates"`
}

// NewTableRow flattens a table snapshot.
func NewTableRow(snap intercept.Snapshot, mode world.GameMode, ball geom.Vec) TableRow {
	return TableRow{
		Cycle:           snap.Time.Cycle,
		Mode:            mode.String(),
		Valid:           snap.Valid,
		BallX:           ball.X,
		BallY:           ball.Y,
		SelfStep:        snap.SelfStep,
		SelfExhaustStep: snap.SelfExhaustStep,
		Teammate:        snap.FastestTeammate.String(),
		TeammateStep:    snap.TeammateStep,
		Teammate2:       snap.SecondTeammate.String(),
		Teammate2Step:   snap.SecondTeammateStep,
		Opponent:        snap.FastestOpponent.String(),
		OpponentStep:    snap.OpponentStep,
		Opponent2:       snap.SecondOpponent.String(),
		Opponent2Step:   snap.SecondOpponentStep,
		Candidates:      len(snap.Candidates),
	}
}

// CandidateRow is one ranked self candidate in candidates.csv.
type CandidateRow struct {
	Cycle            int64   `csv:"cycle"`
	Rank             int     `csv:"rank"`
	Stamina          string  `csv:"stamina_type"`
	Action           string  `csv:"action_type"`
	TurnCycles       int     `csv:"turn_cycles"`
	DashCycles       int     `csv:"dash_cycles"`
	FirstDashPower   float64 `csv:"first_dash_power"`
	FirstDashDir     float64 `csv:"first_dash_dir"`
	PosX             float64 `csv:"pos_x"`
	PosY             float64 `csv:"pos_y"`
	BallDist         float64 `csv:"ball_dist"`
	RemainingStamina float64 `csv:"remaining_stamina"`
}

// NewCandidateRows flattens at most limit candidates of a table snapshot.
// A non-positive limit keeps every candidate.
func NewCandidateRows(snap intercept.Snapshot, limit int) []CandidateRow {
	list := snap.Candidates
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	rows := make([]CandidateRow, len(list))
	for i, c := range list {
		rows[i] = CandidateRow{
			Cycle:            snap.Time.Cycle,
			Rank:             i,
			Stamina:          c.StaminaType.String(),
			Action:           c.ActionType.String(),
			TurnCycles:       c.TurnCycles,
			DashCycles:       c.DashCycles,
			FirstDashPower:   c.FirstDashPower,
			FirstDashDir:     c.FirstDashDir,
			PosX:             c.PredictedPos.X,
			PosY:             c.PredictedPos.Y,
			BallDist:         c.BallDist,
			RemainingStamina: c.RemainingStamina,
		}
	}
	return rows
}

// csvFile appends records to one CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any, what string) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		c.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, c.f); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	telemetry  csvFile
	perf       csvFile
	bookmarks  csvFile
	table      csvFile
	candidates csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  *csvFile
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"table.csv", &om.table},
		{"candidates.csv", &om.candidates},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		file.dst.f = f
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats}, "telemetry")
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}, "perf")
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b}, "bookmark")
}

// WriteTable writes one table row and its leading candidates.
func (om *OutputManager) WriteTable(row TableRow, candidates []CandidateRow) error {
	if om == nil {
		return nil
	}
	if err := om.table.write([]TableRow{row}, "table"); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	return om.candidates.write(candidates, "candidates")
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.telemetry, &om.perf, &om.bookmarks, &om.table, &om.candidates} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
