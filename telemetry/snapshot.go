package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a scenario: one cycle's world state as the agent saw it,
// together with the table it produced, for replay and regression checks.
type Snapshot struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	RunID   string `json:"run_id,omitempty"`
	RNGSeed int64  `json:"rng_seed"`

	Cycle int64               `json:"cycle"`
	State world.State         `json:"state"`
	Table *intercept.Snapshot `json:"table,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// NewSnapshot creates a snapshot of ws with a fresh id. The state is
// copied so the caller may keep mutating its own.
func NewSnapshot(runID string, seed int64, ws *world.State, table *intercept.Snapshot) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		ID:      uuid.NewString(),
		RunID:   runID,
		RNGSeed: seed,
		Cycle:   ws.Time.Cycle,
		State:   *ws.Clone(),
		Table:   table,
	}
}

// Resolve relinks the physics model and player types, which are not
// serialised.
func (s *Snapshot) Resolve(reg *physics.Registry) {
	s.State.Resolve(reg)
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Cycle)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Cycle, sanitized)
	}
	if len(snapshot.ID) >= 8 {
		name += "_" + snapshot.ID[:8]
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk. Call Resolve before handing the
// state to the interception core.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if _, err := uuid.Parse(snapshot.ID); err != nil {
		return nil, fmt.Errorf("snapshot id: %w", err)
	}
	return &snapshot, nil
}
