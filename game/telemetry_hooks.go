package game

import (
	"github.com/pthm-cable/striker/telemetry"
)

// writeTable records this cycle's table to the CSV output and the stream.
func (m *Match) writeTable() {
	if m.output == nil && m.stream == nil {
		return
	}
	snap := m.table.Snapshot()
	ball := m.posMap.Get(m.ballEntity).Vec()

	if err := m.output.WriteTable(
		telemetry.NewTableRow(snap, m.referee.Mode, ball),
		telemetry.NewCandidateRows(snap, m.cfg.Telemetry.MaxCandidatesLogged),
	); err != nil {
		m.logger.Error("failed to write table", "error", err)
	}
	m.stream.Broadcast(telemetry.NewTableMessage(snap, m.referee.Mode, ball))
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (m *Match) flushTelemetry(cycle int64) {
	if !m.collector.ShouldFlush(cycle) {
		return
	}

	stats := m.collector.Flush(cycle)
	perfStats := m.perf.Stats()

	if m.statsCallback != nil {
		m.statsCallback(stats)
	}

	if m.logStats {
		stats.LogStats()
		perfStats.LogStats()
		m.logMatchState()
	}

	if err := m.output.WriteTelemetry(stats); err != nil {
		m.logger.Error("failed to write telemetry", "error", err)
	}
	if err := m.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
		m.logger.Error("failed to write perf", "error", err)
	}
	m.stream.Broadcast(telemetry.StreamMessage{Type: telemetry.MsgTypeWindow, Data: stats})

	for _, bm := range m.bookmarks.Check(stats) {
		if m.logStats {
			bm.LogBookmark()
		}
		if err := m.output.WriteBookmark(bm); err != nil {
			m.logger.Error("failed to write bookmark", "error", err)
		}
		m.stream.Broadcast(telemetry.StreamMessage{Type: telemetry.MsgTypeBookmark, Data: bm})

		if m.snapshotDir != "" {
			m.saveSnapshot(&bm)
		}
	}
	m.replay = nil
}

// saveSnapshot writes the agent's view of this cycle and the table it
// produced before any heard message was applied.
func (m *Match) saveSnapshot(bookmark *telemetry.Bookmark) {
	table := m.replay
	if table == nil {
		snap := m.table.Snapshot()
		table = &snap
	}
	snapshot := telemetry.NewSnapshot(m.runID, m.rngSeed, m.state, table)
	snapshot.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snapshot, m.snapshotDir)
	if err != nil {
		m.logger.Error("failed to save snapshot", "error", err)
		return
	}
	m.logger.Info("snapshot saved", "path", path, "cycle", m.Cycle())
}
