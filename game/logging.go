package game

import (
	"log/slog"
)

// logMatchState logs the match situation and the agent's table.
func (m *Match) logMatchState() {
	ball := m.posMap.Get(m.ballEntity).Vec()
	mateChaser, mateSteps := m.chase.Chaser(m.state.OurSide)
	oppChaser, oppSteps := m.chase.Chaser(m.state.OurSide.Opposite())
	mae, chases := m.collector.Accuracy()

	m.logger.Info("match",
		"cycle", m.Cycle(),
		"mode", m.referee.Mode.String(),
		"score_left", m.referee.Score.Left,
		"score_right", m.referee.Score.Right,
		slog.Group("ball", "x", ball.X, "y", ball.Y),
		slog.Group("chasers",
			"ours", mateChaser.String(), "ours_steps", mateSteps,
			"theirs", oppChaser.String(), "theirs_steps", oppSteps,
		),
		"seen_teammates", len(m.state.Teammates),
		"seen_opponents", len(m.state.Opponents),
		"stamina", m.state.Self.Stamina.Stamina,
		"run_mae", mae,
		"run_chases", chases,
		"table", m.table.Snapshot(),
	)
}
