// Package telemetry provides prediction accuracy tracking, bookmarking,
// scenario snapshots, CSV output and a live table stream.
package telemetry

import "github.com/pthm-cable/striker/world"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventTableUpdate EventType = iota
	EventTableSkipped
	EventHeardOverride
	EventFallback
	EventChaseStart
	EventChaseAbort
	EventBallControl
	EventModeChange
)

// Event represents a single telemetry event.
type Event struct {
	Type   EventType
	Cycle  int64
	Player world.PlayerID

	// Optional fields depending on event type
	Step       int // heard step, predicted reach step or candidate count
	Candidates int
	Mode       world.GameMode
}

// NewTableUpdateEvent records a table rebuild with the agent's reach step
// and the size of its candidate list.
func NewTableUpdateEvent(cycle int64, selfStep, candidates int) Event {
	return Event{Type: EventTableUpdate, Cycle: cycle, Step: selfStep, Candidates: candidates}
}

// NewTableSkippedEvent records a cycle where the table stayed invalid.
func NewTableSkippedEvent(cycle int64) Event {
	return Event{Type: EventTableSkipped, Cycle: cycle}
}

// NewHeardOverrideEvent records a heard step that replaced a prediction.
func NewHeardOverrideEvent(cycle int64, player world.PlayerID, step int) Event {
	return Event{Type: EventHeardOverride, Cycle: cycle, Player: player, Step: step}
}

// NewFallbackEvent records a cycle where only the fallback plan was found.
func NewFallbackEvent(cycle int64) Event {
	return Event{Type: EventFallback, Cycle: cycle}
}

// NewChaseStartEvent records the agent starting to chase with the given
// predicted reach step.
func NewChaseStartEvent(cycle int64, agent world.PlayerID, predicted int) Event {
	return Event{Type: EventChaseStart, Cycle: cycle, Player: agent, Step: predicted}
}

// NewChaseAbortEvent records a chase ending without the agent controlling
// the ball.
func NewChaseAbortEvent(cycle int64, agent world.PlayerID) Event {
	return Event{Type: EventChaseAbort, Cycle: cycle, Player: agent}
}

// NewBallControlEvent records the agent reaching the ball.
func NewBallControlEvent(cycle int64, agent world.PlayerID) Event {
	return Event{Type: EventBallControl, Cycle: cycle, Player: agent}
}

// NewModeChangeEvent records a referee decision.
func NewModeChangeEvent(cycle int64, mode world.GameMode) Event {
	return Event{Type: EventModeChange, Cycle: cycle, Mode: mode}
}
