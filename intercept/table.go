package intercept

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/world"
)

// Phase names reported to a PhaseTimer during Update.
const (
	PhaseBallCache = "ball_cache"
	PhaseSelf      = "self_intercept"
	PhaseTeammates = "teammates"
	PhaseOpponents = "opponents"
)

// PhaseTimer receives phase boundaries while the table is rebuilt.
type PhaseTimer interface {
	StartPhase(phase string)
}

// ranking tracks the fastest and second fastest player of one side.
type ranking struct {
	first      world.PlayerID
	firstStep  int
	second     world.PlayerID
	secondStep int
}

func newRanking(unreachable int) ranking {
	return ranking{firstStep: unreachable, secondStep: unreachable}
}

func (r *ranking) add(id world.PlayerID, step int) {
	switch {
	case step < r.firstStep:
		r.second, r.secondStep = r.first, r.firstStep
		r.first, r.firstStep = id, step
	case step < r.secondStep:
		r.second, r.secondStep = id, step
	}
}

// override installs id as the fastest player, demoting the previous
// fastest to second when the player changes.
func (r *ranking) override(id world.PlayerID, step int) {
	if r.first != id {
		r.second, r.secondStep = r.first, r.firstStep
	}
	r.first, r.firstStep = id, step
}

// Table is the per-cycle interception summary. It is rebuilt by Update
// once per world timestamp and patched by heard messages until the next
// rebuild. Table is not safe for concurrent use; hand other goroutines a
// Snapshot instead.
type Table struct {
	tableCfg    config.TableConfig
	self        *SelfSimulator
	predictor   *PlayerPredictor
	logger      *slog.Logger
	timer       PhaseTimer
	unreachable int

	updated    bool
	valid      bool
	lastUpdate world.Time

	cache           *BallCache
	candidates      []Intercept
	fallback        bool
	selfStep        int
	selfExhaustStep int
	teammates       ranking
	opponents       ranking
	steps           map[world.PlayerID]int
}

// NewTable creates an empty table. A nil logger disables debug output.
func NewTable(cfg *config.Config, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Table{
		tableCfg:    cfg.Table,
		self:        NewSelfSimulator(cfg.Intercept, cfg.Table.MaxCycle, logger),
		predictor:   NewPlayerPredictor(cfg.Intercept, cfg.Table.Unreachable),
		logger:      logger,
		unreachable: cfg.Table.Unreachable,
	}
	t.clear()
	return t
}

// SetTimer installs a phase timer. Pass nil to remove it.
func (t *Table) SetTimer(timer PhaseTimer) { t.timer = timer }

func (t *Table) phase(name string) {
	if t.timer != nil {
		t.timer.StartPhase(name)
	}
}

func (t *Table) clear() {
	t.valid = false
	t.cache = nil
	t.candidates = nil
	t.fallback = false
	t.selfStep = t.unreachable
	t.selfExhaustStep = t.unreachable
	t.teammates = newRanking(t.unreachable)
	t.opponents = newRanking(t.unreachable)
	t.steps = make(map[world.PlayerID]int)
}

// Update rebuilds the table from ws. Repeated calls for the same
// timestamp are ignored. Terminal modes and invalid self or ball
// positions leave every step at the unreachable sentinel.
func (t *Table) Update(ws *world.State) {
	if t.updated && ws.Time == t.lastUpdate {
		return
	}
	t.updated = true
	t.lastUpdate = ws.Time
	t.clear()

	if ws.Mode.IsTerminalOrPreKickOff() || !ws.SelfPosValid() || !ws.BallPosValid() || ws.Self.Type == nil {
		t.logger.Debug("intercept table skipped",
			"time", ws.Time,
			"mode", ws.Mode,
			"self_pos_count", ws.Self.PosCount,
			"ball_pos_count", ws.Ball.PosCount,
		)
		return
	}
	t.valid = true

	t.phase(PhaseBallCache)
	t.cache = NewBallCache(ws, t.tableCfg)

	t.phase(PhaseSelf)
	t.predictSelf(ws)

	t.phase(PhaseTeammates)
	t.predictSide(ws, ws.Teammates, &t.teammates, true)

	t.phase(PhaseOpponents)
	t.predictSide(ws, ws.Opponents, &t.opponents, false)

	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("intercept table updated", "snapshot", t.Snapshot())
	}
}

func (t *Table) predictSelf(ws *world.State) {
	t.candidates, t.fallback = t.self.simulate(ws, t.cache, t.cache.MaxStep())
	for _, c := range t.candidates {
		switch c.StaminaType {
		case Normal:
			t.selfStep = min(t.selfStep, c.ReachCycles())
		case Exhaust:
			t.selfExhaustStep = min(t.selfExhaustStep, c.ReachCycles())
		}
	}
}

func (t *Table) predictSide(ws *world.State, players []world.Player, r *ranking, teammate bool) {
	for i := range players {
		p := &players[i]
		if p.PosCount >= t.tableCfg.StalePosCount {
			continue
		}
		step := 0
		if !p.Kickable() {
			step = t.predictor.Predict(ws, p, t.cache, teammate)
		}
		t.steps[p.ID] = step
		r.add(p.ID, step)
	}
}

// HearTeammate applies a teammate's announced reach step. It is ignored
// unless it beats the current fastest teammate and unum resolves to a
// known teammate. A table whose last update was skipped ignores every
// message. It reports whether the table changed.
func (t *Table) HearTeammate(ws *world.State, unum, step int) bool {
	if !t.valid {
		return false
	}
	p := ws.Teammate(unum)
	if p == nil {
		return false
	}
	if t.teammates.first != world.NoPlayer && step >= t.teammates.firstStep {
		return false
	}
	t.teammates.override(p.ID, step)
	t.steps[p.ID] = step
	t.logger.Debug("heard teammate intercept", "time", ws.Time, "player", p.ID, "step", step)
	return true
}

// HearOpponent applies an announced opponent reach step. Besides an
// improvement, a stale observation of the current fastest opponent also
// lets the heard value through.
func (t *Table) HearOpponent(ws *world.State, unum, step int) bool {
	if !t.valid {
		return false
	}
	p := ws.Opponent(unum)
	if p == nil {
		return false
	}
	if t.opponents.first != world.NoPlayer && step >= t.opponents.firstStep {
		fastest := ws.Player(t.opponents.first)
		if fastest == nil || fastest.PosCount == 0 {
			return false
		}
	}
	t.opponents.override(p.ID, step)
	t.steps[p.ID] = step
	t.logger.Debug("heard opponent intercept", "time", ws.Time, "player", p.ID, "step", step)
	return true
}

// Valid reports whether the last update produced predictions.
func (t *Table) Valid() bool { return t.valid }

// LastUpdate returns the timestamp of the last Update.
func (t *Table) LastUpdate() world.Time { return t.lastUpdate }

// SelfStep is the fastest reach step that keeps the stamina recovery.
func (t *Table) SelfStep() int { return t.selfStep }

// SelfExhaustStep is the fastest reach step among exhausting plans.
func (t *Table) SelfExhaustStep() int { return t.selfExhaustStep }

func (t *Table) FastestTeammate() world.PlayerID { return t.teammates.first }
func (t *Table) SecondTeammate() world.PlayerID  { return t.teammates.second }
func (t *Table) TeammateStep() int               { return t.teammates.firstStep }
func (t *Table) SecondTeammateStep() int         { return t.teammates.secondStep }
func (t *Table) FastestOpponent() world.PlayerID { return t.opponents.first }
func (t *Table) SecondOpponent() world.PlayerID  { return t.opponents.second }
func (t *Table) OpponentStep() int               { return t.opponents.firstStep }
func (t *Table) SecondOpponentStep() int         { return t.opponents.secondStep }

// SelfCandidates returns the sorted self plans. The slice must not be
// modified.
func (t *Table) SelfCandidates() []Intercept { return t.candidates }

// Fallback reports whether no strategy reached the ball and the only self
// plan is the run to the ball's final resting point.
func (t *Table) Fallback() bool { return t.fallback }

// BestSelf returns the top-ranked self plan.
func (t *Table) BestSelf() (Intercept, bool) {
	if len(t.candidates) == 0 {
		return Intercept{}, false
	}
	return t.candidates[0], true
}

// PlayerStep returns the predicted or heard reach step of id.
func (t *Table) PlayerStep(id world.PlayerID) (int, bool) {
	step, ok := t.steps[id]
	return step, ok
}

// PlayerSteps returns a copy of every predicted or heard reach step.
func (t *Table) PlayerSteps() map[world.PlayerID]int {
	return maps.Clone(t.steps)
}

// BallCache returns the ball projection of the last valid update, or nil.
func (t *Table) BallCache() *BallCache { return t.cache }

// Snapshot returns a copy of the table's summary that is safe to hand to
// other goroutines.
func (t *Table) Snapshot() Snapshot {
	return Snapshot{
		Time:               t.lastUpdate,
		Valid:              t.valid,
		SelfStep:           t.selfStep,
		SelfExhaustStep:    t.selfExhaustStep,
		FastestTeammate:    t.teammates.first,
		TeammateStep:       t.teammates.firstStep,
		SecondTeammate:     t.teammates.second,
		SecondTeammateStep: t.teammates.secondStep,
		FastestOpponent:    t.opponents.first,
		OpponentStep:       t.opponents.firstStep,
		SecondOpponent:     t.opponents.second,
		SecondOpponentStep: t.opponents.secondStep,
		Fallback:           t.fallback,
		Candidates:         slices.Clone(t.candidates),
		Steps:              maps.Clone(t.steps),
	}
}

// Snapshot is a value copy of the table summary.
type Snapshot struct {
	Time               world.Time             `json:"time"`
	Valid              bool                   `json:"valid"`
	SelfStep           int                    `json:"self_step"`
	SelfExhaustStep    int                    `json:"self_exhaust_step"`
	FastestTeammate    world.PlayerID         `json:"fastest_teammate"`
	TeammateStep       int                    `json:"teammate_step"`
	SecondTeammate     world.PlayerID         `json:"second_teammate"`
	SecondTeammateStep int                    `json:"second_teammate_step"`
	FastestOpponent    world.PlayerID         `json:"fastest_opponent"`
	OpponentStep       int                    `json:"opponent_step"`
	SecondOpponent     world.PlayerID         `json:"second_opponent"`
	SecondOpponentStep int                    `json:"second_opponent_step"`
	Fallback           bool                   `json:"fallback"`
	Candidates         []Intercept            `json:"candidates"`
	Steps              map[world.PlayerID]int `json:"steps"`
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("time", s.Time.String()),
		slog.Bool("valid", s.Valid),
		slog.Int("self", s.SelfStep),
		slog.Int("self_exhaust", s.SelfExhaustStep),
		slog.String("teammate", s.FastestTeammate.String()),
		slog.Int("teammate_step", s.TeammateStep),
		slog.String("opponent", s.FastestOpponent.String()),
		slog.Int("opponent_step", s.OpponentStep),
		slog.Int("candidates", len(s.Candidates)),
	)
}
