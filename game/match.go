// Package game runs the headless match sandbox that feeds the interception
// table with the world as one agent sees it.
package game

import (
	"context"
	"io"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/intercept"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/systems"
	"github.com/pthm-cable/striker/telemetry"
	"github.com/pthm-cable/striker/world"
)

// fieldMargin is how far outside the pitch lines players and the grid reach.
const fieldMargin = 5.0

// Options configures a match.
type Options struct {
	Config        *config.Config // nil uses config.Cfg()
	Seed          int64
	MaxCycles     int64 // 0 = until time over
	StatsWindow   int   // cycles per stats window, 0 = use config
	LogStats      bool
	SnapshotDir   string
	OutputDir     string
	Logger        *slog.Logger
	Stream        *telemetry.Stream
	StatsCallback func(telemetry.WindowStats)
}

// Match holds the complete sandbox state.
type Match struct {
	cfg     *config.Config
	reg     *physics.Registry
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64
	runID   string
	logger  *slog.Logger

	playerMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Stamina,
		components.Player,
		components.Observation,
		components.Command,
	]
	ballMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Ball,
		components.Observation,
	]
	players ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Stamina,
		components.Player,
		components.Observation,
		components.Command,
	]

	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	bodyMap   *ecs.Map1[components.Body]
	playerMap *ecs.Map1[components.Player]
	cmdMap    *ecs.Map1[components.Command]
	obsMap    *ecs.Map1[components.Observation]
	ballMap   *ecs.Map1[components.Ball]

	agent       world.PlayerID
	agentEntity ecs.Entity
	ballEntity  ecs.Entity

	grid       *systems.SpatialGrid
	neighbors  []systems.Neighbor
	kickRadius float64        // largest kickable area of any player type
	owner      world.PlayerID // player controlling the ball last cycle

	referee     *systems.RefereeSystem
	movement    *systems.MovementSystem
	observation *systems.ObservationSystem
	chase       *systems.ChaseSystem

	table     *intercept.Table
	predictor *intercept.PlayerPredictor
	state     *world.State
	inbox     []message
	replay    *intercept.Snapshot // table before heard messages, kept on flush cycles

	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	stream        *telemetry.Stream
	statsCallback func(telemetry.WindowStats)
	snapshotDir   string
	logStats      bool
	maxCycles     int64
}

// NewMatch creates a match with both teams lined up for the kick-off.
// Output files are created when opts.OutputDir is set.
func NewMatch(opts Options) (*Match, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	statsWindow := opts.StatsWindow
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	w := ecs.NewWorld()
	reg := physics.NewRegistry(cfg)
	rng := rand.New(rand.NewSource(opts.Seed))
	sp := reg.Params

	m := &Match{
		cfg:     cfg,
		reg:     reg,
		world:   w,
		rng:     rng,
		rngSeed: opts.Seed,
		runID:   uuid.NewString(),
		logger:  logger,

		playerMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Stamina,
			components.Player,
			components.Observation,
			components.Command,
		](w),
		ballMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Ball,
			components.Observation,
		](w),
		players: *ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Stamina,
			components.Player,
			components.Observation,
			components.Command,
		](w),
		posMap:    ecs.NewMap1[components.Position](w),
		velMap:    ecs.NewMap1[components.Velocity](w),
		bodyMap:   ecs.NewMap1[components.Body](w),
		playerMap: ecs.NewMap1[components.Player](w),
		cmdMap:    ecs.NewMap1[components.Command](w),
		obsMap:    ecs.NewMap1[components.Observation](w),
		ballMap:   ecs.NewMap1[components.Ball](w),

		agent: world.NewPlayerID(world.SideLeft, cfg.Match.AgentUnum),
		grid:  systems.NewSpatialGrid(sp.PitchHalfLength, sp.PitchHalfWidth, fieldMargin, cfg.Match.GridCellSize),

		referee:     systems.NewRefereeSystem(w, sp, cfg.Match.HalfTimeCycles),
		movement:    systems.NewMovementSystem(w, reg, rng, fieldMargin),
		observation: systems.NewObservationSystem(w, cfg.Match, rng),
		chase:       systems.NewChaseSystem(w, reg, cfg.Match, rng),

		table:     intercept.NewTable(cfg, logger),
		predictor: intercept.NewPlayerPredictor(cfg.Intercept, cfg.Table.Unreachable),

		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(statsWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		stream:        opts.Stream,
		statsCallback: opts.StatsCallback,
		snapshotDir:   opts.SnapshotDir,
		logStats:      opts.LogStats,
		maxCycles:     opts.MaxCycles,
	}
	m.table.SetTimer(m.perf)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}
	m.output = output

	m.spawnTeams()
	m.state = m.buildState()
	return m, nil
}

// Step runs one cycle. It returns false once the match is over.
func (m *Match) Step() bool {
	if m.referee.Mode == world.TimeOver {
		return false
	}

	m.perf.StartTick()

	m.perf.StartPhase(telemetry.PhaseReferee)
	if m.referee.Update(m.world) {
		m.collector.Record(telemetry.NewModeChangeEvent(m.Cycle(), m.referee.Mode))
		m.logger.Debug("mode change", "cycle", m.Cycle(), "mode", m.referee.Mode, "side", m.referee.KickSide, "score", m.referee.Score)
	}
	cycle := m.Cycle()

	m.perf.StartPhase(telemetry.PhaseMovement)
	m.movement.Update(m.world, cycle)

	m.perf.StartPhase(telemetry.PhaseObservation)
	eye := m.posMap.Get(m.agentEntity).Vec()
	facing := m.bodyMap.Get(m.agentEntity).Dir
	m.observation.Update(m.world, m.agent, eye, facing)

	m.perf.StartPhase(telemetry.PhaseSnapshot)
	m.state = m.buildState()
	m.updateGrid()

	m.table.Update(m.state)
	m.recordTableUpdate(cycle)

	m.perf.StartPhase(telemetry.PhaseMessages)
	if m.snapshotDir != "" && m.collector.ShouldFlush(cycle) {
		snap := m.table.Snapshot()
		m.replay = &snap
	}
	m.deliverMessages(cycle)
	m.trackPossession(cycle)
	m.inbox = m.composeMessages(cycle, m.inbox[:0])

	m.perf.StartPhase(telemetry.PhaseChase)
	*m.cmdMap.Get(m.agentEntity) = m.decideAgent(cycle)
	m.chase.Update(m.world, systems.Situation{
		Mode:     m.referee.Mode,
		KickSide: m.referee.KickSide,
		Agent:    m.agent,
	})

	m.perf.StartPhase(telemetry.PhaseTelemetry)
	m.writeTable()
	m.flushTelemetry(cycle)

	m.perf.EndTick()
	return m.referee.Mode != world.TimeOver
}

// Run steps the match until time over, the cycle limit or cancellation.
func (m *Match) Run(ctx context.Context) error {
	for m.maxCycles <= 0 || m.Cycle() < m.maxCycles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !m.Step() {
			m.logger.Info("time over", "cycle", m.Cycle(), "score", m.referee.Score)
			return nil
		}
	}
	m.logger.Info("max cycles reached", "cycle", m.Cycle())
	return nil
}

// recordTableUpdate turns the outcome of the last table update into events.
func (m *Match) recordTableUpdate(cycle int64) {
	if !m.table.Valid() {
		m.collector.Record(telemetry.NewTableSkippedEvent(cycle))
		return
	}
	m.collector.Record(telemetry.NewTableUpdateEvent(cycle, m.table.SelfStep(), len(m.table.SelfCandidates())))
	if m.table.Fallback() {
		m.collector.Record(telemetry.NewFallbackEvent(cycle))
	}
}

// Close flushes and closes the output files.
func (m *Match) Close() error {
	return m.output.Close()
}

// Cycle returns the current match cycle.
func (m *Match) Cycle() int64 { return m.referee.Time.Cycle }

// Mode returns the current game mode.
func (m *Match) Mode() world.GameMode { return m.referee.Mode }

// Score returns the goals scored so far.
func (m *Match) Score() systems.Score { return m.referee.Score }

// Agent returns the identity of the player the table is built for.
func (m *Match) Agent() world.PlayerID { return m.agent }

// Table returns the agent's interception table.
func (m *Match) Table() *intercept.Table { return m.table }

// State returns the world as the agent saw it in the last cycle.
func (m *Match) State() *world.State { return m.state }

// Collector returns the telemetry collector.
func (m *Match) Collector() *telemetry.Collector { return m.collector }

// RunID returns the unique id of this run.
func (m *Match) RunID() string { return m.runID }

// Seed returns the RNG seed.
func (m *Match) Seed() int64 { return m.rngSeed }
