// Package config provides configuration loading and access for the agent.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	PlayerTypes []PlayerTypeConfig `yaml:"player_types"`
	Intercept   InterceptConfig    `yaml:"intercept"`
	Table       TableConfig        `yaml:"table"`
	Match       MatchConfig        `yaml:"match"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ServerConfig holds the physical constants of the soccer simulator.
type ServerConfig struct {
	PhysicsModel string `yaml:"physics_model"` // "standard" (omni dash) or "legacy" (forward/back only)

	MaxDashPower  float64 `yaml:"max_dash_power"`
	MinDashPower  float64 `yaml:"min_dash_power"`
	MaxMoment     float64 `yaml:"max_moment"`
	MinMoment     float64 `yaml:"min_moment"`
	MaxDashAngle  float64 `yaml:"max_dash_angle"`
	MinDashAngle  float64 `yaml:"min_dash_angle"`
	DashAngleStep float64 `yaml:"dash_angle_step"` // degrees between legal dash directions
	SideDashRate  float64 `yaml:"side_dash_rate"`
	BackDashRate  float64 `yaml:"back_dash_rate"`

	PlayerAccelMax float64 `yaml:"player_accel_max"`
	PlayerSpeedMax float64 `yaml:"player_speed_max"`

	BallDecay    float64 `yaml:"ball_decay"`
	BallSpeedMax float64 `yaml:"ball_speed_max"`
	BallSize     float64 `yaml:"ball_size"`
	MaxPower     float64 `yaml:"max_power"` // kick power

	StaminaMax      float64 `yaml:"stamina_max"`
	StaminaIncMax   float64 `yaml:"stamina_inc_max"`
	StaminaCapacity float64 `yaml:"stamina_capacity"` // negative disables capacity
	RecoverDecThr   float64 `yaml:"recover_dec_thr"`
	RecoverDec      float64 `yaml:"recover_dec"`
	RecoverMin      float64 `yaml:"recover_min"`
	EffortDecThr    float64 `yaml:"effort_dec_thr"`
	EffortDec       float64 `yaml:"effort_dec"`
	EffortIncThr    float64 `yaml:"effort_inc_thr"`
	EffortInc       float64 `yaml:"effort_inc"`

	CatchAreaLength float64 `yaml:"catch_area_length"`
	CatchAreaWidth  float64 `yaml:"catch_area_width"`

	PitchLength       float64 `yaml:"pitch_length"`
	PitchWidth        float64 `yaml:"pitch_width"`
	PenaltyAreaLength float64 `yaml:"penalty_area_length"`
	PenaltyAreaWidth  float64 `yaml:"penalty_area_width"`
}

// PlayerTypeConfig holds one heterogeneous player type.
type PlayerTypeConfig struct {
	ID               int     `yaml:"id"`
	PlayerDecay      float64 `yaml:"player_decay"`
	InertiaMoment    float64 `yaml:"inertia_moment"`
	DashPowerRate    float64 `yaml:"dash_power_rate"`
	PlayerSize       float64 `yaml:"player_size"`
	KickableMargin   float64 `yaml:"kickable_margin"`
	KickRand         float64 `yaml:"kick_rand"`
	ExtraStamina     float64 `yaml:"extra_stamina"`
	EffortMax        float64 `yaml:"effort_max"`
	EffortMin        float64 `yaml:"effort_min"`
	KickPowerRate    float64 `yaml:"kick_power_rate"`
	CatchAreaStretch float64 `yaml:"catch_area_stretch"`
	PlayerSpeedMax   float64 `yaml:"player_speed_max"` // 0 = use server value
	StaminaIncMax    float64 `yaml:"stamina_inc_max"`  // 0 = use server value
}

// InterceptConfig holds the policy constants of the self interception
// simulator and the player predictor.
type InterceptConfig struct {
	ControlAreaBuf         float64 `yaml:"control_area_buf"`       // distance kept inside the control radius
	SafetyDistBuf          float64 `yaml:"safety_dist_buf"`        // one-dash "safe" distance margin
	BackDashBuf            float64 `yaml:"back_dash_buf"`          // extra buffer when dashing backwards
	BallNoiseBuf           float64 `yaml:"ball_noise_buf"`         // buffer per ball observation age
	BallNoiseBufMax        float64 `yaml:"ball_noise_buf_max"`     // cap of the noise buffer
	MinTurnMargin          float64 `yaml:"min_turn_margin"`        // degrees
	BackDashThreshold      int     `yaml:"back_dash_threshold"`    // cycles
	MaxSuccessCount        int     `yaml:"max_success_count"`      // per strategy and stamina pass
	StaminaTieThreshold    float64 `yaml:"stamina_tie_threshold"`  // ranking tie band
	SafeStaminaBuf         float64 `yaml:"safe_stamina_buf"`       // stamina kept above the recover threshold
	KickStopMargin         float64 `yaml:"kick_stop_margin"`       // kick accel must exceed ball speed by this factor
	MinDashAngleStep       float64 `yaml:"min_dash_angle_step"`    // coarsest bin width used in searches
	PlayerStaleMoveRate    float64 `yaml:"player_stale_move_rate"` // fraction of max speed assumed per unseen cycle
	PlayerDistNoiseRate    float64 `yaml:"player_dist_noise_rate"` // distance noise per metre from self
	UnknownBodyTurnPenalty int     `yaml:"unknown_body_turn_penalty"`
}

// TableConfig holds interception table parameters.
type TableConfig struct {
	MaxCycle          int     `yaml:"max_cycle"`            // ball cache horizon and fallback bound
	Unreachable       int     `yaml:"unreachable"`          // sentinel reach step
	StalePosCount     int     `yaml:"stale_pos_count"`      // players at or above are skipped
	PitchMargin       float64 `yaml:"pitch_margin"`         // ball cache stops beyond pitch + margin
	BallStopSpeed     float64 `yaml:"ball_stop_speed"`      // ball cache stops under this speed...
	BallStopMinCycles int     `yaml:"ball_stop_min_cycles"` // ...after at least this many cycles
}

// MatchConfig holds sandbox match parameters.
type MatchConfig struct {
	PlayersPerSide int     `yaml:"players_per_side"`
	HalfTimeCycles int     `yaml:"half_time_cycles"`
	VisibleDist    float64 `yaml:"visible_dist"`   // players within are observed every cycle
	ViewWidth      float64 `yaml:"view_width"`     // degrees of the agent's view cone
	ObserveChance  float64 `yaml:"observe_chance"` // chance to observe a player outside the cone
	SayInterval    int     `yaml:"say_interval"`   // cycles between teammate intercept messages
	KickSpeedMin   float64 `yaml:"kick_speed_min"`
	KickSpeedMax   float64 `yaml:"kick_speed_max"`
	GridCellSize   float64 `yaml:"grid_cell_size"`
	AgentUnum      int     `yaml:"agent_unum"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // cycles per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	MaxCandidatesLogged int `yaml:"max_candidates_logged"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	PitchHalfLength  float64
	PitchHalfWidth   float64
	PenaltyAreaHalfW float64
	CatchableArea    float64
	RecoverDecThrVal float64
	EffortDecThrVal  float64
	EffortIncThrVal  float64
	PlayerTypeIndex  map[int]int // id -> index into PlayerTypes
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns a fresh copy of the embedded defaults.
// Panics if the embedded file is malformed.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.PlayerTypes = append([]PlayerTypeConfig(nil), c.PlayerTypes...)
	out.computeDerived()
	return &out
}

func (c *Config) validate() error {
	switch c.Server.PhysicsModel {
	case "", "standard", "legacy":
	default:
		return fmt.Errorf("unknown physics model %q", c.Server.PhysicsModel)
	}
	if c.Server.BallDecay <= 0 || c.Server.BallDecay >= 1 {
		return fmt.Errorf("ball_decay must be in (0,1), got %v", c.Server.BallDecay)
	}
	if c.Table.MaxCycle < 1 {
		return fmt.Errorf("table.max_cycle must be positive, got %d", c.Table.MaxCycle)
	}
	if len(c.PlayerTypes) == 0 {
		return fmt.Errorf("at least one player type is required")
	}
	for _, pt := range c.PlayerTypes {
		if pt.PlayerDecay <= 0 || pt.PlayerDecay >= 1 {
			return fmt.Errorf("player type %d: player_decay must be in (0,1)", pt.ID)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	s := &c.Server
	if s.PhysicsModel == "" {
		s.PhysicsModel = "standard"
	}

	c.Derived.PitchHalfLength = s.PitchLength * 0.5
	c.Derived.PitchHalfWidth = s.PitchWidth * 0.5
	c.Derived.PenaltyAreaHalfW = s.PenaltyAreaWidth * 0.5
	c.Derived.CatchableArea = math.Sqrt(math.Pow(s.CatchAreaWidth*0.5, 2) + math.Pow(s.CatchAreaLength, 2))
	c.Derived.RecoverDecThrVal = s.RecoverDecThr * s.StaminaMax
	c.Derived.EffortDecThrVal = s.EffortDecThr * s.StaminaMax
	c.Derived.EffortIncThrVal = s.EffortIncThr * s.StaminaMax

	c.Derived.PlayerTypeIndex = make(map[int]int, len(c.PlayerTypes))
	for i := range c.PlayerTypes {
		pt := &c.PlayerTypes[i]
		if pt.PlayerSpeedMax == 0 {
			pt.PlayerSpeedMax = s.PlayerSpeedMax
		}
		if pt.StaminaIncMax == 0 {
			pt.StaminaIncMax = s.StaminaIncMax
		}
		c.Derived.PlayerTypeIndex[pt.ID] = i
	}
}

// PlayerType returns the player type with the given id, falling back to
// the first configured type.
func (c *Config) PlayerType(id int) *PlayerTypeConfig {
	if i, ok := c.Derived.PlayerTypeIndex[id]; ok {
		return &c.PlayerTypes[i]
	}
	return &c.PlayerTypes[0]
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
