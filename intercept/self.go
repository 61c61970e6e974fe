package intercept

import (
	"io"
	"log/slog"
	"math"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/physics"
	"github.com/pthm-cable/striker/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// recoveryEps is the recovery drop that marks a plan as exhausting.
const recoveryEps = 1e-5

// SelfSimulator enumerates the agent's own interception plans.
type SelfSimulator struct {
	cfg      config.InterceptConfig
	maxCycle int
	logger   *slog.Logger
}

// NewSelfSimulator creates a simulator. maxCycle bounds every horizon.
// A nil logger disables debug traces.
func NewSelfSimulator(cfg config.InterceptConfig, maxCycle int, logger *slog.Logger) *SelfSimulator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if maxCycle < 1 {
		maxCycle = 1
	}
	return &SelfSimulator{cfg: cfg, maxCycle: maxCycle, logger: logger}
}

// Simulate returns the sorted, deduplicated candidate plans for reaching
// the ball within maxStep cycles. The list is never empty.
func (s *SelfSimulator) Simulate(ws *world.State, cache *BallCache, maxStep int) []Intercept {
	list, _ := s.simulate(ws, cache, maxStep)
	return list
}

// simulate also reports whether the list holds only the fallback plan.
func (s *SelfSimulator) simulate(ws *world.State, cache *BallCache, maxStep int) ([]Intercept, bool) {
	maxStep = min(max(maxStep, 1), s.maxCycle)
	c := s.newContext(ws, cache)

	if cand, ok := c.simulateNoDash(); ok {
		s.logger.Debug("no dash", "time", ws.Time, "candidate", cand)
		return []Intercept{cand}, false
	}

	var list []Intercept
	list = append(list, c.simulateOneDash()...)
	s.logger.Debug("one dash", "time", ws.Time, "count", len(list))

	passes := []bool{false}
	if !c.self.Stamina.CapacityIsEmpty(c.pt) {
		passes = append(passes, true)
	}
	for _, exhaust := range passes {
		n := len(list)
		list = append(list, c.simulateTurnDash(false, exhaust, maxStep)...)
		list = append(list, c.simulateTurnDash(true, exhaust, maxStep)...)
		if c.m.OmniDash() {
			list = append(list, c.simulateOmniDash(exhaust, maxStep)...)
		}
		s.logger.Debug("multi dash", "time", ws.Time, "exhaust", exhaust, "count", len(list)-n)
	}

	fallback := len(list) == 0
	if fallback {
		cand := c.simulateFinal(maxStep)
		s.logger.Debug("fallback", "time", ws.Time, "candidate", cand)
		list = append(list, cand)
	}

	list = SortAndDedupe(list, s.cfg.StaminaTieThreshold)
	s.logger.Debug("self intercept", "time", ws.Time, "candidates", len(list), "best", list[0])
	return list, fallback
}

// selfContext carries the per-call inputs shared by every strategy.
type selfContext struct {
	cfg      config.InterceptConfig
	maxCycle int
	ws       *world.State
	cache    *BallCache
	m        physics.Model
	sp       *physics.ServerParams
	pt       *physics.PlayerType
	self     *world.Self

	goalieCatch bool
	noiseBuf    float64
}

func (s *SelfSimulator) newContext(ws *world.State, cache *BallCache) *selfContext {
	return &selfContext{
		cfg:         s.cfg,
		maxCycle:    s.maxCycle,
		ws:          ws,
		cache:       cache,
		m:           ws.Model,
		sp:          ws.Model.Params(),
		pt:          ws.Self.Type,
		self:        &ws.Self,
		goalieCatch: ws.Self.Goalie && ws.Mode.AllowsGoalieCatch(),
		noiseBuf:    math.Min(s.cfg.BallNoiseBufMax, float64(ws.Ball.PosCount)*s.cfg.BallNoiseBuf),
	}
}

// controlArea is the ball control radius when the ball is at ballPos.
func (c *selfContext) controlArea(ballPos geom.Vec) float64 {
	if c.goalieCatch && c.sp.InOurPenaltyArea(ballPos, 0) {
		return c.pt.CatchableArea
	}
	return c.pt.KickableArea
}

// ballVel returns the projected ball velocity after step cycles.
func (c *selfContext) ballVel(step int) geom.Vec {
	return r2.Scale(math.Pow(c.sp.BallDecay, float64(step)), c.cache.Vel())
}

// exhausted reports whether st has lost recovery relative to the start.
func (c *selfContext) exhausted(st physics.StaminaModel) StaminaType {
	if st.Recovery < c.self.Stamina.Recovery-recoveryEps {
		return Exhaust
	}
	return Normal
}

// dashAxis describes how to accelerate towards a body-relative direction.
type dashAxis struct {
	dir    float64 // movement direction relative to the body
	cmdDir float64 // direction sent with the dash command
	sign   float64 // sign of the dash power
}

// axis maps a movement direction onto a dash command. Models without
// omni dash move backwards with negative power.
func (c *selfContext) axis(dir float64) dashAxis {
	dir = geom.NormalizeAngle(dir)
	if !c.m.OmniDash() && math.Abs(dir) > 90 {
		return dashAxis{dir: dir, cmdDir: 0, sign: -1}
	}
	return dashAxis{dir: dir, cmdDir: dir, sign: 1}
}

// rate returns the acceleration per unit of power magnitude along ax.
func (c *selfContext) rate(ax dashAxis, effort float64) float64 {
	return physics.DashRate(c.m, c.pt, effort, ax.dir)
}

// powerLimit returns the largest dash power magnitude along ax allowed by
// st. Without exhaust the stamina recovery must stay intact.
func (c *selfContext) powerLimit(st physics.StaminaModel, ax dashAxis, exhaust bool) float64 {
	want := c.sp.MaxDashPower
	if ax.sign < 0 {
		want = c.sp.MinDashPower
	}
	if exhaust {
		return math.Abs(st.AvailableDashPower(c.pt, want))
	}
	return math.Abs(st.SafeDashPower(c.pt, want, c.cfg.SafeStaminaBuf))
}

// dash applies one dash of the given signed power to the kinematic state.
func (c *selfContext) dash(pos, vel *geom.Vec, st *physics.StaminaModel, body float64, ax dashAxis, power float64) {
	accel := physics.DashAccel(c.m, c.pt, st.Effort, power, body, ax.cmdDir)
	*vel = geom.LimitLength(r2.Add(*vel, accel), c.pt.PlayerSpeedMax)
	*pos = r2.Add(*pos, *vel)
	*vel = r2.Scale(c.pt.PlayerDecay, *vel)
	st.SimulateDash(c.pt, power)
}

// coast advances the kinematic state by one cycle without dashing.
func (c *selfContext) coast(pos, vel *geom.Vec, st *physics.StaminaModel) {
	*pos = r2.Add(*pos, *vel)
	*vel = r2.Scale(c.pt.PlayerDecay, *vel)
	st.SimulateWait(c.pt)
}

// coastReaches reports whether coasting for n cycles from pos with vel
// ends within radius of ball, or carries the player past it.
func (c *selfContext) coastReaches(pos, vel, ball geom.Vec, n int, radius float64) bool {
	end := c.pt.InertiaPoint(pos, vel, n)
	if geom.Dist(end, ball) <= radius {
		return true
	}
	toBall := r2.Sub(ball, pos)
	toEnd := r2.Sub(end, pos)
	if r2.Norm(toEnd) < geom.Epsilon {
		return false
	}
	// Overshoot along the line of travel with the ball inside the lane.
	along := r2.Dot(toBall, r2.Unit(toEnd))
	if along < 0 || along > r2.Norm(toEnd) {
		return false
	}
	lateral := math.Sqrt(math.Max(0, r2.Norm2(toBall)-along*along))
	return lateral <= radius
}

// turnsToFace simulates turning from body towards target until within
// margin degrees. It returns the resulting body, the number of turns
// and false when more than limit turns would be needed.
func (c *selfContext) turnsToFace(body, target, margin, speed float64, limit int) (float64, int, bool) {
	n := 0
	for geom.AngleDiff(target, body) > margin {
		if n >= limit {
			return body, n, false
		}
		maxTurn := c.m.EffectiveTurn(c.pt, c.sp.MaxMoment, speed)
		diff := geom.NormalizeAngle(target - body)
		body = geom.NormalizeAngle(body + geom.Clamp(diff, -maxTurn, maxTurn))
		speed *= c.pt.PlayerDecay
		n++
	}
	return body, n, true
}

// turnMargin is the aiming tolerance for a target dist metres away.
func (c *selfContext) turnMargin(control, dist float64) float64 {
	margin := c.cfg.MinTurnMargin
	if dist > geom.Epsilon {
		margin = math.Max(margin, math.Asin(math.Min(1, control/dist))*180/math.Pi)
	}
	return margin
}
