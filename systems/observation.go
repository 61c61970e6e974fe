package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/world"
)

// ObservationSystem ages and refreshes the agent's observations of the
// other players and the ball.
//
// Entities within the visible distance are seen completely. Entities in
// the view cone are seen with their velocity only when closer than twice
// the visible distance. Outside the cone a position may still come in with
// the configured chance, otherwise every count ages by one cycle.
type ObservationSystem struct {
	players ecs.Filter5[components.Position, components.Velocity, components.Body, components.Player, components.Observation]
	ball    ecs.Filter4[components.Position, components.Velocity, components.Ball, components.Observation]
	cfg     config.MatchConfig
	rng     *rand.Rand
}

// NewObservationSystem creates an observation system.
func NewObservationSystem(w *ecs.World, cfg config.MatchConfig, rng *rand.Rand) *ObservationSystem {
	return &ObservationSystem{
		players: *ecs.NewFilter5[components.Position, components.Velocity, components.Body, components.Player, components.Observation](w),
		ball:    *ecs.NewFilter4[components.Position, components.Velocity, components.Ball, components.Observation](w),
		cfg:     cfg,
		rng:     rng,
	}
}

// Update refreshes observations as seen by the agent at eye facing the
// given direction.
func (s *ObservationSystem) Update(w *ecs.World, agent world.PlayerID, eye geom.Vec, facing float64) {
	query := s.players.Query()
	for query.Next() {
		pos, vel, body, pl, obs := query.Get()
		if pl.ID == agent {
			obs.See(pos.Vec(), vel.Vec(), body.Dir, true, true)
			continue
		}
		s.observe(obs, eye, facing, pos.Vec(), vel.Vec(), body.Dir)
	}

	bq := s.ball.Query()
	for bq.Next() {
		pos, vel, _, obs := bq.Get()
		s.observe(obs, eye, facing, pos.Vec(), vel.Vec(), 0)
	}
}

func (s *ObservationSystem) observe(obs *components.Observation, eye geom.Vec, facing float64, pos, vel geom.Vec, body float64) {
	delta := r2.Sub(pos, eye)
	dist := r2.Norm(delta)
	switch {
	case dist <= s.cfg.VisibleDist:
		obs.See(pos, vel, body, true, true)
	case geom.AngleDiff(geom.AngleOf(delta), facing) <= s.cfg.ViewWidth*0.5:
		obs.See(pos, vel, body, dist <= 2*s.cfg.VisibleDist, true)
	case s.rng.Float64() < s.cfg.ObserveChance:
		obs.See(pos, vel, body, false, false)
	default:
		obs.Age()
	}
}
