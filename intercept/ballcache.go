package intercept

import (
	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/geom"
	"github.com/pthm-cable/striker/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// BallCache holds the predicted ball positions for steps 0..N of one
// cycle. It is built once and read by every predictor.
type BallCache struct {
	pos     []geom.Vec
	vel     geom.Vec
	horizon int
}

// NewBallCache projects the ball forward under pure decay. The velocity
// is treated as zero while an opponent can kick the ball. Projection
// stops once the ball leaves the pitch or comes to rest. A ball at rest
// stays reachable for the full horizon.
func NewBallCache(ws *world.State, tc config.TableConfig) *BallCache {
	sp := ws.Model.Params()

	vel := ws.Ball.Vel
	if ws.KickableOpponent() != nil {
		vel = geom.Vec{}
	}

	c := &BallCache{
		pos: make([]geom.Vec, 0, tc.MaxCycle+1),
		vel: vel,
	}
	pos := ws.Ball.Pos
	v := vel
	for step := 0; step <= tc.MaxCycle; step++ {
		c.pos = append(c.pos, pos)
		if step >= tc.BallStopMinCycles && r2.Norm(v) < tc.BallStopSpeed {
			c.horizon = tc.MaxCycle
			break
		}
		if sp.OutOfPitch(pos, tc.PitchMargin) {
			break
		}
		pos = r2.Add(pos, v)
		v = r2.Scale(sp.BallDecay, v)
	}
	return c
}

// Pos returns the predicted ball position after step cycles. Steps past
// the end of the cache return the last position.
func (c *BallCache) Pos(step int) geom.Vec {
	if len(c.pos) == 0 {
		return geom.Vec{}
	}
	if step < 0 {
		step = 0
	}
	if step >= len(c.pos) {
		return c.pos[len(c.pos)-1]
	}
	return c.pos[step]
}

// Vel returns the initial ball velocity used for the projection.
func (c *BallCache) Vel() geom.Vec { return c.vel }

// Len returns the number of cached positions.
func (c *BallCache) Len() int { return len(c.pos) }

// MaxStep is the longest horizon worth simulating: the last cached step,
// or the full horizon when the ball came to rest.
func (c *BallCache) MaxStep() int {
	return max(1, len(c.pos)-1, c.horizon)
}

// Stopped reports whether the ball comes to rest inside the pitch.
func (c *BallCache) Stopped() bool { return c.horizon > 0 }
