// Package systems provides ECS systems for the match sandbox.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/striker/components"
	"github.com/pthm-cable/striker/geom"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	Delta  geom.Vec // from the query origin to the entity
	DistSq float64
}

// SpatialGrid provides cell-based neighbour lookups over the pitch.
// Coordinates are centred on the pitch; the grid covers the pitch plus
// margin on every side and clamps anything beyond into the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	originX  float64
	originY  float64
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a grid covering a pitch of the given half extents
// grown by margin.
func NewSpatialGrid(halfLength, halfWidth, margin, cellSize float64) *SpatialGrid {
	width := 2 * (halfLength + margin)
	height := 2 * (halfWidth + margin)
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		originX:  -(halfLength + margin),
		originY:  -(halfWidth + margin),
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos geom.Vec) {
	col, row := g.cell(pos)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 32

// QueryRadiusInto finds entities within radius of pos and appends them to
// dst, up to MaxQueryResults. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos geom.Vec, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cell(pos)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				p := posMap.Get(e)
				if p == nil {
					continue
				}
				delta := geom.Vec{X: p.X - pos.X, Y: p.Y - pos.Y}
				distSq := delta.X*delta.X + delta.Y*delta.Y
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// Nearest returns the neighbor with the smallest distance, or false when
// the list is empty.
func Nearest(list []Neighbor) (Neighbor, bool) {
	if len(list) == 0 {
		return Neighbor{}, false
	}
	best := list[0]
	for _, n := range list[1:] {
		if n.DistSq < best.DistSq {
			best = n
		}
	}
	return best, true
}

// cell returns the clamped cell coordinates of a pitch position.
func (g *SpatialGrid) cell(pos geom.Vec) (int, int) {
	col := int((pos.X - g.originX) / g.cellSize)
	row := int((pos.Y - g.originY) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
