// Package components defines ECS components for the match sandbox.
package components

import "github.com/pthm-cable/striker/geom"

// Position represents an entity's pitch position in metres.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() geom.Vec { return geom.Vec{X: p.X, Y: p.Y} }

// Set stores v.
func (p *Position) Set(v geom.Vec) { p.X, p.Y = v.X, v.Y }

// Velocity represents an entity's velocity in metres per cycle.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() geom.Vec { return geom.Vec{X: v.X, Y: v.Y} }

// Set stores w.
func (v *Velocity) Set(w geom.Vec) { v.X, v.Y = w.X, w.Y }

// Body holds a player's body direction.
type Body struct {
	Dir float64 // degrees
}
