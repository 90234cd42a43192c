// Package physics runs the force-directed layout simulation: inverse-square
// repulsion between all node pairs, spring attraction along edges, and a
// centering pull, integrated with damped velocities until the layout settles.
package physics

import (
	"math"

	"github.com/mheland/notegraph/pkg/graph"
)

// body is one node's simulation state. The engine owns these exclusively
// between Reset and Flush; render code only ever sees flushed copies.
type body struct {
	x, y        float64
	vx, vy      float64
	connections int
	dragging    bool
}

// Engine integrates node positions one step per animation frame. It keeps
// its own buffer of positions and velocities, mutated in place each step,
// and copies the result back into the graph once per frame via Flush.
type Engine struct {
	cfg    Config
	bodies []body
	edges  [][2]int // node index pairs
}

// NewEngine creates an engine seeded from the graph's current node positions
func NewEngine(cfg Config, g *graph.Graph) *Engine {
	e := &Engine{cfg: cfg}
	e.Reset(g)
	return e
}

// Reset reloads the simulation buffer from a graph, zeroing all velocities
func (e *Engine) Reset(g *graph.Graph) {
	e.bodies = make([]body, g.NodeCount())
	for i, node := range g.Nodes {
		e.bodies[i] = body{x: node.X, y: node.Y, connections: node.ConnectionCount}
	}

	e.edges = e.edges[:0]
	index := make(map[string]int, g.NodeCount())
	for i, node := range g.Nodes {
		index[node.ID] = i
	}
	for _, edge := range g.Edges {
		e.edges = append(e.edges, [2]int{index[edge.Source], index[edge.Target]})
	}
}

// Step advances the simulation by one frame. Dragged nodes receive no forces
// and do not move.
func (e *Engine) Step() {
	n := len(e.bodies)
	if n == 0 {
		return
	}

	fx := make([]float64, n)
	fy := make([]float64, n)

	// Pairwise repulsion, inverse-square with the distance floored at 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := e.bodies[i].x - e.bodies[j].x
			dy := e.bodies[i].y - e.bodies[j].y
			dist := math.Max(1, math.Hypot(dx, dy))

			f := e.cfg.Repulsion / (dist * dist)
			ux := dx / dist
			uy := dy / dist

			fx[i] += ux * f
			fy[i] += uy * f
			fx[j] -= ux * f
			fy[j] -= uy * f
		}
	}

	// Spring attraction along edges, inactive inside MinSpringLength so
	// linked nodes never collapse onto each other
	for _, edge := range e.edges {
		a, b := edge[0], edge[1]
		dx := e.bodies[b].x - e.bodies[a].x
		dy := e.bodies[b].y - e.bodies[a].y
		if math.Hypot(dx, dy) <= e.cfg.MinSpringLength {
			continue
		}

		fx[a] += dx * e.cfg.Attraction
		fy[a] += dy * e.cfg.Attraction
		fx[b] -= dx * e.cfg.Attraction
		fy[b] -= dy * e.cfg.Attraction
	}

	// Centering pull toward the origin; hubs get proportionally more
	for i := range e.bodies {
		strength := e.cfg.Gravity + e.cfg.HubGravity*float64(e.bodies[i].connections)
		fx[i] -= e.bodies[i].x * strength
		fy[i] -= e.bodies[i].y * strength
	}

	// Integrate: damp, clamp, zero out the dregs, then move
	for i := range e.bodies {
		bd := &e.bodies[i]
		if bd.dragging {
			continue
		}

		bd.vx = (bd.vx + fx[i]) * e.cfg.Damping
		bd.vy = (bd.vy + fy[i]) * e.cfg.Damping

		speed := math.Hypot(bd.vx, bd.vy)
		if speed > e.cfg.MaxVelocity {
			scale := e.cfg.MaxVelocity / speed
			bd.vx *= scale
			bd.vy *= scale
		}

		if math.Abs(bd.vx) < e.cfg.SettleEpsilon {
			bd.vx = 0
		}
		if math.Abs(bd.vy) < e.cfg.SettleEpsilon {
			bd.vy = 0
		}

		bd.x += bd.vx
		bd.y += bd.vy
	}
}

// Settled reports whether every non-dragged node's velocity has been zeroed
func (e *Engine) Settled() bool {
	for i := range e.bodies {
		bd := &e.bodies[i]
		if !bd.dragging && (bd.vx != 0 || bd.vy != 0) {
			return false
		}
	}
	return true
}

// SetDragging marks a node as user-held. While held it is excluded from
// force application and integration; its position comes only from SetPosition.
func (e *Engine) SetDragging(i int, dragging bool) {
	if i < 0 || i >= len(e.bodies) {
		return
	}
	e.bodies[i].dragging = dragging
}

// SetPosition moves a node directly and zeroes its velocity (user drag)
func (e *Engine) SetPosition(i int, x, y float64) {
	if i < 0 || i >= len(e.bodies) {
		return
	}
	e.bodies[i].x = x
	e.bodies[i].y = y
	e.bodies[i].vx = 0
	e.bodies[i].vy = 0
}

// Position returns a node's current simulated position
func (e *Engine) Position(i int) (x, y float64) {
	return e.bodies[i].x, e.bodies[i].y
}

// Flush copies the simulation buffer into the graph's render-visible node
// state. Called once per frame after Step.
func (e *Engine) Flush(g *graph.Graph) {
	if len(e.bodies) != g.NodeCount() {
		return
	}
	for i, node := range g.Nodes {
		node.X = e.bodies[i].x
		node.Y = e.bodies[i].y
		node.VX = e.bodies[i].vx
		node.VY = e.bodies[i].vy
		node.Dragging = e.bodies[i].dragging
	}
}
