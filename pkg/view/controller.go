package view

import (
	"math"

	"github.com/mheland/notegraph/pkg/graph"
)

// Simulation is the slice of the physics engine the controller needs to pin
// and move dragged nodes.
type Simulation interface {
	SetDragging(i int, dragging bool)
	SetPosition(i int, x, y float64)
}

// Controller runs the pointer state machine: a press on a node starts a
// drag, a press on the background starts a pan, and idle movement drives
// hover highlighting.
type Controller struct {
	cam *Camera
	sim Simulation

	dragIndex    int
	panning      bool
	lastX, lastY float64
	hoverIndex   int
}

// NewController creates a controller over a camera and simulation
func NewController(cam *Camera, sim Simulation) *Controller {
	return &Controller{
		cam:        cam,
		sim:        sim,
		dragIndex:  -1,
		hoverIndex: -1,
	}
}

// Reset clears all in-flight pointer state. Called on every graph rebuild so
// no drag or hover survives into the new generation.
func (ct *Controller) Reset() {
	if ct.dragIndex >= 0 {
		ct.sim.SetDragging(ct.dragIndex, false)
	}
	ct.dragIndex = -1
	ct.panning = false
	ct.hoverIndex = -1
}

// PointerDown starts a node drag if a node is hit, otherwise a background pan
func (ct *Controller) PointerDown(g *graph.Graph, revealed int, sx, sy float64) {
	ct.lastX, ct.lastY = sx, sy

	if hit := ct.cam.HitTest(g, revealed, sx, sy); hit >= 0 {
		ct.dragIndex = hit
		ct.sim.SetDragging(hit, true)
		return
	}
	ct.panning = true
}

// PointerMove updates the active drag or pan, or recomputes hover when idle
func (ct *Controller) PointerMove(g *graph.Graph, revealed int, sx, sy float64) {
	dx, dy := sx-ct.lastX, sy-ct.lastY
	ct.lastX, ct.lastY = sx, sy

	switch {
	case ct.dragIndex >= 0:
		gx, gy := ct.cam.ScreenToGraph(sx, sy)
		ct.sim.SetPosition(ct.dragIndex, gx, gy)
	case ct.panning:
		ct.cam.Pan(dx, dy)
	default:
		ct.hoverIndex = ct.cam.HitTest(g, revealed, sx, sy)
	}
}

// PointerUp ends the current drag or pan
func (ct *Controller) PointerUp() {
	if ct.dragIndex >= 0 {
		ct.sim.SetDragging(ct.dragIndex, false)
		ct.dragIndex = -1
	}
	ct.panning = false
}

// Wheel applies a multiplicative zoom from a wheel delta
func (ct *Controller) Wheel(delta float64) {
	ct.cam.ZoomBy(math.Exp(-delta * 0.001))
}

// DoubleClick returns the ID of the note under the pointer, or "" if the
// double-click hit the background.
func (ct *Controller) DoubleClick(g *graph.Graph, revealed int, sx, sy float64) string {
	if hit := ct.cam.HitTest(g, revealed, sx, sy); hit >= 0 {
		return g.Nodes[hit].ID
	}
	return ""
}

// Dragging returns the index of the node being dragged, or -1
func (ct *Controller) Dragging() int {
	return ct.dragIndex
}

// Hovered returns the hovered node index (-1 when none) and the indices of
// nodes connected to it by an edge. Drives highlight/dim rendering.
func (ct *Controller) Hovered(g *graph.Graph) (int, []int) {
	if ct.hoverIndex < 0 || ct.hoverIndex >= g.NodeCount() {
		return -1, nil
	}
	return ct.hoverIndex, g.Neighbors(ct.hoverIndex)
}
