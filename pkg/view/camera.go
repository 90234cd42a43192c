// Package view translates between screen and graph coordinates and owns the
// pointer interaction state: pan, zoom, node drag, and hover.
package view

import (
	"math"

	"github.com/mheland/notegraph/pkg/graph"
)

// Zoom bounds. Wheel zoom is multiplicative and clamped to this range.
const (
	MinZoom = 0.2
	MaxZoom = 3.0
)

// Node radii in screen-independent graph units
const (
	baseNodeRadius    = 8.0
	radiusPerLink     = 1.5
	maxNodeRadius     = 22.0
	hitPadding        = 4.0
	minHitTestOpacity = 0.3
)

// Camera maps screen coordinates to graph coordinates. Center is the canvas
// center, the fixed point of zooming.
type Camera struct {
	PanX, PanY       float64
	Zoom             float64
	CenterX, CenterY float64
}

// NewCamera returns a camera at identity zoom with no pan
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// ScreenToGraph converts a screen point to graph space
func (c *Camera) ScreenToGraph(sx, sy float64) (float64, float64) {
	gx := (sx-c.PanX-c.CenterX)/c.Zoom + c.CenterX
	gy := (sy-c.PanY-c.CenterY)/c.Zoom + c.CenterY
	return gx, gy
}

// GraphToScreen converts a graph point to screen space
func (c *Camera) GraphToScreen(gx, gy float64) (float64, float64) {
	sx := (gx-c.CenterX)*c.Zoom + c.CenterX + c.PanX
	sy := (gy-c.CenterY)*c.Zoom + c.CenterY + c.PanY
	return sx, sy
}

// ZoomBy scales the current zoom by factor, clamped to [MinZoom, MaxZoom]
func (c *Camera) ZoomBy(factor float64) {
	c.Zoom = math.Min(MaxZoom, math.Max(MinZoom, c.Zoom*factor))
}

// Pan accumulates a screen-space delta into the pan offset
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// NodeRadius returns a node's visual radius, growing with connectivity up to
// a cap.
func NodeRadius(connections int) float64 {
	return math.Min(maxNodeRadius, baseNodeRadius+radiusPerLink*float64(connections))
}

// HitTest returns the index of the topmost node under a screen point, or -1.
// Nodes below the opacity floor or not yet reveal-eligible are never hit.
func (c *Camera) HitTest(g *graph.Graph, revealed int, sx, sy float64) int {
	gx, gy := c.ScreenToGraph(sx, sy)

	best := -1
	bestDist := math.Inf(1)
	for i, node := range g.Nodes {
		if node.RevealOrder >= revealed || node.Opacity < minHitTestOpacity {
			continue
		}
		dist := math.Hypot(node.X-gx, node.Y-gy)
		if dist <= NodeRadius(node.ConnectionCount)+hitPadding && dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}
