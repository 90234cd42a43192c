package physics

import (
	"context"
	"math"
	"testing"

	"github.com/mheland/notegraph/pkg/graph"
	"github.com/mheland/notegraph/pkg/vault"
)

type mapSource map[string]string

func (m mapSource) Content(ctx context.Context, id string) (string, error) {
	return m[id], nil
}

func buildGraph(t *testing.T, contents map[string]string, order []string) *graph.Graph {
	t.Helper()
	files := make([]vault.NoteFile, len(order))
	for i, name := range order {
		files[i] = vault.NoteFile{ID: name + ".md", Name: name, Type: vault.NoteTypeNote}
	}
	g, err := graph.NewBuilder(graph.BuilderOptions{Seed: 42}).
		Build(context.Background(), files, mapSource(contents))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestSimulationSettles(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]] [[c]]",
		"b.md": "[[c]]",
		"c.md": "",
		"d.md": "[[a]]",
	}, []string{"a", "b", "c", "d"})

	cfg := ClassicConfig()
	e := NewEngine(cfg, g)

	settledAt := -1
	for step := 0; step < 500; step++ {
		e.Step()

		for i := range g.Nodes {
			x, y := e.Position(i)
			if math.IsNaN(x) || math.IsNaN(y) {
				t.Fatalf("step %d: node %d position is NaN", step, i)
			}
		}

		if e.Settled() {
			settledAt = step
			break
		}
	}

	if settledAt < 0 {
		t.Fatal("simulation did not settle within 500 steps")
	}

	// Once settled, a further step must not move anything meaningfully
	before := make([][2]float64, len(g.Nodes))
	for i := range g.Nodes {
		x, y := e.Position(i)
		before[i] = [2]float64{x, y}
	}
	e.Step()
	for i := range g.Nodes {
		x, y := e.Position(i)
		dx := math.Abs(x - before[i][0])
		dy := math.Abs(y - before[i][1])
		if dx > ClassicConfig().SettleEpsilon || dy > ClassicConfig().SettleEpsilon {
			t.Errorf("node %d moved (%.4f, %.4f) after settling", i, dx, dy)
		}
	}
}

func TestVelocityStaysClamped(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "",
	}, []string{"a", "b"})

	// Force a pathological start: both nodes nearly coincident
	cfg := DenseConfig()
	e := NewEngine(cfg, g)
	e.SetPosition(0, 0, 0)
	e.SetPosition(1, 0.001, 0)

	for step := 0; step < 100; step++ {
		e.Step()
		e.Flush(g)
		for _, node := range g.Nodes {
			speed := math.Hypot(node.VX, node.VY)
			if speed > cfg.MaxVelocity+1e-9 {
				t.Fatalf("step %d: speed %.3f exceeds clamp %.3f", step, speed, cfg.MaxVelocity)
			}
		}
	}
}

func TestRepulsionSeparatesCoincidentNodes(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "",
		"b.md": "",
	}, []string{"a", "b"})

	e := NewEngine(ClassicConfig(), g)
	e.SetPosition(0, 0, 0)
	e.SetPosition(1, 0.5, 0)

	for step := 0; step < 200; step++ {
		e.Step()
	}

	x0, y0 := e.Position(0)
	x1, y1 := e.Position(1)
	if math.Hypot(x1-x0, y1-y0) < 1 {
		t.Errorf("coincident nodes did not separate: d=%.3f", math.Hypot(x1-x0, y1-y0))
	}
}

func TestLinkedNodesDoNotCollapse(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "[[a]]",
	}, []string{"a", "b"})

	cfg := ClassicConfig()
	e := NewEngine(cfg, g)

	for step := 0; step < 500; step++ {
		e.Step()
	}

	x0, y0 := e.Position(0)
	x1, y1 := e.Position(1)
	d := math.Hypot(x1-x0, y1-y0)
	// Attraction turns off inside MinSpringLength; repulsion keeps a gap
	if d < 1 {
		t.Errorf("linked nodes collapsed: d=%.4f", d)
	}
}

func TestDragOverridesPhysics(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "",
	}, []string{"a", "b"})

	e := NewEngine(ClassicConfig(), g)
	e.SetDragging(0, true)
	e.SetPosition(0, 123.5, -42.25)

	for step := 0; step < 50; step++ {
		e.Step()
		x, y := e.Position(0)
		if x != 123.5 || y != -42.25 {
			t.Fatalf("step %d: dragged node moved to (%.4f, %.4f)", step, x, y)
		}
	}

	// Released node rejoins the simulation
	e.SetDragging(0, false)
	for step := 0; step < 50; step++ {
		e.Step()
	}
	x, _ := e.Position(0)
	if x == 123.5 {
		t.Error("released node never moved")
	}
}

func TestFlushCopiesBufferIntoGraph(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "",
	}, []string{"a", "b"})

	e := NewEngine(ClassicConfig(), g)
	e.SetPosition(0, 77, 88)

	// Graph still holds the seeded position until Flush
	if g.Nodes[0].X == 77 && g.Nodes[0].Y == 88 {
		t.Fatal("graph saw simulation state before Flush")
	}

	e.Flush(g)
	if g.Nodes[0].X != 77 || g.Nodes[0].Y != 88 {
		t.Errorf("Flush did not copy position: got (%.1f, %.1f)", g.Nodes[0].X, g.Nodes[0].Y)
	}
}

func TestPresetConfig(t *testing.T) {
	for _, name := range []string{"classic", "dense"} {
		cfg, err := PresetConfig(name)
		if err != nil {
			t.Errorf("PresetConfig(%q) error = %v", name, err)
		}
		if cfg.Damping >= 1 {
			t.Errorf("%s: damping %.2f must be < 1", name, cfg.Damping)
		}
		if cfg.MinSpringLength <= 0 {
			t.Errorf("%s: MinSpringLength must be positive", name)
		}
	}
	if _, err := PresetConfig("bogus"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestEmptyGraphStepIsNoop(t *testing.T) {
	g := buildGraph(t, nil, nil)
	e := NewEngine(ClassicConfig(), g)
	e.Step() // must not panic
	if !e.Settled() {
		t.Error("empty engine should be settled")
	}
}
