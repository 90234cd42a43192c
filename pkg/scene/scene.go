// Package scene owns the live visualization session: it binds the vault,
// graph builder, physics engine, reveal scheduler, and camera behind one
// lock, runs the frame loop, and publishes per-frame snapshots.
package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mheland/notegraph/pkg/cycles"
	"github.com/mheland/notegraph/pkg/graph"
	"github.com/mheland/notegraph/pkg/logging"
	"github.com/mheland/notegraph/pkg/physics"
	"github.com/mheland/notegraph/pkg/pubsub"
	"github.com/mheland/notegraph/pkg/reveal"
	"github.com/mheland/notegraph/pkg/vault"
	"github.com/mheland/notegraph/pkg/view"
)

// Options configures a Scene
type Options struct {
	Vault          *vault.Vault
	Publisher      pubsub.Publisher // nil disables event publishing
	Physics        physics.Config
	Builder        graph.BuilderOptions
	RevealInterval time.Duration
	FadeStep       float64
	FrameInterval  time.Duration // defaults to ~60fps
	Navigate       func(noteID string)
}

// Scene is the live session state. All mutating access to the current graph,
// engine, scheduler, and pointer state goes through its mutex; the frame
// loop and HTTP handlers are the two writers.
type Scene struct {
	vlt       *vault.Vault
	builder   *graph.Builder
	publisher pubsub.Publisher
	phys      physics.Config

	revealInterval time.Duration
	fadeStep       float64
	frameInterval  time.Duration
	navigate       func(noteID string)

	mu     sync.Mutex
	g      *graph.Graph
	engine *physics.Engine
	sched  *reveal.Scheduler
	cam    *view.Camera
	ctrl   *view.Controller
	loops  []cycles.LinkCycle

	rebuilding sync.Mutex // serializes Rebuild runs

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Scene with an empty graph. Call Start to begin the frame
// loop and Rebuild to load the vault.
func New(opts Options) *Scene {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}

	cam := view.NewCamera()
	s := &Scene{
		vlt:            opts.Vault,
		builder:        graph.NewBuilder(opts.Builder),
		publisher:      opts.Publisher,
		phys:           opts.Physics,
		revealInterval: opts.RevealInterval,
		fadeStep:       opts.FadeStep,
		frameInterval:  opts.FrameInterval,
		navigate:       opts.Navigate,
		cam:            cam,
		done:           make(chan struct{}),
	}
	return s
}

// Start launches the frame loop. It stops when ctx is cancelled or Close is
// called.
func (s *Scene) Start(ctx context.Context) {
	go s.frameLoop(ctx)
}

// Close stops the frame loop and the reveal timer. Safe to call more than
// once.
func (s *Scene) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.sched != nil {
			s.sched.Stop()
		}
		s.mu.Unlock()
	})
}

// Rebuild lists the vault, builds a fresh graph generation off the frame
// loop, and swaps it in. Concurrent calls are serialized; a completion that
// has been superseded by a newer generation is discarded.
func (s *Scene) Rebuild(ctx context.Context) error {
	s.rebuilding.Lock()
	defer s.rebuilding.Unlock()

	s.publishStatus("scanning", "Scanning vault...", 0, 1, 3)

	files, err := s.vlt.ListNotes()
	if err != nil {
		s.publishStatus("error", fmt.Sprintf("Vault scan failed: %v", err), 0, 1, 3)
		return fmt.Errorf("listing vault: %w", err)
	}

	s.publishStatus("building", fmt.Sprintf("Building graph from %d notes...", len(files)), 0, 2, 3)

	g, err := s.builder.Build(ctx, files, s.vlt)
	if err != nil {
		s.publishStatus("error", fmt.Sprintf("Build failed: %v", err), 0, 2, 3)
		return err
	}
	loops := cycles.FindLinkCycles(g)

	s.mu.Lock()
	if s.g != nil && s.g.Generation >= g.Generation {
		s.mu.Unlock()
		logging.Debug("discarding superseded build", "generation", g.Generation)
		return nil
	}
	if s.sched != nil {
		s.sched.Stop()
	}
	s.g = g
	s.loops = loops
	s.engine = physics.NewEngine(s.phys, g)
	s.sched = reveal.NewScheduler(s.revealInterval, s.fadeStep)
	s.ctrl = view.NewController(s.cam, s.engine)
	s.sched.Start(g)
	s.mu.Unlock()

	logging.Info("graph ready",
		"generation", g.Generation,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cycles", len(loops),
	)
	s.publishStatus("ready", "Graph ready", g.Generation, 3, 3)
	s.publishSummary(g, loops)
	return nil
}

func (s *Scene) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.stepFrame()
		}
	}
}

// stepFrame advances the simulation and fade by one frame and publishes the
// resulting snapshot.
func (s *Scene) stepFrame() {
	s.mu.Lock()
	if s.g == nil {
		s.mu.Unlock()
		return
	}
	s.engine.Step()
	s.sched.Advance(s.g)
	s.engine.Flush(s.g)
	frame := s.snapshotLocked()
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.Publish("frames", "frame", frame); err != nil {
			logging.Warn("failed to publish frame", "error", err)
		}
	}
}

// Snapshot returns the current frame state. An empty scene yields an empty
// frame with generation 0.
func (s *Scene) Snapshot() pubsub.FrameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.g == nil {
		return pubsub.FrameData{
			Camera: pubsub.FrameCamera{Zoom: s.cam.Zoom},
			Nodes:  []pubsub.FrameNode{},
			Edges:  []pubsub.FrameEdge{},
		}
	}
	return s.snapshotLocked()
}

func (s *Scene) snapshotLocked() pubsub.FrameData {
	frame := pubsub.FrameData{
		Generation:    s.g.Generation,
		RevealedCount: s.sched.RevealedCount(),
		Settled:       s.engine.Settled(),
		Camera: pubsub.FrameCamera{
			PanX:    s.cam.PanX,
			PanY:    s.cam.PanY,
			Zoom:    s.cam.Zoom,
			CenterX: s.cam.CenterX,
			CenterY: s.cam.CenterY,
		},
		Nodes: make([]pubsub.FrameNode, 0, s.g.NodeCount()),
		Edges: make([]pubsub.FrameEdge, 0, s.g.EdgeCount()),
	}

	if hover, neighbors := s.ctrl.Hovered(s.g); hover >= 0 {
		frame.Hovered = s.g.Nodes[hover].ID
		frame.Highlight = make([]string, 0, len(neighbors))
		for _, n := range neighbors {
			frame.Highlight = append(frame.Highlight, s.g.Nodes[n].ID)
		}
	}

	for _, node := range s.g.Nodes {
		frame.Nodes = append(frame.Nodes, pubsub.FrameNode{
			ID:      node.ID,
			Name:    node.Name,
			Type:    string(node.Type),
			X:       node.X,
			Y:       node.Y,
			Radius:  view.NodeRadius(node.ConnectionCount),
			Opacity: node.Opacity,
			Links:   node.ConnectionCount,
		})
	}
	for _, edge := range s.g.Edges {
		opacity := s.sched.EdgeOpacity(s.g, edge)
		if opacity <= 0 {
			continue
		}
		frame.Edges = append(frame.Edges, pubsub.FrameEdge{
			Source:  edge.Source,
			Target:  edge.Target,
			Opacity: opacity,
		})
	}
	return frame
}

// Cycles returns the mention loops found by the last build
func (s *Scene) Cycles() []cycles.LinkCycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loops
}

// Camera returns a copy of the current camera state
func (s *Scene) Camera() view.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cam
}

// PointerEvent is a pointer gesture forwarded from the frontend
type PointerEvent struct {
	Kind string  `json:"kind"` // move, down, up, wheel, dblclick
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	DY   float64 `json:"dy"` // wheel delta
}

// HandlePointer routes a pointer event through the interaction controller.
// A double-click on a node triggers the Navigate callback and returns the
// note ID.
func (s *Scene) HandlePointer(ev PointerEvent) (string, error) {
	s.mu.Lock()
	if s.g == nil || s.ctrl == nil {
		s.mu.Unlock()
		return "", nil
	}

	revealed := s.sched.RevealedCount()
	var noteID string
	switch ev.Kind {
	case "down":
		s.ctrl.PointerDown(s.g, revealed, ev.X, ev.Y)
	case "move":
		s.ctrl.PointerMove(s.g, revealed, ev.X, ev.Y)
	case "up":
		s.ctrl.PointerUp()
	case "wheel":
		s.ctrl.Wheel(ev.DY)
	case "dblclick":
		noteID = s.ctrl.DoubleClick(s.g, revealed, ev.X, ev.Y)
	default:
		s.mu.Unlock()
		return "", fmt.Errorf("unknown pointer event kind %q", ev.Kind)
	}
	s.mu.Unlock()

	if noteID != "" && s.navigate != nil {
		s.navigate(noteID)
	}
	return noteID, nil
}

func (s *Scene) publishStatus(state, message string, generation uint64, step, total int) {
	if s.publisher == nil {
		return
	}
	status := pubsub.BuildStatus{
		State:      state,
		Message:    message,
		Generation: generation,
		Step:       step,
		Total:      total,
	}
	if err := s.publisher.Publish("build_status", state, status); err != nil {
		logging.Warn("failed to publish build status", "error", err)
	}
}

func (s *Scene) publishSummary(g *graph.Graph, loops []cycles.LinkCycle) {
	if s.publisher == nil {
		return
	}
	summary := pubsub.GraphSummary{
		Generation: g.Generation,
		NodeCount:  g.NodeCount(),
		EdgeCount:  g.EdgeCount(),
		CycleCount: len(loops),
		Complete:   true,
	}
	if err := s.publisher.Publish("build_status", "graph_summary", summary); err != nil {
		logging.Warn("failed to publish graph summary", "error", err)
	}
}
