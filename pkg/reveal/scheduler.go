// Package reveal drives the staged disclosure of graph nodes: a wall-clock
// timer raises the revealed count one node at a time, and a per-frame fade
// pulls eligible node opacities toward 1.
package reveal

import (
	"sync"
	"time"

	"github.com/mheland/notegraph/pkg/graph"
)

// Scheduler reveals one node per interval once a build completes. It is
// bound to a single graph generation; restarting a build means stopping the
// old scheduler and starting a fresh one.
type Scheduler struct {
	interval time.Duration
	fadeStep float64

	mu         sync.Mutex
	generation uint64
	total      int
	revealed   int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler with a reveal interval and per-frame
// opacity increment.
func NewScheduler(interval time.Duration, fadeStep float64) *Scheduler {
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	if fadeStep <= 0 || fadeStep > 1 {
		fadeStep = 0.1
	}
	return &Scheduler{
		interval: interval,
		fadeStep: fadeStep,
		stop:     make(chan struct{}),
	}
}

// Start binds the scheduler to a graph generation and begins the reveal
// timer. All node opacities start at 0.
func (s *Scheduler) Start(g *graph.Graph) {
	s.mu.Lock()
	s.generation = g.Generation
	s.total = g.NodeCount()
	s.revealed = 0
	s.mu.Unlock()

	for _, node := range g.Nodes {
		node.Opacity = 0
	}

	go s.run()
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.tick() {
				return
			}
		}
	}
}

// tick reveals one more node; returns true once every node is revealed
func (s *Scheduler) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revealed < s.total {
		s.revealed++
	}
	return s.revealed >= s.total
}

// RevealedCount returns the current monotone reveal counter
func (s *Scheduler) RevealedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed
}

// Done reports whether every node has been revealed
func (s *Scheduler) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed >= s.total
}

// Stop cancels the reveal timer. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Advance fades eligible nodes toward full opacity. Called once per render
// frame. Calls carrying a stale graph generation are dropped.
func (s *Scheduler) Advance(g *graph.Graph) {
	s.mu.Lock()
	generation := s.generation
	revealed := s.revealed
	s.mu.Unlock()

	if g.Generation != generation {
		return
	}

	for _, node := range g.Nodes {
		if node.RevealOrder < revealed && node.Opacity < 1 {
			node.Opacity = min(1, node.Opacity+s.fadeStep)
		}
	}
}

// NodeEligible reports whether a node may render at the current reveal count
func (s *Scheduler) NodeEligible(node *graph.Node) bool {
	return node.RevealOrder < s.RevealedCount()
}

// EdgeOpacity returns an edge's effective opacity: the minimum of its two
// endpoints, and 0 unless both endpoints are reveal-eligible.
func (s *Scheduler) EdgeOpacity(g *graph.Graph, e graph.Edge) float64 {
	src, okS := g.Node(e.Source)
	tgt, okT := g.Node(e.Target)
	if !okS || !okT {
		return 0
	}

	revealed := s.RevealedCount()
	if src.RevealOrder >= revealed || tgt.RevealOrder >= revealed {
		return 0
	}
	return min(src.Opacity, tgt.Opacity)
}
