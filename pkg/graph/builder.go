package graph

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mheland/notegraph/pkg/links"
	"github.com/mheland/notegraph/pkg/logging"
	"github.com/mheland/notegraph/pkg/vault"
)

// generation counts build cycles process-wide. Async callbacks compare their
// captured generation against the current graph before touching it.
var generation atomic.Uint64

// ContentSource fetches raw note text for link extraction
type ContentSource interface {
	Content(ctx context.Context, id string) (string, error)
}

// BuilderOptions configures graph construction
type BuilderOptions struct {
	Resolver     links.Resolver
	FetchWorkers int           // bounded concurrency for content fetches
	FetchTimeout time.Duration // per-note fetch deadline
	SeedRadius   float64       // base radius for the circular initial layout
	Seed         uint64        // 0 = time-based
}

// Builder constructs linked-notes graphs from a vault file list
type Builder struct {
	resolver links.Resolver
	workers  int
	timeout  time.Duration
	radius   float64
	rng      *rand.Rand
}

// NewBuilder creates a Builder, filling in defaults for zero options
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.Resolver == nil {
		opts.Resolver = links.NameResolver{}
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.SeedRadius <= 0 {
		opts.SeedRadius = 300
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Builder{
		resolver: opts.Resolver,
		workers:  opts.FetchWorkers,
		timeout:  opts.FetchTimeout,
		radius:   opts.SeedRadius,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Build fetches every note's content, extracts links, and produces a fresh
// graph generation. Per-note fetch failures are logged and contribute no
// edges; only context cancellation aborts the build. An empty file list
// yields a valid empty graph.
func (b *Builder) Build(ctx context.Context, files []vault.NoteFile, src ContentSource) (*Graph, error) {
	g := newGraph(generation.Add(1))

	for _, f := range files {
		g.addNode(f)
	}

	contents, err := b.fetchContents(ctx, files, src)
	if err != nil {
		return nil, err
	}

	// Edges are added in input order so the accumulated graph is
	// deterministic for a given vault listing.
	seenLinks := make(map[Link]bool)
	for i, f := range files {
		if contents[i] == "" {
			continue
		}
		for _, m := range b.resolver.Resolve(contents[i], files) {
			if m.NoteID == "" || m.NoteID == f.ID {
				continue
			}
			link := Link{Source: f.ID, Target: m.NoteID}
			if !seenLinks[link] {
				seenLinks[link] = true
				g.Links = append(g.Links, link)
			}
			g.addEdge(f.ID, m.NoteID)
		}
	}

	b.seedPositions(g)
	assignRevealOrder(g)

	logging.Debug("graph built",
		"generation", g.Generation,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)
	return g, nil
}

// fetchContents loads all note contents with bounded concurrency and a
// per-note timeout. A failed or timed-out note yields empty content.
func (b *Builder) fetchContents(ctx context.Context, files []vault.NoteFile, src ContentSource) ([]string, error) {
	contents := make([]string, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)

	for i, f := range files {
		eg.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(egCtx, b.timeout)
			defer cancel()

			text, err := src.Content(fetchCtx, f.ID)
			if err != nil {
				logging.Warn("failed to read note, treating as empty", "note", f.ID, "error", err)
				return nil
			}
			contents[i] = text
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return contents, nil
}

// seedPositions places node i of n on a circle at angle 2πi/n with the
// radius randomized in [R/2, R]. Cosmetic initial placement only.
func (b *Builder) seedPositions(g *Graph) {
	n := float64(len(g.Nodes))
	for i, node := range g.Nodes {
		angle := 2 * math.Pi * float64(i) / n
		radius := b.radius/2 + b.rng.Float64()*b.radius/2
		node.X = radius * math.Cos(angle)
		node.Y = radius * math.Sin(angle)
	}
}

// assignRevealOrder ranks nodes by a breadth-first traversal from the
// best-connected node, visiting each frontier's neighbors in descending
// connectivity order. Nodes in disconnected components follow, again by
// descending connectivity. Ranks are 0-based, unique, and contiguous.
func assignRevealOrder(g *Graph) {
	if len(g.Nodes) == 0 {
		return
	}

	start := 0
	for i, node := range g.Nodes {
		if node.ConnectionCount > g.Nodes[start].ConnectionCount {
			start = i
		}
	}

	order := 0
	visited := make([]bool, len(g.Nodes))
	queue := []int{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		g.Nodes[current].RevealOrder = order
		order++

		neighbors := g.Neighbors(current)
		sort.Slice(neighbors, func(a, b int) bool {
			ca := g.Nodes[neighbors[a]].ConnectionCount
			cb := g.Nodes[neighbors[b]].ConnectionCount
			if ca != cb {
				return ca > cb
			}
			return neighbors[a] < neighbors[b] // input order on ties
		})
		for _, next := range neighbors {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	// Disconnected leftovers, best-connected first, input order on ties
	var rest []int
	for i := range g.Nodes {
		if !visited[i] {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		return g.Nodes[rest[a]].ConnectionCount > g.Nodes[rest[b]].ConnectionCount
	})
	for _, i := range rest {
		g.Nodes[i].RevealOrder = order
		order++
	}
}
