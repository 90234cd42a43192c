// Package graph builds and holds the linked-notes graph: one node per vault
// file, one undirected edge per linked pair, plus the breadth-first reveal
// order used by the open animation.
package graph

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/mheland/notegraph/pkg/vault"
)

// Node represents one note in the graph. Position and velocity are owned by
// the simulation engine while it runs; Opacity is owned by the reveal
// scheduler.
type Node struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Type vault.NoteType `json:"type"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"-"`
	VY float64 `json:"-"`

	ConnectionCount int     `json:"connectionCount"`
	RevealOrder     int     `json:"revealOrder"`
	Opacity         float64 `json:"opacity"`

	Dragging bool `json:"-"`
}

// Edge is an undirected link between two notes. A linked pair is represented
// exactly once regardless of which side mentioned the other.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Link is a raw directed mention, kept alongside the deduplicated edges for
// cycle analysis.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is one build generation's complete node/edge state. It is replaced
// wholesale on rebuild, never patched.
type Graph struct {
	Generation uint64  `json:"generation"`
	Nodes      []*Node `json:"nodes"`
	Edges      []Edge  `json:"edges"`
	Links      []Link  `json:"links"`

	index     map[string]int   // note ID -> Nodes index
	ids       map[string]int64 // note ID -> adjacency node ID
	adjacency *simple.UndirectedGraph
}

func newGraph(generation uint64) *Graph {
	return &Graph{
		Generation: generation,
		index:      make(map[string]int),
		ids:        make(map[string]int64),
		adjacency:  simple.NewUndirectedGraph(),
	}
}

func (g *Graph) addNode(file vault.NoteFile) *Node {
	node := &Node{
		ID:          file.ID,
		Name:        file.Name,
		Type:        file.Type,
		RevealOrder: -1,
	}
	id := int64(len(g.Nodes))
	g.index[file.ID] = len(g.Nodes)
	g.ids[file.ID] = id
	g.Nodes = append(g.Nodes, node)
	g.adjacency.AddNode(simple.Node(id))
	return node
}

// addEdge records an undirected edge and bumps both connection counts.
// Returns false if the pair is already linked.
func (g *Graph) addEdge(source, target string) bool {
	a, okA := g.ids[source]
	b, okB := g.ids[target]
	if !okA || !okB || a == b {
		return false
	}
	if g.adjacency.HasEdgeBetween(a, b) {
		return false
	}

	g.adjacency.SetEdge(g.adjacency.NewEdge(simple.Node(a), simple.Node(b)))
	g.Edges = append(g.Edges, Edge{Source: source, Target: target})
	g.Nodes[g.index[source]].ConnectionCount++
	g.Nodes[g.index[target]].ConnectionCount++
	return true
}

// Node returns the node for a note ID
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

// HasEdge reports whether two notes are linked, in either direction
func (g *Graph) HasEdge(a, b string) bool {
	idA, okA := g.ids[a]
	idB, okB := g.ids[b]
	return okA && okB && g.adjacency.HasEdgeBetween(idA, idB)
}

// Neighbors returns the indices of all nodes sharing an edge with the node
// at index i.
func (g *Graph) Neighbors(i int) []int {
	id := g.ids[g.Nodes[i].ID]
	var neighbors []int
	iter := g.adjacency.From(id)
	for iter.Next() {
		neighbors = append(neighbors, int(iter.Node().ID()))
	}
	return neighbors
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of deduplicated edges
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}
