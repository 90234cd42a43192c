// Package cycles detects mention loops: groups of notes that reference each
// other in a directed cycle.
package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/mheland/notegraph/pkg/graph"
)

// LinkCycle is one group of notes whose mentions form a loop
type LinkCycle struct {
	Notes []string `json:"notes"` // note IDs in the cycle
}

// FindLinkCycles finds all mention loops in a graph's raw directed links
func FindLinkCycles(g *graph.Graph) []LinkCycle {
	directed := simple.NewDirectedGraph()

	ids := make(map[string]int64, g.NodeCount())
	names := make(map[int64]string, g.NodeCount())
	for i, node := range g.Nodes {
		id := int64(i)
		ids[node.ID] = id
		names[id] = node.ID
		directed.AddNode(simple.Node(id))
	}

	for _, link := range g.Links {
		from, okF := ids[link.Source]
		to, okT := ids[link.Target]
		if !okF || !okT || from == to {
			continue
		}
		directed.SetEdge(directed.NewEdge(simple.Node(from), simple.Node(to)))
	}

	sccs := newTarjanSCC(directed).findSCCs()

	cycles := make([]LinkCycle, 0, len(sccs))
	for _, scc := range sccs {
		notes := make([]string, 0, len(scc))
		for _, id := range scc {
			notes = append(notes, names[id])
		}
		sort.Strings(notes)
		cycles = append(cycles, LinkCycle{Notes: notes})
	}

	return cycles
}
