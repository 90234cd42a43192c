package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/mheland/notegraph/pkg/cycles"
	"github.com/mheland/notegraph/pkg/graph"
)

// topHubCount limits how many best-connected notes the report lists
const topHubCount = 10

// PrintGraphReport prints a nicely formatted vault graph report with colors
func PrintGraphReport(vaultPath string, g *graph.Graph, loops []cycles.LinkCycle) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Println("notegraph - Vault Link Report")
	bold.Println("=============================")
	fmt.Printf("Vault: %s\n", vaultPath)
	fmt.Printf("Notes: %d\n", g.NodeCount())
	fmt.Printf("Links: %d\n", g.EdgeCount())
	fmt.Println()

	// Best-connected notes
	hubs := topHubs(g)
	if len(hubs) > 0 {
		bold.Println("MOST LINKED NOTES:")
		for _, node := range hubs {
			cyan.Printf("  %-40s", node.Name)
			fmt.Printf(" %d link(s)\n", node.ConnectionCount)
		}
		fmt.Println()
	}

	// Orphans: notes nothing links to and that link to nothing
	orphans := 0
	for _, node := range g.Nodes {
		if node.ConnectionCount == 0 {
			orphans++
		}
	}
	if orphans > 0 {
		yellow.Printf("Orphaned notes: %d (no links in or out)\n", orphans)
	} else if g.NodeCount() > 0 {
		green.Println("✓ Every note is linked!")
	}

	// Mention loops
	if len(loops) > 0 {
		fmt.Println()
		red.Printf("MENTION LOOPS (%d):\n", len(loops))
		for _, loop := range loops {
			yellow.Printf("  %s\n", strings.Join(loop.Notes, " <-> "))
		}
	}
}

// topHubs returns up to topHubCount nodes by descending connectivity
func topHubs(g *graph.Graph) []*graph.Node {
	hubs := make([]*graph.Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		if node.ConnectionCount > 0 {
			hubs = append(hubs, node)
		}
	}
	sort.SliceStable(hubs, func(a, b int) bool {
		return hubs[a].ConnectionCount > hubs[b].ConnectionCount
	})
	if len(hubs) > topHubCount {
		hubs = hubs[:topHubCount]
	}
	return hubs
}
