package cycles

import (
	"context"
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
	g, err := graph.NewBuilder(graph.BuilderOptions{Seed: 1}).
		Build(context.Background(), files, mapSource(contents))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestMutualMentionIsACycle(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "[[a]]",
	}, []string{"a", "b"})

	cycles := FindLinkCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0].Notes) != 2 {
		t.Errorf("expected cycle of 2 notes, got %v", cycles[0].Notes)
	}
}

func TestOneWayMentionIsNotACycle(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "",
	}, []string{"a", "b"})

	if cycles := FindLinkCycles(g); len(cycles) != 0 {
		t.Errorf("one-way link should not cycle, got %v", cycles)
	}
}

func TestThreeNoteLoop(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "[[b]]",
		"b.md": "[[c]]",
		"c.md": "[[a]]",
		"d.md": "[[a]]",
	}, []string{"a", "b", "c", "d"})

	cycles := FindLinkCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	want := []string{"a.md", "b.md", "c.md"}
	got := cycles[0].Notes
	if len(got) != len(want) {
		t.Fatalf("cycle = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cycle = %v, want %v", got, want)
			break
		}
	}
}
