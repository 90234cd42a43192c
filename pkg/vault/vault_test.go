package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestOpenRejectsMissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing vault root")
	}
}

func TestListNotes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.md", "# Alpha")
	writeFile(t, dir, "sub/beta.md", "# Beta")
	writeFile(t, dir, "plan.board.json", "{}")
	writeFile(t, dir, "sketch.canvas", "{}")
	writeFile(t, dir, "ignore.txt", "not a note")
	writeFile(t, dir, ".obsidian/config.md", "hidden")

	v, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	notes, err := v.ListNotes()
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}

	if len(notes) != 4 {
		t.Fatalf("expected 4 notes, got %d: %v", len(notes), notes)
	}

	byID := make(map[string]NoteFile)
	for _, n := range notes {
		byID[n.ID] = n
	}

	if n, ok := byID["sub/beta.md"]; !ok || n.Name != "beta" || n.Type != NoteTypeNote {
		t.Errorf("sub/beta.md = %+v, want name beta, type note", n)
	}
	if n, ok := byID["plan.board.json"]; !ok || n.Name != "plan" || n.Type != NoteTypeBoard {
		t.Errorf("plan.board.json = %+v, want name plan, type board", n)
	}
	if n, ok := byID["sketch.canvas"]; !ok || n.Name != "sketch" || n.Type != NoteTypeBoard {
		t.Errorf("sketch.canvas = %+v, want name sketch, type board", n)
	}
	if _, ok := byID["ignore.txt"]; ok {
		t.Error("non-note file should not be listed")
	}
	if _, ok := byID[".obsidian/config.md"]; ok {
		t.Error("hidden directory should be skipped")
	}
}

func TestEmptyVaultIsValid(t *testing.T) {
	v, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	notes, err := v.ListNotes()
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected empty vault, got %d notes", len(notes))
	}
}

func TestContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.md", "links to [[beta]]")

	v, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	text, err := v.Content(context.Background(), "alpha.md")
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if text != "links to [[beta]]" {
		t.Errorf("unexpected content: %q", text)
	}

	if _, err := v.Content(context.Background(), "missing.md"); err == nil {
		t.Error("expected error for missing note")
	}
}

func TestContentRejectsEscapingIDs(t *testing.T) {
	v, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for _, id := range []string{"../secret.md", "sub/../../secret.md", "/etc/passwd"} {
		if _, err := v.Content(context.Background(), id); err == nil {
			t.Errorf("id %q should be rejected", id)
		}
	}
}
