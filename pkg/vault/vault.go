package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NoteType tags the kind of file a vault entry holds
type NoteType string

const (
	NoteTypeNote  NoteType = "note"  // markdown note
	NoteTypeBoard NoteType = "board" // kanban/canvas board
)

// NoteFile describes one candidate file in the vault
type NoteFile struct {
	ID   string   `json:"id"`   // slash-separated path relative to the vault root
	Name string   `json:"name"` // base name without extension, used for mention resolution
	Type NoteType `json:"type"`
}

// Vault provides read access to a directory of notes
type Vault struct {
	root string
}

// Open validates the vault root and returns a Vault
func Open(root string) (*Vault, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", root)
	}
	return &Vault{root: root}, nil
}

// Root returns the vault root directory
func (v *Vault) Root() string {
	return v.root
}

// ListNotes walks the vault and returns all note and board files,
// excluding hidden directories and non-note files.
func (v *Vault) ListNotes() ([]NoteFile, error) {
	var notes []NoteFile

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories (.git, .obsidian, trash folders)
		if d.IsDir() {
			name := d.Name()
			if path != v.root && (strings.HasPrefix(name, ".") || name == "trash") {
				return filepath.SkipDir
			}
			return nil
		}

		noteType, ok := typeForFile(d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}

		notes = append(notes, NoteFile{
			ID:   filepath.ToSlash(rel),
			Name: baseName(d.Name()),
			Type: noteType,
		})
		return nil
	})

	return notes, err
}

// Content returns the raw text of a note by its vault-relative ID.
// The ID must stay inside the vault root.
func (v *Vault) Content(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(id))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("note id %q escapes the vault", id)
	}

	data, err := os.ReadFile(filepath.Join(v.root, clean))
	if err != nil {
		return "", fmt.Errorf("reading note %s: %w", id, err)
	}
	return string(data), nil
}

func typeForFile(name string) (NoteType, bool) {
	switch {
	case strings.HasSuffix(name, ".board.json"):
		return NoteTypeBoard, true
	case strings.HasSuffix(name, ".canvas"):
		return NoteTypeBoard, true
	case strings.HasSuffix(name, ".md"):
		return NoteTypeNote, true
	}
	return "", false
}

func baseName(name string) string {
	if strings.HasSuffix(name, ".board.json") {
		return strings.TrimSuffix(name, ".board.json")
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
