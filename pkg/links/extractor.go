// Package links extracts wiki-style mentions from note content and resolves
// them against the vault's file list.
package links

import (
	"regexp"
	"strings"

	"github.com/mheland/notegraph/pkg/vault"
)

// Mention is one reference found in note content. NoteID is empty when the
// target did not resolve to exactly one file.
type Mention struct {
	Target string // raw target text, alias and heading stripped
	NoteID string // resolved vault file ID, or ""
}

// Resolver resolves mention targets against a set of candidate files
type Resolver interface {
	Resolve(text string, files []vault.NoteFile) []Mention
}

// mentionPattern matches [[Target]], [[Target|alias]], and [[Target#heading]]
var mentionPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// NameResolver resolves mentions by case-insensitive note name.
// Names shared by more than one file are ambiguous and never resolve.
type NameResolver struct{}

// Resolve extracts all mentions from text and resolves each target
func (NameResolver) Resolve(text string, files []vault.NoteFile) []Mention {
	index := buildNameIndex(files)

	var mentions []Mention
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		target := cleanTarget(match[1])
		if target == "" {
			continue
		}
		mentions = append(mentions, Mention{
			Target: target,
			NoteID: index[strings.ToLower(target)],
		})
	}
	return mentions
}

// buildNameIndex maps lowercase note names to file IDs, dropping names that
// collide across files.
func buildNameIndex(files []vault.NoteFile) map[string]string {
	index := make(map[string]string, len(files))
	ambiguous := make(map[string]bool)

	for _, f := range files {
		key := strings.ToLower(f.Name)
		if _, seen := index[key]; seen {
			ambiguous[key] = true
			continue
		}
		index[key] = f.ID
	}

	for key := range ambiguous {
		delete(index, key)
	}
	return index
}

// cleanTarget strips alias and heading suffixes from a mention target
func cleanTarget(raw string) string {
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
