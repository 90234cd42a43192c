// Package watcher observes a vault directory for note changes and emits
// batched, debounced change events that drive graph rebuilds.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mheland/notegraph/pkg/logging"
)

// ChangeType represents the kind of vault file that changed
type ChangeType int

const (
	ChangeTypeNote ChangeType = iota
	ChangeTypeBoard
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// VaultWatcher watches a vault directory tree for note file changes
type VaultWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	events  chan ChangeEvent
}

// NewVaultWatcher creates a file system watcher rooted at the vault directory
func NewVaultWatcher(root string) (*VaultWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &VaultWatcher{
		watcher: watcher,
		root:    root,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start registers all vault directories and begins emitting change events
func (vw *VaultWatcher) Start(ctx context.Context) error {
	if err := vw.watchVaultDirs(); err != nil {
		return err
	}

	logging.Info("started watching vault", "path", vw.root)

	go vw.processEvents(ctx)
	return nil
}

// watchVaultDirs walks the vault and watches every non-hidden directory.
// fsnotify is not recursive, so each directory is added individually.
func (vw *VaultWatcher) watchVaultDirs() error {
	count := 0
	err := filepath.Walk(vw.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip paths we can't access
		}
		if !info.IsDir() {
			return nil
		}

		name := info.Name()
		if path != vw.root && (strings.HasPrefix(name, ".") || name == "trash") {
			return filepath.SkipDir
		}

		if err := vw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk vault: %w", err)
	}

	logging.Info("monitoring vault directories", "count", count)
	return nil
}

// processEvents filters raw fsnotify events down to note files and batches
// them by type before emitting.
func (vw *VaultWatcher) processEvents(ctx context.Context) {
	var noteFiles []string
	var boardFiles []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(noteFiles) > 0 {
			vw.events <- ChangeEvent{
				Type:      ChangeTypeNote,
				Paths:     noteFiles,
				Timestamp: time.Now(),
			}
			noteFiles = nil
		}
		if len(boardFiles) > 0 {
			vw.events <- ChangeEvent{
				Type:      ChangeTypeBoard,
				Paths:     boardFiles,
				Timestamp: time.Now(),
			}
			boardFiles = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			vw.watcher.Close()
			close(vw.events)
			return

		case event, ok := <-vw.watcher.Events:
			if !ok {
				return
			}

			// New subdirectories must be added to the watch set
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					base := filepath.Base(event.Name)
					if !strings.HasPrefix(base, ".") && base != "trash" {
						if err := vw.watcher.Add(event.Name); err != nil {
							logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}

			name := filepath.Base(event.Name)
			switch {
			case strings.HasSuffix(name, ".board.json"), strings.HasSuffix(name, ".canvas"):
				boardFiles = append(boardFiles, event.Name)
				flushTimer.Reset(100 * time.Millisecond)
			case strings.HasSuffix(name, ".md"):
				noteFiles = append(noteFiles, event.Name)
				flushTimer.Reset(100 * time.Millisecond)
			}

		case <-flushTimer.C:
			flush()

		case err, ok := <-vw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (vw *VaultWatcher) Events() <-chan ChangeEvent {
	return vw.events
}

// Stop stops the file watcher
func (vw *VaultWatcher) Stop() error {
	return vw.watcher.Close()
}
