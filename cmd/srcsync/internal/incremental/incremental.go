package incremental

import (
	"context"
	"fmt"
	"path/filepath"
)

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	// Root is the project base; state lives in Root/.srcsync.
	Root string
	// Dirs are the discovering group roots, relative to Root.
	Dirs []string
}

// Tracker remembers the tracked files as of the last successful sync.
type Tracker struct {
	store   Store
	scanner *Scanner
	root    string
}

// NewTracker creates a tracker for the given project.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		store: NewJSONStore(cfg.Root),
		scanner: NewScanner(ScanConfig{
			Root: cfg.Root,
			Dirs: cfg.Dirs,
		}),
		root: cfg.Root,
	}
}

// Status reports what changed since the last Refresh without touching the
// stored state. Files are hashed only when their mtime or size moved.
func (t *Tracker) Status(ctx context.Context) (*ChangeSet, error) {
	oldIdx, err := t.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	fastIdx, err := t.scanner.ScanFast(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sources: %w", err)
	}

	return diff(oldIdx.Entries, fastIdx.Entries, func(path string, o, _ *Entry) bool {
		if ctx.Err() != nil {
			return true
		}
		hash, err := HashFile(filepath.Join(t.root, filepath.FromSlash(path)))
		if err != nil {
			// Unreadable counts as modified.
			return true
		}
		return o.Hash != hash
	}), nil
}

// Refresh rescans with hashing and replaces the stored index.
func (t *Tracker) Refresh(ctx context.Context) error {
	idx, err := t.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan sources: %w", err)
	}

	if err := t.store.Save(idx); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// HasState returns true if a previous state exists.
func (t *Tracker) HasState() bool {
	return t.store.Exists()
}

// TrackedFileCount returns the number of files in the stored index, or 0
// when there is none.
func (t *Tracker) TrackedFileCount() int {
	idx, err := t.store.Load()
	if err != nil {
		return 0
	}
	return idx.Len()
}
