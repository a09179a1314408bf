package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/incremental"
	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/scope"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the debounce window used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// Runner syncs a set of groups. *syncer.Syncer satisfies it.
type Runner interface {
	Sync(ctx context.Context, groups []syncer.Group) *syncer.Summary
}

// Config configures the watcher.
type Config struct {
	// Base is the project base directory group roots are relative to.
	Base string
	// OutputDir holds the descriptors. Defaults to Base.
	OutputDir string
	Groups    []syncer.Group
	Files     syncer.FileNames
	Runner    Runner
	// Tracker, when set, is refreshed after every fully successful sync.
	Tracker  *incremental.Tracker
	Debounce time.Duration
	Verbose  bool
	NoColor  bool
	JSON     bool
	Writer   io.Writer
}

// Watcher watches group roots and re-syncs the groups whose file set changed.
type Watcher struct {
	config     Config
	fsWatcher  *fsnotify.Watcher
	debouncer  *Debouncer
	logger     *Logger
	extensions map[string]bool
	ignoreDirs map[string]bool

	// syncMu keeps sync runs from overlapping.
	syncMu sync.Mutex
}

// New creates a new watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Runner == nil {
		return nil, errors.New("watch: no runner configured")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.Base
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		config:    cfg,
		fsWatcher: fsWatcher,
		logger: NewLogger(LoggerConfig{
			Writer:  cfg.Writer,
			Verbose: cfg.Verbose,
			NoColor: cfg.NoColor,
			JSON:    cfg.JSON,
		}),
		extensions: scope.ExtensionSet(),
		ignoreDirs: scope.IgnoreDirSet(nil),
	}, nil
}

// Run starts the watch loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	window := w.config.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	w.debouncer = NewDebouncer(window, w.syncGroups)
	defer w.debouncer.Stop()

	for _, root := range scope.Roots(w.config.Groups) {
		if err := w.addRecursive(filepath.Join(w.config.Base, filepath.FromSlash(root))); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	// Hand-maintained descriptors are watched through their directory.
	if slices.ContainsFunc(w.config.Groups, func(g syncer.Group) bool { return !g.Discover }) {
		if err := w.fsWatcher.Add(w.config.OutputDir); err != nil {
			w.logger.Error(fmt.Errorf("failed to watch %s: %w", w.config.OutputDir, err))
		}
	}

	fileCount := 0
	if w.config.Tracker != nil {
		fileCount = w.config.Tracker.TrackedFileCount()
	}
	w.logger.Ready(fileCount, w.groupNames(), w.config.Base)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

func (w *Watcher) groupNames() []string {
	names := make([]string, len(w.config.Groups))
	for i, g := range w.config.Groups {
		names[i] = g.Name
	}
	return names
}

// addRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				if w.config.Verbose {
					w.logger.Error(fmt.Errorf("permission denied: %s", path))
				}
				return nil
			}
			w.logger.Error(fmt.Errorf("walk error at %s: %w", path, err))
			return nil
		}

		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("%w at %s: %w\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288",
					ErrWatchLimitReached, path, err)
			}
			if w.config.Verbose {
				w.logger.Error(fmt.Errorf("failed to watch %s: %w", path, err))
			}
		}
		return nil
	})
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}

// handleEvent turns a filesystem event into pending groups.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	for _, group := range w.groupsFor(event) {
		w.debouncer.Add(group)
	}
}

// groupsFor returns the groups an event makes stale. New directories are
// watched as a side effect.
func (w *Watcher) groupsFor(event fsnotify.Event) []string {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.ignoreDirs[filepath.Base(path)] {
				return nil
			}
			if err := w.addRecursive(path); err != nil {
				w.logger.Error(fmt.Errorf("failed to watch new directory %s: %w", path, err))
			}
			// Files created before the watch was in place.
			return w.ownersOf(path)
		}
	}

	change, ok := changeOf(event)
	if !ok {
		return nil
	}

	if group, ok := w.descriptorGroup(path); ok {
		w.logger.FileChanged(path, change)
		return []string{group}
	}

	if !w.extensions[filepath.Ext(path)] {
		return nil
	}
	w.logger.FileChanged(w.rel(path), change)

	// Edits keep the file set, so the outputs stay valid.
	if change == ChangeModified {
		return nil
	}
	return w.ownersOf(path)
}

func changeOf(event fsnotify.Event) (ChangeType, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return ChangeAdded, true
	case event.Has(fsnotify.Write):
		return ChangeModified, true
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return ChangeDeleted, true
	default:
		return "", false
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.config.Base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ownersOf(path string) []string {
	rel := w.rel(path)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil
	}
	return scope.Owners(w.config.Groups, rel)
}

// descriptorGroup reports the hand-maintained group whose descriptor is path.
func (w *Watcher) descriptorGroup(path string) (string, bool) {
	path = filepath.Clean(path)
	for _, g := range w.config.Groups {
		if g.Discover {
			continue
		}
		desc := filepath.Join(w.config.OutputDir, filepath.FromSlash(w.config.Files.DescriptorFor(g.Name)))
		if desc == path {
			return g.Name, true
		}
	}
	return "", false
}

// syncGroups is called when the debouncer flushes. Groups run in config
// order.
func (w *Watcher) syncGroups(names []string) {
	if len(names) == 0 {
		return
	}

	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	var groups []syncer.Group
	for _, g := range w.config.Groups {
		if slices.Contains(names, g.Name) {
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return
	}

	w.logger.Syncing(names)

	ctx := context.Background()
	summary := w.config.Runner.Sync(ctx, groups)
	for _, r := range summary.Results {
		if r.Status == syncer.Success {
			w.logger.Synced(r.Group, r.Outputs)
		} else {
			w.logger.GroupFailed(r.Group, r.Err)
		}
	}

	if !summary.OK() || w.config.Tracker == nil {
		return
	}
	if err := w.config.Tracker.Refresh(ctx); err != nil {
		w.logger.Error(fmt.Errorf("failed to update state: %w", err))
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// ErrWatchLimitReached is returned when the OS watch limit is exceeded.
var ErrWatchLimitReached = errors.New("filesystem watch limit reached")
