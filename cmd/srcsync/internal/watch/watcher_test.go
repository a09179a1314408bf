package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/incremental"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/fsnotify/fsnotify"
)

// fakeRunner records the groups it is asked to sync and fails the ones
// listed in fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]bool
}

func (r *fakeRunner) Sync(_ context.Context, groups []syncer.Group) *syncer.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	summary := &syncer.Summary{}
	for _, g := range groups {
		names = append(names, g.Name)
		res := syncer.Result{Group: g.Name, Status: syncer.Success, Outputs: []string{g.Name + "_make"}}
		if r.fail[g.Name] {
			res.Status = syncer.Failed
			res.Err = errors.New("boom")
			res.Outputs = nil
		}
		summary.Results = append(summary.Results, res)
	}
	r.calls = append(r.calls, names)
	return summary
}

func testGroups() []syncer.Group {
	return []syncer.Group{
		{Name: "engine", Root: "engine", Exclude: ".*sc_main.cpp", Discover: true},
		{Name: "engine_main", Root: "engine", Discover: false},
		{Name: "gui", Root: "qt", Discover: true},
	}
}

func newTestWatcher(t *testing.T, base string, runner Runner) (*Watcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w, err := New(Config{
		Base:   base,
		Groups: testGroups(),
		Runner: runner,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w, &buf
}

func TestIsWatchLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"not exist", &os.PathError{Op: "watch", Path: "/foo", Err: os.ErrNotExist}, false},
		{"permission", os.ErrPermission, false},
		{"ENOSPC", &os.PathError{Op: "inotify_add_watch", Path: "/foo", Err: syscall.ENOSPC}, true},
		{"EMFILE", errors.New("too many open files"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWatchLimitError(tt.err); got != tt.expected {
				t.Errorf("isWatchLimitError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNew_RequiresRunner(t *testing.T) {
	if _, err := New(Config{Base: t.TempDir()}); err == nil {
		t.Error("New without a runner should fail")
	}
}

func TestNew_Defaults(t *testing.T) {
	base := t.TempDir()
	w, _ := newTestWatcher(t, base, &fakeRunner{})

	if w.config.OutputDir != base {
		t.Errorf("OutputDir = %q, want %q", w.config.OutputDir, base)
	}
	for _, ext := range []string{".cpp", ".hpp", ".hh", ".qrc"} {
		if !w.extensions[ext] {
			t.Errorf("extension %s should be tracked", ext)
		}
	}
	if w.extensions[".txt"] {
		t.Error(".txt should not be tracked")
	}
	if !w.ignoreDirs[".git"] || !w.ignoreDirs[".srcsync"] {
		t.Errorf("ignoreDirs = %v", w.ignoreDirs)
	}
}

func TestGroupsFor(t *testing.T) {
	base := t.TempDir()
	w, _ := newTestWatcher(t, base, &fakeRunner{})

	at := func(rel string) string { return filepath.Join(base, filepath.FromSlash(rel)) }

	tests := []struct {
		name  string
		event fsnotify.Event
		want  []string
	}{
		{"new source", fsnotify.Event{Name: at("engine/sc_io.cpp"), Op: fsnotify.Create}, []string{"engine"}},
		{"removed header", fsnotify.Event{Name: at("engine/sub/a.hpp"), Op: fsnotify.Remove}, []string{"engine"}},
		{"renamed resource", fsnotify.Event{Name: at("qt/res.qrc"), Op: fsnotify.Rename}, []string{"gui"}},
		{"content edit", fsnotify.Event{Name: at("engine/sc_io.cpp"), Op: fsnotify.Write}, nil},
		{"chmod", fsnotify.Event{Name: at("engine/sc_io.cpp"), Op: fsnotify.Chmod}, nil},
		{"excluded file", fsnotify.Event{Name: at("engine/sc_main.cpp"), Op: fsnotify.Create}, nil},
		{"untracked extension", fsnotify.Event{Name: at("engine/notes.txt"), Op: fsnotify.Create}, nil},
		{"outside roots", fsnotify.Event{Name: at("misc/x.cpp"), Op: fsnotify.Create}, nil},
		{"hand-maintained descriptor", fsnotify.Event{Name: at("QT_engine_main.pri"), Op: fsnotify.Write}, []string{"engine_main"}},
		{"generated descriptor", fsnotify.Event{Name: at("QT_engine.pri"), Op: fsnotify.Write}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.groupsFor(tt.event)
			if !slices.Equal(got, tt.want) {
				t.Errorf("groupsFor(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestGroupsFor_NewDirectory(t *testing.T) {
	base := t.TempDir()
	w, _ := newTestWatcher(t, base, &fakeRunner{})

	dir := filepath.Join(base, "qt", "widgets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	got := w.groupsFor(fsnotify.Event{Name: dir, Op: fsnotify.Create})
	if !slices.Equal(got, []string{"gui"}) {
		t.Errorf("new directory should mark its owner, got %v", got)
	}
	if !slices.Contains(w.fsWatcher.WatchList(), dir) {
		t.Errorf("new directory should be watched, watch list = %v", w.fsWatcher.WatchList())
	}

	ignored := filepath.Join(base, "qt", ".git")
	if err := os.MkdirAll(ignored, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := w.groupsFor(fsnotify.Event{Name: ignored, Op: fsnotify.Create}); got != nil {
		t.Errorf("ignored directory should not mark groups, got %v", got)
	}
}

func TestAddRecursive_SkipsIgnoredDirs(t *testing.T) {
	base := t.TempDir()
	for _, d := range []string{"engine/sub", "engine/.git/objects", "engine/.srcsync"} {
		if err := os.MkdirAll(filepath.Join(base, filepath.FromSlash(d)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	w, _ := newTestWatcher(t, base, &fakeRunner{})

	if err := w.addRecursive(filepath.Join(base, "engine")); err != nil {
		t.Fatalf("addRecursive() error = %v", err)
	}

	list := w.fsWatcher.WatchList()
	if !slices.Contains(list, filepath.Join(base, "engine", "sub")) {
		t.Errorf("engine/sub should be watched: %v", list)
	}
	for _, p := range list {
		if strings.Contains(p, ".git") || strings.Contains(p, ".srcsync") {
			t.Errorf("ignored directory watched: %s", p)
		}
	}
}

func TestSyncGroups(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{fail: map[string]bool{"engine_main": true}}
	w, buf := newTestWatcher(t, base, runner)

	w.syncGroups([]string{"gui", "engine_main", "engine"})

	if len(runner.calls) != 1 {
		t.Fatalf("expected one sync call, got %d", len(runner.calls))
	}
	if want := []string{"engine", "engine_main", "gui"}; !slices.Equal(runner.calls[0], want) {
		t.Errorf("groups synced in %v, want config order %v", runner.calls[0], want)
	}

	out := buf.String()
	for _, want := range []string{"engine synced", "engine_main failed: boom", "gui synced"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}

	stats := w.logger.Stats()
	if stats.SyncCount != 2 || stats.ErrorCount != 1 {
		t.Errorf("stats = %+v, want 2 syncs and 1 error", stats)
	}
}

func TestSyncGroups_UnknownNames(t *testing.T) {
	runner := &fakeRunner{}
	w, _ := newTestWatcher(t, t.TempDir(), runner)

	w.syncGroups([]string{"nope"})
	w.syncGroups(nil)

	if len(runner.calls) != 0 {
		t.Errorf("runner should not be called, got %v", runner.calls)
	}
}

func TestSyncGroups_RefreshesTracker(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "engine"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "engine", "a.cpp"), []byte("int a;"), 0o644); err != nil {
		t.Fatal(err)
	}

	tracker := incremental.NewTracker(incremental.TrackerConfig{Root: base, Dirs: []string{"engine"}})

	failing := &fakeRunner{fail: map[string]bool{"engine": true}}
	w, _ := newTestWatcher(t, base, failing)
	w.config.Tracker = tracker
	w.syncGroups([]string{"engine"})
	if tracker.HasState() {
		t.Fatal("a failed sync should not record state")
	}

	w.config.Runner = &fakeRunner{}
	w.syncGroups([]string{"engine"})
	if !tracker.HasState() {
		t.Fatal("a successful sync should record state")
	}
	if n := tracker.TrackedFileCount(); n != 1 {
		t.Errorf("TrackedFileCount() = %d, want 1", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	base := t.TempDir()
	for _, d := range []string{"engine", "qt"} {
		if err := os.MkdirAll(filepath.Join(base, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	w, buf := newTestWatcher(t, base, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "groups: engine, engine_main, gui") {
		t.Errorf("missing ready output: %s", out)
	}
	if !strings.Contains(out, "shutting down") {
		t.Errorf("missing shutdown output: %s", out)
	}
	if !slices.Contains(w.fsWatcher.WatchList(), base) {
		t.Errorf("output dir should be watched for hand-maintained descriptors: %v", w.fsWatcher.WatchList())
	}
}
