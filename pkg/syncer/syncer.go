// Package syncer runs the discover, parse, transform and emit pipeline for
// each configured group and writes the results.
package syncer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/albertocavalcante/srcsync/internal/log"
	"github.com/albertocavalcante/srcsync/pkg/emit"
	"github.com/albertocavalcante/srcsync/pkg/entry"
	"github.com/albertocavalcante/srcsync/pkg/transform"
)

// Group is one named source-set with its own descriptor and targets.
type Group struct {
	Name string
	// Root is the group directory relative to the project base.
	Root string
	// Exclude is a match-from-start regular expression over base-relative paths.
	Exclude string
	// Discover regenerates the descriptor from disk before emitting targets.
	// When false the descriptor is hand-maintained.
	Discover bool
	Targets  []Target
}

// Options configures a Syncer.
type Options struct {
	// Base is the project base directory that group roots are relative to.
	Base string
	// Source is the filesystem discovery scans. Defaults to os.DirFS(Base).
	Source fs.FS
	// Output receives descriptors and generated files. Defaults to OSFS{Base}.
	Output FS
	// NoDiscover skips discovery for every group.
	NoDiscover bool

	Header  emit.Header
	Files   FileNames
	Make    MakeOptions
	MSBuild MSBuildOptions
}

// DefaultOptions returns options for base with every default filled in.
func DefaultOptions(base string) Options {
	return Options{
		Base:   base,
		Header: emit.DefaultHeader,
		Files:  DefaultFileNames,
		Make: MakeOptions{
			StripPrefix:   transform.DefaultMakePrefix,
			PathSeparator: transform.DefaultPathSeparator,
			Variable:      emit.DefaultMakeVariable,
		},
		MSBuild: MSBuildOptions{
			EscapePrefix:   transform.DefaultEscapePrefix,
			Sentinel:       emit.DefaultSentinel,
			ResourceFile:   emit.DefaultResourceFile,
			Configurations: emit.DefaultConfigurations(),
		},
	}
}

// Status is the outcome of one group.
type Status int

const (
	Success Status = iota
	Failed
)

func (s Status) String() string {
	if s == Success {
		return "success"
	}
	return "failed"
}

// Result describes what happened to one group.
type Result struct {
	Group  string
	Status Status
	Err    error
	// Outputs are the files written, descriptor first when discovered.
	Outputs  []string
	Entries  int
	Duration time.Duration
}

// Summary collects the results of a Sync call in group order.
type Summary struct {
	Results  []Result
	Duration time.Duration
}

// Succeeded returns the names of groups that synced.
func (s *Summary) Succeeded() []string {
	return s.names(Success)
}

// Failed returns the names of groups that failed.
func (s *Summary) Failed() []string {
	return s.names(Failed)
}

// OK reports whether every group succeeded.
func (s *Summary) OK() bool {
	return len(s.Failed()) == 0
}

func (s *Summary) names(st Status) []string {
	var out []string
	for _, r := range s.Results {
		if r.Status == st {
			out = append(out, r.Group)
		}
	}
	return out
}

// Syncer executes groups sequentially.
type Syncer struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Syncer. Empty separator and escape tokens fall back to the
// defaults; an empty strip prefix disables stripping.
func New(opts Options) *Syncer {
	if opts.Base == "" {
		opts.Base = "."
	}
	if opts.Source == nil {
		opts.Source = os.DirFS(opts.Base)
	}
	if opts.Output == nil {
		opts.Output = OSFS{Root: opts.Base}
	}
	if opts.Make.PathSeparator == "" {
		opts.Make.PathSeparator = transform.DefaultPathSeparator
	}
	if opts.MSBuild.EscapePrefix == "" {
		opts.MSBuild.EscapePrefix = transform.DefaultEscapePrefix
	}
	return &Syncer{
		opts:   opts,
		logger: log.Component("syncer"),
	}
}

// Sync processes groups in order. A failing group is logged and recorded;
// it never stops the groups after it. If ctx is cancelled the remaining
// groups are recorded as failed with the context error.
func (s *Syncer) Sync(ctx context.Context, groups []Group) *Summary {
	start := time.Now()
	sum := &Summary{Results: make([]Result, 0, len(groups))}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			sum.Results = append(sum.Results, Result{Group: g.Name, Status: Failed, Err: err})
			continue
		}
		sum.Results = append(sum.Results, s.SyncGroup(ctx, g))
	}

	sum.Duration = time.Since(start)
	s.logger.Info("sync finished",
		"groups", len(groups),
		"failed", len(sum.Failed()),
		"duration", sum.Duration.Round(time.Millisecond))
	return sum
}

// SyncGroup runs the pipeline for a single group.
func (s *Syncer) SyncGroup(ctx context.Context, g Group) Result {
	start := time.Now()
	logger := log.Group("syncer", g.Name)
	logger.Info("syncing group", "root", g.Root, "discover", g.Discover && !s.opts.NoDiscover)

	res := Result{Group: g.Name}
	err := s.run(ctx, g, logger, &res)
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = Failed
		res.Err = err
		logger.Error("group failed", "error", err)
		return res
	}

	res.Status = Success
	logger.Info("group synced", "entries", res.Entries, "outputs", len(res.Outputs))
	return res
}

func (s *Syncer) run(ctx context.Context, g Group, logger *slog.Logger, res *Result) error {
	descName := s.opts.Files.DescriptorFor(g.Name)

	if g.Discover && !s.opts.NoDiscover {
		store, err := entry.Discover(g.Name, entry.DiscoverConfig{
			FS:      s.opts.Source,
			Base:    s.opts.Base,
			Root:    g.Root,
			Exclude: g.Exclude,
		})
		if err != nil {
			return &Error{Kind: DiscoveryError, Group: g.Name, Path: g.Root, Err: err}
		}
		logger.Debug("discovered entries", "count", store.Len())
		store = representable(store, logger)

		if err := s.write(descName, emit.Descriptor(s.opts.Header, store)); err != nil {
			return &Error{Kind: WriteError, Group: g.Name, Path: descName, Err: err}
		}
		res.Outputs = append(res.Outputs, descName)
	}

	data, err := s.opts.Output.ReadFile(descName)
	if err != nil {
		return &Error{Kind: ParseError, Group: g.Name, Path: descName, Err: fmt.Errorf("failed to read descriptor: %w", err)}
	}
	store, err := entry.Parse(g.Name, bytes.NewReader(data))
	if err != nil {
		return &Error{Kind: ParseError, Group: g.Name, Path: descName, Err: err}
	}
	res.Entries = store.Len()
	logger.Debug("descriptor parsed", "file", descName, log.Counts("entries", store.Counts()))

	for _, verr := range store.Validate() {
		logger.Warn("suspicious descriptor entry", "file", descName, "error", verr)
	}
	for _, e := range store.Entries() {
		logger.Log(ctx, log.LevelTrace, "entry", log.Category(e.Category), log.KeyPath, e.Path)
	}

	for _, t := range g.Targets {
		name := s.opts.Files.For(t, g.Name)
		text, err := s.opts.render(t, store)
		if err != nil {
			return &Error{Kind: WriteError, Group: g.Name, Path: name, Err: err}
		}
		if err := s.write(name, text); err != nil {
			return &Error{Kind: WriteError, Group: g.Name, Path: name, Err: err}
		}
		logger.Debug("wrote target", log.KeyTarget, t, "file", name)
		res.Outputs = append(res.Outputs, name)
	}
	return nil
}

func (s *Syncer) write(name, text string) error {
	if err := s.opts.Output.WriteFile(name, []byte(text)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// representable drops discovered entries whose path a descriptor line cannot
// carry, warning about each one.
func representable(store *entry.Store, logger *slog.Logger) *entry.Store {
	var kept []entry.Entry
	dropped := false
	for _, e := range store.Entries() {
		if !e.Representable() {
			logger.Warn("skipping file that cannot be written to a descriptor", log.KeyPath, e.Path)
			dropped = true
			continue
		}
		kept = append(kept, e)
	}
	if !dropped {
		return store
	}
	return entry.NewStore(store.Group(), kept)
}
