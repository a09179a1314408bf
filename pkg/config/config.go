// Package config provides configuration management for srcsync.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/srcsync/config.toml)
//  3. Project config (.srcsync/config.toml or srcsync.toml)
//  4. Environment variables (SRCSYNC_*)
//  5. CLI flags (highest priority)
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/albertocavalcante/srcsync/pkg/emit"
	"github.com/albertocavalcante/srcsync/pkg/matcher"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/albertocavalcante/srcsync/pkg/transform"
)

// Config is the main configuration struct for srcsync.
type Config struct {
	// Base is the project base that group roots are relative to. Relative
	// values are resolved against the directory of the project config file.
	Base string `toml:"base"`

	// OutputDir receives descriptors and generated files. Empty means Base.
	OutputDir string `toml:"output_dir,omitempty"`

	// Generator and Command fill the header of every generated file.
	Generator string `toml:"generator"`
	Command   string `toml:"command"`

	Files   FilesConfig   `toml:"files"`
	Make    MakeConfig    `toml:"make"`
	MSBuild MSBuildConfig `toml:"msbuild"`

	// Groups lists the source groups in sync order.
	Groups []GroupConfig `toml:"groups"`

	// Dir is the directory the project config was loaded from, or the start
	// directory when there was none.
	Dir string `toml:"-"`

	// Sources lists the files that contributed to this config, lowest
	// precedence first.
	Sources []string `toml:"-"`
}

// FilesConfig holds output file name templates; "{group}" is replaced by the
// group name.
type FilesConfig struct {
	Descriptor string `toml:"descriptor"`
	Make       string `toml:"make"`
	MSBuild    string `toml:"msbuild"`
	CMake      string `toml:"cmake"`
}

// MakeConfig configures the Makefile fragment.
type MakeConfig struct {
	// StripPrefix is removed from the start of each path. An explicit empty
	// string disables stripping.
	StripPrefix *string `toml:"strip_prefix"`

	// PathSeparator replaces "/" in paths.
	PathSeparator string `toml:"path_separator"`

	// Variable is the make variable the sources are appended to.
	Variable string `toml:"variable"`
}

// MSBuildConfig configures the property sheets.
type MSBuildConfig struct {
	EscapePrefix   string               `toml:"escape_prefix"`
	Sentinel       string               `toml:"sentinel"`
	ResourceFile   string               `toml:"resource_file"`
	Configurations []emit.Configuration `toml:"configurations"`
}

// GroupConfig describes one source group.
type GroupConfig struct {
	Name    string `toml:"name"`
	Root    string `toml:"root"`
	Exclude string `toml:"exclude,omitempty"`

	// Discover regenerates the descriptor from disk. Defaults to true.
	Discover *bool    `toml:"discover,omitempty"`
	Targets  []string `toml:"targets"`
}

// Discovers reports whether the group regenerates its descriptor.
func (g GroupConfig) Discovers() bool {
	return g.Discover == nil || *g.Discover
}

// NewConfig creates a new Config with built-in defaults: the engine library
// (discovered, sc_main.cpp excluded), the hand-maintained engine_main group
// and the Qt GUI.
func NewConfig() *Config {
	prefix := transform.DefaultMakePrefix
	noDiscover := false
	allTargets := []string{string(syncer.TargetMake), string(syncer.TargetMSBuild), string(syncer.TargetCMake)}

	return &Config{
		Base:      ".",
		Generator: emit.DefaultHeader.Generator,
		Command:   emit.DefaultHeader.Command,
		Files: FilesConfig{
			Descriptor: syncer.DefaultFileNames.Descriptor,
			Make:       syncer.DefaultFileNames.Make,
			MSBuild:    syncer.DefaultFileNames.MSBuild,
			CMake:      syncer.DefaultFileNames.CMake,
		},
		Make: MakeConfig{
			StripPrefix:   &prefix,
			PathSeparator: transform.DefaultPathSeparator,
			Variable:      emit.DefaultMakeVariable,
		},
		MSBuild: MSBuildConfig{
			EscapePrefix:   transform.DefaultEscapePrefix,
			Sentinel:       emit.DefaultSentinel,
			ResourceFile:   emit.DefaultResourceFile,
			Configurations: emit.DefaultConfigurations(),
		},
		Groups: []GroupConfig{
			{
				Name:    "engine",
				Root:    "engine",
				Exclude: ".*sc_main.cpp",
				Targets: slices.Clone(allTargets),
			},
			{
				Name:     "engine_main",
				Root:     "engine",
				Discover: &noDiscover,
				Targets:  slices.Clone(allTargets),
			},
			{
				Name:    "gui",
				Root:    "qt",
				Targets: []string{string(syncer.TargetMSBuildGUI), string(syncer.TargetCMake)},
			},
		},
	}
}

// Merge merges another config into this one (other takes precedence).
// Lists (groups, configurations) replace rather than append.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Base != "" {
		c.Base = other.Base
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if other.Generator != "" {
		c.Generator = other.Generator
	}
	if other.Command != "" {
		c.Command = other.Command
	}

	// Merge file name templates
	if other.Files.Descriptor != "" {
		c.Files.Descriptor = other.Files.Descriptor
	}
	if other.Files.Make != "" {
		c.Files.Make = other.Files.Make
	}
	if other.Files.MSBuild != "" {
		c.Files.MSBuild = other.Files.MSBuild
	}
	if other.Files.CMake != "" {
		c.Files.CMake = other.Files.CMake
	}

	// Merge make config
	if other.Make.StripPrefix != nil {
		c.Make.StripPrefix = other.Make.StripPrefix
	}
	if other.Make.PathSeparator != "" {
		c.Make.PathSeparator = other.Make.PathSeparator
	}
	if other.Make.Variable != "" {
		c.Make.Variable = other.Make.Variable
	}

	// Merge msbuild config
	if other.MSBuild.EscapePrefix != "" {
		c.MSBuild.EscapePrefix = other.MSBuild.EscapePrefix
	}
	if other.MSBuild.Sentinel != "" {
		c.MSBuild.Sentinel = other.MSBuild.Sentinel
	}
	if other.MSBuild.ResourceFile != "" {
		c.MSBuild.ResourceFile = other.MSBuild.ResourceFile
	}
	if len(other.MSBuild.Configurations) > 0 {
		c.MSBuild.Configurations = slices.Clone(other.MSBuild.Configurations)
	}

	if len(other.Groups) > 0 {
		c.Groups = slices.Clone(other.Groups)
	}
}

// Validate checks that the config can drive a sync. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	templates := map[string]string{
		"files.descriptor": c.Files.Descriptor,
		"files.make":       c.Files.Make,
		"files.msbuild":    c.Files.MSBuild,
		"files.cmake":      c.Files.CMake,
	}
	for _, key := range []string{"files.descriptor", "files.make", "files.msbuild", "files.cmake"} {
		if !strings.Contains(templates[key], syncer.GroupPlaceholder) {
			errs = append(errs, fmt.Errorf("%s: template %q must contain %s", key, templates[key], syncer.GroupPlaceholder))
		}
	}

	if len(c.Groups) == 0 {
		errs = append(errs, errors.New("no groups configured"))
	}

	seen := make(map[string]bool)
	for i, g := range c.Groups {
		where := fmt.Sprintf("groups[%d]", i)
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		} else {
			where = fmt.Sprintf("group %q", g.Name)
			if seen[g.Name] {
				errs = append(errs, fmt.Errorf("%s: duplicate group name", where))
			}
			seen[g.Name] = true
		}
		if g.Root == "" {
			errs = append(errs, fmt.Errorf("%s: root is required", where))
		}
		if _, err := matcher.CompileExclude(g.Exclude); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		for _, t := range g.Targets {
			if _, err := syncer.ParseTarget(t); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
	}

	for i, mc := range c.MSBuild.Configurations {
		if mc.Name == "" {
			errs = append(errs, fmt.Errorf("msbuild.configurations[%d]: name is required", i))
		}
	}

	return errors.Join(errs...)
}

// BaseDir returns Base resolved against Dir.
func (c *Config) BaseDir() string {
	base := c.Base
	if base == "" {
		base = "."
	}
	if filepath.IsAbs(base) || c.Dir == "" {
		return filepath.Clean(base)
	}
	return filepath.Join(c.Dir, base)
}

// OutputPath returns the output directory resolved against Dir, defaulting
// to BaseDir.
func (c *Config) OutputPath() string {
	if c.OutputDir == "" {
		return c.BaseDir()
	}
	if filepath.IsAbs(c.OutputDir) || c.Dir == "" {
		return filepath.Clean(c.OutputDir)
	}
	return filepath.Join(c.Dir, c.OutputDir)
}

// GroupNames returns the configured group names in order.
func (c *Config) GroupNames() []string {
	names := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		names[i] = g.Name
	}
	return names
}

// SyncGroups converts the configured groups into syncer groups. With names,
// only those groups are returned (in config order); an unknown name is an
// error.
func (c *Config) SyncGroups(names ...string) ([]syncer.Group, error) {
	for _, n := range names {
		if !slices.Contains(c.GroupNames(), n) {
			return nil, fmt.Errorf("unknown group %q (configured: %s)", n, strings.Join(c.GroupNames(), ", "))
		}
	}

	var out []syncer.Group
	for _, g := range c.Groups {
		if len(names) > 0 && !slices.Contains(names, g.Name) {
			continue
		}
		sg := syncer.Group{
			Name:     g.Name,
			Root:     filepath.ToSlash(g.Root),
			Exclude:  g.Exclude,
			Discover: g.Discovers(),
		}
		for _, t := range g.Targets {
			target, err := syncer.ParseTarget(t)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			sg.Targets = append(sg.Targets, target)
		}
		out = append(out, sg)
	}
	return out, nil
}

// SyncOptions builds syncer options from the config.
func (c *Config) SyncOptions() syncer.Options {
	opts := syncer.DefaultOptions(c.BaseDir())
	opts.Output = syncer.OSFS{Root: c.OutputPath()}
	opts.Header = emit.Header{Generator: c.Generator, Command: c.Command}
	opts.Files = syncer.FileNames{
		Descriptor: c.Files.Descriptor,
		Make:       c.Files.Make,
		MSBuild:    c.Files.MSBuild,
		CMake:      c.Files.CMake,
	}

	if c.Make.StripPrefix != nil {
		opts.Make.StripPrefix = *c.Make.StripPrefix
	}
	if c.Make.PathSeparator != "" {
		opts.Make.PathSeparator = c.Make.PathSeparator
	}
	if c.Make.Variable != "" {
		opts.Make.Variable = c.Make.Variable
	}

	if c.MSBuild.EscapePrefix != "" {
		opts.MSBuild.EscapePrefix = c.MSBuild.EscapePrefix
	}
	if c.MSBuild.Sentinel != "" {
		opts.MSBuild.Sentinel = c.MSBuild.Sentinel
	}
	if c.MSBuild.ResourceFile != "" {
		opts.MSBuild.ResourceFile = c.MSBuild.ResourceFile
	}
	if c.MSBuild.Configurations != nil {
		opts.MSBuild.Configurations = slices.Clone(c.MSBuild.Configurations)
	}
	return opts
}

// Encode writes the config as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
