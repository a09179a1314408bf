package syncer

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/srcsync/pkg/emit"
	"github.com/albertocavalcante/srcsync/pkg/entry"
	"github.com/albertocavalcante/srcsync/pkg/transform"
)

// Target names a generated build-system file kind.
type Target string

const (
	TargetMake       Target = "make"
	TargetMSBuild    Target = "msbuild"
	TargetMSBuildGUI Target = "msbuild-gui"
	TargetCMake      Target = "cmake"
)

// Targets returns every known target in a stable order.
func Targets() []Target {
	return []Target{TargetMake, TargetMSBuild, TargetMSBuildGUI, TargetCMake}
}

// ParseTarget converts a config string into a Target.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Targets() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target %q (want one of make, msbuild, msbuild-gui, cmake)", s)
}

// GroupPlaceholder is replaced by the group name in file name templates.
const GroupPlaceholder = "{group}"

// FileNames holds output file name templates.
type FileNames struct {
	Descriptor string
	Make       string
	MSBuild    string
	CMake      string
}

// DefaultFileNames are the conventional names, e.g. QT_engine.pri.
var DefaultFileNames = FileNames{
	Descriptor: "QT_{group}.pri",
	Make:       "{group}_make",
	MSBuild:    "VS_{group}.props",
	CMake:      "cmake_{group}.txt",
}

func expand(tmpl, group string) string {
	return strings.ReplaceAll(tmpl, GroupPlaceholder, group)
}

func (f FileNames) withDefaults() FileNames {
	if f.Descriptor == "" {
		f.Descriptor = DefaultFileNames.Descriptor
	}
	if f.Make == "" {
		f.Make = DefaultFileNames.Make
	}
	if f.MSBuild == "" {
		f.MSBuild = DefaultFileNames.MSBuild
	}
	if f.CMake == "" {
		f.CMake = DefaultFileNames.CMake
	}
	return f
}

// DescriptorFor returns the descriptor file name of group.
func (f FileNames) DescriptorFor(group string) string {
	return expand(f.withDefaults().Descriptor, group)
}

// For returns the file name target t writes for group. Both MSBuild variants
// share one template.
func (f FileNames) For(t Target, group string) string {
	f = f.withDefaults()
	switch t {
	case TargetMake:
		return expand(f.Make, group)
	case TargetMSBuild, TargetMSBuildGUI:
		return expand(f.MSBuild, group)
	case TargetCMake:
		return expand(f.CMake, group)
	default:
		return ""
	}
}

// MakeOptions configures the Makefile target.
type MakeOptions struct {
	StripPrefix   string
	PathSeparator string
	Variable      string
}

// MSBuildOptions configures both MSBuild targets.
type MSBuildOptions struct {
	EscapePrefix   string
	Sentinel       string
	ResourceFile   string
	Configurations []emit.Configuration
}

// render applies t's rule table to store and emits the file text.
func (o *Options) render(t Target, store *entry.Store) (string, error) {
	switch t {
	case TargetMake:
		rules := transform.Make(o.Make.StripPrefix, o.Make.PathSeparator)
		return emit.Make(o.Header, o.Make.Variable, rules.Apply(store)), nil
	case TargetMSBuild, TargetMSBuildGUI:
		rules := transform.MSBuild(o.MSBuild.EscapePrefix)
		return emit.MSBuild(o.Header, emit.MSBuildOptions{
			GUI:            t == TargetMSBuildGUI,
			Sentinel:       o.MSBuild.Sentinel,
			ResourceFile:   o.MSBuild.ResourceFile,
			Configurations: o.MSBuild.Configurations,
		}, rules.Apply(store)), nil
	case TargetCMake:
		return emit.CMake(o.Header, transform.CMake().Apply(store)), nil
	default:
		return "", fmt.Errorf("unknown target %q", t)
	}
}
