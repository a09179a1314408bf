package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/detect"
	"github.com/albertocavalcante/srcsync/pkg/config"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
)

var initFlags struct {
	dryRun bool
	force  bool
	detect bool
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter srcsync.toml",
	Long: `Writes srcsync.toml with the built-in defaults: the engine group
(discovered, sc_main.cpp excluded), the hand-maintained engine_main group and
the gui group under qt/.

With --detect the groups are instead proposed from the tree: one
discovering group per top-level directory that holds sources, with the make,
msbuild and cmake targets.

An existing srcsync.toml is left alone unless --force is given.
Use --dry-run to preview the file without writing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.dryRun, "dry-run", false,
		"Show what would be written without writing")
	initCmd.Flags().BoolVar(&initFlags.force, "force", false,
		"Overwrite an existing srcsync.toml")
	initCmd.Flags().BoolVar(&initFlags.detect, "detect", false,
		"Propose one group per top-level source directory")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		dir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
	}

	cfg := config.NewConfig()
	detected, err := detect.Roots(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	if initFlags.detect {
		if len(detected) == 0 {
			_, _ = fmt.Fprintln(out, "No source directories detected.")
			return nil
		}
		cfg.Groups = detectedGroups(detected)
	} else if missing := missingRoots(cfg, detected); len(missing) > 0 && len(detected) > 0 {
		_, _ = fmt.Fprintf(out, "note: no sources under %s (detected: %s); try --detect\n",
			strings.Join(missing, ", "), strings.Join(detected, ", "))
	}

	content, err := starterConfig(cfg)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, config.ConfigFileName)
	exists := fileExists(path)

	if initFlags.dryRun {
		if exists && !initFlags.force {
			_, _ = fmt.Fprintf(out, "%s exists (would not modify)\n", path)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Would write %s:\n\n%s", path, content)
		return nil
	}

	if exists && !initFlags.force {
		_, _ = fmt.Fprintf(out, "%s already exists (skipping, use --force to overwrite)\n", path)
		return nil
	}

	if err := (syncer.OSFS{Root: dir}).WriteFile(config.ConfigFileName, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ConfigFileName, err)
	}
	_, _ = fmt.Fprintf(out, "Created %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Adjust the groups in srcsync.toml to your tree")
	_, _ = fmt.Fprintln(out, "  2. Run 'srcsync sync' to generate the source lists")
	return nil
}

// starterConfig renders cfg as TOML.
func starterConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# srcsync configuration. See 'srcsync help sync'.\n\n")
	if err := cfg.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectedGroups proposes a discovering group per directory.
func detectedGroups(dirs []string) []config.GroupConfig {
	targets := []string{
		string(syncer.TargetMake),
		string(syncer.TargetMSBuild),
		string(syncer.TargetCMake),
	}
	groups := make([]config.GroupConfig, len(dirs))
	for i, d := range dirs {
		groups[i] = config.GroupConfig{
			Name:    d,
			Root:    d,
			Targets: slices.Clone(targets),
		}
	}
	return groups
}

// missingRoots returns the roots of discovering groups with no detected
// sources.
func missingRoots(cfg *config.Config, detected []string) []string {
	var missing []string
	for _, g := range cfg.Groups {
		if !g.Discovers() {
			continue
		}
		top, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(g.Root)), "/")
		if !slices.Contains(detected, top) && !slices.Contains(missing, g.Root) {
			missing = append(missing, g.Root)
		}
	}
	return missing
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
