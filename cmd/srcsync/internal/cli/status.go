package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/incremental"
	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/scope"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/albertocavalcante/srcsync/pkg/util"
	"github.com/spf13/cobra"
)

var statusFlags struct {
	verbose bool
	json    bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which groups have stale source lists",
	Long: `Compares the source files under each discovering group root with the
files recorded after the last successful 'srcsync sync'.

A group is stale when files were added or deleted under its root. Edits to
existing files are reported but do not make a group stale, since the source
lists only name files.

The --verbose flag shows individual file changes (new, modified, deleted)
and the directories they fall in.
The --json flag outputs the result as JSON for scripting.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.verbose, "verbose", false,
		"Show individual file changes")
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the JSON output format for srcsync status.
type StatusOutput struct {
	Stale         bool     `json:"stale"`
	StaleGroups   []string `json:"stale_groups"`
	NewFiles      []string `json:"new_files,omitempty"`
	ModifiedFiles []string `json:"modified_files,omitempty"`
	DeletedFiles  []string `json:"deleted_files,omitempty"`
	AffectedDirs  []string `json:"affected_dirs,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	groups, err := cfg.SyncGroups()
	if err != nil {
		return err
	}
	tracker := incremental.NewTracker(incremental.TrackerConfig{
		Root: cfg.BaseDir(),
		Dirs: scope.Roots(groups),
	})

	out := cmd.OutOrStdout()

	if !tracker.HasState() {
		if statusFlags.json {
			return outputJSON(out, StatusOutput{
				Stale:       true,
				StaleGroups: discoveringGroups(groups),
				Error:       "no state found",
			})
		}
		_, _ = fmt.Fprintln(out, "No state found. Run 'srcsync sync' to record the initial state.")
		return nil
	}

	cs, err := tracker.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to detect staleness: %w", err)
	}
	stale := scope.StaleGroups(groups, cs.Structural())

	if statusFlags.json {
		return outputJSON(out, StatusOutput{
			Stale:         len(stale) > 0,
			StaleGroups:   stale,
			NewFiles:      cs.Added,
			ModifiedFiles: cs.Modified,
			DeletedFiles:  cs.Deleted,
			AffectedDirs:  cs.AffectedDirs(),
		})
	}

	printStatus(out, groups, cs, stale, statusFlags.verbose)
	return nil
}

func printStatus(w io.Writer, groups []syncer.Group, cs *incremental.ChangeSet, stale []string, verbose bool) {
	if len(stale) == 0 {
		if len(cs.Modified) > 0 {
			_, _ = fmt.Fprintf(w, "Source lists are up to date (%d files modified)\n", len(cs.Modified))
		} else {
			_, _ = fmt.Fprintln(w, "Source lists are up to date")
		}
		if !verbose {
			return
		}
	} else {
		byGroup := make(map[string]int)
		for _, f := range cs.Structural() {
			for _, g := range scope.Owners(groups, f) {
				byGroup[g]++
			}
		}
		_, _ = fmt.Fprintf(w, "Stale groups (%d):\n", len(stale))
		for _, g := range util.SortedKeys(byGroup) {
			_, _ = fmt.Fprintf(w, "  %s (%d files added or deleted)\n", g, byGroup[g])
		}
	}

	if verbose {
		printFiles(w, "New files", "+", cs.Added)
		printFiles(w, "Modified files", "~", cs.Modified)
		printFiles(w, "Deleted files", "-", cs.Deleted)
		printFiles(w, "Affected directories", "*", cs.AffectedDirs())
	}

	if len(stale) > 0 {
		_, _ = fmt.Fprintln(w, "\nRun 'srcsync sync' to regenerate stale groups")
	}
}

func printFiles(w io.Writer, title, mark string, files []string) {
	if len(files) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s (%d):\n", title, len(files))
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "  %s %s\n", mark, f)
	}
}

func discoveringGroups(groups []syncer.Group) []string {
	var names []string
	for _, g := range groups {
		if g.Discover {
			names = append(names, g.Name)
		}
	}
	return names
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
