package cli

import (
	"time"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/watch"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/spf13/cobra"
)

var watchFlags struct {
	debounce int
	verbose  bool
	json     bool
	noColor  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch group roots and re-sync when files appear or disappear",
	Long: `Watches the roots of the discovering groups and re-syncs the affected
groups when source files are added, deleted or renamed. Editing a
hand-maintained descriptor re-syncs its group. Changes inside a debounce
window are coalesced into one sync.

Example output:

  $ srcsync watch

  srcsync: watching 412 files in /src/simc
  srcsync: groups: engine, engine_main, gui
  srcsync: ready

  [14:32:15] syncing engine...
  [14:32:15] ✓ engine synced (4 files)

Press Ctrl+C to stop watching.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchFlags.debounce, "debounce", 500,
		"Debounce window in milliseconds")
	watchCmd.Flags().BoolVar(&watchFlags.verbose, "verbose", false,
		"Show file-level changes")
	watchCmd.Flags().BoolVar(&watchFlags.json, "json", false,
		"Stream JSON events (for tooling integration)")
	watchCmd.Flags().BoolVar(&watchFlags.noColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	groups, err := cfg.SyncGroups()
	if err != nil {
		return err
	}
	tracker, err := newTracker(cfg)
	if err != nil {
		return err
	}
	opts := cfg.SyncOptions()

	w, err := watch.New(watch.Config{
		Base:      cfg.BaseDir(),
		OutputDir: cfg.OutputPath(),
		Groups:    groups,
		Files:     opts.Files,
		Runner:    syncer.New(opts),
		Tracker:   tracker,
		Debounce:  time.Duration(watchFlags.debounce) * time.Millisecond,
		Verbose:   watchFlags.verbose,
		NoColor:   watchFlags.noColor,
		JSON:      watchFlags.json,
		Writer:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(cmd.Context())
}
