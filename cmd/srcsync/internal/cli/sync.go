package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/incremental"
	"github.com/albertocavalcante/srcsync/cmd/srcsync/internal/scope"
	"github.com/albertocavalcante/srcsync/internal/log"
	"github.com/albertocavalcante/srcsync/pkg/config"
	"github.com/albertocavalcante/srcsync/pkg/syncer"
	"github.com/spf13/cobra"
)

var syncFlags struct {
	noDiscover bool
}

var syncCmd = &cobra.Command{
	Use:   "sync [group...]",
	Short: "Regenerate descriptors and build fragments",
	Long: `Syncs every configured group, or only the named ones.

For each group the source tree under its root is scanned and the descriptor
is rewritten, then every configured target (make, msbuild, msbuild-gui,
cmake) is regenerated from the descriptor. Groups with discover = false keep
their hand-maintained descriptor.

A group that fails is reported and skipped; the others still sync and the
command exits successfully. Only configuration errors are fatal.

The --no-discover flag skips scanning and regenerates targets from the
existing descriptors.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFlags.noDiscover, "no-discover", false,
		"Regenerate targets from existing descriptors without scanning")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groups, err := cfg.SyncGroups(args...)
	if err != nil {
		return err
	}

	opts := cfg.SyncOptions()
	opts.NoDiscover = syncFlags.noDiscover

	ctx := cmd.Context()
	summary := syncer.New(opts).Sync(ctx, groups)
	printSummary(cmd.OutOrStdout(), summary)

	// The recorded state covers every group, so only a full discovering run
	// may replace it.
	if summary.OK() && len(args) == 0 && !opts.NoDiscover {
		if err := refreshState(ctx, cfg); err != nil {
			log.Component("cli").Warn("failed to record state", "error", err)
		}
	}
	return nil
}

func newTracker(cfg *config.Config) (*incremental.Tracker, error) {
	groups, err := cfg.SyncGroups()
	if err != nil {
		return nil, err
	}
	return incremental.NewTracker(incremental.TrackerConfig{
		Root: cfg.BaseDir(),
		Dirs: scope.Roots(groups),
	}), nil
}

func refreshState(ctx context.Context, cfg *config.Config) error {
	tracker, err := newTracker(cfg)
	if err != nil {
		return err
	}
	return tracker.Refresh(ctx)
}

// printSummary writes one line per group and a closing count.
func printSummary(w io.Writer, s *syncer.Summary) {
	for _, r := range s.Results {
		if r.Status == syncer.Success {
			_, _ = fmt.Fprintf(w, "✓ %s: %d entries, wrote %s\n", r.Group, r.Entries, joinOrNone(r.Outputs))
			continue
		}
		_, _ = fmt.Fprintf(w, "✗ %s: %v\n", r.Group, r.Err)
	}

	failed := s.Failed()
	_, _ = fmt.Fprintf(w, "synced %d of %d groups in %s", len(s.Results)-len(failed), len(s.Results), s.Duration.Round(time.Millisecond))
	if len(failed) > 0 {
		_, _ = fmt.Fprintf(w, " (%d failed)", len(failed))
	}
	_, _ = fmt.Fprintln(w)
}

func joinOrNone(files []string) string {
	if len(files) == 0 {
		return "nothing"
	}
	return strings.Join(files, ", ")
}
