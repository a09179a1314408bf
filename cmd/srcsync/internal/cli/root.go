// Package cli implements the srcsync command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/albertocavalcante/srcsync/internal/log"
	"github.com/albertocavalcante/srcsync/pkg/config"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity int
	logFormat string
	dir       string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "srcsync",
	Short: "Keep build-system source lists in sync with the tree",
	Long: `Srcsync discovers the C++ sources, headers and Qt resources of each
configured group, records them in a portable descriptor (QT_<group>.pri) and
regenerates the Makefile, MSBuild and CMake fragments from it.

Running srcsync without a command syncs every configured group.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
	RunE:              runSync,
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "srcsync %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Global flags (persistent across all commands)
	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", log.FormatText,
		"Log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.dir, "dir", "C", "",
		"Run as if started in this directory")
}

// initLogging applies the global flags to the logger before any command runs.
func initLogging(_ *cobra.Command, _ []string) error {
	if err := log.ValidateFormat(globalFlags.logFormat); err != nil {
		return err
	}
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
	return nil
}

// workDir returns the directory commands operate on.
func workDir() (string, error) {
	dir := globalFlags.dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return abs, nil
}

// loadConfig loads and validates the layered configuration for workDir.
func loadConfig() (*config.Config, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Component("cli").Debug("configuration loaded",
		"dir", cfg.Dir, "base", cfg.BaseDir(), "sources", cfg.Sources)
	return cfg, nil
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
