package main

import (
	"github.com/spf13/cobra"

	"github.com/jettylabs/jetty/internal/cli"
	"github.com/jettylabs/jetty/snapshot"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "jetty",
	Short: "Cross-platform access governance",
	Long: `jetty - Cross-platform access governance

Jetty builds a unified graph of users, groups, assets, tags, and policies
across data platforms, answers effective-permission queries over it, and
reconciles a desired-state configuration against what the platforms report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupAccess    = "access"
	groupReconcile = "reconcile"
	groupUtility   = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover jetty.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Define command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: groupAccess, Title: "Access:"},
		&cobra.Group{ID: groupReconcile, Title: "Reconcile:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Access commands
	accessCmd.GroupID = groupAccess
	rootCmd.AddCommand(accessCmd)

	// Reconcile commands
	diffCmd.GroupID = groupReconcile
	rootCmd.AddCommand(diffCmd)

	// Utility commands
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// loadSnapshot reads the project's graph snapshot for commands that query or
// diff the environment.
func loadSnapshot() (snapshot.Snapshot, error) {
	snap, err := snapshot.Read(cfg.SnapshotPath())
	if err != nil {
		if snapshot.IsStaleErr(err) {
			return snapshot.Snapshot{}, cli.SnapshotError("snapshot is from an incompatible version, re-run ingestion", err)
		}
		return snapshot.Snapshot{}, cli.SnapshotError("loading graph snapshot (has ingestion run?)", err)
	}
	return snap, nil
}
