package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/internal/cli"
	"github.com/jettylabs/jetty/write"
)

var diffConnector string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare desired state against the environment",
	Long: `Compare the desired-state configuration against the environment state
recorded in the graph snapshot and print the changes needed to reconcile
them, in plan style: + add, - remove, ~ modify.`,
	Example: `  # Show all pending changes
  jetty diff

  # Show changes for one connector only
  jetty diff --connector snow`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(cfg.AccessConfigPath())
		if err != nil {
			return cli.ConfigError("reading access configuration", err)
		}
		accessCfg, err := write.ParseConfig(data)
		if err != nil {
			return cli.ConfigError("parsing access configuration", err)
		}
		if err := accessCfg.Validate(cfg.Namespaces()); err != nil {
			return cli.ValidationError("invalid access configuration", err)
		}

		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		diffs, err := write.GetDiffs(accessCfg, snap.Graph, snap.Translator, cfg.Manifests())
		if err != nil {
			return cli.GeneralError("computing diffs", err)
		}

		if diffConnector != "" {
			split := diffs.SplitByConnector()
			diffs = split[jetty.ConnectorNamespace(diffConnector)]
		}

		if diffs.Empty() {
			if !quiet {
				fmt.Println("No changes. The environment matches the configuration.")
			}
			return nil
		}
		fmt.Print(diffs.String())
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffConnector, "connector", "", "restrict output to one connector namespace")
}
