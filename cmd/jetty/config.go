package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/jettylabs/jetty/internal/cli"
	"github.com/jettylabs/jetty/write"
)

var configShowSource bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Show the effective configuration after merging defaults, config file, and environment variables.`,
	Example: `  # Show effective configuration
  jetty config show

  # Show configuration with source file path
  jetty config show --source`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configShowSource {
			if configPath != "" {
				fmt.Printf("Config file: %s\n\n", configPath)
			} else {
				fmt.Println("Config file: (none, using defaults)")
				fmt.Println()
			}
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the access configuration",
	Long: `Parse the desired-state access configuration and check referential
integrity: duplicate names, references to undeclared groups or users, and
identifiers naming unknown connectors. Every problem is reported, not just
the first.`,
	Example: `  # Validate the access configuration
  jetty config validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.AccessConfigPath()
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.ConfigError("reading access configuration", err)
		}
		accessCfg, err := write.ParseConfig(data)
		if err != nil {
			return cli.ValidationError("parsing access configuration", err)
		}
		if err := accessCfg.Validate(cfg.Namespaces()); err != nil {
			return cli.ValidationError("invalid access configuration", err)
		}

		if !quiet {
			fmt.Printf("%s is valid: %d groups, %d users, %d policies, %d default policies.\n",
				path, len(accessCfg.Groups), len(accessCfg.Users),
				len(accessCfg.Policies), len(accessCfg.DefaultPolicies))
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowSource, "source", false, "show config file source")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
