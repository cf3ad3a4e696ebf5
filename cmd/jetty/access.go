package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/internal/cli"
	"github.com/jettylabs/jetty/permissions"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Query access over the graph",
}

var accessUserAssetsCmd = &cobra.Command{
	Use:   "user-assets <user>",
	Short: "List the assets a user can reach",
	Args:  cobra.ExactArgs(1),
	Example: `  # Assets reachable by a user, with the granted privileges
  jetty access user-assets isaac@allen.dev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		engine := permissions.NewEngine(snap.Graph, cfg.Catalog())
		assets, err := engine.UserAccessibleAssets(jetty.UserName(args[0]))
		if err != nil {
			return cli.GeneralError("resolving access", err)
		}
		if len(assets) == 0 {
			fmt.Println("No accessible assets.")
			return nil
		}
		for _, asset := range sortedNames(assets) {
			fmt.Println(asset)
			printPermissions(assets[asset])
		}
		return nil
	},
}

var accessAssetUsersCmd = &cobra.Command{
	Use:   "asset-users <cual>",
	Short: "List the users with access to an asset",
	Args:  cobra.ExactArgs(1),
	Example: `  # Users with any allowed privilege on an asset
  jetty access asset-users "snowflake://acct/db/schema/table"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		engine := permissions.NewEngine(snap.Graph, cfg.Catalog())
		users, err := engine.UsersWithAccessToAsset(jetty.AssetName(jetty.Cual(args[0])))
		if err != nil {
			return cli.GeneralError("resolving access", err)
		}
		if len(users) == 0 {
			fmt.Println("No users with access.")
			return nil
		}
		for _, user := range sortedNames(users) {
			fmt.Println(user)
			printPermissions(users[user])
		}
		return nil
	},
}

var accessUserTagsCmd = &cobra.Command{
	Use:   "user-tags <user>",
	Short: "List the tags on assets a user can reach",
	Args:  cobra.ExactArgs(1),
	Example: `  # Tags reachable by a user, with the carrying assets
  jetty access user-tags isaac@allen.dev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		engine := permissions.NewEngine(snap.Graph, cfg.Catalog())
		tags, err := engine.UserAccessibleTags(jetty.UserName(args[0]))
		if err != nil {
			return cli.GeneralError("resolving access", err)
		}
		if len(tags) == 0 {
			fmt.Println("No accessible tags.")
			return nil
		}
		for _, tag := range sortedNames(tags) {
			fmt.Println(tag)
			for _, asset := range tags[tag] {
				fmt.Printf("  %s\n", asset)
			}
		}
		return nil
	},
}

func sortedNames[V any](m map[jetty.NodeName]V) []jetty.NodeName {
	out := make([]jetty.NodeName, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func printPermissions(perms []jetty.EffectivePermission) {
	for _, p := range perms {
		fmt.Printf("  %s: %s\n", p.Privilege, p.Mode)
		for _, reason := range p.Reasons {
			fmt.Printf("    %s\n", reason)
		}
	}
}

func init() {
	accessCmd.AddCommand(accessUserAssetsCmd)
	accessCmd.AddCommand(accessAssetUsersCmd)
	accessCmd.AddCommand(accessUserTagsCmd)
}
