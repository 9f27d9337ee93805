package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/applier"
	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/deployment"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/vfs"
)

var uninstallScope string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <plugin>",
	Short: "Remove a plugin from every target and delete its cache entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}
		scope, err := parseScope(uninstallScope)
		if err != nil {
			return err
		}

		fs := vfs.NewReal()
		c := cache.New(fs, paths.PluginCacheDir())

		marketplaceName, name, err := resolvePlugin(c, args[0])
		if err != nil {
			return err
		}
		origin := originFor(marketplaceName, name)
		pluginDir := c.PluginPath(marketplaceName, name)

		sidecar, ok, err := metadata.Load(fs, pluginDir)
		if err != nil {
			return err
		}

		if ok && len(sidecar.EnabledTargets()) > 0 {
			m, err := c.LoadManifest(marketplaceName, name)
			if err != nil {
				return err
			}
			components, err := deployment.Resolve(fs, pluginDir, m)
			if err != nil {
				return err
			}

			placed := placedComponentsFor(sidecar.EnabledTargets(), scope, components)
			plan := planner.PlanUninstall(planner.DisableInput{
				Origin:      origin,
				ProjectRoot: root,
				Placed:      placed,
			})

			result := applier.Apply(fs, plan)
			fmt.Println(result.Message())
			if !result.Success() {
				return fmt.Errorf("uninstall failed to remove every placed component for %s; cache entry left in place", name)
			}
		}

		if err := c.Remove(marketplaceName, name); err != nil {
			return err
		}
		fmt.Printf("uninstalled %s\n", name)
		return nil
	},
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallScope, "scope", "project", "placement scope: project or personal")
}
