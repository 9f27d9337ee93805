package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/applier"
	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/deployment"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/vfs"
)

var disableScope string

var disableCmd = &cobra.Command{
	Use:   "disable <plugin>",
	Short: "Remove a plugin's placed components from every target it is enabled on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}
		scope, err := parseScope(disableScope)
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
		if !ok || len(sidecar.EnabledTargets()) == 0 {
			fmt.Printf("%s is not enabled on any target\n", name)
			return nil
		}

		m, err := c.LoadManifest(marketplaceName, name)
		if err != nil {
			return err
		}
		components, err := deployment.Resolve(fs, pluginDir, m)
		if err != nil {
			return err
		}

		placed := placedComponentsFor(sidecar.EnabledTargets(), scope, components)
		plan := planner.PlanDisable(planner.DisableInput{
			Origin:      origin,
			ProjectRoot: root,
			Placed:      placed,
		})

		result := applier.Apply(fs, plan)
		for targetName, tr := range result.ByTarget {
			if tr.OK() {
				sidecar.SetStatus(targetName, metadata.StatusDisabled)
			}
		}
		if err := metadata.Save(fs, pluginDir, sidecar); err != nil {
			return err
		}

		fmt.Println(result.Message())
		if !result.Success() {
			return fmt.Errorf("disable failed for %s", name)
		}
		return nil
	},
}

// placedComponentsFor expands every (target, component) pair a plugin is
// currently enabled on, for PlanDisable's input. It assumes the scope the
// caller is disabling from matches the scope it was enabled on, since
// the sidecar records only enable status, not scope.
func placedComponentsFor(enabledTargets []string, scope placement.Scope, components []planner.SourceComponent) []planner.PlacedComponent {
	var out []planner.PlacedComponent
	for _, t := range enabledTargets {
		for _, c := range components {
			out = append(out, planner.PlacedComponent{Target: t, Scope: scope, Component: c.Component})
		}
	}
	return out
}

func init() {
	disableCmd.Flags().StringVar(&disableScope, "scope", "project", "placement scope: project or personal")
}
