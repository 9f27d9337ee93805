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
	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

var enableScope string

var enableCmd = &cobra.Command{
	Use:   "enable <plugin>",
	Short: "Deploy a cached plugin to every registered target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}
		scope, err := parseScope(enableScope)
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

		m, err := c.LoadManifest(marketplaceName, name)
		if err != nil {
			return err
		}
		components, err := deployment.Resolve(fs, pluginDir, m)
		if err != nil {
			return err
		}

		targetReg := targets.NewRegistry(fs, paths.TargetsFile())
		selected, err := targetReg.Resolve()
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return fmt.Errorf("no targets registered; run `plm target add <codex|copilot>` first")
		}

		plan := planner.PlanEnable(planner.EnableInput{
			Origin:      origin,
			Targets:     selected,
			Scope:       scope,
			ProjectRoot: root,
			Components:  components,
		})

		result := applier.Apply(fs, plan)

		sidecar, _, err := metadata.Load(fs, pluginDir)
		if err != nil {
			return err
		}
		for targetName, tr := range result.ByTarget {
			if tr.OK() {
				sidecar.SetStatus(targetName, metadata.StatusEnabled)
			}
		}
		if err := metadata.Save(fs, pluginDir, sidecar); err != nil {
			return err
		}

		fmt.Println(result.Message())
		if !result.Success() {
			return fmt.Errorf("enable failed for %s", name)
		}
		return nil
	},
}

// parseScope maps a --scope flag value to placement.Scope, defaulting to
// Project.
func parseScope(s string) (placement.Scope, error) {
	switch s {
	case "", "project":
		return placement.Project, nil
	case "personal":
		return placement.Personal, nil
	default:
		return 0, fmt.Errorf("unknown scope %q: expected \"project\" or \"personal\"", s)
	}
}

func init() {
	enableCmd.Flags().StringVar(&enableScope, "scope", "project", "placement scope: project or personal")
}
