package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/updater"
	"github.com/ruminaider/plm/internal/vfs"
)

var (
	updateAll          bool
	updateTargetFilter string
)

var updateCmd = &cobra.Command{
	Use:   "update [plugin]",
	Short: "Check a direct-GitHub-installed plugin for a newer commit and redeploy it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !updateAll && len(args) == 0 {
			return fmt.Errorf("specify a plugin name or pass --all")
		}

		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}
		u := updater.New(vfs.NewReal(), paths.PluginCacheDir(), root)
		ctx := context.Background()

		if updateAll {
			results := u.UpdateAll(ctx, updateTargetFilter)
			for _, r := range results {
				printUpdateResult(r)
			}
			return nil
		}

		result := u.Update(ctx, args[0], updateTargetFilter)
		printUpdateResult(result)
		if result.Status == updater.Failed {
			return fmt.Errorf("update failed for %s: %s", result.PluginName, result.Error)
		}
		return nil
	},
}

func printUpdateResult(r updater.Result) {
	switch r.Status {
	case updater.Updated:
		fmt.Printf("%s: updated %s -> %s (deployed: %v, failed: %v)\n", r.PluginName, r.FromSHA, r.ToSHA, r.DeployedTargets, r.FailedTargets)
	case updater.AlreadyUpToDate:
		fmt.Printf("%s: already up to date\n", r.PluginName)
	case updater.Skipped:
		fmt.Printf("%s: skipped (%s)\n", r.PluginName, r.Error)
	case updater.Failed:
		fmt.Printf("%s: failed (%s)\n", r.PluginName, r.Error)
	}
}

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "update every plugin installed directly from a GitHub repository")
	updateCmd.Flags().StringVar(&updateTargetFilter, "target", "", "restrict redeploy to a single target (default: every target the plugin is enabled on)")
}
