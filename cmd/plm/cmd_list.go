package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/vfs"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := vfs.NewReal()
		c := cache.New(fs, paths.PluginCacheDir())

		entries, err := c.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no plugins installed")
			return nil
		}

		for _, e := range entries {
			displayName := e.Name
			if e.Marketplace != "" {
				displayName = fmt.Sprintf("%s@%s", e.Name, e.Marketplace)
			}

			m, err := c.LoadManifest(e.Marketplace, e.Name)
			version := "?"
			if err == nil {
				version = m.Version
			}

			sidecar, ok, err := metadata.Load(fs, c.PluginPath(e.Marketplace, e.Name))
			enabled := "disabled"
			if err == nil && ok {
				if targets := sidecar.EnabledTargets(); len(targets) > 0 {
					enabled = strings.Join(targets, ",")
				}
			}

			fmt.Printf("%s\t%s\t%s\n", displayName, version, enabled)
		}
		return nil
	},
}
