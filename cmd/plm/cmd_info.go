package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/vfs"
)

var infoCmd = &cobra.Command{
	Use:   "info <plugin>",
	Short: "Show a plugin's manifest and installed state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := vfs.NewReal()
		c := cache.New(fs, paths.PluginCacheDir())

		marketplaceName, name, err := resolvePlugin(c, args[0])
		if err != nil {
			return err
		}

		m, err := c.LoadManifest(marketplaceName, name)
		if err != nil {
			return err
		}

		var body strings.Builder
		fmt.Fprintf(&body, "# %s\n\n", m.Name)
		fmt.Fprintf(&body, "**Version:** %s\n\n", m.Version)
		if m.Description != "" {
			fmt.Fprintf(&body, "%s\n\n", m.Description)
		}
		if m.Author != nil {
			fmt.Fprintf(&body, "**Author:** %s\n\n", m.Author.Name)
		}
		if m.Homepage != "" {
			fmt.Fprintf(&body, "**Homepage:** %s\n\n", m.Homepage)
		}
		if len(m.Keywords) > 0 {
			fmt.Fprintf(&body, "**Keywords:** %s\n\n", strings.Join(m.Keywords, ", "))
		}

		sidecar, ok, err := metadata.Load(fs, c.PluginPath(marketplaceName, name))
		if err != nil {
			return err
		}
		if ok {
			if sidecar.SourceRepo != "" {
				fmt.Fprintf(&body, "**Source:** %s@%s\n\n", sidecar.SourceRepo, sidecar.GitRef)
			}
			if targets := sidecar.EnabledTargets(); len(targets) > 0 {
				fmt.Fprintf(&body, "**Enabled on:** %s\n\n", strings.Join(targets, ", "))
			} else {
				fmt.Fprintf(&body, "**Enabled on:** none\n\n")
			}
		}

		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			fmt.Print(body.String())
			return nil
		}
		rendered, err := renderer.Render(body.String())
		if err != nil {
			fmt.Print(body.String())
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}
