package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/cmd/plm/tui"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

var managedCmd = &cobra.Command{
	Use:   "managed",
	Short: "Browse and toggle installed plugins interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}

		fs := vfs.NewReal()
		c := cache.New(fs, paths.PluginCacheDir())
		targetReg := targets.NewRegistry(fs, paths.TargetsFile())

		model := tui.New(fs, c, targetReg, root)
		_, err = tea.NewProgram(model).Run()
		return err
	},
}
