package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage registered deployment targets",
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := targets.NewRegistry(vfs.NewReal(), paths.TargetsFile())
		names, err := reg.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var targetAddCmd = &cobra.Command{
	Use:   "add <codex|copilot>",
	Short: "Register a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureRootDir(); err != nil {
			return err
		}
		reg := targets.NewRegistry(vfs.NewReal(), paths.TargetsFile())
		result, err := reg.Add(args[0])
		if err != nil {
			return err
		}
		if result == targets.AlreadyExists {
			fmt.Printf("%s is already registered\n", args[0])
			return nil
		}
		fmt.Printf("registered %s\n", args[0])
		return nil
	},
}

var targetRemoveCmd = &cobra.Command{
	Use:   "remove <codex|copilot>",
	Short: "Unregister a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := targets.NewRegistry(vfs.NewReal(), paths.TargetsFile())
		result, err := reg.Remove(args[0])
		if err != nil {
			return err
		}
		if result == targets.NotFound {
			fmt.Printf("%s was not registered\n", args[0])
			return nil
		}
		fmt.Printf("unregistered %s\n", args[0])
		return nil
	},
}

func init() {
	targetCmd.AddCommand(targetListCmd)
	targetCmd.AddCommand(targetAddCmd)
	targetCmd.AddCommand(targetRemoveCmd)
}
