package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/syncdiff"
	"github.com/ruminaider/plm/internal/vfs"
)

var (
	syncFrom   string
	syncTo     string
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile one target's placed components onto another",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncFrom == "" || syncTo == "" {
			return fmt.Errorf("--from and --to are both required")
		}

		root, err := resolvedProjectRoot()
		if err != nil {
			return err
		}

		fromTarget, ok := placement.Parse(syncFrom)
		if !ok {
			return fmt.Errorf("unknown target %q", syncFrom)
		}
		toTarget, ok := placement.Parse(syncTo)
		if !ok {
			return fmt.Errorf("unknown target %q", syncTo)
		}

		fs := vfs.NewReal()
		source := syncdiff.NewEndpoint(fromTarget, root)
		dest := syncdiff.NewEndpoint(toTarget, root)

		result, err := syncdiff.Sync(fs, source, dest, syncdiff.Options{DryRun: syncDryRun})
		if err != nil {
			return err
		}

		printSyncPlaced("to create", result.ToCreate)
		printSyncPlaced("to update", result.ToUpdate)
		printSyncPlaced("to delete", result.ToDelete)
		printSyncPlaced("unsupported on destination", result.Unsupported)

		if syncDryRun {
			return nil
		}

		printSyncPlaced("created", result.Created)
		printSyncPlaced("updated", result.Updated)
		printSyncPlaced("deleted", result.Deleted)
		for _, f := range result.Failed {
			fmt.Printf("FAILED %s %s: %s (%s)\n", f.Component.Identity.Kind, f.Component.Identity.Name, f.Reason, f.Action)
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d component(s) failed to sync", len(result.Failed))
		}
		return nil
	},
}

func printSyncPlaced(label string, items []syncdiff.Placed) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, p := range items {
		fmt.Printf("  %s/%s (%s)\n", p.Identity.Kind, p.Identity.Name, p.Identity.Scope)
	}
}

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "source target name")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "destination target name")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report the plan without executing it")
}
