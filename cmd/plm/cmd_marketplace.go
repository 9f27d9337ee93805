package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/host"
	"github.com/ruminaider/plm/internal/marketplace"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

var marketplaceCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Manage marketplace sources",
}

var marketplaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached marketplaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := marketplace.NewRegistry(vfs.NewReal(), paths.MarketplaceCacheDir())
		names, err := reg.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			entry, _, err := reg.Get(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%d plugin(s)\n", name, entry.Source, len(entry.Plugins))
		}
		return nil
	},
}

var marketplaceAddCmd = &cobra.Command{
	Use:   "add <name> <source>",
	Short: "Fetch and cache a marketplace by its GitHub repository source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, source := args[0], args[1]
		r, err := repo.ParseRepo(source)
		if err != nil {
			return err
		}
		client := host.NewGitHubClient("")
		fetcher := marketplace.NewFetcher(client)

		entry, err := fetcher.FetchAsEntry(context.Background(), r, name, "")
		if err != nil {
			return err
		}
		reg := marketplace.NewRegistry(vfs.NewReal(), paths.MarketplaceCacheDir())
		if err := reg.Store(entry); err != nil {
			return err
		}
		fmt.Printf("added marketplace %s with %d plugin(s)\n", name, len(entry.Plugins))
		return nil
	},
}

var marketplaceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a cached marketplace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := marketplace.NewRegistry(vfs.NewReal(), paths.MarketplaceCacheDir())
		if err := reg.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed marketplace %s\n", args[0])
		return nil
	},
}

var marketplaceUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Re-fetch a marketplace's index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := marketplace.NewRegistry(vfs.NewReal(), paths.MarketplaceCacheDir())
		existing, ok, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("marketplace %q is not registered", args[0])
		}
		owner, name, ok := cutSource(existing.Source)
		if !ok {
			return fmt.Errorf("marketplace %q has no resolvable source repository", args[0])
		}
		r, err := repo.ParseRepo(owner + "/" + name)
		if err != nil {
			return err
		}

		client := host.NewGitHubClient("")
		fetcher := marketplace.NewFetcher(client)
		entry, err := fetcher.FetchAsEntry(context.Background(), r, args[0], "")
		if err != nil {
			return err
		}
		if err := reg.Store(entry); err != nil {
			return err
		}
		fmt.Printf("updated marketplace %s: %d plugin(s)\n", args[0], len(entry.Plugins))
		return nil
	},
}

var marketplaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a marketplace's plugins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := marketplace.NewRegistry(vfs.NewReal(), paths.MarketplaceCacheDir())
		entry, ok, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("marketplace %q is not registered", args[0])
		}
		fmt.Printf("%s (%s), fetched %s\n", entry.Name, entry.Source, entry.FetchedAt)
		for _, p := range entry.Plugins {
			fmt.Printf("  %s\t%s\t%s\n", p.Name, p.Version, p.Description)
		}
		return nil
	},
}

// cutSource splits a CacheEntry's Source field ("github:owner/name") back
// into owner and name, for marketplace update's re-fetch.
func cutSource(source string) (owner, name string, ok bool) {
	const prefix = "github:"
	if len(source) <= len(prefix) || source[:len(prefix)] != prefix {
		return "", "", false
	}
	rest := source[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], rest[i+1:], true
		}
	}
	return "", "", false
}

func init() {
	marketplaceCmd.AddCommand(marketplaceListCmd)
	marketplaceCmd.AddCommand(marketplaceAddCmd)
	marketplaceCmd.AddCommand(marketplaceRemoveCmd)
	marketplaceCmd.AddCommand(marketplaceUpdateCmd)
	marketplaceCmd.AddCommand(marketplaceShowCmd)
}
