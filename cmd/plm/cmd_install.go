package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/host"
	"github.com/ruminaider/plm/internal/marketplace"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/paths"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/vfs"
)

var installCmd = &cobra.Command{
	Use:   "install <source>",
	Short: "Install a plugin from a repository or a marketplace",
	Long:  "source is owner/name, a full URL, an SCP-style git@host:owner/name reference, an owner/name@ref, or plugin@marketplace.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureRootDir(); err != nil {
			return err
		}
		fs := vfs.NewReal()
		c := cache.New(fs, paths.PluginCacheDir())
		client := host.NewGitHubClient("")
		ctx := context.Background()

		source := args[0]
		if looksLikeRepoReference(source) {
			return installFromRepo(ctx, fs, c, client, source)
		}
		return installFromMarketplace(ctx, fs, c, client, source)
	},
}

func looksLikeRepoReference(source string) bool {
	return strings.Contains(source, "/") || strings.HasPrefix(source, "git@")
}

func installFromRepo(ctx context.Context, fs vfs.FS, c *cache.Cache, client host.Client, source string) error {
	r, err := repo.ParseRepo(source)
	if err != nil {
		return err
	}
	archive, ref, sha, err := client.DownloadArchiveWithSHA(ctx, r)
	if err != nil {
		return err
	}

	name := r.Owner + "--" + r.Name
	pluginDir, err := c.StoreFromArchive("", name, archive, "")
	if err != nil {
		return err
	}

	m, err := c.LoadManifest("", name)
	if err != nil {
		return err
	}

	sidecar := metadata.Sidecar{
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
		SourceRepo:  r.FullName(),
		GitRef:      ref,
		CommitSha:   sha,
	}
	if err := metadata.Save(fs, pluginDir, sidecar); err != nil {
		return err
	}

	fmt.Printf("installed %s (%s) at %s\n", m.Name, m.Version, pluginDir)
	return nil
}

func installFromMarketplace(ctx context.Context, fs vfs.FS, c *cache.Cache, client host.Client, source string) error {
	pluginName, marketplaceName, ok := strings.Cut(source, "@")
	if !ok {
		return fmt.Errorf("expected plugin@marketplace, got %q", source)
	}

	reg := marketplace.NewRegistry(fs, paths.MarketplaceCacheDir())
	entry, ok, err := reg.Get(marketplaceName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("marketplace %q is not registered; run `plm marketplace add` first", marketplaceName)
	}

	var plugin marketplace.Plugin
	found := false
	for _, p := range entry.Plugins {
		if p.Name == pluginName {
			plugin, found = p, true
			break
		}
	}
	if !found {
		return fmt.Errorf("marketplace %q has no plugin named %q", marketplaceName, pluginName)
	}

	var (
		archive    []byte
		ref, sha   string
		sourceRepo string
		subdir     string
	)

	switch plugin.Source.Kind {
	case marketplace.SourceGitHub:
		r, err := repo.ParseRepo(plugin.Source.Repo)
		if err != nil {
			return err
		}
		archive, ref, sha, err = client.DownloadArchiveWithSHA(ctx, r)
		if err != nil {
			return err
		}
		sourceRepo = r.FullName()
	case marketplace.SourceLocal:
		owner, name, ok := cutSource(entry.Source)
		if !ok {
			return fmt.Errorf("marketplace %q has no resolvable source repository", marketplaceName)
		}
		r, err := repo.ParseRepo(owner + "/" + name)
		if err != nil {
			return err
		}
		archive, ref, sha, err = client.DownloadArchiveWithSHA(ctx, r)
		if err != nil {
			return err
		}
		sourceRepo = r.FullName()
		subdir = plugin.Source.Path
	}

	pluginDir, err := c.StoreFromArchive(marketplaceName, pluginName, archive, subdir)
	if err != nil {
		return err
	}

	sidecar := metadata.Sidecar{
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
		SourceRepo:  sourceRepo,
		GitRef:      ref,
		CommitSha:   sha,
	}
	if err := metadata.Save(fs, pluginDir, sidecar); err != nil {
		return err
	}

	fmt.Printf("installed %s from marketplace %s at %s\n", pluginName, marketplaceName, pluginDir)
	return nil
}
