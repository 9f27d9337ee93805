package main

import (
	"fmt"
	"strings"

	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/repo"
)

// resolvePlugin maps a CLI-supplied plugin name (optionally qualified as
// "name@marketplace") to a concrete (marketplace, name) cache entry.
// Unqualified names that match more than one cached entry are reported
// as errs.AmbiguousPlugin, matching spec.md §7's requirement that a
// caller qualify with "name@marketplace" to disambiguate.
func resolvePlugin(c *cache.Cache, arg string) (marketplaceName, name string, err error) {
	if left, right, ok := strings.Cut(arg, "@"); ok {
		return right, left, nil
	}

	entries, err := c.List()
	if err != nil {
		return "", "", err
	}

	var matches []cache.Entry
	for _, e := range entries {
		if e.Name == arg {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return "", "", errs.New(errs.PluginNotFound, "resolvePlugin", fmt.Errorf("no installed plugin named %q", arg))
	case 1:
		return matches[0].Marketplace, matches[0].Name, nil
	default:
		return "", "", errs.New(errs.AmbiguousPlugin, "resolvePlugin",
			fmt.Errorf("%q matches plugins in more than one marketplace; qualify as name@marketplace", arg))
	}
}

// originFor builds the repo.Origin a plugin's cache entry maps to, the
// same identity PlanEnable/PlanDisable key every placed path on.
func originFor(marketplaceName, name string) repo.Origin {
	return repo.FromCachedPlugin(marketplaceName, name)
}
