package loader

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

type metaEntry struct {
	Loader struct {
		Version string `json:"version"`
	} `json:"loader"`
}

type mavenMetadata struct {
	Versioning struct {
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// Versions lists the loader versions published for a game version, oldest
// first. With latestOnly only the newest entry is returned.
func (r *Resolver) Versions(ctx context.Context, family domain.LoaderFamily, game string, latestOnly bool) ([]string, error) {
	var (
		versions []string
		err      error
	)
	vars := templateVars{game: game}

	switch family {
	case domain.LoaderFabric:
		versions, err = r.metaFeed(ctx, vars.format(r.templates.FabricVersions))
	case domain.LoaderQuilt:
		versions, err = r.metaFeed(ctx, vars.format(r.templates.QuiltVersions))
	case domain.LoaderForge:
		versions, err = r.mavenFeed(ctx, r.templates.ForgeMetadata, forgeMatcher(game))
	case domain.LoaderNeoForge:
		versions, err = r.mavenFeed(ctx, r.templates.NeoForgeMetadata, neoForgeMatcher(game))
	case domain.LoaderOptiFine:
		return nil, fmt.Errorf("%w: %s", errpkg.ErrNoVersionFeed, family)
	default:
		return nil, fmt.Errorf("%w: %q", errpkg.ErrUnsupportedLoader, family)
	}
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s %s", errpkg.ErrNoLoaderVersions, family, game)
	}
	if latestOnly {
		return versions[len(versions)-1:], nil
	}
	return versions, nil
}

// metaFeed reads a fabric/quilt style feed. The feed is newest first.
func (r *Resolver) metaFeed(ctx context.Context, url string) ([]string, error) {
	data, err := r.getter.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch version feed: %w", err)
	}
	var entries []metaEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode version feed: %w", err)
	}

	versions := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if v := entries[i].Loader.Version; v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// mavenFeed reads maven-metadata.xml, keeps the versions match accepts
// (rewritten to the loader version) and sorts them oldest first.
func (r *Resolver) mavenFeed(ctx context.Context, url string, match func(string) (string, bool)) ([]string, error) {
	data, err := r.getter.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch version feed: %w", err)
	}
	var meta mavenMetadata
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode maven metadata: %w", err)
	}

	var versions []string
	for _, v := range meta.Versioning.Versions {
		if lv, ok := match(strings.TrimSpace(v)); ok {
			versions = append(versions, lv)
		}
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) < 0
	})
	return versions, nil
}

// forgeMatcher accepts "<game>-<loader>" and yields the loader part.
func forgeMatcher(game string) func(string) (string, bool) {
	prefix := game + "-"
	return func(v string) (string, bool) {
		if !strings.HasPrefix(v, prefix) {
			return "", false
		}
		rest := strings.TrimPrefix(v, prefix)
		// 1.7.10-10.13.4.1614-1.7.10 style suffixes
		rest = strings.TrimSuffix(rest, "-"+game)
		return rest, rest != ""
	}
}

// neoForgeMatcher maps game 1.21.7 onto loader versions 21.7.*, and 1.21 onto 21.0.*.
func neoForgeMatcher(game string) func(string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(game, "1."), ".")
	if len(parts) == 1 {
		parts = append(parts, "0")
	}
	prefix := parts[0] + "." + parts[1] + "."
	return func(v string) (string, bool) {
		return v, strings.HasPrefix(v, prefix)
	}
}

// CompareVersions orders loader versions numerically, with pre-releases such
// as 21.0.0-beta before their release. Strings that do not parse as versions
// sort before those that do, and among themselves lexically.
func CompareVersions(a, b string) int {
	va, aerr := version.NewVersion(a)
	vb, berr := version.NewVersion(b)
	switch {
	case aerr == nil && berr == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case aerr == nil:
		return 1
	case berr == nil:
		return -1
	}
	return strings.Compare(a, b)
}
