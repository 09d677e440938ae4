// Package loader installs mod-loader profiles that extend a base game version.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
	"github.com/veranemoloko/mc-fetch/internal/storage"
)

// Getter reads a remote document into memory.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Fetcher downloads a work item to disk.
type Fetcher interface {
	Fetch(ctx context.Context, item domain.WorkItem) domain.FetchResult
}

// Installed is the outcome of a loader install.
type Installed struct {
	Result  domain.LoaderResult
	Profile *domain.Profile
}

// Resolver produces loader profiles either from a profile template or by
// opening the loader's installer archive.
type Resolver struct {
	getter      Getter
	fetcher     Fetcher
	fileStorage *storage.FileStorage
	templates   config.LoaderTemplates
	persist     bool
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(getter Getter, fetcher Fetcher, fileStorage *storage.FileStorage, templates config.LoaderTemplates, persist bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		getter:      getter,
		fetcher:     fetcher,
		fileStorage: fileStorage,
		templates:   templates,
		persist:     persist,
		logger:      logger,
	}
}

// Install resolves the loader version when it is not given, builds the
// profile and, unless persistence is disabled, writes it to
// versions/<name>/<name>.json.
func (r *Resolver) Install(ctx context.Context, req domain.LoaderRequest) (*Installed, error) {
	family := domain.LoaderFamily(strings.ToLower(string(req.Family)))
	if !Supported(family) {
		return nil, fmt.Errorf("%w: %q", errpkg.ErrUnsupportedLoader, req.Family)
	}

	loaderVersion := req.LoaderVersion
	if loaderVersion == "" {
		latest, err := r.Versions(ctx, family, req.GameVersion, true)
		if err != nil {
			return nil, fmt.Errorf("resolve %s version: %w", family, err)
		}
		loaderVersion = latest[0]
		r.logger.Info("resolved latest loader version", "family", family, "game_version", req.GameVersion, "loader_version", loaderVersion)
	}

	vars := templateVars{game: req.GameVersion, loader: loaderVersion, kind: r.templates.OptiFineType}

	var (
		profile *domain.Profile
		err     error
	)
	switch family {
	case domain.LoaderFabric:
		profile, err = r.fromTemplate(ctx, r.templates.FabricProfile, vars)
	case domain.LoaderQuilt:
		profile, err = r.fromTemplate(ctx, r.templates.QuiltProfile, vars)
	case domain.LoaderForge:
		profile, err = r.fromInstaller(ctx, family, r.templates.ForgeInstaller, vars)
	case domain.LoaderNeoForge:
		profile, err = r.fromInstaller(ctx, family, r.templates.NeoForgeInstaller, vars)
	case domain.LoaderOptiFine:
		profile, err = r.fromInstaller(ctx, family, r.templates.OptiFineInstaller, vars)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		if err := profile.SetID(req.Name); err != nil {
			return nil, err
		}
	}
	if err := profile.DefaultInheritsFrom(req.GameVersion); err != nil {
		return nil, err
	}

	name := profile.ID()
	if name == "" {
		return nil, fmt.Errorf("%w: id", errpkg.ErrMissingField)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid profile id %q", name)
	}

	out := &Installed{
		Result: domain.LoaderResult{
			Family:        family,
			GameVersion:   req.GameVersion,
			LoaderVersion: loaderVersion,
			ID:            name,
			InheritsFrom:  profile.InheritsFrom(),
		},
		Profile: profile,
	}

	path := r.fileStorage.VersionJSON(name)
	if r.persist {
		if err := r.fileStorage.WriteJSON(path, profile); err != nil {
			return nil, fmt.Errorf("persist profile: %w", err)
		}
		out.Result.Path = path
		out.Result.Persisted = true
	} else if err := r.fileStorage.Remove(path); err != nil {
		return nil, fmt.Errorf("remove stale profile: %w", err)
	}

	r.logger.Info("loader profile installed",
		"family", family,
		"id", name,
		"inherits_from", out.Result.InheritsFrom,
		"persisted", out.Result.Persisted,
	)
	return out, nil
}

func (r *Resolver) fromTemplate(ctx context.Context, template string, vars templateVars) (*domain.Profile, error) {
	url := vars.format(template)
	r.logger.Info("fetching loader profile", "url", url)

	data, err := r.getter.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	profile, err := domain.ParseProfile(data)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Supported reports whether family is a known loader.
func Supported(family domain.LoaderFamily) bool {
	switch family {
	case domain.LoaderFabric, domain.LoaderQuilt, domain.LoaderForge, domain.LoaderNeoForge, domain.LoaderOptiFine:
		return true
	}
	return false
}

type templateVars struct {
	game   string
	loader string
	kind   string
}

func (v templateVars) format(template string) string {
	return strings.NewReplacer(
		"{game_version}", v.game,
		"{loader_version}", v.loader,
		"{type}", v.kind,
	).Replace(template)
}
