// Package manifest fetches the version manifest and buckets its entries by
// release classification.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

// Getter reads a remote document into memory.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Resolver lists the versions published by one manifest endpoint.
type Resolver struct {
	getter Getter
	url    string
	logger *slog.Logger
}

// NewResolver creates a Resolver for the manifest at url.
func NewResolver(getter Getter, url string, logger *slog.Logger) *Resolver {
	return &Resolver{
		getter: getter,
		url:    url,
		logger: logger,
	}
}

// ListVersions fetches the manifest and classifies every entry.
// On failure only Status and Error are set.
func (r *Resolver) ListVersions(ctx context.Context) domain.VersionList {
	m, err := r.fetch(ctx)
	if err != nil {
		r.logger.Error("failed to fetch version manifest", "url", r.url, "error", err)
		return domain.VersionList{Status: domain.ListError, Error: err.Error()}
	}

	list := Classify(m.Versions)
	list.Latest = m.Latest
	r.logger.Info("version manifest loaded",
		"releases", len(list.Releases),
		"snapshots", len(list.Snapshots),
		"historical", len(list.Historical),
	)
	return list
}

// Find returns the manifest entry for id. An empty kind searches every bucket.
func (r *Resolver) Find(ctx context.Context, id string, kind domain.VersionKind) (domain.VersionSummary, error) {
	list := r.ListVersions(ctx)
	if list.Status != domain.ListSuccess {
		return domain.VersionSummary{}, fmt.Errorf("%w: %s", errpkg.ErrManifestUnavailable, list.Error)
	}
	for _, v := range list.Bucket(kind) {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.VersionSummary{}, fmt.Errorf("%w: %s", errpkg.ErrVersionNotFound, id)
}

func (r *Resolver) fetch(ctx context.Context) (*domain.Manifest, error) {
	data, err := r.getter.Get(ctx, r.url)
	if err != nil {
		return nil, err
	}
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Versions == nil {
		return nil, fmt.Errorf("%w: versions", errpkg.ErrMissingField)
	}
	return &m, nil
}

// Classify buckets entries into releases, snapshots and historical versions.
// Entries of any other type are dropped.
func Classify(entries []domain.VersionSummary) domain.VersionList {
	list := domain.VersionList{
		Status:     domain.ListSuccess,
		Releases:   []domain.VersionSummary{},
		Snapshots:  []domain.VersionSummary{},
		Historical: []domain.VersionSummary{},
	}
	for _, v := range entries {
		switch {
		case v.Type == "release":
			list.Releases = append(list.Releases, v)
		case v.Type == "snapshot":
			list.Snapshots = append(list.Snapshots, v)
		case strings.Contains(v.Type, "old"):
			list.Historical = append(list.Historical, v)
		}
	}
	return list
}
