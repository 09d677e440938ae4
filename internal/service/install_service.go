package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
	"github.com/veranemoloko/mc-fetch/internal/loader"
	"github.com/veranemoloko/mc-fetch/internal/manifest"
	"github.com/veranemoloko/mc-fetch/internal/natives"
	"github.com/veranemoloko/mc-fetch/internal/storage"
	"github.com/veranemoloko/mc-fetch/internal/worker"
)

// InstallService runs the install pipeline: manifest, descriptor, libraries
// and natives, asset index, assets.
type InstallService struct {
	cfg         *config.Config
	fileStorage *storage.FileStorage
	scheduler   *worker.Scheduler
	manifest    *manifest.Resolver
	artifacts   *artifact.Resolver
	loaders     *loader.Resolver
	logger      *slog.Logger
}

// NewInstallService creates an InstallService from its collaborators.
func NewInstallService(
	cfg *config.Config,
	fileStorage *storage.FileStorage,
	scheduler *worker.Scheduler,
	manifestResolver *manifest.Resolver,
	artifacts *artifact.Resolver,
	loaders *loader.Resolver,
	logger *slog.Logger,
) *InstallService {
	return &InstallService{
		cfg:         cfg,
		fileStorage: fileStorage,
		scheduler:   scheduler,
		manifest:    manifestResolver,
		artifacts:   artifacts,
		loaders:     loaders,
		logger:      logger,
	}
}

// Storage returns the install root layout.
func (s *InstallService) Storage() *storage.FileStorage {
	return s.fileStorage
}

// Platform returns the platform libraries are resolved for.
func (s *InstallService) Platform() artifact.Platform {
	return s.artifacts.Platform()
}

// ListVersions lists the versions published by the active source.
func (s *InstallService) ListVersions(ctx context.Context) domain.VersionList {
	return s.manifest.ListVersions(ctx)
}

// LoaderVersions lists loader versions for a game version, oldest first.
func (s *InstallService) LoaderVersions(ctx context.Context, family domain.LoaderFamily, game string, latestOnly bool) ([]string, error) {
	return s.loaders.Versions(ctx, family, game, latestOnly)
}

// InstallLoader installs a loader profile.
func (s *InstallService) InstallLoader(ctx context.Context, req domain.LoaderRequest) (*loader.Installed, error) {
	return s.loaders.Install(ctx, req)
}

// Install downloads everything a version needs to start. Structural problems
// are returned as errors before any batch starts; fetch and extraction
// failures are collected in the report.
func (s *InstallService) Install(ctx context.Context, req domain.InstallRequest) (*domain.InstallReport, error) {
	if req.Version == "" {
		return nil, fmt.Errorf("%w: version", errpkg.ErrMissingField)
	}
	name := req.InstallName()

	s.logger.Info("install started", "version", req.Version, "name", name)

	if err := s.fileStorage.PrepareInstall(name); err != nil {
		return nil, err
	}

	summary, err := s.manifest.Find(ctx, req.Version, req.Kind)
	if err != nil {
		return nil, err
	}

	versionItem := s.artifacts.VersionItem(summary, name)
	if res := s.scheduler.Worker().Fetch(ctx, versionItem); !res.OK() {
		return nil, fmt.Errorf("fetch version descriptor: %s", res.Detail)
	}

	var desc domain.VersionDescriptor
	if err := s.fileStorage.ReadJSON(versionItem.Dest, &desc); err != nil {
		return nil, err
	}

	plan, err := s.artifacts.Libraries(&desc, name)
	if err != nil {
		return nil, err
	}
	indexItem, err := s.artifacts.AssetIndexItem(&desc)
	if err != nil {
		return nil, err
	}

	report := &domain.InstallReport{
		Version:    req.Version,
		Name:       name,
		Status:     domain.InstallSuccess,
		Descriptor: versionItem.Dest,
		AssetIndex: indexItem.Dest,
	}

	libResults := s.scheduler.Run(ctx, plan.Batch.Items(), s.cfg.Workers)
	report.Libraries = worker.Summarize(libResults)

	downloaded := make(map[string]bool, len(libResults))
	for _, r := range libResults {
		if r.OK() {
			downloaded[r.Item.Dest] = true
		}
	}
	for _, n := range plan.Natives {
		if !downloaded[n.Path] {
			continue
		}
		res := natives.Extract(n.Path, s.fileStorage.NativesDir(name), n.Exclude...)
		if res.Status != domain.ExtractSuccess {
			s.logger.Error("native extraction failed", "archive", n.Path, "detail", res.Detail)
		}
		report.Natives = append(report.Natives, res)
	}

	indexResult := s.scheduler.Worker().Fetch(ctx, indexItem)
	if !indexResult.OK() {
		report.Assets = worker.Summarize([]domain.FetchResult{indexResult})
		return s.finish(report), nil
	}

	assets, err := s.artifacts.Assets(indexItem.Dest)
	if err != nil {
		return nil, err
	}
	assetResults := s.scheduler.Run(ctx, assets.Batch.Items(), s.cfg.Workers)
	report.Assets = worker.Summarize(assetResults)
	report.Assets.Cached += assets.Present

	return s.finish(report), nil
}

func (s *InstallService) finish(report *domain.InstallReport) *domain.InstallReport {
	if report.Failed() > 0 {
		report.Status = domain.InstallError
		s.logger.Warn("install finished with failures",
			"name", report.Name,
			"libraries_failed", report.Libraries.Failed,
			"assets_failed", report.Assets.Failed,
		)
		return report
	}
	s.logger.Info("install completed",
		"name", report.Name,
		"libraries", report.Libraries.Total,
		"natives", len(report.Natives),
		"assets", report.Assets.Total,
	)
	return report
}
