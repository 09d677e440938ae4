package service

import (
	"log/slog"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/loader"
	"github.com/veranemoloko/mc-fetch/internal/manifest"
	"github.com/veranemoloko/mc-fetch/internal/storage"
	"github.com/veranemoloko/mc-fetch/internal/worker"
)

// NewInstallServiceFromConfig wires the whole pipeline for the active source
// and the current platform.
func NewInstallServiceFromConfig(cfg *config.Config, logger *slog.Logger) (*InstallService, error) {
	return NewInstallServiceForPlatform(cfg, artifact.CurrentPlatform(), logger)
}

// NewInstallServiceForPlatform is NewInstallServiceFromConfig with an explicit platform.
func NewInstallServiceForPlatform(cfg *config.Config, platform artifact.Platform, logger *slog.Logger) (*InstallService, error) {
	mirror, err := cfg.Mirror()
	if err != nil {
		return nil, err
	}

	fileStorage := storage.NewFileStorage(cfg.InstallRoot)
	client := worker.NewHTTPClient(cfg.Workers, cfg.RequestTimeout)
	fetchWorker := worker.NewFetchWorker(fileStorage, client, worker.OptionsFromConfig(cfg), logger)
	scheduler := worker.NewScheduler(fetchWorker, cfg.AutoScaleWorkers, logger)

	rewriter := artifact.NewRewriter(mirror, cfg.Authoritative())
	manifestResolver := manifest.NewResolver(fetchWorker, mirror.VersionManifest, logger)
	artifacts := artifact.NewResolver(fileStorage, rewriter, platform, logger)
	loaders := loader.NewResolver(fetchWorker, fetchWorker, fileStorage, cfg.Loaders, cfg.PersistLoaderProfiles, logger)

	logger.Info("install pipeline ready",
		"source", cfg.Source,
		"root", cfg.InstallRoot,
		"workers", cfg.Workers,
		"os", platform.OS,
		"arch", platform.Arch,
	)
	return NewInstallService(cfg, fileStorage, scheduler, manifestResolver, artifacts, loaders, logger), nil
}
