package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	h "github.com/veranemoloko/mc-fetch/internal/api/http"
	cfgpkg "github.com/veranemoloko/mc-fetch/internal/config"
	repo "github.com/veranemoloko/mc-fetch/internal/repository"
	svc "github.com/veranemoloko/mc-fetch/internal/service"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			slog.Error("configuration file not found", "error", err)
		} else {
			slog.Error("failed to load configuration", "error", err)
		}
		os.Exit(1)
	}

	logCloser, err := cfgpkg.SetupLogger(cfg)
	if err != nil {
		slog.Error("failed to set up logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.Info("configuration loaded successfully", "source", cfg.Source, "install_root", cfg.InstallRoot)

	installService, err := svc.NewInstallServiceFromConfig(cfg, slog.Default())
	if err != nil {
		slog.Error("failed to initialize install service", "error", err)
		os.Exit(1)
	}

	jobStore, err := repo.NewJobStore(cfg.StateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Error("state file does not exist", "error", err)
		} else {
			slog.Error("failed to initialize job store", "error", err)
		}
		os.Exit(1)
	}

	jobService := svc.NewJobService(jobStore, installService, cfg.JobWorkers, slog.Default())

	if err := jobService.RecoverPendingJobs(context.Background()); err != nil {
		slog.Error("failed to recover pending jobs", "error", err)
	}

	router := h.NewRouter(jobService, installService, slog.Default())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}

	if err := jobService.Shutdown(shutdownCtx); err != nil {
		slog.Error("job service shutdown failed", "error", err)
	} else {
		slog.Info("job workers stopped")
	}
}
