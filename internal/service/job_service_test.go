package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/loader"
	"github.com/veranemoloko/mc-fetch/internal/repository"
)

type fakeInstaller struct {
	installs atomic.Int32
	release  chan struct{}
	report   *domain.InstallReport
	err      error
}

func (f *fakeInstaller) Install(ctx context.Context, req domain.InstallRequest) (*domain.InstallReport, error) {
	f.installs.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &domain.InstallReport{Version: req.Version, Name: req.InstallName(), Status: domain.InstallSuccess}, nil
}

func (f *fakeInstaller) InstallLoader(ctx context.Context, req domain.LoaderRequest) (*loader.Installed, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &loader.Installed{Result: domain.LoaderResult{
		Family:      req.Family,
		GameVersion: req.GameVersion,
		ID:          string(req.Family) + "-" + req.GameVersion,
	}}, nil
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timeout waiting condition")
}

func newTestJobService(t *testing.T, installer Installer) (*JobService, *repository.JobStore) {
	t.Helper()
	store, err := repository.NewJobStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	svc := NewJobService(store, installer, 2, newTestLogger())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return svc, store
}

func jobDone(t *testing.T, svc *JobService, id uuid.UUID) func() bool {
	return func() bool {
		job, err := svc.GetJob(context.Background(), id)
		require.NoError(t, err)
		return job.Status.Done()
	}
}

func TestJobService_InstallJobCompletes(t *testing.T) {
	svc, _ := newTestJobService(t, &fakeInstaller{})

	job, err := svc.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "1.21.7"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, domain.JobInstall, job.Kind)

	waitFor(t, 2*time.Second, jobDone(t, svc, job.ID))

	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, "1.21.7", got.Report.Version)
}

func TestJobService_InstallJobWithFailuresFails(t *testing.T) {
	report := &domain.InstallReport{
		Version: "1.21.7",
		Status:  domain.InstallError,
		Assets:  domain.BatchSummary{Total: 3, Succeeded: 2, Failed: 1},
	}
	svc, _ := newTestJobService(t, &fakeInstaller{report: report})

	job, err := svc.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "1.21.7"})
	require.NoError(t, err)
	waitFor(t, 2*time.Second, jobDone(t, svc, job.ID))

	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "1 fetches or extractions failed")
	assert.NotNil(t, got.Report)
}

func TestJobService_LoaderJob(t *testing.T) {
	svc, _ := newTestJobService(t, &fakeInstaller{})

	job, err := svc.CreateLoaderJob(context.Background(), domain.LoaderRequest{Family: domain.LoaderFabric, GameVersion: "1.21.7"})
	require.NoError(t, err)
	waitFor(t, 2*time.Second, jobDone(t, svc, job.ID))

	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "fabric-1.21.7", got.Profile.ID)
}

func TestJobService_StructuralErrorFailsJob(t *testing.T) {
	svc, _ := newTestJobService(t, &fakeInstaller{err: errors.New("version not found in manifest: 9.9")})

	job, err := svc.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "9.9"})
	require.NoError(t, err)
	waitFor(t, 2*time.Second, jobDone(t, svc, job.ID))

	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "version not found")
}

func TestJobService_RecoverPendingJobs(t *testing.T) {
	store, err := repository.NewJobStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	now := time.Now()
	pending := &domain.Job{ID: uuid.New(), Kind: domain.JobInstall, Status: domain.JobStatusPending,
		Install: &domain.InstallRequest{Version: "1.21.7"}, CreatedAt: now}
	interrupted := &domain.Job{ID: uuid.New(), Kind: domain.JobInstall, Status: domain.JobStatusInProgress,
		Install: &domain.InstallRequest{Version: "1.21.6"}, CreatedAt: now, Error: "stale"}
	done := &domain.Job{ID: uuid.New(), Kind: domain.JobInstall, Status: domain.JobStatusCompleted,
		Install: &domain.InstallRequest{Version: "1.20"}, CreatedAt: now}
	for _, j := range []*domain.Job{pending, interrupted, done} {
		require.NoError(t, store.CreateJob(context.Background(), j))
	}

	installer := &fakeInstaller{}
	svc := NewJobService(store, installer, 1, newTestLogger())
	defer svc.Shutdown(context.Background())

	require.NoError(t, svc.RecoverPendingJobs(context.Background()))

	waitFor(t, 2*time.Second, jobDone(t, svc, pending.ID))
	waitFor(t, 2*time.Second, jobDone(t, svc, interrupted.ID))
	assert.Equal(t, int32(2), installer.installs.Load())

	got, err := svc.GetJob(context.Background(), interrupted.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Error)
}

func TestJobService_ShutdownRejectsNewJobs(t *testing.T) {
	installer := &fakeInstaller{release: make(chan struct{})}
	svc, store := newTestJobService(t, installer)

	job, err := svc.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "1.21.7"})
	require.NoError(t, err)
	waitFor(t, 2*time.Second, func() bool { return installer.installs.Load() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	_, err = svc.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "1.21.7"})
	assert.ErrorIs(t, err, ErrShuttingDown)

	got, err := store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, got.Status, "interrupted jobs stay recoverable")
}

func TestJobService_GetJobNotFound(t *testing.T) {
	svc, _ := newTestJobService(t, &fakeInstaller{})

	_, err := svc.GetJob(context.Background(), uuid.New())
	assert.Error(t, err)
}
