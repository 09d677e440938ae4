package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/loader"
	"github.com/veranemoloko/mc-fetch/internal/metrics"
	repo "github.com/veranemoloko/mc-fetch/internal/repository"
)

const jobQueueSize = 100

// ErrShuttingDown is returned when a job is submitted after Shutdown.
var ErrShuttingDown = errors.New("service is shutting down")

// Installer is the part of InstallService the job service drives.
type Installer interface {
	Install(ctx context.Context, req domain.InstallRequest) (*domain.InstallReport, error)
	InstallLoader(ctx context.Context, req domain.LoaderRequest) (*loader.Installed, error)
}

// JobService runs installs asynchronously on a fixed pool of job workers and
// tracks their state in a JobRepo.
type JobService struct {
	jobRepo   repo.JobRepo
	installer Installer
	logger    *slog.Logger

	queue    chan uuid.UUID
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

// NewJobService creates a JobService and starts its workers.
func NewJobService(jobRepo repo.JobRepo, installer Installer, workers int, logger *slog.Logger) *JobService {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &JobService{
		jobRepo:   jobRepo,
		installer: installer,
		logger:    logger,
		queue:     make(chan uuid.UUID, jobQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func(workerID int) {
			defer s.wg.Done()
			for id := range s.queue {
				if err := s.processJob(id); err != nil {
					s.logger.Error("worker failed to process job", "worker_id", workerID, "job_id", id, "error", err)
				}
			}
		}(i + 1)
	}

	s.logger.Info("job service started", "workers", workers)
	return s
}

// CreateInstallJob stores a pending install job and queues it.
func (s *JobService) CreateInstallJob(ctx context.Context, req domain.InstallRequest) (*domain.Job, error) {
	return s.create(ctx, &domain.Job{Kind: domain.JobInstall, Install: &req})
}

// CreateLoaderJob stores a pending loader job and queues it.
func (s *JobService) CreateLoaderJob(ctx context.Context, req domain.LoaderRequest) (*domain.Job, error) {
	return s.create(ctx, &domain.Job{Kind: domain.JobLoader, Loader: &req})
}

// GetJob returns the current state of a job.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return s.jobRepo.GetJob(ctx, id)
}

func (s *JobService) create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	now := time.Now()
	job.ID = uuid.New()
	job.Status = domain.JobStatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	metrics.JobsCreated.WithLabelValues(string(job.Kind)).Inc()

	if err := s.enqueue(ctx, job.ID); err != nil {
		return nil, err
	}

	s.logger.Info("job created", "job_id", job.ID, "kind", job.Kind)
	return job, nil
}

func (s *JobService) enqueue(ctx context.Context, id uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrShuttingDown
	}

	select {
	case s.queue <- id:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrShuttingDown
	}
}

func (s *JobService) processJob(id uuid.UUID) error {
	ctx := s.ctx

	job, err := s.jobRepo.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	job.Status = domain.JobStatusInProgress
	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	s.logger.Info("processing job", "job_id", job.ID, "kind", job.Kind)

	var runErr error
	switch job.Kind {
	case domain.JobInstall:
		var report *domain.InstallReport
		report, runErr = s.installer.Install(ctx, *job.Install)
		job.Report = report
		if runErr == nil && report.Status != domain.InstallSuccess {
			runErr = fmt.Errorf("%d fetches or extractions failed", report.Failed())
		}
	case domain.JobLoader:
		var installed *loader.Installed
		installed, runErr = s.installer.InstallLoader(ctx, *job.Loader)
		if installed != nil {
			job.Profile = &installed.Result
		}
	default:
		runErr = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if ctx.Err() != nil {
		// Shutdown interrupted the job; leave it in progress so it is recovered on restart.
		return ctx.Err()
	}

	if runErr != nil {
		job.Status = domain.JobStatusFailed
		job.Error = runErr.Error()
		metrics.JobsFailed.WithLabelValues(string(job.Kind)).Inc()
		s.logger.Error("job failed", "job_id", job.ID, "kind", job.Kind, "error", runErr)
	} else {
		job.Status = domain.JobStatusCompleted
		job.Error = ""
		metrics.JobsCompleted.WithLabelValues(string(job.Kind)).Inc()
		s.logger.Info("job completed", "job_id", job.ID, "kind", job.Kind)
	}

	return s.jobRepo.UpdateJob(context.Background(), job)
}

// RecoverPendingJobs requeues jobs left pending or in progress by a previous run.
func (s *JobService) RecoverPendingJobs(ctx context.Context) error {
	pending, err := s.jobRepo.GetJobsByStatus(ctx, domain.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	inProgress, err := s.jobRepo.GetJobsByStatus(ctx, domain.JobStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to get in-progress jobs: %w", err)
	}

	jobs := append(pending, inProgress...)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if job.Status == domain.JobStatusInProgress {
			job.Status = domain.JobStatusPending
			job.Error = ""
			if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
				s.logger.Error("failed to recover job", "job_id", job.ID, "error", err)
				continue
			}
		}

		if err := s.enqueue(ctx, job.ID); err != nil {
			return fmt.Errorf("failed to requeue job %s: %w", job.ID, err)
		}
	}

	if len(jobs) > 0 {
		s.logger.Info("recovered jobs", "count", len(jobs))
	}
	return nil
}

// Shutdown stops accepting jobs, cancels running ones and waits for the
// workers to exit or ctx to expire.
func (s *JobService) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down job service")

	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("job service shutdown completed")
		return nil
	case <-ctx.Done():
		s.logger.Warn("job service shutdown timed out")
		return ctx.Err()
	}
}
