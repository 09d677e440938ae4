package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

// JobStore keeps install jobs in memory and mirrors them to a JSON state file.
// Jobs are copied on the way in and out, so callers never share state with the store.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.Job
	file string
}

// NewJobStore creates a JobStore and loads jobs from the file if it exists.
func NewJobStore(filePath string) (*JobStore, error) {
	repo := &JobStore{
		jobs: make(map[uuid.UUID]*domain.Job),
		file: filepath.Clean(filePath),
	}

	if err := repo.restoreJobs(); err != nil {
		return nil, fmt.Errorf("failed to load state from file: %w", err)
	}

	slog.Info("job store initialized", "file_path", repo.file, "jobs_count", len(repo.jobs))
	return repo, nil
}

func (r *JobStore) restoreJobs() error {
	if isFileNotExist(r.file) {
		slog.Info("state file does not exist, starting with empty state", "file_path", r.file)
		return nil
	}

	data, err := os.ReadFile(r.file)
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if len(data) == 0 {
		slog.Warn("state file is empty", "file_path", r.file)
		return nil
	}

	var jobs []*domain.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("failed to unmarshal state file: %w", err)
	}

	for _, job := range jobs {
		r.jobs[job.ID] = job
	}
	return nil
}

func isFileNotExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return os.IsNotExist(err)
}

// persistJobs writes the state file through a temporary file and a rename.
// Callers hold r.mu.
func (r *JobStore) persistJobs() error {
	jobs := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal jobs: %w", err)
	}

	if dir := filepath.Dir(r.file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tempFile := r.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, r.file); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	slog.Debug("state saved to file", "jobs_count", len(jobs), "file_path", r.file)
	return nil
}

// CreateJob adds a new job and persists it to the file.
func (r *JobStore) CreateJob(ctx context.Context, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *job
	r.jobs[job.ID] = &stored

	if err := r.persistJobs(); err != nil {
		return fmt.Errorf("failed to save state after creating job: %w", err)
	}

	slog.Debug("job created and saved", "job_id", job.ID, "kind", job.Kind)
	return nil
}

// GetJob retrieves a copy of a job by ID.
func (r *JobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	job, exists := r.jobs[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errpkg.ErrJobNotFound
	}
	out := *job
	return &out, nil
}

// UpdateJob replaces an existing job, stamps UpdatedAt and persists the state.
func (r *JobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		return errpkg.ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	stored := *job
	r.jobs[job.ID] = &stored

	if err := r.persistJobs(); err != nil {
		return fmt.Errorf("failed to save state after updating job: %w", err)
	}

	slog.Debug("job updated and saved", "job_id", job.ID, "status", job.Status)
	return nil
}

// GetJobsByStatus returns copies of all jobs with the specified status, oldest first.
func (r *JobStore) GetJobsByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var filtered []*domain.Job
	for _, job := range r.jobs {
		if job.Status == status {
			out := *job
			filtered = append(filtered, &out)
		}
	}
	r.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}
