package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/veranemoloko/mc-fetch/internal/domain"
)

// JobRepo defines the interface for install job storage operations.
type JobRepo interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	GetJobsByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)
}
