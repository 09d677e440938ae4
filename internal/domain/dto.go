package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobResponse is returned by the HTTP API for a Job.
type JobResponse struct {
	ID        uuid.UUID      `json:"job_id"`
	Kind      JobKind        `json:"kind"`
	Status    JobStatus      `json:"status"`
	Report    *InstallReport `json:"report,omitempty"`
	Profile   *LoaderResult  `json:"profile,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewJobResponse builds the API view of a job.
func NewJobResponse(j *Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		Report:    j.Report,
		Profile:   j.Profile,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
