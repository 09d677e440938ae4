package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobKind says which pipeline a job runs.
type JobKind string

const (
	JobInstall JobKind = "install"
	JobLoader  JobKind = "loader"
)

// Job is an asynchronous install tracked by the job service.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Kind      JobKind         `json:"kind"`
	Status    JobStatus       `json:"status"`
	Install   *InstallRequest `json:"install,omitempty"`
	Loader    *LoaderRequest  `json:"loader,omitempty"`
	Report    *InstallReport  `json:"report,omitempty"`
	Profile   *LoaderResult   `json:"profile,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
