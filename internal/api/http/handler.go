package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
	"github.com/veranemoloko/mc-fetch/internal/validation"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// JobServiceI defines the job operations the API exposes.
type JobServiceI interface {
	CreateInstallJob(ctx context.Context, req domain.InstallRequest) (*domain.Job, error)
	CreateLoaderJob(ctx context.Context, req domain.LoaderRequest) (*domain.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

// CatalogI lists what can be installed.
type CatalogI interface {
	ListVersions(ctx context.Context) domain.VersionList
	LoaderVersions(ctx context.Context, family domain.LoaderFamily, game string, latestOnly bool) ([]string, error)
}

// Handler handles HTTP requests for versions, installs and jobs.
type Handler struct {
	jobs      JobServiceI
	catalog   CatalogI
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a new Handler with the provided services and logger.
func NewHandler(jobs JobServiceI, catalog CatalogI, logger *slog.Logger) *Handler {
	return &Handler{
		jobs:      jobs,
		catalog:   catalog,
		validator: validation.New(),
		logger:    logger,
	}
}

// ListVersions handles GET /versions. The optional kind query parameter
// selects one bucket.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	kind := domain.VersionKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", domain.KindRelease, domain.KindSnapshot, domain.KindHistorical:
	default:
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	list := h.catalog.ListVersions(r.Context())
	if list.Status != domain.ListSuccess {
		h.logger.Error("failed to list versions", "error", list.Error)
		writeError(w, http.StatusBadGateway, "version manifest unavailable")
		return
	}

	if kind != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"latest":   list.Latest,
			"kind":     kind,
			"versions": list.Bucket(kind),
		})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateInstall handles POST /installs.
func (h *Handler) CreateInstall(w http.ResponseWriter, r *http.Request) {
	var req domain.InstallRequest
	if !h.decode(w, r, &req) {
		return
	}

	job, err := h.jobs.CreateInstallJob(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create install job", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("install job created", "job_id", job.ID, "version", req.Version)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

// CreateLoader handles POST /loaders.
func (h *Handler) CreateLoader(w http.ResponseWriter, r *http.Request) {
	var req domain.LoaderRequest
	if !h.decode(w, r, &req) {
		return
	}

	job, err := h.jobs.CreateLoaderJob(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create loader job", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("loader job created", "job_id", job.ID, "family", req.Family, "game_version", req.GameVersion)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

// GetJob handles GET /jobs/{jobID}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, errpkg.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.NewJobResponse(job))
}

// LoaderVersions handles GET /loaders/{family}/versions?game=<id>[&latest=true].
func (h *Handler) LoaderVersions(w http.ResponseWriter, r *http.Request) {
	family := domain.LoaderFamily(chi.URLParam(r, "family"))
	game := r.URL.Query().Get("game")
	if err := h.validator.Var(game, "required,version_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid game version")
		return
	}
	latest := false
	if s := r.URL.Query().Get("latest"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid latest flag")
			return
		}
		latest = v
	}

	versions, err := h.catalog.LoaderVersions(r.Context(), family, game, latest)
	switch {
	case errors.Is(err, errpkg.ErrUnsupportedLoader):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errpkg.ErrNoVersionFeed), errors.Is(err, errpkg.ErrNoLoaderVersions):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to list loader versions", "family", family, "game_version", game, "error", err)
		writeError(w, http.StatusBadGateway, "loader version feed unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"family":       family,
		"game_version": game,
		"versions":     versions,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
