package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

type mockJobService struct {
	installs []domain.InstallRequest
	loaders  []domain.LoaderRequest
	jobs     map[uuid.UUID]*domain.Job
}

func newMockJobService() *mockJobService {
	return &mockJobService{jobs: make(map[uuid.UUID]*domain.Job)}
}

func (m *mockJobService) CreateInstallJob(ctx context.Context, req domain.InstallRequest) (*domain.Job, error) {
	m.installs = append(m.installs, req)
	job := &domain.Job{ID: uuid.New(), Kind: domain.JobInstall, Status: domain.JobStatusPending, Install: &req}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobService) CreateLoaderJob(ctx context.Context, req domain.LoaderRequest) (*domain.Job, error) {
	m.loaders = append(m.loaders, req)
	job := &domain.Job{ID: uuid.New(), Kind: domain.JobLoader, Status: domain.JobStatusPending, Loader: &req}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, errpkg.ErrJobNotFound
	}
	return job, nil
}

type mockCatalog struct {
	list domain.VersionList
}

func (m *mockCatalog) ListVersions(ctx context.Context) domain.VersionList {
	return m.list
}

func (m *mockCatalog) LoaderVersions(ctx context.Context, family domain.LoaderFamily, game string, latestOnly bool) ([]string, error) {
	switch family {
	case domain.LoaderFabric:
		if latestOnly {
			return []string{"0.16.14"}, nil
		}
		return []string{"0.16.13", "0.16.14"}, nil
	case domain.LoaderOptiFine:
		return nil, fmt.Errorf("%w: optifine", errpkg.ErrNoVersionFeed)
	case domain.LoaderForge:
		return nil, fmt.Errorf("get https://maven: connection refused")
	}
	return nil, fmt.Errorf("%w: %q", errpkg.ErrUnsupportedLoader, family)
}

func newTestRouter(jobs *mockJobService) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	catalog := &mockCatalog{list: domain.VersionList{
		Status:     domain.ListSuccess,
		Latest:     domain.LatestVersions{Release: "1.21.7", Snapshot: "25w31a"},
		Releases:   []domain.VersionSummary{{ID: "1.21.7", Type: "release"}},
		Snapshots:  []domain.VersionSummary{{ID: "25w31a", Type: "snapshot"}},
		Historical: []domain.VersionSummary{},
	}}
	return NewRouter(jobs, catalog, logger)
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateInstall(t *testing.T) {
	jobs := newMockJobService()
	router := newTestRouter(jobs)

	w := do(t, router, http.MethodPost, "/installs", domain.InstallRequest{Version: "1.21.7", Name: "pack"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Contains(t, data, "job_id")
	require.Len(t, jobs.installs, 1)
	assert.Equal(t, "pack", jobs.installs[0].Name)
}

func TestHandler_CreateInstall_Invalid(t *testing.T) {
	jobs := newMockJobService()
	router := newTestRouter(jobs)

	w := do(t, router, http.MethodPost, "/installs", domain.InstallRequest{Version: "../../etc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/installs", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, jobs.installs)
}

func TestHandler_CreateLoader(t *testing.T) {
	jobs := newMockJobService()
	router := newTestRouter(jobs)

	w := do(t, router, http.MethodPost, "/loaders", domain.LoaderRequest{Family: domain.LoaderFabric, GameVersion: "1.21.7"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, jobs.loaders, 1)

	w = do(t, router, http.MethodPost, "/loaders", domain.LoaderRequest{Family: "rift", GameVersion: "1.13"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetJob(t *testing.T) {
	jobs := newMockJobService()
	router := newTestRouter(jobs)
	job, _ := jobs.CreateInstallJob(context.Background(), domain.InstallRequest{Version: "1.21.7"})
	job.Status = domain.JobStatusCompleted
	job.Report = &domain.InstallReport{Version: "1.21.7", Status: domain.InstallSuccess}

	w := do(t, router, http.MethodGet, "/jobs/"+job.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data domain.JobResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Equal(t, job.ID, data.ID)
	assert.Equal(t, domain.JobStatusCompleted, data.Status)
	require.NotNil(t, data.Report)

	w = do(t, router, http.MethodGet, "/jobs/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListVersions(t *testing.T) {
	router := newTestRouter(newMockJobService())

	w := do(t, router, http.MethodGet, "/versions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list domain.VersionList
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list.Releases, 1)

	w = do(t, router, http.MethodGet, "/versions?kind=snapshot", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var bucket struct {
		Versions []domain.VersionSummary `json:"versions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&bucket))
	require.Len(t, bucket.Versions, 1)
	assert.Equal(t, "25w31a", bucket.Versions[0].ID)

	w = do(t, router, http.MethodGet, "/versions?kind=beta", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListVersions_Unavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	router := NewRouter(newMockJobService(), &mockCatalog{list: domain.VersionList{Status: domain.ListError, Error: "boom"}}, logger)

	w := do(t, router, http.MethodGet, "/versions", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandler_LoaderVersions(t *testing.T) {
	router := newTestRouter(newMockJobService())

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"all", "/loaders/fabric/versions?game=1.21.7", http.StatusOK},
		{"latest", "/loaders/fabric/versions?game=1.21.7&latest=true", http.StatusOK},
		{"missing game", "/loaders/fabric/versions", http.StatusBadRequest},
		{"bad latest", "/loaders/fabric/versions?game=1.21.7&latest=maybe", http.StatusBadRequest},
		{"no feed", "/loaders/optifine/versions?game=1.21.7", http.StatusNotFound},
		{"unsupported", "/loaders/rift/versions?game=1.13", http.StatusBadRequest},
		{"upstream down", "/loaders/forge/versions?game=1.21.7", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := do(t, router, http.MethodGet, "/loaders/fabric/versions?game=1.21.7&latest=true", nil)
	var data struct {
		Versions []string `json:"versions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Equal(t, []string{"0.16.14"}, data.Versions)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(newMockJobService())

	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
